package chunker

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNew_Defaults(t *testing.T) {
	c := New(Config{})
	cfg := c.Config()
	if cfg.Size != 1000 {
		t.Errorf("expected size 1000, got %d", cfg.Size)
	}
	if cfg.BreakRatio != 0.7 {
		t.Errorf("expected break ratio 0.7, got %v", cfg.BreakRatio)
	}

	c = New(Config{Size: 100, Overlap: 150})
	if c.Config().Overlap != 0 {
		t.Errorf("expected overlap >= size to be reset to 0, got %d", c.Config().Overlap)
	}
}

func TestSplit_ShortTextIsSingleChunk(t *testing.T) {
	c := New(DefaultConfig())

	text := "  " + strings.Repeat("word ", 50) + "\n"
	chunks := c.Split(text)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != strings.TrimSpace(text) {
		t.Errorf("expected trimmed input, got %q", chunks[0])
	}
}

func TestSplit_ShortTextNearSizeIsSingleChunk(t *testing.T) {
	c := New(DefaultConfig())

	for _, n := range []int{801, 999, 1000} {
		chunks := c.Split(strings.Repeat("a", n))
		if len(chunks) != 1 {
			t.Errorf("length %d: expected 1 chunk, got %d", n, len(chunks))
		}
	}
}

func TestSplit_Deterministic(t *testing.T) {
	c := New(DefaultConfig())
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 120)

	first := c.Split(text)
	second := c.Split(text)

	if !reflect.DeepEqual(first, second) {
		t.Error("expected identical output for identical input")
	}
}

func TestSplit_WhitespaceOnly(t *testing.T) {
	c := New(DefaultConfig())

	if chunks := c.Split(""); len(chunks) != 0 {
		t.Errorf("expected no chunks for empty text, got %d", len(chunks))
	}
	if chunks := c.Split(strings.Repeat(" \n\t", 800)); len(chunks) != 0 {
		t.Errorf("expected no chunks for whitespace text, got %d", len(chunks))
	}
}

func TestSplit_NoWhitespaceChunks(t *testing.T) {
	c := New(Config{Size: 100, Overlap: 20})
	text := strings.Repeat("x", 150) + strings.Repeat(" ", 400) + strings.Repeat("y", 150)

	for i, chunk := range c.Split(text) {
		if strings.TrimSpace(chunk) == "" {
			t.Errorf("chunk %d is whitespace only", i)
		}
		if chunk != strings.TrimSpace(chunk) {
			t.Errorf("chunk %d is not trimmed", i)
		}
	}
}

func TestSplit_Overlap(t *testing.T) {
	c := New(DefaultConfig())
	text := strings.Repeat("abcdefghij", 250) // 2500 chars, no break points

	chunks := c.Split(text)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if chunks[0] != text[0:1000] {
		t.Error("unexpected first chunk")
	}
	if chunks[1] != text[800:1800] {
		t.Error("unexpected second chunk")
	}
	if chunks[2] != text[1600:2500] {
		t.Error("unexpected third chunk")
	}
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		if !strings.HasPrefix(chunks[i], prev[len(prev)-200:]) {
			t.Errorf("chunk %d does not share 200 characters with chunk %d", i, i-1)
		}
	}
}

func TestSplit_BreaksAtSentenceInTrailingWindow(t *testing.T) {
	c := New(DefaultConfig())
	text := strings.Repeat("x", 750) + "." + strings.Repeat("y", 500)

	chunks := c.Split(text)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0] != strings.Repeat("x", 750)+"." {
		t.Errorf("expected first chunk to end at the period, got length %d", len(chunks[0]))
	}
	// Next window starts overlap characters before the cut
	if chunks[1] != text[551:] {
		t.Errorf("unexpected second chunk of length %d", len(chunks[1]))
	}
}

func TestSplit_BreakAtExactThreshold(t *testing.T) {
	c := New(DefaultConfig())
	text := strings.Repeat("x", 700) + "\n" + strings.Repeat("y", 600)

	chunks := c.Split(text)
	if chunks[0] != strings.Repeat("x", 700) {
		t.Errorf("expected cut at the newline at 70%%, got length %d", len(chunks[0]))
	}
}

func TestSplit_IgnoresEarlyBreakPoint(t *testing.T) {
	c := New(DefaultConfig())
	text := strings.Repeat("x", 500) + "." + strings.Repeat("y", 700)

	chunks := c.Split(text)
	if got := utf8.RuneCountInString(chunks[0]); got != 1000 {
		t.Errorf("expected raw window cut at 1000, got %d", got)
	}
}

func TestSplit_CountsCharactersNotBytes(t *testing.T) {
	c := New(DefaultConfig())
	text := strings.Repeat("é", 1500)

	chunks := c.Split(text)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if got := utf8.RuneCountInString(chunks[0]); got != 1000 {
		t.Errorf("expected 1000 characters, got %d", got)
	}
	if got := utf8.RuneCountInString(chunks[1]); got != 700 {
		t.Errorf("expected 700 characters, got %d", got)
	}
}

func TestWindows_StopsEarly(t *testing.T) {
	c := New(Config{Size: 10, Overlap: 2})
	text := strings.Repeat("a", 100)

	count := 0
	for range c.Windows(text) {
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Errorf("expected iteration to stop after 2, got %d", count)
	}
}

func TestWindows_Restartable(t *testing.T) {
	c := New(Config{Size: 10, Overlap: 2})
	seq := c.Windows(strings.Repeat("abc", 20))

	var first, second []string
	for s := range seq {
		first = append(first, s)
	}
	for s := range seq {
		second = append(second, s)
	}
	if len(first) == 0 || !reflect.DeepEqual(first, second) {
		t.Error("expected sequence to yield the same chunks twice")
	}
}

func TestChunk_ContiguousIndices(t *testing.T) {
	c := New(DefaultConfig())
	text := strings.Repeat("Step one. Do the thing.\n", 200)

	chunks := c.Chunk("doc-1", "guide.txt", text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	seen := make(map[string]bool)
	for i, ch := range chunks {
		if ch.Index != i {
			t.Errorf("expected index %d, got %d", i, ch.Index)
		}
		if ch.DocumentID != "doc-1" {
			t.Errorf("expected document doc-1, got %s", ch.DocumentID)
		}
		if ch.Metadata.ChunkIndex != i || ch.Metadata.FileName != "guide.txt" {
			t.Errorf("unexpected metadata %+v", ch.Metadata)
		}
		if ch.HasEmbedding() {
			t.Error("expected no embedding before embedding step")
		}
		if seen[ch.ID] {
			t.Errorf("duplicate chunk id %s", ch.ID)
		}
		seen[ch.ID] = true
	}
}
