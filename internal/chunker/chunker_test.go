package chunker

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplit_EmptyText(t *testing.T) {
	if chunks := Split("", 1000, 200); len(chunks) != 0 {
		t.Errorf("expected 0 chunks, got %d", len(chunks))
	}
}

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	text := "A short note, with commas. And periods."
	chunks := Split(text, 1000, 200)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != text {
		t.Errorf("expected chunk %q, got %q", text, chunks[0])
	}
}

func TestSplit_ExactChunkSizeSingleChunk(t *testing.T) {
	text := strings.Repeat("x", 1000)
	chunks := Split(text, 1000, 200)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
}

func TestSplit_CoverageWithoutBoundaries(t *testing.T) {
	for _, length := range []int{1, 999, 1000, 1001, 2000, 2500, 10000} {
		text := digits(length)
		chunks := Split(text, 1000, 0)

		want := (length + 999) / 1000
		if len(chunks) != want {
			t.Errorf("length=%d: expected %d chunks, got %d", length, want, len(chunks))
		}
		if got := strings.Join(chunks, ""); got != text {
			t.Errorf("length=%d: concatenation does not reproduce the input", length)
		}
	}
}

func TestSplit_BoundaryPreference(t *testing.T) {
	text := strings.Repeat("abc. def. ghi. jkl. ", 10)
	chunks := Split(text, 20, 5)
	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	for i, c := range chunks[:len(chunks)-1] {
		last := c[len(c)-1]
		if last != '.' && last != ' ' {
			t.Errorf("chunk %d %q ends mid-word", i, c)
		}
		if utf8.RuneCountInString(c) > 20 {
			t.Errorf("chunk %d exceeds chunk size: %q", i, c)
		}
	}
}

func TestSplit_BoundaryCharacterKept(t *testing.T) {
	// Window is 10 chars; the comma at index 7 is in the back half.
	text := "abcdefg,hijklmnopqrstuvwxyz"
	chunks := Split(text, 10, 0)
	if chunks[0] != "abcdefg," {
		t.Errorf("expected first chunk to end after the comma, got %q", chunks[0])
	}
	if !strings.HasPrefix(chunks[1], "hijk") {
		t.Errorf("expected second chunk to resume after the comma, got %q", chunks[1])
	}
}

func TestSplit_BoundaryOutsideScanWindowIgnored(t *testing.T) {
	// The only space sits in the front half of the window, so the cut is hard.
	text := "ab cdefghijklmnopqrstuvwxyz"
	chunks := Split(text, 10, 0)
	if chunks[0] != "ab cdefghi" {
		t.Errorf("expected hard cut at chunk size, got %q", chunks[0])
	}
}

func TestSplit_NewlineBoundary(t *testing.T) {
	text := "first line\nsecond line that keeps going for a while"
	chunks := Split(text, 16, 0)
	if chunks[0] != "first line\n" {
		t.Errorf("expected break after newline, got %q", chunks[0])
	}
}

func TestSplit_OverlapCorrectness(t *testing.T) {
	text := digits(537)
	chunks := Split(text, 100, 20)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i := 0; i+1 < len(chunks); i++ {
		prev, next := chunks[i], chunks[i+1]
		if prev[len(prev)-20:] != next[:20] {
			t.Errorf("chunk %d tail %q does not match chunk %d head %q", i, prev[len(prev)-20:], i+1, next[:20])
		}
	}
	if !strings.HasSuffix(text, chunks[len(chunks)-1]) {
		t.Error("expected last chunk to reach the end of the text")
	}
}

func TestSplit_MultiByteCharacters(t *testing.T) {
	text := strings.Repeat("日本語テキスト", 300)
	chunks := Split(text, 100, 10)
	for i, c := range chunks {
		if !utf8.ValidString(c) {
			t.Fatalf("chunk %d is not valid UTF-8", i)
		}
		if n := utf8.RuneCountInString(c); n > 100 {
			t.Errorf("chunk %d has %d characters, expected at most 100", i, n)
		}
	}
}

func TestSplit_Terminates(t *testing.T) {
	texts := []string{"", "a", "a b", strings.Repeat("word ", 1000), digits(4321), strings.Repeat("\n", 300)}
	for _, text := range texts {
		for size := 1; size <= 64; size *= 2 {
			for overlap := 0; overlap < size; overlap++ {
				chunks := Split(text, size, overlap)
				if len(text) > 0 && len(chunks) == 0 {
					t.Fatalf("size=%d overlap=%d: expected chunks for non-empty text", size, overlap)
				}
			}
		}
	}
}

func TestSplit_MisusedParametersTerminate(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor sit amet ", 40)
	cases := []struct {
		size, overlap int
	}{
		{0, 0},
		{-5, 0},
		{10, 10},
		{10, 50},
		{10, -3},
	}
	for _, c := range cases {
		chunks := Split(text, c.size, c.overlap)
		if c.size <= 0 && len(chunks) != 0 {
			t.Errorf("size=%d: expected no chunks, got %d", c.size, len(chunks))
		}
		if c.size > 0 && len(chunks) == 0 {
			t.Errorf("size=%d overlap=%d: expected chunks", c.size, c.overlap)
		}
	}
}

func TestSplit_Deterministic(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 100)
	a := Split(text, 120, 30)
	b := Split(text, 120, 30)
	if len(a) != len(b) {
		t.Fatalf("expected identical chunk counts, got %d and %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := []Config{DefaultConfig(), {ChunkSize: 1, Overlap: 0}, {ChunkSize: 100, Overlap: 99}}
	for _, c := range valid {
		if err := c.Validate(); err != nil {
			t.Errorf("%+v: unexpected error: %v", c, err)
		}
	}

	invalid := []Config{{ChunkSize: 0}, {ChunkSize: -1}, {ChunkSize: 10, Overlap: 10}, {ChunkSize: 10, Overlap: -1}}
	for _, c := range invalid {
		err := c.Validate()
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%+v: expected ErrInvalidConfig, got %v", c, err)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.ChunkSize != 1000 || cfg.Overlap != 200 {
		t.Errorf("expected 1000/200, got %d/%d", cfg.ChunkSize, cfg.Overlap)
	}
}

func digits(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteByte(byte('0' + i%10))
	}
	return sb.String()
}
