package chunker

import (
	"iter"

	"github.com/akolanti/DocAssist/internal/config"
)

// Span is one chunk's text and its rune range [Start, End) in the source text.
type Span struct {
	Index int
	Start int
	End   int
	Text  string
}

type Chunker struct {
	size    int
	overlap int
}

// New fails with a configuration error unless 0 <= overlap < size.
func New(size, overlap int) (*Chunker, error) {
	if err := config.ValidateChunking(size, overlap); err != nil {
		return nil, err
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

func (c *Chunker) Size() int    { return c.size }
func (c *Chunker) Overlap() int { return c.overlap }

// Spans walks text in windows of size runes advancing by size-overlap, and
// stops at the first window that reaches the end. Empty text yields nothing.
// The sequence can be ranged over any number of times.
func (c *Chunker) Spans(text string) iter.Seq[Span] {
	runes := []rune(text)
	step := c.size - c.overlap
	return func(yield func(Span) bool) {
		length := len(runes)
		for i := 0; length > 0; i++ {
			start := i * step
			end := min(start+c.size, length)
			if !yield(Span{Index: i, Start: start, End: end, Text: string(runes[start:end])}) {
				return
			}
			if end == length {
				return
			}
		}
	}
}

// Split collects Spans into a slice.
func (c *Chunker) Split(text string) []Span {
	var spans []Span
	for s := range c.Spans(text) {
		spans = append(spans, s)
	}
	return spans
}

// Count returns how many spans Split would produce for a text of length runes.
func (c *Chunker) Count(length int) int {
	if length == 0 {
		return 0
	}
	if length <= c.size {
		return 1
	}
	step := c.size - c.overlap
	return (length - c.overlap + step - 1) / step
}
