package embedding

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/akolanti/DocAssist/internal/domain/errorModel"
	"github.com/akolanti/DocAssist/pkg/logger_i"
	"github.com/pkoukk/tiktoken-go"
)

const encodingName = "cl100k_base"

// TokenGuard bounds embedding input by token count. The cl100k_base encoding
// is loaded on first use; when it cannot be loaded the count is estimated
// from the rune length.
type TokenGuard struct {
	maxTokens int

	once     sync.Once
	load     bool
	encoding *tiktoken.Tiktoken
}

func NewTokenGuard(maxTokens int) *TokenGuard {
	return &TokenGuard{maxTokens: maxTokens, load: true}
}

// NewEstimatingGuard never loads an encoding.
func NewEstimatingGuard(maxTokens int) *TokenGuard {
	return &TokenGuard{maxTokens: maxTokens}
}

func (g *TokenGuard) init() {
	g.once.Do(func() {
		if !g.load {
			return
		}
		enc, err := tiktoken.GetEncoding(encodingName)
		if err != nil {
			logger_i.NewLogger("token guard").Warn("tiktoken unavailable, estimating token counts", "error", err)
			return
		}
		g.encoding = enc
	})
}

func (g *TokenGuard) Count(text string) int {
	g.init()
	if g.encoding != nil {
		return len(g.encoding.Encode(text, nil, nil))
	}
	return EstimateTokens(text)
}

// Check fails with InvalidInput when text is over the limit.
func (g *TokenGuard) Check(text string) error {
	if g == nil || g.maxTokens <= 0 {
		return nil
	}
	if n := g.Count(text); n > g.maxTokens {
		return errorModel.InvalidInput("embed", fmt.Errorf("input is %d tokens, limit is %d", n, g.maxTokens))
	}
	return nil
}

// EstimateTokens over-counts on purpose: two runes per token.
func EstimateTokens(text string) int {
	return (utf8.RuneCountInString(text) + 1) / 2
}
