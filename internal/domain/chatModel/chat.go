package chatModel

import (
	"strings"

	"github.com/akolanti/DocAssist/internal/domain/commonModels"
)

// Mode picks the assistant persona. It changes the system instructions, never the data searched.
type Mode string

const (
	ModeCees  Mode = "cees"
	ModeChris Mode = "chris"
)

// Tier picks the model and its output budget.
type Tier string

const (
	TierStandard Tier = "standard"
	TierAdvanced Tier = "advanced"
)

func ParseMode(s string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeCees:
		return ModeCees, true
	case ModeChris:
		return ModeChris, true
	}
	return "", false
}

func ParseTier(s string) (Tier, bool) {
	switch Tier(strings.ToLower(strings.TrimSpace(s))) {
	case "", TierStandard:
		return TierStandard, true
	case TierAdvanced:
		return TierAdvanced, true
	}
	return "", false
}

type Question struct {
	Text    string
	Mode    Mode
	Tier    Tier
	Caller  string
	History []string
}

type Source struct {
	DocumentId string  `json:"document_id"`
	FileName   string  `json:"filename"`
	Category   string  `json:"category,omitempty"`
	ChunkIndex int     `json:"chunk_index"`
	Similarity float64 `json:"similarity"`
}

type Answer struct {
	Text            string   `json:"answer"`
	Sources         []Source `json:"sources"`
	ContextFound    bool     `json:"context_found"`
	RetrievalFailed bool     `json:"retrieval_failed"`
	FromCache       bool     `json:"from_cache,omitempty"`
}

func SourceFromResult(r commonModels.RetrievalResult) Source {
	return Source{
		DocumentId: r.Chunk.DocumentId,
		FileName:   r.FileName,
		Category:   r.Category,
		ChunkIndex: r.Chunk.Index,
		Similarity: r.Similarity,
	}
}
