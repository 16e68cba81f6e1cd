package llm

import (
	"context"

	"github.com/akolanti/DocAssist/internal/config"
	"github.com/akolanti/DocAssist/internal/domain/chatModel"
)

type CompletionRequest struct {
	System string
	Prompt string
	Tier   chatModel.Tier
}

type Provider interface {
	Generate(ctx context.Context, req CompletionRequest) (string, error)
}

// TierModel is the model and output budget used for one tier.
type TierModel struct {
	Model     string
	MaxTokens int
}

type Tiers struct {
	Standard TierModel
	Advanced TierModel
}

func TiersFromConfig(cfg config.LLMConfig) Tiers {
	return Tiers{
		Standard: TierModel{Model: cfg.StandardModel, MaxTokens: config.StandardTierMaxTokens},
		Advanced: TierModel{Model: cfg.AdvancedModel, MaxTokens: config.AdvancedTierMaxTokens},
	}
}

func (t Tiers) For(tier chatModel.Tier) TierModel {
	if tier == chatModel.TierAdvanced {
		return t.Advanced
	}
	return t.Standard
}
