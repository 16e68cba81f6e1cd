package qdrantDB

import (
	"testing"
	"time"

	"github.com/akolanti/DocAssist/internal/domain/chatModel"
	"github.com/akolanti/DocAssist/internal/rag/vectorDB"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedAnswerPayload(t *testing.T) {
	in := vectorDB.CachedAnswer{
		Answer: "Reset the breaker.",
		Sources: []chatModel.Source{
			{DocumentId: "d1", FileName: "manual.pdf", Category: "manuals", ChunkIndex: 2, Similarity: 0.91},
		},
	}
	payload, err := answerPayload(chatModel.ModeCees, chatModel.TierStandard, in, time.Unix(1700000000, 0))
	require.NoError(t, err)

	assert.Equal(t, "cees", payload["mode"].GetStringValue())
	assert.Equal(t, "standard", payload["tier"].GetStringValue())
	assert.Equal(t, int64(1700000000), payload["timestamp"].GetIntegerValue())

	out, ok := answerFromPayload(payload, 0.99)
	require.True(t, ok)
	assert.Equal(t, in.Answer, out.Answer)
	assert.Equal(t, in.Sources, out.Sources)
	assert.Equal(t, float32(0.99), out.Score)
}

func TestEmptyPayloadIsAMiss(t *testing.T) {
	_, ok := answerFromPayload(nil, 1)
	assert.False(t, ok)
}

func TestScopeFilter(t *testing.T) {
	f := scopeFilter(chatModel.ModeChris, chatModel.TierAdvanced)
	require.Len(t, f.Must, 2)
	assert.Equal(t, "mode", f.Must[0].GetField().GetKey())
	assert.Equal(t, "chris", f.Must[0].GetField().GetMatch().GetKeyword())
	assert.Equal(t, "advanced", f.Must[1].GetField().GetMatch().GetKeyword())
}
