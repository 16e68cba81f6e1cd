package embedding

import (
	"strings"
	"testing"

	"github.com/akolanti/DocAssist/internal/domain/errorModel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimatingGuard(t *testing.T) {
	g := NewEstimatingGuard(10)

	assert.NoError(t, g.Check(strings.Repeat("a", 20)))

	err := g.Check(strings.Repeat("a", 21))
	require.Error(t, err)
	assert.ErrorIs(t, err, errorModel.ErrInvalidInput)
}

func TestNilGuardAllowsEverything(t *testing.T) {
	var g *TokenGuard
	assert.NoError(t, g.Check(strings.Repeat("a", 100000)))
}

func TestCheckVector(t *testing.T) {
	assert.NoError(t, CheckVector("t", []float32{1, 2, 3}, 3))
	assert.ErrorIs(t, CheckVector("t", nil, 3), errorModel.ErrTransient)
	assert.ErrorIs(t, CheckVector("t", []float32{1, 2}, 3), errorModel.ErrConfiguration)
}
