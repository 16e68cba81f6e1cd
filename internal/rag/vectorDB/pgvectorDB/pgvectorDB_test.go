package pgvectorDB

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEfSearch(t *testing.T) {
	tests := []struct {
		topK int
		want int
	}{
		{topK: 5, want: 40},
		{topK: 40, want: 40},
		{topK: 100, want: 100},
		{topK: 5000, want: 1000},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, efSearch(tt.topK), "topK=%d", tt.topK)
	}
}
