package taskutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josephgoksu/backlog/models"
)

func TestNormalizePriority(t *testing.T) {
	tests := []struct {
		in   string
		want models.TaskPriority
	}{
		{"", ""},
		{"  ", ""},
		{"High", models.PriorityHigh},
		{"p1", models.PriorityHigh},
		{"urgent", models.PriorityHigh},
		{"med", models.PriorityMedium},
		{"Normal", models.PriorityMedium},
		{" l ", models.PriorityLow},
		{"minor", models.PriorityLow},
	}
	for _, tt := range tests {
		got, err := NormalizePriority(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := NormalizePriority("someday")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestPriorityRank(t *testing.T) {
	assert.Greater(t, PriorityRank(models.PriorityHigh), PriorityRank(models.PriorityMedium))
	assert.Greater(t, PriorityRank(models.PriorityMedium), PriorityRank(models.PriorityLow))
	assert.Greater(t, PriorityRank(models.PriorityLow), PriorityRank(""))
}
