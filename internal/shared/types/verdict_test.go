package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRating(t *testing.T) {
	tests := []struct {
		in   string
		want Rating
	}{
		{"SAFE", RatingSafe},
		{"safe", RatingSafe},
		{"안전", RatingSafe},
		{"WARN", RatingWarn},
		{"경고", RatingWarn},
		{"BLOCK", RatingDanger},
		{"DANGER", RatingDanger},
		{" 위험 ", RatingDanger},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRating(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRatingUnknown(t *testing.T) {
	_, err := ParseRating("MAYBE")
	assert.ErrorIs(t, err, ErrUnknownRating)
}

func TestParseBlockOrigin(t *testing.T) {
	o, ok := ParseBlockOrigin("System")
	assert.True(t, ok)
	assert.Equal(t, OriginSystem, o)

	_, ok = ParseBlockOrigin("")
	assert.False(t, ok)
}

func TestDefaultScore(t *testing.T) {
	assert.Equal(t, 100.0, RatingDanger.DefaultScore())
	assert.Equal(t, 50.0, RatingWarn.DefaultScore())
	assert.Equal(t, 10.0, RatingSafe.DefaultScore())
}
