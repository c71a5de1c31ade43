package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatingAverage(t *testing.T) {
	tests := []struct {
		name  string
		sum   int
		count int
		want  float64
	}{
		{"no reviews", 0, 0, 0},
		{"single review", 4, 1, 4.0},
		{"two reviews rounds to one decimal", 6, 2, 3.0},
		{"back to one after delete", 2, 1, 2.0},
		{"repeating third rounds up", 11, 3, 3.7},
		{"repeating third rounds down", 10, 3, 3.3},
		{"half rounds up", 9, 2, 4.5},
		{"all fives", 25, 5, 5.0},
		{"negative count treated as empty", 3, -1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RatingAverage(tt.sum, tt.count))
		})
	}
}
