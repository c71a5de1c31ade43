package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewInputValidate(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		in := ReviewInput{Rating: 5, Komentar: "Enak sekali!"}
		in.Normalize()
		require.NoError(t, in.Validate())
	})

	t.Run("comment at max length ok", func(t *testing.T) {
		in := ReviewInput{Rating: 3, Komentar: strings.Repeat("a", MaxKomentarLen)}
		require.NoError(t, in.Validate())
	})

	t.Run("multibyte runes counted as characters", func(t *testing.T) {
		in := ReviewInput{Rating: 3, Komentar: strings.Repeat("é", MaxKomentarLen)}
		require.NoError(t, in.Validate())
	})

	tests := []struct {
		name string
		in   ReviewInput
		want string
	}{
		{"rating too low", ReviewInput{Rating: 0, Komentar: "ok"}, "Rating harus antara 1 sampai 5"},
		{"rating too high", ReviewInput{Rating: 6, Komentar: "ok"}, "Rating harus antara 1 sampai 5"},
		{"empty comment", ReviewInput{Rating: 4, Komentar: "   "}, "Komentar wajib diisi"},
		{"comment too long", ReviewInput{Rating: 4, Komentar: strings.Repeat("a", MaxKomentarLen+1)}, "Komentar maksimal 500 karakter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.Normalize()
			err := tt.in.Validate()
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}
