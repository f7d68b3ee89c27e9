package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rektbot/pkg/errors"
)

func TestParseThreshold(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare small number reads as thousands", "15", "15000"},
		{"k suffix", "15k", "15000"},
		{"uppercase K", "15K", "15000"},
		{"full number passes through", "15000", "15000"},
		{"exactly one thousand passes through", "1000", "1000"},
		{"just below one thousand multiplies", "999", "999000"},
		{"k suffix on large number still multiplies", "1500k", "1500000"},
		{"fractional thousands", "2.5", "2500"},
		{"dollar sign stripped", "$50", "50000"},
		{"thousands separators stripped", "1,500,000", "1500000"},
		{"surrounding whitespace", "  100k  ", "100000"},
		{"inner space", "15 000", "15000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseThreshold(tt.input)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseThreshold_Idempotent(t *testing.T) {
	first, err := ParseThreshold("15")
	require.NoError(t, err)

	second, err := ParseThreshold(first.String())
	require.NoError(t, err)

	assert.True(t, first.Equal(second), "re-parsing a normalized value must not multiply again")
}

func TestParseThreshold_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"letters", "abc"},
		{"zero", "0"},
		{"negative", "-5"},
		{"k alone", "k"},
		{"trailing garbage", "15x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseThreshold(tt.input)

			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidInput))
		})
	}
}
