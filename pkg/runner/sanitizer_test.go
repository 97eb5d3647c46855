package runner

import (
	"strings"
	"testing"

	"github.com/aretw0/bargain/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Plain", "I can pay 440", "I can pay 440"},
		{"Colored Paste", "\x1b[31m440\x1b[0m please", "440 please"},
		{"Cursor Sequence", "\x1b[2K\x1b[1G430", "430"},
		{"Null Byte Inside Number", "44\x000", "440"},
		{"Bell", "Deal\x07", "Deal"},
		{"Whitespace Collapses", "  ok\t\t 455 \r\n", "ok 455"},
		{"Full-Width Digits", "４４０でどう", "440でどう"},
		{"Ideographic Space", "ok　４５５", "ok 455"},
		{"Full-Width Comma", "１，２００", "1,200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeInput(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeInput_FeedsExtraction(t *testing.T) {
	clean, err := SanitizeInput("\x1b[1m￥４３０\x1b[0m，final")
	require.NoError(t, err)
	assert.Equal(t, domain.Price(430), ExtractPrice(clean))
}

func TestSanitizeInput_Limits(t *testing.T) {
	t.Run("Oversized Is Rejected", func(t *testing.T) {
		_, err := SanitizeInput(strings.Repeat("9", DefaultMaxInputSize+1))
		assert.ErrorIs(t, err, ErrInputTooLarge)
	})

	t.Run("Env Override", func(t *testing.T) {
		t.Setenv(EnvMaxInputSize, "6")
		_, err := SanitizeInput("ok 4550")
		assert.ErrorIs(t, err, ErrInputTooLarge)
		_, err = SanitizeInput("ok 455")
		assert.NoError(t, err)
	})

	t.Run("Bad Override Ignored", func(t *testing.T) {
		t.Setenv(EnvMaxInputSize, "zero")
		_, err := SanitizeInput(strings.Repeat("9", 100))
		assert.NoError(t, err)
	})

	t.Run("Invalid UTF-8", func(t *testing.T) {
		_, err := SanitizeInput("44\xff0")
		assert.ErrorIs(t, err, ErrInvalidUTF8)
	})
}
