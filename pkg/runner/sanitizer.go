package runner

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/width"
)

var (
	// DefaultMaxInputSize bounds one utterance, in bytes.
	DefaultMaxInputSize = 4096
	// EnvMaxInputSize overrides DefaultMaxInputSize.
	EnvMaxInputSize = "BARGAIN_MAX_INPUT_SIZE"
)

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// ansiRe matches terminal escape sequences. Pasted colored text would
// otherwise leave "31" behind and read as a price.
var ansiRe = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)

// SanitizeInput turns one raw utterance into the text the extractor reads.
// Oversized input is rejected rather than cut, since a truncated number is a
// different price. Escape sequences and control characters are removed, full
// width forms fold to ASCII and whitespace collapses to single spaces.
func SanitizeInput(input string) (string, error) {
	if limit := inputLimit(); len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	input = ansiRe.ReplaceAllString(input, "")
	input = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return ' '
		case unicode.IsControl(r), r == utf8.RuneError:
			return -1
		}
		return r
	}, NormalizeWidth(input))
	return strings.Join(strings.Fields(input), " "), nil
}

// NormalizeWidth folds full-width digits, letters and punctuation ("４５０",
// "，", the ideographic space) to their ASCII forms.
func NormalizeWidth(s string) string {
	return width.Fold.String(s)
}

func inputLimit() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}
