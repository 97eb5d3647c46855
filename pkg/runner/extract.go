package runner

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/aretw0/bargain/pkg/domain"
)

// priceRe matches the first price-like run of digits once separators are removed.
var priceRe = regexp.MustCompile(`\d{2,6}`)

var acceptWords = []string{"deal", "accept", "agreed", "agree", "ok", "okay", "yes", "buy", "take it"}

// negationWords veto an acceptance. Apostrophes are already spaces when matched.
var negationWords = []string{"not", "no", "don t", "dont", "won t", "wont", "can t", "cant", "never", "nope"}

var counterWords = []string{
	"discount", "cheaper", "lower", "less", "too expensive", "best price",
	"reduce", "come down", "can you do",
}

// ExtractPrice returns the first 2 to 6 digit number of text, ignoring
// thousands separators, spaces and currency signs. Full-width digits count.
// Single digits are never read as prices.
func ExtractPrice(text string) *int {
	compact := strings.Map(func(r rune) rune {
		if r == ',' || r == ' ' || unicode.Is(unicode.Sc, r) {
			return -1
		}
		return r
	}, NormalizeWidth(text))
	match := priceRe.FindString(compact)
	if match == "" {
		return nil
	}
	price, err := strconv.Atoi(match)
	if err != nil {
		return nil
	}
	return &price
}

// ParseSummary reads a free-text utterance with keyword and number heuristics.
// It stands in for a language-model extractor in the terminal demo.
func ParseSummary(text string) domain.Summary {
	lower := strings.ToLower(NormalizeWidth(strings.TrimSpace(text)))
	summary := domain.Summary{
		Intent: domain.IntentOther,
		Price:  ExtractPrice(lower),
		Notes:  strings.TrimSpace(text),
	}

	switch {
	case containsAny(lower, counterWords):
		summary.Intent = domain.IntentCounterOffer
	case containsAny(lower, acceptWords) && !containsAny(lower, negationWords):
		summary.Intent = domain.IntentAccept
	case summary.Price != nil:
		summary.Intent = domain.IntentCounterOffer
	case strings.HasSuffix(lower, "?"):
		summary.Intent = domain.IntentAsk
	}
	return summary
}

// ReadSummary accepts either a JSON summary object, as produced by an external
// extractor, or plain text. Malformed JSON falls back to the text heuristics.
func ReadSummary(line string) domain.Summary {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, "{") {
		var raw struct {
			Intent string `json:"intent"`
			Price  *int   `json:"customer_price"`
			Notes  string `json:"notes"`
		}
		if err := json.Unmarshal([]byte(line), &raw); err == nil {
			return domain.Summary{
				Intent: domain.ParseIntent(raw.Intent),
				Price:  raw.Price,
				Notes:  raw.Notes,
			}
		}
	}
	return ParseSummary(line)
}

// containsAny matches whole words or phrases.
func containsAny(text string, words []string) bool {
	padded := " " + strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return ' '
	}, text) + " "
	for _, w := range words {
		if strings.Contains(padded, " "+w+" ") {
			return true
		}
	}
	return false
}
