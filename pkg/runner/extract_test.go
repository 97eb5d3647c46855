package runner

import (
	"testing"

	"github.com/aretw0/bargain/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPrice(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *int
	}{
		{"Plain", "how about 440", domain.Price(440)},
		{"Thousands Separator", "I can pay 1,200", domain.Price(1200)},
		{"First Match Wins", "440 or 450", domain.Price(440)},
		{"Spaces Are Stripped", "4 40", domain.Price(440)},
		{"Longest Run Is Six Digits", "1234567", domain.Price(123456)},
		{"Single Digit Ignored", "give me 5 minutes", nil},
		{"No Number", "too expensive", nil},
		{"Currency Sign", "$440", domain.Price(440)},
		{"Trailing Currency", "440 € final", domain.Price(440)},
		{"Full-Width Yen", "￥４４０", domain.Price(440)},
		{"Full-Width Comma", "１，２００", domain.Price(1200)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractPrice(tt.text))
		})
	}
}

func TestParseSummary(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		intent domain.Intent
		price  *int
	}{
		{"Bare Price", "440", domain.IntentCounterOffer, domain.Price(440)},
		{"Price With Words", "I'll pay 430 tops", domain.IntentCounterOffer, domain.Price(430)},
		{"Discount Request", "Any discount?", domain.IntentCounterOffer, nil},
		{"Too Expensive", "That is too expensive", domain.IntentCounterOffer, nil},
		{"Deal", "Deal!", domain.IntentAccept, nil},
		{"Accept With Price", "ok 450", domain.IntentAccept, domain.Price(450)},
		{"Question", "Does it ship abroad?", domain.IntentAsk, nil},
		{"Chit Chat", "hello there", domain.IntentOther, nil},
		{"Substring Is Not A Word", "bookshelf", domain.IntentOther, nil},
		{"Negated Ok", "not ok", domain.IntentOther, nil},
		{"Negated Buy", "No, I won't buy it", domain.IntentOther, nil},
		{"Negated Agree", "I don't agree", domain.IntentOther, nil},
		{"Negated With Price", "not ok, 430 at most", domain.IntentCounterOffer, domain.Price(430)},
		{"Full-Width Price", "４５０ okay", domain.IntentAccept, domain.Price(450)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSummary(tt.text)
			assert.Equal(t, tt.intent, got.Intent)
			assert.Equal(t, tt.price, got.Price)
			assert.NotEmpty(t, got.Notes)
		})
	}
}

func TestReadSummary(t *testing.T) {
	t.Run("JSON Object", func(t *testing.T) {
		got := ReadSummary(`{"intent":"Counter_Offer","customer_price":440,"notes":"firm"}`)
		assert.Equal(t, domain.IntentCounterOffer, got.Intent)
		require.NotNil(t, got.Price)
		assert.Equal(t, 440, *got.Price)
		assert.Equal(t, "firm", got.Notes)
	})

	t.Run("JSON Without Price", func(t *testing.T) {
		got := ReadSummary(`{"intent":"accept"}`)
		assert.Equal(t, domain.IntentAccept, got.Intent)
		assert.Nil(t, got.Price)
	})

	t.Run("Unknown Intent", func(t *testing.T) {
		got := ReadSummary(`{"intent":"haggle","customer_price":300}`)
		assert.Equal(t, domain.IntentOther, got.Intent)
		assert.Equal(t, domain.Price(300), got.Price)
	})

	t.Run("Malformed JSON Falls Back", func(t *testing.T) {
		got := ReadSummary(`{"intent": 440`)
		assert.Equal(t, domain.IntentCounterOffer, got.Intent)
		assert.Equal(t, domain.Price(440), got.Price)
	})

	t.Run("Plain Text", func(t *testing.T) {
		got := ReadSummary("deal")
		assert.Equal(t, domain.IntentAccept, got.Intent)
	})
}
