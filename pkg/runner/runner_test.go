package runner_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/bargain"
	"github.com/aretw0/bargain/pkg/domain"
	"github.com/aretw0/bargain/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockHandler implements runner.IOHandler. Input blocks until ctx ends.
type MockHandler struct {
	mock.Mock
}

func (m *MockHandler) Output(ctx context.Context, res domain.TurnResult) error {
	args := m.Called(ctx, res)
	return args.Error(0)
}

func (m *MockHandler) Input(ctx context.Context) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func (m *MockHandler) SystemOutput(ctx context.Context, msg string) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func newNegotiation(t *testing.T) *bargain.Negotiation {
	t.Helper()
	n, err := bargain.New(domain.DefaultConfig(), bargain.WithSessionID("s1"))
	require.NoError(t, err)
	return n
}

func runText(t *testing.T, n *bargain.Negotiation, input string) string {
	t.Helper()
	var out bytes.Buffer
	r := runner.NewRunner(runner.WithInputHandler(runner.NewTextHandler(strings.NewReader(input), &out)))
	require.NoError(t, r.Run(context.Background(), n))
	return out.String()
}

func TestRunner_TextConversation(t *testing.T) {
	n := newNegotiation(t)
	out := runText(t, n, "hello\n440\n430\n455\n")

	assert.Contains(t, out, "listed at **500**")
	assert.Contains(t, out, "I can offer **470**.")
	assert.Contains(t, out, "I can offer **450**.")
	assert.Contains(t, out, "Deal!")
	assert.Contains(t, out, "[System] negotiation s1 closed: ACCEPT at 455 after 2 concessions")

	assert.Equal(t, domain.PhaseEnd, n.Snapshot().Phase)
	assert.Equal(t, domain.PhaseAccept, n.Transcript().Outcome)
}

func TestRunner_OpeningOnStartedNegotiation(t *testing.T) {
	n := newNegotiation(t)
	_, err := n.Start(context.Background())
	require.NoError(t, err)

	out := runText(t, n, "440\n")
	assert.Contains(t, out, "listed at **500**")
	assert.Less(t, strings.Index(out, "listed at **500**"), strings.Index(out, "I can offer **470**."))
}

func TestRunner_NoOpeningMidNegotiation(t *testing.T) {
	n := newNegotiation(t)
	_, err := n.Start(context.Background())
	require.NoError(t, err)
	_, err = n.SubmitPrice(context.Background(), 440)
	require.NoError(t, err)

	out := runText(t, n, "")
	assert.NotContains(t, out, "listed at")
}

func TestRunner_EOFGivesUp(t *testing.T) {
	n := newNegotiation(t)
	out := runText(t, n, "440\n")

	assert.Contains(t, out, "I can offer **470**.")
	assert.Contains(t, out, "Thanks for your time")
	assert.Contains(t, out, "closed: REJECT at 470 after 1 concessions")
	assert.Equal(t, domain.PhaseReject, n.Transcript().Outcome)
}

func TestRunner_Commands(t *testing.T) {
	t.Run("Deal Accepts Standing Offer", func(t *testing.T) {
		n := newNegotiation(t)
		out := runText(t, n, "/deal\n")
		assert.Contains(t, out, "is yours for **500**")
		assert.Equal(t, domain.PhaseAccept, n.Transcript().Outcome)
	})

	t.Run("Deal Word Confirms", func(t *testing.T) {
		n := newNegotiation(t)
		out := runText(t, n, "440\ndeal\n")
		assert.Contains(t, out, "is yours for **470**")
		assert.Equal(t, 470, n.Transcript().FinalOffer)
	})

	t.Run("Negated Acceptance Keeps Talking", func(t *testing.T) {
		n := newNegotiation(t)
		out := runText(t, n, "440\nnot ok\nI don't agree\n")
		assert.NotContains(t, out, "Deal!")
		assert.Contains(t, out, "closed: REJECT at 470")
	})

	t.Run("Discount Request Does Not Concede", func(t *testing.T) {
		n := newNegotiation(t)
		runText(t, n, "any discount?\ncheaper please\n")
		assert.Equal(t, 500, n.Transcript().FinalOffer)
		assert.Zero(t, n.Transcript().Concessions)
	})

	t.Run("Quit Rejects", func(t *testing.T) {
		n := newNegotiation(t)
		out := runText(t, n, "440\nquit\n470\n")
		assert.Contains(t, out, "closed: REJECT")
		state := n.State()
		require.NotNil(t, state.LastUserOffer)
		assert.Equal(t, 440, *state.LastUserOffer, "input after quit must not reach the machine")
	})
}

func TestRunner_OversizedInputIsRetried(t *testing.T) {
	t.Setenv(runner.EnvMaxInputSize, "8")

	n := newNegotiation(t)
	out := runText(t, n, "1234567890123\n440\n/deal\n")

	assert.Contains(t, out, "Error: input exceeds maximum allowed size")
	assert.Contains(t, out, "I can offer **470**.")
	assert.Contains(t, out, "closed: ACCEPT")
}

func TestRunner_IdleTimeout(t *testing.T) {
	n := newNegotiation(t)
	h := new(MockHandler)
	h.On("Output", mock.Anything, mock.Anything).Return(nil).Twice()
	h.On("SystemOutput", mock.Anything, mock.MatchedBy(func(msg string) bool {
		return strings.Contains(msg, "REJECT")
	})).Return(nil).Once()

	r := runner.NewRunner(
		runner.WithInputHandler(h),
		runner.WithIdleTimeout(10*time.Millisecond),
	)
	require.NoError(t, r.Run(context.Background(), n))

	h.AssertExpectations(t)
	history := n.History()
	require.NotEmpty(t, history)
	assert.Equal(t, domain.PhaseEnd, history[len(history)-1].Phase)
	assert.Equal(t, domain.PhaseReject, history[len(history)-2].Phase)
}

func TestRunner_CancelledContextGivesUp(t *testing.T) {
	n := newNegotiation(t)
	h := new(MockHandler)
	h.On("Output", mock.Anything, mock.Anything).Return(nil)
	h.On("SystemOutput", mock.Anything, mock.Anything).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := runner.NewRunner(runner.WithInputHandler(h))
	require.NoError(t, r.Run(ctx, n))
	assert.Equal(t, domain.PhaseReject, n.Transcript().Outcome)
}

func TestRunner_JSONLines(t *testing.T) {
	n := newNegotiation(t)
	input := strings.Join([]string{
		`{"intent":"counter_offer","customer_price":-5}`,
		`{"intent":"counter_offer","customer_price":440}`,
		`"430"`,
		`/quit`,
	}, "\n")

	var out bytes.Buffer
	r := runner.NewRunner(runner.WithInputHandler(runner.NewJSONHandler(strings.NewReader(input), &out)))
	require.NoError(t, r.Run(context.Background(), n))

	type line struct {
		Type    string             `json:"type"`
		Turn    *domain.TurnResult `json:"turn"`
		Reply   string             `json:"reply"`
		Message string             `json:"message"`
	}
	var lines []line
	sc := bufio.NewScanner(&out)
	for sc.Scan() {
		var l line
		require.NoError(t, json.Unmarshal(sc.Bytes(), &l))
		lines = append(lines, l)
	}

	types := make([]string, 0, len(lines))
	for _, l := range lines {
		types = append(types, l.Type)
	}
	assert.Equal(t, []string{"turn", "system", "turn", "turn", "turn", "system"}, types)

	assert.Contains(t, lines[1].Message, "invalid offer")
	require.NotNil(t, lines[2].Turn)
	assert.Equal(t, 470, lines[2].Turn.Snapshot.AIOffer)
	assert.Equal(t, "I can offer **470**.", lines[2].Reply)
	require.NotNil(t, lines[3].Turn)
	assert.Equal(t, 450, lines[3].Turn.Snapshot.AIOffer)
	assert.Equal(t, domain.PhaseReject, lines[4].Turn.Snapshot.Phase)
}
