package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/aretw0/bargain/pkg/domain"
)

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
// Each turn is emitted as one TurnResult object. Input lines may be summary
// objects ({"intent": ..., "customer_price": ...}), JSON strings or raw text.
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder
}

// jsonEnvelope tags JSON lines so consumers can tell turns from system messages.
type jsonEnvelope struct {
	Type    string             `json:"type"`
	Turn    *domain.TurnResult `json:"turn,omitempty"`
	Reply   string             `json:"reply,omitempty"`
	Message string             `json:"message,omitempty"`
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) Output(ctx context.Context, res domain.TurnResult) error {
	return h.Encoder.Encode(jsonEnvelope{
		Type:  "turn",
		Turn:  &res,
		Reply: ComposeReply(res),
	})
}

// Input reads one line. It does not honor ctx while blocked on the reader.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || strings.TrimSpace(text) == "") {
		return "", err
	}

	text = strings.TrimSpace(text)

	var val string
	if err := json.Unmarshal([]byte(text), &val); err == nil {
		text = val
	}
	return SanitizeInput(text)
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(jsonEnvelope{Type: "system", Message: msg})
}
