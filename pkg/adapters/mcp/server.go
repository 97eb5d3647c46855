package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/bargain"
	"github.com/aretw0/bargain/internal/logging"
	"github.com/aretw0/bargain/pkg/domain"
	"github.com/aretw0/bargain/pkg/profile"
	"github.com/aretw0/bargain/pkg/runner"
	"github.com/aretw0/bargain/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	negotiationsURI = "bargain://negotiations"
	negotiationURI  = "bargain://negotiations/{id}"
)

// TurnResponse is returned by every tool that moves a negotiation.
type TurnResponse struct {
	ID    string            `json:"id" jsonschema_description:"Negotiation ID"`
	Turn  domain.TurnResult `json:"turn" jsonschema_description:"Summary, snapshot, contract and core view of the turn"`
	Reply string            `json:"reply" jsonschema_description:"Reference reply quoting only offer_to_show"`
}

// GuardResponse carries a drafted reply after price enforcement.
type GuardResponse struct {
	Reply string `json:"reply" jsonschema_description:"Draft with every disallowed price replaced"`
}

type startArgs struct {
	SessionID string `json:"session_id"`
	Config    string `json:"config"`
}

type turnArgs struct {
	SessionID     string `json:"session_id"`
	Intent        string `json:"intent"`
	CustomerPrice *int   `json:"customer_price"`
	Notes         string `json:"notes"`
	Text          string `json:"text"`
}

type signalArgs struct {
	SessionID string `json:"session_id"`
	Signal    string `json:"signal"`
}

type sessionArgs struct {
	SessionID string `json:"session_id"`
}

type guardArgs struct {
	SessionID string `json:"session_id"`
	Draft     string `json:"draft"`
}

// Server exposes negotiations to language-model hosts over MCP. The host plays
// the reply renderer: it only ever sees contracts and never decides prices.
type Server struct {
	sessions  *session.Manager
	base      domain.Config
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithBaseConfig sets the profile new negotiations start from.
func WithBaseConfig(cfg domain.Config) Option {
	return func(s *Server) {
		s.base = cfg.Clone()
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		sessions:  sessions,
		base:      domain.DefaultConfig(),
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("bargain-mcp", strings.TrimSpace(bargain.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx ends.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, stopping MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: start_negotiation
	startTool := mcp.NewTool("start_negotiation",
		mcp.WithDescription("Start a negotiation anchored at the list price. Returns its ID and the opening contract."),
		mcp.WithString("session_id", mcp.Description("Negotiation ID to use (optional, generated when omitted)")),
		mcp.WithString("config", mcp.Description("JSON object of profile overrides, e.g. {\"list_price\": 900} (optional)")),
		mcp.WithOutputSchema[TurnResponse](),
	)
	s.mcpServer.AddTool(startTool, mcp.NewStructuredToolHandler(s.handleStart))

	// TOOL: submit_turn
	turnTool := mcp.NewTool("submit_turn",
		mcp.WithDescription("Submit the customer's latest message, as a structured summary or as raw text. Only a price moves the negotiation; use send_signal confirm to close a deal."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Negotiation ID")),
		mcp.WithString("intent", mcp.Description("Customer intent"),
			mcp.Enum(string(domain.IntentCounterOffer), string(domain.IntentAccept), string(domain.IntentAsk), string(domain.IntentOther))),
		mcp.WithNumber("customer_price", mcp.Description("Price named by the customer, if any"), mcp.Min(0)),
		mcp.WithString("notes", mcp.Description("Free-form notes about the message")),
		mcp.WithString("text", mcp.Description("Raw customer message, read with keyword heuristics when no summary is given")),
		mcp.WithOutputSchema[TurnResponse](),
	)
	s.mcpServer.AddTool(turnTool, mcp.NewStructuredToolHandler(s.handleTurn))

	// TOOL: send_signal
	signalTool := mcp.NewTool("send_signal",
		mcp.WithDescription("Send an external signal: confirm accepts the standing offer, giveup and timeout reject, finalize closes."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Negotiation ID")),
		mcp.WithString("signal", mcp.Required(), mcp.Description("Signal name"),
			mcp.Enum("confirm", "giveup", "timeout", "finalize")),
		mcp.WithOutputSchema[TurnResponse](),
	)
	s.mcpServer.AddTool(signalTool, mcp.NewStructuredToolHandler(s.handleSignal))

	// TOOL: get_contract
	contractTool := mcp.NewTool("get_contract",
		mcp.WithDescription("Get the snapshot and the contract a reply must obey."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Negotiation ID")),
		mcp.WithOutputSchema[session.View](),
	)
	s.mcpServer.AddTool(contractTool, mcp.NewStructuredToolHandler(s.handleContract))

	// TOOL: guard_reply
	guardTool := mcp.NewTool("guard_reply",
		mcp.WithDescription("Check a drafted reply: every price other than offer_to_show is replaced."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Negotiation ID")),
		mcp.WithString("draft", mcp.Required(), mcp.Description("Drafted reply text")),
		mcp.WithOutputSchema[GuardResponse](),
	)
	s.mcpServer.AddTool(guardTool, mcp.NewStructuredToolHandler(s.handleGuard))
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest, args startArgs) (TurnResponse, error) {
	var overrides map[string]any
	if args.Config != "" {
		if err := json.Unmarshal([]byte(args.Config), &overrides); err != nil {
			return TurnResponse{}, fmt.Errorf("config must be a JSON object: %w", err)
		}
	}
	cfg, err := profile.Decode(s.base, overrides)
	if err != nil {
		return TurnResponse{}, err
	}

	var opts []bargain.Option
	if args.SessionID != "" {
		opts = append(opts, bargain.WithSessionID(args.SessionID))
	}
	id, err := s.sessions.Create(ctx, cfg, opts...)
	if err != nil {
		return TurnResponse{}, err
	}
	return s.turn(ctx, id, func(_ context.Context, n *bargain.Negotiation) (domain.TurnResult, error) {
		return n.View(domain.Summary{Intent: domain.IntentOther}), nil
	})
}

func (s *Server) handleTurn(ctx context.Context, request mcp.CallToolRequest, args turnArgs) (TurnResponse, error) {
	summary := domain.Summary{
		Intent: domain.ParseIntent(args.Intent),
		Price:  args.CustomerPrice,
		Notes:  args.Notes,
	}
	if args.Text != "" && args.Intent == "" && args.CustomerPrice == nil {
		clean, err := runner.SanitizeInput(args.Text)
		if err != nil {
			s.logger.Warn("MCP submit_turn: Input rejected", "err", err, "size", len(args.Text))
			return TurnResponse{}, fmt.Errorf("input rejected: %w", err)
		}
		summary = runner.ParseSummary(clean)
	}

	return s.turn(ctx, args.SessionID, func(ctx context.Context, n *bargain.Negotiation) (domain.TurnResult, error) {
		return n.Turn(ctx, summary)
	})
}

func (s *Server) handleSignal(ctx context.Context, request mcp.CallToolRequest, args signalArgs) (TurnResponse, error) {
	return s.turn(ctx, args.SessionID, func(ctx context.Context, n *bargain.Negotiation) (domain.TurnResult, error) {
		if _, err := n.Signal(ctx, args.Signal); err != nil {
			return domain.TurnResult{}, err
		}
		return n.View(domain.Summary{Intent: domain.IntentOther}), nil
	})
}

func (s *Server) handleContract(ctx context.Context, request mcp.CallToolRequest, args sessionArgs) (session.View, error) {
	return s.sessions.View(ctx, args.SessionID)
}

func (s *Server) handleGuard(ctx context.Context, request mcp.CallToolRequest, args guardArgs) (GuardResponse, error) {
	view, err := s.sessions.View(ctx, args.SessionID)
	if err != nil {
		return GuardResponse{}, err
	}
	return GuardResponse{Reply: runner.GuardReply(args.Draft, view.Contract)}, nil
}

func (s *Server) turn(
	ctx context.Context,
	id string,
	fn func(context.Context, *bargain.Negotiation) (domain.TurnResult, error),
) (TurnResponse, error) {
	if id == "" {
		return TurnResponse{}, errors.New("session_id is required")
	}
	var res domain.TurnResult
	err := s.sessions.Do(ctx, id, func(ctx context.Context, n *bargain.Negotiation) error {
		var err error
		res, err = fn(ctx, n)
		return err
	})
	if err != nil {
		s.logger.Warn("MCP tool failed", "session_id", id, "err", err)
		return TurnResponse{}, err
	}
	return TurnResponse{
		ID:    id,
		Turn:  res,
		Reply: runner.ComposeReply(res),
	}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: bargain://negotiations
	s.mcpServer.AddResource(mcp.NewResource(negotiationsURI, "Live negotiations",
		mcp.WithMIMEType("application/json"),
	), s.readNegotiations)

	// EXPOSE: bargain://negotiations/{id}
	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(negotiationURI, "Negotiation contract",
		mcp.WithTemplateDescription("Snapshot and contract of one negotiation"),
		mcp.WithTemplateMIMEType("application/json"),
	), s.readNegotiation)
}

func (s *Server) readNegotiations(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	ids, err := s.sessions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list negotiations: %w", err)
	}
	views := make([]session.View, 0, len(ids))
	for _, id := range ids {
		view, err := s.sessions.View(ctx, id)
		if errors.Is(err, domain.ErrSessionNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return jsonContents(negotiationsURI, views)
}

func (s *Server) readNegotiation(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI
	id := strings.TrimPrefix(uri, negotiationsURI+"/")
	if id == "" || id == uri {
		return nil, fmt.Errorf("invalid negotiation URI %q", uri)
	}
	view, err := s.sessions.View(ctx, id)
	if err != nil {
		return nil, err
	}
	return jsonContents(uri, view)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
