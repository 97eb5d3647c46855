package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/bargain/internal/logging"
	"github.com/aretw0/bargain/pkg/adapters/file"
	"github.com/aretw0/bargain/pkg/adapters/memory"
	"github.com/aretw0/bargain/pkg/adapters/redis"
	"github.com/aretw0/bargain/pkg/adapters/sqldb"
	"github.com/aretw0/bargain/pkg/domain"
	"github.com/aretw0/bargain/pkg/observability"
	"github.com/aretw0/bargain/pkg/persistence/middleware"
	"github.com/aretw0/bargain/pkg/ports"
	"github.com/aretw0/bargain/pkg/profile"
	"github.com/aretw0/bargain/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
)

// Host bundles what the commands need: the base profile, the session manager
// and the resources that must be released on exit.
type Host struct {
	Settings Settings
	Config   domain.Config
	Logger   *slog.Logger
	Sessions *session.Manager
	Registry *prometheus.Registry

	closers []io.Closer
}

// NewLogger builds the process logger. Logs always go to Stderr.
func NewLogger(s Settings) (*slog.Logger, error) {
	level, err := logging.ParseLevel(s.LogLevel)
	if err != nil {
		return nil, err
	}
	if s.LogFormat == "json" {
		return logging.NewJSON(os.Stderr, level), nil
	}
	return logging.New(level), nil
}

// LoadProfile reads the base negotiation profile, or the defaults when none is set.
func LoadProfile(path string) (domain.Config, error) {
	if path == "" {
		return domain.DefaultConfig(), nil
	}
	cfg, err := profile.Load(path)
	if err != nil {
		return domain.Config{}, fmt.Errorf("error loading profile: %w", err)
	}
	return cfg, nil
}

// NewHost wires settings into a ready session manager.
func NewHost(ctx context.Context, s Settings, logger *slog.Logger) (*Host, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	cfg, err := LoadProfile(s.Profile)
	if err != nil {
		return nil, err
	}

	h := &Host{
		Settings: s,
		Config:   cfg,
		Logger:   logger,
	}

	archive, locker, err := h.openArchive(ctx)
	if err != nil {
		return nil, err
	}
	archive, err = protectArchive(archive, s)
	if err != nil {
		_ = h.Close()
		return nil, err
	}

	hooks := observability.LoggingHooks(logger)
	if s.Metrics {
		h.Registry = prometheus.NewRegistry()
		hooks = observability.Combine(hooks, observability.NewMetrics(h.Registry).Hooks())
	}

	opts := []session.Option{
		session.WithArchive(archive),
		session.WithLifecycleHooks(hooks),
		session.WithLogger(logger),
	}
	if locker != nil {
		opts = append(opts, session.WithLocker(locker))
	}
	h.Sessions = session.NewManager(opts...)

	logger.Debug("Host ready", "archive", s.ArchiveBackend, "profile", s.Profile, "metrics", s.Metrics)
	return h, nil
}

// openArchive selects the transcript archive. Redis also provides the distributed locker.
func (h *Host) openArchive(ctx context.Context) (ports.Archive, ports.DistributedLocker, error) {
	s := h.Settings
	switch s.ArchiveBackend {
	case BackendMemory, "":
		return memory.NewArchive(), nil, nil
	case BackendFile:
		return file.New(s.ArchivePath), nil, nil
	case BackendRedis:
		var opts []redis.Option
		if s.ArchiveTTL > 0 {
			opts = append(opts, redis.WithTTL(s.ArchiveTTL))
		}
		archive := redis.New(s.RedisAddr, s.RedisPassword, s.RedisDB, opts...)
		if err := archive.Client().Ping(ctx).Err(); err != nil {
			_ = archive.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", s.RedisAddr, err)
		}
		h.closers = append(h.closers, archive)
		return archive, redis.NewLocker(archive.Client(), "bargain:"), nil
	case BackendSQLite, BackendMySQL:
		archive, err := sqldb.Open(ctx, s.ArchiveBackend, s.ArchiveDSN)
		if err != nil {
			return nil, nil, err
		}
		h.closers = append(h.closers, archive)
		return archive, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown archive backend %q", s.ArchiveBackend)
	}
}

// RedactFloors is the archive.redact shorthand for middleware.FloorFields.
const RedactFloors = "floors"

// protectArchive applies redaction, then sealing, as configured. The first
// archive key encrypts; the others only decrypt, for rotation.
func protectArchive(archive ports.Archive, s Settings) (ports.Archive, error) {
	var mws []middleware.Middleware

	if len(s.ArchiveRedact) > 0 {
		var patterns []string
		for _, p := range s.ArchiveRedact {
			if p == RedactFloors {
				patterns = append(patterns, middleware.FloorFields...)
				continue
			}
			patterns = append(patterns, p)
		}
		redact, err := middleware.NewRedactionMiddleware(patterns)
		if err != nil {
			return nil, err
		}
		mws = append(mws, redact)
	}

	if len(s.ArchiveKeys) > 0 {
		keys := make([][]byte, len(s.ArchiveKeys))
		for i, encoded := range s.ArchiveKeys {
			key, err := middleware.ParseKey(encoded)
			if err != nil {
				return nil, err
			}
			keys[i] = key
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    keys[0],
			FallbackKeys: keys[1:],
		}))
	}

	return middleware.Chain(archive, mws...), nil
}

// Close releases the archive connections.
func (h *Host) Close() error {
	var errs []error
	for _, c := range h.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	h.closers = nil
	return errors.Join(errs...)
}
