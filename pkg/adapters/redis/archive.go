package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/bargain/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by this package.
const DefaultPrefix = "bargain:transcript:"

// noExpiry is the index score of transcripts kept forever (2100-01-01).
const noExpiry = 4102444800

// Archive implements ports.Archive using Redis.
// Transcripts are stored as JSON strings; a sorted set indexes them by expiry.
type Archive struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Archive)

// WithTTL sets the retention period of transcripts. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(a *Archive) {
		a.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(a *Archive) {
		a.prefix = prefix
	}
}

// New creates a new Redis archive with options.
func New(address, password string, db int, opts ...Option) *Archive {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis archive from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Archive {
	archive := &Archive{
		client: client,
		prefix: DefaultPrefix,
	}

	for _, opt := range opts {
		opt(archive)
	}

	return archive
}

// Client exposes the underlying client so a Locker can share the connection pool.
func (a *Archive) Client() *backend.Client {
	return a.client
}

func (a *Archive) key(sessionID string) string {
	return a.prefix + sessionID
}

func (a *Archive) indexKey() string {
	return a.prefix + "index"
}

// Put persists the transcript.
func (a *Archive) Put(ctx context.Context, transcript *domain.Transcript) error {
	data, err := json.Marshal(transcript)
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}

	score := float64(noExpiry)
	if a.ttl > 0 {
		score = float64(time.Now().Add(a.ttl).Unix())
	}

	pipe := a.client.Pipeline()
	pipe.Set(ctx, a.key(transcript.SessionID), data, a.ttl)
	pipe.ZAdd(ctx, a.indexKey(), backend.Z{
		Score:  score,
		Member: transcript.SessionID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Get retrieves the transcript. An expired transcript is reported as not found.
func (a *Archive) Get(ctx context.Context, sessionID string) (*domain.Transcript, error) {
	val, err := a.client.Get(ctx, a.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrTranscriptNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var transcript domain.Transcript
	if err := json.Unmarshal(val, &transcript); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transcript: %w", err)
	}
	return &transcript, nil
}

// Delete removes the transcript and its index entry.
func (a *Archive) Delete(ctx context.Context, sessionID string) error {
	pipe := a.client.Pipeline()
	pipe.Del(ctx, a.key(sessionID))
	pipe.ZRem(ctx, a.indexKey(), sessionID)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns archived sessions, pruning expired index entries first.
func (a *Archive) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	err := a.client.ZRemRangeByScore(ctx, a.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired transcripts: %w", err)
	}

	ids, err := a.client.ZRange(ctx, a.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list transcripts: %w", err)
	}
	return ids, nil
}

// Close closes the redis client.
func (a *Archive) Close() error {
	return a.client.Close()
}
