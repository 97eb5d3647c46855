package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/aretw0/bargain/pkg/domain"
	"github.com/aretw0/bargain/pkg/ports"
)

// FloorFields matches the seller's reservation prices in a transcript config.
var FloorFields = []string{`^bar_price$`, `^stop_floor$`, `^psych_zone_price$`}

type redactionMiddleware struct {
	next     ports.Archive
	patterns []*regexp.Regexp
}

// NewRedactionMiddleware zeroes every config field whose JSON key matches one
// of the patterns before the transcript is stored. Redaction is one way.
func NewRedactionMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.Archive) ports.Archive {
		return &redactionMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *redactionMiddleware) Put(ctx context.Context, transcript *domain.Transcript) error {
	// Work on a copy; the caller's transcript stays intact.
	cloned := transcript.Clone()

	cfg, err := m.redact(cloned.Config)
	if err != nil {
		return err
	}
	cloned.Config = cfg
	return m.next.Put(ctx, cloned)
}

func (m *redactionMiddleware) Get(ctx context.Context, sessionID string) (*domain.Transcript, error) {
	return m.next.Get(ctx, sessionID)
}

func (m *redactionMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *redactionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *redactionMiddleware) redact(cfg domain.Config) (domain.Config, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return cfg, fmt.Errorf("failed to marshal config: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	maskMap(fields, m.patterns)

	data, err = json.Marshal(fields)
	if err != nil {
		return cfg, fmt.Errorf("failed to marshal redacted config: %w", err)
	}
	var redacted domain.Config
	if err := json.Unmarshal(data, &redacted); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal redacted config: %w", err)
	}
	return redacted, nil
}

// maskMap drops matching keys so they decode as zero values.
func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		for _, p := range patterns {
			if p.MatchString(k) {
				delete(m, k)
				break
			}
		}

		// Recurse if map
		if subMap, ok := v.(map[string]any); ok {
			maskMap(subMap, patterns)
		}
	}
}
