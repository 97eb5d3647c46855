package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/bargain/pkg/domain"
)

// LoggingHooks logs every transition and concession at Info level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(ctx context.Context, ev *domain.TransitionEvent) {
			logger.InfoContext(ctx, "transition",
				"session_id", ev.SessionID,
				"event", ev.Event,
				"from", ev.From,
				"to", ev.To,
				"ai_offer", ev.AIOffer,
			)
		},
		OnConcession: func(ctx context.Context, ev *domain.ConcessionEvent) {
			logger.InfoContext(ctx, "concession",
				"session_id", ev.SessionID,
				"previous", ev.Previous,
				"next", ev.Next,
				"k", ev.Count,
				"jumped", ev.Jumped,
			)
		},
	}
}

// Combine fans each hook out to every non-nil callback, in order.
func Combine(all ...domain.LifecycleHooks) domain.LifecycleHooks {
	var transitions []func(context.Context, *domain.TransitionEvent)
	var concessions []func(context.Context, *domain.ConcessionEvent)
	for _, h := range all {
		if h.OnTransition != nil {
			transitions = append(transitions, h.OnTransition)
		}
		if h.OnConcession != nil {
			concessions = append(concessions, h.OnConcession)
		}
	}

	var combined domain.LifecycleHooks
	if len(transitions) > 0 {
		combined.OnTransition = func(ctx context.Context, ev *domain.TransitionEvent) {
			for _, fn := range transitions {
				fn(ctx, ev)
			}
		}
	}
	if len(concessions) > 0 {
		combined.OnConcession = func(ctx context.Context, ev *domain.ConcessionEvent) {
			for _, fn := range concessions {
				fn(ctx, ev)
			}
		}
	}
	return combined
}
