package poster

import (
	"context"
	"fmt"
	"time"

	"github.com/Adda-Baaj/boticord-go/internal/gateway"
	"github.com/Adda-Baaj/boticord-go/internal/logger"
	"github.com/Adda-Baaj/boticord-go/pkg/boticord"
	"github.com/Adda-Baaj/boticord-go/pkg/publishers"
)

// StatsPoster submits bot stats to Boticord.
type StatsPoster interface {
	PostBotStats(ctx context.Context, stats boticord.BotStats) error
}

// Deduper remembers stats snapshots that were already submitted.
type Deduper interface {
	SeenStats(key string) (bool, error)
	MarkStats(key string) error
}

// EventPublisher forwards submitted stats to downstream sinks.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// Result describes the outcome of one RunOnce pass.
type Result struct {
	Stats     boticord.BotStats
	Posted    bool
	Published int
}

// Service reads stats from a source and posts changed snapshots.
type Service struct {
	botID      string
	apiVersion int
	source     gateway.StatsSource
	client     StatsPoster
	dedupe     Deduper
	sink       EventPublisher
	log        logger.Logger
	now        func() time.Time
}

// NewService wires a poster. dedupe and sink may be nil.
func NewService(botID string, apiVersion int, source gateway.StatsSource, client StatsPoster, dedupe Deduper, sink EventPublisher, log logger.Logger) *Service {
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &Service{
		botID:      botID,
		apiVersion: apiVersion,
		source:     source,
		client:     client,
		dedupe:     dedupe,
		sink:       sink,
		log:        log,
		now:        time.Now,
	}
}

// RunOnce posts the current stats unless the same snapshot was posted within
// the dedupe window, which is kept shorter than the post interval. Sink failures are logged and do not fail the pass.
func (s *Service) RunOnce(ctx context.Context) (Result, error) {
	if s == nil || s.source == nil || s.client == nil {
		return Result{}, fmt.Errorf("poster service is not initialized")
	}

	stats, err := s.source.Stats(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("read stats: %w", err)
	}
	res := Result{Stats: stats}

	key := publishers.StatsKey(s.botID, stats)
	if s.dedupe != nil {
		seen, err := s.dedupe.SeenStats(key)
		if err != nil {
			s.log.WarnObj("dedupe lookup failed", "dedupe_error", map[string]any{
				"key":   key,
				"error": err.Error(),
			})
		} else if seen {
			s.log.DebugObj("stats unchanged; skipping post", "stats", stats)
			return res, nil
		}
	}

	if err := s.client.PostBotStats(ctx, stats); err != nil {
		meta := map[string]any{"error": err.Error()}
		if code, ok := boticord.StatusCode(err); ok {
			meta["status"] = code
		}
		s.log.ErrorObj("boticord stats post failed", "post_error", meta)
		return res, fmt.Errorf("post stats: %w", err)
	}
	res.Posted = true
	s.log.InfoObj("boticord stats posted", "stats", stats)

	if s.dedupe != nil {
		if err := s.dedupe.MarkStats(key); err != nil {
			s.log.WarnObj("dedupe mark failed", "dedupe_error", map[string]any{
				"key":   key,
				"error": err.Error(),
			})
		}
	}

	if s.sink != nil {
		evt := publishers.NewEvent(s.botID, s.apiVersion, stats)
		evt.PostedAt = s.now().UTC()
		n, err := s.sink.Publish(ctx, evt)
		res.Published = n
		if err != nil {
			s.log.ErrorObj("stats event publish failed", "publish_error", map[string]any{
				"delivered": n,
				"error":     err.Error(),
			})
		}
	}
	return res, nil
}

// Run posts immediately and then on every tick until ctx is cancelled.
func (s *Service) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("post interval must be positive")
	}

	if _, err := s.RunOnce(ctx); err != nil {
		s.log.ErrorObj("initial stats post failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.InfoObj("poster loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.log.ErrorObj("scheduled stats post failed", "error", err)
			}
		}
	}
}
