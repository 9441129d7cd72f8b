package publishers

import (
	"context"
	"fmt"
)

// Builder creates a Publisher from a validated config entry.
type Builder func(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error)

var builders = map[string]Builder{
	TypeHTTP:   newHTTPPublisher,
	TypeSQS:    newSQSPublisher,
	TypeSNS:    newSNSPublisher,
	TypePubSub: newPubSubPublisher,
}

// Build instantiates a publisher for every enabled entry of cfgs. When one
// entry fails, publishers built so far are closed again.
func Build(ctx context.Context, cfgs []PublisherConfig, log Logger) ([]Publisher, error) {
	return buildWith(ctx, builders, cfgs, log)
}

func buildWith(ctx context.Context, table map[string]Builder, cfgs []PublisherConfig, log Logger) ([]Publisher, error) {
	pubs := make([]Publisher, 0, len(cfgs))
	for _, cfg := range cfgs {
		if !cfg.EnabledValue() {
			continue
		}

		build, ok := table[cfg.Type]
		if !ok {
			_ = NewFanout(pubs, nil).Close()
			return nil, fmt.Errorf("publisher %q: unsupported type %q", cfg.ID, cfg.Type)
		}
		pub, err := build(ctx, cfg, log)
		if err != nil {
			_ = NewFanout(pubs, nil).Close()
			return nil, fmt.Errorf("build publisher %q: %w", cfg.ID, err)
		}
		pubs = append(pubs, pub)
	}
	return pubs, nil
}
