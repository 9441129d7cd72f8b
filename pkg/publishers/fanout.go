package publishers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// Fanout delivers every stats event to all configured publishers at once.
// A slow sink such as Pub/Sub, which waits for the server ack, does not delay
// the others.
type Fanout struct {
	publishers []Publisher
	log        Logger
}

// NewFanout drops nil entries from pubs.
func NewFanout(pubs []Publisher, log Logger) *Fanout {
	cp := make([]Publisher, 0, len(pubs))
	for _, p := range pubs {
		if p != nil {
			cp = append(cp, p)
		}
	}
	return &Fanout{publishers: cp, log: ensureLogger(log)}
}

// Publish returns how many publishers accepted evt, along with the joined
// errors of those that did not.
func (f *Fanout) Publish(ctx context.Context, evt Event) (int, error) {
	if f == nil || len(f.publishers) == 0 {
		return 0, nil
	}

	errs := make([]error, len(f.publishers))
	var wg sync.WaitGroup
	for i, p := range f.publishers {
		wg.Add(1)
		go func(i int, p Publisher) {
			defer wg.Done()
			if err := p.Publish(ctx, evt); err != nil {
				errs[i] = fmt.Errorf("%s publisher[%s]: %w", p.Type(), p.ID(), err)
			}
		}(i, p)
	}
	wg.Wait()

	delivered := 0
	for _, err := range errs {
		if err == nil {
			delivered++
		}
	}
	f.log.DebugObj("stats event fanned out", "publish_fanout", map[string]any{
		"stats_key":  evt.Key(),
		"delivered":  delivered,
		"publishers": len(f.publishers),
	})
	return delivered, errors.Join(errs...)
}

// Size returns the number of active publishers.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.publishers)
}

// Describe lists the id and type of each publisher, for startup logs.
func (f *Fanout) Describe() []map[string]string {
	if f == nil {
		return nil
	}
	out := make([]map[string]string, 0, len(f.publishers))
	for _, p := range f.publishers {
		out = append(out, map[string]string{"id": p.ID(), "type": p.Type()})
	}
	return out
}

// Close releases publishers that hold clients, e.g. Pub/Sub.
func (f *Fanout) Close() error {
	if f == nil {
		return nil
	}

	var errs []error
	for _, p := range f.publishers {
		if c, ok := p.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s publisher[%s]: %w", p.Type(), p.ID(), err))
			}
		}
	}
	return errors.Join(errs...)
}
