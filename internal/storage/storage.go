// Package storage remembers which stats snapshots were already submitted.
package storage

import (
	"fmt"
	"strings"
	"time"
)

// Store tracks submitted stats keys with an expiry.
type Store interface {
	Close() error
	SeenStats(key string) (bool, error)
	MarkStats(key string) error
	// Len returns the number of stored keys, expired or not.
	Len() (int, error)
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	StatsTTL        time.Duration
	CleanupInterval time.Duration
}

const (
	defaultStatsTTL        = 6 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend. location is the database
// file for bbolt and the connection URL for redis; other backends ignore it.
func NewStore(typ, location string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "memory":
		return newMemoryStore(opts), nil
	case "bbolt":
		if strings.TrimSpace(location) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(location, opts)
	case "redis":
		if strings.TrimSpace(location) == "" {
			return nil, fmt.Errorf("redis storage requires a url")
		}
		return openRedis(location, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.StatsTTL <= 0 {
		opts.StatsTTL = defaultStatsTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                   { return nil }
func (noopStore) SeenStats(string) (bool, error) { return false, nil }
func (noopStore) MarkStats(string) error         { return nil }
func (noopStore) Len() (int, error)              { return 0, nil }
