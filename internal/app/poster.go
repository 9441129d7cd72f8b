package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Adda-Baaj/boticord-go/internal/config"
	"github.com/Adda-Baaj/boticord-go/internal/gateway"
	"github.com/Adda-Baaj/boticord-go/internal/logger"
	"github.com/Adda-Baaj/boticord-go/internal/poster"
	"github.com/Adda-Baaj/boticord-go/internal/storage"
	"github.com/Adda-Baaj/boticord-go/pkg/boticord"
	"github.com/Adda-Baaj/boticord-go/pkg/publishers"
)

// Poster represents the stats poster runtime. It owns the gateway source,
// the dedupe store and the publishers, and closes them when Run returns.
type Poster struct {
	cfg          *config.Config
	service      *poster.Service
	source       gateway.StatsSource
	fanout       *publishers.Fanout
	store        storage.Store
	postInterval time.Duration
	log          logger.Logger
}

// NewPoster builds a poster runtime from config.
func NewPoster(ctx context.Context, cfg *config.Config, log logger.Logger) (*Poster, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.BotID == "" {
		return nil, fmt.Errorf("bot_id is required")
	}

	client, err := boticord.New(cfg.BoticordToken, cfg.BoticordAPIVersion,
		boticord.WithBaseURL(cfg.BoticordBaseURL),
		boticord.WithTimeout(cfg.BoticordTimeout),
		boticord.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("build boticord client: %w", err)
	}

	fanout, err := buildFanout(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewStore(cfg.StorageType, cfg.StorageLocation(), storage.Options{
		StatsTTL:        cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.Redacted().StorageLocation(),
		"stats_ttl_seconds":        int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	source, err := buildSource(cfg, log)
	if err != nil {
		_ = fanout.Close()
		_ = store.Close()
		return nil, err
	}

	return &Poster{
		cfg:          cfg,
		service:      poster.NewService(cfg.BotID, cfg.BoticordAPIVersion, source, client, store, fanout, log),
		source:       source,
		fanout:       fanout,
		store:        store,
		postInterval: cfg.PostInterval,
		log:          log,
	}, nil
}

func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*publishers.Fanout, error) {
	if cfg.PublishersFile == "" {
		log.InfoObj("no publishers file configured; events are not forwarded", "publishers_file", "")
		return publishers.NewFanout(nil, log), nil
	}

	pubCfgs, err := publishers.LoadConfigs(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers: %w", err)
	}
	pubClients, err := publishers.Build(ctx, pubCfgs, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	fanout := publishers.NewFanout(pubClients, log)
	log.InfoObj("publishers loaded", "publishers_meta", map[string]any{
		"count":      fanout.Size(),
		"configured": len(pubCfgs),
		"publishers": fanout.Describe(),
	})
	return fanout, nil
}

func buildSource(cfg *config.Config, log logger.Logger) (gateway.StatsSource, error) {
	if cfg.DiscordToken == "" {
		stats := boticord.BotStats{
			Servers: cfg.StaticServers,
			Shards:  cfg.StaticShards,
			Users:   cfg.StaticUsers,
		}
		log.WarnObj("no discord token configured; posting static stats", "stats", stats)
		return gateway.StaticSource{Value: stats}, nil
	}
	src, err := gateway.NewDiscordSource(cfg.DiscordToken, log)
	if err != nil {
		return nil, fmt.Errorf("init discord source: %w", err)
	}
	return src, nil
}

// Run opens the gateway and starts the post loop until the context is cancelled.
func (p *Poster) Run(ctx context.Context) error {
	if p == nil || p.service == nil {
		return fmt.Errorf("poster is not initialized")
	}
	defer p.close()

	if src, ok := p.source.(*gateway.DiscordSource); ok {
		if err := src.Open(); err != nil {
			return err
		}
	}

	p.log.InfoObj("poster loop starting", "poster_state", map[string]any{
		"bot_id":           p.cfg.BotID,
		"api_version":      p.cfg.BoticordAPIVersion,
		"publishers_count": p.fanout.Size(),
		"post_interval":    p.postInterval.String(),
	})
	return p.service.Run(ctx, p.postInterval)
}

// close releases the gateway session, publishers and storage, logging failures.
func (p *Poster) close() {
	if c, ok := p.source.(io.Closer); ok {
		if err := c.Close(); err != nil {
			p.log.ErrorObj("discord session close failed", "error", err)
		}
	}
	if err := p.fanout.Close(); err != nil {
		p.log.ErrorObj("publishers close failed", "error", err)
	}
	if p.store != nil {
		if err := p.store.Close(); err != nil {
			p.log.ErrorObj("storage close failed", "error", err)
		}
	}
}
