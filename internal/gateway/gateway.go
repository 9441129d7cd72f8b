package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Adda-Baaj/boticord-go/internal/logger"
	"github.com/Adda-Baaj/boticord-go/pkg/boticord"
	"github.com/bwmarrin/discordgo"
)

// StatsSource reports the bot's current reach.
type StatsSource interface {
	Stats(ctx context.Context) (boticord.BotStats, error)
}

// defaultGuildLoadTimeout bounds how long Stats waits for guilds announced in
// READY to arrive. Guilds still missing after it are in an outage.
const defaultGuildLoadTimeout = 2 * time.Minute

// DiscordSource counts guilds and members seen by a gateway session. READY
// only lists placeholder guilds, so the source reports stats once every one of
// them has arrived through GUILD_CREATE.
type DiscordSource struct {
	session     *discordgo.Session
	log         logger.Logger
	loadTimeout time.Duration

	mu       sync.Mutex
	gotReady bool
	pending  map[string]struct{}
	arrived  map[string]struct{}

	ready     chan struct{}
	readyOnce sync.Once
}

// NewDiscordSource prepares a session for the bot token. Call Open before Stats.
func NewDiscordSource(token string, log logger.Logger) (*DiscordSource, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("discord token is required")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds
	session.StateEnabled = true

	src := &DiscordSource{
		session:     session,
		log:         log,
		loadTimeout: defaultGuildLoadTimeout,
		pending:     make(map[string]struct{}),
		arrived:     make(map[string]struct{}),
		ready:       make(chan struct{}),
	}
	session.AddHandler(src.onReady)
	session.AddHandler(src.onGuildCreate)
	session.AddHandler(src.onGuildDelete)
	return src, nil
}

func (d *DiscordSource) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	d.mu.Lock()
	if d.gotReady {
		d.mu.Unlock()
		return
	}
	d.gotReady = true
	for _, g := range r.Guilds {
		if g == nil {
			continue
		}
		if _, ok := d.arrived[g.ID]; !ok {
			d.pending[g.ID] = struct{}{}
		}
	}
	waiting := len(d.pending)
	d.mu.Unlock()

	meta := map[string]any{"guilds": len(r.Guilds), "pending_guilds": waiting}
	if r.User != nil {
		meta["user"] = r.User.Username
	}
	d.log.InfoObj("discord session ready", "discord_ready", meta)

	if waiting == 0 {
		d.markLoaded()
		return
	}
	time.AfterFunc(d.loadTimeout, func() {
		d.mu.Lock()
		missing := len(d.pending)
		d.mu.Unlock()
		if missing > 0 {
			d.log.WarnObj("guilds did not arrive before timeout", "discord_guilds_missing", map[string]any{
				"missing":         missing,
				"timeout_seconds": d.loadTimeout.Seconds(),
			})
		}
		d.markLoaded()
	})
}

func (d *DiscordSource) onGuildCreate(_ *discordgo.Session, g *discordgo.GuildCreate) {
	if g == nil || g.Guild == nil {
		return
	}
	d.settle(g.ID)
}

// onGuildDelete settles guilds that became unavailable before they were created.
func (d *DiscordSource) onGuildDelete(_ *discordgo.Session, g *discordgo.GuildDelete) {
	if g == nil || g.Guild == nil {
		return
	}
	d.settle(g.ID)
}

func (d *DiscordSource) settle(guildID string) {
	d.mu.Lock()
	d.arrived[guildID] = struct{}{}
	delete(d.pending, guildID)
	loaded := d.gotReady && len(d.pending) == 0
	d.mu.Unlock()

	if loaded {
		d.markLoaded()
	}
}

func (d *DiscordSource) markLoaded() {
	d.readyOnce.Do(func() { close(d.ready) })
}

// Open connects to the gateway.
func (d *DiscordSource) Open() error {
	if err := d.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	return nil
}

// Close disconnects from the gateway.
func (d *DiscordSource) Close() error {
	return d.session.Close()
}

// Stats waits until the guilds announced in READY have loaded and then reads
// the session state.
func (d *DiscordSource) Stats(ctx context.Context) (boticord.BotStats, error) {
	select {
	case <-d.ready:
	case <-ctx.Done():
		return boticord.BotStats{}, fmt.Errorf("wait for discord guilds: %w", ctx.Err())
	}
	return StatsFromState(d.session.State, d.session.ShardCount), nil
}

// StatsFromState derives BotStats from a gateway state cache.
// A session without sharding still counts as one shard.
func StatsFromState(state *discordgo.State, shardCount int) boticord.BotStats {
	if shardCount < 1 {
		shardCount = 1
	}
	stats := boticord.BotStats{Shards: uint64(shardCount)}
	if state == nil {
		return stats
	}

	state.RLock()
	defer state.RUnlock()
	for _, g := range state.Guilds {
		if g == nil {
			continue
		}
		stats.Servers++
		if g.MemberCount > 0 {
			stats.Users += uint64(g.MemberCount)
		}
	}
	return stats
}

// StaticSource always reports the same stats. It backs deployments without a
// gateway connection.
type StaticSource struct {
	Value boticord.BotStats
}

// Stats returns the fixed value.
func (s StaticSource) Stats(context.Context) (boticord.BotStats, error) {
	return s.Value, nil
}
