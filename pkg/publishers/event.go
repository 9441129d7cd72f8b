package publishers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Adda-Baaj/boticord-go/pkg/boticord"
)

// Event is published downstream after stats were accepted by Boticord.
type Event struct {
	BotID      string            `json:"bot_id"`
	APIVersion int               `json:"api_version"`
	Stats      boticord.BotStats `json:"stats"`
	PostedAt   time.Time         `json:"posted_at"`
}

// NewEvent constructs an Event for the given bot + stats.
func NewEvent(botID string, apiVersion int, stats boticord.BotStats) Event {
	return Event{
		BotID:      botID,
		APIVersion: apiVersion,
		Stats:      stats,
		PostedAt:   time.Now().UTC(),
	}
}

// StatsKey identifies a stats snapshot of one bot. Equal snapshots share a key.
func StatsKey(botID string, stats boticord.BotStats) string {
	return fmt.Sprintf("%s:%d:%d:%d", botID, stats.Servers, stats.Shards, stats.Users)
}

// Key is the StatsKey of the event's snapshot.
func (e Event) Key() string { return StatsKey(e.BotID, e.Stats) }

// Attribute is a message attribute brokers can filter or route on.
type Attribute struct {
	Name    string
	Value   string
	Numeric bool
}

// Attributes lists the routing attributes attached to brokered messages.
func (e Event) Attributes() []Attribute {
	return []Attribute{
		{Name: "bot_id", Value: e.BotID},
		{Name: "api_version", Value: strconv.Itoa(e.APIVersion), Numeric: true},
		{Name: "servers", Value: strconv.FormatUint(e.Stats.Servers, 10), Numeric: true},
		{Name: "shards", Value: strconv.FormatUint(e.Stats.Shards, 10), Numeric: true},
		{Name: "users", Value: strconv.FormatUint(e.Stats.Users, 10), Numeric: true},
	}
}
