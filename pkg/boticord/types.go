package boticord

import "gopkg.in/guregu/null.v3"

// Identifiers are opaque strings; they are substituted into URLs verbatim.
type (
	BotID    string
	ServerID string
	UserID   string
)

// Every field of a decoded record must be present and non-null in the payload,
// except fields with a null type, which decode absent keys to an invalid value.
// A struct tag named after an API version ("v1", "v2") set to "optional" also
// lets payloads of that version omit the field.

// BotServer is the support server attached to a bot.
type BotServer struct {
	ID       ServerID `json:"id"`
	Approved bool     `json:"approved"`
}

// BotStats is the telemetry a bot submits. It is also embedded in BotInformation.
type BotStats struct {
	Servers uint64 `json:"servers"`
	Shards  uint64 `json:"shards"`
	Users   uint64 `json:"users"`
}

// BotLinks are the bot's social links.
type BotLinks struct {
	Discord null.String `json:"discord"`
	Github  null.String `json:"github"`
	Site    null.String `json:"site"`
}

// BotInformation is the descriptive part of a bot page.
type BotInformation struct {
	Bumps            uint64      `json:"bumps"`
	Added            uint64      `json:"added"`
	Prefix           string      `json:"prefix"`
	Permissions      uint64      `json:"permissions"`
	Tags             []string    `json:"tags"`
	Developers       []UserID    `json:"developers"`
	Links            BotLinks    `json:"links"`
	Library          null.String `json:"library"`
	ShortDescription string      `json:"shortDescription" v2:"optional"`
	LongDescription  string      `json:"longDescription"`
	Badge            null.Int    `json:"badge"`
	Stats            BotStats    `json:"stats"`
	Status           string      `json:"status"`
}

// Bot is the payload of GET /bot/{id}.
type Bot struct {
	ID          BotID          `json:"id"`
	ShortCode   null.String    `json:"shortCode"`
	Links       []string       `json:"links" v2:"optional"`
	Server      *BotServer     `json:"server" v2:"optional"`
	Information BotInformation `json:"information"`
}

// BotSummary is one entry of GET /bots/{userID}.
type BotSummary struct {
	ID        BotID       `json:"id"`
	ShortCode null.String `json:"shortCode"`
}

// ServerLinks are the server's social links.
type ServerLinks struct {
	Invite  null.String `json:"invite"`
	Site    null.String `json:"site"`
	Youtube null.String `json:"youtube"`
	Twitch  null.String `json:"twitch"`
	Steam   null.String `json:"steam"`
	VK      null.String `json:"vk"`
}

// ServerInformation is the descriptive part of a server page.
type ServerInformation struct {
	Name   string      `json:"name"`
	Avatar null.String `json:"avatar"`
	// Members holds the total and online member counts, in that order.
	Members          [2]uint64   `json:"members"`
	Owner            null.String `json:"owner"`
	Tags             []string    `json:"tags"`
	Links            ServerLinks `json:"links"`
	ShortDescription string      `json:"shortDescription"`
	LongDescription  string      `json:"longDescription"`
	Badge            null.String `json:"badge"`
}

// Server is the payload of GET /server/{id}.
type Server struct {
	ID          ServerID          `json:"id"`
	ShortCode   null.String       `json:"shortCode"`
	Status      string            `json:"status"`
	Links       []string          `json:"links"`
	Bumps       uint64            `json:"bumps"`
	Information ServerInformation `json:"information"`
}

// TotalMembers returns the total member count.
func (s ServerInformation) TotalMembers() uint64 { return s.Members[0] }

// OnlineMembers returns the online member count.
func (s ServerInformation) OnlineMembers() uint64 { return s.Members[1] }

// ServerStats is submitted by server bots via POST /server.
type ServerStats struct {
	ServerID                 ServerID `json:"serverID"`
	Up                       int      `json:"up"`
	Status                   int      `json:"status"`
	ServerName               string   `json:"serverName"`
	ServerAvatar             string   `json:"serverAvatar"`
	ServerMembersAllCount    uint64   `json:"serverMembersAllCount"`
	ServerMembersOnlineCount uint64   `json:"serverMembersOnlineCount"`
	ServerOwnerID            UserID   `json:"serverOwnerID"`
}

// UserInformation is the payload of GET /profile/{id}.
type UserInformation struct {
	ID        UserID      `json:"id"`
	Status    null.String `json:"status"`
	Badge     null.String `json:"badge"`
	ShortCode null.String `json:"shortCode"`
	Site      null.String `json:"site"`
	VK        null.String `json:"vk"`
	Steam     null.String `json:"steam"`
	Youtube   null.String `json:"youtube"`
	Twitch    null.String `json:"twitch"`
	Git       null.String `json:"git"`
}

// Comment is a single comment left on a bot or a server.
type Comment struct {
	UserID    UserID   `json:"userID"`
	Text      string   `json:"text"`
	Vote      int64    `json:"vote"`
	IsUpdated bool     `json:"isUpdated"`
	CreatedAt null.Int `json:"created_at"`
	UpdatedAt null.Int `json:"updated_at"`
}

// UserComments is the payload of GET /profile/{id}/comments.
type UserComments struct {
	Bots    []Comment `json:"bots"`
	Servers []Comment `json:"servers"`
}
