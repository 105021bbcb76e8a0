package models

import (
	"encoding/json"
	"time"
)

// GlobalServerID is the reserved server ID carried by direct messages.
const GlobalServerID = "global"

const (
	ChannelTypeTextual     = "textual"
	ChannelTypeTextualE2EE = "textual-e2ee"
	ChannelTypeVoice       = "voice"
	ChannelTypeDm          = "dm"
)

const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

type User struct {
	ID          string          `json:"id"`
	Email       string          `json:"email,omitempty"`
	Username    string          `json:"username,omitempty"`
	DisplayName string          `json:"display_name"`
	Avatar      string          `json:"avatar"`
	Banner      string          `json:"banner,omitempty"`
	About       json.RawMessage `json:"about,omitempty"`
}

// Author is the minimal projection of a user attached to messages. It is a
// display cache only, never the source of truth for identity.
type Author struct {
	ID          string   `json:"id"`
	Avatar      string   `json:"avatar"`
	DisplayName string   `json:"display_name"`
	Roles       []string `json:"roles,omitempty"`
}

type Member struct {
	ID          string    `json:"id"`
	Username    string    `json:"username,omitempty"`
	DisplayName string    `json:"display_name"`
	Avatar      string    `json:"avatar"`
	Roles       []string  `json:"roles"`
	Status      string    `json:"status"`
	JoinedAt    time.Time `json:"joined_at,omitzero"`
}

// Friend is a user-scoped relation, distinct from Member. The attached DM
// channel carries its own read/sent markers.
type Friend struct {
	ID              string `json:"id"`
	DisplayName     string `json:"display_name"`
	Avatar          string `json:"avatar"`
	FriendshipID    string `json:"friendship_id"`
	ChannelID       string `json:"channel_id,omitempty"`
	Accepted        bool   `json:"accepted"`
	Sender          bool   `json:"sender"`
	Status          string `json:"status,omitempty"`
	LastMessageSent string `json:"last_message_sent,omitempty"`
	LastMessageRead string `json:"last_message_read,omitempty"`
}

// Role positions are ascending, lower position means higher precedence.
type Role struct {
	ID        string   `json:"id"`
	ServerID  string   `json:"server_id,omitempty"`
	Name      string   `json:"name"`
	Color     string   `json:"color"`
	Position  int      `json:"position"`
	Abilities []string `json:"abilities"`
	Members   []string `json:"members"`
}

type Channel struct {
	ID              string   `json:"id"`
	CategoryID      string   `json:"category_id"`
	ServerID        string   `json:"server_id"`
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	Position        int      `json:"position"`
	Type            string   `json:"type"`
	LastMessageSent string   `json:"last_message_sent,omitempty"`
	LastMessageRead string   `json:"last_message_read,omitempty"`
	LastMentions    []string `json:"last_mentions,omitempty"`
	Users           []string `json:"users,omitempty"`
	Roles           []string `json:"roles,omitempty"`
}

type Category struct {
	ID       string              `json:"id"`
	ServerID string              `json:"server_id"`
	Name     string              `json:"name"`
	Position int                 `json:"position"`
	Channels map[string]*Channel `json:"channels"`
	Users    []string            `json:"users,omitempty"`
	Roles    []string            `json:"roles,omitempty"`
	E2EE     bool                `json:"e2ee,omitempty"`
}

type Invite struct {
	ID        string    `json:"id"`
	ServerID  string    `json:"server_id"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

type Server struct {
	ID          string               `json:"id"`
	OwnerID     string               `json:"owner_id"`
	Name        string               `json:"name"`
	Avatar      string               `json:"avatar"`
	Banner      string               `json:"banner"`
	Description json.RawMessage      `json:"description,omitempty"`
	Public      bool                 `json:"public"`
	Categories  map[string]*Category `json:"categories"`
	Members     []*Member            `json:"members"`
	Roles       []*Role              `json:"roles"`
	UserRoles   []string             `json:"user_roles"`
	Invites     []*Invite            `json:"invites"`
}

type Attachment struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	FileName string `json:"file_name"`
	FileSize string `json:"file_size"`
	Type     string `json:"type"`
}

type Message struct {
	ID               string          `json:"id"`
	Author           Author          `json:"author"`
	ServerID         string          `json:"server_id"`
	ChannelID        string          `json:"channel_id"`
	Content          json.RawMessage `json:"content"`
	Everyone         bool            `json:"everyone"`
	MentionsUsers    []string        `json:"mentions_users,omitempty"`
	MentionsChannels []string        `json:"mentions_channels,omitempty"`
	Attachments      []Attachment    `json:"attachments,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Setup is the bootstrap payload fetched once after login.
type Setup struct {
	User    User               `json:"user"`
	Friends []*Friend          `json:"friends"`
	Servers map[string]*Server `json:"servers"`
}

// ServerInformations is the detail payload for a single server, fetched
// lazily and held behind the cache's sliding TTL flag.
type ServerInformations struct {
	Roles     []*Role   `json:"roles"`
	Members   []*Member `json:"members"`
	Invites   []*Invite `json:"invites"`
	UserRoles []string  `json:"user_roles"`
}
