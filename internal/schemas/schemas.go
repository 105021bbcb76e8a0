// Package schemas holds the bodies of outbound requests. Every schema is
// validated before the request layer puts it on the wire.
package schemas

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func Validate(s any) error {
	return validate.Struct(s)
}

type CreateMessage struct {
	ServerID         string          `json:"server_id" validate:"required"`
	ChannelID        string          `json:"channel_id" validate:"required"`
	Content          json.RawMessage `json:"content" validate:"required"`
	Everyone         bool            `json:"everyone"`
	MentionsUsers    []string        `json:"mentions_users,omitempty"`
	MentionsChannels []string        `json:"mentions_channels,omitempty"`
	MentionsRoles    []string        `json:"mentions_roles,omitempty"`
	Attachments      []string        `json:"attachments,omitempty"`
}

type EditMessage struct {
	ServerID         string          `json:"server_id" validate:"required"`
	ChannelID        string          `json:"channel_id" validate:"required"`
	Content          json.RawMessage `json:"content" validate:"required"`
	Everyone         bool            `json:"everyone"`
	MentionsUsers    []string        `json:"mentions_users,omitempty"`
	MentionsChannels []string        `json:"mentions_channels,omitempty"`
}

type DeleteMessage struct {
	ServerID  string `json:"server_id" validate:"required"`
	ChannelID string `json:"channel_id" validate:"required"`
}

type CreateCategory struct {
	ServerID string   `json:"server_id" validate:"required"`
	Name     string   `json:"name" validate:"required,max=32"`
	Users    []string `json:"users,omitempty"`
	Roles    []string `json:"roles,omitempty"`
	E2EE     bool     `json:"e2ee"`
}

type CreateChannel struct {
	ServerID   string `json:"server_id" validate:"required"`
	CategoryID string `json:"category_id" validate:"required"`
	Name       string `json:"name" validate:"required,max=32"`
	Type       string `json:"type" validate:"required,oneof=textual textual-e2ee voice dm"`
}

type EditChannel struct {
	ServerID    string   `json:"server_id" validate:"required"`
	Name        string   `json:"name,omitempty" validate:"omitempty,max=32"`
	Description string   `json:"description,omitempty" validate:"omitempty,max=256"`
	Users       []string `json:"users,omitempty"`
	Roles       []string `json:"roles,omitempty"`
}

type UpsertRole struct {
	ID        string   `json:"id" validate:"required"`
	Name      string   `json:"name" validate:"required,max=32"`
	Color     string   `json:"color,omitempty"`
	Position  int      `json:"position" validate:"gte=0"`
	Abilities []string `json:"abilities"`
	Members   []string `json:"members"`
}

type EditServer struct {
	Name        string          `json:"name,omitempty" validate:"omitempty,max=64"`
	Description json.RawMessage `json:"description,omitempty"`
	Public      *bool           `json:"public,omitempty"`
}
