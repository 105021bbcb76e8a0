// Package events defines the inbound real-time event taxonomy and its wire
// envelope. Each frame carries a one-byte kind tag followed by a JSON body;
// the exact schema past the tag belongs to the serialization layer, the
// reducer only sees the decoded union.
package events

import (
	"encoding/json"

	"chatapp-client/internal/models"
)

type Kind byte

const (
	KindChangeStatus Kind = iota + 1
	KindNewChatMessage
	KindEditChatMessage
	KindDeleteChatMessage
	KindStartCategory
	KindKillCategory
	KindStartChannel
	KindKillChannel
	KindEditCategory
	KindEditChannel
	KindCreateOrEditRole
	KindRemoveRole
	KindMoveRole
	KindAddRoleMember
	KindRemoveRoleMember
	KindFriendRequest
	KindAcceptFriend
	KindRemoveFriend
	KindAccountDeletion
	KindEditServerProfile
	KindChangeServerAvatar
	KindKillServer
	KindLeaveServer
	KindBanUser
	KindKickUser
)

// Event is the closed union over every inbound event kind.
type Event interface {
	Kind() Kind
}

// ChangeStatus carries a presence transition. Member is populated on a
// user's first join so the receiver can synthesize the membership.
type ChangeStatus struct {
	ServerID string         `json:"server_id"`
	UserID   string         `json:"user_id"`
	Status   string         `json:"status"`
	Member   *models.Member `json:"member,omitempty"`
}

type NewChatMessage struct {
	Message *models.Message `json:"message"`
}

// EditChatMessage carries the partial fields of an edited message inside
// the nested message value.
type EditChatMessage struct {
	Message *models.Message `json:"message"`
}

type DeleteChatMessage struct {
	Message *models.Message `json:"message"`
}

type StartCategory struct {
	Category *models.Category `json:"category"`
}

type KillCategory struct {
	ServerID   string `json:"server_id"`
	CategoryID string `json:"category_id"`
}

type StartChannel struct {
	Channel *models.Channel `json:"channel"`
}

type KillChannel struct {
	ServerID   string `json:"server_id"`
	CategoryID string `json:"category_id"`
	ChannelID  string `json:"channel_id"`
}

type EditCategory struct {
	ServerID   string   `json:"server_id"`
	CategoryID string   `json:"category_id"`
	Name       string   `json:"name,omitempty"`
	Position   *int     `json:"position,omitempty"`
	Users      []string `json:"users,omitempty"`
	Roles      []string `json:"roles,omitempty"`
}

type EditChannel struct {
	ServerID    string   `json:"server_id"`
	ChannelID   string   `json:"channel_id"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Position    *int     `json:"position,omitempty"`
	Users       []string `json:"users,omitempty"`
	Roles       []string `json:"roles,omitempty"`
}

type CreateOrEditRole struct {
	ServerID string       `json:"server_id"`
	Role     *models.Role `json:"role"`
}

type RemoveRole struct {
	ServerID string `json:"server_id"`
	RoleID   string `json:"role_id"`
}

// MoveRole swaps the positions of the moved and target roles.
type MoveRole struct {
	ServerID     string `json:"server_id"`
	RoleID       string `json:"role_id"`
	TargetRoleID string `json:"target_role_id"`
}

type AddRoleMember struct {
	ServerID string `json:"server_id"`
	RoleID   string `json:"role_id"`
	UserID   string `json:"user_id"`
}

type RemoveRoleMember struct {
	ServerID string `json:"server_id"`
	RoleID   string `json:"role_id"`
	UserID   string `json:"user_id"`
}

type FriendRequest struct {
	Friend *models.Friend `json:"friend"`
}

type AcceptFriend struct {
	FriendshipID string `json:"friendship_id"`
	ChannelID    string `json:"channel_id"`
}

type RemoveFriend struct {
	FriendshipID string `json:"friendship_id"`
}

// AccountDeletion scoped to a server removes a membership, unscoped it
// removes the friend relation globally.
type AccountDeletion struct {
	UserID   string `json:"user_id"`
	ServerID string `json:"server_id,omitempty"`
}

type EditServerProfile struct {
	ServerID    string          `json:"server_id"`
	Name        string          `json:"name,omitempty"`
	Description json.RawMessage `json:"description,omitempty"`
	Public      *bool           `json:"public,omitempty"`
}

type ChangeServerAvatar struct {
	ServerID string `json:"server_id"`
	Avatar   string `json:"avatar,omitempty"`
	Banner   string `json:"banner,omitempty"`
}

type KillServer struct {
	ServerID string `json:"server_id"`
}

type LeaveServer struct {
	ServerID string `json:"server_id"`
	UserID   string `json:"user_id"`
}

type BanUser struct {
	ServerID string `json:"server_id"`
	UserID   string `json:"user_id"`
	Reason   string `json:"reason,omitempty"`
}

type KickUser struct {
	ServerID string `json:"server_id"`
	UserID   string `json:"user_id"`
	Reason   string `json:"reason,omitempty"`
}

func (ChangeStatus) Kind() Kind       { return KindChangeStatus }
func (NewChatMessage) Kind() Kind     { return KindNewChatMessage }
func (EditChatMessage) Kind() Kind    { return KindEditChatMessage }
func (DeleteChatMessage) Kind() Kind  { return KindDeleteChatMessage }
func (StartCategory) Kind() Kind      { return KindStartCategory }
func (KillCategory) Kind() Kind       { return KindKillCategory }
func (StartChannel) Kind() Kind       { return KindStartChannel }
func (KillChannel) Kind() Kind        { return KindKillChannel }
func (EditCategory) Kind() Kind       { return KindEditCategory }
func (EditChannel) Kind() Kind        { return KindEditChannel }
func (CreateOrEditRole) Kind() Kind   { return KindCreateOrEditRole }
func (RemoveRole) Kind() Kind         { return KindRemoveRole }
func (MoveRole) Kind() Kind           { return KindMoveRole }
func (AddRoleMember) Kind() Kind      { return KindAddRoleMember }
func (RemoveRoleMember) Kind() Kind   { return KindRemoveRoleMember }
func (FriendRequest) Kind() Kind      { return KindFriendRequest }
func (AcceptFriend) Kind() Kind       { return KindAcceptFriend }
func (RemoveFriend) Kind() Kind       { return KindRemoveFriend }
func (AccountDeletion) Kind() Kind    { return KindAccountDeletion }
func (EditServerProfile) Kind() Kind  { return KindEditServerProfile }
func (ChangeServerAvatar) Kind() Kind { return KindChangeServerAvatar }
func (KillServer) Kind() Kind         { return KindKillServer }
func (LeaveServer) Kind() Kind        { return KindLeaveServer }
func (BanUser) Kind() Kind            { return KindBanUser }
func (KickUser) Kind() Kind           { return KindKickUser }
