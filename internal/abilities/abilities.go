package abilities

import (
	"chatapp-client/internal/models"
)

const (
	ViewChannels      = "VIEW_CHANNELS"
	ManageChannels    = "MANAGE_CHANNELS"
	ManageRoles       = "MANAGE_ROLES"
	ManageServer      = "MANAGE_SERVER"
	CreateInvite      = "CREATE_INVITE"
	ChangeNickname    = "CHANGE_NICKNAME"
	ManageNicknames   = "MANAGE_NICKNAMES"
	TimeoutMembers    = "TIMEOUT_MEMBERS"
	KickMembers       = "KICK_MEMBERS"
	BanMembers        = "BAN_MEMBERS"
	SendMessages      = "SEND_MESSAGES"
	AttachFiles       = "ATTACH_FILES"
	AddReactions      = "ADD_REACTIONS"
	UsePersonalEmojis = "USE_PERSONAL_EMOJIS"
	MentionEveryone   = "MENTION_EVERYONE"
	ManageMessages    = "MANAGE_MESSAGES"
	Connect           = "CONNECT"
	Speak             = "SPEAK"
	Video             = "VIDEO"
	MuteMembers       = "MUTE_MEMBERS"
	DeafenMembers     = "DEAFEN_MEMBERS"
	MoveMembers       = "MOVE_MEMBERS"

	// Administrator bypasses every check. Owner is synthesized for the
	// server owner and never granted through a role.
	Administrator = "ADMINISTRATOR"
	Owner         = "OWNER"
)

type Set map[string]struct{}

func NewSet(tokens ...string) Set {
	s := make(Set, len(tokens))
	for _, token := range tokens {
		s[token] = struct{}{}
	}
	return s
}

func (s Set) Add(tokens ...string) {
	for _, token := range tokens {
		s[token] = struct{}{}
	}
}

func (s Set) Contains(token string) bool {
	_, ok := s[token]
	return ok
}

// Resolve unions the abilities of every role the user holds on the server
// and adds the synthetic OWNER token when the user owns the server.
func Resolve(server *models.Server, userID string) Set {
	set := NewSet()
	if server == nil {
		return set
	}

	for _, userRole := range server.UserRoles {
		for _, role := range server.Roles {
			if role.ID == userRole {
				set.Add(role.Abilities...)
				break
			}
		}
	}

	if userID != "" && userID == server.OwnerID {
		set.Add(Owner)
	}

	return set
}

// Has reports whether the set grants any of the required tokens. Owner and
// administrator short-circuit every requirement.
func Has(s Set, required ...string) bool {
	if s.Contains(Owner) || s.Contains(Administrator) {
		return true
	}

	for _, token := range required {
		if s.Contains(token) {
			return true
		}
	}
	return false
}

// TopRole returns the held role with the lowest position, nil when the user
// holds none.
func TopRole(roles []*models.Role, userRoleIDs []string) *models.Role {
	var top *models.Role
	for _, role := range roles {
		held := false
		for _, id := range userRoleIDs {
			if id == role.ID {
				held = true
				break
			}
		}
		if !held {
			continue
		}
		if top == nil || role.Position < top.Position {
			top = role
		}
	}
	return top
}

const (
	PseudoRoleDefault = "default"
	PseudoRoleOffline = "offline"
)

// PseudoRole synthesizes the two fallback display roles. They are built on
// read and never stored.
func PseudoRole(id string, roleCount int) (*models.Role, bool) {
	switch id {
	case PseudoRoleDefault:
		return &models.Role{
			ID:        id,
			Name:      "Members",
			Position:  roleCount,
			Abilities: []string{},
			Members:   []string{},
		}, true
	case PseudoRoleOffline:
		return &models.Role{
			ID:        id,
			Name:      "Offline",
			Position:  roleCount,
			Abilities: []string{},
			Members:   []string{},
		}, true
	}
	return nil, false
}
