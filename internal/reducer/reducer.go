// Package reducer applies decoded real-time events to the entity cache and
// message windows, one state transition per event. The reducer holds no
// state of its own between events; handlers are idempotent where feasible so
// a duplicate delivery degrades to a no-op. Events referencing entities the
// cache no longer holds are dropped, the next full re-fetch restores
// consistency.
package reducer

import (
	"chatapp-client/internal/cache"
	"chatapp-client/internal/events"
	"chatapp-client/internal/models"
	"chatapp-client/internal/window"

	"go.uber.org/zap"
)

// Effect is a side effect the embedding UI must act on. The reducer never
// touches navigation or dialogs itself.
type Effect interface {
	effect()
}

// RedirectHome sends the user back to the server list.
type RedirectHome struct{}

// RedirectChannel sends the user to another channel of the same server.
type RedirectChannel struct {
	ServerID  string
	ChannelID string
}

const (
	RestrictionBan  = "ban"
	RestrictionKick = "kick"
)

// Restriction notifies the user they were banned or kicked.
type Restriction struct {
	Kind   string
	Reason string
}

func (RedirectHome) effect()    {}
func (RedirectChannel) effect() {}
func (Restriction) effect()     {}

type Reducer struct {
	sugar   *zap.SugaredLogger
	cache   *cache.Cache
	windows *window.Windows
}

func New(sugar *zap.SugaredLogger, entityCache *cache.Cache, windows *window.Windows) *Reducer {
	return &Reducer{
		sugar:   sugar,
		cache:   entityCache,
		windows: windows,
	}
}

// Apply dispatches one event to its handler and returns the effects the UI
// must perform. The switch is exhaustive over the event union; events are
// applied in delivery order, never reordered or deduplicated.
func (r *Reducer) Apply(event events.Event) []Effect {
	switch ev := event.(type) {
	case *events.ChangeStatus:
		return r.changeStatus(ev)
	case *events.NewChatMessage:
		return r.newChatMessage(ev)
	case *events.EditChatMessage:
		return r.editChatMessage(ev)
	case *events.DeleteChatMessage:
		return r.deleteChatMessage(ev)
	case *events.StartCategory:
		return r.startCategory(ev)
	case *events.KillCategory:
		return r.killCategory(ev)
	case *events.StartChannel:
		return r.startChannel(ev)
	case *events.KillChannel:
		return r.killChannel(ev)
	case *events.EditCategory:
		return r.editCategory(ev)
	case *events.EditChannel:
		return r.editChannel(ev)
	case *events.CreateOrEditRole:
		return r.createOrEditRole(ev)
	case *events.RemoveRole:
		r.cache.DeleteRole(ev.ServerID, ev.RoleID)
		return nil
	case *events.MoveRole:
		r.cache.MoveRole(ev.ServerID, ev.RoleID, ev.TargetRoleID)
		return nil
	case *events.AddRoleMember:
		r.cache.AddRoleMember(ev.ServerID, ev.RoleID, ev.UserID)
		return nil
	case *events.RemoveRoleMember:
		r.cache.RemoveRoleMember(ev.ServerID, ev.RoleID, ev.UserID)
		return nil
	case *events.FriendRequest:
		return r.friendRequest(ev)
	case *events.AcceptFriend:
		r.cache.AcceptFriend(ev.FriendshipID, ev.ChannelID)
		return nil
	case *events.RemoveFriend:
		r.cache.RemoveFriend(ev.FriendshipID)
		return nil
	case *events.AccountDeletion:
		return r.accountDeletion(ev)
	case *events.EditServerProfile:
		r.cache.UpdateProfile(ev.ServerID, ev.Name, ev.Description, ev.Public)
		return nil
	case *events.ChangeServerAvatar:
		r.cache.UpdateAvatar(ev.ServerID, ev.Avatar, ev.Banner)
		return nil
	case *events.KillServer:
		return r.killServer(ev)
	case *events.LeaveServer:
		r.cache.DeleteMember(ev.ServerID, ev.UserID)
		return nil
	case *events.BanUser:
		return r.restrict(ev.ServerID, ev.UserID, RestrictionBan, ev.Reason)
	case *events.KickUser:
		return r.restrict(ev.ServerID, ev.UserID, RestrictionKick, ev.Reason)
	default:
		r.sugar.Debugf("Dropping event with unhandled kind [%d]", event.Kind())
		return nil
	}
}

func (r *Reducer) changeStatus(ev *events.ChangeStatus) []Effect {
	// first join carries the member projection, insert it before the
	// status lands
	if ev.Member != nil {
		if _, exists := r.cache.Member(ev.ServerID, ev.UserID); !exists {
			r.cache.AddMember(ev.ServerID, ev.Member)
		}
	}

	r.cache.SetMemberStatus(ev.ServerID, ev.UserID, ev.Status)
	r.cache.SetFriendStatus(ev.UserID, ev.Status)
	return nil
}

func (r *Reducer) newChatMessage(ev *events.NewChatMessage) []Effect {
	if ev.Message == nil {
		r.sugar.Debug("Dropping new message event without a message")
		return nil
	}
	msg := *ev.Message

	_, focusedChannel := r.cache.Focused()
	isActiveView := focusedChannel == msg.ChannelID

	r.windows.Append(msg, isActiveView)
	r.cache.SetLastMessageSent(msg.ServerID, msg.ChannelID, msg.ID)

	if msg.ServerID != models.GlobalServerID && r.mentionsSelf(msg) {
		r.cache.AddMention(msg.ServerID, msg.ChannelID, msg.ID)
	}

	if isActiveView {
		// gated on scroll position inside, a message arriving while the
		// user reads history stays unread
		r.windows.SetLastMessageRead(msg.ServerID, msg.ChannelID)
	}

	return nil
}

func (r *Reducer) mentionsSelf(msg models.Message) bool {
	if msg.Everyone {
		return true
	}
	for _, id := range msg.MentionsUsers {
		if id == r.cache.UserID() {
			return true
		}
	}
	return false
}

func (r *Reducer) editChatMessage(ev *events.EditChatMessage) []Effect {
	if ev.Message == nil {
		r.sugar.Debug("Dropping edit message event without a message")
		return nil
	}

	r.windows.EditMessage(ev.Message.ChannelID, window.Edit{
		ID:               ev.Message.ID,
		Content:          ev.Message.Content,
		Everyone:         ev.Message.Everyone,
		MentionsUsers:    ev.Message.MentionsUsers,
		MentionsChannels: ev.Message.MentionsChannels,
		UpdatedAt:        ev.Message.UpdatedAt,
	})
	return nil
}

func (r *Reducer) deleteChatMessage(ev *events.DeleteChatMessage) []Effect {
	if ev.Message == nil {
		r.sugar.Debug("Dropping delete message event without a message")
		return nil
	}

	r.windows.DeleteMessage(ev.Message.ChannelID, ev.Message.ID)
	return nil
}

func (r *Reducer) startCategory(ev *events.StartCategory) []Effect {
	if ev.Category == nil {
		r.sugar.Debug("Dropping category created event without a category")
		return nil
	}

	r.cache.AddCategory(ev.Category)
	return nil
}

func (r *Reducer) killCategory(ev *events.KillCategory) []Effect {
	focusedServer, focusedChannel := r.cache.Focused()

	viewingInside := false
	if focusedServer == ev.ServerID && focusedChannel != "" {
		if category, exists := r.cache.Category(ev.ServerID, ev.CategoryID); exists {
			_, viewingInside = category.Channels[focusedChannel]
		}
	}

	if !r.cache.DeleteCategory(ev.ServerID, ev.CategoryID) {
		return nil
	}

	if viewingInside {
		return r.redirectWithinServer(ev.ServerID)
	}
	return nil
}

func (r *Reducer) startChannel(ev *events.StartChannel) []Effect {
	if ev.Channel == nil {
		r.sugar.Debug("Dropping channel created event without a channel")
		return nil
	}

	r.cache.AddChannel(ev.Channel)
	return nil
}

func (r *Reducer) killChannel(ev *events.KillChannel) []Effect {
	_, focusedChannel := r.cache.Focused()
	viewingIt := focusedChannel == ev.ChannelID

	if !r.cache.DeleteChannel(ev.ServerID, ev.CategoryID, ev.ChannelID) {
		return nil
	}

	if viewingIt {
		return r.redirectWithinServer(ev.ServerID)
	}
	return nil
}

func (r *Reducer) editCategory(ev *events.EditCategory) []Effect {
	r.cache.EditCategory(ev.ServerID, ev.CategoryID, cache.CategoryPatch{
		Name:     ev.Name,
		Position: ev.Position,
		Users:    ev.Users,
		Roles:    ev.Roles,
	})
	return nil
}

func (r *Reducer) editChannel(ev *events.EditChannel) []Effect {
	if !r.cache.EditChannel(ev.ServerID, ev.ChannelID, cache.ChannelPatch{
		Name:        ev.Name,
		Description: ev.Description,
		Position:    ev.Position,
		Users:       ev.Users,
		Roles:       ev.Roles,
	}) {
		return nil
	}

	// an allow-list that now excludes the user pushes them out of the view
	_, focusedChannel := r.cache.Focused()
	if focusedChannel == ev.ChannelID && !r.cache.ChannelAllowed(ev.ServerID, ev.ChannelID) {
		return r.redirectWithinServer(ev.ServerID)
	}
	return nil
}

func (r *Reducer) createOrEditRole(ev *events.CreateOrEditRole) []Effect {
	if ev.Role == nil {
		r.sugar.Debug("Dropping role event without a role")
		return nil
	}

	r.cache.UpsertRole(ev.ServerID, ev.Role)
	return nil
}

func (r *Reducer) friendRequest(ev *events.FriendRequest) []Effect {
	if ev.Friend == nil {
		r.sugar.Debug("Dropping friend request event without a friend")
		return nil
	}

	r.cache.AddFriend(ev.Friend)
	return nil
}

func (r *Reducer) accountDeletion(ev *events.AccountDeletion) []Effect {
	if ev.ServerID != "" {
		r.cache.DeleteMember(ev.ServerID, ev.UserID)
		return nil
	}

	r.cache.RemoveFriendByUser(ev.UserID)
	r.windows.RemoveAuthor(ev.UserID)
	return nil
}

func (r *Reducer) killServer(ev *events.KillServer) []Effect {
	focusedServer, _ := r.cache.Focused()
	wasViewing := focusedServer == ev.ServerID

	r.cache.DeleteServer(ev.ServerID)

	if wasViewing {
		return []Effect{RedirectHome{}}
	}
	return nil
}

// restrict handles bans and kicks. For the current user the server is
// evicted and the UI gets a restriction modal plus a redirect; for anyone
// else only the membership goes.
func (r *Reducer) restrict(serverID string, userID string, kind string, reason string) []Effect {
	r.cache.DeleteMember(serverID, userID)

	if userID != r.cache.UserID() {
		return nil
	}

	r.cache.DeleteServer(serverID)
	return []Effect{
		Restriction{Kind: kind, Reason: reason},
		RedirectHome{},
	}
}

func (r *Reducer) redirectWithinServer(serverID string) []Effect {
	channelID := r.cache.FirstChannelID(serverID)
	if channelID == "" {
		return []Effect{RedirectHome{}}
	}
	return []Effect{RedirectChannel{ServerID: serverID, ChannelID: channelID}}
}
