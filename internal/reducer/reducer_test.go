package reducer_test

import (
	"encoding/json"
	"testing"
	"time"

	"chatapp-client/internal/cache"
	"chatapp-client/internal/events"
	"chatapp-client/internal/models"
	"chatapp-client/internal/reducer"
	"chatapp-client/internal/window"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const selfID = "self"

func newTestReducer() (*reducer.Reducer, *cache.Cache, *window.Windows) {
	ws := window.New(zap.NewNop().Sugar(), nil, 50)
	c := cache.New(zap.NewNop().Sugar(), ws, selfID)
	ws.Bind(c)
	return reducer.New(zap.NewNop().Sugar(), c, ws), c, ws
}

func testServer(id string) *models.Server {
	cat := id + "-cat1"
	return &models.Server{
		ID:      id,
		OwnerID: "owner",
		Categories: map[string]*models.Category{
			cat: {
				ID:       cat,
				ServerID: id,
				Position: 0,
				Channels: map[string]*models.Channel{
					id + "-ch1": {ID: id + "-ch1", CategoryID: cat, ServerID: id, Position: 0},
					id + "-ch2": {ID: id + "-ch2", CategoryID: cat, ServerID: id, Position: 1},
				},
			},
		},
	}
}

func chatMessage(id string, serverID string, channelID string, authorID string) *models.Message {
	return &models.Message{
		ID:        id,
		ServerID:  serverID,
		ChannelID: channelID,
		Author:    models.Author{ID: authorID, DisplayName: authorID},
		Content:   json.RawMessage(`"hello"`),
		CreatedAt: time.Now(),
	}
}

func TestBanSelfEvictsServer(t *testing.T) {
	r, c, _ := newTestReducer()
	c.AddServer(testServer("s1"))
	c.AddMember("s1", &models.Member{ID: selfID})
	c.SetFocus("s1", "s1-ch1")

	effects := r.Apply(&events.BanUser{ServerID: "s1", UserID: selfID, Reason: "spam"})

	require.False(t, c.HasServer("s1"))
	require.Len(t, effects, 2)

	restriction, ok := effects[0].(reducer.Restriction)
	require.True(t, ok)
	require.Equal(t, reducer.RestrictionBan, restriction.Kind)
	require.Equal(t, "spam", restriction.Reason)

	_, ok = effects[1].(reducer.RedirectHome)
	require.True(t, ok)
}

func TestKickOtherRemovesMembershipOnly(t *testing.T) {
	r, c, ws := newTestReducer()
	c.AddServer(testServer("s1"))
	c.AddMember("s1", &models.Member{ID: "bob"})
	ws.Append(*chatMessage("m1", "s1", "s1-ch1", "bob"), true)

	effects := r.Apply(&events.KickUser{ServerID: "s1", UserID: "bob"})

	require.Empty(t, effects)
	require.True(t, c.HasServer("s1"))
	require.Empty(t, c.Members("s1"))

	// the cascade still purged the kicked member's messages
	w, _ := ws.Get("s1-ch1")
	require.Empty(t, w.Messages)
}

func TestLeaveServerRemovesMembershipOnly(t *testing.T) {
	r, c, _ := newTestReducer()
	c.AddServer(testServer("s1"))
	c.AddMember("s1", &models.Member{ID: "bob"})

	effects := r.Apply(&events.LeaveServer{ServerID: "s1", UserID: "bob"})

	require.Empty(t, effects)
	require.True(t, c.HasServer("s1"))
	require.Empty(t, c.Members("s1"))
}

func TestNewMessageInActiveView(t *testing.T) {
	r, c, ws := newTestReducer()
	c.AddServer(testServer("s1"))
	c.SetFocus("s1", "s1-ch1")

	effects := r.Apply(&events.NewChatMessage{Message: chatMessage("m1", "s1", "s1-ch1", "bob")})
	require.Empty(t, effects)

	require.True(t, ws.Has("s1-ch1"))

	channel, _ := c.Channel("s1", "s1-ch1")
	require.Equal(t, "m1", channel.LastMessageSent)
	require.Equal(t, "m1", channel.LastMessageRead)
}

func TestNewMessageInBackgroundChannelStaysUnread(t *testing.T) {
	r, c, ws := newTestReducer()
	c.AddServer(testServer("s1"))
	c.SetFocus("s1", "s1-ch2")

	r.Apply(&events.NewChatMessage{Message: chatMessage("m1", "s1", "s1-ch1", "bob")})

	// no window for a channel the user is not viewing
	require.False(t, ws.Has("s1-ch1"))

	channel, _ := c.Channel("s1", "s1-ch1")
	require.Equal(t, "m1", channel.LastMessageSent)
	require.Equal(t, "", channel.LastMessageRead)
}

func TestNewMessageRecordsMention(t *testing.T) {
	r, c, _ := newTestReducer()
	c.AddServer(testServer("s1"))

	mention := chatMessage("m1", "s1", "s1-ch1", "bob")
	mention.MentionsUsers = []string{selfID}
	r.Apply(&events.NewChatMessage{Message: mention})

	everyone := chatMessage("m2", "s1", "s1-ch1", "bob")
	everyone.Everyone = true
	r.Apply(&events.NewChatMessage{Message: everyone})

	other := chatMessage("m3", "s1", "s1-ch1", "bob")
	other.MentionsUsers = []string{"someone-else"}
	r.Apply(&events.NewChatMessage{Message: other})

	require.Equal(t, 2, c.ServerNotifications("s1").Mentions)
}

func TestNewDirectMessageRoutesToFriend(t *testing.T) {
	r, c, _ := newTestReducer()
	c.SetFriends([]*models.Friend{
		{ID: "u9", FriendshipID: "f1", ChannelID: "dm1", Accepted: true},
	})

	r.Apply(&events.NewChatMessage{Message: chatMessage("m1", models.GlobalServerID, "dm1", "u9")})

	friend, _ := c.Friend("u9")
	require.Equal(t, "m1", friend.LastMessageSent)
}

func TestMalformedChatEventsDropped(t *testing.T) {
	r, _, _ := newTestReducer()

	require.Empty(t, r.Apply(&events.NewChatMessage{}))
	require.Empty(t, r.Apply(&events.EditChatMessage{}))
	require.Empty(t, r.Apply(&events.DeleteChatMessage{}))
}

func TestEditMessageMergesIntoWindow(t *testing.T) {
	r, c, ws := newTestReducer()
	c.AddServer(testServer("s1"))
	c.SetFocus("s1", "s1-ch1")
	r.Apply(&events.NewChatMessage{Message: chatMessage("m1", "s1", "s1-ch1", "bob")})

	edited := chatMessage("m1", "s1", "s1-ch1", "bob")
	edited.Content = json.RawMessage(`"changed"`)
	r.Apply(&events.EditChatMessage{Message: edited})

	w, _ := ws.Get("s1-ch1")
	require.Equal(t, `"changed"`, string(w.Messages[0].Content))

	r.Apply(&events.DeleteChatMessage{Message: edited})
	require.Empty(t, w.Messages)
}

func TestPresenceFirstJoinSynthesizesMember(t *testing.T) {
	r, c, _ := newTestReducer()
	c.AddServer(testServer("s1"))
	c.SetFocus("s1", "s1-ch1")

	r.Apply(&events.ChangeStatus{
		ServerID: "s1",
		UserID:   "bob",
		Status:   models.StatusOnline,
		Member:   &models.Member{ID: "bob", DisplayName: "Bob"},
	})

	member, exists := c.Member("s1", "bob")
	require.True(t, exists)
	require.Equal(t, models.StatusOnline, member.Status)

	// duplicate delivery does not double the member
	r.Apply(&events.ChangeStatus{
		ServerID: "s1",
		UserID:   "bob",
		Status:   models.StatusOffline,
		Member:   &models.Member{ID: "bob"},
	})
	require.Len(t, c.Members("s1"), 1)
	require.Equal(t, models.StatusOffline, member.Status)
}

func TestPresenceUpdatesFriendEverywhere(t *testing.T) {
	r, c, _ := newTestReducer()
	c.SetFriends([]*models.Friend{{ID: "u9", FriendshipID: "f1"}})

	r.Apply(&events.ChangeStatus{UserID: "u9", Status: models.StatusOnline})

	friend, _ := c.Friend("u9")
	require.Equal(t, models.StatusOnline, friend.Status)
}

func TestKillCategoryRedirectsWhenViewingInside(t *testing.T) {
	r, c, _ := newTestReducer()
	server := testServer("s1")
	server.Categories["s1-cat2"] = &models.Category{
		ID:       "s1-cat2",
		ServerID: "s1",
		Position: 1,
		Channels: map[string]*models.Channel{
			"s1-ch3": {ID: "s1-ch3", CategoryID: "s1-cat2", ServerID: "s1", Position: 0},
		},
	}
	c.AddServer(server)
	c.SetFocus("s1", "s1-ch1")

	effects := r.Apply(&events.KillCategory{ServerID: "s1", CategoryID: "s1-cat1"})

	require.Len(t, effects, 1)
	redirect, ok := effects[0].(reducer.RedirectChannel)
	require.True(t, ok)
	require.Equal(t, "s1-ch3", redirect.ChannelID)
}

func TestKillCategoryNoRedirectWhenElsewhere(t *testing.T) {
	r, c, _ := newTestReducer()
	server := testServer("s1")
	server.Categories["s1-cat2"] = &models.Category{
		ID:       "s1-cat2",
		ServerID: "s1",
		Position: 1,
		Channels: map[string]*models.Channel{
			"s1-ch3": {ID: "s1-ch3", CategoryID: "s1-cat2", ServerID: "s1", Position: 0},
		},
	}
	c.AddServer(server)
	c.SetFocus("s1", "s1-ch3")

	effects := r.Apply(&events.KillCategory{ServerID: "s1", CategoryID: "s1-cat1"})
	require.Empty(t, effects)
}

func TestKillChannelRedirectsToHomeWhenServerEmpty(t *testing.T) {
	r, c, _ := newTestReducer()
	server := testServer("s1")
	delete(server.Categories["s1-cat1"].Channels, "s1-ch2")
	c.AddServer(server)
	c.SetFocus("s1", "s1-ch1")

	effects := r.Apply(&events.KillChannel{ServerID: "s1", CategoryID: "s1-cat1", ChannelID: "s1-ch1"})

	require.Len(t, effects, 1)
	_, ok := effects[0].(reducer.RedirectHome)
	require.True(t, ok)
}

func TestEditChannelExclusionPushesViewerOut(t *testing.T) {
	r, c, _ := newTestReducer()
	c.AddServer(testServer("s1"))
	c.SetFocus("s1", "s1-ch1")

	effects := r.Apply(&events.EditChannel{
		ServerID:  "s1",
		ChannelID: "s1-ch1",
		Users:     []string{"someone-else"},
	})

	require.Len(t, effects, 1)
	redirect, ok := effects[0].(reducer.RedirectChannel)
	require.True(t, ok)
	require.Equal(t, "s1-ch2", redirect.ChannelID)
}

func TestKillServerRedirectsViewerHome(t *testing.T) {
	r, c, _ := newTestReducer()
	c.AddServer(testServer("s1"))
	c.AddServer(testServer("s2"))

	require.Empty(t, r.Apply(&events.KillServer{ServerID: "s2"}))

	c.SetFocus("s1", "s1-ch1")
	effects := r.Apply(&events.KillServer{ServerID: "s1"})

	require.Len(t, effects, 1)
	_, ok := effects[0].(reducer.RedirectHome)
	require.True(t, ok)
	require.False(t, c.HasServer("s1"))
}

func TestAccountDeletionScopes(t *testing.T) {
	r, c, ws := newTestReducer()
	c.AddServer(testServer("s1"))
	c.AddMember("s1", &models.Member{ID: "bob"})
	c.SetFriends([]*models.Friend{{ID: "bob", FriendshipID: "f1", ChannelID: "dm1"}})
	ws.Append(*chatMessage("m1", models.GlobalServerID, "dm1", "bob"), true)

	// server-scoped removes only the membership
	r.Apply(&events.AccountDeletion{UserID: "bob", ServerID: "s1"})
	require.Empty(t, c.Members("s1"))
	_, stillFriend := c.Friend("bob")
	require.True(t, stillFriend)

	// unscoped removes the friend relation and their DM window
	r.Apply(&events.AccountDeletion{UserID: "bob"})
	_, stillFriend = c.Friend("bob")
	require.False(t, stillFriend)
	require.False(t, ws.Has("dm1"))
}

func TestRoleEventsFlowThrough(t *testing.T) {
	r, c, _ := newTestReducer()
	c.AddServer(testServer("s1"))
	c.AddMember("s1", &models.Member{ID: selfID})

	r.Apply(&events.CreateOrEditRole{ServerID: "s1", Role: &models.Role{ID: "r1", Name: "Mod", Position: 0}})
	require.Len(t, c.Roles("s1"), 1)

	r.Apply(&events.AddRoleMember{ServerID: "s1", RoleID: "r1", UserID: selfID})
	require.Equal(t, []string{"r1"}, c.UserRoles("s1"))

	r.Apply(&events.RemoveRoleMember{ServerID: "s1", RoleID: "r1", UserID: selfID})
	require.Empty(t, c.UserRoles("s1"))

	r.Apply(&events.RemoveRole{ServerID: "s1", RoleID: "r1"})
	require.Empty(t, c.Roles("s1"))
}

func TestServerProfileEvents(t *testing.T) {
	r, c, _ := newTestReducer()
	c.AddServer(testServer("s1"))

	public := true
	r.Apply(&events.EditServerProfile{ServerID: "s1", Name: "renamed", Public: &public})
	r.Apply(&events.ChangeServerAvatar{ServerID: "s1", Avatar: "a.webp"})

	server, _ := c.Server("s1")
	require.Equal(t, "renamed", server.Name)
	require.True(t, server.Public)
	require.Equal(t, "a.webp", server.Avatar)
}

func TestFriendEventsFlowThrough(t *testing.T) {
	r, c, _ := newTestReducer()

	r.Apply(&events.FriendRequest{Friend: &models.Friend{ID: "u9", FriendshipID: "f1"}})
	_, exists := c.Friend("u9")
	require.True(t, exists)

	r.Apply(&events.AcceptFriend{FriendshipID: "f1", ChannelID: "dm1"})
	friend, _ := c.Friend("u9")
	require.True(t, friend.Accepted)

	r.Apply(&events.RemoveFriend{FriendshipID: "f1"})
	_, exists = c.Friend("u9")
	require.False(t, exists)
}
