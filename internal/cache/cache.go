// Package cache owns the client's in-memory entity graph: servers with
// their categories, channels, roles, members and invites, plus the friends
// list. Every mutation is fail-soft, an operation against a server that is
// not cached returns the caller's fallback and logs a warning, because
// real-time events race with eviction and must never crash the reducer.
//
// All entities are owned maps keyed by string IDs. Cross references are IDs,
// never pointers into another aggregate.
package cache

import (
	"sync"
	"time"

	"chatapp-client/internal/abilities"
	"chatapp-client/internal/models"
	"chatapp-client/internal/window"

	"go.uber.org/zap"
)

const DefaultDetailTTL = 5 * time.Minute

type Cache struct {
	sugar   *zap.SugaredLogger
	windows *window.Windows
	userID  string

	mu          sync.Mutex
	servers     map[string]*models.Server
	friends     map[string]*models.Friend
	memberCount int

	focusedServerID  string
	focusedChannelID string

	abilitySets map[string]abilities.Set

	detail    map[string]*detailEntry
	detailTTL time.Duration
}

func New(sugar *zap.SugaredLogger, windows *window.Windows, userID string) *Cache {
	return &Cache{
		sugar:       sugar,
		windows:     windows,
		userID:      userID,
		servers:     make(map[string]*models.Server),
		friends:     make(map[string]*models.Friend),
		abilitySets: make(map[string]abilities.Set),
		detail:      make(map[string]*detailEntry),
		detailTTL:   DefaultDetailTTL,
	}
}

func (c *Cache) UserID() string {
	return c.userID
}

// withServer runs op against the cached server, or returns fallback when the
// server is not present. The caller holds c.mu.
func withServer[T any](c *Cache, serverID string, fallback T, op func(*models.Server) T) T {
	server, exists := c.servers[serverID]
	if !exists {
		c.sugar.Warnf("Server ID [%s] is not cached, returning fallback", serverID)
		return fallback
	}
	return op(server)
}

// SetFocus records which server and channel the user is currently viewing.
// Presence updates and window materialization consult this instead of any
// routing state.
func (c *Cache) SetFocus(serverID string, channelID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.focusedServerID = serverID
	c.focusedChannelID = channelID
}

func (c *Cache) Focused() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.focusedServerID, c.focusedChannelID
}

func (c *Cache) AddServer(server *models.Server) {
	if server == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if server.Categories == nil {
		server.Categories = make(map[string]*models.Category)
	}
	c.servers[server.ID] = server
	delete(c.abilitySets, server.ID)
}

// DeleteServer evicts the server, its detail flag and every channel window
// it owned.
func (c *Cache) DeleteServer(serverID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, channel := range c.serverChannels(serverID) {
		c.windows.Clear(channel.ID)
	}

	c.dropDetailEntry(serverID)
	delete(c.abilitySets, serverID)
	delete(c.servers, serverID)

	if c.focusedServerID == serverID {
		c.focusedServerID = ""
		c.focusedChannelID = ""
	}
}

func (c *Cache) Server(serverID string) (*models.Server, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	server, exists := c.servers[serverID]
	return server, exists
}

func (c *Cache) HasServer(serverID string) bool {
	_, exists := c.Server(serverID)
	return exists
}

func (c *Cache) OwnerID(serverID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return withServer(c, serverID, "", func(s *models.Server) string {
		return s.OwnerID
	})
}

func (c *Cache) ServerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.servers)
}

func (c *Cache) UpdateProfile(serverID string, name string, description []byte, public *bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return withServer(c, serverID, false, func(s *models.Server) bool {
		if name != "" {
			s.Name = name
		}
		if description != nil {
			s.Description = description
		}
		if public != nil {
			s.Public = *public
		}
		return true
	})
}

func (c *Cache) UpdateAvatar(serverID string, avatar string, banner string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return withServer(c, serverID, false, func(s *models.Server) bool {
		if avatar != "" {
			s.Avatar = avatar
		}
		if banner != "" {
			s.Banner = banner
		}
		return true
	})
}

// Notifications summarizes unread channels and pending mentions across one
// server.
type Notifications struct {
	Unread   bool
	Mentions int
}

func (c *Cache) ServerNotifications(serverID string) Notifications {
	c.mu.Lock()
	defer c.mu.Unlock()

	notifications := Notifications{}
	for _, channel := range c.serverChannels(serverID) {
		if channel.LastMessageRead != channel.LastMessageSent {
			notifications.Unread = true
		}
		notifications.Mentions += len(channel.LastMentions)
	}
	return notifications
}

// SetLastMessageSent records the newest message of a channel, routing DMs
// to the owning friend relation.
func (c *Cache) SetLastMessageSent(serverID string, channelID string, messageID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if serverID == models.GlobalServerID {
		friend := c.friendByChannel(channelID)
		if friend == nil {
			return false
		}
		friend.LastMessageSent = messageID
		return true
	}

	return withServer(c, serverID, false, func(s *models.Server) bool {
		channel := findChannel(s, channelID)
		if channel == nil {
			return false
		}
		channel.LastMessageSent = messageID
		return true
	})
}

// SetLastMessageRead commits a read receipt. Reading acknowledges pending
// mentions, and the sent marker catches up so the read marker is never
// ahead of it.
func (c *Cache) SetLastMessageRead(serverID string, channelID string, messageID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if serverID == models.GlobalServerID {
		friend := c.friendByChannel(channelID)
		if friend == nil {
			return false
		}
		friend.LastMessageRead = messageID
		if friend.LastMessageSent == "" {
			friend.LastMessageSent = messageID
		}
		return true
	}

	return withServer(c, serverID, false, func(s *models.Server) bool {
		channel := findChannel(s, channelID)
		if channel == nil {
			return false
		}
		channel.LastMessageRead = messageID
		if channel.LastMessageSent == "" {
			channel.LastMessageSent = messageID
		}
		channel.LastMentions = nil
		return true
	})
}

// AddMention appends a message ID to the channel's pending mentions.
func (c *Cache) AddMention(serverID string, channelID string, messageID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return withServer(c, serverID, false, func(s *models.Server) bool {
		channel := findChannel(s, channelID)
		if channel == nil {
			return false
		}
		channel.LastMentions = append(channel.LastMentions, messageID)
		return true
	})
}
