package cache

import (
	"sort"

	"chatapp-client/internal/models"
)

// findChannel walks the server's categories for a channel. Caller holds c.mu.
func findChannel(server *models.Server, channelID string) *models.Channel {
	for _, category := range server.Categories {
		if channel, exists := category.Channels[channelID]; exists {
			return channel
		}
	}
	return nil
}

func (c *Cache) AddCategory(category *models.Category) bool {
	if category == nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return withServer(c, category.ServerID, false, func(s *models.Server) bool {
		if category.Channels == nil {
			category.Channels = make(map[string]*models.Channel)
		}
		s.Categories[category.ID] = category
		return true
	})
}

// DeleteCategory evicts the category and the windows of every channel it
// contained.
func (c *Cache) DeleteCategory(serverID string, categoryID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return withServer(c, serverID, false, func(s *models.Server) bool {
		category, exists := s.Categories[categoryID]
		if !exists {
			return false
		}

		for channelID := range category.Channels {
			c.windows.Clear(channelID)
		}
		delete(s.Categories, categoryID)
		return true
	})
}

func (c *Cache) EditCategory(serverID string, categoryID string, patch CategoryPatch) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return withServer(c, serverID, false, func(s *models.Server) bool {
		category, exists := s.Categories[categoryID]
		if !exists {
			return false
		}

		if patch.Name != "" {
			category.Name = patch.Name
		}
		if patch.Position != nil {
			category.Position = *patch.Position
		}
		if patch.Users != nil {
			category.Users = patch.Users
		}
		if patch.Roles != nil {
			category.Roles = patch.Roles
		}
		return true
	})
}

type CategoryPatch struct {
	Name     string
	Position *int
	Users    []string
	Roles    []string
}

func (c *Cache) Category(serverID string, categoryID string) (*models.Category, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	category := withServer(c, serverID, nil, func(s *models.Server) *models.Category {
		return s.Categories[categoryID]
	})
	return category, category != nil
}

func (c *Cache) AddChannel(channel *models.Channel) bool {
	if channel == nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return withServer(c, channel.ServerID, false, func(s *models.Server) bool {
		category, exists := s.Categories[channel.CategoryID]
		if !exists {
			return false
		}
		category.Channels[channel.ID] = channel
		return true
	})
}

func (c *Cache) DeleteChannel(serverID string, categoryID string, channelID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return withServer(c, serverID, false, func(s *models.Server) bool {
		category, exists := s.Categories[categoryID]
		if !exists {
			return false
		}
		if _, exists := category.Channels[channelID]; !exists {
			return false
		}

		delete(category.Channels, channelID)
		c.windows.Clear(channelID)
		return true
	})
}

type ChannelPatch struct {
	Name        string
	Description string
	Position    *int
	Users       []string
	Roles       []string
}

func (c *Cache) EditChannel(serverID string, channelID string, patch ChannelPatch) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return withServer(c, serverID, false, func(s *models.Server) bool {
		channel := findChannel(s, channelID)
		if channel == nil {
			return false
		}

		if patch.Name != "" {
			channel.Name = patch.Name
		}
		if patch.Description != "" {
			channel.Description = patch.Description
		}
		if patch.Position != nil {
			channel.Position = *patch.Position
		}
		if patch.Users != nil {
			channel.Users = patch.Users
		}
		if patch.Roles != nil {
			channel.Roles = patch.Roles
		}
		return true
	})
}

func (c *Cache) Channel(serverID string, channelID string) (*models.Channel, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	channel := withServer(c, serverID, nil, func(s *models.Server) *models.Channel {
		return findChannel(s, channelID)
	})
	return channel, channel != nil
}

// channelAllowed checks the channel's allow-lists against the current user.
// A channel without lists is open to everyone. Caller holds c.mu.
func (c *Cache) channelAllowed(server *models.Server, channel *models.Channel) bool {
	if len(channel.Users) == 0 && len(channel.Roles) == 0 {
		return true
	}

	for _, id := range channel.Users {
		if id == c.userID {
			return true
		}
	}
	for _, roleID := range channel.Roles {
		for _, held := range server.UserRoles {
			if held == roleID {
				return true
			}
		}
	}
	return false
}

// ChannelAllowed reports whether the current user passes the channel's
// allow-lists.
func (c *Cache) ChannelAllowed(serverID string, channelID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return withServer(c, serverID, true, func(s *models.Server) bool {
		channel := findChannel(s, channelID)
		if channel == nil {
			return true
		}
		return c.channelAllowed(s, channel)
	})
}

// FirstChannelID is the redirect target after the focused channel's scope
// disappears: the first viewable channel by category then channel position.
func (c *Cache) FirstChannelID(serverID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return withServer(c, serverID, "", func(s *models.Server) string {
		categories := make([]*models.Category, 0, len(s.Categories))
		for _, category := range s.Categories {
			categories = append(categories, category)
		}
		sort.Slice(categories, func(i, j int) bool {
			return categories[i].Position < categories[j].Position
		})

		for _, category := range categories {
			channels := make([]*models.Channel, 0, len(category.Channels))
			for _, channel := range category.Channels {
				channels = append(channels, channel)
			}
			sort.Slice(channels, func(i, j int) bool {
				return channels[i].Position < channels[j].Position
			})

			for _, channel := range channels {
				if c.channelAllowed(s, channel) {
					return channel.ID
				}
			}
		}
		return ""
	})
}

// serverChannels flattens every channel of a server. Caller holds c.mu.
func (c *Cache) serverChannels(serverID string) []*models.Channel {
	server, exists := c.servers[serverID]
	if !exists {
		return nil
	}

	var channels []*models.Channel
	for _, category := range server.Categories {
		for _, channel := range category.Channels {
			channels = append(channels, channel)
		}
	}
	return channels
}

func (c *Cache) ServerChannels(serverID string) []*models.Channel {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.serverChannels(serverID)
}
