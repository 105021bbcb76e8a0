package cache

import (
	"chatapp-client/internal/models"
)

// findMember scans the server's member list. Caller holds c.mu.
func findMember(server *models.Server, userID string) *models.Member {
	for _, member := range server.Members {
		if member.ID == userID {
			return member
		}
	}
	return nil
}

// AddMember inserts a member, a no-op when the member is already present.
// The focused server's visible member count follows.
func (c *Cache) AddMember(serverID string, member *models.Member) bool {
	if member == nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return withServer(c, serverID, false, func(s *models.Server) bool {
		if findMember(s, member.ID) != nil {
			return false
		}

		if c.focusedServerID == serverID {
			c.memberCount++
		}
		s.Members = append(s.Members, member)
		return true
	})
}

func (c *Cache) AddMembers(serverID string, members []*models.Member) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return withServer(c, serverID, false, func(s *models.Server) bool {
		s.Members = append(s.Members, members...)
		return true
	})
}

func (c *Cache) SetMembers(serverID string, members []*models.Member) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return withServer(c, serverID, false, func(s *models.Server) bool {
		s.Members = members
		return true
	})
}

// ResetMembersList drops everything past the first page of members, used
// when leaving the members view.
func (c *Cache) ResetMembersList(serverID string) bool {
	const pageSize = 50

	c.mu.Lock()
	defer c.mu.Unlock()

	return withServer(c, serverID, false, func(s *models.Server) bool {
		if len(s.Members) > pageSize {
			s.Members = s.Members[:pageSize]
		}
		return true
	})
}

func (c *Cache) Member(serverID string, userID string) (*models.Member, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	member := withServer(c, serverID, nil, func(s *models.Server) *models.Member {
		return findMember(s, userID)
	})
	return member, member != nil
}

func (c *Cache) Members(serverID string) []*models.Member {
	c.mu.Lock()
	defer c.mu.Unlock()

	return withServer(c, serverID, nil, func(s *models.Server) []*models.Member {
		return s.Members
	})
}

func (c *Cache) MemberCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.memberCount
}

func (c *Cache) SetMemberCount(count int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.memberCount = count
}

// memberRoles prefers the author cache's role projection over the member
// list. Caller holds c.mu.
func (c *Cache) memberRoles(server *models.Server, userID string) []string {
	if author, exists := c.windows.Author(userID); exists && len(author.Roles) > 0 {
		return author.Roles
	}

	if member := findMember(server, userID); member != nil && len(member.Roles) > 0 {
		return member.Roles
	}

	return nil
}

func (c *Cache) MemberRoles(serverID string, userID string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return withServer(c, serverID, nil, func(s *models.Server) []string {
		return c.memberRoles(s, userID)
	})
}

// SetMemberStatus updates a member's presence. Status churn on servers the
// user is not looking at is dropped, nothing renders it.
func (c *Cache) SetMemberStatus(serverID string, userID string, status string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if serverID == "" || c.focusedServerID != serverID {
		return false
	}

	return withServer(c, serverID, false, func(s *models.Server) bool {
		member := findMember(s, userID)
		if member == nil {
			return false
		}
		member.Status = status
		return true
	})
}

// DeleteMember removes a member and cascades: the cached author projection
// is stripped and the member's messages are purged from every open channel
// window of this server. Windows of other servers are untouched. The whole
// cascade applies under one lock so no half-applied state is observable.
func (c *Cache) DeleteMember(serverID string, userID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return withServer(c, serverID, false, func(s *models.Server) bool {
		found := false
		for i, member := range s.Members {
			if member.ID == userID {
				s.Members = append(s.Members[:i], s.Members[i+1:]...)
				found = true
				break
			}
		}

		c.windows.RemoveAuthor(userID)

		for _, channel := range c.serverChannels(serverID) {
			if c.windows.Has(channel.ID) {
				c.windows.DeleteAllFromAuthor(channel.ID, userID)
			}
		}

		if userID == c.userID {
			c.invalidateAbilities(serverID)
		}
		return found
	})
}
