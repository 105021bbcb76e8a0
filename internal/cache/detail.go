package cache

import (
	"time"

	"chatapp-client/internal/models"
)

// detailEntry marks a server's roles/members/invites as already fetched.
// The expiry timer is re-armed on schedule and cancelled on access, a
// read-through cache with a sliding TTL.
type detailEntry struct {
	cached       bool
	lastAccessed time.Time
	timer        *time.Timer
}

// SetDetailTTL overrides the sliding expiry, shorter values are used by
// tests.
func (c *Cache) SetDetailTTL(ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.detailTTL = ttl
}

// DetailCached reports whether the server's detail lists are still fresh.
// Accessing a valid flag cancels the pending expiry, extending the TTL.
func (c *Cache) DetailCached(serverID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.detail[serverID]
	if !exists || !entry.cached {
		return false
	}

	if entry.timer != nil {
		entry.timer.Stop()
		entry.timer = nil
	}
	entry.lastAccessed = time.Now()
	return true
}

// MarkDetailCached flags the server detail as fetched. Any pending expiry
// is cancelled, ScheduleDetailExpiry arms the next one.
func (c *Cache) MarkDetailCached(serverID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, exists := c.detail[serverID]; exists && entry.timer != nil {
		entry.timer.Stop()
	}

	c.detail[serverID] = &detailEntry{
		cached:       true,
		lastAccessed: time.Now(),
	}
}

// ScheduleDetailExpiry arms the sliding expiry for a cached server detail.
func (c *Cache) ScheduleDetailExpiry(serverID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.detail[serverID]
	if !exists {
		return
	}

	if entry.timer != nil {
		entry.timer.Stop()
	}
	entry.timer = time.AfterFunc(c.detailTTL, func() {
		c.ClearServerDetail(serverID)
	})
}

// ClearServerDetail drops the detail lists and every channel window of the
// server, forcing the next access to re-fetch.
func (c *Cache) ClearServerDetail(serverID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.detail[serverID]
	if !exists {
		return
	}
	if entry.timer != nil {
		entry.timer.Stop()
	}
	delete(c.detail, serverID)

	server, exists := c.servers[serverID]
	if !exists {
		return
	}

	server.Roles = []*models.Role{}
	server.Members = []*models.Member{}
	server.Invites = []*models.Invite{}
	server.UserRoles = []string{}
	c.invalidateAbilities(serverID)

	for _, channel := range c.serverChannels(serverID) {
		c.windows.Clear(channel.ID)
	}
}

// dropDetailEntry forgets the flag without clearing entities, used when the
// whole server is evicted. Caller holds c.mu.
func (c *Cache) dropDetailEntry(serverID string) {
	if entry, exists := c.detail[serverID]; exists {
		if entry.timer != nil {
			entry.timer.Stop()
		}
		delete(c.detail, serverID)
	}
}

// ApplyServerInformations installs a fetched detail payload and marks it
// cached.
func (c *Cache) ApplyServerInformations(serverID string, info *models.ServerInformations) bool {
	if info == nil {
		return false
	}

	c.mu.Lock()
	ok := withServer(c, serverID, false, func(s *models.Server) bool {
		s.Members = info.Members
		if s.Members == nil {
			s.Members = []*models.Member{}
		}
		s.Invites = info.Invites
		if s.Invites == nil {
			s.Invites = []*models.Invite{}
		}
		s.Roles = info.Roles
		if s.Roles == nil {
			s.Roles = []*models.Role{}
		}
		sortRoles(s)
		s.UserRoles = info.UserRoles
		c.invalidateAbilities(serverID)
		return true
	})
	c.mu.Unlock()

	if ok {
		c.MarkDetailCached(serverID)
	}
	return ok
}

func (c *Cache) SetInvites(serverID string, invites []*models.Invite) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return withServer(c, serverID, false, func(s *models.Server) bool {
		s.Invites = invites
		if s.Invites == nil {
			s.Invites = []*models.Invite{}
		}
		return true
	})
}

func (c *Cache) Invites(serverID string) []*models.Invite {
	c.mu.Lock()
	defer c.mu.Unlock()

	return withServer(c, serverID, nil, func(s *models.Server) []*models.Invite {
		return s.Invites
	})
}
