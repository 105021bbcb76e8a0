package cache

import (
	"chatapp-client/internal/models"
)

func (c *Cache) SetFriends(friends []*models.Friend) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.friends = make(map[string]*models.Friend, len(friends))
	for _, friend := range friends {
		if friend != nil {
			c.friends[friend.ID] = friend
		}
	}
}

func (c *Cache) Friend(userID string) (*models.Friend, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	friend, exists := c.friends[userID]
	return friend, exists
}

func (c *Cache) Friends() []*models.Friend {
	c.mu.Lock()
	defer c.mu.Unlock()

	friends := make([]*models.Friend, 0, len(c.friends))
	for _, friend := range c.friends {
		friends = append(friends, friend)
	}
	return friends
}

// friendByChannel resolves a friend from their DM channel. Caller holds c.mu.
func (c *Cache) friendByChannel(channelID string) *models.Friend {
	for _, friend := range c.friends {
		if friend.ChannelID == channelID {
			return friend
		}
	}
	return nil
}

func (c *Cache) FriendByChannel(channelID string) (*models.Friend, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	friend := c.friendByChannel(channelID)
	return friend, friend != nil
}

// AddFriend stores an incoming or outgoing friend request. Re-adding an
// existing relation is a no-op.
func (c *Cache) AddFriend(friend *models.Friend) bool {
	if friend == nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.friends[friend.ID]; exists {
		return false
	}
	c.friends[friend.ID] = friend
	return true
}

// AcceptFriend flips the relation to accepted and attaches its DM channel.
func (c *Cache) AcceptFriend(friendshipID string, channelID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, friend := range c.friends {
		if friend.FriendshipID == friendshipID {
			friend.Accepted = true
			friend.ChannelID = channelID
			return true
		}
	}

	c.sugar.Debugf("Friendship ID [%s] is not cached, dropping accept", friendshipID)
	return false
}

func (c *Cache) RemoveFriend(friendshipID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for userID, friend := range c.friends {
		if friend.FriendshipID == friendshipID {
			if friend.ChannelID != "" {
				c.windows.Clear(friend.ChannelID)
			}
			delete(c.friends, userID)
			return true
		}
	}
	return false
}

// RemoveFriendByUser drops the relation by user ID, the account-deletion
// path.
func (c *Cache) RemoveFriendByUser(userID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	friend, exists := c.friends[userID]
	if !exists {
		return false
	}
	if friend.ChannelID != "" {
		c.windows.Clear(friend.ChannelID)
	}
	delete(c.friends, userID)
	return true
}

// SetFriendStatus updates a friend's presence everywhere, unlike member
// presence it is not gated on focus.
func (c *Cache) SetFriendStatus(userID string, status string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	friend, exists := c.friends[userID]
	if !exists {
		return false
	}
	friend.Status = status
	return true
}
