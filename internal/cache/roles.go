package cache

import (
	"context"
	"sort"

	"chatapp-client/internal/abilities"
	"chatapp-client/internal/models"
	"chatapp-client/internal/rest"
	"chatapp-client/internal/schemas"

	"github.com/google/uuid"
)

// sortRoles keeps the role list ascending by position after every mutation.
// Caller holds c.mu.
func sortRoles(server *models.Server) {
	sort.SliceStable(server.Roles, func(i, j int) bool {
		return server.Roles[i].Position < server.Roles[j].Position
	})
}

func (c *Cache) invalidateAbilities(serverID string) {
	delete(c.abilitySets, serverID)
}

func (c *Cache) SetRoles(serverID string, roles []*models.Role) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return withServer(c, serverID, false, func(s *models.Server) bool {
		s.Roles = roles
		if s.Roles == nil {
			s.Roles = []*models.Role{}
		}
		sortRoles(s)
		c.invalidateAbilities(serverID)
		return true
	})
}

func (c *Cache) Roles(serverID string) []*models.Role {
	c.mu.Lock()
	defer c.mu.Unlock()

	return withServer(c, serverID, nil, func(s *models.Server) []*models.Role {
		return s.Roles
	})
}

// Role resolves a role by ID, synthesizing the default/offline pseudo-roles
// used as display fallbacks. Pseudo-roles are built on read, never stored.
func (c *Cache) Role(serverID string, roleID string) (*models.Role, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	role := withServer(c, serverID, nil, func(s *models.Server) *models.Role {
		if pseudo, ok := abilities.PseudoRole(roleID, len(s.Roles)); ok {
			return pseudo
		}
		for _, role := range s.Roles {
			if role.ID == roleID {
				return role
			}
		}
		return nil
	})
	return role, role != nil
}

func (c *Cache) AddRole(serverID string, role *models.Role) bool {
	if role == nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return withServer(c, serverID, false, func(s *models.Server) bool {
		s.Roles = append(s.Roles, role)
		sortRoles(s)
		c.invalidateAbilities(serverID)
		return true
	})
}

// UpsertRole merges into an existing role by ID or appends a new one.
func (c *Cache) UpsertRole(serverID string, role *models.Role) bool {
	if role == nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return withServer(c, serverID, false, func(s *models.Server) bool {
		for i, existing := range s.Roles {
			if existing.ID != role.ID {
				continue
			}

			if role.Name != "" {
				existing.Name = role.Name
			}
			if role.Color != "" {
				existing.Color = role.Color
			}
			existing.Position = role.Position
			if role.Abilities != nil {
				existing.Abilities = role.Abilities
			}
			if role.Members != nil {
				existing.Members = role.Members
			}
			s.Roles[i] = existing
			sortRoles(s)
			c.invalidateAbilities(serverID)
			return true
		}

		s.Roles = append(s.Roles, role)
		sortRoles(s)
		c.invalidateAbilities(serverID)
		return true
	})
}

func (c *Cache) DeleteRole(serverID string, roleID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return withServer(c, serverID, false, func(s *models.Server) bool {
		for i, role := range s.Roles {
			if role.ID == roleID {
				s.Roles = append(s.Roles[:i], s.Roles[i+1:]...)
				c.invalidateAbilities(serverID)
				return true
			}
		}
		return false
	})
}

// MoveRole swaps the positions of the two named roles, then re-sorts. The
// swap preserves exactly the two original position values, exchanged.
func (c *Cache) MoveRole(serverID string, roleID string, targetRoleID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return withServer(c, serverID, false, func(s *models.Server) bool {
		var moved, target *models.Role
		for _, role := range s.Roles {
			switch role.ID {
			case roleID:
				moved = role
			case targetRoleID:
				target = role
			}
		}
		if moved == nil || target == nil {
			return false
		}

		moved.Position, target.Position = target.Position, moved.Position
		sortRoles(s)
		c.invalidateAbilities(serverID)
		return true
	})
}

func (c *Cache) SetUserRoles(serverID string, roleIDs []string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return withServer(c, serverID, false, func(s *models.Server) bool {
		s.UserRoles = roleIDs
		c.invalidateAbilities(serverID)
		return true
	})
}

func (c *Cache) UserRoles(serverID string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return withServer(c, serverID, nil, func(s *models.Server) []string {
		return s.UserRoles
	})
}

func (c *Cache) addUserRole(server *models.Server, roleID string) {
	for _, held := range server.UserRoles {
		if held == roleID {
			return
		}
	}
	server.UserRoles = append(server.UserRoles, roleID)
	c.invalidateAbilities(server.ID)
}

func (c *Cache) removeUserRole(server *models.Server, roleID string) {
	for i, held := range server.UserRoles {
		if held == roleID {
			server.UserRoles = append(server.UserRoles[:i], server.UserRoles[i+1:]...)
			c.invalidateAbilities(server.ID)
			return
		}
	}
}

// AddRoleMember attaches a role to a member; when the member is the current
// user the server's held roles follow.
func (c *Cache) AddRoleMember(serverID string, roleID string, userID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return withServer(c, serverID, false, func(s *models.Server) bool {
		member := findMember(s, userID)
		if member != nil {
			held := false
			for _, id := range member.Roles {
				if id == roleID {
					held = true
					break
				}
			}
			if !held {
				member.Roles = append(member.Roles, roleID)
			}
		}

		for _, role := range s.Roles {
			if role.ID == roleID {
				present := false
				for _, id := range role.Members {
					if id == userID {
						present = true
						break
					}
				}
				if !present {
					role.Members = append(role.Members, userID)
				}
			}
		}

		if userID == c.userID {
			c.addUserRole(s, roleID)
		}
		return member != nil
	})
}

func (c *Cache) RemoveRoleMember(serverID string, roleID string, userID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return withServer(c, serverID, false, func(s *models.Server) bool {
		member := findMember(s, userID)
		if member != nil {
			for i, id := range member.Roles {
				if id == roleID {
					member.Roles = append(member.Roles[:i], member.Roles[i+1:]...)
					break
				}
			}
		}

		for _, role := range s.Roles {
			if role.ID == roleID {
				for i, id := range role.Members {
					if id == userID {
						role.Members = append(role.Members[:i], role.Members[i+1:]...)
						break
					}
				}
			}
		}

		if userID == c.userID {
			c.removeUserRole(s, roleID)
		}
		return member != nil
	})
}

// TopRole returns the member's highest-precedence role (minimum position).
func (c *Cache) TopRole(serverID string, userID string) (*models.Role, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	role := withServer(c, serverID, nil, func(s *models.Server) *models.Role {
		return abilities.TopRole(s.Roles, c.memberRoles(s, userID))
	})
	return role, role != nil
}

// Abilities returns the memoized effective ability set of the current user
// on the server, recomputing after any role or membership change.
func (c *Cache) Abilities(serverID string) abilities.Set {
	c.mu.Lock()
	defer c.mu.Unlock()

	if set, exists := c.abilitySets[serverID]; exists {
		return set
	}

	set := withServer(c, serverID, abilities.NewSet(), func(s *models.Server) abilities.Set {
		return abilities.Resolve(s, c.userID)
	})
	if _, exists := c.servers[serverID]; exists {
		c.abilitySets[serverID] = set
	}
	return set
}

// HasPermission reports whether the current user holds any of the required
// ability tokens on the server. Owner and administrator pass everything.
func (c *Cache) HasPermission(serverID string, required ...string) bool {
	return abilities.Has(c.Abilities(serverID), required...)
}

// RoleAPI is the slice of the request layer role creation needs.
type RoleAPI interface {
	CreateOrUpdateRole(ctx context.Context, serverID string, body schemas.UpsertRole) *rest.APIError
}

// CreateTemplateRole mints a locally-identified placeholder role, inserts it
// optimistically and pushes it to the backend.
func (c *Cache) CreateTemplateRole(ctx context.Context, api RoleAPI, serverID string) (*models.Role, bool) {
	role := &models.Role{
		ID:        uuid.NewString(),
		Name:      "new role",
		Color:     "#ADADB8",
		Abilities: []string{},
		Members:   []string{},
	}

	c.mu.Lock()
	ok := withServer(c, serverID, false, func(s *models.Server) bool {
		role.Position = len(s.Roles)
		s.Roles = append(s.Roles, role)
		sortRoles(s)
		c.invalidateAbilities(serverID)
		return true
	})
	c.mu.Unlock()

	if !ok {
		return nil, false
	}

	if err := api.CreateOrUpdateRole(ctx, serverID, schemas.UpsertRole{
		ID:        role.ID,
		Name:      role.Name,
		Color:     role.Color,
		Position:  role.Position,
		Abilities: role.Abilities,
		Members:   role.Members,
	}); err != nil {
		c.sugar.Errorf("Failed to push template role for server ID [%s]: %v", serverID, err)
	}

	return role, true
}
