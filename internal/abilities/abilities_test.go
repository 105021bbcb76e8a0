package abilities_test

import (
	"testing"

	"chatapp-client/internal/abilities"
	"chatapp-client/internal/models"

	"github.com/stretchr/testify/require"
)

func testServer() *models.Server {
	return &models.Server{
		ID:      "s1",
		OwnerID: "owner",
		Roles: []*models.Role{
			{ID: "r1", Name: "Mod", Position: 0, Abilities: []string{abilities.KickMembers, abilities.ManageMessages}},
			{ID: "r2", Name: "Member", Position: 1, Abilities: []string{abilities.SendMessages}},
			{ID: "r3", Name: "Admin", Position: 2, Abilities: []string{abilities.Administrator}},
		},
	}
}

func TestResolveUnionsHeldRoles(t *testing.T) {
	server := testServer()
	server.UserRoles = []string{"r1", "r2"}

	set := abilities.Resolve(server, "someone")

	require.True(t, set.Contains(abilities.KickMembers))
	require.True(t, set.Contains(abilities.ManageMessages))
	require.True(t, set.Contains(abilities.SendMessages))
	require.False(t, set.Contains(abilities.Administrator))
	require.False(t, set.Contains(abilities.Owner))
}

func TestResolveSynthesizesOwner(t *testing.T) {
	server := testServer()

	set := abilities.Resolve(server, "owner")

	require.True(t, set.Contains(abilities.Owner))
	require.True(t, abilities.Has(set, abilities.BanMembers))
}

func TestHasBypasses(t *testing.T) {
	tests := []struct {
		name     string
		set      abilities.Set
		required []string
		expected bool
	}{
		{
			name:     "held token passes",
			set:      abilities.NewSet(abilities.SendMessages),
			required: []string{abilities.SendMessages},
			expected: true,
		},
		{
			name:     "any of several suffices",
			set:      abilities.NewSet(abilities.AttachFiles),
			required: []string{abilities.SendMessages, abilities.AttachFiles},
			expected: true,
		},
		{
			name:     "missing token fails",
			set:      abilities.NewSet(abilities.SendMessages),
			required: []string{abilities.BanMembers},
			expected: false,
		},
		{
			name:     "administrator passes everything",
			set:      abilities.NewSet(abilities.Administrator),
			required: []string{abilities.BanMembers},
			expected: true,
		},
		{
			name:     "owner passes everything",
			set:      abilities.NewSet(abilities.Owner),
			required: []string{abilities.ManageServer},
			expected: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, abilities.Has(tc.set, tc.required...))
		})
	}
}

func TestTopRolePrefersLowestPosition(t *testing.T) {
	server := testServer()

	top := abilities.TopRole(server.Roles, []string{"r2", "r1"})
	require.NotNil(t, top)
	require.Equal(t, "r1", top.ID)

	require.Nil(t, abilities.TopRole(server.Roles, nil))
	require.Nil(t, abilities.TopRole(server.Roles, []string{"missing"}))
}

func TestPseudoRoles(t *testing.T) {
	role, ok := abilities.PseudoRole(abilities.PseudoRoleDefault, 3)
	require.True(t, ok)
	require.Equal(t, "Members", role.Name)
	require.Equal(t, 3, role.Position)

	role, ok = abilities.PseudoRole(abilities.PseudoRoleOffline, 0)
	require.True(t, ok)
	require.Equal(t, "Offline", role.Name)

	_, ok = abilities.PseudoRole("r1", 3)
	require.False(t, ok)
}
