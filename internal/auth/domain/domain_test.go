package domain_test

import (
	"testing"
	"time"

	"github.com/quollify/gatekey/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestRoleToggle(t *testing.T) {
	require.Equal(t, domain.RoleClient, domain.RoleAdmin.Toggle())
	require.Equal(t, domain.RoleAdmin, domain.RoleClient.Toggle())

	// Toggling twice lands back where it started.
	require.Equal(t, domain.RoleAdmin, domain.RoleAdmin.Toggle().Toggle())
}

func TestRoleValid(t *testing.T) {
	require.True(t, domain.RoleAdmin.Valid())
	require.True(t, domain.RoleClient.Valid())
	require.False(t, domain.Role("SUPERUSER").Valid())
	require.False(t, domain.Role("").Valid())
}

func TestNewUserDefaults(t *testing.T) {
	now := time.Now().UTC()
	u := domain.NewUser("01JXAMPLE", "user@example.com", "Jane", "Doe", "$argon2id$...", now)

	require.Equal(t, domain.RoleClient, u.Role)
	require.True(t, u.Enabled)
	require.Equal(t, now, u.CreatedAt)
	require.Equal(t, now, u.UpdatedAt)
}

func TestUserFullName(t *testing.T) {
	u := domain.User{FirstName: "Jane", LastName: "Doe"}
	require.Equal(t, "Jane Doe", u.FullName())

	require.Equal(t, "Jane", domain.User{FirstName: "Jane"}.FullName())
	require.Equal(t, "Doe", domain.User{LastName: "Doe"}.FullName())
	require.Empty(t, domain.User{}.FullName())
}

func TestRefreshTokenActive(t *testing.T) {
	now := time.Now().UTC()
	tok := domain.RefreshToken{ExpiresAt: now.Add(time.Hour)}

	require.True(t, tok.Active(now))

	tok.Revoked = true
	require.False(t, tok.Active(now))

	tok.Revoked = false
	require.False(t, tok.Active(now.Add(2*time.Hour)))
}

func TestRecoveryTokenUsable(t *testing.T) {
	now := time.Now().UTC()
	tok := domain.RecoveryToken{ExpiresAt: now.Add(domain.RecoveryTokenTTL)}

	require.True(t, tok.Usable(now))

	tok.Used = true
	require.False(t, tok.Usable(now))

	tok.Used = false
	require.False(t, tok.Usable(now.Add(16*time.Minute)))
}
