package market

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecobazaarx/internal/models"
)

func TestAliceScenario(t *testing.T) {
	ctx := context.Background()
	s := newTestState(t)

	alice, err := s.RegisterUser(ctx, models.UserCandidate{
		Name: "Alice", Email: "alice@x.com", Password: "secret1", Role: models.RoleConsumer,
	})
	require.NoError(t, err)
	assert.NotZero(t, alice.ID)

	_, err = s.RegisterUser(ctx, models.UserCandidate{
		Name: "Alice Again", Email: "alice@x.com", Password: "secret2", Role: models.RoleConsumer,
	})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	logged, err := s.LoginUser("alice@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, logged.ID)
	current, ok := s.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, alice.ID, current.ID)

	product := models.Product{ID: 7, Name: "Jute Bag", Price: 20, CarbonFootprint: 0.5}
	require.NoError(t, s.AddToCart(product, 1))
	require.NoError(t, s.AddToCart(product, 1))
	cart := s.Cart()
	require.Len(t, cart, 1)
	assert.Equal(t, 2, cart[0].Quantity)

	orders, err := s.Checkout(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 2, orders[0].Quantity)
	assert.Equal(t, 40.0, orders[0].Total)
	assert.Equal(t, "alice@x.com", orders[0].Buyer.Email)
	assert.Empty(t, s.Cart())
}

func TestRegisterUser_Validation(t *testing.T) {
	tests := []struct {
		name      string
		candidate models.UserCandidate
		field     string
	}{
		{
			name:      "missing name",
			candidate: models.UserCandidate{Email: "a@x.com", Password: "secret1"},
			field:     "name",
		},
		{
			name:      "bad email",
			candidate: models.UserCandidate{Name: "A", Email: "not-an-email", Password: "secret1"},
			field:     "email",
		},
		{
			name:      "short password",
			candidate: models.UserCandidate{Name: "A", Email: "a@x.com", Password: "123"},
			field:     "password",
		},
		{
			name:      "unknown role",
			candidate: models.UserCandidate{Name: "A", Email: "a@x.com", Password: "secret1", Role: "root"},
			field:     "role",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestState(t)
			_, err := s.RegisterUser(context.Background(), tt.candidate)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.Empty(t, s.Users())
		})
	}
}

func TestRegisterUser_DefaultsAndHash(t *testing.T) {
	s := newTestState(t)
	u, err := s.RegisterUser(context.Background(), models.UserCandidate{
		Name: "Alice", Email: "alice@x.com", Password: "secret1",
	})
	require.NoError(t, err)

	assert.Equal(t, models.RoleConsumer, u.Role)
	assert.Equal(t, models.UserActive, u.Status)
	assert.NotEqual(t, "secret1", u.PasswordHash)
	assert.NotEmpty(t, u.PasswordHash)
}

func TestRegisterUser_EmailsStayUnique(t *testing.T) {
	s := newTestState(t)
	emails := []string{"a@x.com", "b@x.com", "a@x.com", "c@x.com", "b@x.com", "A@x.com"}
	for _, e := range emails {
		_, _ = s.RegisterUser(context.Background(), models.UserCandidate{Name: "U", Email: e, Password: "secret1"})
	}

	seen := map[string]bool{}
	for _, u := range s.Users() {
		assert.False(t, seen[u.Email], "duplicate email %s", u.Email)
		seen[u.Email] = true
	}
	// La comparación distingue mayúsculas
	assert.Len(t, s.Users(), 4)
}

func TestRegisterUser_IDsIncrease(t *testing.T) {
	s := newTestState(t)
	a := mustRegister(t, s, "A", "a@x.com", models.RoleConsumer)
	b := mustRegister(t, s, "B", "b@x.com", models.RoleSeller)
	assert.Greater(t, b.ID, a.ID)
}

func TestLoginUser_DoesNotLeakAccountExistence(t *testing.T) {
	s := newTestState(t)
	mustRegister(t, s, "Alice", "alice@x.com", models.RoleConsumer)

	_, errUnknown := s.LoginUser("nobody@x.com", "secret1")
	_, errWrong := s.LoginUser("alice@x.com", "wrong-password")

	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrong, ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())

	_, ok := s.CurrentUser()
	assert.False(t, ok)
}

func TestLoginUser_Blocked(t *testing.T) {
	ctx := context.Background()
	s := newTestState(t)
	alice := mustRegister(t, s, "Alice", "alice@x.com", models.RoleConsumer)

	_, err := s.ToggleUserStatus(ctx, alice.ID)
	require.NoError(t, err)

	_, err = s.LoginUser("alice@x.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.LoginUser("alice@x.com", "secret1")
	assert.ErrorIs(t, err, ErrUserBlocked)
}

func TestLogoutUser_Idempotent(t *testing.T) {
	s := newTestState(t)
	mustRegister(t, s, "Alice", "alice@x.com", models.RoleConsumer)
	_, err := s.LoginUser("alice@x.com", "secret1")
	require.NoError(t, err)

	s.LogoutUser()
	_, ok := s.CurrentUser()
	assert.False(t, ok)

	s.LogoutUser()
	_, ok = s.CurrentUser()
	assert.False(t, ok)
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	s := newTestState(t)
	alice := mustRegister(t, s, "Alice", "alice@x.com", models.RoleConsumer)

	updated, err := s.UpdateUser(ctx, models.User{
		ID: alice.ID, Name: "Alice Cooper", Email: "hijack@x.com", Role: models.RoleSeller, Status: models.UserActive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Cooper", updated.Name)
	assert.Equal(t, models.RoleSeller, updated.Role)
	assert.Equal(t, "alice@x.com", updated.Email)
	assert.Equal(t, alice.PasswordHash, updated.PasswordHash)

	_, err = s.UpdateUser(ctx, models.User{ID: 999, Role: models.RoleSeller, Status: models.UserActive})
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.True(t, IsNotFound(err))

	_, err = s.UpdateUser(ctx, models.User{ID: alice.ID, Role: "root", Status: models.UserActive})
	assert.True(t, IsValidation(err))
}

func TestUpdateUser_BlockingEndsSession(t *testing.T) {
	ctx := context.Background()
	s := newTestState(t)
	alice := mustRegister(t, s, "Alice", "alice@x.com", models.RoleConsumer)
	_, err := s.LoginUser("alice@x.com", "secret1")
	require.NoError(t, err)

	blocked, err := s.ToggleUserStatus(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserBlocked, blocked.Status)

	_, ok := s.CurrentUser()
	assert.False(t, ok)

	active, err := s.ToggleUserStatus(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserActive, active.Status)
}

func TestSetUserRole(t *testing.T) {
	ctx := context.Background()
	s := newTestState(t)
	bob := mustRegister(t, s, "Bob", "bob@x.com", models.RoleConsumer)

	promoted, err := s.SetUserRole(ctx, bob.ID, models.RoleSeller)
	require.NoError(t, err)
	assert.Equal(t, models.RoleSeller, promoted.Role)

	_, err = s.SetUserRole(ctx, 404, models.RoleSeller)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
