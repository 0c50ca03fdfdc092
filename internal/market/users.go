package market

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"ecobazaarx/internal/events"
	"ecobazaarx/internal/models"
)

// RegisterUser crea una cuenta. El email se compara de forma exacta.
func (s *State) RegisterUser(ctx context.Context, c models.UserCandidate) (models.User, error) {
	if err := s.validateStruct(c); err != nil {
		return models.User{}, err
	}
	if c.Role == "" {
		c.Role = models.RoleConsumer
	}

	user, err := s.registerUser(ctx, c)
	if err != nil {
		return models.User{}, err
	}

	s.publish(ctx, events.TopicUserRegistered, events.UserRegistered{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	})
	return user, nil
}

func (s *State) registerUser(ctx context.Context, c models.UserCandidate) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.emails[c.Email]; exists {
		return models.User{}, ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), s.bcryptCost)
	if err != nil {
		return models.User{}, &OpError{Op: "market.RegisterUser", Err: err}
	}

	user := models.User{
		ID:           s.nextUserID(),
		Name:         c.Name,
		Email:        c.Email,
		PasswordHash: string(hash),
		Role:         c.Role,
		Status:       models.UserActive,
		CreatedAt:    s.now(),
	}
	s.users = append(s.users, user)
	s.emails[user.Email] = user.ID
	s.persistLocked(ctx, "register_user")

	s.logger.Info("User registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// LoginUser abre la sesión. No distingue email desconocido de contraseña
// incorrecta.
func (s *State) LoginUser(email, password string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.userIndexLocked(s.emails[email])
	if idx < 0 {
		return models.User{}, ErrInvalidCredentials
	}
	user := s.users[idx]
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.logger.Warn("Password comparison failed", "user_id", user.ID, "error", err)
		}
		return models.User{}, ErrInvalidCredentials
	}
	if user.Status == models.UserBlocked {
		return models.User{}, ErrUserBlocked
	}

	s.session = user.ID
	s.logger.Info("Login successful", "user_id", user.ID)
	return user, nil
}

// LogoutUser cierra la sesión; es idempotente
func (s *State) LogoutUser() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = 0
}

// CurrentUser devuelve el usuario en sesión, si hay
func (s *State) CurrentUser() (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentUserLocked()
}

func (s *State) currentUserLocked() (models.User, bool) {
	if s.session == 0 {
		return models.User{}, false
	}
	idx := s.userIndexLocked(s.session)
	if idx < 0 {
		return models.User{}, false
	}
	return s.users[idx], true
}

// UpdateUser reemplaza el usuario con el mismo id. Sólo nombre, rol y estado
// son modificables; email y contraseña se conservan.
func (s *State) UpdateUser(ctx context.Context, updated models.User) (models.User, error) {
	return s.updateUser(ctx, updated.ID, "market.UpdateUser", func(models.User) models.User {
		return updated
	})
}

// ApplyUserUpdate aplica un cambio parcial de rol o estado
func (s *State) ApplyUserUpdate(ctx context.Context, id int64, u models.UserUpdate) (models.User, error) {
	return s.updateUser(ctx, id, "market.ApplyUserUpdate", func(current models.User) models.User {
		if u.Role != nil {
			current.Role = *u.Role
		}
		if u.Status != nil {
			current.Status = *u.Status
		}
		return current
	})
}

// ToggleUserStatus alterna entre activo y bloqueado
func (s *State) ToggleUserStatus(ctx context.Context, id int64) (models.User, error) {
	return s.updateUser(ctx, id, "market.ToggleUserStatus", func(current models.User) models.User {
		if current.Status == models.UserActive {
			current.Status = models.UserBlocked
		} else {
			current.Status = models.UserActive
		}
		return current
	})
}

// updateUser lee, arma y escribe el usuario en la misma sección crítica
func (s *State) updateUser(ctx context.Context, id int64, op string, build func(models.User) models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.userIndexLocked(id)
	if idx < 0 {
		return models.User{}, &OpError{Op: op, ID: id, Err: ErrUserNotFound}
	}

	current := s.users[idx]
	updated := build(current)
	if !updated.Role.Valid() {
		return models.User{}, &ValidationError{Field: "role", Message: "must be one of [consumer seller admin]"}
	}
	if !updated.Status.Valid() {
		return models.User{}, &ValidationError{Field: "status", Message: "must be one of [active blocked]"}
	}

	if updated.Name != "" {
		current.Name = updated.Name
	}
	current.Role = updated.Role
	current.Status = updated.Status
	s.users[idx] = current

	if current.Status == models.UserBlocked && s.session == current.ID {
		s.session = 0
	}
	s.persistLocked(ctx, "update_user")

	s.logger.Info("User updated", "user_id", current.ID, "role", current.Role, "status", current.Status)
	return current, nil
}

// User busca un usuario por id
func (s *State) User(id int64) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.userIndexLocked(id)
	if idx < 0 {
		return models.User{}, false
	}
	return s.users[idx], true
}

// Users devuelve una copia de todos los usuarios
func (s *State) Users() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, len(s.users))
	copy(out, s.users)
	return out
}

func (s *State) userIndexLocked(id int64) int {
	if id == 0 {
		return -1
	}
	for i := range s.users {
		if s.users[i].ID == id {
			return i
		}
	}
	return -1
}

// SetUserRole cambia el rol del usuario (promover o degradar)
func (s *State) SetUserRole(ctx context.Context, id int64, role models.Role) (models.User, error) {
	return s.ApplyUserUpdate(ctx, id, models.UserUpdate{Role: &role})
}
