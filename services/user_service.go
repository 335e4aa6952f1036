package services

import (
	"errors"
	"fmt"
	"strings"
	"todolist-restful/models"
	"todolist-restful/repositories"

	"gorm.io/gorm"
)

// The UserService interface defines the methods that user services need to implement
type UserService interface {
	// CreateUser registers a user. actorID 0 means an anonymous caller,
	// which is only allowed when public registration is enabled.
	CreateUser(actorID uint, input *CreateUserInput) (*models.User, error)
	GetUserByID(targetID uint, actorID uint) (*models.User, error)
	UpdateUser(targetID uint, actorID uint, input *UpdateUserInput) (*models.User, error)
	DeleteUser(targetID uint, actorID uint) error
	SearchUsers(actorID uint, q string, page int, pageSize int) ([]models.User, int64, error)
	GrantRole(actorID uint, targetID uint, roleName string) error
	RevokeRole(actorID uint, targetID uint, roleName string) error
}

// PasswordHasher hashes plaintext passwords before they are persisted.
// Satisfied by auth.Authenticator.
type PasswordHasher interface {
	HashPassword(plain string) (string, error)
}

// --- Structs for Input/Output ---

type CreateUserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

type UpdateUserInput struct {
	// Pointers distinguish "not provided" from "set to empty".
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}

type userService struct {
	users            repositories.UserRepository
	roles            repositories.RoleRepository
	todos            repositories.TodoRepository
	hasher           PasswordHasher
	authz            RoleChecker
	registrationOpen bool
}

var _ UserService = (*userService)(nil)

// NewUserService creates a new UserService instance
func NewUserService(users repositories.UserRepository, roles repositories.RoleRepository, todos repositories.TodoRepository, hasher PasswordHasher, authz RoleChecker, registrationOpen bool) UserService {
	return &userService{
		users:            users,
		roles:            roles,
		todos:            todos,
		hasher:           hasher,
		authz:            authz,
		registrationOpen: registrationOpen,
	}
}

func (s *userService) actorIsAdmin(actorID uint) bool {
	if actorID == 0 {
		return false
	}
	isAdmin, _ := s.authz.HasRole(actorID, AdminRole)
	return isAdmin
}

// CreateUser handles registration and admin-side user creation. Passwords
// are always stored hashed; an account created without one cannot log in
// until an admin sets a password.
func (s *userService) CreateUser(actorID uint, input *CreateUserInput) (*models.User, error) {
	if !s.registrationOpen && !s.actorIsAdmin(actorID) {
		return nil, fmt.Errorf("%w: public registration is disabled", ErrForbidden)
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}

	// Check if name or email already exists
	if _, err := s.users.FindByName(name); err == nil {
		return nil, fmt.Errorf("%w: name %q is taken", ErrConflict, name)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error checking existing user: %w", err)
	}

	if input.Email != "" {
		if _, err := s.users.FindByEmail(input.Email); err == nil {
			return nil, fmt.Errorf("%w: email %q is taken", ErrConflict, input.Email)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("database error checking existing user: %w", err)
		}
	}

	user := models.User{
		Name:   name,
		Email:  input.Email,
		Active: true,
	}
	if input.Password != "" {
		hashed, err := s.hasher.HashPassword(input.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}

	if err := s.users.Create(&user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// New users get the baseline role when it exists; seeding guarantees it
	// outside of tests.
	if role, err := s.roles.FindByName("user"); err == nil {
		_ = s.users.AddRole(&user, role)
	}

	return &user, nil
}

// GetUserByID retrieves a single user. Actors may read themselves; reading
// anyone else requires the admin role.
func (s *userService) GetUserByID(targetID uint, actorID uint) (*models.User, error) {
	if targetID != actorID && !s.actorIsAdmin(actorID) {
		return nil, fmt.Errorf("%w: cannot view other users", ErrForbidden)
	}

	user, err := s.users.FindByID(targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, targetID)
		}
		return nil, fmt.Errorf("database error retrieving user: %w", err)
	}
	return user, nil
}

// UpdateUser updates a user's details, self or admin.
func (s *userService) UpdateUser(targetID uint, actorID uint, input *UpdateUserInput) (*models.User, error) {
	isAdmin := s.actorIsAdmin(actorID)
	if targetID != actorID && !isAdmin {
		return nil, fmt.Errorf("%w: cannot update other users", ErrForbidden)
	}

	user, err := s.users.FindByID(targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, targetID)
		}
		return nil, fmt.Errorf("database error retrieving user for update: %w", err)
	}

	needsSave := false

	if input.Email != nil && *input.Email != user.Email {
		// Check if the new email is already taken by another user
		existing, err := s.users.FindByEmail(*input.Email)
		if err == nil && existing.ID != user.ID {
			return nil, fmt.Errorf("%w: email %q is taken", ErrConflict, *input.Email)
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("database error checking email uniqueness: %w", err)
		}
		user.Email = *input.Email
		needsSave = true
	}

	if input.Password != nil && *input.Password != "" {
		hashed, err := s.hasher.HashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
		needsSave = true
	}

	// Only admins may flip the active flag
	if input.Active != nil && *input.Active != user.Active {
		if !isAdmin {
			return nil, fmt.Errorf("%w: only admins may change the active flag", ErrForbidden)
		}
		user.Active = *input.Active
		needsSave = true
	}

	if needsSave {
		if err := s.users.Update(user); err != nil {
			return nil, fmt.Errorf("failed to save user updates: %w", err)
		}
	}

	return user, nil
}

// DeleteUser removes a user. Admin only. Deletion is restricted while the
// user still owns todos, so no rows are ever orphaned.
func (s *userService) DeleteUser(targetID uint, actorID uint) error {
	if !s.actorIsAdmin(actorID) {
		return fmt.Errorf("%w: only admins may delete users", ErrForbidden)
	}

	user, err := s.users.FindByID(targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user %d", ErrNotFound, targetID)
		}
		return fmt.Errorf("database error retrieving user for delete: %w", err)
	}

	owned, _, err := s.todos.FindByOwner(user.ID)
	if err != nil {
		return fmt.Errorf("database error checking owned todos: %w", err)
	}
	if len(owned) > 0 {
		return fmt.Errorf("%w: user %q still owns %d todos", ErrValidation, user.Name, len(owned))
	}

	if err := s.users.Delete(user); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// SearchUsers lists users matching q by name or email. Admin only.
func (s *userService) SearchUsers(actorID uint, q string, page int, pageSize int) ([]models.User, int64, error) {
	if !s.actorIsAdmin(actorID) {
		return nil, 0, fmt.Errorf("%w: only admins may list users", ErrForbidden)
	}

	users, total, err := s.users.Search(q, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("database error searching users: %w", err)
	}
	return users, total, nil
}

func (s *userService) membershipChange(actorID uint, targetID uint, roleName string) (*models.User, *models.Role, error) {
	if !s.actorIsAdmin(actorID) {
		return nil, nil, fmt.Errorf("%w: only admins may manage role membership", ErrForbidden)
	}

	user, err := s.users.FindByID(targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: user %d", ErrNotFound, targetID)
		}
		return nil, nil, fmt.Errorf("database error retrieving user: %w", err)
	}

	role, err := s.roles.FindByName(roleName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: role %q", ErrNotFound, roleName)
		}
		return nil, nil, fmt.Errorf("database error retrieving role: %w", err)
	}

	return user, role, nil
}

// GrantRole adds the named role to the target user.
func (s *userService) GrantRole(actorID uint, targetID uint, roleName string) error {
	user, role, err := s.membershipChange(actorID, targetID, roleName)
	if err != nil {
		return err
	}
	if err := s.users.AddRole(user, role); err != nil {
		return fmt.Errorf("failed to grant role: %w", err)
	}
	return nil
}

// RevokeRole removes the named role from the target user.
func (s *userService) RevokeRole(actorID uint, targetID uint, roleName string) error {
	user, role, err := s.membershipChange(actorID, targetID, roleName)
	if err != nil {
		return err
	}
	if err := s.users.RemoveRole(user, role); err != nil {
		return fmt.Errorf("failed to revoke role: %w", err)
	}
	return nil
}
