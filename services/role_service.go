package services

import (
	"errors"
	"fmt"
	"strings"
	"todolist-restful/models"
	"todolist-restful/repositories"

	"gorm.io/gorm"
)

// RoleService covers role management. Every method requires the admin role.
type RoleService interface {
	CreateRole(actorID uint, input *RoleInput) (*models.Role, error)
	GetRoleByID(roleID uint, actorID uint) (*models.Role, error)
	UpdateRole(roleID uint, actorID uint, input *RoleInput) (*models.Role, error)
	DeleteRole(roleID uint, actorID uint) error
	ListRoles(actorID uint, page int, pageSize int) ([]models.Role, int64, error)
}

type RoleInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type roleService struct {
	roles repositories.RoleRepository
	authz RoleChecker
}

var _ RoleService = (*roleService)(nil)

// NewRoleService creates a new RoleService instance
func NewRoleService(roles repositories.RoleRepository, authz RoleChecker) RoleService {
	return &roleService{roles: roles, authz: authz}
}

func (s *roleService) requireAdmin(actorID uint) error {
	isAdmin, _ := s.authz.HasRole(actorID, AdminRole)
	if !isAdmin {
		return fmt.Errorf("%w: only admins may manage roles", ErrForbidden)
	}
	return nil
}

func (s *roleService) CreateRole(actorID uint, input *RoleInput) (*models.Role, error) {
	if err := s.requireAdmin(actorID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: role name is required", ErrValidation)
	}
	if _, err := s.roles.FindByName(name); err == nil {
		return nil, fmt.Errorf("%w: role %q", ErrConflict, name)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error checking existing role: %w", err)
	}

	role := models.Role{Name: name, Description: input.Description}
	if err := s.roles.Create(&role); err != nil {
		return nil, fmt.Errorf("failed to create role: %w", err)
	}
	return &role, nil
}

func (s *roleService) GetRoleByID(roleID uint, actorID uint) (*models.Role, error) {
	if err := s.requireAdmin(actorID); err != nil {
		return nil, err
	}

	role, err := s.roles.FindByID(roleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: role %d", ErrNotFound, roleID)
		}
		return nil, fmt.Errorf("database error retrieving role: %w", err)
	}
	return role, nil
}

func (s *roleService) UpdateRole(roleID uint, actorID uint, input *RoleInput) (*models.Role, error) {
	if err := s.requireAdmin(actorID); err != nil {
		return nil, err
	}

	role, err := s.roles.FindByID(roleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: role %d", ErrNotFound, roleID)
		}
		return nil, fmt.Errorf("database error retrieving role for update: %w", err)
	}

	if name := strings.TrimSpace(input.Name); name != "" && name != role.Name {
		if _, err := s.roles.FindByName(name); err == nil {
			return nil, fmt.Errorf("%w: role %q", ErrConflict, name)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("database error checking role name: %w", err)
		}
		role.Name = name
	}
	role.Description = input.Description

	if err := s.roles.Update(role); err != nil {
		return nil, fmt.Errorf("failed to save role updates: %w", err)
	}
	return role, nil
}

func (s *roleService) DeleteRole(roleID uint, actorID uint) error {
	if err := s.requireAdmin(actorID); err != nil {
		return err
	}

	role, err := s.roles.FindByID(roleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: role %d", ErrNotFound, roleID)
		}
		return fmt.Errorf("database error retrieving role for delete: %w", err)
	}

	// The built-in roles are load-bearing for access control
	if role.Name == AdminRole {
		return fmt.Errorf("%w: the %q role cannot be deleted", ErrValidation, AdminRole)
	}

	if err := s.roles.Delete(role); err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}
	return nil
}

func (s *roleService) ListRoles(actorID uint, page int, pageSize int) ([]models.Role, int64, error) {
	if err := s.requireAdmin(actorID); err != nil {
		return nil, 0, err
	}

	roles, total, err := s.roles.List(page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("database error listing roles: %w", err)
	}
	return roles, total, nil
}
