package repositories

import (
	"todolist-restful/models"

	"gorm.io/gorm"
)

// RoleRepository interface defines Role-related database operations
type RoleRepository interface {
	Create(role *models.Role) error
	FindByID(id uint) (*models.Role, error)
	FindByName(name string) (*models.Role, error)
	Update(role *models.Role) error
	Delete(role *models.Role) error
	List(page int, pageSize int) ([]models.Role, int64, error)
}

type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository creates a new RoleRepository instance
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) Create(role *models.Role) error {
	result := r.db.Create(role)
	return result.Error
}

func (r *roleRepository) FindByID(id uint) (*models.Role, error) {
	var role models.Role
	result := r.db.First(&role, id)
	if result.Error != nil {
		return nil, result.Error
	}
	return &role, nil
}

func (r *roleRepository) FindByName(name string) (*models.Role, error) {
	var role models.Role
	result := r.db.Where("name = ?", name).First(&role)
	if result.Error != nil {
		return nil, result.Error
	}
	return &role, nil
}

func (r *roleRepository) Update(role *models.Role) error {
	result := r.db.Save(role)
	return result.Error
}

// Delete removes the Role row for good.
func (r *roleRepository) Delete(role *models.Role) error {
	result := r.db.Unscoped().Delete(role)
	return result.Error
}

// List paginates all roles
func (r *roleRepository) List(page int, pageSize int) ([]models.Role, int64, error) {
	offset := (page - 1) * pageSize
	var roles []models.Role
	var total int64

	if err := r.db.Model(&models.Role{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	result := r.db.Offset(offset).Limit(pageSize).Find(&roles)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return roles, total, nil
}
