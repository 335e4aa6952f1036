package repositories

import (
	"todolist-restful/models"

	"gorm.io/gorm"
)

// UserRepository interface defines User-related database operations
type UserRepository interface {
	Create(user *models.User) error
	FindByID(id uint) (*models.User, error)
	FindByName(name string) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	Delete(user *models.User) error
	// Search matches name or email against q (empty q lists all). The
	// returned total is counted with the same filter as the fetch.
	Search(q string, page int, pageSize int) ([]models.User, int64, error)
	AddRole(user *models.User, role *models.Role) error
	RemoveRole(user *models.User, role *models.Role) error
}

// userRepository implements the UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new User
func (r *userRepository) Create(user *models.User) error {
	result := r.db.Create(user)
	return result.Error
}

// FindByID finds User by ID, with roles preloaded
func (r *userRepository) FindByID(id uint) (*models.User, error) {
	var user models.User
	result := r.db.Preload("Roles").First(&user, id)
	if result.Error != nil {
		return nil, result.Error
	}
	return &user, nil
}

// FindByName finds User by Name
func (r *userRepository) FindByName(name string) (*models.User, error) {
	var user models.User
	result := r.db.Where("name = ?", name).First(&user)
	if result.Error != nil {
		return nil, result.Error
	}
	return &user, nil
}

// FindByEmail finds User by Email
func (r *userRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	result := r.db.Where("email = ?", email).First(&user)
	if result.Error != nil {
		return nil, result.Error
	}
	return &user, nil
}

// Update updates User information
func (r *userRepository) Update(user *models.User) error {
	result := r.db.Save(user)
	return result.Error
}

// Delete removes the User row. Deletion is destructive, there is no
// soft-delete or audit trail.
func (r *userRepository) Delete(user *models.User) error {
	result := r.db.Unscoped().Delete(user)
	return result.Error
}

// Search paginates users matching q by name or email
func (r *userRepository) Search(q string, page int, pageSize int) ([]models.User, int64, error) {
	offset := (page - 1) * pageSize
	var users []models.User
	var total int64

	query := r.db.Model(&models.User{})
	if q != "" {
		like := "%" + q + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	result := query.Offset(offset).Limit(pageSize).Find(&users)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return users, total, nil
}

// AddRole grants a role to a user via the roles_users join table
func (r *userRepository) AddRole(user *models.User, role *models.Role) error {
	return r.db.Model(user).Association("Roles").Append(role)
}

// RemoveRole revokes a role from a user
func (r *userRepository) RemoveRole(user *models.User, role *models.Role) error {
	return r.db.Model(user).Association("Roles").Delete(role)
}
