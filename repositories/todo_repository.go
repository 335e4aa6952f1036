package repositories

import (
	"todolist-restful/models"

	"gorm.io/gorm"
)

// TodoRepository interface defines Todo-related database operations.
// Every listing method takes an ownerID; passing 0 lists unscoped, which is
// reserved for admin actors. Counts always apply the same filter as the
// fetch so reported sizes match the rows actually returned.
type TodoRepository interface {
	Create(todo *models.Todo) error
	FindByID(id uint) (*models.Todo, error)
	Update(todo *models.Todo) error
	Delete(todo *models.Todo) error
	FindByOwner(ownerID uint) ([]models.Todo, int64, error)
	CountByOwner(ownerID uint, complete bool) (int64, error)
	Search(ownerID uint, q string, page int, pageSize int) ([]models.Todo, int64, error)
}

type todoRepository struct {
	db *gorm.DB
}

// NewTodoRepository creates a new TodoRepository instance
func NewTodoRepository(db *gorm.DB) TodoRepository {
	return &todoRepository{db: db}
}

func (r *todoRepository) Create(todo *models.Todo) error {
	result := r.db.Create(todo)
	return result.Error
}

func (r *todoRepository) FindByID(id uint) (*models.Todo, error) {
	var todo models.Todo
	result := r.db.First(&todo, id)
	if result.Error != nil {
		return nil, result.Error
	}
	return &todo, nil
}

func (r *todoRepository) Update(todo *models.Todo) error {
	result := r.db.Save(todo)
	return result.Error
}

// Delete removes the Todo row for good, matching the destructive mutation
// model of the rest of the surface.
func (r *todoRepository) Delete(todo *models.Todo) error {
	result := r.db.Unscoped().Delete(todo)
	return result.Error
}

// FindByOwner returns all todos owned by ownerID with a matching count
func (r *todoRepository) FindByOwner(ownerID uint) ([]models.Todo, int64, error) {
	var todos []models.Todo
	var total int64

	query := r.db.Model(&models.Todo{}).Where("user_id = ?", ownerID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("id").Find(&todos).Error; err != nil {
		return nil, 0, err
	}
	return todos, total, nil
}

// CountByOwner counts the owner's todos with the given completion state
func (r *todoRepository) CountByOwner(ownerID uint, complete bool) (int64, error) {
	var total int64
	err := r.db.Model(&models.Todo{}).
		Where("user_id = ? AND complete = ?", ownerID, complete).
		Count(&total).Error
	return total, err
}

// Search paginates todos matching q by text. ownerID scopes the search;
// ownerID 0 searches across all owners.
func (r *todoRepository) Search(ownerID uint, q string, page int, pageSize int) ([]models.Todo, int64, error) {
	offset := (page - 1) * pageSize
	var todos []models.Todo
	var total int64

	query := r.db.Model(&models.Todo{})
	if ownerID != 0 {
		query = query.Where("user_id = ?", ownerID)
	}
	if q != "" {
		query = query.Where("text LIKE ?", "%"+q+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("id").Offset(offset).Limit(pageSize).Find(&todos).Error; err != nil {
		return nil, 0, err
	}
	return todos, total, nil
}
