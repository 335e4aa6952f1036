package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"todolist-restful/models"
	"todolist-restful/repositories"

	"gorm.io/gorm"
)

// The TodoService interface defines the methods that todo services need to implement
type TodoService interface {
	CreateTodo(actorID uint, input *CreateTodoInput) (*models.Todo, error)
	GetTodo(actorID uint, todoID uint) (*models.Todo, error)
	CompleteTodo(actorID uint, todoID uint) (*models.Todo, error)
	// UpdateTodo backs the admin edit view; owner-or-admin like the
	// single-purpose mutations.
	UpdateTodo(actorID uint, todoID uint, input *UpdateTodoInput) (*models.Todo, error)
	RemoveTodo(actorID uint, todoID uint) error
	// ListForActor returns the actor's own todos split by completion state.
	// Counts are derived from the same owner filter as the listing.
	ListForActor(actorID uint) (*TodoListing, error)
	// SearchTodos drives the admin list view. Non-admin actors are scoped
	// to their own rows regardless of what they ask for.
	SearchTodos(actorID uint, q string, page int, pageSize int) ([]models.Todo, int64, error)
}

// --- Structs for Input/Output ---

type CreateTodoInput struct {
	Text string `json:"text"`
	// OwnerName optionally names another user to own the new item. Only
	// admins may create todos for someone else.
	OwnerName string `json:"owner_name,omitempty"`
}

type UpdateTodoInput struct {
	// Pointers distinguish "not provided" from "set to zero value".
	Text     *string `json:"text,omitempty"`
	Complete *bool   `json:"complete,omitempty"`
}

// TodoListing is the actor-scoped view backing the todo list page.
type TodoListing struct {
	Incomplete      []models.Todo `json:"incomplete"`
	Complete        []models.Todo `json:"complete"`
	IncompleteCount int64         `json:"incomplete_count"`
	CompleteCount   int64         `json:"complete_count"`
}

type todoService struct {
	todos repositories.TodoRepository
	users repositories.UserRepository
	authz RoleChecker
}

var _ TodoService = (*todoService)(nil)

// NewTodoService creates a new TodoService instance
func NewTodoService(todos repositories.TodoRepository, users repositories.UserRepository, authz RoleChecker) TodoService {
	return &todoService{todos: todos, users: users, authz: authz}
}

// CreateTodo inserts a new incomplete item owned by the acting user, or by
// the named owner when the actor is an admin.
func (s *todoService) CreateTodo(actorID uint, input *CreateTodoInput) (*models.Todo, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: todo text is required", ErrValidation)
	}

	ownerID := actorID
	if input.OwnerName != "" {
		owner, err := s.users.FindByName(input.OwnerName)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: no user named %q", ErrValidation, input.OwnerName)
			}
			return nil, fmt.Errorf("database error resolving owner: %w", err)
		}
		if owner.ID != actorID {
			isAdmin, _ := s.authz.HasRole(actorID, AdminRole)
			if !isAdmin {
				return nil, fmt.Errorf("%w: only admins may create todos for other users", ErrForbidden)
			}
		}
		ownerID = owner.ID
	}

	todo := models.Todo{
		Text:     text,
		Complete: false,
		UserID:   ownerID,
	}
	if err := s.todos.Create(&todo); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}
	return &todo, nil
}

// fetchOwned loads a todo and enforces owner-or-admin access.
func (s *todoService) fetchOwned(actorID uint, todoID uint) (*models.Todo, error) {
	todo, err := s.todos.FindByID(todoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: todo %d", ErrNotFound, todoID)
		}
		return nil, fmt.Errorf("database error retrieving todo: %w", err)
	}

	if todo.UserID != actorID {
		isAdmin, _ := s.authz.HasRole(actorID, AdminRole)
		if !isAdmin {
			return nil, fmt.Errorf("%w: todo %d belongs to another user", ErrForbidden, todoID)
		}
	}
	return todo, nil
}

// GetTodo retrieves a single item, owner-or-admin.
func (s *todoService) GetTodo(actorID uint, todoID uint) (*models.Todo, error) {
	return s.fetchOwned(actorID, todoID)
}

// UpdateTodo applies an admin-surface edit. Setting Complete true stamps
// DoneAt; setting it false clears it.
func (s *todoService) UpdateTodo(actorID uint, todoID uint, input *UpdateTodoInput) (*models.Todo, error) {
	todo, err := s.fetchOwned(actorID, todoID)
	if err != nil {
		return nil, err
	}

	needsSave := false
	if input.Text != nil {
		text := strings.TrimSpace(*input.Text)
		if text == "" {
			return nil, fmt.Errorf("%w: todo text cannot be empty", ErrValidation)
		}
		if text != todo.Text {
			todo.Text = text
			needsSave = true
		}
	}
	if input.Complete != nil && *input.Complete != todo.Complete {
		todo.Complete = *input.Complete
		if *input.Complete {
			now := time.Now()
			todo.DoneAt = &now
		} else {
			todo.DoneAt = nil
		}
		needsSave = true
	}

	if needsSave {
		if err := s.todos.Update(todo); err != nil {
			return nil, fmt.Errorf("failed to update todo: %w", err)
		}
	}
	return todo, nil
}

// CompleteTodo marks the item done. Repeating it on an already-complete
// item changes nothing.
func (s *todoService) CompleteTodo(actorID uint, todoID uint) (*models.Todo, error) {
	todo, err := s.fetchOwned(actorID, todoID)
	if err != nil {
		return nil, err
	}

	if todo.Complete {
		return todo, nil
	}

	now := time.Now()
	todo.Complete = true
	todo.DoneAt = &now
	if err := s.todos.Update(todo); err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}
	return todo, nil
}

// RemoveTodo deletes the item.
func (s *todoService) RemoveTodo(actorID uint, todoID uint) error {
	todo, err := s.fetchOwned(actorID, todoID)
	if err != nil {
		return err
	}
	if err := s.todos.Delete(todo); err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	return nil
}

// ListForActor returns only rows owned by the actor; both buckets and their
// counts come from the same owner filter.
func (s *todoService) ListForActor(actorID uint) (*TodoListing, error) {
	todos, _, err := s.todos.FindByOwner(actorID)
	if err != nil {
		return nil, fmt.Errorf("database error retrieving todos: %w", err)
	}

	listing := &TodoListing{
		Incomplete: []models.Todo{},
		Complete:   []models.Todo{},
	}
	for _, t := range todos {
		if t.Complete {
			listing.Complete = append(listing.Complete, t)
		} else {
			listing.Incomplete = append(listing.Incomplete, t)
		}
	}
	listing.IncompleteCount = int64(len(listing.Incomplete))
	listing.CompleteCount = int64(len(listing.Complete))
	return listing, nil
}

// SearchTodos scopes non-admin actors to their own rows; admins search the
// whole table.
func (s *todoService) SearchTodos(actorID uint, q string, page int, pageSize int) ([]models.Todo, int64, error) {
	scope := actorID
	if isAdmin, _ := s.authz.HasRole(actorID, AdminRole); isAdmin {
		scope = 0 // unscoped
	}

	todos, total, err := s.todos.Search(scope, q, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("database error searching todos: %w", err)
	}
	return todos, total, nil
}
