package controllers

import (
	"time"
	"todolist-restful/models"
)

// UserResponse defines the response structure of user information
type UserResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Active    bool      `json:"active"`
	Roles     []string  `json:"roles,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TodoResponse struct {
	ID        uint       `json:"id"`
	Text      string     `json:"text"`
	Complete  bool       `json:"complete"`
	UserID    uint       `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	DoneAt    *time.Time `json:"done_at,omitempty"`
}

type RoleResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// PaginatedResponse wraps an admin list page. Total is counted with the
// same filter as the listed items. Fields echoes the static field
// configuration for the entity so the UI never reflects over the model.
type PaginatedResponse struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Fields   []string    `json:"fields"`
}

func mapModelToUserResponse(user *models.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}
	roles := make([]string, 0, len(user.Roles))
	for _, r := range user.Roles {
		roles = append(roles, r.Name)
	}
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Active:    user.Active,
		Roles:     roles,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func mapModelToTodoResponse(todo *models.Todo) TodoResponse {
	if todo == nil {
		return TodoResponse{}
	}
	return TodoResponse{
		ID:        todo.ID,
		Text:      todo.Text,
		Complete:  todo.Complete,
		UserID:    todo.UserID,
		CreatedAt: todo.CreatedAt,
		DoneAt:    todo.DoneAt,
	}
}

func mapModelToRoleResponse(role *models.Role) RoleResponse {
	if role == nil {
		return RoleResponse{}
	}
	return RoleResponse{
		ID:          role.ID,
		Name:        role.Name,
		Description: role.Description,
	}
}
