package repositories

import (
	"fmt"
	"testing"
	"todolist-restful/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB initializes an isolated in-memory SQLite database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Role{}, &models.Todo{}))
	return db
}

func createUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := models.User{Name: name, Password: "x", Active: true}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func TestTodoCreate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTodoRepository(db)
	alice := createUser(t, db, "alice")

	todo := models.Todo{Text: "buy milk", UserID: alice.ID}
	require.NoError(t, repo.Create(&todo))
	assert.NotZero(t, todo.ID)

	var stored models.Todo
	require.NoError(t, db.First(&stored, todo.ID).Error)
	assert.Equal(t, "buy milk", stored.Text)
	assert.False(t, stored.Complete)
	assert.Equal(t, alice.ID, stored.UserID)
	assert.Nil(t, stored.DoneAt)
}

func TestTodoFindByIDNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTodoRepository(db)

	_, err := repo.FindByID(42)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestTodoFindByOwnerScoping(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTodoRepository(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(&models.Todo{Text: fmt.Sprintf("alice %d", i), UserID: alice.ID}))
	}
	require.NoError(t, repo.Create(&models.Todo{Text: "bob 0", UserID: bob.ID}))

	todos, total, err := repo.FindByOwner(alice.ID)
	require.NoError(t, err)
	// The count must match the filtered subset, not the global table size
	assert.Equal(t, int64(3), total)
	assert.Len(t, todos, 3)
	for _, todo := range todos {
		assert.Equal(t, alice.ID, todo.UserID)
	}

	todos, total, err = repo.FindByOwner(bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, todos, 1)
}

func TestTodoCountByOwner(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTodoRepository(db)
	alice := createUser(t, db, "alice")

	require.NoError(t, repo.Create(&models.Todo{Text: "open", UserID: alice.ID}))
	require.NoError(t, repo.Create(&models.Todo{Text: "done", Complete: true, UserID: alice.ID}))

	open, err := repo.CountByOwner(alice.ID, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), open)

	done, err := repo.CountByOwner(alice.ID, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), done)
}

func TestTodoSearch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTodoRepository(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	require.NoError(t, repo.Create(&models.Todo{Text: "buy milk", UserID: alice.ID}))
	require.NoError(t, repo.Create(&models.Todo{Text: "buy bread", UserID: alice.ID}))
	require.NoError(t, repo.Create(&models.Todo{Text: "buy cheese", UserID: bob.ID}))

	// Owner-scoped search: count applies the same filter as the fetch
	todos, total, err := repo.Search(alice.ID, "buy", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, todos, 2)

	// Unscoped search (ownerID 0) sees all owners
	todos, total, err = repo.Search(0, "buy", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, todos, 3)

	// Pagination still reports the full filtered total
	todos, total, err = repo.Search(0, "buy", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, todos, 2)

	// No matches
	todos, total, err = repo.Search(alice.ID, "cheese", 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, todos)
}

func TestUserSearch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	users := []models.User{
		{Name: "alice", Email: "alice@example.com", Password: "x", Active: true},
		{Name: "bob", Email: "bob@example.com", Password: "x", Active: true},
		{Name: "carol", Email: "carol@other.org", Password: "x", Active: true},
	}
	for i := range users {
		require.NoError(t, repo.Create(&users[i]))
	}

	// Name match
	found, total, err := repo.Search("ali", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, found, 1)
	assert.Equal(t, "alice", found[0].Name)

	// Email match
	found, total, err = repo.Search("example.com", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, found, 2)

	// Empty query lists all
	_, total, err = repo.Search("", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

func TestUserRoleMembership(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	roles := NewRoleRepository(db)

	admin := models.Role{Name: "admin"}
	require.NoError(t, roles.Create(&admin))
	alice := createUser(t, db, "alice")

	require.NoError(t, users.AddRole(alice, &admin))

	loaded, err := users.FindByID(alice.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Roles, 1)
	assert.Equal(t, "admin", loaded.Roles[0].Name)

	require.NoError(t, users.RemoveRole(loaded, &admin))
	loaded, err = users.FindByID(alice.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.Roles)
}
