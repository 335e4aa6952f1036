package database

import (
	"fmt"
	"testing"
	"todolist-restful/config"
	"todolist-restful/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{
		DatabaseDriver:    "sqlite",
		DatabaseURL:       fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		BcryptCost:        bcrypt.MinCost,
		SeedAdminPassword: "adminpassword",
	}
}

func TestInitDBSeedsRolesAndAdmin(t *testing.T) {
	cfg := testConfig()
	db, err := InitDB(cfg)
	require.NoError(t, err)

	var roles []models.Role
	require.NoError(t, db.Order("name").Find(&roles).Error)
	require.Len(t, roles, 2)
	assert.Equal(t, "admin", roles[0].Name)
	assert.Equal(t, "user", roles[1].Name)

	var admin models.User
	require.NoError(t, db.Preload("Roles").Where("name = ?", "admin").First(&admin).Error)
	assert.True(t, admin.Active)
	// The seeded password is stored hashed
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte("adminpassword")))
	require.Len(t, admin.Roles, 1)
	assert.Equal(t, "admin", admin.Roles[0].Name)
}

func TestSeedInitialDataIsIdempotent(t *testing.T) {
	cfg := testConfig()
	db, err := InitDB(cfg)
	require.NoError(t, err)

	// Seeding again must not duplicate anything
	require.NoError(t, SeedInitialData(db, cfg))

	var roleCount, userCount int64
	require.NoError(t, db.Model(&models.Role{}).Count(&roleCount).Error)
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	assert.Equal(t, int64(2), roleCount)
	assert.Equal(t, int64(1), userCount)
}

func TestInitDBRejectsUnknownDriver(t *testing.T) {
	cfg := testConfig()
	cfg.DatabaseDriver = "oracle"
	_, err := InitDB(cfg)
	assert.ErrorContains(t, err, "unsupported database driver")
}
