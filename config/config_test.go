package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitConfigDefaults(t *testing.T) {
	InitConfig()

	assert.Equal(t, 8080, AppConfig.HTTPPort)
	assert.Equal(t, "sqlite", AppConfig.DatabaseDriver)
	assert.Equal(t, "todo.db", AppConfig.DatabaseURL)
	assert.Equal(t, 24, AppConfig.SessionHours)
	assert.True(t, AppConfig.RegistrationOpen)
	assert.False(t, AppConfig.RegistrationConfirm)
	assert.Equal(t, "/todos", AppConfig.PostLoginRedirect)
	assert.Equal(t, "cerulean", AppConfig.AdminTheme)
}

func TestInitConfigEnvOverride(t *testing.T) {
	t.Setenv("TODO_HTTP_PORT", "9090")
	t.Setenv("TODO_REGISTRATION_OPEN", "false")

	InitConfig()

	assert.Equal(t, 9090, AppConfig.HTTPPort)
	assert.False(t, AppConfig.RegistrationOpen)
}
