package app_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"ingreedio/internal/app"
	"ingreedio/internal/config"
	"ingreedio/internal/database"
	"ingreedio/internal/services"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret: "app_test_jwt_secret_that_is_long_enough",
		Lockout:   services.DefaultLockoutPolicy(),
		Password:  services.DefaultPasswordPolicy(),
	}
}

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Setup(database.Config{
		Driver: database.DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String()),
	})
	require.NoError(t, err)
	return db
}

func TestNew_RejectsWeakSecret(t *testing.T) {
	log, _ := test.NewNullLogger()
	cfg := testConfig()
	cfg.JWTSecret = "short"

	_, err := app.New(cfg, openDB(t), log, nil)
	assert.ErrorIs(t, err, services.ErrWeakSigningKey)
}

func TestHealth(t *testing.T) {
	log, _ := test.NewNullLogger()
	server, err := app.New(testConfig(), openDB(t), log, nil)
	require.NoError(t, err)

	resp, err := server.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "connected", body["database"])
	assert.Equal(t, "disabled", body["events"])
}

func TestUnknownRouteIsJSON(t *testing.T) {
	log, _ := test.NewNullLogger()
	server, err := app.New(testConfig(), openDB(t), log, nil)
	require.NoError(t, err)

	resp, err := server.Test(httptest.NewRequest(http.MethodGet, "/api/v1/nowhere", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
}
