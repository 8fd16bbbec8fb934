package authController_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"elearn/config"
	"elearn/database"
	"elearn/models"
	authRoutes "elearn/routers/authRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupAuthTest(t *testing.T) *fiber.App {
	config.AppConfig = &config.Config{
		JWTKey:            "testsecret",
		SaltRound:         4,
		AccessTokenHours:  1,
		RefreshTokenHours: 24,
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	database.RunMigrations(db)
	database.Database = database.DbInstance{Db: db}

	app := fiber.New()
	authRoutes.SetupAuthRoutes(app)
	return app
}

func postJSON(t *testing.T, app *fiber.App, url string, body interface{}) (int, map[string]interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		t.Fatalf("failed to encode body: %v", err)
	}

	req := httptest.NewRequest("POST", url, &buf)
	req.Header.Set("Content-Type", "application/json")

	res, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	var parsed map[string]interface{}
	json.NewDecoder(res.Body).Decode(&parsed)
	return res.StatusCode, parsed
}

func TestSignupAndLogin(t *testing.T) {
	app := setupAuthTest(t)

	status, body := postJSON(t, app, "/auth/signup", fiber.Map{
		"name":     "Ada Lovelace",
		"email":    "ada@example.com",
		"password": "supersecret",
		"role":     "teacher",
	})
	assert.Equal(t, fiber.StatusCreated, status)

	user := body["data"].(map[string]interface{})
	// Role is normalized and the hash never leaves the server
	assert.Equal(t, string(models.RoleTeacher), user["role"])
	assert.NotContains(t, user, "password")

	status, body = postJSON(t, app, "/auth/login", fiber.Map{
		"email":    "ada@example.com",
		"password": "supersecret",
	})
	assert.Equal(t, fiber.StatusOK, status)

	data := body["data"].(map[string]interface{})
	assert.NotEmpty(t, data["access_token"])
	assert.NotEmpty(t, data["refresh_token"])

	// Refresh yields a fresh access token
	status, body = postJSON(t, app, "/auth/refresh", fiber.Map{
		"refresh_token": data["refresh_token"],
	})
	assert.Equal(t, fiber.StatusOK, status)
	data = body["data"].(map[string]interface{})
	assert.NotEmpty(t, data["access_token"])
}

func TestSignupDuplicateEmailConflicts(t *testing.T) {
	app := setupAuthTest(t)

	payload := fiber.Map{
		"name":     "Alan Turing",
		"email":    "alan@example.com",
		"password": "supersecret",
	}

	status, _ := postJSON(t, app, "/auth/signup", payload)
	assert.Equal(t, fiber.StatusCreated, status)

	status, _ = postJSON(t, app, "/auth/signup", payload)
	assert.Equal(t, fiber.StatusConflict, status)
}

func TestSignupRejectsUnknownRole(t *testing.T) {
	app := setupAuthTest(t)

	status, _ := postJSON(t, app, "/auth/signup", fiber.Map{
		"name":     "Grace Hopper",
		"email":    "grace@example.com",
		"password": "supersecret",
		"role":     "superuser",
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	// Admin accounts cannot be self-assigned either
	status, _ = postJSON(t, app, "/auth/signup", fiber.Map{
		"name":     "Grace Hopper",
		"email":    "grace@example.com",
		"password": "supersecret",
		"role":     "admin",
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
}

func TestLoginWrongPassword(t *testing.T) {
	app := setupAuthTest(t)

	postJSON(t, app, "/auth/signup", fiber.Map{
		"name":     "Edsger Dijkstra",
		"email":    "edsger@example.com",
		"password": "supersecret",
	})

	status, _ := postJSON(t, app, "/auth/login", fiber.Map{
		"email":    "edsger@example.com",
		"password": "wrongpassword",
	})
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestAccessTokenRejectedAsRefreshToken(t *testing.T) {
	app := setupAuthTest(t)

	postJSON(t, app, "/auth/signup", fiber.Map{
		"name":     "Barbara Liskov",
		"email":    "barbara@example.com",
		"password": "supersecret",
	})
	_, body := postJSON(t, app, "/auth/login", fiber.Map{
		"email":    "barbara@example.com",
		"password": "supersecret",
	})
	data := body["data"].(map[string]interface{})

	status, _ := postJSON(t, app, "/auth/refresh", fiber.Map{
		"refresh_token": data["access_token"],
	})
	assert.Equal(t, fiber.StatusUnauthorized, status)
}
