package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"ingreedio/internal/app"
	"ingreedio/internal/config"
	"ingreedio/internal/database"
	"ingreedio/internal/dto"
	"ingreedio/internal/models"
	"ingreedio/internal/repositories"
	"ingreedio/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testJWTSecret = "handlers_test_jwt_secret_long_enough_01"
	testPassword  = "Passw0rd!"
)

// setupApp builds the full application on a private in-memory SQLite database.
func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := database.Setup(database.Config{
		Driver: database.DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String()),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	cfg := &config.Config{
		JWTSecret: testJWTSecret,
		Lockout:   services.DefaultLockoutPolicy(),
		Password:  services.DefaultPasswordPolicy(),
	}
	log, _ := test.NewNullLogger()

	server, err := app.New(cfg, db, log, nil)
	require.NoError(t, err)
	return server, db
}

func request(t *testing.T, server *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := server.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func credentials(email, password string) map[string]string {
	return map[string]string{"email": email, "password": password}
}

// registerAndLogin creates an account, grants it roles and returns a token
// carrying those roles.
func registerAndLogin(t *testing.T, server *fiber.App, db *gorm.DB, email string, roles ...string) (string, string) {
	t.Helper()

	resp := request(t, server, http.MethodPost, "/api/v1/auth/register", "", credentials(email, testPassword))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	repo := repositories.NewGORMUserRepository(db)
	user, err := repo.GetByEmail(context.Background(), email)
	require.NoError(t, err)
	for _, role := range roles {
		require.NoError(t, repo.AssignRole(context.Background(), user.ID, role))
	}

	resp = request(t, server, http.MethodPost, "/api/v1/auth/login", "", credentials(email, testPassword))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result services.AuthResult
	decode(t, resp, &result)
	require.True(t, result.Success)
	require.NotNil(t, result.Token)
	return *result.Token, user.ID
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price float64) *models.Product {
	t.Helper()
	product := &models.Product{Name: name, Description: "For testing purposes", Price: price}
	require.NoError(t, repositories.NewGORMProductRepository(db).Create(context.Background(), product))
	return product
}

func TestAuthRegisterAndLogin(t *testing.T) {
	server, _ := setupApp(t)

	// Registration
	resp := request(t, server, http.MethodPost, "/api/v1/auth/register", "", credentials("test@example.com", testPassword))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var result services.AuthResult
	decode(t, resp, &result)
	assert.True(t, result.Success)
	require.NotNil(t, result.Token)
	assert.NotEmpty(t, *result.Token)

	// Duplicate registration
	resp = request(t, server, http.MethodPost, "/api/v1/auth/register", "", credentials("test@example.com", testPassword))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	result = services.AuthResult{}
	decode(t, resp, &result)
	assert.False(t, result.Success)
	assert.Equal(t, []string{services.MsgEmailExists}, result.Errors)
	assert.Nil(t, result.Token)

	// Wrong password
	resp = request(t, server, http.MethodPost, "/api/v1/auth/login", "", credentials("test@example.com", "Wr0ng!pass"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	result = services.AuthResult{}
	decode(t, resp, &result)
	assert.Equal(t, []string{services.MsgPasswordInvalid}, result.Errors)

	// Unknown email
	resp = request(t, server, http.MethodPost, "/api/v1/auth/login", "", credentials("nobody@example.com", testPassword))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	result = services.AuthResult{}
	decode(t, resp, &result)
	assert.Equal(t, []string{services.MsgUnknownEmail}, result.Errors)

	// Login
	resp = request(t, server, http.MethodPost, "/api/v1/auth/login", "", credentials("test@example.com", testPassword))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	result = services.AuthResult{}
	decode(t, resp, &result)
	assert.True(t, result.Success)
	require.NotNil(t, result.Token)

	// The token identifies the caller
	resp = request(t, server, http.MethodGet, "/api/v1/users/me", *result.Token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var me dto.UserDTO
	decode(t, resp, &me)
	assert.Equal(t, "test@example.com", me.Email)
}

func TestAuthRegister_WeakPasswordIsServerError(t *testing.T) {
	server, _ := setupApp(t)

	resp := request(t, server, http.MethodPost, "/api/v1/auth/register", "", credentials("weak@example.com", "password"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var result services.AuthResult
	decode(t, resp, &result)
	assert.False(t, result.Success)
	assert.Equal(t, []string{services.MsgServerError}, result.Errors)
}

func TestAuthRegister_InvalidBody(t *testing.T) {
	server, _ := setupApp(t)

	resp := request(t, server, http.MethodPost, "/api/v1/auth/register", "", map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body map[string]interface{}
	decode(t, resp, &body)
	assert.Equal(t, "Validation failed", body["message"])
}

func TestAuthLogin_BlockedUserIsDeactivated(t *testing.T) {
	server, db := setupApp(t)
	adminToken, _ := registerAndLogin(t, server, db, "admin@example.com", models.RoleAdmin)
	_, userID := registerAndLogin(t, server, db, "user@example.com")

	resp := request(t, server, http.MethodPatch, "/api/v1/users/"+userID+"/block", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = request(t, server, http.MethodPost, "/api/v1/auth/login", "", credentials("user@example.com", testPassword))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var result services.AuthResult
	decode(t, resp, &result)
	assert.Equal(t, []string{services.MsgUserDeactivated}, result.Errors)

	resp = request(t, server, http.MethodPatch, "/api/v1/users/"+userID+"/unblock", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = request(t, server, http.MethodPost, "/api/v1/auth/login", "", credentials("user@example.com", testPassword))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestProductEndpointsWithoutAuth(t *testing.T) {
	server, db := setupApp(t)
	seedProduct(t, db, "Test Shampoo", 10)
	seedProduct(t, db, "Test Conditioner", 12)

	// Listing is public
	resp := request(t, server, http.MethodGet, "/api/v1/products", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var page models.Page[dto.ProductDTO]
	decode(t, resp, &page)
	assert.EqualValues(t, 2, page.TotalCount)
	for _, p := range page.Contents {
		assert.False(t, p.Favourite)
	}

	// Writes are not
	resp = request(t, server, http.MethodPost, "/api/v1/products", "", map[string]interface{}{"name": "Unauthorized Product", "price": 100.0})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = request(t, server, http.MethodPost, "/api/v1/products/any/favourite", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = request(t, server, http.MethodGet, "/api/v1/users/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestProductCatalogueRequiresAdmin(t *testing.T) {
	server, db := setupApp(t)
	userToken, _ := registerAndLogin(t, server, db, "user@example.com")
	adminToken, _ := registerAndLogin(t, server, db, "admin@example.com", models.RoleAdmin)

	newProduct := map[string]interface{}{
		"name":        "Face Cream",
		"description": "Fragrance free",
		"price":       19.99,
	}

	resp := request(t, server, http.MethodPost, "/api/v1/products", userToken, newProduct)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// Create
	resp = request(t, server, http.MethodPost, "/api/v1/products", adminToken, newProduct)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var created dto.ProductDTO
	decode(t, resp, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Face Cream", created.Name)

	// Update
	newProduct["name"] = "Face Cream Pro"
	resp = request(t, server, http.MethodPut, "/api/v1/products/"+created.ID, adminToken, newProduct)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var updated dto.ProductDTO
	decode(t, resp, &updated)
	assert.Equal(t, "Face Cream Pro", updated.Name)

	// Invalid body
	resp = request(t, server, http.MethodPut, "/api/v1/products/"+created.ID, adminToken, map[string]interface{}{"name": "X", "price": -1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Delete
	resp = request(t, server, http.MethodDelete, "/api/v1/products/"+created.ID, adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var deleteResp map[string]string
	decode(t, resp, &deleteResp)
	assert.Contains(t, deleteResp["message"], "deleted successfully")

	// Verify deletion
	resp = request(t, server, http.MethodGet, "/api/v1/products/"+created.ID, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var notFound map[string]string
	decode(t, resp, &notFound)
	assert.Equal(t, "Product not found", notFound["message"])
}

func TestProductList_PagingAndSorting(t *testing.T) {
	server, db := setupApp(t)
	for i := 0; i < 5; i++ {
		seedProduct(t, db, fmt.Sprintf("Product %d", i), float64(10+i))
	}

	resp := request(t, server, http.MethodGet, "/api/v1/products?pageIndex=1&pageSize=2&sortBy=price&desc=true", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var page models.Page[dto.ProductDTO]
	decode(t, resp, &page)
	assert.EqualValues(t, 5, page.TotalCount)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Contents, 2)
	assert.Equal(t, 12.0, page.Contents[0].Price)

	resp = request(t, server, http.MethodGet, "/api/v1/products?sortBy=colour", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = request(t, server, http.MethodGet, "/api/v1/products?pageIndex=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestFavourites(t *testing.T) {
	server, db := setupApp(t)
	token, _ := registerAndLogin(t, server, db, "fan@example.com")
	product := seedProduct(t, db, "Lip Balm", 4)
	path := "/api/v1/products/" + product.ID + "/favourite"

	resp := request(t, server, http.MethodPost, path, token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	// Adding twice is idempotent
	resp = request(t, server, http.MethodPost, path, token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = request(t, server, http.MethodGet, "/api/v1/products/"+product.ID, token, nil)
	var fetched dto.ProductDTO
	decode(t, resp, &fetched)
	assert.True(t, fetched.Favourite)

	resp = request(t, server, http.MethodGet, "/api/v1/users/me/favourites", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var favourites []dto.ProductDTO
	decode(t, resp, &favourites)
	require.Len(t, favourites, 1)
	assert.Equal(t, product.ID, favourites[0].ID)

	resp = request(t, server, http.MethodPost, "/api/v1/products/missing/favourite", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = request(t, server, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = request(t, server, http.MethodGet, "/api/v1/users/me/favourites", token, nil)
	favourites = nil
	decode(t, resp, &favourites)
	assert.Empty(t, favourites)
}

func TestReviewLifecycle(t *testing.T) {
	server, db := setupApp(t)
	authorToken, authorID := registerAndLogin(t, server, db, "author@example.com")
	otherToken, _ := registerAndLogin(t, server, db, "other@example.com")
	moderatorToken, _ := registerAndLogin(t, server, db, "mod@example.com", models.RoleModerator)
	product := seedProduct(t, db, "Sunscreen", 15)

	// Rating out of range
	resp := request(t, server, http.MethodPost, "/api/v1/products/"+product.ID+"/reviews", authorToken, map[string]interface{}{"text": "Too good", "rating": 6})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var invalid struct {
		Errors map[string]string `json:"errors"`
	}
	decode(t, resp, &invalid)
	assert.Equal(t, "the rating should be from [1;5]", invalid.Errors["rating"])

	// Create
	resp = request(t, server, http.MethodPost, "/api/v1/products/"+product.ID+"/reviews", authorToken, map[string]interface{}{"text": "Works well", "rating": 4})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var review dto.ReviewDTO
	decode(t, resp, &review)
	assert.Equal(t, authorID, review.UserID)
	assert.Equal(t, 0, review.ReportsCount)

	// Product reviews are public
	resp = request(t, server, http.MethodGet, "/api/v1/products/"+product.ID+"/reviews", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var page models.Page[dto.ReviewDTO]
	decode(t, resp, &page)
	assert.EqualValues(t, 1, page.TotalCount)

	// Report
	resp = request(t, server, http.MethodPatch, "/api/v1/reviews/"+review.ID+"/report", otherToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &review)
	assert.Equal(t, 1, review.ReportsCount)

	resp = request(t, server, http.MethodPatch, "/api/v1/reviews/missing/report", otherToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// Moderation is restricted
	resp = request(t, server, http.MethodGet, "/api/v1/reviews", authorToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = request(t, server, http.MethodGet, "/api/v1/reviews?userId="+authorID, moderatorToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var reviews []dto.ReviewDTO
	decode(t, resp, &reviews)
	assert.Len(t, reviews, 1)

	resp = request(t, server, http.MethodPatch, "/api/v1/reviews/"+review.ID+"/reset", moderatorToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &review)
	assert.Equal(t, 0, review.ReportsCount)

	// Only the author may edit or delete
	resp = request(t, server, http.MethodPut, "/api/v1/reviews/"+review.ID, otherToken, map[string]interface{}{"text": "Hijacked", "rating": 1})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = request(t, server, http.MethodPut, "/api/v1/reviews/"+review.ID, authorToken, map[string]interface{}{"text": "Still good", "rating": 5})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &review)
	assert.Equal(t, "Still good", review.Text)
	assert.Equal(t, 5.0, review.Rating)

	resp = request(t, server, http.MethodPatch, "/api/v1/reviews/"+review.ID+"/rate", otherToken, map[string]interface{}{"rating": 0.5})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = request(t, server, http.MethodDelete, "/api/v1/reviews/"+review.ID, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = request(t, server, http.MethodDelete, "/api/v1/reviews/"+review.ID, authorToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = request(t, server, http.MethodGet, "/api/v1/reviews/product/"+product.ID, "", nil)
	reviews = nil
	decode(t, resp, &reviews)
	assert.Empty(t, reviews)
}

func TestPreferences(t *testing.T) {
	server, db := setupApp(t)
	token, userID := registerAndLogin(t, server, db, "prefs@example.com")

	resp := request(t, server, http.MethodPost, "/api/v1/users/me/preferences", token, map[string]string{"name": "Vegan"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var preference dto.PreferenceDTO
	decode(t, resp, &preference)
	assert.Equal(t, "Vegan", preference.Name)
	assert.Equal(t, userID, preference.UserID)

	resp = request(t, server, http.MethodGet, "/api/v1/users/me/preferences", token, nil)
	var preferences []dto.PreferenceDTO
	decode(t, resp, &preferences)
	assert.Len(t, preferences, 1)

	// The profile carries the same preferences.
	resp = request(t, server, http.MethodGet, "/api/v1/users/me", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var me dto.UserDTO
	decode(t, resp, &me)
	require.Len(t, me.Preferences, 1)
	assert.Equal(t, "Vegan", me.Preferences[0].Name)

	resp = request(t, server, http.MethodPost, "/api/v1/users/me/preferences", token, map[string]string{"name": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = request(t, server, http.MethodDelete, "/api/v1/users/me/preferences/"+preference.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = request(t, server, http.MethodDelete, "/api/v1/users/me/preferences/"+preference.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAssignRole(t *testing.T) {
	server, db := setupApp(t)
	adminToken, _ := registerAndLogin(t, server, db, "admin@example.com", models.RoleAdmin)
	userToken, userID := registerAndLogin(t, server, db, "user@example.com")

	resp := request(t, server, http.MethodPost, "/api/v1/users/"+userID+"/roles", userToken, map[string]string{"role": models.RoleAdmin})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = request(t, server, http.MethodPost, "/api/v1/users/"+userID+"/roles", adminToken, map[string]string{"role": "Superuser"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = request(t, server, http.MethodPost, "/api/v1/users/"+userID+"/roles", adminToken, map[string]string{"role": models.RoleModerator})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = request(t, server, http.MethodPost, "/api/v1/users/missing/roles", adminToken, map[string]string{"role": models.RoleModerator})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = request(t, server, http.MethodPost, "/api/v1/auth/login", "", credentials("user@example.com", testPassword))
	var result services.AuthResult
	decode(t, resp, &result)
	assert.Equal(t, []string{models.RoleModerator}, result.Roles)
}
