package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"medley/internal/auth"
	"medley/internal/cache"
	"medley/internal/config"
	"medley/internal/database"
	"medley/internal/middleware"
	"medley/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret-key"

var testDBSeq atomic.Int64

// testServer is a full API over a per-test in-memory sqlite database, with
// caching disabled and rate limiting bypassed.
type testServer struct {
	t   *testing.T
	app *fiber.App
	srv *Server
	dbh *database.Handle
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	dsn := fmt.Sprintf("file:srvtest%d?mode=memory&cache=shared&_foreign_keys=on", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedCategories(db))

	cfg := &config.Config{
		JWTSecret: testSecret,
		Env:       "test",
	}
	dbh := database.Wrap(db)
	srv := NewServerWith(cfg, dbh, cache.Wrap(nil))

	app := fiber.New()
	srv.SetupMiddleware(app)
	srv.SetupRoutes(app)

	return &testServer{t: t, app: app, srv: srv, dbh: dbh}
}

func (ts *testServer) db() *gorm.DB {
	db, err := ts.dbh.Get()
	require.NoError(ts.t, err)
	return db
}

// request runs one request through the app. body may be nil; token, when
// non-empty, is sent as the session cookie.
func (ts *testServer) request(method, path string, body any, token string) *http.Response {
	ts.t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Cookie", middleware.SessionCookie+"="+token)
	}

	resp, err := ts.app.Test(req, -1)
	require.NoError(ts.t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	return nil
}

// register creates an account through the API and returns its session token.
func (ts *testServer) register(username, email, password string) string {
	ts.t.Helper()
	resp := ts.request("POST", "/api/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, "")
	require.Equal(ts.t, fiber.StatusCreated, resp.StatusCode)

	cookie := sessionCookie(ts.t, resp)
	require.NotNil(ts.t, cookie)
	return cookie.Value
}

// createAdmin inserts an admin row directly and mints its session token.
func (ts *testServer) createAdmin(username string) (*models.User, string) {
	ts.t.Helper()
	hash, err := auth.HashPassword("admin-password")
	require.NoError(ts.t, err)
	admin := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}
	require.NoError(ts.t, ts.db().Create(admin).Error)

	token, err := auth.IssueToken(testSecret, admin)
	require.NoError(ts.t, err)
	return admin, token
}

// createMedia inserts a media row directly, bypassing the admin endpoint.
func (ts *testServer) createMedia(userID uint, url string, approved bool) *models.Media {
	ts.t.Helper()
	media := &models.Media{
		UserID:     userID,
		Title:      "title for " + url,
		URL:        url,
		Type:       models.MediaTypeImage,
		IsApproved: approved,
	}
	require.NoError(ts.t, ts.db().Create(media).Error)
	return media
}

// createLegacyUser inserts a user row with a plaintext credential, the shape
// the previous system left behind.
func (ts *testServer) createLegacyUser(username, email, password string) *models.User {
	ts.t.Helper()
	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: password,
		Role:         models.RoleUser,
	}
	require.NoError(ts.t, ts.db().Create(user).Error)
	return user
}

// userByEmail reads an account row directly for assertions on stored state.
func (ts *testServer) userByEmail(email string) *models.User {
	ts.t.Helper()
	var user models.User
	require.NoError(ts.t, ts.db().Where("email = ?", email).First(&user).Error)
	return &user
}
