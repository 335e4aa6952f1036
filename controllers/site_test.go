package controllers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
	"todolist-restful/auth"
	"todolist-restful/controllers"
	"todolist-restful/models"
	"todolist-restful/repositories"
	"todolist-restful/services"

	restful "github.com/emicklei/go-restful/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testApp wires the full HTTP surface against an in-memory database, the
// same way main does.
type testApp struct {
	db        *gorm.DB
	auth      *auth.Authenticator
	container *restful.Container
}

func newTestApp(t *testing.T, registrationOpen bool) *testApp {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Role{}, &models.Todo{}))

	for _, name := range []string{"admin", "user"} {
		require.NoError(t, db.Create(&models.Role{Name: name}).Error)
	}

	authenticator := auth.NewAuthenticator(db, []byte("test-signing-key"), time.Hour, bcrypt.MinCost, "/todos")

	userRepo := repositories.NewUserRepository(db)
	roleRepo := repositories.NewRoleRepository(db)
	todoRepo := repositories.NewTodoRepository(db)

	userService := services.NewUserService(userRepo, roleRepo, todoRepo, authenticator, authenticator, registrationOpen)
	roleService := services.NewRoleService(roleRepo, authenticator)
	todoService := services.NewTodoService(todoRepo, userRepo, authenticator)

	container := restful.NewContainer()

	siteWs := new(restful.WebService)
	controllers.NewSiteController(authenticator, todoService, userService, "/todos").RegisterRoutes(siteWs)
	container.Add(siteWs)

	adminWs := new(restful.WebService)
	controllers.NewAdminController(authenticator, userService, roleService, todoService, "cerulean").RegisterRoutes(adminWs)
	container.Add(adminWs)

	return &testApp{db: db, auth: authenticator, container: container}
}

func (app *testApp) createUser(t *testing.T, name string, roleNames ...string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{Name: name, Password: string(hash), Active: true}
	require.NoError(t, app.db.Create(&user).Error)
	for _, rn := range roleNames {
		var role models.Role
		require.NoError(t, app.db.Where("name = ?", rn).First(&role).Error)
		require.NoError(t, app.db.Model(&user).Association("Roles").Append(&role))
	}
	return &user
}

func (app *testApp) token(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := app.auth.GenerateToken(user)
	require.NoError(t, err)
	return token
}

// jsonReq performs a JSON request with an optional bearer token.
func (app *testApp) jsonReq(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	app.container.ServeHTTP(w, req)
	return w
}

// browserAccept is what real browsers send; the trailing */* keeps content
// negotiation happy while wantsHTML still detects the text/html preference.
const browserAccept = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

// formReq performs a browser-style form post carrying the session cookie.
func (app *testApp) formReq(path, token string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", browserAccept)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: token})
	}
	w := httptest.NewRecorder()
	app.container.ServeHTTP(w, req)
	return w
}

func decodeListing(t *testing.T, w *httptest.ResponseRecorder) *services.TodoListing {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	listing := new(services.TodoListing)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), listing))
	return listing
}

func TestRootRedirect(t *testing.T) {
	app := newTestApp(t, true)

	t.Run("Anonymous goes to login", func(t *testing.T) {
		w := app.jsonReq(http.MethodGet, "/", "", "")
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})

	t.Run("Authenticated goes to admin", func(t *testing.T) {
		alice := app.createUser(t, "alice")
		w := app.jsonReq(http.MethodGet, "/", app.token(t, alice), "")
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/admin", w.Header().Get("Location"))
	})
}

func TestSessionState(t *testing.T) {
	app := newTestApp(t, true)
	alice := app.createUser(t, "alice")

	w := app.jsonReq(http.MethodGet, "/session", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var state auth.SessionState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.False(t, state.Authenticated, "login link is shown only without a session")

	w = app.jsonReq(http.MethodGet, "/session", app.token(t, alice), "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.True(t, state.Authenticated)
	assert.Equal(t, "alice", state.Name)
}

// TestTodoLifecycle runs the create/list/complete/remove scenario end to
// end for alice, checking bob never sees her rows.
func TestTodoLifecycle(t *testing.T) {
	app := newTestApp(t, true)

	// Register alice through the public surface
	w := app.jsonReq(http.MethodPost, "/new", "", `{"name":"alice","email":"alice@example.com","password":"password"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Log in and keep the session token
	w = app.jsonReq(http.MethodPost, "/login", "", `{"name":"alice","password":"password"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var loginResp auth.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loginResp))
	require.NotEmpty(t, loginResp.Token)
	aliceToken := loginResp.Token

	bob := app.createUser(t, "bob")
	bobToken := app.token(t, bob)

	// Create "buy milk" through the classic form
	w = app.formReq("/add", aliceToken, url.Values{"todoitem": {"buy milk"}})
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	assert.Equal(t, "/todos", w.Header().Get("Location"))

	// Alice sees one incomplete item, bob sees none
	listing := decodeListing(t, app.jsonReq(http.MethodGet, "/todos", aliceToken, ""))
	require.Equal(t, int64(1), listing.IncompleteCount)
	assert.Equal(t, "buy milk", listing.Incomplete[0].Text)
	assert.Zero(t, listing.CompleteCount)

	bobListing := decodeListing(t, app.jsonReq(http.MethodGet, "/todos", bobToken, ""))
	assert.Zero(t, bobListing.IncompleteCount)
	assert.Zero(t, bobListing.CompleteCount)

	todoID := listing.Incomplete[0].ID

	// Mark it complete
	w = app.formReq("/update", aliceToken, url.Values{"itemTest": {fmt.Sprint(todoID)}})
	require.Equal(t, http.StatusSeeOther, w.Code)

	listing = decodeListing(t, app.jsonReq(http.MethodGet, "/todos", aliceToken, ""))
	assert.Zero(t, listing.IncompleteCount)
	require.Equal(t, int64(1), listing.CompleteCount)
	assert.True(t, listing.Complete[0].Complete)

	bobListing = decodeListing(t, app.jsonReq(http.MethodGet, "/todos", bobToken, ""))
	assert.Zero(t, bobListing.CompleteCount, "unrelated user's count unaffected")

	// Remove it
	w = app.formReq("/remove", aliceToken, url.Values{"itemTest": {fmt.Sprint(todoID)}})
	require.Equal(t, http.StatusSeeOther, w.Code)

	listing = decodeListing(t, app.jsonReq(http.MethodGet, "/todos", aliceToken, ""))
	assert.Zero(t, listing.IncompleteCount)
	assert.Zero(t, listing.CompleteCount)
}

func TestAddRequiresAuthentication(t *testing.T) {
	app := newTestApp(t, true)

	w := app.jsonReq(http.MethodPost, "/add", "", `{"text":"anonymous item"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.formReq("/add", "", url.Values{"todoitem": {"anonymous item"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	var count int64
	require.NoError(t, app.db.Model(&models.Todo{}).Count(&count).Error)
	assert.Zero(t, count, "nothing may be inserted without a session")
}

func TestAddRejectsEmptyText(t *testing.T) {
	app := newTestApp(t, true)
	alice := app.createUser(t, "alice")

	w := app.jsonReq(http.MethodPost, "/add", app.token(t, alice), `{"text":"  "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	require.NoError(t, app.db.Model(&models.Todo{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateUnknownIDFailsGracefully(t *testing.T) {
	app := newTestApp(t, true)
	alice := app.createUser(t, "alice")
	token := app.token(t, alice)

	// Browser form posts are a graceful no-op redirect
	w := app.formReq("/update", token, url.Values{"itemTest": {"4242"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/todos", w.Header().Get("Location"))

	w = app.formReq("/remove", token, url.Values{"itemTest": {"4242"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)

	// API clients get an explicit not-found
	w = app.jsonReq(http.MethodPost, "/update?id=4242", token, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// A non-numeric id is a validation failure, not a crash
	w = app.formReq("/update", token, url.Values{"itemTest": {"nonsense"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateForeignTodoForbidden(t *testing.T) {
	app := newTestApp(t, true)
	alice := app.createUser(t, "alice")
	bob := app.createUser(t, "bob")

	todo := models.Todo{Text: "alice's", UserID: alice.ID}
	require.NoError(t, app.db.Create(&todo).Error)

	w := app.jsonReq(http.MethodPost, fmt.Sprintf("/update?id=%d", todo.ID), app.token(t, bob), "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	var stored models.Todo
	require.NoError(t, app.db.First(&stored, todo.ID).Error)
	assert.False(t, stored.Complete)
}

func TestRegistrationClosed(t *testing.T) {
	app := newTestApp(t, false)

	w := app.jsonReq(http.MethodPost, "/new", "", `{"name":"stranger"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Admins may still create users through the same route
	root := app.createUser(t, "root", "admin")
	w = app.jsonReq(http.MethodPost, "/new", app.token(t, root), `{"name":"invited"}`)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestLogoutClearsSession(t *testing.T) {
	app := newTestApp(t, true)
	alice := app.createUser(t, "alice")

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.Header.Set("Accept", browserAccept)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: app.token(t, alice)})
	w := httptest.NewRecorder()
	app.container.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, auth.SessionCookie, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
}
