package auth

import (
	"net/http"
	"strings"
	"todolist-restful/models"

	restful "github.com/emicklei/go-restful/v3"
)

// LoginCredentials defines the structure of the login request
type LoginCredentials struct {
	Name     string `json:"name" description:"User name for login"`
	Password string `json:"password" description:"Password for login"`
}

// LoginResponse defines the structure of the login response
type LoginResponse struct {
	Token   string `json:"token,omitempty"`
	Message string `json:"message,omitempty"`
}

// SessionState reports whether the caller has a live session; the UI uses it
// to decide whether to show the log-in or the log-out link.
type SessionState struct {
	Authenticated bool   `json:"authenticated"`
	UserID        uint   `json:"user_id,omitempty"`
	Name          string `json:"name,omitempty"`
}

// readCredentials accepts both a JSON body and a classic login form.
func readCredentials(request *restful.Request) (*LoginCredentials, error) {
	contentType := request.HeaderParameter("Content-Type")
	if strings.Contains(contentType, "application/x-www-form-urlencoded") || strings.Contains(contentType, "multipart/form-data") {
		return &LoginCredentials{
			Name:     request.Request.FormValue("name"),
			Password: request.Request.FormValue("password"),
		}, nil
	}
	creds := new(LoginCredentials)
	if err := request.ReadEntity(creds); err != nil {
		return nil, err
	}
	return creds, nil
}

// LoginRouteHandler handles POST /login.
func (a *Authenticator) LoginRouteHandler(request *restful.Request, response *restful.Response) {
	creds, err := readCredentials(request)
	if err != nil {
		_ = response.WriteHeaderAndJson(http.StatusBadRequest, LoginResponse{Message: "Invalid request body: " + err.Error()}, restful.MIME_JSON)
		return
	}

	if creds.Name == "" || creds.Password == "" {
		_ = response.WriteHeaderAndJson(http.StatusBadRequest, LoginResponse{Message: "Name and password are required"}, restful.MIME_JSON)
		return
	}

	var user models.User
	result := a.db.Where("name = ?", creds.Name).First(&user)
	if result.Error != nil {
		// Avoid revealing whether the user exists
		_ = response.WriteHeaderAndJson(http.StatusUnauthorized, LoginResponse{Message: "Invalid credentials"}, restful.MIME_JSON)
		return
	}
	if !user.Active || !a.CheckPassword(user.Password, creds.Password) {
		_ = response.WriteHeaderAndJson(http.StatusUnauthorized, LoginResponse{Message: "Invalid credentials"}, restful.MIME_JSON)
		return
	}

	token, err := a.GenerateToken(&user)
	if err != nil {
		_ = response.WriteHeaderAndJson(http.StatusInternalServerError, LoginResponse{Message: "Could not generate token"}, restful.MIME_JSON)
		return
	}

	http.SetCookie(response.ResponseWriter, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int(a.sessionTTL.Seconds()),
	})

	if wantsHTML(request) {
		http.Redirect(response.ResponseWriter, request.Request, a.postLoginRedirect, http.StatusSeeOther)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, LoginResponse{Token: token}, restful.MIME_JSON)
}

// LoginFormHandler handles GET /login for browsers that have no session yet.
// There is no server-rendered template here; API clients POST instead.
func (a *Authenticator) LoginFormHandler(request *restful.Request, response *restful.Response) {
	_ = response.WriteHeaderAndJson(http.StatusOK, LoginResponse{Message: "POST name and password to /login"}, restful.MIME_JSON)
}

// LogoutRouteHandler handles GET /logout: the session cookie is cleared and
// the browser is sent back to the login page.
func (a *Authenticator) LogoutRouteHandler(request *restful.Request, response *restful.Response) {
	http.SetCookie(response.ResponseWriter, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	if wantsHTML(request) {
		http.Redirect(response.ResponseWriter, request.Request, a.loginRedirect, http.StatusSeeOther)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, LoginResponse{Message: "Logged out"}, restful.MIME_JSON)
}

// SessionStateHandler handles GET /session.
func (a *Authenticator) SessionStateHandler(request *restful.Request, response *restful.Response) {
	claims, ok := a.Authenticated(request)
	if !ok {
		_ = response.WriteHeaderAndJson(http.StatusOK, SessionState{Authenticated: false}, restful.MIME_JSON)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, SessionState{
		Authenticated: true,
		UserID:        claims.UserID,
		Name:          claims.Name,
	}, restful.MIME_JSON)
}
