package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"todolist-restful/models"

	restful "github.com/emicklei/go-restful/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SessionCookie is the cookie carrying the signed session token for
// browser clients. API clients send the same token as a bearer header.
const SessionCookie = "session"

// CustomClaims represents the custom claims included in session tokens.
type CustomClaims struct {
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// Authenticator issues and validates session tokens and exposes the
// go-restful filters that gate protected routes. It is constructed once at
// startup and injected into every component that needs it.
type Authenticator struct {
	db         *gorm.DB
	signingKey []byte
	sessionTTL time.Duration
	bcryptCost int
	// loginRedirect is where denied browser requests are sent,
	// postLoginRedirect is where successful form logins land.
	loginRedirect     string
	postLoginRedirect string
}

func NewAuthenticator(db *gorm.DB, signingKey []byte, sessionTTL time.Duration, bcryptCost int, postLoginRedirect string) *Authenticator {
	return &Authenticator{
		db:                db,
		signingKey:        signingKey,
		sessionTTL:        sessionTTL,
		bcryptCost:        bcryptCost,
		loginRedirect:     "/login",
		postLoginRedirect: postLoginRedirect,
	}
}

// HashPassword hashes a plaintext password with bcrypt. Passwords are always
// stored hashed, including seeded and admin-created accounts.
func (a *Authenticator) HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), a.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("could not hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword compares a bcrypt hash against a plaintext candidate.
func (a *Authenticator) CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// GenerateToken creates a new session token for the given user.
func (a *Authenticator) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &CustomClaims{
		UserID: user.ID,
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.sessionTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "todolist",
			Subject:   "user-auth",
			ID:        uuid.NewString(),
			Audience:  []string{"todolist-users"},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(a.signingKey)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// ParseAndValidateToken verifies a session token and returns its claims.
func (a *Authenticator) ParseAndValidateToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.signingKey, nil
	})

	if err != nil {
		if ve, ok := err.(*jwt.ValidationError); ok {
			if ve.Errors&jwt.ValidationErrorMalformed != 0 {
				return nil, errors.New("malformed token")
			} else if ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0 {
				return nil, errors.New("token is either expired or not active yet")
			} else if ve.Errors&jwt.ValidationErrorSignatureInvalid != 0 {
				return nil, errors.New("invalid token signature")
			}
		}
		return nil, fmt.Errorf("couldn't handle this token: %w", err)
	}

	if claims, ok := token.Claims.(*CustomClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// HasRole reports whether the user holds the named role. It is the single
// capability check used by route filters and services: (actor, required
// role) in, boolean out.
func (a *Authenticator) HasRole(userID uint, roleName string) (bool, error) {
	var user models.User
	err := a.db.Preload("Roles").First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("user with ID %d not found", userID)
		}
		return false, fmt.Errorf("database error checking roles for user %d: %w", userID, err)
	}

	for _, role := range user.Roles {
		if role.Name == roleName {
			return true, nil
		}
	}
	return false, nil
}

// tokenFromRequest extracts the session token from the Authorization header
// or, failing that, the session cookie.
func tokenFromRequest(req *restful.Request) (string, bool) {
	authHeader := req.HeaderParameter("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1], true
		}
		return "", false
	}

	cookie, err := req.Request.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// wantsHTML reports whether the client is a browser expecting redirects
// rather than JSON error bodies.
func wantsHTML(req *restful.Request) bool {
	return strings.Contains(req.HeaderParameter("Accept"), "text/html")
}

// deny rejects an unauthenticated request: browsers are redirected to the
// login page, API clients get a 401.
func (a *Authenticator) deny(req *restful.Request, resp *restful.Response, message string) {
	if wantsHTML(req) {
		http.Redirect(resp.ResponseWriter, req.Request, a.loginRedirect, http.StatusSeeOther)
		return
	}
	_ = resp.WriteHeaderAndJson(http.StatusUnauthorized, map[string]string{"message": message}, restful.MIME_JSON)
}

// AuthFilter creates a go-restful FilterFunction that resolves the session.
// On success the actor's id and name are stored as request attributes.
func (a *Authenticator) AuthFilter() restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		tokenString, ok := tokenFromRequest(req)
		if !ok {
			a.deny(req, resp, "Authorization required")
			return
		}

		claims, err := a.ParseAndValidateToken(tokenString)
		if err != nil {
			a.deny(req, resp, err.Error())
			return
		}

		// Store user information in request attributes for use by handlers
		req.SetAttribute("user_id", claims.UserID)
		req.SetAttribute("name", claims.Name)

		chain.ProcessFilter(req, resp)
	}
}

// RoleFilter creates a FilterFunction that requires the authenticated actor
// to hold the named role. It must run after AuthFilter.
func (a *Authenticator) RoleFilter(roleName string) restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		userID, ok := RequestingUserID(req)
		if !ok {
			a.deny(req, resp, "Authorization required")
			return
		}

		has, err := a.HasRole(userID, roleName)
		if err != nil || !has {
			_ = resp.WriteHeaderAndJson(http.StatusForbidden, map[string]string{"message": "Forbidden: role '" + roleName + "' required"}, restful.MIME_JSON)
			return
		}

		chain.ProcessFilter(req, resp)
	}
}

// RequestingUserID extracts the user ID set by the AuthFilter.
func RequestingUserID(req *restful.Request) (uint, bool) {
	userIDAttr := req.Attribute("user_id")
	if userIDAttr == nil {
		return 0, false
	}
	userID, ok := userIDAttr.(uint)
	return userID, ok
}

// Authenticated reports whether the request carries a valid session without
// rejecting it. Used by the navigation state and the root redirect.
func (a *Authenticator) Authenticated(req *restful.Request) (*CustomClaims, bool) {
	tokenString, ok := tokenFromRequest(req)
	if !ok {
		return nil, false
	}
	claims, err := a.ParseAndValidateToken(tokenString)
	if err != nil {
		return nil, false
	}
	return claims, true
}
