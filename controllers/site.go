package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"todolist-restful/auth"
	"todolist-restful/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
)

// SiteController serves the classic form-driven surface of the application:
// the root redirect, the todo list, and the add/new/update/remove posts.
type SiteController struct {
	auth  *auth.Authenticator
	todos services.TodoService
	users services.UserService
	// listPath is where successful form posts land.
	listPath string
}

// NewSiteController creates a SiteController instance
func NewSiteController(a *auth.Authenticator, todos services.TodoService, users services.UserService, listPath string) *SiteController {
	return &SiteController{auth: a, todos: todos, users: users, listPath: listPath}
}

// RegisterRoutes sets up the site routes on a go-restful WebService rooted
// at "/".
func (ctl *SiteController) RegisterRoutes(ws *restful.WebService) {
	// Form posts from the classic UI arrive urlencoded, API clients use JSON
	ws.Path("/").
		Consumes(restful.MIME_JSON, "application/x-www-form-urlencoded").
		Produces(restful.MIME_JSON)

	ws.Route(ws.GET("/").To(ctl.rootHandler).
		Doc("Redirect to the admin surface when authenticated, otherwise to login").
		Metadata(restfulspec.KeyOpenAPITags, []string{"site"}).
		Returns(http.StatusSeeOther, "Redirect", nil))

	// Session routes delegated to the authenticator
	ws.Route(ws.GET("/login").To(ctl.auth.LoginFormHandler).
		Doc("Login page placeholder").
		Metadata(restfulspec.KeyOpenAPITags, []string{"session"}))
	ws.Route(ws.POST("/login").To(ctl.auth.LoginRouteHandler).
		Doc("Authenticate with name and password").
		Metadata(restfulspec.KeyOpenAPITags, []string{"session"}).
		Reads(auth.LoginCredentials{}).
		Returns(http.StatusOK, "Session issued", auth.LoginResponse{}).
		Returns(http.StatusUnauthorized, "Invalid credentials", nil))
	ws.Route(ws.GET("/logout").To(ctl.auth.LogoutRouteHandler).
		Doc("Clear the session").
		Metadata(restfulspec.KeyOpenAPITags, []string{"session"}))
	ws.Route(ws.GET("/session").To(ctl.auth.SessionStateHandler).
		Doc("Report whether a session exists; drives the login/logout link").
		Metadata(restfulspec.KeyOpenAPITags, []string{"session"}).
		Writes(auth.SessionState{}))

	ws.Route(ws.GET("/todos").Filter(ctl.auth.AuthFilter()).To(ctl.listTodosHandler).
		Doc("List the actor's own todos split by completion state").
		Metadata(restfulspec.KeyOpenAPITags, []string{"todos"}).
		Writes(services.TodoListing{}).
		Returns(http.StatusOK, "Listing", services.TodoListing{}).
		Returns(http.StatusUnauthorized, "Unauthorized", nil))

	ws.Route(ws.POST("/add").Filter(ctl.auth.AuthFilter()).To(ctl.addHandler).
		Doc("Create a todo owned by the caller").
		Metadata(restfulspec.KeyOpenAPITags, []string{"todos"}).
		Reads(services.CreateTodoInput{}).
		Returns(http.StatusCreated, "Todo created", TodoResponse{}).
		Returns(http.StatusBadRequest, "Missing todo text", nil).
		Returns(http.StatusUnauthorized, "Unauthorized", nil))

	ws.Route(ws.POST("/new").To(ctl.newMemberHandler).
		Doc("Register a new user").
		Metadata(restfulspec.KeyOpenAPITags, []string{"users"}).
		Reads(services.CreateUserInput{}).
		Returns(http.StatusCreated, "User created", UserResponse{}).
		Returns(http.StatusConflict, "Name or email already exists", nil).
		Returns(http.StatusForbidden, "Registration disabled", nil))

	ws.Route(ws.POST("/update").Filter(ctl.auth.AuthFilter()).To(ctl.updateHandler).
		Doc("Mark a todo complete").
		Metadata(restfulspec.KeyOpenAPITags, []string{"todos"}).
		Returns(http.StatusOK, "Todo completed", TodoResponse{}).
		Returns(http.StatusNotFound, "Todo not found", nil).
		Returns(http.StatusForbidden, "Not the owner", nil))

	ws.Route(ws.POST("/remove").Filter(ctl.auth.AuthFilter()).To(ctl.removeHandler).
		Doc("Delete a todo").
		Metadata(restfulspec.KeyOpenAPITags, []string{"todos"}).
		Returns(http.StatusOK, "Todo removed", nil).
		Returns(http.StatusNotFound, "Todo not found", nil).
		Returns(http.StatusForbidden, "Not the owner", nil))
}

// rootHandler redirects authenticated actors to the admin surface and
// everyone else to the login page.
func (ctl *SiteController) rootHandler(request *restful.Request, response *restful.Response) {
	if _, ok := ctl.auth.Authenticated(request); ok {
		redirect(request, response, "/admin")
		return
	}
	redirect(request, response, "/login")
}

// listTodosHandler serves the actor-scoped list with per-bucket counts.
func (ctl *SiteController) listTodosHandler(request *restful.Request, response *restful.Response) {
	actorID, ok := auth.RequestingUserID(request)
	if !ok {
		_ = response.WriteHeaderAndJson(http.StatusUnauthorized, map[string]string{"message": "Unauthorized: Cannot identify requesting user"}, restful.MIME_JSON)
		return
	}

	listing, err := ctl.todos.ListForActor(actorID)
	if err != nil {
		handleServiceError(response, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, listing, restful.MIME_JSON)
}

// readTodoForm accepts the classic form fields (todoitem, username) or a
// JSON CreateTodoInput body.
func readTodoForm(request *restful.Request) (*services.CreateTodoInput, error) {
	contentType := request.HeaderParameter("Content-Type")
	if strings.Contains(contentType, "application/x-www-form-urlencoded") || strings.Contains(contentType, "multipart/form-data") {
		return &services.CreateTodoInput{
			Text:      request.Request.FormValue("todoitem"),
			OwnerName: request.Request.FormValue("username"),
		}, nil
	}
	input := new(services.CreateTodoInput)
	if err := request.ReadEntity(input); err != nil {
		return nil, err
	}
	return input, nil
}

// addHandler (Handles POST /add)
func (ctl *SiteController) addHandler(request *restful.Request, response *restful.Response) {
	actorID, ok := auth.RequestingUserID(request)
	if !ok {
		_ = response.WriteHeaderAndJson(http.StatusUnauthorized, map[string]string{"message": "Unauthorized: Cannot identify requesting user"}, restful.MIME_JSON)
		return
	}

	input, err := readTodoForm(request)
	if err != nil {
		_ = response.WriteHeaderAndJson(http.StatusBadRequest, map[string]string{"message": "Invalid request body: " + err.Error()}, restful.MIME_JSON)
		return
	}

	todo, err := ctl.todos.CreateTodo(actorID, input)
	if err != nil {
		handleServiceError(response, err)
		return
	}

	if wantsHTML(request) {
		redirect(request, response, ctl.listPath)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusCreated, mapModelToTodoResponse(todo), restful.MIME_JSON)
}

// readUserForm accepts the classic form field (newname, plus optional email
// and password) or a JSON CreateUserInput body.
func readUserForm(request *restful.Request) (*services.CreateUserInput, error) {
	contentType := request.HeaderParameter("Content-Type")
	if strings.Contains(contentType, "application/x-www-form-urlencoded") || strings.Contains(contentType, "multipart/form-data") {
		return &services.CreateUserInput{
			Name:     request.Request.FormValue("newname"),
			Email:    request.Request.FormValue("email"),
			Password: request.Request.FormValue("password"),
		}, nil
	}
	input := new(services.CreateUserInput)
	if err := request.ReadEntity(input); err != nil {
		return nil, err
	}
	return input, nil
}

// newMemberHandler (Handles POST /new). Anonymous callers are allowed only
// when public registration is enabled; the service enforces that.
func (ctl *SiteController) newMemberHandler(request *restful.Request, response *restful.Response) {
	var actorID uint
	if claims, ok := ctl.auth.Authenticated(request); ok {
		actorID = claims.UserID
	}

	input, err := readUserForm(request)
	if err != nil {
		_ = response.WriteHeaderAndJson(http.StatusBadRequest, map[string]string{"message": "Invalid request body: " + err.Error()}, restful.MIME_JSON)
		return
	}

	user, err := ctl.users.CreateUser(actorID, input)
	if err != nil {
		handleServiceError(response, err)
		return
	}

	if wantsHTML(request) {
		redirect(request, response, ctl.listPath)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusCreated, mapModelToUserResponse(user), restful.MIME_JSON)
}

// selectedTodoID reads the todo identifier from the classic "itemTest" form
// field, falling back to an "id" field or query parameter.
func selectedTodoID(request *restful.Request) (uint, bool) {
	raw := request.Request.FormValue("itemTest")
	if raw == "" {
		raw = request.Request.FormValue("id")
	}
	if raw == "" {
		raw = request.QueryParameter("id")
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// updateHandler (Handles POST /update)
func (ctl *SiteController) updateHandler(request *restful.Request, response *restful.Response) {
	actorID, ok := auth.RequestingUserID(request)
	if !ok {
		_ = response.WriteHeaderAndJson(http.StatusUnauthorized, map[string]string{"message": "Unauthorized: Cannot identify requesting user"}, restful.MIME_JSON)
		return
	}

	todoID, ok := selectedTodoID(request)
	if !ok {
		_ = response.WriteHeaderAndJson(http.StatusBadRequest, map[string]string{"message": "Missing or invalid todo id"}, restful.MIME_JSON)
		return
	}

	todo, err := ctl.todos.CompleteTodo(actorID, todoID)
	if err != nil {
		handleFormError(request, response, err, ctl.listPath)
		return
	}

	if wantsHTML(request) {
		redirect(request, response, ctl.listPath)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, mapModelToTodoResponse(todo), restful.MIME_JSON)
}

// removeHandler (Handles POST /remove)
func (ctl *SiteController) removeHandler(request *restful.Request, response *restful.Response) {
	actorID, ok := auth.RequestingUserID(request)
	if !ok {
		_ = response.WriteHeaderAndJson(http.StatusUnauthorized, map[string]string{"message": "Unauthorized: Cannot identify requesting user"}, restful.MIME_JSON)
		return
	}

	todoID, ok := selectedTodoID(request)
	if !ok {
		_ = response.WriteHeaderAndJson(http.StatusBadRequest, map[string]string{"message": "Missing or invalid todo id"}, restful.MIME_JSON)
		return
	}

	if err := ctl.todos.RemoveTodo(actorID, todoID); err != nil {
		handleFormError(request, response, err, ctl.listPath)
		return
	}

	if wantsHTML(request) {
		redirect(request, response, ctl.listPath)
		return
	}
	response.WriteHeader(http.StatusOK)
}
