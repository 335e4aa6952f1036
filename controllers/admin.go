package controllers

import (
	"net/http"
	"strconv"
	"todolist-restful/auth"
	"todolist-restful/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
)

// AdminController is the generic per-entity list/search/edit/delete surface.
// The user and role views require the admin role; the todo view is open to
// any authenticated actor but row-scoped to the actor unless they are an
// admin.
type AdminController struct {
	auth  *auth.Authenticator
	users services.UserService
	roles services.RoleService
	todos services.TodoService
	// theme is the pass-through UI theme name exposed in the dashboard.
	theme string
}

// NewAdminController creates an AdminController instance
func NewAdminController(a *auth.Authenticator, users services.UserService, roles services.RoleService, todos services.TodoService, theme string) *AdminController {
	return &AdminController{auth: a, users: users, roles: roles, todos: todos, theme: theme}
}

// DashboardResponse lists the admin views visible to the actor.
type DashboardResponse struct {
	Views []string `json:"views"`
	Theme string   `json:"theme"`
}

// MembershipInput names the role granted or revoked on a user.
type MembershipInput struct {
	Role string `json:"role"`
}

// RegisterRoutes sets up the admin surface on a WebService rooted at /admin.
func (ctl *AdminController) RegisterRoutes(ws *restful.WebService) {
	ws.Path("/admin").Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)

	authed := ctl.auth.AuthFilter()
	adminOnly := ctl.auth.RoleFilter(services.AdminRole)

	ws.Route(ws.GET("").Filter(authed).To(ctl.dashboardHandler).
		Doc("List the admin views visible to the actor").
		Metadata(restfulspec.KeyOpenAPITags, []string{"admin"}).
		Writes(DashboardResponse{}))

	// --- Users (admin role required) ---
	ws.Route(ws.GET("/users").Filter(authed).Filter(adminOnly).To(ctl.listUsersHandler).
		Doc("List users, searchable by name and email").
		Param(ws.QueryParameter("q", "Search term matched against name and email")).
		Param(ws.QueryParameter("page", "Page number (default 1)").DataType("integer").DefaultValue("1")).
		Param(ws.QueryParameter("page_size", "Rows per page (default 20)").DataType("integer").DefaultValue("20")).
		Metadata(restfulspec.KeyOpenAPITags, []string{"admin"}).
		Writes(PaginatedResponse{}).
		Returns(http.StatusOK, "Users listed", PaginatedResponse{}).
		Returns(http.StatusForbidden, "Admin role required", nil))

	ws.Route(ws.POST("/users").Filter(authed).Filter(adminOnly).To(ctl.createUserHandler).
		Doc("Create a user").
		Metadata(restfulspec.KeyOpenAPITags, []string{"admin"}).
		Reads(services.CreateUserInput{}).
		Returns(http.StatusCreated, "User created", UserResponse{}).
		Returns(http.StatusConflict, "Name or email already exists", nil))

	ws.Route(ws.GET("/users/{user-id}").Filter(authed).Filter(adminOnly).To(ctl.getUserHandler).
		Doc("Get user by ID").
		Param(ws.PathParameter("user-id", "Identifier of the user").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, []string{"admin"}).
		Writes(UserResponse{}).
		Returns(http.StatusNotFound, "User not found", nil))

	ws.Route(ws.PUT("/users/{user-id}").Filter(authed).Filter(adminOnly).To(ctl.updateUserHandler).
		Doc("Update user by ID").
		Param(ws.PathParameter("user-id", "Identifier of the user to update").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, []string{"admin"}).
		Reads(services.UpdateUserInput{}).
		Writes(UserResponse{}).
		Returns(http.StatusNotFound, "User not found", nil).
		Returns(http.StatusConflict, "Email conflict", nil))

	ws.Route(ws.DELETE("/users/{user-id}").Filter(authed).Filter(adminOnly).To(ctl.deleteUserHandler).
		Doc("Delete user by ID; refused while the user still owns todos").
		Param(ws.PathParameter("user-id", "Identifier of the user to delete").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, []string{"admin"}).
		Returns(http.StatusOK, "User deleted", nil).
		Returns(http.StatusBadRequest, "User still owns todos", nil).
		Returns(http.StatusNotFound, "User not found", nil))

	ws.Route(ws.POST("/users/{user-id}/roles").Filter(authed).Filter(adminOnly).To(ctl.grantRoleHandler).
		Doc("Grant a role to a user").
		Param(ws.PathParameter("user-id", "Identifier of the user").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, []string{"admin"}).
		Reads(MembershipInput{}).
		Returns(http.StatusOK, "Role granted", nil).
		Returns(http.StatusNotFound, "User or role not found", nil))

	ws.Route(ws.DELETE("/users/{user-id}/roles/{role-name}").Filter(authed).Filter(adminOnly).To(ctl.revokeRoleHandler).
		Doc("Revoke a role from a user").
		Param(ws.PathParameter("user-id", "Identifier of the user").DataType("integer")).
		Param(ws.PathParameter("role-name", "Name of the role to revoke")).
		Metadata(restfulspec.KeyOpenAPITags, []string{"admin"}).
		Returns(http.StatusOK, "Role revoked", nil).
		Returns(http.StatusNotFound, "User or role not found", nil))

	// --- Roles (admin role required) ---
	ws.Route(ws.GET("/roles").Filter(authed).Filter(adminOnly).To(ctl.listRolesHandler).
		Doc("List roles").
		Param(ws.QueryParameter("page", "Page number (default 1)").DataType("integer").DefaultValue("1")).
		Param(ws.QueryParameter("page_size", "Rows per page (default 20)").DataType("integer").DefaultValue("20")).
		Metadata(restfulspec.KeyOpenAPITags, []string{"admin"}).
		Writes(PaginatedResponse{}))

	ws.Route(ws.POST("/roles").Filter(authed).Filter(adminOnly).To(ctl.createRoleHandler).
		Doc("Create a role").
		Metadata(restfulspec.KeyOpenAPITags, []string{"admin"}).
		Reads(services.RoleInput{}).
		Returns(http.StatusCreated, "Role created", RoleResponse{}).
		Returns(http.StatusConflict, "Role name already exists", nil))

	ws.Route(ws.GET("/roles/{role-id}").Filter(authed).Filter(adminOnly).To(ctl.getRoleHandler).
		Doc("Get role by ID").
		Param(ws.PathParameter("role-id", "Identifier of the role").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, []string{"admin"}).
		Writes(RoleResponse{}).
		Returns(http.StatusNotFound, "Role not found", nil))

	ws.Route(ws.PUT("/roles/{role-id}").Filter(authed).Filter(adminOnly).To(ctl.updateRoleHandler).
		Doc("Update role by ID").
		Param(ws.PathParameter("role-id", "Identifier of the role to update").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, []string{"admin"}).
		Reads(services.RoleInput{}).
		Writes(RoleResponse{}).
		Returns(http.StatusNotFound, "Role not found", nil))

	ws.Route(ws.DELETE("/roles/{role-id}").Filter(authed).Filter(adminOnly).To(ctl.deleteRoleHandler).
		Doc("Delete role by ID").
		Param(ws.PathParameter("role-id", "Identifier of the role to delete").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, []string{"admin"}).
		Returns(http.StatusOK, "Role deleted", nil).
		Returns(http.StatusNotFound, "Role not found", nil))

	// --- Todos (any authenticated actor, row-scoped for non-admins) ---
	ws.Route(ws.GET("/todos").Filter(authed).To(ctl.listTodosHandler).
		Doc("List todos, searchable by text; non-admin actors see only their own rows").
		Param(ws.QueryParameter("q", "Search term matched against the todo text")).
		Param(ws.QueryParameter("page", "Page number (default 1)").DataType("integer").DefaultValue("1")).
		Param(ws.QueryParameter("page_size", "Rows per page (default 20)").DataType("integer").DefaultValue("20")).
		Metadata(restfulspec.KeyOpenAPITags, []string{"admin"}).
		Writes(PaginatedResponse{}))

	ws.Route(ws.GET("/todos/{todo-id}").Filter(authed).To(ctl.getTodoHandler).
		Doc("Get todo by ID, owner or admin").
		Param(ws.PathParameter("todo-id", "Identifier of the todo").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, []string{"admin"}).
		Writes(TodoResponse{}).
		Returns(http.StatusNotFound, "Todo not found", nil).
		Returns(http.StatusForbidden, "Not the owner", nil))

	ws.Route(ws.PUT("/todos/{todo-id}").Filter(authed).To(ctl.updateTodoHandler).
		Doc("Edit todo by ID, owner or admin; non-admins may only flip the completion flag").
		Param(ws.PathParameter("todo-id", "Identifier of the todo to update").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, []string{"admin"}).
		Reads(services.UpdateTodoInput{}).
		Writes(TodoResponse{}).
		Returns(http.StatusNotFound, "Todo not found", nil))

	ws.Route(ws.DELETE("/todos/{todo-id}").Filter(authed).To(ctl.deleteTodoHandler).
		Doc("Delete todo by ID, owner or admin").
		Param(ws.PathParameter("todo-id", "Identifier of the todo to delete").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, []string{"admin"}).
		Returns(http.StatusOK, "Todo deleted", nil).
		Returns(http.StatusNotFound, "Todo not found", nil))
}

// --- Utility ---

func requestingUser(request *restful.Request, response *restful.Response) (uint, bool) {
	actorID, ok := auth.RequestingUserID(request)
	if !ok {
		_ = response.WriteHeaderAndJson(http.StatusUnauthorized, map[string]string{"message": "Unauthorized: Cannot identify requesting user"}, restful.MIME_JSON)
		return 0, false
	}
	return actorID, true
}

func pathID(request *restful.Request, response *restful.Response, param string) (uint, bool) {
	raw := request.PathParameter(param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		_ = response.WriteHeaderAndJson(http.StatusBadRequest, map[string]string{"message": "Invalid " + param + " format"}, restful.MIME_JSON)
		return 0, false
	}
	return uint(id), true
}

func paging(request *restful.Request) (int, int) {
	page, err := strconv.Atoi(request.QueryParameter("page"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(request.QueryParameter("page_size"))
	if err != nil || pageSize < 1 {
		pageSize = 20
	}
	return page, pageSize
}

// --- Handlers ---

func (ctl *AdminController) dashboardHandler(request *restful.Request, response *restful.Response) {
	actorID, ok := requestingUser(request, response)
	if !ok {
		return
	}

	views := []string{"todos"}
	if isAdmin, _ := ctl.auth.HasRole(actorID, services.AdminRole); isAdmin {
		views = []string{"users", "roles", "todos"}
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, DashboardResponse{Views: views, Theme: ctl.theme}, restful.MIME_JSON)
}

func (ctl *AdminController) listUsersHandler(request *restful.Request, response *restful.Response) {
	actorID, ok := requestingUser(request, response)
	if !ok {
		return
	}
	page, pageSize := paging(request)

	users, total, err := ctl.users.SearchUsers(actorID, request.QueryParameter("q"), page, pageSize)
	if err != nil {
		handleServiceError(response, err)
		return
	}

	items := make([]UserResponse, len(users))
	for i := range users {
		items[i] = mapModelToUserResponse(&users[i])
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, PaginatedResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Fields:   fieldsFor("users", true).List,
	}, restful.MIME_JSON)
}

func (ctl *AdminController) createUserHandler(request *restful.Request, response *restful.Response) {
	actorID, ok := requestingUser(request, response)
	if !ok {
		return
	}

	input := new(services.CreateUserInput)
	if err := request.ReadEntity(input); err != nil {
		_ = response.WriteHeaderAndJson(http.StatusBadRequest, map[string]string{"message": "Invalid request body: " + err.Error()}, restful.MIME_JSON)
		return
	}

	user, err := ctl.users.CreateUser(actorID, input)
	if err != nil {
		handleServiceError(response, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusCreated, mapModelToUserResponse(user), restful.MIME_JSON)
}

func (ctl *AdminController) getUserHandler(request *restful.Request, response *restful.Response) {
	actorID, ok := requestingUser(request, response)
	if !ok {
		return
	}
	targetID, ok := pathID(request, response, "user-id")
	if !ok {
		return
	}

	user, err := ctl.users.GetUserByID(targetID, actorID)
	if err != nil {
		handleServiceError(response, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, mapModelToUserResponse(user), restful.MIME_JSON)
}

func (ctl *AdminController) updateUserHandler(request *restful.Request, response *restful.Response) {
	actorID, ok := requestingUser(request, response)
	if !ok {
		return
	}
	targetID, ok := pathID(request, response, "user-id")
	if !ok {
		return
	}

	input := new(services.UpdateUserInput)
	if err := request.ReadEntity(input); err != nil {
		_ = response.WriteHeaderAndJson(http.StatusBadRequest, map[string]string{"message": "Invalid request body: " + err.Error()}, restful.MIME_JSON)
		return
	}

	user, err := ctl.users.UpdateUser(targetID, actorID, input)
	if err != nil {
		handleServiceError(response, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, mapModelToUserResponse(user), restful.MIME_JSON)
}

func (ctl *AdminController) deleteUserHandler(request *restful.Request, response *restful.Response) {
	actorID, ok := requestingUser(request, response)
	if !ok {
		return
	}
	targetID, ok := pathID(request, response, "user-id")
	if !ok {
		return
	}

	if err := ctl.users.DeleteUser(targetID, actorID); err != nil {
		handleServiceError(response, err)
		return
	}
	response.WriteHeader(http.StatusOK)
}

func (ctl *AdminController) grantRoleHandler(request *restful.Request, response *restful.Response) {
	actorID, ok := requestingUser(request, response)
	if !ok {
		return
	}
	targetID, ok := pathID(request, response, "user-id")
	if !ok {
		return
	}

	input := new(MembershipInput)
	if err := request.ReadEntity(input); err != nil || input.Role == "" {
		_ = response.WriteHeaderAndJson(http.StatusBadRequest, map[string]string{"message": "Role name is required"}, restful.MIME_JSON)
		return
	}

	if err := ctl.users.GrantRole(actorID, targetID, input.Role); err != nil {
		handleServiceError(response, err)
		return
	}
	response.WriteHeader(http.StatusOK)
}

func (ctl *AdminController) revokeRoleHandler(request *restful.Request, response *restful.Response) {
	actorID, ok := requestingUser(request, response)
	if !ok {
		return
	}
	targetID, ok := pathID(request, response, "user-id")
	if !ok {
		return
	}

	roleName := request.PathParameter("role-name")
	if err := ctl.users.RevokeRole(actorID, targetID, roleName); err != nil {
		handleServiceError(response, err)
		return
	}
	response.WriteHeader(http.StatusOK)
}

func (ctl *AdminController) listRolesHandler(request *restful.Request, response *restful.Response) {
	actorID, ok := requestingUser(request, response)
	if !ok {
		return
	}
	page, pageSize := paging(request)

	roles, total, err := ctl.roles.ListRoles(actorID, page, pageSize)
	if err != nil {
		handleServiceError(response, err)
		return
	}

	items := make([]RoleResponse, len(roles))
	for i := range roles {
		items[i] = mapModelToRoleResponse(&roles[i])
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, PaginatedResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Fields:   fieldsFor("roles", true).List,
	}, restful.MIME_JSON)
}

func (ctl *AdminController) createRoleHandler(request *restful.Request, response *restful.Response) {
	actorID, ok := requestingUser(request, response)
	if !ok {
		return
	}

	input := new(services.RoleInput)
	if err := request.ReadEntity(input); err != nil {
		_ = response.WriteHeaderAndJson(http.StatusBadRequest, map[string]string{"message": "Invalid request body: " + err.Error()}, restful.MIME_JSON)
		return
	}

	role, err := ctl.roles.CreateRole(actorID, input)
	if err != nil {
		handleServiceError(response, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusCreated, mapModelToRoleResponse(role), restful.MIME_JSON)
}

func (ctl *AdminController) getRoleHandler(request *restful.Request, response *restful.Response) {
	actorID, ok := requestingUser(request, response)
	if !ok {
		return
	}
	roleID, ok := pathID(request, response, "role-id")
	if !ok {
		return
	}

	role, err := ctl.roles.GetRoleByID(roleID, actorID)
	if err != nil {
		handleServiceError(response, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, mapModelToRoleResponse(role), restful.MIME_JSON)
}

func (ctl *AdminController) updateRoleHandler(request *restful.Request, response *restful.Response) {
	actorID, ok := requestingUser(request, response)
	if !ok {
		return
	}
	roleID, ok := pathID(request, response, "role-id")
	if !ok {
		return
	}

	input := new(services.RoleInput)
	if err := request.ReadEntity(input); err != nil {
		_ = response.WriteHeaderAndJson(http.StatusBadRequest, map[string]string{"message": "Invalid request body: " + err.Error()}, restful.MIME_JSON)
		return
	}

	role, err := ctl.roles.UpdateRole(roleID, actorID, input)
	if err != nil {
		handleServiceError(response, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, mapModelToRoleResponse(role), restful.MIME_JSON)
}

func (ctl *AdminController) deleteRoleHandler(request *restful.Request, response *restful.Response) {
	actorID, ok := requestingUser(request, response)
	if !ok {
		return
	}
	roleID, ok := pathID(request, response, "role-id")
	if !ok {
		return
	}

	if err := ctl.roles.DeleteRole(roleID, actorID); err != nil {
		handleServiceError(response, err)
		return
	}
	response.WriteHeader(http.StatusOK)
}

func (ctl *AdminController) listTodosHandler(request *restful.Request, response *restful.Response) {
	actorID, ok := requestingUser(request, response)
	if !ok {
		return
	}
	page, pageSize := paging(request)

	todos, total, err := ctl.todos.SearchTodos(actorID, request.QueryParameter("q"), page, pageSize)
	if err != nil {
		handleServiceError(response, err)
		return
	}

	isAdmin, _ := ctl.auth.HasRole(actorID, services.AdminRole)
	items := make([]TodoResponse, len(todos))
	for i := range todos {
		items[i] = mapModelToTodoResponse(&todos[i])
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, PaginatedResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Fields:   fieldsFor("todos", isAdmin).List,
	}, restful.MIME_JSON)
}

func (ctl *AdminController) getTodoHandler(request *restful.Request, response *restful.Response) {
	actorID, ok := requestingUser(request, response)
	if !ok {
		return
	}
	todoID, ok := pathID(request, response, "todo-id")
	if !ok {
		return
	}

	todo, err := ctl.todos.GetTodo(actorID, todoID)
	if err != nil {
		handleServiceError(response, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, mapModelToTodoResponse(todo), restful.MIME_JSON)
}

func (ctl *AdminController) updateTodoHandler(request *restful.Request, response *restful.Response) {
	actorID, ok := requestingUser(request, response)
	if !ok {
		return
	}
	todoID, ok := pathID(request, response, "todo-id")
	if !ok {
		return
	}

	input := new(services.UpdateTodoInput)
	if err := request.ReadEntity(input); err != nil {
		_ = response.WriteHeaderAndJson(http.StatusBadRequest, map[string]string{"message": "Invalid request body: " + err.Error()}, restful.MIME_JSON)
		return
	}

	// Editable columns are enumerated per actor class; text edits are an
	// admin-only column.
	isAdmin, _ := ctl.auth.HasRole(actorID, services.AdminRole)
	cfg := fieldsFor("todos", isAdmin)
	if input.Text != nil && !fieldAllowed(cfg, "text") {
		_ = response.WriteHeaderAndJson(http.StatusForbidden, map[string]string{"message": "Forbidden: the text column is not editable for this actor"}, restful.MIME_JSON)
		return
	}

	todo, err := ctl.todos.UpdateTodo(actorID, todoID, input)
	if err != nil {
		handleServiceError(response, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, mapModelToTodoResponse(todo), restful.MIME_JSON)
}

func (ctl *AdminController) deleteTodoHandler(request *restful.Request, response *restful.Response) {
	actorID, ok := requestingUser(request, response)
	if !ok {
		return
	}
	todoID, ok := pathID(request, response, "todo-id")
	if !ok {
		return
	}

	if err := ctl.todos.RemoveTodo(actorID, todoID); err != nil {
		handleServiceError(response, err)
		return
	}
	response.WriteHeader(http.StatusOK)
}
