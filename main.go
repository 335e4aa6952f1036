package main

import (
	"fmt"
	"net/http"
	"time"
	"todolist-restful/auth"
	"todolist-restful/config"
	"todolist-restful/controllers"
	"todolist-restful/database"
	"todolist-restful/repositories"
	"todolist-restful/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"github.com/go-openapi/spec"
	"go.uber.org/zap"
)

// RequestLogger is a container filter logging every request with zap.
func RequestLogger(logger *zap.Logger) restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		startTime := time.Now()

		chain.ProcessFilter(req, resp)

		// Log after request processing is completed
		latency := time.Since(startTime)
		logger.Info("Request",
			zap.String("method", req.Request.Method),
			zap.String("path", req.Request.URL.Path),
			zap.Int("status_code", resp.StatusCode()),
			zap.Duration("latency", latency),
			zap.String("user_agent", req.Request.UserAgent()),
		)
	}
}

func enrichSwaggerObject(swo *spec.Swagger) {
	swo.Info = &spec.Info{
		InfoProps: spec.InfoProps{
			Title:       "ToDo List API",
			Description: "A minimal to-do list with user accounts, roles and an admin surface",
			Version:     "1.0.0",
		},
	}
}

func main() {
	// Initialize configs
	config.InitConfig()
	cfg := &config.AppConfig

	var logger *zap.Logger
	switch cfg.LogLevel {
	case "debug":
		logger, _ = zap.NewDevelopment()
	default:
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync() // Make sure the buffer is flushed before the program exits

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	authenticator := auth.NewAuthenticator(
		db,
		[]byte(cfg.JwtSecret),
		time.Duration(cfg.SessionHours)*time.Hour,
		cfg.BcryptCost,
		cfg.PostLoginRedirect,
	)

	userRepo := repositories.NewUserRepository(db)
	roleRepo := repositories.NewRoleRepository(db)
	todoRepo := repositories.NewTodoRepository(db)

	userService := services.NewUserService(userRepo, roleRepo, todoRepo, authenticator, authenticator, cfg.RegistrationOpen)
	roleService := services.NewRoleService(roleRepo, authenticator)
	todoService := services.NewTodoService(todoRepo, userRepo, authenticator)

	siteController := controllers.NewSiteController(authenticator, todoService, userService, cfg.PostLoginRedirect)
	adminController := controllers.NewAdminController(authenticator, userService, roleService, todoService, cfg.AdminTheme)

	container := restful.NewContainer()
	container.Filter(RequestLogger(logger))
	container.RecoverHandler(func(recovered interface{}, w http.ResponseWriter) {
		logger.Error("Recovered from handler panic", zap.Any("panic", recovered))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	})

	siteWs := new(restful.WebService)
	siteController.RegisterRoutes(siteWs)
	container.Add(siteWs)

	adminWs := new(restful.WebService)
	adminController.RegisterRoutes(adminWs)
	container.Add(adminWs)

	apiConfig := restfulspec.Config{
		WebServices:                   container.RegisteredWebServices(),
		APIPath:                       "/apidocs.json",
		PostBuildSwaggerObjectHandler: enrichSwaggerObject,
	}
	container.Add(restfulspec.NewOpenAPIService(apiConfig))

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	logger.Info("Starting HTTP server", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, container); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}
