package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/akarpov/projecttodo/internal/auth"
	"github.com/akarpov/projecttodo/internal/services"
)

type Handler interface {
	HandleRegister(c *gin.Context)
	HandleLogin(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)

	HandleCreateProject(c *gin.Context)
	HandleGetProjects(c *gin.Context)
	HandleGetProject(c *gin.Context)
	HandleUpdateProject(c *gin.Context)
	HandleDeleteProject(c *gin.Context)
	HandleExportProject(c *gin.Context)

	HandleAddTodo(c *gin.Context)
	HandleUpdateTodo(c *gin.Context)
	HandleDeleteTodo(c *gin.Context)
}

type handlerImpl struct {
	logger        zerolog.Logger
	authenticator *auth.Authenticator
	users         services.UserService
	projects      services.ProjectService
	todos         services.TodoService
	export        services.ExportService
}

func New(
	logger zerolog.Logger,
	authenticator *auth.Authenticator,
	userService services.UserService,
	projectService services.ProjectService,
	todoService services.TodoService,
	exportService services.ExportService,
) Handler {
	return &handlerImpl{
		logger:        logger,
		authenticator: authenticator,
		users:         userService,
		projects:      projectService,
		todos:         todoService,
		export:        exportService,
	}
}

// RegisterRoutes mounts the v1 API under /api/v1. Everything except
// registration and login sits behind the auth middleware.
func RegisterRoutes(router gin.IRouter, h Handler) {
	api := router.Group("/api/v1")

	authRouter := api.Group("/auth")
	authRouter.POST("/register", h.HandleRegister)
	authRouter.POST("/login", h.HandleLogin)

	projectRouter := api.Group("/projects", h.HandleAuthMiddleware)
	projectRouter.POST("", h.HandleCreateProject)
	projectRouter.GET("", h.HandleGetProjects)
	projectRouter.GET("/:id", h.HandleGetProject)
	projectRouter.PUT("/:id", h.HandleUpdateProject)
	projectRouter.DELETE("/:id", h.HandleDeleteProject)
	projectRouter.POST("/:id/export", h.HandleExportProject)

	todoRouter := api.Group("/todos", h.HandleAuthMiddleware)
	todoRouter.POST("/:projectId", h.HandleAddTodo)
	todoRouter.PUT("/:todoId", h.HandleUpdateTodo)
	todoRouter.DELETE("/:todoId", h.HandleDeleteTodo)
}
