package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bert0h-dev/menvitta-backend/internal/core/domain"
	"github.com/bert0h-dev/menvitta-backend/internal/core/port"
	"github.com/bert0h-dev/menvitta-backend/internal/infra/config"
	"github.com/bert0h-dev/menvitta-backend/internal/infra/i18n"
	"github.com/bert0h-dev/menvitta-backend/internal/transport/http/handlers"
	"github.com/bert0h-dev/menvitta-backend/internal/transport/http/middleware"
	"github.com/bert0h-dev/menvitta-backend/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth        *usecase.AuthService
	Users       *usecase.UserService
	Roles       *usecase.RoleService
	Permissions *usecase.PermissionService
	Audit       *usecase.AuditService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config     *config.AppConfig
	Logger     *zap.Logger
	Translator *i18n.Translator
	Services   ServiceSet
	UserRepo   port.UserRepository
	Recorder   *usecase.AuditRecorder
	Metrics    *middleware.HTTPMetrics
	Database   DatabaseChecker
	Cache      CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS(deps.Config.App.AllowedOrigins))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	respond := handlers.NewResponder(deps.Translator)

	checks := make(map[string]handlers.DependencyCheck, 2)
	if deps.Database != nil {
		checks["database"] = deps.Database.Ping
	}
	if deps.Cache != nil {
		checks["redis"] = deps.Cache.HealthCheck
	}

	healthHandler := handlers.NewHealthHandler(checks)
	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.RequireAuth(deps.Services.Auth, deps.UserRepo, deps.Translator)
	requireStaff := middleware.RequireUserType(deps.Translator, domain.UserTypeAdmin, domain.UserTypeStaff)
	activity := middleware.Activity(deps.Services.Users)

	audit := func(label i18n.Code) gin.HandlerFunc {
		return middleware.Audit(deps.Recorder, deps.Translator, label)
	}

	api := r.Group("/api/v1")
	{
		authHandler := handlers.NewAuthHandler(deps.Services.Auth, respond)

		authGroup := api.Group("/auth")
		authGroup.POST("/login", audit(i18n.LogLogin), authHandler.Login)
		authGroup.POST("/logout", requireAuth, audit(i18n.LogLogout), authHandler.Logout)
		authGroup.POST("/refresh", audit(i18n.LogTokenRefresh), authHandler.Refresh)

		userHandler := handlers.NewUserHandler(deps.Services.Users, respond)

		userGroup := api.Group("/users")
		userGroup.Use(requireAuth, activity)
		userGroup.GET("", requireStaff, audit(i18n.LogUserList), userHandler.List)
		userGroup.GET("/:id", requireStaff, audit(i18n.LogUserDetails), userHandler.Get)
		userGroup.POST("", requireStaff, audit(i18n.LogUserCreate), userHandler.Create)
		userGroup.PUT("/:id", requireStaff, audit(i18n.LogUserUpdate), userHandler.Update)
		userGroup.PUT("/:id/password", audit(i18n.LogPasswordUpdate), userHandler.ChangePassword)
		userGroup.PUT("/:id/language", audit(i18n.LogLanguageUpdate), userHandler.ChangeLanguage)

		roleHandler := handlers.NewRoleHandler(deps.Services.Roles, respond)

		roleGroup := api.Group("/roles")
		roleGroup.Use(requireAuth, activity, requireStaff)
		roleGroup.GET("", audit(i18n.LogRoleList), roleHandler.List)
		roleGroup.GET("/:id", audit(i18n.LogRoleDetails), roleHandler.Get)
		roleGroup.POST("", audit(i18n.LogRoleCreate), roleHandler.Create)
		roleGroup.PUT("/:id", audit(i18n.LogRoleUpdate), roleHandler.Update)
		roleGroup.DELETE("/:id", audit(i18n.LogRoleDestroy), roleHandler.Delete)
		roleGroup.POST("/assign", audit(i18n.LogRoleAssign), roleHandler.Assign)
		roleGroup.POST("/remove", audit(i18n.LogRoleRemove), roleHandler.Remove)

		permissionHandler := handlers.NewPermissionHandler(deps.Services.Permissions, respond)

		permissionGroup := api.Group("/permissions")
		permissionGroup.Use(requireAuth, activity)
		permissionGroup.GET("", permissionHandler.List)
		permissionGroup.POST("/names", permissionHandler.ResolveNames)

		logHandler := handlers.NewAccessLogHandler(deps.Services.Audit, respond)

		logGroup := api.Group("/logs")
		logGroup.Use(requireAuth, activity, requireStaff)
		logGroup.GET("", audit(i18n.LogLogList), logHandler.List)
		logGroup.GET("/:id", audit(i18n.LogLogDetails), logHandler.Get)
	}

	return r
}
