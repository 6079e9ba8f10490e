package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/appealsdesk/appeals-registry/internal"
	"github.com/appealsdesk/appeals-registry/internal/appeal"
	"github.com/appealsdesk/appeals-registry/internal/audit"
	"github.com/appealsdesk/appeals-registry/internal/auth"
	"github.com/appealsdesk/appeals-registry/internal/group"
	"github.com/appealsdesk/appeals-registry/internal/permission"
	"github.com/appealsdesk/appeals-registry/internal/role"
	"github.com/appealsdesk/appeals-registry/internal/transport/middleware"
	"github.com/appealsdesk/appeals-registry/internal/transport/swagger"
	"github.com/appealsdesk/appeals-registry/internal/user"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth       *auth.Handler
	Permission *permission.Handler
	Role       *role.Handler
	Group      *group.Handler
	User       *user.Handler
	Appeal     *appeal.Handler
	Audit      *audit.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, serverCfg *internal.ServerConfig, h Handlers, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)
	gate := middleware.NewAccessGate(serverCfg.DashboardFallback(), logger)

	router.Use(middleware.CORS(serverCfg.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.Refresh)
			sr.Post("/logout", h.Auth.Logout)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/auth/me", h.Auth.Me)

			pr.Route("/permissions", func(sr chi.Router) {
				sr.Get("/", h.Permission.List)
				sr.Get("/grouped", h.Permission.ListGrouped)
				sr.Get("/abilities", h.Permission.ListAbilities)
				sr.Get("/{id}", h.Permission.Get)

				sr.Group(func(mr chi.Router) {
					mr.Use(gate.RequirePermission(permission.CodeManagePermissions))
					mr.Post("/", h.Permission.Create)
					mr.Put("/{id}", h.Permission.Update)
					mr.Patch("/{id}/active", h.Permission.SetActive)
				})
			})

			pr.Route("/roles", func(sr chi.Router) {
				sr.Get("/", h.Role.List)
				sr.Get("/{id}", h.Role.Get)

				sr.Group(func(mr chi.Router) {
					mr.Use(gate.RequirePermission(permission.CodeManageRoles))
					mr.Post("/", h.Role.Create)
					mr.Put("/{id}", h.Role.Update)
					mr.Put("/{id}/permissions", h.Role.SetPermissions)
					mr.Delete("/{id}", h.Role.Delete)
				})
			})

			pr.Route("/permission-groups", func(sr chi.Router) {
				sr.Get("/", h.Group.List)
				sr.Get("/{id}", h.Group.Get)

				sr.Group(func(mr chi.Router) {
					mr.Use(gate.RequirePermission(permission.CodeManagePermissionGroups))
					mr.Post("/", h.Group.Create)
					mr.Put("/{id}", h.Group.Update)
					mr.Put("/{id}/permissions", h.Group.SetPermissions)
					mr.Delete("/{id}", h.Group.Delete)
				})

				sr.Group(func(mr chi.Router) {
					mr.Use(gate.RequirePermission(permission.CodeManageUserPermissions))
					mr.Post("/{id}/apply", h.Group.Apply)
				})
			})

			pr.Route("/users", func(sr chi.Router) {
				sr.Group(func(mr chi.Router) {
					mr.Use(gate.RequirePermission(permission.CodeViewUsers))
					mr.Get("/", h.User.List)
					mr.Get("/{id}", h.User.Get)
					mr.Get("/{id}/permissions", h.User.GetPermissions)
				})

				sr.Group(func(mr chi.Router) {
					mr.Use(gate.RequirePermission(permission.CodeCreateUser))
					mr.Post("/", h.User.Create)
				})

				sr.Group(func(mr chi.Router) {
					mr.Use(gate.RequirePermission(permission.CodeEditUser))
					mr.Put("/{id}", h.User.Update)
				})

				sr.Group(func(mr chi.Router) {
					mr.Use(gate.RequirePermission(permission.CodeDeleteUser))
					mr.Delete("/{id}", h.User.Delete)
				})

				sr.Group(func(mr chi.Router) {
					mr.Use(gate.RequirePermission(permission.CodeManageUserRoles))
					mr.Post("/{id}/roles", h.User.AssignRole)
					mr.Delete("/{id}/roles/{roleID}", h.User.RevokeRole)
				})

				sr.Group(func(mr chi.Router) {
					mr.Use(gate.RequirePermission(permission.CodeManageUserPermissions))
					mr.Post("/{id}/permissions", h.User.GrantPermission)
					mr.Delete("/{id}/permissions/{code}", h.User.RevokePermission)
				})

				sr.Group(func(mr chi.Router) {
					mr.Use(gate.RequirePermission(permission.CodeResetUserPassword))
					mr.Post("/{id}/reset-password", h.User.ResetPassword)
				})
			})

			pr.Route("/appeals", func(sr chi.Router) {
				sr.Group(func(mr chi.Router) {
					mr.Use(gate.RequireAny(permission.CodeViewAppeals, permission.CodeViewAppealDetails))
					mr.Get("/", h.Appeal.List)
					mr.Get("/{id}", h.Appeal.Get)
				})

				sr.Group(func(mr chi.Router) {
					mr.Use(gate.RequirePermission(permission.CodeCreateAppeal))
					mr.Post("/", h.Appeal.Create)
				})

				sr.Group(func(mr chi.Router) {
					mr.Use(gate.RequirePermission(permission.CodeEditAppeal))
					mr.Put("/{id}", h.Appeal.Update)
				})

				sr.Group(func(mr chi.Router) {
					mr.Use(gate.RequirePermission(permission.CodeAssignAppeal))
					mr.Post("/{id}/assign", h.Appeal.Assign)
				})

				sr.Group(func(mr chi.Router) {
					mr.Use(gate.RequirePermission(permission.CodeCompleteAppeal))
					mr.Post("/{id}/complete", h.Appeal.Complete)
				})

				sr.Group(func(mr chi.Router) {
					mr.Use(gate.RequirePermission(permission.CodeDeleteAppeal))
					mr.Delete("/{id}", h.Appeal.Delete)
				})

				sr.Group(func(mr chi.Router) {
					mr.Use(gate.RequirePermission(permission.CodeExportAppeals))
					mr.Get("/export", h.Appeal.Export)
				})
			})

			pr.Route("/audit-logs", func(sr chi.Router) {
				sr.Group(func(mr chi.Router) {
					mr.Use(gate.RequirePermission(permission.CodeViewAuditLogs))
					mr.Get("/", h.Audit.List)
				})
				sr.Group(func(mr chi.Router) {
					mr.Use(gate.RequirePermission(permission.CodeExportAuditLogs))
					mr.Get("/export", h.Audit.Export)
				})
			})
		})
	})
}
