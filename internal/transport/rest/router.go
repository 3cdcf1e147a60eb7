package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/jmoiron/sqlx"

	"github.com/frahmantamala/training-management/internal/auth"
	"github.com/frahmantamala/training-management/internal/course"
	"github.com/frahmantamala/training-management/internal/dashboard"
	"github.com/frahmantamala/training-management/internal/importer"
	"github.com/frahmantamala/training-management/internal/organization"
	"github.com/frahmantamala/training-management/internal/transport/middleware"
	"github.com/frahmantamala/training-management/internal/transport/swagger"
	"github.com/frahmantamala/training-management/internal/user"
	"github.com/frahmantamala/training-management/internal/workspace"
	"github.com/frahmantamala/training-management/pkg/metrics"
)

// Handlers groups everything the router mounts. A nil handler leaves its
// routes out.
type Handlers struct {
	Auth         *auth.Handler
	Organization *organization.Handler
	Course       *course.Handler
	Dashboard    *dashboard.Handler
	Workspace    *workspace.Handler
	Import       *importer.Handler
	User         *user.Handler
}

type RouterOptions struct {
	AllowedOrigins string
	OpenAPIPath    string
	MetricsEnabled bool
	MetricsPath    string
}

func RegisterAllRoutes(router *chi.Mux, db *sqlx.DB, h Handlers, opts RouterOptions, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)
	rbac := auth.NewRBACAuthorization(logger)

	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.TraceID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	if opts.MetricsEnabled {
		router.Use(middleware.Metrics)
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.Handle(path, metrics.Handler())
	}

	openAPIPath := opts.OpenAPIPath
	if openAPIPath == "" {
		openAPIPath = "./api/openapi.yml"
	}
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, openAPIPath)
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Auth == nil {
			return
		}

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Post("/logout", h.Auth.Logout)
			sr.With(h.Auth.AuthMiddleware).Post("/change-password", h.Auth.ChangePassword)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)
			pr.Use(middleware.PrincipalContext)

			pr.Get("/users/me", h.Auth.Me)

			pr.Group(func(ar chi.Router) {
				ar.Use(rbac.RequirePasswordChanged())
				registerDomainRoutes(ar, h, rbac)
			})
		})
	})
}

func registerDomainRoutes(r chi.Router, h Handlers, rbac *auth.RBACAuthorization) {
	if h.Organization != nil {
		r.Get("/organization/companies", h.Organization.GetCompanies)
	}

	if h.Course != nil {
		r.Route("/courses", func(cr chi.Router) {
			cr.Get("/", h.Course.ListCourses)
			cr.Post("/", h.Course.CreateCourse)
			cr.Get("/export", h.Course.ExportCourses)
			cr.Get("/{id}", h.Course.GetCourse)
			cr.Put("/{id}", h.Course.UpdateCourse)
			cr.Delete("/{id}", h.Course.DeleteCourse)
		})
	}

	if h.Dashboard != nil {
		r.Get("/dashboard", h.Dashboard.GetDashboard)
	}

	if h.Workspace != nil {
		r.Route("/workspace", func(wr chi.Router) {
			wr.Post("/view", h.Workspace.SetView)
			wr.Get("/selection", h.Workspace.GetSelection)
			wr.Post("/selection/toggle", h.Workspace.Toggle)
			wr.Post("/selection/all", h.Workspace.SelectAll)
			wr.Post("/selection/delete", h.Workspace.BatchDelete)
		})
	}

	if h.Import != nil {
		r.Route("/imports", func(ir chi.Router) {
			ir.Get("/template", h.Import.GetTemplate)
			ir.Post("/", h.Import.CreateImport)
			ir.Get("/{id}", h.Import.GetImport)
			ir.Put("/{id}", h.Import.ResubmitImport)
			ir.Delete("/{id}", h.Import.DeleteImport)
			ir.Post("/{id}/back", h.Import.BackImport)
			ir.Post("/{id}/commit", h.Import.CommitImport)
		})
	}

	if h.User != nil {
		r.Route("/admin/users", func(ur chi.Router) {
			ur.Use(rbac.RequireSystemAdmin())
			ur.Get("/", h.User.ListUsers)
			ur.Post("/", h.User.CreateUser)
			ur.Get("/{id}", h.User.GetUser)
			ur.Put("/{id}", h.User.UpdateUser)
			ur.Delete("/{id}", h.User.DeleteUser)
		})
	}
}
