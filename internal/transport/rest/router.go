package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/mlavigne/client-management/internal/access"
	"github.com/mlavigne/client-management/internal/client"
	"github.com/mlavigne/client-management/internal/codeset"
	"github.com/mlavigne/client-management/internal/transport/middleware"
	"github.com/mlavigne/client-management/internal/transport/swagger"
)

// RegisterAllRoutes wires every handler under /api/v1. Lookup routes need
// only authentication; the client feature and the administration screens are
// each gated behind their view.
func RegisterAllRoutes(
	router *chi.Mux,
	db *sql.DB,
	verifier *middleware.TokenVerifier,
	resolver *access.Resolver,
	codeSetHandler *codeset.Handler,
	clientHandler *client.Handler,
	accessHandler *access.Handler,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
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

		r.Group(func(pr chi.Router) {
			pr.Use(verifier.Middleware)

			// Lookup routes: any authenticated user populates dropdowns.
			pr.Route("/code-sets", func(cr chi.Router) {
				cr.Get("/{typeCode}", codeSetHandler.GetGroup)
				cr.Get("/{typeCode}/{code}", codeSetHandler.GetLabel)
			})

			pr.Route("/clients", func(cr chi.Router) {
				cr.Group(func(rr chi.Router) {
					rr.Use(middleware.RequirePrivilege(resolver, access.ViewClients, access.PrivilegeRead, logger))
					rr.Get("/", clientHandler.List)
					rr.Get("/{id}", clientHandler.Get)
				})
				cr.Group(func(wr chi.Router) {
					wr.Use(middleware.RequirePrivilege(resolver, access.ViewClients, access.PrivilegeWrite, logger))
					wr.Post("/", clientHandler.Create)
					wr.Put("/{id}", clientHandler.Update)
					wr.Delete("/{id}", clientHandler.Deactivate)
					wr.Post("/{id}/reactivate", clientHandler.Reactivate)
				})
			})

			pr.Route("/admin/code-sets", func(ar chi.Router) {
				ar.Use(middleware.RequirePrivilege(resolver, access.ViewCodeSetAdmin, access.PrivilegeAdmin, logger))
				ar.Get("/{typeCode}", codeSetHandler.ListType)
				ar.Post("/", codeSetHandler.Create)
				ar.Put("/{id}", codeSetHandler.Update)
				ar.Delete("/{id}", codeSetHandler.Deactivate)
				ar.Post("/{id}/reactivate", codeSetHandler.Reactivate)
			})

			pr.Route("/admin", func(ar chi.Router) {
				ar.Use(middleware.RequirePrivilege(resolver, access.ViewAccessAdmin, access.PrivilegeAdmin, logger))

				ar.Get("/views", accessHandler.ListViews)
				ar.Post("/views", accessHandler.CreateView)
				ar.Get("/access-types", accessHandler.ListAccessTypes)
				ar.Post("/access-types", accessHandler.CreateAccessType)
				ar.Put("/access-types/{accessTypeCode}/views/{viewCode}", accessHandler.SetDefaultGrant)

				ar.Get("/users/{userID}/grants", accessHandler.ListUserGrants)
				ar.Put("/users/{userID}/grants/{viewCode}", accessHandler.SetGrant)
				ar.Delete("/users/{userID}/grants/{viewCode}", accessHandler.RemoveGrant)
				ar.Put("/users/{userID}/access-type", accessHandler.AssignAccessType)
				ar.Get("/users/{userID}/effective/{viewCode}", accessHandler.Effective)
			})
		})
	})
}
