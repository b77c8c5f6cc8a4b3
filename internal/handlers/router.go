package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/marbabud/domownik/internal/blobstore"
	"github.com/marbabud/domownik/internal/config"
	"github.com/marbabud/domownik/internal/database"
	"github.com/marbabud/domownik/internal/middleware"
	"github.com/marbabud/domownik/internal/models"
	"github.com/marbabud/domownik/internal/notify"
	"github.com/marbabud/domownik/internal/protocols"
	"github.com/marbabud/domownik/internal/store"
)

// Router wraps the mux router with the application's collaborators.
type Router struct {
	*mux.Router
	db    *database.DB
	cfg   *config.Config
	repo  *protocols.Repository
	blobs *blobstore.Store
	hub   *notify.Hub
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(db *database.DB, cfg *config.Config, repo *protocols.Repository, blobs *blobstore.Store, hub *notify.Hub) *Router {
	r := &Router{
		Router: mux.NewRouter(),
		db:     db,
		cfg:    cfg,
		repo:   repo,
		blobs:  blobs,
		hub:    hub,
	}

	auth := middleware.AuthMiddleware(cfg.JWTSecret)
	monter := middleware.RequireRole(models.RoleMonter)
	sprzedawca := middleware.RequireRole(models.RoleSprzedawca)
	anyRole := middleware.RequireRole(models.RoleMonter, models.RoleSprzedawca)
	admin := middleware.RequireRole(models.RoleAdmin)

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	// Auth routes
	authRoutes := r.PathPrefix("/auth").Subrouter()
	authRoutes.HandleFunc("/login", r.login).Methods("POST")
	authRoutes.HandleFunc("/register", r.register).Methods("POST")
	authRoutes.HandleFunc("/logout", r.logout).Methods("POST")

	// Share-link handoff: the access code in the query string is the only
	// authorization, matching the printed/QR deep link.
	r.HandleFunc("/uzupelnij/{kind}/{id}", r.resolveShareLink).Methods("GET")

	// Draft quarantine (installers)
	drafts := r.PathPrefix("/api/drafts").Subrouter()
	drafts.Use(auth, monter)
	drafts.HandleFunc("", r.listDrafts).Methods("GET")
	drafts.HandleFunc("", r.createDraft).Methods("POST")
	drafts.HandleFunc("/finalize-all", r.finalizeAllDrafts).Methods("POST")
	drafts.HandleFunc("/{id}", r.getDraft).Methods("GET")
	drafts.HandleFunc("/{id}", r.updateDraft).Methods("PUT")
	drafts.HandleFunc("/{id}", r.deleteDraft).Methods("DELETE")
	drafts.HandleFunc("/{id}/finalize", r.finalizeDraft).Methods("POST")

	// Protocol collections
	prot := r.PathPrefix("/api/protocols/{kind}").Subrouter()
	prot.Use(auth)

	protRead := prot.NewRoute().Subrouter()
	protRead.Use(anyRole)
	protRead.HandleFunc("", r.listProtocols).Methods("GET")
	protRead.HandleFunc("/awaiting", r.listAwaiting).Methods("GET")
	protRead.HandleFunc("/by-code/{code}", r.findByAccessCode).Methods("GET")
	protRead.HandleFunc("/{id}", r.getProtocol).Methods("GET")
	protRead.HandleFunc("/{id}/pdf", r.downloadProtocolPDF).Methods("GET")
	protRead.HandleFunc("/{id}/share-link", r.getShareLink).Methods("GET")
	protRead.HandleFunc("/{id}/images/{imageId}", r.getImage).Methods("GET")

	protMonter := prot.NewRoute().Subrouter()
	protMonter.Use(monter)
	protMonter.HandleFunc("", r.createMeasuredProtocol).Methods("POST")
	protMonter.HandleFunc("/{id}/images", r.uploadImage).Methods("POST")
	protMonter.HandleFunc("/{id}/images/{imageId}", r.deleteImage).Methods("DELETE")

	protSeller := prot.NewRoute().Subrouter()
	protSeller.Use(sprzedawca)
	protSeller.HandleFunc("/{id}/complete", r.completeBySeller).Methods("POST")

	protAdmin := prot.NewRoute().Subrouter()
	protAdmin.Use(admin)
	protAdmin.HandleFunc("/{id}/status", r.updateProtocolStatus).Methods("PUT")
	protAdmin.HandleFunc("/{id}", r.deleteProtocol).Methods("DELETE")

	// Virtual client folders and dashboard
	views := r.PathPrefix("/api").Subrouter()
	views.Use(auth, anyRole)
	views.HandleFunc("/folders", r.listFolders).Methods("GET")
	views.HandleFunc("/dashboard", r.dashboard).Methods("GET")

	// User administration
	users := r.PathPrefix("/api/admin/users").Subrouter()
	users.Use(auth, admin)
	users.HandleFunc("", r.listUsers).Methods("GET")
	users.HandleFunc("/{id}", r.updateUser).Methods("PUT")
	users.HandleFunc("/{id}", r.deleteUser).Methods("DELETE")

	// Live workflow notifications
	r.Handle("/ws", auth(http.HandlerFunc(r.serveNotifications))).Methods("GET")

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"server": "domownik",
	})
}

func (r *Router) serveNotifications(w http.ResponseWriter, req *http.Request) {
	notify.ServeWs(r.hub, w, req, middleware.UserFromContext(req.Context()))
}

// kindFromRequest parses the {kind} path variable.
func kindFromRequest(req *http.Request) (protocols.Kind, error) {
	return protocols.ParseKind(mux.Vars(req)["kind"])
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondStoreError maps store failures onto HTTP statuses: missing documents
// are 404, unknown kinds 400, everything else is a transport-level 500.
func respondStoreError(w http.ResponseWriter, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, protocols.ErrUnknownTarget):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "Database error")
	}
}
