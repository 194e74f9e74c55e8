package www

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"

	"github.com/Konlor08/PigOnTime/engine"
	"github.com/Konlor08/PigOnTime/store"
)

type Handlers struct {
	engine   *engine.Engine
	sessions *sessions.CookieStore
	eventHub *EventHub
}

// NewRouter builds the JSON API router. The returned stop function
// shuts down the SSE hub.
func NewRouter(eng *engine.Engine) (http.Handler, func()) {
	hub := NewEventHub()
	hub.Start()
	hub.SetupEngineListeners(eng)

	h := &Handlers{
		engine:   eng,
		sessions: newSessionStore(eng.AppConfig().Web.SessionSecret),
		eventHub: hub,
	}
	h.ensureDefaultManager(eng.DB())

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Post("/api/login", h.handleLogin)
	r.Post("/api/logout", h.handleLogout)
	r.Get("/api/health", h.apiHealth)

	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)

		r.Get("/events", hub.SSEHandler)
		r.Get("/api/me", h.apiMe)
		r.Get("/api/board", h.apiBoard)
		r.Get("/api/sessions/{id}/track", h.apiTrack)
		r.Get("/api/sessions/{id}/position", h.apiLatestPosition)
		r.Get("/api/farms", h.apiListFarms)
		r.Get("/api/factories", h.apiListFactories)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.requireRole(store.RoleDriver))
		r.Post("/api/trips/arrive-origin", h.apiArriveOrigin)
		r.Post("/api/trips/depart-origin", h.apiDepartOrigin)
		r.Post("/api/trips/arrive-destination", h.apiArriveDestination)
		r.Post("/api/positions", h.apiPostPosition)
		r.Get("/api/tracking/active", h.apiActiveTracking)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.requireRole(store.RoleFactory))
		r.Post("/api/receipts", h.apiConfirmReceipt)
	})

	return r, hub.Stop
}
