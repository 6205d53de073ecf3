package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (c controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)
	r.Use(cors.AllowAll().Handler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", c.login)
			r.Get("/me", c.me)
		})

		r.Route("/watch", func(r chi.Router) {
			r.Get("/ws", c.serveWS)
			r.Get("/find-room/{pass-code}", c.findRoom)
			r.Route("/room/{pass-code}", func(r chi.Router) {
				r.Post("/join", c.joinRoom)
				r.Get("/preview", c.roomPreview)
				r.Group(func(r chi.Router) {
					r.Use(c.privilegedMw)
					r.Patch("/add-wait-time", c.addWaitTime)
					r.Patch("/start-now", c.startNow)
				})
			})
			r.With(c.privilegedMw).Get("/", c.watchList)
		})

		r.Route("/shows", func(r chi.Router) {
			r.Get("/", c.listShows)
			r.Group(func(r chi.Router) {
				r.Use(c.privilegedMw)
				r.Post("/", c.createShow)
				r.Delete("/{show-id}", c.deleteShow)
				r.Post("/{show-id}/resubmit", c.resubmitShow)
			})
		})
	})

	return r
}
