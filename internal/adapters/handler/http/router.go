package http

import (
	"net/http"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewHandler(pollHandler *PollHandler, voteHandler *VoteHandler, storeTimeout time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w, true)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(storeTimeout))

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("welcome"))
		})

		r.Route("/polls", func(r chi.Router) {
			r.Post("/", pollHandler.CreatePoll)
			r.Get("/{id}", pollHandler.GetPoll)
			r.Get("/{id}/options", pollHandler.ListOptions)
			r.Get("/{id}/votes", pollHandler.ListVotes)
			r.Post("/{id}/votes", voteHandler.VoteOnPoll)
		})

		r.Get("/options/{id}/votes", pollHandler.ListOptionVotes)
	})

	return r
}
