package http

import (
	"net/http"

	"github.com/evoteadm/evote/internal/core/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Handlers struct {
	Session     *SessionHandler
	Poll        *PollHandler
	Participant *ParticipantHandler
	Vote        *VoteHandler
	Results     *ResultsHandler
	Audit       *AuditHandler
}

func NewHandler(sessions ports.SessionService, h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(AuthMiddleware(sessions))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", h.Session.Login)
		r.Post("/auth/logout", h.Session.Logout)

		r.Route("/polls", func(r chi.Router) {
			r.Post("/", h.Poll.CreatePoll)
			r.Get("/", h.Poll.ListPolls)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Poll.GetPoll)
				r.Patch("/", h.Poll.UpdatePoll)
				r.Delete("/", h.Poll.DeletePoll)
				r.Get("/permissions", h.Poll.GetPermissions)

				r.Post("/roles", h.Poll.AssignRole)
				r.Delete("/roles/{userID}/{relation}", h.Poll.RemoveRole)

				r.Route("/participants", func(r chi.Router) {
					r.Post("/", h.Participant.Enroll)
					r.Get("/", h.Participant.List)
					r.Delete("/{participantID}", h.Participant.Remove)
					r.Post("/{participantID}/token", h.Participant.RegenerateToken)
					r.Post("/{participantID}/in-person", h.Vote.MarkInPersonVoter)
				})

				r.Post("/token-viewed", h.Participant.MarkTokenViewed)
				r.Post("/vote/auth", h.Vote.Authenticate)
				r.Post("/votes", h.Vote.SubmitVote)
				r.Get("/results", h.Results.GetResults)
				r.Get("/audit", h.Audit.ListEvents)
			})
		})
	})

	return r
}
