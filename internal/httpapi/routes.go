package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func SetupRoutes(s Session) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", Healthz)
	r.Get("/state", GetState(s))
	r.Get("/transcript", GetTranscript(s))

	// Commands
	r.Post("/games", CreateGame(s))
	r.Post("/games/{gameID}/join", JoinGame(s))
	r.Post("/game/character", SelectCharacter(s))
	r.Post("/game/actions", DoAction(s))
	r.Post("/echo", Echo(s))
	r.Post("/send", SendRaw(s))
	return r
}
