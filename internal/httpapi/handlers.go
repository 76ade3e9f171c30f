package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/DoyleJ11/lobby-client/internal/client"
	"github.com/DoyleJ11/lobby-client/internal/ws"
)

const maxBody = 64 << 10

// Session is the part of client.Client the debug API drives.
type Session interface {
	View(ctx context.Context) (client.View, error)
	CreateGame(ctx context.Context) error
	JoinGame(ctx context.Context, gameID string) error
	SelectCharacter(ctx context.Context, name string) error
	DoActionIndex(ctx context.Context, index int) error
	DoAction(ctx context.Context, action string) error
	Echo(ctx context.Context, text string) error
	SendRaw(ctx context.Context, payload string) error
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func GetState(s Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := s.View(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func GetTranscript(s Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := s.View(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Lines []string `json:"lines"`
		}{Lines: v.State.Transcript})
	}
}

func CreateGame(s Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond(w, s.CreateGame(r.Context()))
	}
}

func JoinGame(s Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond(w, s.JoinGame(r.Context(), chi.URLParam(r, "gameID")))
	}
}

func SelectCharacter(s Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name string `json:"name"`
		}
		if !readJSON(w, r, &body) {
			return
		}
		respond(w, s.SelectCharacter(r.Context(), body.Name))
	}
}

func DoAction(s Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Index  *int    `json:"index"`
			Action *string `json:"action"`
		}
		if !readJSON(w, r, &body) {
			return
		}
		switch {
		case body.Index != nil && body.Action == nil:
			respond(w, s.DoActionIndex(r.Context(), *body.Index))
		case body.Action != nil && body.Index == nil:
			respond(w, s.DoAction(r.Context(), *body.Action))
		default:
			http.Error(w, "exactly one of index or action is required", http.StatusBadRequest)
		}
	}
}

func Echo(s Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Text string `json:"text"`
		}
		if !readJSON(w, r, &body) {
			return
		}
		respond(w, s.Echo(r.Context(), body.Text))
	}
}

func SendRaw(s Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}
		respond(w, s.SendRaw(r.Context(), string(payload)))
	}
}

func readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(dst); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return false
	}
	return true
}

func respond(w http.ResponseWriter, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, struct {
		Status string `json:"status"`
	}{Status: "sent"})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, client.ErrIdentityPending), errors.Is(err, client.ErrNoActiveGame):
		status = http.StatusConflict
	case errors.Is(err, client.ErrBlankCharacter), errors.Is(err, client.ErrActionOutOfRange):
		status = http.StatusBadRequest
	case errors.Is(err, ws.ErrNotConnected):
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, struct {
		Error string `json:"error"`
	}{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
