package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sourceverifier/internal/domain"
	"sourceverifier/internal/infrastructure/metrics"
	"sourceverifier/internal/usecase"
)

const requesterHeader = "X-Requester-ID"

// Server exposes the verification pipeline over HTTP.
type Server struct {
	verifier *usecase.Verifier
	recorder *metrics.Recorder
	logger   *slog.Logger
}

// New wires the orchestrator into the transport layer. recorder may be nil.
func New(verifier *usecase.Verifier, recorder *metrics.Recorder, logger *slog.Logger) *Server {
	return &Server{verifier: verifier, recorder: recorder, logger: logger}
}

// Routes mounts all handlers on a chi router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/verify", s.handleVerify)
		r.Get("/sources/user/{id}", s.handleUserSources)
		r.Get("/sources/debate/{id}", s.handleDebateSources)
		r.Get("/stats", s.handleStats)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var input domain.VerifyInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.URL == "" {
		writeError(w, http.StatusBadRequest, "invalid payload: url required")
		return
	}

	requesterID := r.Header.Get(requesterHeader)
	if requesterID == "" {
		requesterID = "anonymous"
	}

	result, err := s.verifier.VerifySource(r.Context(), input, requesterID)
	if err != nil {
		s.writeVerifyError(w, input.URL, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// writeVerifyError distinguishes bad input from retrieval failure so the
// submitter knows whether to correct the URL or try another source.
func (s *Server) writeVerifyError(w http.ResponseWriter, url string, err error) {
	if errors.Is(err, domain.ErrInvalidURL) {
		writeError(w, http.StatusBadRequest, domain.ErrInvalidURL.Error())
		return
	}

	var fetchErr *domain.FetchError
	if errors.As(err, &fetchErr) {
		writeError(w, http.StatusBadGateway, "could not retrieve the page: "+string(fetchErr.Kind))
		return
	}

	if s.logger != nil {
		s.logger.Error("verification failed", "url", url, "error", err)
	}
	writeError(w, http.StatusInternalServerError, "verification failed")
}

func (s *Server) handleUserSources(w http.ResponseWriter, r *http.Request) {
	sources, err := s.verifier.ListUserSources(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sources": sources})
}

func (s *Server) handleDebateSources(w http.ResponseWriter, r *http.Request) {
	sources, err := s.verifier.ListDebateSources(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sources": sources})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.verifier.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	payload := map[string]any{"sources": stats}
	if s.recorder != nil {
		payload["runtime"] = s.recorder.Snapshot()
	}
	writeJSON(w, http.StatusOK, payload)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"errors": []string{msg}})
}
