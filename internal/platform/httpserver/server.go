package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	ballotengine "ballotroom/contexts/live-meetings/ballot-engine"
	domainerrors "ballotroom/contexts/live-meetings/ballot-engine/domain/errors"
	httptransport "ballotroom/contexts/live-meetings/ballot-engine/transport/http"
	_ "ballotroom/internal/platform/httpserver/docs"
	"ballotroom/internal/platform/realtime"

	httpSwagger "github.com/swaggo/http-swagger"
)

type Server struct {
	mux    *http.ServeMux
	logger *slog.Logger
	addr   string
	engine ballotengine.Module
	hub    *realtime.Hub
}

func New(engine ballotengine.Module, hub *realtime.Hub, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:    http.NewServeMux(),
		logger: logger,
		addr:   addr,
		engine: engine,
		hub:    hub,
	}
	s.registerRoutes()
	return s
}

// Start serves until the listener fails or ctx is canceled; cancellation
// drains in-flight requests before returning.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)

	server := &http.Server{Addr: s.addr, Handler: withCORS(s.mux)}
	failed := make(chan error, 1)
	go func() {
		failed <- server.ListenAndServe()
	}()

	select {
	case err := <-failed:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("http server stopping",
			"event", "http_server_stopping",
			"module", "internal/platform/httpserver",
			"layer", "platform",
		)
		return server.Shutdown(shutdownCtx)
	}
}

// Handler exposes the routed mux for tests.
func (s *Server) Handler() http.Handler {
	return withCORS(s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/meetings", s.handleCreateMeeting)
	s.mux.HandleFunc("GET /api/meetings/{meeting_code}", s.handleResolveMeeting)
	s.mux.HandleFunc("GET /api/meetings/{meeting_id}/organizer", s.handleOrganizerView)
	s.mux.HandleFunc("GET /api/meetings/{meeting_id}/report", s.handleGenerateReport)
	s.mux.HandleFunc("POST /api/meetings/{meeting_id}/polls", s.handleCreatePoll)
	s.mux.HandleFunc("GET /api/meetings/{meeting_id}/polls", s.handleListPolls)

	s.mux.HandleFunc("POST /api/participants/join", s.handleJoinMeeting)
	s.mux.HandleFunc("POST /api/participants/{participant_id}/approve", s.handleDecideParticipant)
	s.mux.HandleFunc("GET /api/participants/{participant_id}/status", s.handleParticipantStatus)

	s.mux.HandleFunc("POST /api/polls/{poll_id}/start", s.handleStartPoll)
	s.mux.HandleFunc("POST /api/polls/{poll_id}/close", s.handleClosePoll)
	s.mux.HandleFunc("GET /api/polls/{poll_id}/results", s.handlePollResults)
	s.mux.HandleFunc("POST /api/votes", s.handleSubmitVote)

	s.mux.HandleFunc("GET /ws/meetings/{meeting_id}", s.handleMeetingSocket)
}

func (s *Server) handleCreateMeeting(w http.ResponseWriter, r *http.Request) {
	var req httptransport.CreateMeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.engine.Handler.CreateMeetingHandler(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResolveMeeting(w http.ResponseWriter, r *http.Request) {
	resp, err := s.engine.Handler.ResolveMeetingHandler(r.Context(), r.PathValue("meeting_code"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleOrganizerView(w http.ResponseWriter, r *http.Request) {
	resp, err := s.engine.Handler.OrganizerViewHandler(r.Context(), r.PathValue("meeting_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleJoinMeeting(w http.ResponseWriter, r *http.Request) {
	var req httptransport.JoinMeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.engine.Handler.JoinMeetingHandler(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDecideParticipant(w http.ResponseWriter, r *http.Request) {
	var req httptransport.DecideParticipantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.engine.Handler.DecideParticipantHandler(r.Context(), r.PathValue("participant_id"), req); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, httptransport.AckResponse{Status: "success"})
}

func (s *Server) handleParticipantStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := s.engine.Handler.ParticipantStatusHandler(r.Context(), r.PathValue("participant_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreatePoll(w http.ResponseWriter, r *http.Request) {
	var req httptransport.CreatePollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.engine.Handler.CreatePollHandler(r.Context(), r.PathValue("meeting_id"), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListPolls(w http.ResponseWriter, r *http.Request) {
	resp, err := s.engine.Handler.ListPollsHandler(r.Context(), r.PathValue("meeting_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStartPoll(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Handler.StartPollHandler(r.Context(), r.PathValue("poll_id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, httptransport.AckResponse{Status: "started"})
}

func (s *Server) handleClosePoll(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Handler.ClosePollHandler(r.Context(), r.PathValue("poll_id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, httptransport.AckResponse{Status: "closed"})
}

func (s *Server) handleSubmitVote(w http.ResponseWriter, r *http.Request) {
	var req httptransport.SubmitVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.engine.Handler.SubmitVoteHandler(r.Context(), req); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, httptransport.AckResponse{Status: "vote_submitted"})
}

func (s *Server) handlePollResults(w http.ResponseWriter, r *http.Request) {
	resp, err := s.engine.Handler.PollResultsHandler(r.Context(), r.PathValue("poll_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	artifact, err := s.engine.Handler.GenerateReportHandler(r.Context(), r.PathValue("meeting_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="meeting_report.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact)
}

func (s *Server) handleMeetingSocket(w http.ResponseWriter, r *http.Request) {
	if err := realtime.ServeWS(s.hub, r.PathValue("meeting_id"), w, r); err != nil {
		s.logger.Warn("websocket upgrade failed",
			"event", "http_websocket_upgrade_failed",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"error", err.Error(),
		)
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domainerrors.ErrMeetingNotFound):
		writeError(w, http.StatusNotFound, "meeting_not_found", err.Error())
	case errors.Is(err, domainerrors.ErrParticipantNotFound):
		writeError(w, http.StatusNotFound, "participant_not_found", err.Error())
	case errors.Is(err, domainerrors.ErrPollNotFound):
		writeError(w, http.StatusNotFound, "poll_not_found", err.Error())
	case errors.Is(err, domainerrors.ErrNameTaken):
		writeError(w, http.StatusConflict, "name_taken", err.Error())
	case errors.Is(err, domainerrors.ErrCodeCollision):
		writeError(w, http.StatusConflict, "code_collision", err.Error())
	case errors.Is(err, domainerrors.ErrPollNotActive):
		writeError(w, http.StatusConflict, "poll_not_active", err.Error())
	case errors.Is(err, domainerrors.ErrUnknownOption):
		writeError(w, http.StatusBadRequest, "unknown_option", err.Error())
	case errors.Is(err, domainerrors.ErrInvalidMeetingInput),
		errors.Is(err, domainerrors.ErrInvalidParticipantInput),
		errors.Is(err, domainerrors.ErrInvalidPollInput):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, domainerrors.ErrReportRenderFailed),
		errors.Is(err, domainerrors.ErrPurgeIncomplete):
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, httptransport.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// withCORS mirrors the permissive policy of the reference deployment; the
// join code is the only access gate.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
