package internalhttp

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/avolkov/dayplanner/internal/auth"
	"github.com/avolkov/dayplanner/internal/grid"
	"github.com/avolkov/dayplanner/internal/ical"
	"github.com/avolkov/dayplanner/internal/storage"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	log "github.com/sirupsen/logrus"
)

const (
	msgInvalidBody        = "Invalid request body"
	msgInvalidCredentials = "Invalid credentials"
	msgUserExists         = "User already exists"
	msgEventNotFound      = "Event not found"
	msgEventDeleted       = "Event deleted successfully"
	msgServerError        = "Server error"
	msgTokenRequired      = "Authorization token required"
	msgTokenInvalid       = "Token is not valid"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type viewResponse struct {
	View  grid.View       `json:"view"`
	Day   *grid.DayGrid   `json:"day,omitempty"`
	Week  *grid.WeekGrid  `json:"week,omitempty"`
	Month *grid.MonthGrid `json:"month,omitempty"`
}

func (s *Server) routes(mux *runtime.ServeMux) {
	mux.HandlePath(http.MethodPost, "/api/auth/register", s.handleRegister)
	mux.HandlePath(http.MethodPost, "/api/auth/login", s.handleLogin)
	mux.HandlePath(http.MethodGet, "/api/auth/profile", s.handleProfile)
	mux.HandlePath(http.MethodGet, "/api/events", s.handleListEvents)
	mux.HandlePath(http.MethodPost, "/api/events", s.handleCreateEvent)
	mux.HandlePath(http.MethodGet, "/api/events/{id}", s.handleGetEvent)
	// the gateway mux gives the most recently registered pattern priority,
	// so export has to be registered after the {id} routes to win over them
	mux.HandlePath(http.MethodGet, "/api/events/export", s.handleExportEvents)
	mux.HandlePath(http.MethodPut, "/api/events/{id}", s.handleUpdateEvent)
	mux.HandlePath(http.MethodDelete, "/api/events/{id}", s.handleDeleteEvent)
	mux.HandlePath(http.MethodGet, "/api/views/{kind}", s.handleView)
	mux.HandlePath(http.MethodPost, "/api/navigation", s.handleNavigate)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	token, user, err := s.app.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: userResponse{ID: user.ID, Email: user.Email}})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	token, user, err := s.app.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: userResponse{ID: user.ID, Email: user.Email}})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	userID, ok := s.authorize(w, r)
	if !ok {
		return
	}
	user, err := s.app.GetProfile(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{ID: user.ID, Email: user.Email})
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	userID, ok := s.authorize(w, r)
	if !ok {
		return
	}
	events, err := s.app.ListEvents(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	userID, ok := s.authorize(w, r)
	if !ok {
		return
	}
	var fields storage.EventPatch
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeMessage(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	event, err := s.app.CreateEvent(r.Context(), userID, fields)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	userID, ok := s.authorize(w, r)
	if !ok {
		return
	}
	event, err := s.app.GetEvent(r.Context(), userID, pathParams["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	userID, ok := s.authorize(w, r)
	if !ok {
		return
	}
	var patch storage.EventPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeMessage(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	event, err := s.app.UpdateEvent(r.Context(), userID, pathParams["id"], patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	userID, ok := s.authorize(w, r)
	if !ok {
		return
	}
	if err := s.app.RemoveEvent(r.Context(), userID, pathParams["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, msgEventDeleted)
}

func (s *Server) handleExportEvents(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	userID, ok := s.authorize(w, r)
	if !ok {
		return
	}
	events, err := s.app.ListEvents(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="dayplanner.ics"`)
	if _, err := w.Write([]byte(ical.Export(events))); err != nil {
		log.Errorf("failed to write ics response: %v", err)
	}
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	userID, ok := s.authorize(w, r)
	if !ok {
		return
	}
	view, err := grid.ParseView(pathParams["kind"])
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	anchor, err := parseAnchor(r.URL.Query().Get("date"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	events, err := s.app.ListEvents(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := viewResponse{View: view}
	switch view {
	case grid.ViewDay:
		g := grid.ComposeDay(anchor, events)
		resp.Day = &g
	case grid.ViewWeek:
		g := grid.ComposeWeek(anchor, events)
		resp.Week = &g
	case grid.ViewMonth:
		g := grid.ComposeMonth(anchor, events)
		resp.Month = &g
	}
	writeJSON(w, http.StatusOK, resp)
}

type navigationRequest struct {
	CurrentDate time.Time `json:"currentDate"`
	View        string    `json:"view"`
	Action      string    `json:"action,omitempty"`
	SwitchView  string    `json:"switchView,omitempty"`
}

// handleNavigate computes the next (currentDate, view) pair: either a
// prev/next/today shift of the anchor or a view switch that keeps it.
func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	if _, ok := s.authorize(w, r); !ok {
		return
	}
	var req navigationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	view, err := grid.ParseView(req.View)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	state := grid.State{CurrentDate: req.CurrentDate, View: view}
	if req.SwitchView != "" {
		next, err := grid.ParseView(req.SwitchView)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, state.SwitchView(next))
		return
	}

	action, err := grid.ParseAction(req.Action)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, state.Navigate(action, time.Now()))
}

// parseAnchor accepts an RFC3339 instant or a plain date; empty means now.
func parseAnchor(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", s, time.Local)
}

func (s *Server) authorize(w http.ResponseWriter, r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if header == "" || token == header {
		writeMessage(w, http.StatusUnauthorized, msgTokenRequired)
		return "", false
	}
	userID, err := s.app.Authenticate(token)
	if err != nil {
		writeError(w, err)
		return "", false
	}
	return userID, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFoundEvent):
		writeMessage(w, http.StatusNotFound, msgEventNotFound)
	case errors.Is(err, storage.ErrNotFoundUser):
		writeMessage(w, http.StatusNotFound, "User not found")
	case errors.Is(err, storage.ErrDuplicateUser):
		writeMessage(w, http.StatusBadRequest, msgUserExists)
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeMessage(w, http.StatusBadRequest, msgInvalidCredentials)
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrExpiredToken):
		writeMessage(w, http.StatusUnauthorized, msgTokenInvalid)
	case errors.Is(err, storage.ErrIncorrectEvent), errors.Is(err, storage.ErrIncorrectUser):
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		log.Errorf("request failed: %v", err)
		writeMessage(w, http.StatusInternalServerError, msgServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
