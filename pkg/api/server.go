// Package api serves the day plan, meetings and task bookkeeping over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/harrisonrobin/dayplan/pkg/app"
	"github.com/harrisonrobin/dayplan/pkg/history"
	"github.com/harrisonrobin/dayplan/pkg/meetings"
	"github.com/harrisonrobin/dayplan/pkg/model"
	"github.com/harrisonrobin/dayplan/pkg/tasks"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// UpcomingWindow is how far ahead /meetings/upcoming looks by default.
const UpcomingWindow = 15 * time.Minute

// Server is the dayplan HTTP API server.
type Server struct {
	app            *app.App
	metricsEnabled bool
}

func NewServer(a *app.App) *Server {
	return &Server{app: a}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// External calendars get 10s each; leave room for the plan on top.
	r.Use(middleware.Timeout(time.Minute))
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	r.Get("/schedule", s.handleSchedule)
	r.Get("/predict", s.handlePredict)

	r.Route("/meetings", func(r chi.Router) {
		r.Get("/", s.handleListMeetings)
		r.Post("/", s.handleAddMeeting)
		r.Get("/upcoming", s.handleUpcoming)
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", s.handleListTasks)
		r.Post("/", s.handleAddTask)
		r.Post("/start", s.handleStartTask)
		r.Post("/complete", s.handleCompleteTask)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

type scheduleResponse struct {
	Date    string        `json:"date"`
	Entries []model.Entry `json:"entries"`
	Lines   []string      `json:"lines"`
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	schedule, err := s.app.Schedule(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if r.URL.Query().Get("format") == "json" {
		entries := []model.Entry(schedule)
		if entries == nil {
			entries = []model.Entry{}
		}
		writeJSON(w, http.StatusOK, scheduleResponse{
			Date:    s.app.Clock.Now().Format("2006-01-02"),
			Entries: entries,
			Lines:   schedule.Lines(),
		})
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	for _, line := range schedule.Lines() {
		w.Write([]byte(line + "\n"))
	}
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	task := strings.TrimSpace(r.URL.Query().Get("task"))
	if task == "" {
		writeError(w, http.StatusBadRequest, "task is required")
		return
	}
	writeJSON(w, http.StatusOK, s.app.Predict(r.Context(), task))
}

func (s *Server) handleListMeetings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, nonNil(s.app.Meetings.LoadToday(r.Context())))
}

func (s *Server) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	within := UpcomingWindow
	if v := r.URL.Query().Get("within"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			writeError(w, http.StatusBadRequest, "within must be a positive duration such as 15m")
			return
		}
		within = d
	}
	writeJSON(w, http.StatusOK, nonNil(s.app.Meetings.Upcoming(r.Context(), within)))
}

type meetingRequest struct {
	Date  string `json:"date"`
	Start string `json:"start"`
	End   string `json:"end"`
	Label string `json:"label"`
}

func (s *Server) handleAddMeeting(w http.ResponseWriter, r *http.Request) {
	var req meetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	m, err := s.app.AddMeeting(req.Date, req.Start, req.End, req.Label)
	if err != nil {
		if errors.Is(err, meetings.ErrInvalidRecord) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

type taskView struct {
	Description     string  `json:"description"`
	EstimateMinutes float64 `json:"estimate_minutes,omitempty"`
	Source          string  `json:"source"`
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	pending, err := s.app.Tasks.Tasks(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	out := make([]taskView, 0, len(pending))
	for _, t := range pending {
		out = append(out, taskView{
			Description:     t.Description,
			EstimateMinutes: t.Estimate.Minutes(),
			Source:          t.Source,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type taskRequest struct {
	Text            string `json:"text"`
	DurationMinutes *int   `json:"duration_minutes,omitempty"`
}

func decodeTask(w http.ResponseWriter, r *http.Request) (taskRequest, bool) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return req, false
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return req, false
	}
	return req, true
}

func (s *Server) handleAddTask(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeTask(w, r)
	if !ok {
		return
	}
	if err := s.app.List.Add(req.Text); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "added"})
}

func (s *Server) handleStartTask(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeTask(w, r)
	if !ok {
		return
	}
	if err := s.app.StartTask(req.Text); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "started"})
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeTask(w, r)
	if !ok {
		return
	}
	minutes := 0
	if req.DurationMinutes != nil {
		if *req.DurationMinutes <= 0 {
			writeError(w, http.StatusBadRequest, history.ErrInvalidDuration.Error())
			return
		}
		minutes = *req.DurationMinutes
	}
	c, err := s.app.CompleteTask(r.Context(), req.Text, minutes)
	if err != nil {
		if errors.Is(err, history.ErrInvalidDuration) || errors.Is(err, tasks.ErrEmptyTask) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "completed",
		"completion": c,
	})
}

func nonNil(ms []model.Meeting) []model.Meeting {
	if ms == nil {
		return []model.Meeting{}
	}
	return ms
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// corsMiddleware adds CORS headers for local front-ends.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
