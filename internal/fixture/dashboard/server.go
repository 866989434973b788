// Package dashboard serves a small admin dashboard that honours the selector
// contract the page objects rely on. It backs the end-to-end tests and the
// smoke command when no real dashboard is configured.
package dashboard

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"admin-e2e/internal/domain/entity"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

const sessionCookie = "admin_session"

type Tool struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	IntegrationType string `json:"integrationType"`
	URL             string `json:"url"`
}

type Config struct {
	Credentials entity.Credentials

	// ConfirmDelay is how long after a Delete click the confirmation dialog
	// shows up.
	ConfirmDelay time.Duration
	// SkipConfirmation deletes immediately without showing the dialog.
	SkipConfirmation bool
	// SleepFor bounds the Sleep tool. Zero blocks until the request or the
	// server goes away.
	SleepFor time.Duration

	Seed      []Tool
	LogWriter io.Writer
}

func DefaultConfig() Config {
	return Config{
		Credentials:  entity.DefaultCredentials(),
		ConfirmDelay: 100 * time.Millisecond,
		Seed: []Tool{
			{Name: "Echo", Description: "Returns the text parameter", IntegrationType: "REST", URL: "builtin://echo"},
			{Name: "Sleep", Description: "Never finishes", IntegrationType: "REST", URL: "builtin://sleep"},
		},
		LogWriter: io.Discard,
	}
}

type Server struct {
	cfg      Config
	router   chi.Router
	stop     chan struct{}
	stopOnce sync.Once

	mu       sync.Mutex
	tools    []Tool
	sessions map[string]struct{}
}

func New(cfg Config) *Server {
	if cfg.LogWriter == nil {
		cfg.LogWriter = io.Discard
	}
	if cfg.Credentials.Username == "" {
		cfg.Credentials = entity.DefaultCredentials()
	}

	s := &Server{
		cfg:      cfg,
		stop:     make(chan struct{}),
		sessions: make(map[string]struct{}),
	}
	for _, t := range cfg.Seed {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		s.tools = append(s.tools, t)
	}

	logger := httplog.NewLogger("admin-dashboard", httplog.Options{JSON: true}).Output(cfg.LogWriter)

	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/admin", http.StatusFound)
	})
	r.Get("/login", s.loginPage)
	r.Post("/login", s.login)
	r.Post("/logout", s.logout)

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.requireSession)
		r.Get("/", s.adminPage)
		r.Route("/api/tools", func(r chi.Router) {
			r.Get("/", s.listTools)
			r.Post("/", s.createTool)
			r.Delete("/{id}", s.deleteTool)
			r.Post("/{id}/execute", s.executeTool)
		})
	})

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases requests parked in the Sleep tool.
func (s *Server) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Tools returns a snapshot of the current tools.
func (s *Server) Tools() []Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Tool, len(s.tools))
	copy(out, s.tools)
	return out
}

func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.authenticated(r) {
			next.ServeHTTP(w, r)
			return
		}
		if strings.HasPrefix(r.URL.Path, "/admin/api/") {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		http.Redirect(w, r, "/login", http.StatusFound)
	})
}

func (s *Server) authenticated(r *http.Request) bool {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[c.Value]
	return ok
}

func (s *Server) loginPage(w http.ResponseWriter, r *http.Request) {
	if s.authenticated(r) {
		http.Redirect(w, r, "/admin", http.StatusFound)
		return
	}
	render(w, http.StatusOK, "login.html", loginView{})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		render(w, http.StatusBadRequest, "login.html", loginView{Error: "Malformed form"})
		return
	}

	if r.PostForm.Get("email") != s.cfg.Credentials.Username || r.PostForm.Get("password") != s.cfg.Credentials.Password {
		render(w, http.StatusUnauthorized, "login.html", loginView{Error: "Invalid email or password", Email: r.PostForm.Get("email")})
		return
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = struct{}{}
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: id, Path: "/", HttpOnly: true})
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		s.mu.Lock()
		delete(s.sessions, c.Value)
		s.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) adminPage(w http.ResponseWriter, r *http.Request) {
	render(w, http.StatusOK, "admin.html", adminView{
		Tools:          s.Tools(),
		ConfirmDelayMs: s.cfg.ConfirmDelay.Milliseconds(),
		SkipConfirm:    s.cfg.SkipConfirmation,
	})
}

func (s *Server) listTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Tools())
}

func (s *Server) createTool(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(1 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	t := Tool{
		ID:              uuid.NewString(),
		Name:            strings.TrimSpace(r.FormValue("name")),
		Description:     r.FormValue("description"),
		IntegrationType: r.FormValue("integrationType"),
		URL:             r.FormValue("url"),
	}
	if t.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	s.mu.Lock()
	s.tools = append(s.tools, t)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) deleteTool(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tools {
		if t.ID == id {
			s.tools = append(s.tools[:i], s.tools[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "tool not found"})
}

func (s *Server) executeTool(w http.ResponseWriter, r *http.Request) {
	tool, ok := s.find(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "tool not found"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	params := strings.TrimSpace(string(body))
	if params != "" && !gjson.Valid(params) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "parameters must be JSON"})
		return
	}

	switch behaviourOf(tool) {
	case "echo":
		writeJSON(w, http.StatusOK, map[string]string{"result": gjson.Get(params, "text").String()})
	case "sleep":
		var limit <-chan time.Time
		if s.cfg.SleepFor > 0 {
			timer := time.NewTimer(s.cfg.SleepFor)
			defer timer.Stop()
			limit = timer.C
		}
		select {
		case <-r.Context().Done():
		case <-s.stop:
		case <-limit:
			writeJSON(w, http.StatusOK, map[string]string{"result": "slept"})
		}
	default:
		writeJSON(w, http.StatusOK, map[string]string{"result": "ok"})
	}
}

func (s *Server) find(id string) (Tool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tools {
		if t.ID == id {
			return t, true
		}
	}
	return Tool{}, false
}

// behaviourOf picks the builtin a tool runs: by its URL's last segment, then
// by its name.
func behaviourOf(t Tool) string {
	u := strings.ToLower(strings.TrimRight(t.URL, "/"))
	if i := strings.LastIndexAny(u, "/:"); i >= 0 {
		u = u[i+1:]
	}
	switch u {
	case "echo", "sleep":
		return u
	}

	switch strings.ToLower(t.Name) {
	case "echo", "sleep":
		return strings.ToLower(t.Name)
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
