package apiapp

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/carambo/turnero/internal/middleware"
	"github.com/carambo/turnero/internal/schedule"
	"github.com/carambo/turnero/internal/security"
)

const (
	sessionCookieName = "turnero_session"
	csrfHeaderName    = "X-CSRF-Token"
)

type contextKey string

const sessionContextKey contextKey = "session"

type Config struct {
	Addr              string
	DataPath          string
	CrewDir           string
	PhotoDir          string
	AdminUsername     string
	AdminPasswordHash string
	SessionTTL        time.Duration
}

func DefaultConfigFromEnv() Config {
	return Config{
		Addr:              envOrDefault("API_ADDR", ":8080"),
		DataPath:          envOrDefault("DATA_PATH", "turnero_data.json"),
		CrewDir:           envOrDefault("CREW_DIR", "crew"),
		PhotoDir:          envOrDefault("PHOTO_DIR", "photos"),
		AdminUsername:     strings.TrimSpace(os.Getenv("ADMIN_USERNAME")),
		AdminPasswordHash: strings.TrimSpace(os.Getenv("ADMIN_PASSWORD_HASH")),
		SessionTTL:        12 * time.Hour,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type assignRequest struct {
	Caja  int    `json:"caja"`
	Turno string `json:"turno"`
	Name  string `json:"name"`
}

type unassignRequest struct {
	Caja  int    `json:"caja"`
	Turno string `json:"turno"`
}

type setTimesRequest struct {
	Caja    int    `json:"caja"`
	Turno   string `json:"turno"`
	Entrada string `json:"entrada"`
	Salida  string `json:"salida"`
}

type statusRequest struct {
	Status string `json:"status"`
	Name   string `json:"name"`
}

type upsertCodeRequest struct {
	Signature string `json:"signature"`
	Codigo    string `json:"codigo"`
}

type setWeekRequest struct {
	Week string `json:"week"`
}

type personRequest struct {
	Name         string  `json:"name"`
	Active       *bool   `json:"active"`
	IsManager    bool    `json:"isManager"`
	ContractType string  `json:"contractType"`
	WeeklyHours  float64 `json:"weeklyHours"`
}

type sessionRecord struct {
	ID        string
	CSRFToken string
	ExpiresAt time.Time
}

type server struct {
	cfg   Config
	store *schedule.Store

	mu       sync.Mutex
	sessions map[string]*sessionRecord
}

func newServer(cfg Config, store *schedule.Store) *server {
	return &server{
		cfg:      cfg,
		store:    store,
		sessions: map[string]*sessionRecord{},
	}
}

func Run(ctx context.Context, cfg Config) error {
	if cfg.AdminUsername == "" || cfg.AdminPasswordHash == "" {
		return errors.New("ADMIN_USERNAME and ADMIN_PASSWORD_HASH are required")
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 12 * time.Hour
	}

	store := schedule.NewStore(cfg.DataPath, cfg.CrewDir)
	if err := store.Load(); err != nil {
		return fmt.Errorf("load schedule data: %w", err)
	}
	if cfg.PhotoDir != "" {
		if err := os.MkdirAll(cfg.PhotoDir, 0o755); err != nil {
			return fmt.Errorf("create photo directory: %w", err)
		}
	}

	s := newServer(cfg, store)

	handler := middleware.Chain(
		s.routes(),
		middleware.SecurityHeaders(middleware.SecurityHeadersConfig{
			ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
			NoStore:               true,
		}),
	)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("turnero api listening on http://localhost%s", cfg.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/health", http.HandlerFunc(s.health))
	mux.Handle("/api/auth/login", http.HandlerFunc(s.login))
	mux.Handle("/api/auth/me", middleware.Chain(http.HandlerFunc(s.me), s.requireAdmin))
	mux.Handle("/api/auth/csrf", middleware.Chain(http.HandlerFunc(s.csrfToken), s.requireAdmin))
	mux.Handle("/api/auth/logout", middleware.Chain(http.HandlerFunc(s.logout), s.requireAdmin, s.csrfProtect))
	mux.Handle("/api/config", middleware.Chain(http.HandlerFunc(s.configHandler), s.requireAdmin))
	mux.Handle("/api/week", middleware.Chain(http.HandlerFunc(s.weekHandler), s.requireAdmin, s.csrfProtect))
	mux.Handle("/api/schedule/", middleware.Chain(http.HandlerFunc(s.scheduleHandler), s.requireAdmin, s.csrfProtect))
	mux.Handle("/api/codes", middleware.Chain(http.HandlerFunc(s.codesHandler), s.requireAdmin, s.csrfProtect))
	mux.Handle("/api/personnel", middleware.Chain(http.HandlerFunc(s.personnelHandler), s.requireAdmin, s.csrfProtect))
	mux.Handle("/api/personnel/", middleware.Chain(http.HandlerFunc(s.personnelItemHandler), s.requireAdmin, s.csrfProtect))
	mux.Handle("/api/report/week", middleware.Chain(http.HandlerFunc(s.weekReportHandler), s.requireAdmin))
	mux.Handle("/api/export/planilla.xlsx", middleware.Chain(http.HandlerFunc(s.exportPlanilla), s.requireAdmin))
	mux.Handle("/api/export/codes.xlsx", middleware.Chain(http.HandlerFunc(s.exportCodes), s.requireAdmin))
	mux.Handle("/api/backup", middleware.Chain(http.HandlerFunc(s.backupHandler), s.requireAdmin))
	mux.Handle("/api/restore", middleware.Chain(http.HandlerFunc(s.restoreHandler), s.requireAdmin, s.csrfProtect))
	return mux
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	if req.Username != s.cfg.AdminUsername || !security.VerifyPassword(req.Password, s.cfg.AdminPasswordHash) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	sess, err := s.createSession()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "authentication failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(s.cfg.SessionTTL.Seconds()),
		Expires:  sess.ExpiresAt,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "authenticated"})
}

func (s *server) me(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sess := sessionFromContext(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"username":  s.cfg.AdminUsername,
		"expiresAt": sess.ExpiresAt,
	})
}

func (s *server) csrfToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sess := sessionFromContext(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"csrfToken": sess.CSRFToken})
}

func (s *server) logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if sess := sessionFromContext(r.Context()); sess != nil {
		s.deleteSession(sess.ID)
	}
	expireSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "signed out"})
}

func (s *server) createSession() (*sessionRecord, error) {
	id, err := randomToken(32)
	if err != nil {
		return nil, err
	}
	csrf, err := randomToken(32)
	if err != nil {
		return nil, err
	}
	sess := &sessionRecord{
		ID:        id,
		CSRFToken: csrf,
		ExpiresAt: time.Now().UTC().Add(s.cfg.SessionTTL),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for existingID, existing := range s.sessions {
		if time.Now().UTC().After(existing.ExpiresAt) {
			delete(s.sessions, existingID)
		}
	}
	s.sessions[id] = sess
	return sess, nil
}

func (s *server) lookupSession(id string) *sessionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	if time.Now().UTC().After(sess.ExpiresAt) {
		delete(s.sessions, id)
		return nil
	}
	return sess
}

func (s *server) deleteSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || strings.TrimSpace(cookie.Value) == "" {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		sess := s.lookupSession(cookie.Value)
		if sess == nil {
			expireSessionCookie(w)
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *server) csrfProtect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			next.ServeHTTP(w, r)
			return
		}
		sess := sessionFromContext(r.Context())
		if sess == nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		token := strings.TrimSpace(r.Header.Get(csrfHeaderName))
		if token == "" || token != sess.CSRFToken {
			writeError(w, http.StatusForbidden, "csrf validation failed")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func sessionFromContext(ctx context.Context) *sessionRecord {
	record, ok := ctx.Value(sessionContextKey).(*sessionRecord)
	if !ok {
		return nil
	}
	return record
}

func expireSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

func randomToken(bytesLen int) (string, error) {
	buf := make([]byte, bytesLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func envOrDefault(name, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

// writeStoreError maps domain errors onto HTTP statuses: unknown targets are
// 404, every other rejected mutation is 400.
func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, schedule.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
