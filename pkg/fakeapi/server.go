// Package fakeapi is an in-memory Z+ backend. Tests and the testbed point
// zdash at it instead of the production API.
package fakeapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"tableflip.dev/zdash/pkg/record"
)

// Account is a user that can log in.
type Account struct {
	SelfID   string
	Name     string
	UserType string
	Password string

	hash []byte
}

// Server holds the backend's state. The zero value is not usable; call New.
type Server struct {
	mu sync.Mutex

	accounts      map[string]*Account
	registrations []record.Registration
	contacts      []record.ContactInquiry
	tasks         map[string][]record.Task
	projects      []record.Project
	clientProject map[string][]record.ID

	secret []byte
	ttl    time.Duration
	now    func() time.Time
	// generation invalidates every token issued before the last Revoke.
	generation int
	nextID     int

	log    zerolog.Logger
	router *mux.Router
}

type Option func(*Server)

// WithTTL sets the lifetime of issued tokens. Defaults to 24h.
func WithTTL(d time.Duration) Option {
	return func(s *Server) { s.ttl = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithAccounts replaces the seeded accounts.
func WithAccounts(accounts ...Account) Option {
	return func(s *Server) {
		s.accounts = map[string]*Account{}
		for _, a := range accounts {
			a := a
			s.accounts[a.SelfID] = &a
		}
	}
}

// WithEmpty starts with no records.
func WithEmpty() Option {
	return func(s *Server) {
		s.registrations = nil
		s.contacts = nil
		s.tasks = map[string][]record.Task{}
		s.projects = nil
		s.clientProject = map[string][]record.ID{}
	}
}

// New builds a seeded server. Routes live under /api.
func New(opts ...Option) *Server {
	s := &Server{
		secret: []byte(uuid.NewString()),
		ttl:    24 * time.Hour,
		now:    time.Now,
		log:    zerolog.Nop(),
	}
	s.seed()
	for _, opt := range opts {
		opt(s)
	}
	for _, a := range s.accounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.MinCost)
		if err != nil {
			panic(err)
		}
		a.hash = hash
		a.Password = ""
	}
	s.router = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/login", s.login).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(s.authenticate)

	admin := authed.NewRoute().Subrouter()
	admin.Use(requireRole("ADMIN"))
	admin.HandleFunc("/registrations", s.listRegistrations).Methods(http.MethodGet)
	admin.HandleFunc("/registrations/{status:pending|approved|rejected}", s.listRegistrations).Methods(http.MethodGet)
	admin.HandleFunc("/registrations/{id}/{action:approve|reject|share}", s.registrationAction).Methods(http.MethodPost)
	admin.HandleFunc("/contact/inquiries", s.listContacts).Methods(http.MethodGet)
	admin.HandleFunc("/contact/status/{status}", s.listContacts).Methods(http.MethodGet)
	admin.HandleFunc("/contact/statistics", s.contactStatistics).Methods(http.MethodGet)
	admin.HandleFunc("/contact/{id}/assign", s.assignContact).Methods(http.MethodPut)
	admin.HandleFunc("/contact/{id}/status", s.contactStatus).Methods(http.MethodPut)
	admin.HandleFunc("/contact/{id}/share", s.shareContact).Methods(http.MethodPost)

	authed.HandleFunc("/tasks/my-tasks", s.myTasks).Methods(http.MethodGet)
	authed.HandleFunc("/tasks/my-tasks/status/{status}", s.myTasks).Methods(http.MethodGet)
	authed.HandleFunc("/tasks/{id}/{field:status|notes|progress}", s.updateTask).Methods(http.MethodPut)
	authed.HandleFunc("/projects", s.listProjects).Methods(http.MethodGet)
	authed.HandleFunc("/clients/{id}/projects", s.clientProjects).Methods(http.MethodGet)
	authed.HandleFunc("/{kind:clients|employees}/{id}/dashboard-stats", s.dashboardStats).Methods(http.MethodGet)
	return r
}

// Issue mints a token for selfID as the login endpoint would.
func (s *Server) Issue(selfID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(selfID)
}

func (s *Server) issueLocked(selfID string) (string, error) {
	a, ok := s.accounts[selfID]
	if !ok {
		return "", fmt.Errorf("fakeapi: unknown account %q", selfID)
	}
	claims := jwt.MapClaims{
		"sub":  a.SelfID,
		"role": a.UserType,
		"gen":  s.generation,
		"jti":  uuid.NewString(),
		"exp":  s.now().Add(s.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Revoke invalidates every outstanding token, as a server-side logout or
// key rotation would.
func (s *Server) Revoke() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
}

type principal struct {
	SelfID string
	Role   string
}

type ctxKey struct{}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			writeError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}
		claims := jwt.MapClaims{}
		tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return s.secret, nil
		}, jwt.WithTimeFunc(s.now))
		if err != nil || !tkn.Valid {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		s.mu.Lock()
		gen := s.generation
		s.mu.Unlock()
		if g, _ := claims["gen"].(float64); int(g) != gen {
			writeError(w, http.StatusUnauthorized, "token revoked")
			return
		}
		sub, _ := claims.GetSubject()
		role, _ := claims["role"].(string)
		ctx := contextWith(r.Context(), principal{SelfID: sub, Role: role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requireRole(role string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p := principalFrom(r.Context()); p.Role != role {
				writeError(w, http.StatusForbidden, "access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) id() record.ID {
	s.nextID++
	return record.ID(strconv.Itoa(s.nextID))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "message": msg})
}
