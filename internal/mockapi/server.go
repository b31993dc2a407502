// Package mockapi is a small in-memory implementation of the items
// service, used by `itemdash mock-server` and as a test fixture.
package mockapi

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/Makepad-fr/itemdash/internal/logging"
	"github.com/Makepad-fr/itemdash/internal/model"
	"github.com/Makepad-fr/itemdash/internal/store/jsonstore"
)

// Options configures a Server. The zero value is usable.
type Options struct {
	// Secret signs issued tokens. A random one is generated when empty.
	Secret []byte
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	// TokenTTL defaults to 24h.
	TokenTTL time.Duration
	// Store persists users and items between runs when set.
	Store  *jsonstore.Store
	Logger *logging.Logger
}

// Server serves the items API.
type Server struct {
	secret []byte
	cost   int
	ttl    time.Duration
	store  *jsonstore.Store
	log    *logging.Logger
	router *mux.Router

	mu    sync.RWMutex
	users []jsonstore.User
	items []model.Item
}

// New builds a server, loading persisted state from opts.Store.
func New(opts Options) (*Server, error) {
	s := &Server{
		secret: opts.Secret,
		cost:   opts.BcryptCost,
		ttl:    opts.TokenTTL,
		store:  opts.Store,
		log:    logging.OrNop(opts.Logger).With("component", "mockapi"),
		users:  []jsonstore.User{},
		items:  []model.Item{},
	}
	if len(s.secret) == 0 {
		s.secret = make([]byte, 32)
		if _, err := rand.Read(s.secret); err != nil {
			return nil, fmt.Errorf("generate secret: %w", err)
		}
	}
	if s.cost == 0 {
		s.cost = bcrypt.DefaultCost
	}
	if s.ttl <= 0 {
		s.ttl = 24 * time.Hour
	}
	if s.store != nil {
		snap, err := s.store.Load()
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", s.store.Path(), err)
		}
		s.users, s.items = snap.Users, snap.Items
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "OK")
	}).Methods(http.MethodGet)
	r.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	r.Handle("/items", s.requireAuth(http.HandlerFunc(s.handleList))).Methods(http.MethodGet)
	r.Handle("/items", s.requireAuth(http.HandlerFunc(s.handleCreate))).Methods(http.MethodPost)
	r.Handle("/items/{id}", s.requireAuth(http.HandlerFunc(s.handleUpdate))).Methods(http.MethodPut)
	r.Handle("/items/{id}", s.requireAuth(http.HandlerFunc(s.handleDelete))).Methods(http.MethodDelete)
	r.Use(s.logRequests)
	return r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully. ready, when non-nil, receives the bound address.
func (s *Server) ListenAndServe(ctx context.Context, addr string, ready func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := &http.Server{Handler: s, ReadHeaderTimeout: 10 * time.Second}
	if ready != nil {
		ready(ln.Addr())
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start).String())
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	return dec.Decode(v)
}

func blank(fields ...string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return true
		}
	}
	return false
}

// persist writes the current state. Callers hold s.mu.
func (s *Server) persist() error {
	if s.store == nil {
		return nil
	}
	return s.store.Save(&jsonstore.Snapshot{Users: s.users, Items: s.items})
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if blank(req.Username, req.Email, req.Password) {
		writeError(w, http.StatusBadRequest, "username, email and password are required")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not hash password")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.findUser(req.Email); ok {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}
	s.users = append(s.users, jsonstore.User{Username: req.Username, Email: req.Email, PasswordHash: string(hash)})
	if err := s.persist(); err != nil {
		s.users = s.users[:len(s.users)-1]
		s.log.Error("persist", "error", err)
		writeError(w, http.StatusInternalServerError, "could not save user")
		return
	}
	s.log.Info("user registered", "email", req.Email)
	writeJSON(w, http.StatusCreated, map[string]string{"username": req.Username, "email": req.Email})
}

// findUser looks up email. Callers hold s.mu.
func (s *Server) findUser(email string) (jsonstore.User, bool) {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, true
		}
	}
	return jsonstore.User{}, false
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.Credentials
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if blank(req.Email, req.Password) {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	s.mu.RLock()
	u, ok := s.findUser(req.Email)
	s.mu.RUnlock()
	if !ok || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	tok, err := s.issueToken(u)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not sign token")
		return
	}
	writeJSON(w, http.StatusOK, model.TokenResponse{Token: tok})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	out := make([]model.Item, len(s.items))
	copy(out, s.items)
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) decodeInput(w http.ResponseWriter, r *http.Request) (model.ItemInput, bool) {
	var in model.ItemInput
	if err := readJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return in, false
	}
	if in.Blank() {
		writeError(w, http.StatusBadRequest, "title and description are required")
		return in, false
	}
	return in, true
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	in, ok := s.decodeInput(w, r)
	if !ok {
		return
	}
	it := model.Item{ID: model.ItemID(uuid.New().String()), Title: in.Title, Description: in.Description}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, it)
	if err := s.persist(); err != nil {
		s.items = s.items[:len(s.items)-1]
		s.log.Error("persist", "error", err)
		writeError(w, http.StatusInternalServerError, "could not save item")
		return
	}
	s.log.Info("item created", "id", string(it.ID), "by", actor(r))
	writeJSON(w, http.StatusCreated, it)
}

// indexOf returns the position of id. Callers hold s.mu.
func (s *Server) indexOf(id model.ItemID) int {
	for i, it := range s.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := model.ItemID(mux.Vars(r)["id"])
	in, ok := s.decodeInput(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	prev := s.items[i]
	s.items[i].Title, s.items[i].Description = in.Title, in.Description
	if err := s.persist(); err != nil {
		s.items[i] = prev
		s.log.Error("persist", "error", err)
		writeError(w, http.StatusInternalServerError, "could not save item")
		return
	}
	s.log.Info("item updated", "id", string(id), "by", actor(r))
	writeJSON(w, http.StatusOK, s.items[i])
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := model.ItemID(mux.Vars(r)["id"])

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	prev := s.items
	s.items = append(append([]model.Item{}, s.items[:i]...), s.items[i+1:]...)
	if err := s.persist(); err != nil {
		s.items = prev
		s.log.Error("persist", "error", err)
		writeError(w, http.StatusInternalServerError, "could not delete item")
		return
	}
	s.log.Info("item deleted", "id", string(id), "by", actor(r))
	w.WriteHeader(http.StatusNoContent)
}

// Items returns a copy of the current items.
func (s *Server) Items() []model.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Item, len(s.items))
	copy(out, s.items)
	return out
}
