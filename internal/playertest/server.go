// Package playertest provides an in-memory stand-in for the players REST
// backend.  Tests in several packages start one with New, seed it, point a
// restclient at URL, and inspect the requests it received afterwards.
//
// The fake honours the same contract as the real backend: ordered pages by
// id, a count endpoint, create, update, and delete.  It never validates
// payloads; that is the panel's job.
package playertest

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/yanizio/playeradmin/internal/player"
)

// Request is one call recorded by the fake.
type Request struct {
	Method string
	Path   string
	Query  string
	Body   []byte
}

// Server is a running fake backend.  Close it when done.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	players  map[int64]player.Player
	nextID   int64
	requests []Request
	failNext map[string]int // "METHOD /path-pattern" → status
}

// New starts a fake backend seeded with players.  IDs of seeded players are
// kept; later creates get ids above the highest seeded one.
func New(seed ...player.Player) *Server {
	s := &Server{
		players:  make(map[int64]player.Player),
		nextID:   1,
		failNext: make(map[string]int),
	}
	for _, p := range seed {
		s.put(p)
	}

	r := chi.NewRouter()
	r.Use(s.record)
	r.Get("/rest/players", s.list)
	r.Get("/rest/players/count", s.count)
	r.Post("/rest/players", s.create)
	r.Post("/rest/players/{id}", s.update)
	r.Delete("/rest/players/{id}", s.remove)

	s.Server = httptest.NewServer(r)
	return s
}

// Seed inserts or replaces players.
func (s *Server) Seed(ps ...player.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range ps {
		s.put(p)
	}
}

// Players returns all stored players ordered by id.
func (s *Server) Players() []player.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted()
}

// Requests returns a copy of every request seen so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestsMatching returns the recorded requests with the given method and
// path.
func (s *Server) RequestsMatching(method, path string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// FailNext makes the next request with method on the named route pattern
// (e.g. "POST /rest/players/{id}") answer with status.
func (s *Server) FailNext(method, pattern string, status int) {
	s.mu.Lock()
	s.failNext[method+" "+pattern] = status
	s.mu.Unlock()
}

//
// handlers
//

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Body:   body,
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) shouldFail(w http.ResponseWriter, r *http.Request) bool {
	key := r.Method + " " + chi.RouteContext(r.Context()).RoutePattern()
	s.mu.Lock()
	status, ok := s.failNext[key]
	delete(s.failNext, key)
	s.mu.Unlock()
	if ok {
		http.Error(w, "injected failure", status)
	}
	return ok
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	if s.shouldFail(w, r) {
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("pageNumber"))
	size, err := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if err != nil || size <= 0 {
		size = 3 // backend default
	}

	s.mu.Lock()
	all := s.sorted()
	s.mu.Unlock()

	from := page * size
	if from > len(all) {
		from = len(all)
	}
	to := from + size
	if to > len(all) {
		to = len(all)
	}
	writeJSON(w, http.StatusOK, all[from:to])
}

func (s *Server) count(w http.ResponseWriter, r *http.Request) {
	if s.shouldFail(w, r) {
		return
	}
	s.mu.Lock()
	n := len(s.players)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	if s.shouldFail(w, r) {
		return
	}
	var in player.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	p := player.Player{
		ID:         s.nextID,
		Name:       in.Name,
		Title:      in.Title,
		Race:       in.Race,
		Profession: in.Profession,
		Level:      in.Level,
		Birthday:   in.Birthday,
		Banned:     in.Banned,
	}
	s.put(p)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, p)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	if s.shouldFail(w, r) {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}
	var in player.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	p, ok := s.players[id]
	if ok {
		p.Name, p.Title, p.Race, p.Profession, p.Banned = in.Name, in.Title, in.Race, in.Profession, in.Banned
		s.players[id] = p
	}
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	if s.shouldFail(w, r) {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	_, ok := s.players[id]
	delete(s.players, id)
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusOK)
}

//
// helpers (caller holds s.mu where noted)
//

// put stores p and advances nextID.  Caller holds s.mu.
func (s *Server) put(p player.Player) {
	s.players[p.ID] = p
	if p.ID >= s.nextID {
		s.nextID = p.ID + 1
	}
}

// sorted returns players ordered by id.  Caller holds s.mu.
func (s *Server) sorted() []player.Player {
	out := make([]player.Player, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
