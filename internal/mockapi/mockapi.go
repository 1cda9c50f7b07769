// Package mockapi is an in-process JSONPlaceholder-compatible posts API.
// It lets the harness run hermetically and drives retry behavior through a
// fault-injecting endpoint.
package mockapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
	"github.com/probehq/apiprobe/internal/domain"
	"github.com/probehq/apiprobe/internal/logger"
)

const seedPosts = 100

// Service serves the posts resource plus /flaky/{n}, which answers 503
// exactly n times per key before recovering.
type Service struct {
	handler http.Handler
	log     logger.Logger

	mu    sync.RWMutex
	posts map[int]domain.Post
	flaky map[string]int
}

// NewService builds a Service seeded with 100 deterministic posts, ten per
// user for users 1 through 10.
func NewService(log logger.Logger) *Service {
	if log == nil {
		log = &logger.NopLogger{}
	}
	s := &Service{
		log:   log,
		posts: make(map[int]domain.Post, seedPosts),
		flaky: make(map[string]int),
	}
	for id := 1; id <= seedPosts; id++ {
		s.posts[id] = domain.Post{
			UserID: (id-1)/10 + 1,
			ID:     id,
			Title:  fmt.Sprintf("post %d title", id),
			Body:   fmt.Sprintf("post %d body", id),
		}
	}

	router := mux.NewRouter()
	router.HandleFunc("/posts", s.listPosts).Methods(http.MethodGet)
	router.HandleFunc("/posts", s.createPost).Methods(http.MethodPost)
	router.HandleFunc("/posts/{id:[0-9]+}", s.getPost).Methods(http.MethodGet)
	router.HandleFunc("/posts/{id:[0-9]+}", s.updatePost).Methods(http.MethodPut)
	router.HandleFunc("/posts/{id:[0-9]+}", s.deletePost).Methods(http.MethodDelete)
	router.HandleFunc("/flaky/{failures:[0-9]+}", s.serveFlaky).Methods(http.MethodGet)
	router.NotFoundHandler = http.HandlerFunc(s.notFound)
	router.Use(s.logRequests)
	s.handler = router

	return s
}

func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Service) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.log.DebugObj("mock api request", "mock_request", map[string]any{
			"method": r.Method,
			"path":   r.URL.Path,
			"query":  r.URL.RawQuery,
		})
		next.ServeHTTP(w, r)
	})
}

func (s *Service) listPosts(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("userId")

	s.mu.RLock()
	out := make([]domain.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if filter != "" && strconv.Itoa(p.UserID) != filter {
			continue
		}
		out = append(out, p)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (s *Service) getPost(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	s.mu.RLock()
	p, ok := s.posts[id]
	s.mu.RUnlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Write verbs are faked the way the public service fakes them: the response
// reflects the change, the seed data stays put. That keeps repeated suite
// runs against one mock instance deterministic.

func (s *Service) createPost(w http.ResponseWriter, r *http.Request) {
	var in domain.Post
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json body"})
		return
	}

	s.mu.RLock()
	in.ID = len(s.posts) + 1
	s.mu.RUnlock()

	writeJSON(w, http.StatusCreated, in)
}

func (s *Service) updatePost(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	s.mu.RLock()
	_, ok := s.posts[id]
	s.mu.RUnlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{})
		return
	}

	var in domain.Post
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json body"})
		return
	}
	in.ID = id
	writeJSON(w, http.StatusOK, in)
}

func (s *Service) deletePost(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (s *Service) serveFlaky(w http.ResponseWriter, r *http.Request) {
	failures, _ := strconv.Atoi(mux.Vars(r)["failures"])
	key := fmt.Sprintf("%d:%s", failures, r.URL.Query().Get("key"))

	s.mu.Lock()
	remaining, seen := s.flaky[key]
	if !seen {
		remaining = failures
	}
	fail := remaining > 0
	if fail {
		remaining--
	}
	s.flaky[key] = remaining
	s.mu.Unlock()

	if fail {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "synthetic transient failure"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "failures": failures})
}

func (s *Service) notFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]any{})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
