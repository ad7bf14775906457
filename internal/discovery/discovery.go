// Package discovery implements the read-only HTTP enumeration service
// described in SPEC_FULL.md's Discovery Service section: the
// client-visible mechanism by which a process finds out what tags
// exist, without itself needing to speak tagfd's connection protocol.
// It reports tag names, not socket paths; a tag's socket is
// <SocketRoot>/<name>. It never creates or mutates a
// tag — that remains the administrative endpoint's exclusive job
// (spec.md §4.4).
package discovery

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hsnyder/tagfd/internal/logger"
	"github.com/hsnyder/tagfd/internal/tagcore"
)

// Service is a thin HTTP skin over a Registry, the same relationship
// the teacher's api package has to its independently-usable storage
// layer: discovery can be deleted entirely without affecting a single
// tag socket's ability to serve readers and writers.
type Service struct {
	registry *tagcore.Registry
	router   *mux.Router
}

// tagListEntry is the JSON projection of one tag in a GET /tags
// response.
type tagListEntry struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Dtype string `json:"dtype"`
}

// tagDetailEntry is the JSON projection returned by GET /tags/{name}:
// identity and dtype plus the tag's current quality and timestamp, so
// a client can inspect a tag's live state without opening its socket
// (SPEC_FULL.md's discovery-service supplement).
type tagDetailEntry struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Dtype     string `json:"dtype"`
	Quality   string `json:"quality"`
	Timestamp uint64 `json:"timestamp"`
}

// NewService builds a discovery Service over registry and registers its
// routes on a fresh gorilla/mux router.
func NewService(registry *tagcore.Registry) *Service {
	s := &Service{registry: registry, router: mux.NewRouter()}
	s.router.HandleFunc("/tags", s.handleList).Methods(http.MethodGet)
	s.router.HandleFunc("/tags/{name}", s.handleGet).Methods(http.MethodGet)
	return s
}

// ServeHTTP makes Service an http.Handler.
func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Service) handleList(w http.ResponseWriter, r *http.Request) {
	infos := s.registry.List()
	entries := make([]tagListEntry, len(infos))
	for i, t := range infos {
		entries[i] = tagListEntry{ID: t.ID, Name: t.Name, Dtype: t.Dtype.String()}
	}
	logger.TraceIf("discovery", "listed %d tags", len(entries))
	respondJSON(w, http.StatusOK, entries)
}

func (s *Service) handleGet(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	info, v, ok := s.registry.Snapshot(name)
	if !ok {
		http.NotFound(w, r)
		return
	}
	respondJSON(w, http.StatusOK, tagDetailEntry{
		ID:        info.ID,
		Name:      info.Name,
		Dtype:     info.Dtype.String(),
		Quality:   v.Quality.Class().String(),
		Timestamp: v.Timestamp,
	})
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("discovery: encoding response: %v", err)
	}
}
