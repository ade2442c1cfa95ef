// Package web provides an HTTP status server for the truck-scale daemon.
package web

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/sweeney/truck-scale/internal/journal"
	"github.com/sweeney/truck-scale/internal/status"
)

// maxLoads caps the ?limit= parameter of /loads.json.
const maxLoads = 500

// LoadLister returns recent journal entries. *journal.Journal implements it.
type LoadLister interface {
	Recent(ctx context.Context, limit int) ([]journal.Entry, error)
}

// Server serves the status page over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	loads      LoadLister
	log        logrus.FieldLogger
}

// New creates a Server that reads state from the given tracker. loads and
// metrics may be nil, in which case their endpoints are not registered.
func New(addr string, tracker *status.Tracker, loads LoadLister, metrics http.Handler, log logrus.FieldLogger) *Server {
	s := &Server{tracker: tracker, loads: loads, log: log.WithField("component", "web")}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	if loads != nil {
		mux.HandleFunc("/loads.json", s.handleLoads)
	}
	if metrics != nil {
		mux.Handle("/metrics", metrics)
	}

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// Handler returns the request router.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderHTML(w, snap); err != nil {
		s.log.WithError(err).Warn("rendering status page")
	}
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

// LoadsJSON is the /loads.json envelope.
type LoadsJSON struct {
	Loads []journal.Entry `json:"loads"`
}

func (s *Server) handleLoads(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxLoads)
	}

	entries, err := s.loads.Recent(r.Context(), limit)
	if err != nil {
		s.log.WithError(err).Error("reading journal")
		http.Error(w, "journal unavailable", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	w.Header().Set("Content-Type", "application/json")
	data, _ := json.MarshalIndent(LoadsJSON{Loads: entries}, "", "  ")
	w.Write(data)
}
