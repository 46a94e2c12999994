// Package server is a small net/http validation service: POST /validate
// and POST /normalize against a named ruleset, GET /rulesets to list what
// is loaded (name and unit of measurement for each), POST /rulesets to
// persist a new bundle into the registry (when one is configured) and
// merge it into the live set. Ruleset bundle files are watched and
// hot-reloaded.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/fathom-metrics/quantale/internal/config"
	"github.com/fathom-metrics/quantale/internal/logging"
	"github.com/fathom-metrics/quantale/internal/registry"
	"github.com/fathom-metrics/quantale/internal/textnorm"
	"github.com/fathom-metrics/quantale/pkg/quantale/interval"
	"github.com/fathom-metrics/quantale/pkg/quantale/prefix"
)

// Server validates quantities against a reloadable set of named rulesets.
type Server struct {
	mu         sync.RWMutex
	bundle     *config.Bundle
	validators map[string]*interval.Validator
	log        logging.Logger
	cache      *unitCache
	reg        *registry.Store
}

// New builds a Server from an already-loaded Bundle. reg may be nil, in
// which case POST /rulesets responds 501 Not Implemented instead of
// persisting anything.
func New(bundle *config.Bundle, log logging.Logger, reg *registry.Store) (*Server, error) {
	if log == nil {
		log = logging.NullLogger()
	}
	s := &Server{log: log, cache: newUnitCache(), reg: reg}
	if err := s.reload(bundle); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadFromRegistry fetches the bundle stored under id and merges its
// rulesets into the live set, the startup counterpart to the POST
// /rulesets handler that persists new ones.
func (s *Server) LoadFromRegistry(ctx context.Context, id uuid.UUID) error {
	if s.reg == nil {
		return fmt.Errorf("server: no registry configured")
	}
	rec, err := s.reg.Get(ctx, id)
	if err != nil {
		return err
	}
	extra, err := config.LoadBytes(rec.Body)
	if err != nil {
		return err
	}
	return s.mergeBundle(extra)
}

// mergeBundle folds extra's rulesets into the live bundle, on top of
// whatever is already loaded, and reloads.
func (s *Server) mergeBundle(extra *config.Bundle) error {
	s.mu.RLock()
	merged := &config.Bundle{BaseDir: s.bundle.BaseDir, Rulesets: map[string]config.Ruleset{}}
	for name, rs := range s.bundle.Rulesets {
		merged.Rulesets[name] = rs
	}
	s.mu.RUnlock()
	for name, rs := range extra.Rulesets {
		merged.Rulesets[name] = rs
	}
	return s.reload(merged)
}

func (s *Server) reload(bundle *config.Bundle) error {
	validators, err := bundle.Validators()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.bundle = bundle
	s.validators = validators
	s.mu.Unlock()
	s.log.LogLine("server: loaded", len(validators), "ruleset(s)")
	return nil
}

func (s *Server) validator(name string) (*interval.Validator, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.validators[name]
	return v, ok
}

// Handler returns the service's http.Handler: POST /validate, POST
// /normalize, GET /rulesets, POST /rulesets, POST /parse.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /validate", s.handleValidate)
	mux.HandleFunc("POST /normalize", s.handleNormalize)
	mux.HandleFunc("GET /rulesets", s.handleRulesets)
	mux.HandleFunc("POST /rulesets", s.handlePutRuleset)
	mux.HandleFunc("POST /parse", s.handleParse)
	return mux
}

type rulesetRequest struct {
	Name string `json:"name"`
	Body string `json:"body"` // raw YAML bundle, as loaded by config.LoadBytes
}

// handlePutRuleset persists a ruleset bundle into the registry and merges
// it into the live set, so a validator it defines is usable immediately.
func (s *Server) handlePutRuleset(w http.ResponseWriter, r *http.Request) {
	if s.reg == nil {
		http.Error(w, "no registry configured", http.StatusNotImplemented)
		return
	}
	var req rulesetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id, err := s.reg.Put(r.Context(), req.Name, []byte(req.Body))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.LoadFromRegistry(r.Context(), id); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id.String()})
}

type quantityRequest struct {
	Ruleset string `json:"ruleset"`
	Value   string `json:"value"`
}

type parseRequest struct {
	Expression string `json:"expression"`
	Binary     bool   `json:"binary"`
}

// handleParse renders a unit expression in canonical form, serving repeat
// requests for the same expression out of s.cache instead of reparsing.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	family := prefix.Metric
	if req.Binary {
		family = prefix.Binary
	}
	u, err := s.cache.parseCached(textnorm.Fold(req.Expression), family)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"canonical": u.String()})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	v, ok := s.validator(req.Ruleset)
	if !ok {
		http.Error(w, "unknown ruleset: "+req.Ruleset, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": v.IsValid(textnorm.Fold(req.Value))})
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	v, ok := s.validator(req.Ruleset)
	if !ok {
		http.Error(w, "unknown ruleset: "+req.Ruleset, http.StatusNotFound)
		return
	}
	normalized, err := v.Normalize(textnorm.Fold(req.Value))
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"normalized": normalized})
}

type rulesetInfo struct {
	Name string `json:"name"`
	Unit string `json:"unit"` // canonical rendering of the ruleset's unit; "" if dimensionless
}

func (s *Server) handleRulesets(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	out := make([]rulesetInfo, 0, len(s.validators))
	for name, v := range s.validators {
		out = append(out, rulesetInfo{Name: name, Unit: v.Unit().String()})
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
