package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/fathom-metrics/quantale/internal/config"
	"github.com/fathom-metrics/quantale/internal/logging"
	"github.com/fathom-metrics/quantale/internal/registry"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return newTestServerWithRegistry(t, nil)
}

func newTestServerWithRegistry(t *testing.T, reg *registry.Store) *Server {
	t.Helper()
	bundle, err := config.LoadBytes([]byte(`
rulesets:
  weight:
    spec: "kg: [0, 1]"
`))
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	s, err := New(bundle, logging.NullLogger(), reg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

// openTestRegistry opens an in-memory sqlite-backed registry, the same way
// `quantale serve --registry sqlite://:memory:` would.
func openTestRegistry(t *testing.T) *registry.Store {
	t.Helper()
	reg, err := registry.Open(context.Background(), "sqlite://:memory:", logging.NullLogger())
	if err != nil {
		t.Fatalf("registry.Open: %v", err)
	}
	return reg
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleValidateValid(t *testing.T) {
	s := newTestServer(t)
	rec := postJSON(t, s.Handler(), "/validate", quantityRequest{Ruleset: "weight", Value: "0 kg"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp map[string]bool
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !resp["valid"] {
		t.Errorf("expected valid=true, got %v", resp)
	}
}

func TestHandleValidateUnknownRuleset(t *testing.T) {
	s := newTestServer(t)
	rec := postJSON(t, s.Handler(), "/validate", quantityRequest{Ruleset: "nope", Value: "0 kg"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandleNormalize(t *testing.T) {
	s := newTestServer(t)
	rec := postJSON(t, s.Handler(), "/normalize", quantityRequest{Ruleset: "weight", Value: "0 kg"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if resp["normalized"] != "0 kg" {
		t.Errorf("normalized = %q, want %q", resp["normalized"], "0 kg")
	}
}

func TestHandleNormalizeOutOfRange(t *testing.T) {
	s := newTestServer(t)
	rec := postJSON(t, s.Handler(), "/normalize", quantityRequest{Ruleset: "weight", Value: "5 kg"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestHandleRulesetsListsLoadedNames(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest("GET", "/rulesets", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var rulesets []rulesetInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &rulesets); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(rulesets) != 1 || rulesets[0].Name != "weight" || rulesets[0].Unit != "kg" {
		t.Errorf("rulesets = %+v, want [{weight kg}]", rulesets)
	}
}

func TestHandleParseCachesResult(t *testing.T) {
	s := newTestServer(t)
	rec := postJSON(t, s.Handler(), "/parse", parseRequest{Expression: "kilometres/h"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if resp["canonical"] != "km/h" {
		t.Errorf("canonical = %q, want %q", resp["canonical"], "km/h")
	}

	// second request for the same expression should hit the cache path.
	rec2 := postJSON(t, s.Handler(), "/parse", parseRequest{Expression: "kilometres/h"})
	if rec2.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec2.Code, rec2.Body.String())
	}
}

func TestHandlePutRulesetWithoutRegistry(t *testing.T) {
	s := newTestServer(t)
	rec := postJSON(t, s.Handler(), "/rulesets", rulesetRequest{Name: "bandwidth", Body: "rulesets:\n  bandwidth:\n    spec: \"Mbps: (0, 1000]\"\n"})
	if rec.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotImplemented)
	}
}

func TestHandlePutRulesetPersistsAndMerges(t *testing.T) {
	reg := openTestRegistry(t)
	s := newTestServerWithRegistry(t, reg)

	rec := postJSON(t, s.Handler(), "/rulesets", rulesetRequest{
		Name: "bandwidth",
		Body: "rulesets:\n  bandwidth:\n    spec: \"Mbps: (0, 1000]\"\n",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if resp["id"] == "" {
		t.Fatalf("expected a non-empty id, got %v", resp)
	}

	// the new ruleset should be immediately usable, merged on top of the
	// bundle the server started with.
	if _, ok := s.validator("bandwidth"); !ok {
		t.Error("expected the bandwidth ruleset to be loaded after POST /rulesets")
	}
	if _, ok := s.validator("weight"); !ok {
		t.Error("expected the original weight ruleset to survive the merge")
	}

	// and it should have actually landed in the registry, not just in
	// memory.
	recs, err := reg.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 1 || recs[0].Name != "bandwidth" {
		t.Errorf("registry contents = %v, want one record named bandwidth", recs)
	}
}

func TestLoadFromRegistryWithoutRegistryFails(t *testing.T) {
	s := newTestServer(t)
	if err := s.LoadFromRegistry(context.Background(), uuid.New()); err == nil {
		t.Error("expected an error with no registry configured")
	}
}

func TestReloadSwapsValidators(t *testing.T) {
	s := newTestServer(t)
	newBundle, err := config.LoadBytes([]byte(`
rulesets:
  bandwidth:
    spec: "Mbps: (0, 10000000]"
`))
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	if err := s.reload(newBundle); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if _, ok := s.validator("weight"); ok {
		t.Error("expected the old weight ruleset to be gone after reload")
	}
	if _, ok := s.validator("bandwidth"); !ok {
		t.Error("expected the new bandwidth ruleset after reload")
	}
}
