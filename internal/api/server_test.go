package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"oceaneye/internal/api"
	"oceaneye/internal/catalog"
	"oceaneye/internal/digest"
	"oceaneye/internal/history"
	"oceaneye/internal/identification"
	"oceaneye/internal/services"
	"oceaneye/internal/testsupport"
)

func newLiveServer(t *testing.T, body string) (*api.Server, *testsupport.CatalogServer) {
	t.Helper()
	catalogServer := testsupport.NewCatalogServer(t, body)
	cfg := testsupport.NewConfig(t, testsupport.WithCatalogURL(catalogServer.URL))
	cfg.API.MaxImageBytes = 64

	client, err := catalog.NewClient(cfg.Catalog.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	hasher, _ := digest.New(digest.SHA256)
	id, err := identification.New(hasher, catalog.NewResolver(client, nil))
	if err != nil {
		t.Fatalf("identification.New: %v", err)
	}
	srv, err := api.NewServer(cfg, id, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv, catalogServer
}

func decodeReport(t *testing.T, body io.Reader) identification.View {
	t.Helper()
	var resp api.IdentifyResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.Report
}

func TestIdentifyEndpointFoundAndNotFound(t *testing.T) {
	photo := []byte("clownfish photo")
	d, _ := digest.Compute(photo)
	srv, _ := newLiveServer(t, testsupport.CatalogBody(t, map[string]testsupport.FishRecord{"1": testsupport.Clownfish(d.String())}))

	req := httptest.NewRequest(http.MethodPost, "/api/identify", bytes.NewReader(photo))
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("X-Request-ID"); got != "req-42" {
		t.Fatalf("expected request id echoed, got %q", got)
	}
	view := decodeReport(t, w.Body)
	if view.Outcome != identification.OutcomeFound || view.Record == nil || view.Record.Name != "Clownfish" {
		t.Fatalf("unexpected report: %#v", view)
	}
	if view.RequestID != "req-42" || view.Digest != d.String() {
		t.Fatalf("unexpected ids: %#v", view)
	}

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/identify", strings.NewReader("other photo")))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for not found, got %d", w.Code)
	}
	view = decodeReport(t, w.Body)
	if view.Outcome != identification.OutcomeNotFound || view.Advice != identification.AdviceRetakePhoto {
		t.Fatalf("unexpected not-found report: %#v", view)
	}
}

func TestIdentifyEndpointRejectsEmptyAndOversizeBodies(t *testing.T) {
	srv, catalogServer := newLiveServer(t, `{}`)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/identify", http.NoBody))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty body, got %d", w.Code)
	}
	if view := decodeReport(t, w.Body); view.Outcome != identification.OutcomeEncodingError {
		t.Fatalf("expected encoding error, got %q", view.Outcome)
	}

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/identify", bytes.NewReader(make([]byte, 65))))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 for oversize body, got %d", w.Code)
	}
	if catalogServer.Requests() != 0 {
		t.Fatalf("expected no catalog fetch for rejected uploads, got %d", catalogServer.Requests())
	}
}

func TestOversizeUploadIsRecorded(t *testing.T) {
	catalogServer := testsupport.NewCatalogServer(t, testsupport.CatalogBody(t, map[string]testsupport.FishRecord{}))
	cfg := testsupport.NewConfig(t, testsupport.WithCatalogURL(catalogServer.URL))
	cfg.API.MaxImageBytes = 8

	client, err := catalog.NewClient(cfg.Catalog.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	store := testsupport.MustOpenHistory(t, cfg)
	hasher, _ := digest.New(digest.SHA256)
	id, err := identification.New(hasher, catalog.NewResolver(client, nil), identification.WithRecorder(store))
	if err != nil {
		t.Fatalf("identification.New: %v", err)
	}
	srv, err := api.NewServer(cfg, id, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/identify", bytes.NewReader(make([]byte, 5))))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for small photo, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/identify", bytes.NewReader(make([]byte, 64)))
	req.Header.Set("X-Request-ID", "req-oversize")
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", w.Code)
	}
	if view := decodeReport(t, w.Body); view.RequestID != "req-oversize" || view.Outcome != identification.OutcomeEncodingError {
		t.Fatalf("unexpected rejected view: %#v", view)
	}

	entries, err := store.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected both uploads recorded, got %d", len(entries))
	}
	var rejected *history.Entry
	for idx := range entries {
		if entries[idx].RequestID == "req-oversize" {
			rejected = &entries[idx]
		}
	}
	if rejected == nil || rejected.Outcome != string(identification.OutcomeEncodingError) || rejected.Source != "api" {
		t.Fatalf("expected rejected upload in history, got %#v", entries)
	}
	if !strings.Contains(rejected.ErrorMessage, "image exceeds 8 bytes") {
		t.Fatalf("unexpected error message %q", rejected.ErrorMessage)
	}
}

func TestIdentifyEndpointMalformedCatalog(t *testing.T) {
	srv, _ := newLiveServer(t, `{"1":{"hash":"h1","name":"Clownfish"}}`)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/identify", strings.NewReader("photo")))
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	if view := decodeReport(t, w.Body); view.Outcome != identification.OutcomeDecodeError {
		t.Fatalf("expected decode error, got %q", view.Outcome)
	}
}

func TestRecordEndpoint(t *testing.T) {
	d := digest.Digest(strings.Repeat("ab", 32))
	srv, _ := newLiveServer(t, testsupport.CatalogBody(t, map[string]testsupport.FishRecord{"1": testsupport.Clownfish(d.String())}))

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/records/sha256:"+strings.ToUpper(d.String()), nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if view := decodeReport(t, w.Body); view.Outcome != identification.OutcomeFound {
		t.Fatalf("expected found, got %q", view.Outcome)
	}

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/records/not-a-digest", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed digest, got %d", w.Code)
	}
}

func TestStatusAndHealth(t *testing.T) {
	srv, catalogServer := newLiveServer(t, `{}`)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var status api.StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.CatalogURL != catalogServer.URL || status.Algorithm != "sha256" || status.InFlight {
		t.Fatalf("unexpected status: %#v", status)
	}

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("unexpected health response %d %q", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/identify", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}

type sourceCapture struct {
	source string
}

func (s *sourceCapture) Identify(ctx context.Context, _ []byte) identification.Report {
	s.source, _ = services.SourceFromContext(ctx)
	return identification.Report{Outcome: identification.OutcomeNotFound}
}

func (s *sourceCapture) IdentifyDigest(context.Context, digest.Digest) identification.Report {
	return identification.Report{Outcome: identification.OutcomeNotFound}
}

func (s *sourceCapture) Reject(context.Context, error) identification.Report {
	return identification.Report{Outcome: identification.OutcomeEncodingError}
}

func (s *sourceCapture) Algorithm() digest.Algorithm { return digest.SHA256 }

func (s *sourceCapture) InFlight() bool { return false }

type supersededIdentifier struct {
	sourceCapture
}

func (s *supersededIdentifier) Identify(ctx context.Context, _ []byte) identification.Report {
	requestID, _ := services.RequestIDFromContext(ctx)
	return identification.Report{
		RequestID: requestID,
		Outcome:   identification.OutcomeTransportError,
		Err:       &catalog.TransportError{Err: catalog.ErrSuperseded},
	}
}

func TestSupersededUploadExplainsConflict(t *testing.T) {
	srv, err := api.NewServer(testsupport.NewConfig(t), &supersededIdentifier{}, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/identify", strings.NewReader("photo")))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	view := decodeReport(t, w.Body)
	if view.Advice != identification.AdviceSuperseded {
		t.Fatalf("expected superseded advice, got %q", view.Advice)
	}
	if view.Message == identification.AdviceCheckNetwork.Message() {
		t.Fatalf("superseded upload reported as network problem: %q", view.Message)
	}
}

func TestRequestsCarryAPISource(t *testing.T) {
	capture := &sourceCapture{}
	srv, err := api.NewServer(testsupport.NewConfig(t), capture, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/identify", strings.NewReader("photo")))
	if capture.source != "api" {
		t.Fatalf("expected api source, got %q", capture.source)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected generated request id")
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	timeoutErr := &catalog.TransportError{Err: fmt.Errorf("get: %w", context.DeadlineExceeded)}
	tests := []struct {
		name   string
		report identification.Report
		want   int
	}{
		{"found", identification.Report{Outcome: identification.OutcomeFound}, http.StatusOK},
		{"not found", identification.Report{Outcome: identification.OutcomeNotFound}, http.StatusOK},
		{"encoding", identification.Report{Outcome: identification.OutcomeEncodingError, Err: errors.New("empty")}, http.StatusBadRequest},
		{"decode", identification.Report{Outcome: identification.OutcomeDecodeError, Err: &catalog.DecodeError{}}, http.StatusBadGateway},
		{"transport", identification.Report{Outcome: identification.OutcomeTransportError, Err: &catalog.TransportError{Err: errors.New("refused")}}, http.StatusBadGateway},
		{"timeout", identification.Report{Outcome: identification.OutcomeTransportError, Err: timeoutErr}, http.StatusGatewayTimeout},
		{"superseded", identification.Report{Outcome: identification.OutcomeTransportError, Err: &catalog.TransportError{Err: catalog.ErrSuperseded}}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := api.HTTPStatus(tt.report); got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestStartServesAndStopsOnCancel(t *testing.T) {
	srv, _ := newLiveServer(t, `{}`)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	resp, err := http.Get("http://" + srv.Addr() + "/healthz")
	if err != nil {
		t.Fatalf("GET healthz: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	cancel()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get("http://" + srv.Addr() + "/healthz")
		if err != nil {
			return
		}
		_ = resp.Body.Close()
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("server still serving after context cancel")
}
