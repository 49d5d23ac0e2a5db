package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// CatalogServer serves body as a JSON record collection. Requests are counted
// on the returned server.
type CatalogServer struct {
	*httptest.Server
	requests atomic.Int64
}

// Requests returns the number of requests served so far.
func (s *CatalogServer) Requests() int64 {
	return s.requests.Load()
}

// NewCatalogServer starts a catalog server returning body and stops it when
// the test finishes.
func NewCatalogServer(t testing.TB, body string) *CatalogServer {
	t.Helper()

	server := &CatalogServer{}
	server.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		server.requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

// FishRecord is a wire-format catalog record for building test bodies.
type FishRecord struct {
	Hash       string `json:"hash"`
	Name       string `json:"name"`
	Habitat    string `json:"habitat"`
	Scientific string `json:"scientific"`
	Size       string `json:"size"`
	Status     string `json:"status"`
}

// Clownfish returns the reference record stored under hash.
func Clownfish(hash string) FishRecord {
	return FishRecord{
		Hash:       hash,
		Name:       "Clownfish",
		Habitat:    "Reef",
		Scientific: "Amphiprioninae",
		Size:       "10cm",
		Status:     "Least Concern",
	}
}

// CatalogBody encodes records as a collection body.
func CatalogBody(t testing.TB, records map[string]FishRecord) string {
	t.Helper()

	data, err := json.Marshal(records)
	if err != nil {
		t.Fatalf("marshal catalog: %v", err)
	}
	return string(data)
}
