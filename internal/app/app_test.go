package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"tradeblock/internal/config"
	"tradeblock/internal/journal"
	"tradeblock/internal/store"
	"tradeblock/internal/tradeblock"
)

func testConfig(host string) *config.Config {
	return &config.Config{
		App: config.AppConfig{Environment: "test"},
		Client: config.ClientConfig{
			APIKey:    "key",
			APISecret: "secret",
			Protocol:  "http",
			Host:      host,
		},
		Database: config.DatabaseConfig{InMemory: true},
		Journal:  config.JournalConfig{Enabled: true},
	}
}

func TestNew_WiresJournalIntoClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"user":"u1"}`))
	}))
	defer srv.Close()

	st, err := store.NewSQLite(config.DatabaseConfig{InMemory: true})
	if err != nil {
		t.Fatalf("NewSQLite returned error: %v", err)
	}
	defer st.Close()

	a, err := New(testConfig(strings.TrimPrefix(srv.URL, "http://")), zap.NewNop(), st)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if a.Journal() == nil {
		t.Fatalf("expected journal to be enabled")
	}

	if _, err := a.Client().GetUserInfo(context.Background()); err != nil {
		t.Fatalf("GetUserInfo returned error: %v", err)
	}

	entries, err := a.Journal().List(context.Background(), journal.Filter{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(entries) != 1 || entries[0].Path != "/user/info" {
		t.Fatalf("expected journal entry for /user/info, got %+v", entries)
	}
}

func TestNew_WithoutStoreSkipsJournal(t *testing.T) {
	a, err := New(testConfig("example.invalid"), nil, nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if a.Journal() != nil {
		t.Errorf("journal should be nil without a store")
	}
	if err := a.ServeJournal(context.Background(), 0); err == nil {
		t.Errorf("expected error serving journal when disabled")
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	cfg := testConfig("example.invalid")
	cfg.Client.APISecret = ""

	_, err := New(cfg, nil, nil)
	var cfgErr *tradeblock.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestClientOptions_DemoPrecedence(t *testing.T) {
	opts := ClientOptions(config.ClientConfig{APIKey: "a", APISecret: "b", Demo: true})
	client, err := tradeblock.New(opts)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if client.Host() != "demo."+tradeblock.DefaultHost {
		t.Errorf("expected demo host, got %s", client.Host())
	}
}

type stubLister struct {
	filter journal.Filter
	err    error
}

func (s *stubLister) List(_ context.Context, filter journal.Filter) ([]journal.Entry, error) {
	s.filter = filter
	if s.err != nil {
		return nil, s.err
	}
	return []journal.Entry{{ID: "r1", Method: "GET", Path: "/trade"}}, nil
}

func TestJournalHandler(t *testing.T) {
	stub := &stubLister{}
	handler := newJournalHandler(stub, zap.NewNop())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/requests?limit=5000&method=post&path=/trade&failed=true", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if stub.filter.Limit != 1000 || stub.filter.Method != "post" || stub.filter.PathPrefix != "/trade" || !stub.filter.FailedOnly {
		t.Errorf("unexpected filter: %+v", stub.filter)
	}

	var entries []journal.Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "r1" {
		t.Errorf("unexpected entries: %+v", entries)
	}

	stub.err = errors.New("boom")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/requests", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 on list failure, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/requests", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for POST, got %d", rec.Code)
	}
}
