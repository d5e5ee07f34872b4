package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"tradeblock/internal/journal"
)

func TestParseParams(t *testing.T) {
	values, err := parseParams([]string{"side=buy", "asset=BTC", "asset=ETH", "asset=LTC", "note=a=b"})
	if err != nil {
		t.Fatalf("parseParams returned error: %v", err)
	}
	if values["side"] != "buy" {
		t.Errorf("unexpected side: %v", values["side"])
	}
	if !reflect.DeepEqual(values["asset"], []string{"BTC", "ETH", "LTC"}) {
		t.Errorf("repeated keys should merge, got %v", values["asset"])
	}
	if values["note"] != "a=b" {
		t.Errorf("value should keep '=' after first separator, got %v", values["note"])
	}

	if v, err := parseParams(nil); err != nil || v != nil {
		t.Errorf("expected nil params, got %v %v", v, err)
	}
	if _, err := parseParams([]string{"novalue"}); err == nil {
		t.Errorf("expected error for malformed param")
	}
}

func TestWriteBody(t *testing.T) {
	var buf bytes.Buffer
	if err := writeBody(&buf, []byte(`{"a":1}`)); err != nil {
		t.Fatalf("writeBody returned error: %v", err)
	}
	if buf.String() != "{\n  \"a\": 1\n}\n" {
		t.Errorf("unexpected pretty output: %q", buf.String())
	}

	buf.Reset()
	if err := writeBody(&buf, []byte("plain text")); err != nil {
		t.Fatalf("writeBody returned error: %v", err)
	}
	if buf.String() != "plain text\n" {
		t.Errorf("unexpected raw output: %q", buf.String())
	}
}

func TestRootCommand_CancelQuote(t *testing.T) {
	var gotForm url.Values
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotForm, _ = url.ParseQuery(string(body))
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"cancelled":2}`))
	}))
	defer srv.Close()

	t.Setenv("TRADEBLOCK_CLIENT_API_KEY", "key")
	t.Setenv("TRADEBLOCK_CLIENT_API_SECRET", "secret")
	t.Setenv("TRADEBLOCK_CLIENT_PROTOCOL", "http")
	t.Setenv("TRADEBLOCK_CLIENT_HOST", strings.TrimPrefix(srv.URL, "http://"))
	t.Setenv("TRADEBLOCK_LOGGING_LEVEL", "error")

	var stdout, stderr bytes.Buffer
	args := []string{"trades", "cancel", "t1", "t2", "--no-journal"}
	if err := run(context.Background(), &session{}, args, &stdout, &stderr); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if gotPath != "/trade/cancel" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotForm.Get("trades") != "t1,t2" {
		t.Errorf("expected trades=t1,t2, got %v", gotForm)
	}
	if !strings.Contains(stdout.String(), `"cancelled": 2`) {
		t.Errorf("unexpected stdout: %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "HTTP 200") {
		t.Errorf("expected status line on stderr, got %q", stderr.String())
	}
}

func TestRootCommand_ValidationError(t *testing.T) {
	t.Setenv("TRADEBLOCK_CLIENT_API_KEY", "key")
	t.Setenv("TRADEBLOCK_CLIENT_API_SECRET", "secret")
	t.Setenv("TRADEBLOCK_LOGGING_LEVEL", "error")

	args := []string{"settle", "confirm", "refunded", "t1", "--no-journal"}
	if err := run(context.Background(), &session{}, args, io.Discard, io.Discard); err == nil || !strings.Contains(err.Error(), "action") {
		t.Fatalf("expected action validation error, got %v", err)
	}
}

func TestRun_ClosesStoreWhenCommandFails(t *testing.T) {
	t.Setenv("TRADEBLOCK_CLIENT_API_KEY", "key")
	t.Setenv("TRADEBLOCK_CLIENT_API_SECRET", "secret")
	t.Setenv("TRADEBLOCK_LOGGING_LEVEL", "error")
	t.Setenv("TRADEBLOCK_DATABASE_PATH", filepath.Join(t.TempDir(), "journal.db"))

	rt := &session{}
	args := []string{"settle", "confirm", "refunded", "t1"}
	if err := run(context.Background(), rt, args, io.Discard, io.Discard); err == nil {
		t.Fatalf("expected command to fail")
	}

	if rt.store != nil || rt.logger != nil {
		t.Errorf("session resources should be released after a failed command")
	}
	if rt.app == nil || rt.app.Journal() == nil {
		t.Fatalf("expected journal to have been opened")
	}
	if _, err := rt.app.Journal().List(context.Background(), journal.Filter{}); err == nil {
		t.Errorf("expected journal database to be closed")
	}
}

func TestCommands_WithoutParamsRejectParamFlag(t *testing.T) {
	t.Setenv("TRADEBLOCK_CLIENT_API_KEY", "key")
	t.Setenv("TRADEBLOCK_CLIENT_API_SECRET", "secret")
	t.Setenv("TRADEBLOCK_LOGGING_LEVEL", "error")

	for _, args := range [][]string{
		{"trades", "accept", "t1", "-p", "x=1", "--no-journal"},
		{"trades", "cancel", "t1", "-p", "x=1", "--no-journal"},
		{"settle", "confirm", "fiat_sent", "t1", "-p", "x=1", "--no-journal"},
	} {
		err := run(context.Background(), &session{}, args, io.Discard, io.Discard)
		if err == nil || !strings.Contains(err.Error(), "unknown shorthand flag") {
			t.Errorf("%v: expected unknown flag error, got %v", args, err)
		}
	}
}
