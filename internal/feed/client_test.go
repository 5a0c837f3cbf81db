package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGet_NumberValue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/get-data" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("feed"); got != "temperature" {
			t.Errorf("unexpected feed %q", got)
		}
		_, _ = w.Write([]byte(`{"value": 182.5}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	v, err := c.Get(context.Background(), "temperature")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != 182.5 {
		t.Fatalf("got %v, want 182.5", v)
	}
}

func TestGet_StringValue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"value": "95.25"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	v, err := c.Get(context.Background(), "temperature")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != 95.25 {
		t.Fatalf("got %v, want 95.25", v)
	}
}

func TestGet_NonNumericPayloadFails(t *testing.T) {
	for _, body := range []string{`{"value": "warm"}`, `{"value": null}`, `{}`, `not json`} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		c := New(srv.URL, time.Second)
		if _, err := c.Get(context.Background(), "temperature"); err == nil {
			t.Errorf("expected error for body %q", body)
		}
		srv.Close()
	}
}

func TestGet_BadStatusFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	if _, err := c.Get(context.Background(), "temperature"); err == nil {
		t.Fatal("expected error on 502")
	}
}

func TestPost_SendsFeedAndValue(t *testing.T) {
	var got payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/send-data" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	if err := c.Post(context.Background(), "target", 176.7); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if got.Feed != "target" {
		t.Fatalf("feed = %q, want target", got.Feed)
	}
	if v, ok := got.Value.(float64); !ok || v != 176.7 {
		t.Fatalf("value = %v, want 176.7", got.Value)
	}
}

func TestProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"value": 25}`))
	}))
	c := New(srv.URL, time.Second)
	if !c.Probe(context.Background(), "temperature") {
		t.Fatal("expected probe to succeed")
	}
	srv.Close()
	if c.Probe(context.Background(), "temperature") {
		t.Fatal("expected probe to fail after server shutdown")
	}

	empty := New("", time.Second)
	if empty.Probe(context.Background(), "temperature") {
		t.Fatal("expected probe to fail with no base URL")
	}
}
