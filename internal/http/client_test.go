package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGetSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		w.Write([]byte("hello"))
	}))
	defer server.Close()

	client := NewClient(DefaultOptions())
	body, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("expected body 'hello', got %q", data)
	}
}

func TestGetStatusErrors(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, ErrNotFound},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusInternalServerError, ErrServerError},
		{http.StatusBadGateway, ErrServerError},
	}

	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		client := NewClient(DefaultOptions())
		_, err := client.Get(context.Background(), server.URL)
		if !errors.Is(err, tt.want) {
			t.Errorf("status %d: expected %v, got %v", tt.status, tt.want, err)
		}
		server.Close()
	}
}

func TestGetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"name":"a"},{"name":"b"}]`))
	}))
	defer server.Close()

	client := NewClient(DefaultOptions())

	var items []struct {
		Name string `json:"name"`
	}
	if err := client.GetJSON(context.Background(), server.URL, &items); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if len(items) != 2 || items[0].Name != "a" || items[1].Name != "b" {
		t.Errorf("unexpected decode result: %+v", items)
	}
}

func TestGetJSONMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	client := NewClient(DefaultOptions())

	var v any
	if err := client.GetJSON(context.Background(), server.URL, &v); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestGetUserAgent(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	client := NewClient(Options{UserAgent: "hospsync-test"})
	body, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	body.Close()

	if got != "hospsync-test" {
		t.Errorf("expected User-Agent 'hospsync-test', got %q", got)
	}
}

func TestGetContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	client := NewClient(DefaultOptions())
	if _, err := client.Get(ctx, server.URL); err == nil {
		t.Error("expected error due to context cancellation")
	}
}
