package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const pexelsFixture = `{
	"photos": [
		{"photographer": "Alice", "src": {"large": "https://img/a.jpg"}},
		{"photographer": "Bob", "src": {"large": "https://img/b.jpg"}},
		{"photographer": "Carol", "src": {"large": ""}},
		{"photographer": "Bob", "src": {"large": "https://img/b2.jpg"}}
	]
}`

func TestImageSearch(t *testing.T) {
	var gotAuth, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query().Get("query")
		w.Write([]byte(pexelsFixture))
	}))
	defer server.Close()

	client := NewImageClient("pexels-key", server.URL)
	results, err := client.Search(context.Background(), "sourdough bread", 2, "")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if gotAuth != "pexels-key" {
		t.Errorf("Authorization header = %q", gotAuth)
	}
	if gotQuery != "sourdough bread" {
		t.Errorf("query = %q", gotQuery)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].URL != "https://img/a.jpg" || results[0].Photographer != "Alice" {
		t.Errorf("first result = %+v", results[0])
	}
}

func TestImageSearchPrefersPhotographer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(pexelsFixture))
	}))
	defer server.Close()

	client := NewImageClient("key", server.URL)
	results, err := client.Search(context.Background(), "bread", 3, "Bob")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Photographer != "Bob" || results[1].Photographer != "Bob" {
		t.Errorf("preferred photographer not ranked first: %+v", results)
	}
	if results[2].Photographer != "Alice" {
		t.Errorf("remaining slot should fall back to other photographers: %+v", results[2])
	}
}

func TestImageSearchFewerThanRequested(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"photos": []}`))
	}))
	defer server.Close()

	client := NewImageClient("key", server.URL)
	results, err := client.Search(context.Background(), "obscure topic", 3, "")
	if err != nil {
		t.Fatalf("Search() error = %v, empty result sets are not errors", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestImageSearchAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewImageClient("key", server.URL)
	_, err := client.Search(context.Background(), "bread", 2, "")

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", httpErr.StatusCode)
	}
}
