package solver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPSolverSolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "image/png" {
			t.Errorf("content-type = %s, want image/png", ct)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":" A7K2M "}`))
	}))
	defer srv.Close()

	s := NewHTTPSolver(srv.URL, time.Second)
	got, err := s.Solve(context.Background(), []byte("png-bytes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "A7K2M" {
		t.Errorf("answer = %q, want trimmed %q", got, "A7K2M")
	}
}

func TestHTTPSolverErrors(t *testing.T) {
	tests := map[string]http.HandlerFunc{
		"http error": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not loaded", http.StatusInternalServerError)
		},
		"error body": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"error":"unreadable image"}`))
		},
		"empty answer": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"text":"  "}`))
		},
		"bad json": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		},
	}

	for name, handler := range tests {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(handler)
			defer srv.Close()

			s := NewHTTPSolver(srv.URL, time.Second)
			if _, err := s.Solve(context.Background(), []byte("img")); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
