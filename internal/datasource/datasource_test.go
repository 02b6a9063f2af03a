package datasource

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// ════════════════════════════════════════════════════════════════════
// doGet
// ════════════════════════════════════════════════════════════════════

func TestDoGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Write([]byte("hello"))
		case "/limited":
			w.WriteHeader(http.StatusTooManyRequests)
		case "/broken":
			http.Error(w, "upstream exploded", http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	t.Run("success", func(t *testing.T) {
		body, status, err := doGet(context.Background(), srv.URL+"/ok", nil)
		if err != nil {
			t.Fatalf("doGet: %v", err)
		}
		defer body.Close()
		if status != http.StatusOK {
			t.Errorf("status = %d, want 200", status)
		}
		data, _ := io.ReadAll(body)
		if string(data) != "hello" {
			t.Errorf("body = %q, want %q", data, "hello")
		}
	})

	t.Run("rate limited", func(t *testing.T) {
		_, _, err := doGet(context.Background(), srv.URL+"/limited", nil)
		if !errors.Is(err, ErrRateLimited) {
			t.Errorf("err = %v, want ErrRateLimited", err)
		}
	})

	t.Run("http error carries status and body", func(t *testing.T) {
		_, _, err := doGet(context.Background(), srv.URL+"/broken", nil)
		var httpErr *ErrHTTP
		if !errors.As(err, &httpErr) {
			t.Fatalf("err = %v, want *ErrHTTP", err)
		}
		if httpErr.StatusCode != http.StatusBadGateway {
			t.Errorf("status = %d, want 502", httpErr.StatusCode)
		}
	})

	t.Run("context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, _, err := doGet(ctx, srv.URL+"/ok", nil)
		if err == nil {
			t.Error("expected error for cancelled context")
		}
	})
}

// ════════════════════════════════════════════════════════════════════
// Cache
// ════════════════════════════════════════════════════════════════════

func TestCache(t *testing.T) {
	t.Run("set and get", func(t *testing.T) {
		c := NewCache(time.Minute)
		c.Set("k", 42)
		v, ok := c.Get("k")
		if !ok || v.(int) != 42 {
			t.Errorf("Get = %v, %v; want 42, true", v, ok)
		}
	})

	t.Run("miss", func(t *testing.T) {
		c := NewCache(time.Minute)
		if _, ok := c.Get("absent"); ok {
			t.Error("expected miss for absent key")
		}
	})

	t.Run("expiry", func(t *testing.T) {
		c := NewCache(time.Millisecond)
		c.Set("k", "v")
		time.Sleep(5 * time.Millisecond)
		if _, ok := c.Get("k"); ok {
			t.Error("expected expired entry to miss")
		}
	})

	t.Run("invalidate", func(t *testing.T) {
		c := NewCache(time.Minute)
		c.Set("k", "v")
		c.Invalidate("k")
		if _, ok := c.Get("k"); ok {
			t.Error("expected invalidated entry to miss")
		}
	})

	t.Run("flush", func(t *testing.T) {
		c := NewCache(time.Minute)
		c.Set("a", 1)
		c.Set("b", 2)
		c.Flush()
		if _, ok := c.Get("a"); ok {
			t.Error("expected flushed cache to miss")
		}
	})
}

// ════════════════════════════════════════════════════════════════════
// RateLimiter
// ════════════════════════════════════════════════════════════════════

func TestRateLimiter(t *testing.T) {
	t.Run("allows burst up to capacity", func(t *testing.T) {
		rl := NewRateLimiter(3, time.Hour)
		ctx := context.Background()
		for i := 0; i < 3; i++ {
			done := make(chan error, 1)
			go func() { done <- rl.Wait(ctx) }()
			select {
			case err := <-done:
				if err != nil {
					t.Fatalf("Wait %d: %v", i, err)
				}
			case <-time.After(time.Second):
				t.Fatalf("Wait %d blocked unexpectedly", i)
			}
		}
	})

	t.Run("blocks when exhausted until cancelled", func(t *testing.T) {
		rl := NewRateLimiter(1, time.Hour)
		if err := rl.Wait(context.Background()); err != nil {
			t.Fatalf("first Wait: %v", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		if err := rl.Wait(ctx); err == nil {
			t.Error("expected Wait to fail when tokens exhausted and context expires")
		}
	})
}
