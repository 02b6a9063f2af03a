package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rcamargo/marketpulse/internal/config"
)

// Remote calls an HTTP sentiment model endpoint. Inference backends are
// rarely safe under concurrent load from one client, so requests are
// serialized with a mutex.
type Remote struct {
	url    string
	client *http.Client

	mu        sync.Mutex
	available bool
}

// NewRemote creates a Remote classifier from configuration. The backend
// is considered unavailable until the first successful probe or request.
func NewRemote(cfg config.ClassifierConfig) *Remote {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Remote{
		url:    cfg.RemoteURL,
		client: &http.Client{Timeout: timeout},
	}
}

// Available reports whether the last probe or request succeeded.
func (r *Remote) Available() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.available
}

// Probe sends a trivial classification request to warm up and verify
// the backend. Call it once at startup; failure is not fatal, the
// pipeline will record skipped articles instead.
func (r *Remote) Probe(ctx context.Context) error {
	_, err := r.Classify(ctx, "probe")
	return err
}

type remoteRequest struct {
	Text string `json:"text"`
}

// Classify posts the text to the remote model and maps its response.
func (r *Remote) Classify(ctx context.Context, text string) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	payload, err := json.Marshal(remoteRequest{Text: text})
	if err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(payload))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.markDown()
		return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.markDown()
		return Result{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var res Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		r.markDown()
		return Result{}, fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}

	r.available = true
	return res, nil
}

// markDown records a failed request. Must be called with mu held.
func (r *Remote) markDown() {
	r.available = false
}
