package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// httpBase holds the lifecycle state and client shared by every
// HTTP-backed provider.
type httpBase struct {
	mu         sync.Mutex
	state      lifecycleState
	client     *http.Client
	baseURL    string
	model      string
	dimensions int
	batchSize  int
}

func newHTTPBase(baseURL, model string, dimensions, batchSize int) *httpBase {
	if batchSize <= 0 {
		batchSize = 8
	}
	return &httpBase{
		client:     &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		model:      model,
		dimensions: dimensions,
		batchSize:  batchSize,
	}
}

func (b *httpBase) Initialize(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = stateInitialized
	return nil
}

func (b *httpBase) Dispose(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = stateDisposed
	return nil
}

func (b *httpBase) Dimensions() int {
	return b.dimensions
}

func (b *httpBase) requireLive() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != stateInitialized {
		return ErrNotInitialized
	}
	return nil
}

func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, reqBody, respBody any) error {
	buf, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("embedding: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("embedding: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("embedding: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("embedding: provider returned %d: %s", resp.StatusCode, string(b))
	}
	if respBody == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
		return fmt.Errorf("embedding: decode response: %w", err)
	}
	return nil
}

// healthCheckGET issues a bare GET and reports whether the server answered
// with a non-error status. Used by providers whose APIs expose a cheap
// liveness endpoint distinct from the embedding endpoint itself.
func healthCheckGET(ctx context.Context, client *http.Client, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 500
}
