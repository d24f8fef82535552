package tsdb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-simeval/internal/infrastructure/config"
)

const (
	defaultBatchSize     = 1000
	defaultFlushInterval = time.Second
	connectTimeout       = 10 * time.Second
	requestTimeout       = 5 * time.Second
)

// Client batches line-protocol points and sends them to VictoriaMetrics.
//
// All methods are safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	batchSize  int

	mu      sync.Mutex
	pending []string
	closed  bool
	onError func(err error)

	// sendMu serialises POSTs so batches arrive in write order.
	sendMu sync.Mutex

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
}

// Connect checks that VictoriaMetrics answers /health and starts the
// background flusher.
//
// Parameters:
//   - ctx: Bounds the health check
//   - cfg: tsdb section of the configuration
//
// Returns:
//   - *Client: Ready client
//   - error: ErrDisabled, or ErrConnectionFailed wrapping the cause
func Connect(ctx context.Context, cfg config.TSDBConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	interval := time.Duration(cfg.FlushInterval) * time.Second
	if interval <= 0 {
		interval = defaultFlushInterval
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
		batchSize:  batchSize,
		pending:    make([]string, 0, batchSize),
	}

	healthCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := c.HealthCheck(healthCtx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	c.ticker = time.NewTicker(interval)
	c.stop = make(chan struct{})
	c.wg.Add(1)
	go c.flushLoop()

	return c, nil
}

func (c *Client) flushLoop() {
	defer c.wg.Done()
	for {
		select {
		case <-c.ticker.C:
			c.Flush()
		case <-c.stop:
			return
		}
	}
}

// Close stops the flusher and sends whatever is still pending. Points
// written after Close are dropped.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	lines := c.takePending()
	c.closed = true
	c.mu.Unlock()

	c.ticker.Stop()
	close(c.stop)
	c.wg.Wait()

	c.send(lines)
	return nil
}

// HealthCheck performs GET /health.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", http.NoBody)
	if err != nil {
		return fmt.Errorf("tsdb health check: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tsdb health check: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tsdb health check: status %d", resp.StatusCode)
	}
	return nil
}

// IsConnected reports whether the client still accepts points.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

// SetOnError sets the callback receiving asynchronous write failures.
func (c *Client) SetOnError(callback func(err error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = callback
}

// Flush sends all pending points now.
func (c *Client) Flush() {
	c.mu.Lock()
	lines := c.takePending()
	c.mu.Unlock()
	c.send(lines)
}

// enqueue adds a rendered point, flushing when the batch is full.
func (c *Client) enqueue(line string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.pending = append(c.pending, line)
	var full []string
	if len(c.pending) >= c.batchSize {
		full = c.takePending()
	}
	c.mu.Unlock()

	c.send(full)
}

// takePending swaps out the pending batch. c.mu must be held.
func (c *Client) takePending() []string {
	if len(c.pending) == 0 {
		return nil
	}
	lines := c.pending
	c.pending = make([]string, 0, c.batchSize)
	return lines
}

func (c *Client) send(lines []string) {
	if len(lines) == 0 {
		return
	}
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	body := strings.NewReader(strings.Join(lines, "\n"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/write", body)
	if err != nil {
		c.reportError(fmt.Errorf("%w: %w", ErrWriteFailed, err))
		return
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.reportError(fmt.Errorf("%w: %w", ErrWriteFailed, err))
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		c.reportError(fmt.Errorf("%w: HTTP %d", ErrWriteFailed, resp.StatusCode))
	}
}

func (c *Client) reportError(err error) {
	c.mu.Lock()
	callback := c.onError
	c.mu.Unlock()
	if callback != nil {
		callback(err)
	}
}
