// Package httpclient provides the shared outbound HTTP client used for
// provider token-endpoint calls, with its transport periodically recycled so
// idle connections to long-gone providers don't accumulate indefinitely.
package httpclient

import (
	"net/http"
	"sync"
	"time"
)

// RecycleInterval is how often the underlying Transport is replaced.
const RecycleInterval = 15 * time.Minute

// Client wraps an *http.Client whose Transport is swapped for a fresh one
// on a fixed interval, so exhausted or misbehaving upstream connections
// never pin the process past RecycleInterval.
type Client struct {
	mu     sync.RWMutex
	client *http.Client
	stop   chan struct{}
	done   chan struct{}
}

// New starts a Client with a 30-second request timeout and immediately
// begins the recycling goroutine.
func New() *Client {
	c := &Client{
		client: newHTTPClient(),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go c.recycleLoop()
	return c
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: http.DefaultTransport.(*http.Transport).Clone(),
	}
}

func (c *Client) recycleLoop() {
	defer close(c.done)
	ticker := time.NewTicker(RecycleInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			if t, ok := c.client.Transport.(*http.Transport); ok {
				t.CloseIdleConnections()
			}
			c.client = newHTTPClient()
			c.mu.Unlock()
		case <-c.stop:
			return
		}
	}
}

// Do issues req using the current underlying client.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	c.mu.RLock()
	client := c.client
	c.mu.RUnlock()
	return client.Do(req)
}

// Stop halts the recycling goroutine and blocks until it has exited.
func (c *Client) Stop() {
	close(c.stop)
	<-c.done
}
