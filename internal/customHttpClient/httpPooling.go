package customHttpClient

import (
	"net/http"
	"sync"
	"time"

	"github.com/akolanti/DocAssist/internal/config"
)

var (
	once            sync.Once
	customTransport *http.Transport
)

func transport() *http.Transport {
	once.Do(func() {
		base := http.DefaultTransport.(*http.Transport).Clone()
		base.MaxIdleConns = config.MaxIdleConns
		base.MaxIdleConnsPerHost = config.MaxIdleConnsPerHost
		base.IdleConnTimeout = config.IdleConnTimeout
		customTransport = base
	})
	return customTransport
}

// New returns a client sharing one pooled transport, so the embedding and
// completion clients reuse connections to the same upstream.
func New(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: transport(),
		Timeout:   timeout,
	}
}
