package telegram

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/multicco/sportbot4-sub000/core/logger"
	"github.com/multicco/sportbot4-sub000/core/telegram/netutil"
)

// Bot API transport tuning. The client timeout must exceed the long-poll
// timeout, otherwise getUpdates is cut short.
const (
	apiDialTimeout     = 5 * time.Second
	apiTLSTimeout      = 5 * time.Second
	apiIdleTimeout     = 90 * time.Second
	apiClientTimeout   = 60 * time.Second
	apiRetryAttempts   = 3
	apiRetryBackoff    = 500 * time.Millisecond
	apiRetryBackoffMax = 3 * time.Second
)

// BuildHTTPClient returns the client used for Bot API calls. Requests that
// fail before a response arrives are retried when their body can be replayed.
func BuildHTTPClient() *http.Client {
	return &http.Client{
		Timeout: apiClientTimeout,
		Transport: &retryTransport{
			base: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				DialContext:         (&net.Dialer{Timeout: apiDialTimeout, KeepAlive: 30 * time.Second}).DialContext,
				ForceAttemptHTTP2:   true,
				MaxIdleConnsPerHost: 16,
				IdleConnTimeout:     apiIdleTimeout,
				TLSHandshakeTimeout: apiTLSTimeout,
			},
			attempts:   apiRetryAttempts,
			backoff:    apiRetryBackoff,
			backoffMax: apiRetryBackoffMax,
		},
	}
}

type retryTransport struct {
	base       http.RoundTripper
	attempts   int
	backoff    time.Duration
	backoffMax time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	var err error
	for attempt := 1; ; attempt++ {
		r := req
		if attempt > 1 {
			if r, err = rewind(req); err != nil {
				return nil, err
			}
		}
		var resp *http.Response
		resp, err = t.base.RoundTrip(r)
		if err == nil {
			return resp, nil
		}
		if attempt >= t.attempts || !netutil.ShouldRetry(err) || (req.Body != nil && req.GetBody == nil) {
			return nil, err
		}
		delay := netutil.Backoff(t.backoff, attempt, t.backoffMax)
		logger.Debug(ctx, "tg.http", "api.retry",
			slog.String("path", req.URL.Path),
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			slog.String("err", err.Error()),
		)
		if werr := netutil.Sleep(ctx, delay); werr != nil {
			return nil, werr
		}
	}
}

// rewind clones req with a fresh body for another attempt.
func rewind(req *http.Request) (*http.Request, error) {
	r := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		r.Body = body
	}
	return r, nil
}
