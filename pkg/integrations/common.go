package integrations

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	// DefaultTimeout bounds every individual request.
	DefaultTimeout = 10 * time.Second

	// maxBodySize caps response bodies; product pages and source images are
	// well below this.
	maxBodySize = 32 << 20
)

// BrowserUserAgent is a realistic desktop browser identification string.
// Retail catalogs reject the default Go client header.
const BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

var (
	// ErrNotFound is returned when the remote resource doesn't exist.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// StatusError reports a non-success HTTP status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

// StatusCode extracts the HTTP status from err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// NewHTTPClient creates an HTTP client with the given timeout, or
// [DefaultTimeout] when timeout is zero.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// BrowserHeaders returns the default headers sent to catalog hosts.
func BrowserHeaders(userAgent string) map[string]string {
	if userAgent == "" {
		userAgent = BrowserUserAgent
	}
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          "text/html,application/xhtml+xml,image/avif,image/webp,image/*,*/*;q=0.8",
		"Accept-Language": "es-ES,es;q=0.9,en;q=0.8",
	}
}
