package deepart

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	if body == "" {
		return fmt.Sprintf("deepart %s %s: http %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("deepart %s %s: http %d: %s", e.Method, e.URL, e.StatusCode, body)
}

var transientStatuses = map[int]struct{}{
	http.StatusInternalServerError: {},
	http.StatusServiceUnavailable:  {},
	http.StatusRequestTimeout:      {},
	http.StatusGatewayTimeout:      {},
}

// IsTransient reports whether err is worth retrying: one of the retryable
// HTTP statuses, or a network timeout.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		_, ok := transientStatuses[statusErr.StatusCode]
		return ok
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
