package metrics

import (
	"net/http"
	"strconv"
	"time"
)

// InstrumentedTransport records request latency for every round trip.
type InstrumentedTransport struct {
	Target string
	Next   http.RoundTripper
}

// InstrumentClient returns a shallow copy of client whose transport observes
// latency under target. A nil client instruments http.DefaultTransport.
func InstrumentClient(client *http.Client, target string) *http.Client {
	if client == nil {
		client = &http.Client{}
	}
	clone := *client
	clone.Transport = &InstrumentedTransport{Target: target, Next: client.Transport}
	return &clone
}

// RoundTrip implements http.RoundTripper.
func (t *InstrumentedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	next := t.Next
	if next == nil {
		next = http.DefaultTransport
	}
	start := time.Now()
	resp, err := next.RoundTrip(req)
	status := "error"
	if err == nil && resp != nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	apiLatency.WithLabelValues(t.Target, req.Method, req.URL.Path, status).Observe(time.Since(start).Seconds())
	return resp, err
}
