package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/loykin/folderedit/internal/analytics"
)

// document is the indexed shape of an event; @timestamp lets dashboards pick up the
// time field without a mapping.
type document struct {
	Timestamp time.Time `json:"@timestamp"`
	Event     string    `json:"event"`
	Source    string    `json:"source,omitempty"`
}

// Sink indexes events one document at a time into baseURL/index/_doc.
type Sink struct {
	client *http.Client
	url    string
}

// New returns a sink with a 5s request timeout.
func New(baseURL, index string) *Sink {
	return NewWithClient(&http.Client{Timeout: 5 * time.Second}, baseURL, index)
}

// NewWithClient uses c for every request.
func NewWithClient(c *http.Client, baseURL, index string) *Sink {
	u := strings.TrimRight(baseURL, "/") + "/" + strings.Trim(index, "/") + "/_doc"
	return &Sink{client: c, url: u}
}

func (s *Sink) Send(ctx context.Context, e analytics.Event) error {
	body, err := json.Marshal(document{Timestamp: e.OccurredAt, Event: e.Name, Source: e.Source})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("index event %s: %w", e.Name, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("index event %s: status %d: %s", e.Name, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

// Close drops idle keep-alive connections.
func (s *Sink) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
