package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/loykin/folderedit/internal/folder"
	"github.com/loykin/folderedit/internal/metrics"
)

// Client talks to a folder service. It implements folder.Store and
// connectivity.Probe.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// Config holds client configuration
type Config struct {
	BaseURL  string
	Timeout  time.Duration
	Logger   *slog.Logger // Optional logger for client operations
	TLS      *TLSClientConfig
	Insecure bool // Skip TLS verification
}

// TLSClientConfig holds TLS configuration for client
type TLSClientConfig struct {
	Enabled    bool   // Enable TLS
	CACert     string // CA certificate file path
	ClientCert string // Client certificate file
	ClientKey  string // Client private key file
	ServerName string // Server name for verification
	SkipVerify bool   // Skip certificate verification
}

// DefaultConfig returns default client configuration
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:8080/api",
		Timeout: 10 * time.Second,
	}
}

// New creates a folder service client. A TLS setup failure is returned
// rather than silently falling back to defaults.
func New(config Config) (*Client, error) {
	if config.BaseURL == "" {
		config.BaseURL = DefaultConfig().BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if config.TLS != nil && config.TLS.Enabled || config.Insecure {
		tc, err := config.tlsConfig()
		if err != nil {
			return nil, fmt.Errorf("client tls: %w", err)
		}
		transport.TLSClientConfig = tc
	}

	return &Client{
		baseURL: config.BaseURL,
		logger:  config.Logger,
		client: &http.Client{
			Timeout:   config.Timeout,
			Transport: transport,
		},
	}, nil
}

// IsReachable checks if the service is running and reachable.
func (c *Client) IsReachable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status", nil)
	if err != nil {
		c.logger.Debug("Failed to create request for reachability check", "error", err)
		return false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("Service unreachable", "error", err)
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	isReachable := resp.StatusCode != http.StatusNotFound
	c.logger.Debug("Service reachability check", "reachable", isReachable, "status", resp.StatusCode)
	return isReachable
}

// IsConnected implements connectivity.Probe.
func (c *Client) IsConnected(ctx context.Context) bool { return c.IsReachable(ctx) }

// Get fetches one folder. folder.ErrNotFound when the service answers 404.
func (c *Client) Get(ctx context.Context, id string) (folder.Folder, error) {
	var f folder.Folder
	status, err := c.doJSON(ctx, http.MethodGet, c.folderURL(id), nil, &f)
	if err != nil {
		return folder.Folder{}, err
	}
	if status == http.StatusNotFound {
		return folder.Folder{}, folder.ErrNotFound
	}
	return f, nil
}

// List returns every folder.
func (c *Client) List(ctx context.Context) ([]folder.Folder, error) {
	var fs []folder.Folder
	if _, err := c.doJSON(ctx, http.MethodGet, c.baseURL+"/folders", nil, &fs); err != nil {
		return nil, err
	}
	return fs, nil
}

// Create adds a folder with an already encoded name.
func (c *Client) Create(ctx context.Context, encodedName string) (folder.Folder, error) {
	var f folder.Folder
	if _, err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/folders", NameRequest{Name: encodedName}, &f); err != nil {
		return folder.Folder{}, err
	}
	return f, nil
}

// AddItem files an item under folderID and returns the item id.
func (c *Client) AddItem(ctx context.Context, itemID, folderID string) (string, error) {
	var out ItemRequest
	status, err := c.doJSON(ctx, http.MethodPost, c.folderURL(folderID)+"/items", ItemRequest{ID: itemID}, &out)
	if err != nil {
		return "", err
	}
	if status == http.StatusNotFound {
		return "", folder.ErrNotFound
	}
	return out.ID, nil
}

// Save implements folder.Store. Transport failures and unreadable replies are
// reported as folder.Unknown.
func (c *Client) Save(ctx context.Context, f folder.Folder) folder.Result {
	return c.mutate(ctx, http.MethodPut, c.folderURL(f.ID), NameRequest{Name: f.Name})
}

// Delete implements folder.Store.
func (c *Client) Delete(ctx context.Context, id string) folder.Result {
	return c.mutate(ctx, http.MethodDelete, c.folderURL(id), nil)
}

func (c *Client) folderURL(id string) string {
	return c.baseURL + "/folders/" + url.PathEscape(id)
}

func (c *Client) mutate(ctx context.Context, method, u string, body any) folder.Result {
	resp, err := c.send(ctx, method, u, body)
	if err != nil {
		c.logger.Error("HTTP request failed", "error", err, "url", u)
		return folder.Unknown()
	}
	defer func() { _ = resp.Body.Close() }()

	var w folder.WireResult
	if err := json.NewDecoder(resp.Body).Decode(&w); err != nil {
		c.logger.Error("Failed to decode result", "status", resp.StatusCode, "error", err)
		return folder.Unknown()
	}
	if w.Succeeded && resp.StatusCode != http.StatusOK {
		c.logger.Warn("Inconsistent result", "status", resp.StatusCode)
		return folder.Unknown()
	}
	return w.Result()
}

// send performs one request and records it in the store request counter.
func (c *Client) send(ctx context.Context, method, u string, body any) (*http.Response, error) {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		rdr = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.IncStoreRequest(method, "error")
		return nil, fmt.Errorf("do request: %w", err)
	}
	metrics.IncStoreRequest(method, strconv.Itoa(resp.StatusCode))
	return resp, nil
}

// doJSON decodes a 2xx body into out. 404 is returned as a status, not an error.
func (c *Client) doJSON(ctx context.Context, method, u string, body, out any) (int, error) {
	resp, err := c.send(ctx, method, u, body)
	if err != nil {
		c.logger.Error("HTTP request failed", "error", err, "url", u)
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return resp.StatusCode, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, c.handleErrorResponse(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// handleErrorResponse handles HTTP error responses
func (c *Client) handleErrorResponse(resp *http.Response) error {
	var errorResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errorResp); err != nil || errorResp.Error == "" {
		c.logger.Error("Failed to decode error response", "status", resp.StatusCode)
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	c.logger.Error("API request failed", "error", errorResp.Error, "status", resp.StatusCode)
	return errors.New("API error: " + errorResp.Error)
}

// tlsConfig builds the transport TLS settings. A CA file extends the system
// roots; a client certificate requires both halves of the pair.
func (c Config) tlsConfig() (*tls.Config, error) {
	out := &tls.Config{MinVersion: tls.VersionTLS12}
	if c.Insecure {
		out.InsecureSkipVerify = true // #nosec G402 explicit opt-in
		return out, nil
	}
	t := c.TLS
	if t == nil {
		return out, nil
	}
	out.InsecureSkipVerify = t.SkipVerify // #nosec G402 explicit opt-in
	out.ServerName = t.ServerName

	if t.CACert != "" {
		pem, err := os.ReadFile(t.CACert)
		if err != nil {
			return nil, fmt.Errorf("read CA %s: %w", t.CACert, err)
		}
		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			pool = x509.NewCertPool()
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("CA %s: no certificates found", t.CACert)
		}
		out.RootCAs = pool
	}

	switch {
	case t.ClientCert != "" && t.ClientKey != "":
		pair, err := tls.LoadX509KeyPair(t.ClientCert, t.ClientKey)
		if err != nil {
			return nil, fmt.Errorf("client certificate: %w", err)
		}
		out.Certificates = []tls.Certificate{pair}
	case t.ClientCert != "" || t.ClientKey != "":
		return nil, errors.New("client certificate and key must be set together")
	}
	return out, nil
}
