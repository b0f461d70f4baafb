// File: pkg/storage/supabase/client.go
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"storemigrate/internal/config"
	"storemigrate/internal/provider/registry"
	"storemigrate/pkg/common"
	"storemigrate/pkg/storage"
	"strings"
	"time"
)

const (
	storagePath    = "/storage/v1"
	defaultTimeout = 5 * time.Minute
)

func init() {
	registry.RegisterProvider(common.Supabase.String(), registry.ProviderRegistration{
		ConfigCheck:  isConfigured,
		Initializer:  initialize,
		RequiredKeys: []string{"url", "key"},
	})
}

// A Supabase endpoint needs the project URL and a service role key
func isConfigured(cfg config.EndpointConfig) bool {
	return cfg.URL != "" && cfg.Key != ""
}

func initialize(ctx context.Context, cfg config.EndpointConfig, logger *slog.Logger) (storage.Storage, error) {
	if !isConfigured(cfg) {
		return nil, fmt.Errorf("supabase configuration missing or incomplete")
	}
	return NewSupabaseStorage(cfg.URL, cfg.Key, logger, nil)
}

// SupabaseStorage talks to the Supabase Storage REST API using a service role key
type SupabaseStorage struct {
	baseURL    string
	key        string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ storage.Storage = (*SupabaseStorage)(nil)

// Creates a client for the project at projectURL. A nil httpClient gets a default with a request timeout
func NewSupabaseStorage(projectURL, key string, logger *slog.Logger, httpClient *http.Client) (*SupabaseStorage, error) {
	u, err := url.Parse(strings.TrimRight(projectURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid supabase url %q", projectURL)
	}
	if key == "" {
		return nil, fmt.Errorf("supabase key is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return &SupabaseStorage{
		baseURL:    u.String() + storagePath,
		key:        key,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

func (s *SupabaseStorage) ProviderName() common.Provider {
	return common.Supabase
}

func (s *SupabaseStorage) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}

// Error body returned by the storage API. statusCode is a string in the JSON payload
type apiError struct {
	StatusCode string `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

type httpError struct {
	Status  int
	Code    string
	Message string
}

func (e *httpError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d", e.Status)
	}
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

// Reports a duplicate resource. The API answers 400 with statusCode "409" as often as a plain 409
func (e *httpError) isConflict() bool {
	return e.Status == http.StatusConflict || e.Code == "409" ||
		strings.Contains(strings.ToLower(e.Message), "already exists")
}

func (e *httpError) isNotFound() bool {
	return e.Status == http.StatusNotFound || e.Code == "404"
}

// Escapes each key segment while keeping the slashes between them
func escapeKey(key string) string {
	segments := storage.SplitKey(key)
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

func (s *SupabaseStorage) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("apikey", s.key)
	return req, nil
}

func (s *SupabaseStorage) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("error encoding request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := s.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}
	return nil
}

// Sends the request and converts non-2xx answers into *httpError
func (s *SupabaseStorage) do(req *http.Request) (*http.Response, error) {
	s.logger.Debug("Supabase storage request", "method", req.Method, "path", req.URL.Path)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	herr := &httpError{Status: resp.StatusCode}
	var apiErr apiError
	if json.Unmarshal(raw, &apiErr) == nil && (apiErr.Message != "" || apiErr.Error != "") {
		herr.Code = apiErr.StatusCode
		herr.Message = apiErr.Message
		if herr.Message == "" {
			herr.Message = apiErr.Error
		}
	} else {
		herr.Message = strings.TrimSpace(string(raw))
	}
	return nil, herr
}
