package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sygaldry-ai/sygaldry/internal/manifest"
)

const (
	defaultFetchTimeout = 15 * time.Second
	defaultMaxAttempts  = 3
	defaultBackoff      = 500 * time.Millisecond
)

// HTTPSource fetches manifests and payload files from an HTTP registry
// exposing GET /index.json and GET /<name>/<path>.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client

	// MaxAttempts and Backoff govern retries for transient failures.
	// Not-found responses fail immediately without retry.
	MaxAttempts int
	Backoff     time.Duration
}

// NewHTTPSource returns a source over an HTTP registry with default timeout
// and retry settings.
func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		Client:      &http.Client{Timeout: defaultFetchTimeout},
		MaxAttempts: defaultMaxAttempts,
		Backoff:     defaultBackoff,
	}
}

func (s *HTTPSource) Fetch(ctx context.Context, name string) (*manifest.Manifest, error) {
	data, err := s.get(ctx, name, name+"/"+manifestFileName)
	if err != nil {
		return nil, err
	}

	m, err := manifest.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("registry manifest for %s: %w", name, err)
	}
	if m.Name != name {
		return nil, fmt.Errorf("registry manifest declares name %q, expected %q", m.Name, name)
	}
	return m, nil
}

func (s *HTTPSource) FetchFile(ctx context.Context, name, path string) ([]byte, error) {
	return s.get(ctx, name, name+"/"+path)
}

func (s *HTTPSource) List(ctx context.Context) ([]IndexEntry, error) {
	data, err := s.get(ctx, "index", "index.json")
	if err != nil {
		return nil, err
	}

	var index []IndexEntry
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("parsing registry index: %w", err)
	}
	return index, nil
}

// get performs a GET with bounded retries. 404 maps to
// ManifestNotFoundError and is never retried; network errors and 5xx
// responses retry with backoff until the attempt budget runs out.
func (s *HTTPSource) get(ctx context.Context, name, path string) ([]byte, error) {
	target, err := url.JoinPath(s.BaseURL, path)
	if err != nil {
		return nil, fmt.Errorf("building registry URL for %s: %w", path, err)
	}

	attempts := s.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	backoff := s.Backoff

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(backoff):
				backoff *= 2
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		data, retryable, err := s.getOnce(ctx, name, target)
		if err == nil {
			return data, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}

	return nil, &FetchError{Name: name, Attempts: attempts, Err: lastErr}
}

func (s *HTTPSource) getOnce(ctx context.Context, name, target string) (data []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, false, err
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, true, fmt.Errorf("reading response from %s: %w", target, err)
		}
		return body, false, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, &ManifestNotFoundError{Name: name}
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("registry returned %s for %s", resp.Status, target)
	default:
		return nil, false, fmt.Errorf("registry returned %s for %s", resp.Status, target)
	}
}
