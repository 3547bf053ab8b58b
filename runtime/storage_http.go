package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrReadOnly is returned by write operations on read-only storage
var ErrReadOnly = errors.New("storage is read-only")

// IndexKey names the object HTTPStorage reads to list a prefix
const IndexKey = "index.json"

// HTTPStorage reads objects from a public bucket URL (R2 public bucket, CDN,
// static file server). Listing reads <prefix>index.json, a JSON array of
// keys relative to prefix.
type HTTPStorage struct {
	baseURL string
	client  *http.Client
}

// NewHTTPStorage creates read-only storage rooted at baseURL
func NewHTTPStorage(baseURL string, client *http.Client) *HTTPStorage {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPStorage{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}
}

func (s *HTTPStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/"+strings.TrimPrefix(key, "/"), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	switch resp.StatusCode {
	case http.StatusOK:
		return resp.Body, nil
	case http.StatusNotFound:
		resp.Body.Close()
		return nil, io.EOF
	default:
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s failed: %s", key, resp.Status)
	}
}

func (s *HTTPStorage) Put(ctx context.Context, key string, data []byte, contentType string) error {
	return ErrReadOnly
}

func (s *HTTPStorage) List(ctx context.Context, prefix string, delimiter string) (*ListResult, error) {
	rc, err := s.Get(ctx, prefix+IndexKey)
	if errors.Is(err, io.EOF) {
		return &ListResult{Keys: []string{}}, nil
	}
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var names []string
	if err := json.NewDecoder(rc).Decode(&names); err != nil {
		return nil, fmt.Errorf("decode %s%s: %w", prefix, IndexKey, err)
	}
	result := &ListResult{Keys: make([]string, 0, len(names))}
	for _, n := range names {
		result.Keys = append(result.Keys, prefix+n)
	}
	return result, nil
}

func (s *HTTPStorage) Delete(ctx context.Context, key string) error {
	return ErrReadOnly
}
