//go:build cloudflare

package runtime

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/syumai/workers/cloudflare/r2"
)

// R2Storage implements Storage using a Cloudflare R2 bucket binding
type R2Storage struct {
	bucket *r2.Bucket
}

// NewR2Storage opens the bucket bound as bucketBinding in wrangler.toml
func NewR2Storage(bucketBinding string) (*R2Storage, error) {
	bucket, err := r2.NewBucket(bucketBinding)
	if err != nil {
		return nil, err
	}
	return &R2Storage{bucket: bucket}, nil
}

func (s *R2Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.bucket.Get(key)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, io.EOF
	}
	return io.NopCloser(obj.Body), nil
}

func (s *R2Storage) Put(ctx context.Context, key string, data []byte, contentType string) error {
	opts := &r2.PutOptions{}
	if contentType != "" {
		opts.HTTPMetadata = r2.HTTPMetadata{ContentType: contentType}
	}
	_, err := s.bucket.Put(key, io.NopCloser(bytes.NewReader(data)), opts)
	return err
}

// List filters the bucket listing in process; the binding's List takes no options.
func (s *R2Storage) List(ctx context.Context, prefix string, delimiter string) (*ListResult, error) {
	objects, err := s.bucket.List()
	if err != nil {
		return nil, err
	}
	lr := &ListResult{Keys: make([]string, 0, len(objects.Objects))}
	seen := make(map[string]bool)
	for _, obj := range objects.Objects {
		if !strings.HasPrefix(obj.Key, prefix) {
			continue
		}
		if delimiter != "" {
			if i := strings.Index(obj.Key[len(prefix):], delimiter); i >= 0 {
				p := obj.Key[:len(prefix)+i+len(delimiter)]
				if !seen[p] {
					seen[p] = true
					lr.DelimitedPrefixes = append(lr.DelimitedPrefixes, p)
				}
				continue
			}
		}
		lr.Keys = append(lr.Keys, obj.Key)
	}
	return lr, nil
}

func (s *R2Storage) Delete(ctx context.Context, key string) error {
	return s.bucket.Delete(key)
}
