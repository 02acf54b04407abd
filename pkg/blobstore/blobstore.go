// Package blobstore stores compiled media and maps object keys to the public
// URLs they're served from.
package blobstore

import (
	"context"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidKey is returned for keys that are empty, absolute, or escape the
// store root.
var ErrInvalidKey = errors.New("invalid object key")

type Object struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

type Store interface {
	// Put writes r under key, replacing any existing object.
	Put(ctx context.Context, key string, r io.Reader, contentType string) (*Object, error)
	// Open returns the object's contents. Missing objects return an error
	// matching fs.ErrNotExist.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// URL is the public URL of key.
	URL(key string) string
	// KeyForURL reverses URL for URLs this store serves.
	KeyForURL(rawURL string) (string, bool)
}

func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") {
		return "", errors.WithStack(ErrInvalidKey)
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", errors.WithStack(ErrInvalidKey)
	}
	return cleaned, nil
}

func escapeKey(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *ctxReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
