package blobstore

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// FilesystemStore keeps objects under a root directory. Objects are expected
// to be served over HTTP from baseURL (see server's /media static route).
type FilesystemStore struct {
	root    string
	baseURL string
}

func NewFilesystemStore(root, baseURL string) (*FilesystemStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, errors.WithStack(err)
	}
	return &FilesystemStore{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (fs *FilesystemStore) Root() string {
	return fs.root
}

func (fs *FilesystemStore) path(key string) (string, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(fs.root, filepath.FromSlash(cleaned)), nil
}

// Put writes to a temp file next to the destination and renames it into
// place, so readers never see a partial object.
func (fs *FilesystemStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (*Object, error) {
	dest, err := fs.path(key)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return nil, errors.WithStack(err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".upload-*")
	if err != nil {
		return nil, errors.WithStack(err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	size, err := io.Copy(tmp, &ctxReader{ctx, r})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to write %s", key)
	}
	if err := tmp.Close(); err != nil {
		return nil, errors.WithStack(err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return nil, errors.WithStack(err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return nil, errors.WithStack(err)
	}
	committed = true

	return &Object{
		Key:         key,
		URL:         fs.URL(key),
		ContentType: contentType,
		Size:        size,
	}, nil
}

func (fs *FilesystemStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	p, err := fs.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return f, nil
}

func (fs *FilesystemStore) URL(key string) string {
	return fs.baseURL + "/" + escapeKey(key)
}

func (fs *FilesystemStore) KeyForURL(rawURL string) (string, bool) {
	rest, ok := strings.CutPrefix(rawURL, fs.baseURL+"/")
	if !ok {
		return "", false
	}
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest = rest[:i]
	}
	key, err := url.PathUnescape(rest)
	if err != nil {
		return "", false
	}
	if _, err := cleanKey(key); err != nil {
		return "", false
	}
	return key, true
}
