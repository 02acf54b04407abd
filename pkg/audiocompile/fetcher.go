package audiocompile

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kindlewood/studio/pkg/blobstore"
	"github.com/pkg/errors"
)

// SegmentFetcher downloads one narration segment.
type SegmentFetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// Fetcher reads segments the blob store serves straight from it and pulls
// anything else over HTTP.
type Fetcher struct {
	store   blobstore.Store
	client  *http.Client
	timeout time.Duration
}

func NewFetcher(store blobstore.Store, timeout time.Duration) *Fetcher {
	return &Fetcher{
		store:   store,
		client:  &http.Client{},
		timeout: timeout,
	}
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	if key, ok := f.store.KeyForURL(url); ok {
		return f.store.Open(ctx, key)
	}

	cancel := context.CancelFunc(func() {})
	if f.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		cancel()
		return nil, errors.Wrapf(err, "failed to create request for %s", url)
	}
	req.Header.Set("User-Agent", "KindleWoodStudio/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		cancel()
		return nil, errors.Wrapf(err, "failed to fetch %s", url)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, errors.New(fmt.Sprintf("%s returned status %d", url, resp.StatusCode))
	}

	return &cancelOnClose{resp.Body, cancel}, nil
}
