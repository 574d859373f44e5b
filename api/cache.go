package api

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"fmt"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/stockdash/date"
	"github.com/rs/zerolog"
)

func defaultCacheDir() string { return filepath.Join(os.TempDir(), "stockdash") }

// marketPaths are the only endpoints cached: market data does not change
// during the day, the portfolio and the backtest history do.
var marketPaths = []string{"/api/stocks/symbols", "/api/stocks"}

// diskCache is an http.RoundTripper keeping successful GET responses of the
// market data endpoints on disk. The key includes the day, so entries expire
// daily.
type diskCache struct {
	base http.RoundTripper
	dir  string
	log  zerolog.Logger
}

func (c *diskCache) RoundTrip(req *http.Request) (*http.Response, error) {
	if !cacheable(req) {
		return c.base.RoundTrip(req)
	}
	key := cacheKey(date.Today(), req)

	if cached, err := c.get(key, req); err == nil {
		c.log.Debug().Str("url", req.URL.String()).Msg("cache hit")
		return cached, nil
	}

	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return resp, nil
	}
	if err := c.put(key, resp); err != nil {
		c.log.Warn().Err(err).Msg("cache write failed (ignored)")
	}
	return resp, nil
}

func cacheable(req *http.Request) bool {
	if req.Method != http.MethodGet {
		return false
	}
	for _, p := range marketPaths {
		if strings.HasSuffix(req.URL.Path, p) {
			return true
		}
	}
	return false
}

func cacheKey(day date.Date, req *http.Request) string {
	key := fmt.Sprintf("%s %s %s", day, req.Method, req.URL.String())
	return fmt.Sprintf("%x", sha1.Sum([]byte(key)))
}

// get retrieves a cached response from disk
func (c *diskCache) get(key string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(filepath.Join(c.dir, key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req)
}

// put stores a response to disk. DumpResponse leaves resp.Body readable.
func (c *diskCache) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, key), content, 0o644)
}
