package resource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html/charset"
)

const (
	userAgent    = "slama/0.1"
	maxRedirects = 10
)

var (
	ErrRedirectLoop     = errors.New("redirect loop")
	ErrTooManyRedirects = errors.New("too many redirects")
)

// Fetcher retrieves the decoded text of a page.
type Fetcher interface {
	Fetch(ctx context.Context, u *URL) (string, error)
}

type cacheEntry struct {
	content string
	expires time.Time
}

// DefaultFetcher reads file and data URLs directly and fetches http(s) with a
// shared client, so connections are reused across requests. Successful
// responses with a max-age are cached in memory until they expire.
type DefaultFetcher struct {
	client *http.Client
	now    func() time.Time

	mu    sync.Mutex
	cache map[string]cacheEntry
}

func NewFetcher() *DefaultFetcher {
	f := &DefaultFetcher{
		now:   time.Now,
		cache: make(map[string]cacheEntry),
	}
	f.client = &http.Client{
		Timeout:       30 * time.Second,
		CheckRedirect: checkRedirect,
	}
	return f
}

func checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) > maxRedirects {
		return ErrTooManyRedirects
	}
	next := req.URL.String()
	for _, prev := range via {
		if prev.URL.String() == next {
			return fmt.Errorf("%w at %s", ErrRedirectLoop, next)
		}
	}
	return nil
}

// Fetch returns the page text. view-source URLs have their markup escaped so
// it renders as text.
func (f *DefaultFetcher) Fetch(ctx context.Context, u *URL) (string, error) {
	content, err := f.fetch(ctx, u)
	if err != nil {
		return "", err
	}
	if u.ViewSource {
		content = strings.NewReplacer("<", "&lt;", ">", "&gt;").Replace(content)
	}
	return content, nil
}

func (f *DefaultFetcher) fetch(ctx context.Context, u *URL) (string, error) {
	switch u.Scheme {
	case "data":
		return u.Path, nil
	case "file":
		body, err := os.ReadFile(u.Path)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", u.Path, err)
		}
		return string(body), nil
	case "http", "https":
		return f.fetchHTTP(ctx, u)
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
}

func (f *DefaultFetcher) fetchHTTP(ctx context.Context, u *URL) (string, error) {
	key := u.String()
	if content, ok := f.cached(key); ok {
		return content, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, key, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("HTTP %d fetching %s", resp.StatusCode, key)
	}

	reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", key, err)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}
	content := string(body)

	if resp.StatusCode == http.StatusOK {
		if maxAge, ok := cacheMaxAge(resp.Header.Get("Cache-Control")); ok {
			f.store(key, content, maxAge)
		}
	}
	return content, nil
}

// cacheMaxAge returns the max-age of a Cache-Control header, refusing
// no-store and no-cache responses.
func cacheMaxAge(header string) (time.Duration, bool) {
	var maxAge time.Duration
	found := false
	for _, directive := range strings.Split(header, ",") {
		directive = strings.ToLower(strings.TrimSpace(directive))
		switch {
		case directive == "no-store", directive == "no-cache":
			return 0, false
		case strings.HasPrefix(directive, "max-age="):
			n, err := strconv.Atoi(strings.TrimPrefix(directive, "max-age="))
			if err != nil || n <= 0 {
				return 0, false
			}
			maxAge = time.Duration(n) * time.Second
			found = true
		}
	}
	return maxAge, found
}

func (f *DefaultFetcher) cached(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.cache[key]
	if !ok {
		return "", false
	}
	if !entry.expires.After(f.now()) {
		delete(f.cache, key)
		return "", false
	}
	return entry.content, true
}

func (f *DefaultFetcher) store(key, content string, maxAge time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cache[key] = cacheEntry{content: content, expires: f.now().Add(maxAge)}
}
