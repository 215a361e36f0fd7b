package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/motemen/go-loghttp"

	"github.com/pfrederiksen/covid19-scraping/internal/config"
	"github.com/pfrederiksen/covid19-scraping/internal/document"
	"github.com/pfrederiksen/covid19-scraping/internal/logger"
	"github.com/pfrederiksen/covid19-scraping/internal/retry"
	"github.com/pfrederiksen/covid19-scraping/internal/storage"
)

const logCategory = "file"

var (
	// ErrLinkNotFound means the listing page has no anchor with the wanted suffix.
	ErrLinkNotFound = errors.New("no matching link on listing page")

	// ErrUnsupportedType means no download strategy exists for the type/persist pair.
	ErrUnsupportedType = errors.New("not support file type")

	errEmptyBody = errors.New("empty response body")
)

// StatusError reports a response other than 200 OK.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}

// transientError marks a failure that is worth another attempt.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func transient(err error) error { return &transientError{err: err} }

func isTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

// Fetcher downloads report files linked from listing pages on one site.
type Fetcher struct {
	client    *http.Client
	baseURL   string
	userAgent string
	attempts  int
	delay     time.Duration
	store     *storage.Storage
}

// New creates a Fetcher for cfg.BaseURL. store receives persisted downloads and
// may be nil if only in-memory fetches are made.
func New(cfg *config.Config, store *storage.Storage) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: newTransport(),
		},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		attempts:  cfg.RetryAttempts,
		delay:     cfg.RetryDelay,
		store:     store,
	}
}

func newTransport() http.RoundTripper {
	return &loghttp.Transport{
		Transport: http.DefaultTransport,
		LogRequest: func(req *http.Request) {
			logger.Debug("http", "request", logger.Fields{
				"method": req.Method,
				"url":    req.URL.String(),
			})
		},
		LogResponse: func(resp *http.Response) {
			logger.Debug("http", "response", logger.Fields{
				"url":    resp.Request.URL.String(),
				"status": resp.StatusCode,
			})
		},
	}
}

// Fetch loads the listing page at path, follows the first link ending in
// fileType and decodes the linked file. PDFs are always saved to the data
// directory; spreadsheets only when persist is set.
func (f *Fetcher) Fetch(ctx context.Context, pagePath string, fileType document.Type, persist bool) (*document.Document, error) {
	if fileType == document.TypePDF {
		persist = true
	}
	fetch, ok := strategies[strategyKey{fileType, persist}]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, fileType)
	}
	if persist && f.store == nil {
		return nil, fmt.Errorf("saving %s file: no data directory configured", fileType)
	}

	pageURL := f.baseURL + pagePath
	logger.Log(logCategory, "get html file...")

	start := time.Now()
	page, err := f.getBytes(ctx, pageURL, "html")
	if err != nil {
		return nil, err
	}
	logger.RecordTiming("fetch.listing", time.Since(start))

	href, err := FindLink(bytes.NewReader(page), string(fileType))
	if err != nil {
		return nil, err
	}

	fileURL, err := f.resolve(href)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	doc, err := fetch(f, ctx, fileURL, fileType)
	if err != nil {
		return nil, err
	}
	logger.RecordTiming("fetch.download", time.Since(start))
	logger.IncrCounter("fetch.downloads")

	return doc, nil
}

// FindLink returns the href of the first anchor, in document order, whose href
// ends with suffix. The comparison is a plain case-sensitive string suffix.
func FindLink(r io.Reader, suffix string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	var (
		href  string
		found bool
	)
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		h, _ := sel.Attr("href")
		if strings.HasSuffix(h, suffix) {
			href, found = h, true
			return false
		}
		return true
	})

	if !found {
		return "", fmt.Errorf("can't get %s file: %w", suffix, ErrLinkNotFound)
	}
	return href, nil
}

// resolve turns an href into an absolute URL on the base origin.
func (f *Fetcher) resolve(href string) (string, error) {
	base, err := url.Parse(f.baseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("parsing link %q: %w", href, err)
	}
	return base.ResolveReference(ref).String(), nil
}

func (f *Fetcher) policy(what, target string) retry.Policy {
	return retry.Policy{
		MaxAttempts: f.attempts,
		Delay:       f.delay,
		Retryable:   isTransient,
		OnRetry: func(attempt int, err error) {
			logger.IncrCounter("fetch.retries")
			logger.Warn(logCategory, fmt.Sprintf("Failed get %s file from %q. retrying...", what, target), logger.Fields{
				"attempt": attempt,
				"cause":   err.Error(),
			})
		},
	}
}

// get issues one GET request. Transport failures are transient.
func (f *Fetcher) get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, transient(err)
	}
	return resp, nil
}

// getBytes downloads target into memory. Transport failures and empty bodies
// are retried; a non-200 status fails at once.
func (f *Fetcher) getBytes(ctx context.Context, target, what string) ([]byte, error) {
	body, err := retry.Do(ctx, f.policy(what, target), func(ctx context.Context) ([]byte, error) {
		resp, err := f.get(ctx, target)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, &StatusError{Code: resp.StatusCode}
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, transient(fmt.Errorf("reading body: %w", err))
		}
		if len(data) == 0 {
			return nil, transient(errEmptyBody)
		}
		return data, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed get %s file from %q: %w", what, target, err)
	}
	return body, nil
}

// save streams target into the data directory under its basename. Only the
// status check is retried; the body is copied once a 200 arrives.
func (f *Fetcher) save(ctx context.Context, target string, fileType document.Type) (string, error) {
	name, err := basename(target)
	if err != nil {
		return "", err
	}

	resp, err := retry.Do(ctx, f.policy(string(fileType), target), func(ctx context.Context) (*http.Response, error) {
		resp, err := f.get(ctx, target)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, transient(&StatusError{Code: resp.StatusCode})
		}
		return resp, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed get %s file from %q: %w", fileType, target, err)
	}
	defer resp.Body.Close()

	return f.store.SaveDownload(name, resp.Body)
}

func basename(target string) (string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("parsing file URL: %w", err)
	}
	name := path.Base(u.Path)
	if name == "/" || name == "." {
		return "", fmt.Errorf("file URL %q has no file name", target)
	}
	return name, nil
}
