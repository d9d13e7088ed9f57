package spider

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sim0n-says/AnalyseFauneQuebec/limiter"
	"github.com/sim0n-says/AnalyseFauneQuebec/proxy"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type FetchType int

const (
	BaseFetchType FetchType = iota
	BrowserFetchType
)

// ParseFetchType maps the configuration name of a fetcher to its type.
func ParseFetchType(name string) (FetchType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "base":
		return BaseFetchType, nil
	case "", "browser":
		return BrowserFetchType, nil
	default:
		return BrowserFetchType, fmt.Errorf("unknown fetcher type %q", name)
	}
}

type Fetcher interface {
	/*
	   Get downloads url and returns its body converted to UTF-8.

	   Any non-2xx status is returned as a *StatusError; transport failures are
	   wrapped. Cancelling ctx aborts the request.
	*/
	Get(ctx context.Context, url string) ([]byte, error)
}

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("error status code:%d url:%s", e.StatusCode, e.URL)
}

// IsStatusError reports whether err carries a *StatusError.
func IsStatusError(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}

type fetchOptions struct {
	logger    *zap.Logger
	userAgent string
	cookie    string
	timeout   time.Duration
	retries   int
	proxy     proxy.ProxyFunc
	limit     limiter.RateLimiter
}

var defaultFetchOptions = fetchOptions{
	logger:  zap.NewNop(),
	timeout: 10 * time.Second,
}

type FetchOption func(opts *fetchOptions)

func WithLogger(logger *zap.Logger) FetchOption {
	return func(opts *fetchOptions) {
		opts.logger = logger
	}
}

func WithUserAgent(ua string) FetchOption {
	return func(opts *fetchOptions) {
		opts.userAgent = ua
	}
}

func WithCookie(cookie string) FetchOption {
	return func(opts *fetchOptions) {
		opts.cookie = cookie
	}
}

func WithTimeout(timeout time.Duration) FetchOption {
	return func(opts *fetchOptions) {
		opts.timeout = timeout
	}
}

// WithRetries enables bounded retries on network errors and 5xx responses.
// Only the browser fetcher honours it.
func WithRetries(n int) FetchOption {
	return func(opts *fetchOptions) {
		opts.retries = n
	}
}

func WithProxy(p proxy.ProxyFunc) FetchOption {
	return func(opts *fetchOptions) {
		opts.proxy = p
	}
}

func WithLimiter(l limiter.RateLimiter) FetchOption {
	return func(opts *fetchOptions) {
		opts.limit = l
	}
}

/*
NewFetchService builds the fetcher selected by typ.

The base fetcher is a plain net/http GET. The browser fetcher goes through a
resty client carrying the configured User-Agent, cookie, proxy and retry
policy.
*/
func NewFetchService(typ FetchType, opts ...FetchOption) Fetcher {
	options := defaultFetchOptions
	for _, opt := range opts {
		opt(&options)
	}
	switch typ {
	case BaseFetchType:
		return &baseFetch{fetchOptions: options}
	default:
		return newBrowserFetch(options)
	}
}

type baseFetch struct {
	fetchOptions
}

func (b *baseFetch) Get(ctx context.Context, url string) ([]byte, error) {
	if err := wait(ctx, b.limit); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("get url failed:%w", err)
	}
	if b.userAgent != "" {
		req.Header.Set("User-Agent", b.userAgent)
	}
	if b.cookie != "" {
		req.Header.Set("Cookie", b.cookie)
	}

	client := &http.Client{Timeout: b.timeout}
	if b.proxy != nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = b.proxy
		client.Transport = transport
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	return toUTF8(resp.Body, resp.Header.Get("Content-Type"))
}

type browserFetch struct {
	fetchOptions
	client *resty.Client
}

func newBrowserFetch(options fetchOptions) *browserFetch {
	client := resty.New().
		SetTimeout(options.timeout).
		SetRetryCount(options.retries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second)

	if options.retries > 0 {
		client.AddRetryCondition(func(r *resty.Response, err error) bool {
			return r != nil && r.StatusCode() >= http.StatusInternalServerError
		})
	}
	if options.userAgent != "" {
		client.SetHeader("User-Agent", options.userAgent)
	}
	if options.cookie != "" {
		client.SetHeader("Cookie", options.cookie)
	}
	if options.proxy != nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = options.proxy
		client.SetTransport(transport)
	}

	return &browserFetch{fetchOptions: options, client: client}
}

func (b *browserFetch) Get(ctx context.Context, url string) ([]byte, error) {
	if err := wait(ctx, b.limit); err != nil {
		return nil, err
	}

	resp, err := b.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if !resp.IsSuccess() {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode()}
	}

	b.logger.Debug("fetched",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("took", resp.Time()),
	)

	return toUTF8(bytes.NewReader(resp.Body()), resp.Header().Get("Content-Type"))
}

func wait(ctx context.Context, l limiter.RateLimiter) error {
	if l == nil {
		return nil
	}
	return l.Wait(ctx)
}

func toUTF8(r io.Reader, contentType string) ([]byte, error) {
	bodyReader := bufio.NewReader(r)
	e := DeterminEncoding(bodyReader, contentType)
	utf8Reader := transform.NewReader(bodyReader, e.NewDecoder())
	return io.ReadAll(utf8Reader)
}

// DeterminEncoding sniffs the first KiB of r, using contentType as a hint.
func DeterminEncoding(r *bufio.Reader, contentType string) encoding.Encoding {
	peeked, err := r.Peek(1024)
	if err != nil && !errors.Is(err, io.EOF) {
		zap.L().Error("fetch failed", zap.Error(err))
		return unicode.UTF8
	}

	e, _, _ := charset.DetermineEncoding(peeked, contentType)
	return e
}
