package wikitable

import (
	"animfilms-backend/lib/restyutil"
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html/charset"
)

// FetchError means the source page could not be retrieved.
type FetchError struct {
	Url string
	// Status is the http status code, 0 if no response was received.
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d: %s", e.Url, e.Status, e.Err.Error())
	}
	return fmt.Sprintf("fetch %s: %s", e.Url, e.Err.Error())
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher retrieves the raw bytes of a document.
type Fetcher interface {
	Fetch(ctx context.Context, link string) ([]byte, error)
}

const DefaultUserAgent = "animfilms-backend/1.0 (scheduled table snapshot)"

type HttpFetcherOptions struct {
	// Timeout bounds a whole request, including reading the body, defaults to 30s.
	Timeout   time.Duration
	UserAgent string
	// CloudflareBypass wraps the transport to get past cloudflare's bot checks.
	CloudflareBypass bool
	// Output receives a dump of every request, it can be nil.
	Output restyutil.InstrumentOutput
}

// HttpFetcher is a Fetcher over http(s), documents are always returned utf-8 encoded.
type HttpFetcher struct {
	client *resty.Client
}

func NewHttpFetcher(opts HttpFetcherOptions) HttpFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = time.Second * 30
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	client := resty.New()
	client.SetTimeout(opts.Timeout)
	client.SetHeader("user-agent", opts.UserAgent)
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	restyutil.InstrumentClient(client, tracer, opts.Output)

	return HttpFetcher{client: client}
}

func (f HttpFetcher) Fetch(ctx context.Context, link string) ([]byte, error) {
	res, err := f.client.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		return nil, &FetchError{Url: link, Err: err}
	}
	if res.IsError() {
		return nil, &FetchError{
			Url:    link,
			Status: res.StatusCode(),
			Err:    fmt.Errorf("unexpected response %s", res.Status()),
		}
	}

	reader, err := charset.NewReader(bytes.NewReader(res.Body()), res.Header().Get("Content-Type"))
	if err != nil {
		return nil, &FetchError{Url: link, Err: fmt.Errorf("decode body: %w", err)}
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, &FetchError{Url: link, Err: fmt.Errorf("decode body: %w", err)}
	}
	return body, nil
}
