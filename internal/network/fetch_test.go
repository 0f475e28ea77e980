package network

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/rs/zerolog"
)

type scriptedDoer struct {
	statuses []int
	errs     []error
	calls    int
	requests []*fhttp.Request
}

func (d *scriptedDoer) Do(req *fhttp.Request) (*fhttp.Response, error) {
	idx := d.calls
	d.calls++
	d.requests = append(d.requests, req)
	if idx < len(d.errs) && d.errs[idx] != nil {
		return nil, d.errs[idx]
	}
	status := fhttp.StatusOK
	if idx < len(d.statuses) {
		status = d.statuses[idx]
	}
	return &fhttp.Response{
		StatusCode: status,
		Header:     fhttp.Header{},
		Body:       io.NopCloser(strings.NewReader("<html>page</html>")),
	}, nil
}

type memoryDump struct {
	names []string
}

func (m *memoryDump) Write(name string, body []byte) error {
	m.names = append(m.names, name)
	return nil
}

func TestFetchSucceedsOnFifthAttempt(t *testing.T) {
	doer := &scriptedDoer{statuses: []int{403, 403, 500, 429, 200}}
	fetcher := NewFetcher(doer, zerolog.Nop())

	resp, err := fetcher.Fetch(context.Background(), "https://www.zillow.com/homes/for_rent/01950/days_sort")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if doer.calls != 5 {
		t.Fatalf("calls = %d, want 5", doer.calls)
	}
	if resp.Attempts != 5 || resp.StatusCode != 200 {
		t.Fatalf("unexpected response: attempts=%d status=%d", resp.Attempts, resp.StatusCode)
	}
	if string(resp.Body) != "<html>page</html>" {
		t.Fatalf("unexpected body: %q", resp.Body)
	}
}

func TestFetchGivesUpAfterMaxAttempts(t *testing.T) {
	doer := &scriptedDoer{statuses: []int{403, 403, 403, 403, 403, 200}}
	dump := &memoryDump{}
	fetcher := NewFetcher(doer, zerolog.Nop(), WithDump(dump))

	resp, err := fetcher.Fetch(context.Background(), "https://www.zillow.com/homes/for_rent/80524/days_sort")
	if !errors.Is(err, ErrNoResponse) {
		t.Fatalf("Fetch() error = %v, want ErrNoResponse", err)
	}
	if resp != nil {
		t.Fatalf("expected nil response, got %+v", resp)
	}
	if doer.calls != 5 {
		t.Fatalf("calls = %d, want 5", doer.calls)
	}
	if len(dump.names) != 5 {
		t.Fatalf("dumped %d responses, want 5", len(dump.names))
	}
	if dump.names[0] != "homes-for-rent-80524-days-sort-attempt-1.html" {
		t.Fatalf("unexpected dump name: %q", dump.names[0])
	}
}

func TestFetchCountsTransportErrorsAsAttempts(t *testing.T) {
	boom := errors.New("connection reset")
	doer := &scriptedDoer{errs: []error{boom, boom}, statuses: []int{0, 0, 200}}
	fetcher := NewFetcher(doer, zerolog.Nop(), WithMaxAttempts(3))

	if _, err := fetcher.Fetch(context.Background(), "https://example.com/x"); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if doer.calls != 3 {
		t.Fatalf("calls = %d, want 3", doer.calls)
	}

	doer = &scriptedDoer{errs: []error{boom, boom}}
	fetcher = NewFetcher(doer, zerolog.Nop(), WithMaxAttempts(2))
	_, err := fetcher.Fetch(context.Background(), "https://example.com/x")
	if !errors.Is(err, ErrNoResponse) {
		t.Fatalf("Fetch() error = %v, want ErrNoResponse", err)
	}
	if !strings.Contains(err.Error(), "connection reset") {
		t.Fatalf("expected last transport error in message, got %q", err.Error())
	}
}

func TestFetchStopsOnCancelledContext(t *testing.T) {
	doer := &scriptedDoer{statuses: []int{500, 500, 500, 500, 500}}
	fetcher := NewFetcher(doer, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := fetcher.Fetch(ctx, "https://example.com/x")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Fetch() error = %v, want context.Canceled", err)
	}
	if doer.calls != 0 {
		t.Fatalf("calls = %d, want 0", doer.calls)
	}
}

func TestFetchSendsBrowserHeaders(t *testing.T) {
	doer := &scriptedDoer{}
	fetcher := NewFetcher(doer, zerolog.Nop())
	if _, err := fetcher.Fetch(context.Background(), "https://example.com/x"); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	req := doer.requests[0]
	for key, value := range BrowserHeaders() {
		if got := req.Header.Get(key); got != value {
			t.Fatalf("header %s = %q, want %q", key, got, value)
		}
	}
	if got := len(req.Header[fhttp.HeaderOrderKey]); got != len(headerOrder) {
		t.Fatalf("header order has %d entries, want %d", got, len(headerOrder))
	}
}

func TestBrowserHeadersAreFixed(t *testing.T) {
	first := BrowserHeaders()
	second := BrowserHeaders()
	if len(first) != 6 {
		t.Fatalf("expected 6 headers, got %d", len(first))
	}
	for key, value := range first {
		if second[key] != value {
			t.Fatalf("header %s changed between calls", key)
		}
	}
	if !strings.Contains(first[HeaderUserAgent], "Mozilla/5.0") {
		t.Fatalf("unexpected user agent: %q", first[HeaderUserAgent])
	}
}

func TestDecodeBody(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, _ = gz.Write([]byte("<html>zipped</html>"))
	_ = gz.Close()

	if got := string(decodeBody("gzip", buf.Bytes())); got != "<html>zipped</html>" {
		t.Fatalf("decodeBody(gzip) = %q", got)
	}
	if got := string(decodeBody("gzip", []byte("<html>plain</html>"))); got != "<html>plain</html>" {
		t.Fatalf("decodeBody(already decoded) = %q", got)
	}
	if got := string(decodeBody("", []byte("raw"))); got != "raw" {
		t.Fatalf("decodeBody(identity) = %q", got)
	}
}
