package shopify

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

// rewriteTransport sends every request to the test server regardless of the shop host
type rewriteTransport struct {
	target *url.URL
}

func (t rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.URL.Scheme = t.target.Scheme
	r.URL.Host = t.target.Host
	return http.DefaultTransport.RoundTrip(r)
}

func newFakeShopify(t *testing.T, handler http.Handler) *http.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	target, _ := url.Parse(srv.URL)
	return &http.Client{Transport: rewriteTransport{target: target}}
}

type recordingObserver struct {
	calls []string
	errs  []error
}

func (r *recordingObserver) ObserveShopifyCall(operation string, err error) {
	r.calls = append(r.calls, operation)
	r.errs = append(r.errs, err)
}
