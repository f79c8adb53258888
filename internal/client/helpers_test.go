package client_test

import (
	"net"
	"sync"
	"testing"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

// capturedRequest is a copy of what the fake upstream received.
type capturedRequest struct {
	Method  string
	Path    string
	Query   map[string][]string
	Headers map[string]string
	Body    []byte
}

type fakeUpstream struct {
	mu       sync.Mutex
	requests []capturedRequest
}

func (f *fakeUpstream) last(t *testing.T) capturedRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		t.Fatal("no request reached the fake upstream")
	}
	return f.requests[len(f.requests)-1]
}

func (f *fakeUpstream) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// startFakeUpstream serves handler on an in-memory listener and returns a client
// that dials it regardless of the request host.
func startFakeUpstream(t *testing.T, handler fasthttp.RequestHandler) (*fasthttp.Client, *fakeUpstream) {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	up := &fakeUpstream{}

	server := &fasthttp.Server{Handler: func(ctx *fasthttp.RequestCtx) {
		req := capturedRequest{
			Method:  string(ctx.Method()),
			Path:    string(ctx.Path()),
			Query:   map[string][]string{},
			Headers: map[string]string{},
			Body:    append([]byte(nil), ctx.PostBody()...),
		}
		ctx.QueryArgs().VisitAll(func(k, v []byte) {
			req.Query[string(k)] = append(req.Query[string(k)], string(v))
		})
		ctx.Request.Header.VisitAll(func(k, v []byte) {
			req.Headers[string(k)] = string(v)
		})
		up.mu.Lock()
		up.requests = append(up.requests, req)
		up.mu.Unlock()

		handler(ctx)
	}}
	go func() { _ = server.Serve(ln) }()
	t.Cleanup(func() {
		_ = server.Shutdown()
		_ = ln.Close()
	})

	return &fasthttp.Client{
		Dial: func(string) (net.Conn, error) { return ln.Dial() },
	}, up
}

func respondJSON(status int, body string) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(status)
		ctx.SetContentType("application/json")
		ctx.SetBodyString(body)
	}
}
