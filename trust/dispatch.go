package trust

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"

	"golang.org/x/net/http/httpguts"
)

// Response is a fully consumed response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Dispatcher runs requests against a router in-process. It has no state and can be shared.
type Dispatcher struct {
	router http.Handler
}

func NewDispatcher(router http.Handler) *Dispatcher {
	return &Dispatcher{router: router}
}

// Dispatch does not retry and has no timeout of its own. The context is passed to the router.
// Invalid header names or values yield a *DispatchError and the router is not called.
func (d *Dispatcher) Dispatch(ctx context.Context, r *AssembledRequest) (*Response, error) {

	if err := checkHeader(r.Header); err != nil {
		return nil, &DispatchError{Method: r.Method, Path: r.Path, Err: err}
	}

	httpreq, err := http.NewRequestWithContext(ctx, r.Method, r.Path, bytes.NewReader(r.Body))
	if err != nil {
		return nil, &DispatchError{Method: r.Method, Path: r.Path, Err: err}
	}
	httpreq.Header = r.Header.Clone()
	httpreq.RemoteAddr = "192.0.2.1:1234"

	var recorder = httptest.NewRecorder()
	d.router.ServeHTTP(recorder, httpreq)

	var result = recorder.Result()
	defer result.Body.Close()

	return &Response{
		Status: result.StatusCode,
		Header: result.Header,
		Body:   recorder.Body.Bytes(),
	}, nil
}

// Cookies parses the Set-Cookie headers.
func (r *Response) Cookies() []*http.Cookie {
	return (&http.Response{Header: r.Header}).Cookies()
}

func (r *Response) Location() string {
	return r.Header.Get("Location")
}

func checkHeader(header http.Header) error {
	for name, values := range header {
		if !httpguts.ValidHeaderFieldName(name) {
			return fmt.Errorf("invalid header name %q", name)
		}
		for _, value := range values {
			if !httpguts.ValidHeaderFieldValue(value) {
				return fmt.Errorf("invalid value of header %s", name)
			}
		}
	}
	return nil
}
