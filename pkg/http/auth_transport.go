package http

import "net/http"

type headerTransport struct {
	headers   map[string]string
	transport http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqCopy := req.Clone(req.Context())

	for key, value := range t.headers {
		if value != "" {
			reqCopy.Header.Set(key, value)
		}
	}

	return t.transport.RoundTrip(reqCopy)
}

// WithAuthToken sets a bearer Authorization header on every request. Empty tokens are skipped.
func WithAuthToken(token string) HttpOpts {
	if token == "" {
		return WithStaticHeader("Authorization", "")
	}
	return WithStaticHeader("Authorization", "Bearer "+token)
}

// WithStaticHeader sets a fixed header on every request. Empty values are skipped.
func WithStaticHeader(key, value string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &headerTransport{
			headers:   map[string]string{key: value},
			transport: rt,
		}
	})
}
