package proxy

import "net/http"

// HeaderPolicy decides which upstream response headers reach the browser.
type HeaderPolicy struct {
	deny map[string]struct{}
}

// NewHeaderPolicy returns a policy that passes every header except deny.
func NewHeaderPolicy(deny ...string) HeaderPolicy {
	p := HeaderPolicy{deny: make(map[string]struct{}, len(deny))}
	for _, h := range deny {
		p.deny[http.CanonicalHeaderKey(h)] = struct{}{}
	}
	return p
}

// DefaultHeaderPolicy drops the hop-by-hop framing headers the server
// rewrites itself.
var DefaultHeaderPolicy = NewHeaderPolicy("Transfer-Encoding", "Connection")

// Allows reports whether header name may be forwarded.
func (p HeaderPolicy) Allows(name string) bool {
	_, denied := p.deny[http.CanonicalHeaderKey(name)]
	return !denied
}

// Copy adds every allowed header of src to dst. Headers already present in
// dst belong to the proxy and are left as they are.
func (p HeaderPolicy) Copy(dst, src http.Header) {
	for name, values := range src {
		if !p.Allows(name) {
			continue
		}
		if _, owned := dst[http.CanonicalHeaderKey(name)]; owned {
			continue
		}
		for _, v := range values {
			dst.Add(name, v)
		}
	}
}
