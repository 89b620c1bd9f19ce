package session

import (
	"net/http"
	"sync"
)

// Pending collects the cookie and header instructions produced while one
// request executes. It belongs to that request only and is written into the
// response exactly once.
type Pending struct {
	mu      sync.Mutex
	cookies []*http.Cookie
	headers http.Header
	flushed bool
}

func NewPending() *Pending {
	return &Pending{headers: http.Header{}}
}

// SetCookie queues ck. A later cookie with the same name replaces an earlier
// one, keeping one Set-Cookie line per name.
func (p *Pending) SetCookie(ck *http.Cookie) {
	if ck == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, existing := range p.cookies {
		if existing.Name == ck.Name {
			p.cookies[i] = ck
			return
		}
	}
	p.cookies = append(p.cookies, ck)
}

// SetHeader queues a header that replaces any value already on the response.
func (p *Pending) SetHeader(key, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.headers.Set(key, value)
}

// Cookies returns a snapshot of the queued cookies in insertion order.
func (p *Pending) Cookies() []*http.Cookie {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*http.Cookie, len(p.cookies))
	copy(out, p.cookies)
	return out
}

// Flush writes the queued instructions into h. Only the first call has an
// effect; it reports whether this call was the one that wrote.
func (p *Pending) Flush(h http.Header) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.flushed {
		return false
	}
	p.flushed = true
	for key, values := range p.headers {
		h[key] = append([]string(nil), values...)
	}
	for _, ck := range p.cookies {
		if v := ck.String(); v != "" {
			h.Add("Set-Cookie", v)
		}
	}
	return true
}
