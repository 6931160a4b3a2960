package remote

import (
	"net/http"
	"sort"
	"strings"
)

// Credentials are the session cookies forwarded to the API.
type Credentials struct {
	cookies []*http.Cookie
}

// CookiesFrom forwards every cookie on an incoming request.
func CookiesFrom(r *http.Request) Credentials {
	return Credentials{cookies: r.Cookies()}
}

// WithCookies builds credentials from cookies, e.g. the ones set by Login.
func WithCookies(cookies ...*http.Cookie) Credentials {
	kept := make([]*http.Cookie, 0, len(cookies))
	for _, c := range cookies {
		if c != nil && c.Name != "" {
			kept = append(kept, &http.Cookie{Name: c.Name, Value: c.Value})
		}
	}
	return Credentials{cookies: kept}
}

// ParseCookieHeader reads a raw Cookie header such as "session=abc; theme=dark".
func ParseCookieHeader(raw string) (Credentials, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Credentials{}, nil
	}
	cookies, err := http.ParseCookie(raw)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{cookies: cookies}, nil
}

// Empty reports whether no cookie is attached.
func (c Credentials) Empty() bool { return len(c.cookies) == 0 }

// Header renders the credentials as a Cookie header value.
func (c Credentials) Header() string {
	parts := make([]string, len(c.cookies))
	for i, ck := range c.cookies {
		parts[i] = ck.Name + "=" + ck.Value
	}
	return strings.Join(parts, "; ")
}

// Key is an order-independent identity for these credentials.
func (c Credentials) Key() string {
	parts := make([]string, len(c.cookies))
	for i, ck := range c.cookies {
		parts[i] = ck.Name + "=" + ck.Value
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

func (c Credentials) apply(req *http.Request) {
	for _, ck := range c.cookies {
		req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	}
}
