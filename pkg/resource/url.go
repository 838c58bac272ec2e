package resource

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrUnsupportedScheme = errors.New("unsupported URL scheme")

const viewSourcePrefix = "view-source:"

// URL is a parsed page address. For data URLs Path holds the payload.
type URL struct {
	Scheme     string
	Host       string
	Port       int
	Path       string
	ViewSource bool
}

// ParseURL accepts http, https, file and data URLs, optionally prefixed with
// view-source:.
func ParseURL(raw string) (*URL, error) {
	u := &URL{}
	if strings.HasPrefix(raw, viewSourcePrefix) {
		u.ViewSource = true
		raw = raw[len(viewSourcePrefix):]
	}

	if strings.HasPrefix(raw, "data:") {
		_, payload, ok := strings.Cut(raw, ",")
		if !ok {
			return nil, fmt.Errorf("parsing %q: data URL has no payload", raw)
		}
		u.Scheme = "data"
		u.Path = payload
		return u, nil
	}

	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return nil, fmt.Errorf("parsing %q: missing scheme", raw)
	}
	u.Scheme = strings.ToLower(scheme)
	switch u.Scheme {
	case "http":
		u.Port = 80
	case "https":
		u.Port = 443
	case "file":
		u.Path = rest
		if !strings.HasPrefix(u.Path, "/") {
			u.Path = "/" + u.Path
		}
		return u, nil
	default:
		return nil, fmt.Errorf("parsing %q: %w: %s", raw, ErrUnsupportedScheme, scheme)
	}

	if !strings.Contains(rest, "/") {
		rest += "/"
	}
	host, path, _ := strings.Cut(rest, "/")
	u.Host = host
	u.Path = "/" + path
	if h, port, ok := strings.Cut(host, ":"); ok {
		n, err := strconv.Atoi(port)
		if err != nil || n <= 0 || n > 65535 {
			return nil, fmt.Errorf("parsing %q: bad port %q", raw, port)
		}
		u.Host = h
		u.Port = n
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parsing %q: missing host", raw)
	}
	return u, nil
}

// String returns the address used for requests and cache keys. The
// view-source prefix is not included.
func (u *URL) String() string {
	switch u.Scheme {
	case "data":
		return "data:," + u.Path
	case "file":
		return "file://" + u.Path
	}
	return fmt.Sprintf("%s://%s:%d%s", u.Scheme, u.Host, u.Port, u.Path)
}

// Resolve turns a link found on this page into an absolute URL. Links that
// carry their own scheme, and every link on a data page, are parsed as-is;
// "/path" links keep this page's scheme, host and port.
func (u *URL) Resolve(ref string) (*URL, error) {
	if i := strings.IndexAny(ref, ":/?#"); (i > 0 && ref[i] == ':') || u.Scheme == "data" {
		return ParseURL(ref)
	}
	next := &URL{Scheme: u.Scheme, Host: u.Host, Port: u.Port}
	if strings.HasPrefix(ref, "/") {
		next.Path = ref
		return next, nil
	}
	dir := u.Path[:strings.LastIndex(u.Path, "/")+1]
	next.Path = dir + ref
	return next, nil
}
