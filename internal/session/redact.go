package session

import (
	"net/url"
	"strings"
)

const redactedPassword = "xxxxx"

// Redact masks the password of a connection string so it can be logged
// and shown in the UI. Multi-host MongoDB strings, which net/url cannot
// parse, are masked by hand.
func Redact(uri string) string {
	if u, err := url.Parse(uri); err == nil {
		return u.Redacted()
	}

	i := strings.Index(uri, "://")
	if i < 0 {
		return uri
	}
	rest := uri[i+3:]
	end := strings.IndexAny(rest, "/?")
	if end < 0 {
		end = len(rest)
	}
	at := strings.LastIndex(rest[:end], "@")
	if at < 0 {
		return uri
	}
	user := rest[:at]
	if c := strings.Index(user, ":"); c >= 0 {
		user = user[:c] + ":" + redactedPassword
	}
	return uri[:i+3] + user + rest[at:]
}
