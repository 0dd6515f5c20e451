package seda

import "strings"

// Key returns the channel key for uri: the URI with any parameter suffix,
// starting at the first '?', removed.
func Key(uri string) string {
	if i := strings.IndexByte(uri, '?'); i >= 0 {
		return uri[:i]
	}
	return uri
}
