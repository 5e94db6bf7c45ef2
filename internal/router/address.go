package router

import (
	"regexp"
	"strings"
)

// DefaultRootAddress is the address of the highest-level router unless a
// custom root is configured. Lower-level routers append dot-separated
// tokens, e.g. ke.go.health.county1.facility1 sits three levels below it.
const DefaultRootAddress = "ke.go.health"

var tokenPattern = regexp.MustCompile(`^[a-zA-Z0-9_]*$`)

// Validate checks that address is a well-formed application address rooted
// at root. A valid address is at least as long as the root, equals the root
// or continues past it at a dot boundary, and splits into non-empty tokens
// of alphanumerics and underscores.
func Validate(address, root string) error {
	if len(address) < len(root) {
		return &InvalidAddressError{Address: address, Root: root}
	}
	if address != root && !strings.HasPrefix(address, root+".") {
		return &InvalidAddressError{Address: address, Root: root}
	}
	for _, token := range strings.Split(address, ".") {
		if token == "" || !tokenPattern.MatchString(token) {
			return &InvalidAddressError{Address: address, Root: root}
		}
	}
	return nil
}

// Namer derives a channel name from an application address. It must be a
// deterministic, collision-free function of the address; the surrounding
// messaging engine maps the returned name to an actual delivery target.
type Namer interface {
	ChannelName(address string) string
}

// NamerFunc adapts an ordinary function to the Namer interface.
type NamerFunc func(address string) string

// ChannelName calls f(address).
func (f NamerFunc) ChannelName(address string) string {
	return f(address)
}

// ChannelName is the default naming convention: every dot in the address
// replaced with an underscore.
func ChannelName(address string) string {
	return strings.ReplaceAll(address, ".", "_")
}
