package router

import (
	"errors"
	"fmt"
)

// ErrEmptyRouterAddress is returned when a router is constructed with an
// empty router address.
var ErrEmptyRouterAddress = errors.New("router cannot be initialized with an empty router address")

// InvalidAddressError is returned when an address fails structural
// validation: it is shorter than the root address, not rooted at it, or
// contains an empty or illegal token.
type InvalidAddressError struct {
	Address string
	Root    string
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid application address [%s]: a valid address must begin with the root address [%s] and contain only dot-separated alphanumeric tokens", e.Address, e.Root)
}

// SelfRouteError is returned when a destination address points to the
// router itself. The caller should treat the message as already delivered
// rather than dispatch it again.
type SelfRouteError struct {
	Address string
}

func (e *SelfRouteError) Error() string {
	return fmt.Sprintf("destination address [%s] points to this router; the message is already at its final address", e.Address)
}

// TopLevelRouterError is returned when a dispatch resolves to the gateway
// of the top-level router, which has none. The destination is unreachable
// from this hierarchy and the message cannot progress.
type TopLevelRouterError struct {
	Root        string
	Destination string
}

func (e *TopLevelRouterError) Error() string {
	return fmt.Sprintf("cannot obtain a gateway address for the top-level router [%s]; destination [%s] is unreachable", e.Root, e.Destination)
}
