package router

import (
	"strings"

	"go.uber.org/zap"
)

// Router decides the next hop for a message addressed to a destination in
// the address hierarchy. It holds only its fixed identity; every call to
// DispatchTo is an independent, stateless decision, so a single instance is
// safe for concurrent use.
type Router struct {
	rootAddress   string
	routerAddress string
	namer         Namer
	logger        *zap.Logger
}

// Option configures a Router at construction time.
type Option func(*Router)

// WithRootAddress sets the root of the address hierarchy. The root is fixed
// for the lifetime of the instance; build a new Router to change it.
func WithRootAddress(root string) Option {
	return func(r *Router) {
		r.rootAddress = root
	}
}

// WithNamer replaces the default dot-to-underscore channel naming
// convention. The namer must remain a deterministic, collision-free
// function of the address.
func WithNamer(namer Namer) Option {
	return func(r *Router) {
		r.namer = namer
	}
}

// WithLogger sets the logger used for decision events. Logging is
// observational only and never affects a routing result.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// New creates a Router identified by routerAddress. It returns
// ErrEmptyRouterAddress when the address is empty and an
// InvalidAddressError when the address is not well formed relative to the
// configured root.
func New(routerAddress string, opts ...Option) (*Router, error) {
	if routerAddress == "" {
		return nil, ErrEmptyRouterAddress
	}

	r := &Router{
		rootAddress:   DefaultRootAddress,
		routerAddress: routerAddress,
		namer:         NamerFunc(ChannelName),
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := Validate(routerAddress, r.rootAddress); err != nil {
		return nil, err
	}

	r.logger.Info("initialized new address router",
		zap.String("router_address", r.routerAddress),
		zap.String("root_address", r.rootAddress),
	)
	return r, nil
}

// RouterAddress returns the application address identifying this router.
func (r *Router) RouterAddress() string {
	return r.routerAddress
}

// RootAddress returns the address of the top of the hierarchy.
func (r *Router) RootAddress() string {
	return r.rootAddress
}

// ValidateDestination checks that destination is a well-formed address
// rooted at this router's root and does not point to the router itself.
func (r *Router) ValidateDestination(destination string) error {
	if err := Validate(destination, r.rootAddress); err != nil {
		return err
	}
	if destination == r.routerAddress {
		return &SelfRouteError{Address: destination}
	}
	return nil
}

// DispatchTo decides the channel via which to dispatch a message in its
// immediate next hop: up to this router's gateway when the destination lies
// outside its subtree, or down to the immediate child lying toward the
// destination. Repeated across routers, each hop brings a message closer to
// its final destination.
func (r *Router) DispatchTo(destination string) (string, error) {
	if err := r.ValidateDestination(destination); err != nil {
		return "", err
	}
	r.logger.Info("dispatching message",
		zap.String("destination", destination),
		zap.String("router_address", r.routerAddress),
	)

	sendToGateway := len(destination) < len(r.routerAddress)
	if !sendToGateway {
		// The router token is the first len(routerAddress) bytes of the
		// destination. This is a raw character comparison; it does not
		// check that the destination continues at a dot boundary.
		routerToken := destination[:len(r.routerAddress)]
		r.logger.Debug("extracted router token", zap.String("router_token", routerToken))
		sendToGateway = routerToken != r.routerAddress
	} else {
		r.logger.Debug("destination shorter than router address, routing up immediately")
	}

	if sendToGateway {
		gateway, err := r.gatewayAddress(destination)
		if err != nil {
			return "", err
		}
		channel := r.namer.ChannelName(gateway)
		r.logger.Info("routing up to gateway",
			zap.String("gateway_address", gateway),
			zap.String("channel", channel),
		)
		return channel, nil
	}

	nearbyToken := destination[len(r.routerAddress)+1:]
	nearbyAddress := r.nearbyAddress(nearbyToken)
	channel := r.namer.ChannelName(nearbyAddress)
	r.logger.Info("routing down to subtree",
		zap.String("nearby_token", nearbyToken),
		zap.String("nearby_address", nearbyAddress),
		zap.String("channel", channel),
	)
	return channel, nil
}

// gatewayAddress returns the address of the router one level up the
// hierarchy. The top-level router has no gateway.
func (r *Router) gatewayAddress(destination string) (string, error) {
	if r.routerAddress == r.rootAddress {
		return "", &TopLevelRouterError{Root: r.rootAddress, Destination: destination}
	}
	tokens := strings.Split(r.routerAddress, ".")
	return strings.Join(tokens[:len(tokens)-1], "."), nil
}

// nearbyAddress descends exactly one level toward the destination: the
// router's own address extended by the first token of the nearby part.
func (r *Router) nearbyAddress(nearbyToken string) string {
	nearby := strings.SplitN(nearbyToken, ".", 2)
	return r.routerAddress + "." + nearby[0]
}
