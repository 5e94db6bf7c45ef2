// Package router implements the next-hop decision for a hierarchical,
// address-based store-and-forward network.
//
// Every node is identified by a static application address of dot-separated
// tokens, e.g. ke.go.health.county1.facility1. Addresses form a rooted
// tree: given a message's destination address, a router either escalates
// the message to its gateway (the router one level up) or forwards it to
// the immediate child lying toward the destination. The returned channel
// name is the delivery-target identifier the surrounding messaging engine
// resolves to an actual network location.
//
// Example usage:
//
//	r, err := router.New("ke.go.health.county1.facility1",
//	    router.WithLogger(logger),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	channel, err := r.DispatchTo("ke.go.health.county1.facility1.emr")
//	// channel == "ke_go_health_county1_facility1_emr" (one level down)
//
//	channel, err = r.DispatchTo("ke.go.health.county2.repository")
//	// channel == "ke_go_health_county1" (up to the gateway)
//
// A destination equal to the router's own address fails with a
// SelfRouteError: the message is already at its final address and the
// caller should deliver it locally rather than dispatch it again. A
// dispatch that would escalate past the top-level router fails with a
// TopLevelRouterError; such a message is unreachable from this hierarchy.
//
// The decision is a pure function of the router's fixed identity and the
// destination; routers hold no mutable state and may be shared freely
// across goroutines.
package router
