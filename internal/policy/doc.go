// Package policy provides CEL-based admission rules for message dispatch.
//
// A policy is an ordered list of deny rules evaluated by the worker before
// the routing decision. Operators use it to quarantine subtrees or reject
// traffic during maintenance without touching the routing algorithm.
//
// Example usage:
//
//	p, err := policy.New([]policy.Rule{
//	    {
//	        Condition: `destination.address.startsWith("ke.go.health.county9")`,
//	        Reason:    "county9 is quarantined",
//	    },
//	}, logger)
//
//	decision := p.Decide(ctx, destination, routerAddress, rootAddress)
//	if !decision.Allowed {
//	    // dead-letter with decision.Reason
//	}
//
// Expressions see two variables:
//   - destination - map with address, tokens, leaf
//   - router - map with address, root
package policy
