// Package naming builds channel namers from Handlebars templates.
//
// The channel-name convention is a customization seam of the router: any
// deterministic, collision-free function of the address will do. This
// package lets deployments express their convention as a template instead
// of code.
//
// Example usage:
//
//	engine := naming.NewEngine()
//
//	namer, err := engine.Namer("hie.{{underscore address}}")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	namer("ke.go.health.county1") // "hie.ke_go_health_county1"
//
// The template is rendered with:
//   - address - the application address as-is
//   - underscored - the address with dots replaced by underscores
//   - tokens - the dot-separated tokens of the address
//   - leaf - the last token
//
// Available helpers: underscore, uppercase, lowercase, join.
package naming
