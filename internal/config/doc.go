// Package config provides configuration management for the address router node.
//
// Configuration is loaded from environment variables and validated on startup.
// ROUTER_ADDRESS is the only required variable; stream keys default to values
// derived from the router address's channel name.
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg)
package config
