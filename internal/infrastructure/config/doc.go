// Package config handles loading and validating licensegate configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - Sensitive values (admin credentials, JWT secret) should be set via
//     environment variables rather than committed to the config file
//   - The config file should have restricted permissions (0600)
//   - The JWT secret and admin password hash have no usable defaults;
//     the server refuses to start without them
//
// Performance Characteristics:
//   - Configuration is loaded once at startup
//   - No runtime overhead after initial load
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
