// Package config loads and validates the on/off device service configuration.
//
// Loading order is defaults, then the YAML file, then GRAYLOGIC_* environment
// variables, then Validate. Secrets (JWT secret, MQTT password, InfluxDB
// token) should come from the environment rather than the file.
//
// Hardware ports are declared statically:
//
//	hardware:
//	  ports:
//	    - id: relay-1
//	      driver: memory
//	      capabilities: [relay_output]
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
