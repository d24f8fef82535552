// Package config handles loading and validating evaluation service configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with SIMEVAL_* environment variables
//   - Validation of required fields and power-profile dimensions
//   - Default value handling
//
// Sensitive values (MQTT password, InfluxDB token) should be set via
// environment variables rather than committed to the config file.
//
// Usage:
//
//	cfg, err := config.Load(config.Path())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Evaluation.ReportDir)
package config
