// Package config provides configuration loading for ringcast runs.
//
// Configuration is built in layers: defaults, then any number of JSON or YAML
// files, then RINGCAST_* environment variables. Command-line flags are applied
// on top by the CLI.
//
// # Basic Usage
//
//	loader := config.NewLoader()
//	loader.AddLayer("configs/base.yaml")
//	loader.AddLayer("configs/ci.json") // Overrides base
//	loader.EnableValidation(true)
//
//	cfg, err := loader.Load()
//	if err != nil {
//		return err
//	}
//
// # File Format
//
// Durations may be written as Go duration strings or with a day suffix:
//
//	capacity: 64
//	readers: 4
//	duration: 60s
//	limit: 0 # stop after this many values, 0 = no limit
//	output_dir: out
//	mode: broadcast
//	strategy: block
//
// Capacity and reader count may be left out. The CLI reads them from standard
// input when they are still unset after all layers (see NeedsSizing).
//
// # Security
//
// Config paths must stay inside the working directory unless absolute, must
// carry a .json, .yaml or .yml extension, and may not exceed 10MB. JSON input
// is rejected past a nesting depth of 100.
package config
