// Package config loads named command sets from files and reads GHOP_
// environment overrides.
//
// A command-set file maps set names to lists of commands, either at the top
// level or under a "sets" key:
//
//	build: ["go build ./...", "go vet ./..."]
//
//	sets:
//	  ci:
//	    - make lint
//	    - command: make test
//	      timeout: 120
//
// Entries are plain command strings or objects with "command" and an
// optional "timeout" (seconds as a number, or a duration such as "90s").
// YAML, TOML and JSON files are accepted; the format follows the extension.
//
// # Basic Usage
//
//	specs, err := config.Load("ghop.yml", "ci")
//	if errors.Is(err, config.ErrSetNotFound) {
//		// ...
//	}
//
// # Sub-packages
//
//   - loader: format decoders and the environment variable loader
package config
