// Package config defines the configuration shared by the shmap binaries.
//
//   - spec.go: Config struct definition
//   - default.go: default values
//   - verify.go: validation
//   - sanitize.go: masking of secrets for display and logs
//   - load.go: loading through internal/infra/confloader
//   - store.go: translation into store options
package config
