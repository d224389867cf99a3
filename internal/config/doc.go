// Package config defines the YAML configuration shared by the analysis
// binaries and its defaulting and validation rules.
//
// Loading order: read file, expand ${VAR} environment references, unmarshal,
// apply defaults for unset fields, validate. Every binary also runs with the
// built-in defaults when no config file is supplied.
package config
