// Package config defines the format-agnostic model of a task file, along
// with the Loader interface for reading it from various sources.
//
// The `config.Model` is the single source of truth for the registry when it
// binds declared tasks. Concrete loaders, such as for HCL and YAML, are
// provided in separate packages.
package config
