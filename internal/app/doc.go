// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the primary execution lifecycle, decoupled
// from any specific entrypoint like a CLI or server.
//
// An App is built once per invocation: it loads the task file, binds it into
// a registry and then either runs the requested targets or prints the plan.
package app
