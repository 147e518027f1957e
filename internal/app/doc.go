// Package app contains the core application logic. It wires the logger, the
// unit registry and run-configuration loading around job execution,
// decoupled from any specific entrypoint like a CLI or server.
package app
