// Package app contains the core application logic. It wires the logger, the
// symbol registry and the document loader together and implements the
// operations the CLI exposes, decoupled from any specific entrypoint.
package app
