// Package cli defines the configo command tree, translates flags into the
// application's configuration and maps failures to process exit codes.
package cli
