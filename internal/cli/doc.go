// Package cli turns command-line arguments into an app.Config. It owns the
// usage text and maps invalid input to an ExitError carrying the process
// exit code.
package cli
