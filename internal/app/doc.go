// Package app wires the node runtime into a runnable program. It owns the
// logger, the type registry, the manifest loader and the card manager, and
// runs one graph document from start to finish, decoupled from any specific
// entrypoint like a CLI or server.
package app
