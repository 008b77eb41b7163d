// Package server wires and runs the sync server's HTTP transport.
//
// It provides startup, signal handling and graceful shutdown.
package server
