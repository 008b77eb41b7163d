// Package config provides configuration loading, merging, and validation
// facilities for the sync client and server.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON config file
//
// The main entry points are [GetServerConfig] for the sync server and
// [GetClientConfig] for the sync client.
package config
