// Package http implements the HTTP transport of the sync server.
//
// It exposes POST /api/sync and GET /api/health on a chi router. Cross-cutting
// concerns such as authentication, request tracing, access logging and
// response compression are handled in this package before requests are
// delegated to the service layer.
package http
