// Package middleware holds the global and route-level Echo middleware:
// bearer token authentication and access guards, request ids, the request
// scoped logger, New Relic tracing, login rate limiting and the global
// error handler.
package middleware
