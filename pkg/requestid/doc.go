// Package requestid tags every request with a correlation ID.
//
// Middleware reuses a client supplied X-Request-ID when it is short and made
// of [A-Za-z0-9_-], and otherwise generates a UUIDv7. The ID is returned in
// the response header, stored in the request context and picked up by the
// logger through LoggerExtractor:
//
//	log := logger.New(logger.WithContextExtractors(requestid.LoggerExtractor()))
//	r := chi.NewRouter()
//	r.Use(requestid.Middleware)
//
// Error responses written by the handler package include the same ID in
// their meta block.
package requestid
