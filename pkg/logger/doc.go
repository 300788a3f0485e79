// Package logger builds *slog.Logger values with a shared set of attribute
// names and with attributes injected from context.Context.
//
// New wraps a text or JSON handler in a LogHandlerDecorator that runs every
// registered ContextExtractor on each record. The server registers extractors
// for the request id and for the tenant bound to the request scope:
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Environment, "shutterdesk"),
//		logger.WithContextExtractors(
//			requestid.LoggerExtractor(),
//			tenant.LoggerExtractor(),
//		),
//	)
//
// Attribute helpers such as TenantID, UserID, Role and Error keep key names
// consistent across packages. Error and the id helpers return an empty
// attribute for nil values, which slog drops.
package logger
