// Package httpserver runs the API's http.Server with graceful shutdown and
// serves the health probes.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		return err
//	}
//
// Run blocks until ctx is cancelled and then drains in-flight requests.
// Signal handling belongs to the caller, usually through
// signal.NotifyContext in main.
package httpserver
