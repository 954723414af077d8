// Package app provides application initialization and lifecycle
// management for the xmlsheet service. It wires all major components
// together at startup and handles graceful shutdown.
//
// # Initialization Flow
//
// The typical initialization sequence:
//
//	1. Load configuration from environment and files
//	2. Initialize logging
//	3. Build the conversion service
//	4. Set up HTTP handlers and middleware
//	5. Configure the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Start blocks until ctx is cancelled, then drains active requests
// within the configured shutdown timeout. Initialization errors are
// returned to the caller; the package never calls os.Exit itself.
package app
