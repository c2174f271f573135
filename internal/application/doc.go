// Package application provides application initialization and dependency wiring.
// It resolves the deployment configuration record once from the process
// environment, stores it, and builds the handlers, routers and HTTP server
// that expose it, keeping the main package focused on CLI parsing and
// orchestration.
package application
