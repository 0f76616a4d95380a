// Package server provides the read-only HTTP status interface.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Status Endpoints
//
// [StatusHandler] serves GET /status, GET /progress, and GET /health. Status
// is the reconciled per-track snapshot; progress is the job controller's
// point-in-time view of the running (or last) job. Both read concurrently
// with a running job: the underlying store and controller hand out copies,
// never live references.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
