// Package api implements the HTTP REST API and WebSocket server for licensegate.
//
// This package provides:
//   - Public endpoints for machine registration and licence validation
//   - Admin endpoints for reviewing, approving, rejecting, and removing registrations
//   - JWT authentication with ticket-based WebSocket auth
//   - WebSocket hub broadcasting registration change events to admin consoles
//   - Middleware stack (request ID, logging, recovery, CORS, body size limit)
//
// # Architecture
//
// The server sits between two kinds of clients: licensed applications, which
// register themselves and poll their approval status, and the admin console,
// which authenticates, works the pending queue, and listens on the WebSocket
// for change events so its lists refresh without polling.
//
// # Security
//
// Admin routes require a Bearer JWT issued by POST /api/v1/admin/login.
// WebSocket connections use single-use tickets to keep tokens out of URLs.
package api
