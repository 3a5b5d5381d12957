// Package httpapi exposes the citation pipeline over HTTP: POST /api/search
// runs one query end to end, GET /api/health reports per-dependency circuit
// states. Callers always receive a well-formed result or a structured error
// envelope.
package httpapi
