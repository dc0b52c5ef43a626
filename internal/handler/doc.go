// Package handler implements the HTTP boundary of the carbon-intensity API.
//
// # Routes
//
//	GET    /intensities       all records ordered by from
//	POST   /intensities       create a record (every field required)
//	PUT    /intensities/{id}  update the supplied fields of a record
//	DELETE /intensities/{id}  delete a record, responds {"id": n}
//	GET    /events            Server-Sent Events stream of changes
//	GET    /healthz           liveness
//	GET    /readyz            readiness (store ping)
//	GET    /metrics           Prometheus metrics
//
// Request bodies are validated here before reaching the service. Errors are
// written as {"statusCode", "message", "error"}; message is a list of field
// messages for validation failures.
//
// # Error mapping
//
//   - domain.ErrDuplicateInterval: 400 "to and from should be unique"
//   - domain.ErrNotFound on update: 404 "carbon intensity does not exist"
//   - domain.ErrNotFound on delete: 404 "Not Found"
//   - anything else: 500
package handler
