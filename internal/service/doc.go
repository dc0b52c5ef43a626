// Package service implements business logic for the carbon-intensity API.
//
// IntensityService sits between the HTTP handlers and the repository. It
// turns the repository's write outcomes into the two domain errors callers
// can act on:
//
//   - domain.ErrNotFound: update or remove of an unknown id. The lookup
//     happens before any write.
//   - domain.ErrDuplicateInterval: a create or update collided with another
//     record's (from, to) pair.
//
// Every other error is a storage failure and is returned unchanged.
//
// # Event System
//
// Successful writes publish intensity_created, intensity_updated and
// intensity_deleted events on the EventBus. The SSE hub and the optional
// Kafka publisher subscribe to it. Publishing never blocks a request.
package service
