// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and repositories
// (defined in internal/store) to fulfill application features.
//
// Each service covers one slice of the credential lifecycle: registration,
// certification, login, and refresh-token rotation. Services receive their
// stores and collaborators through constructor injection and expose a closed
// failure contract built from the apperr taxonomy; no ambient lookup, no
// exceptions crossing component boundaries.
package service
