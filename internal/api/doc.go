// Package api exposes the account lifecycle over HTTP: registration, email
// certification, login, refresh-token rotation, and the public verification
// key. It decodes and validates request payloads, delegates to the services,
// and maps the service error taxonomy onto HTTP statuses and the
// field/descriptions error payload.
package api
