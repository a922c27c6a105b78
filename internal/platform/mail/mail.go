// Package mail provides the certification mail dispatch capability.
// Template rendering is this package's responsibility; the services only
// hand over the recipient, screen name, and certification link.
package mail

import "context"

// Sender dispatches the certification mail containing the raw certification
// token link. Implementations must not persist anything; a send failure is
// surfaced to the caller, which decides whether persistence proceeds.
type Sender interface {
	SendCertification(ctx context.Context, recipient, screenName, certificationLink string) error
}
