// Package middleware decorates a transcript archive with at-rest protection:
// AES-GCM sealing and redaction of seller-side configuration.
package middleware

import "github.com/aretw0/bargain/pkg/ports"

// Middleware allows wrapping an Archive to add behavior.
type Middleware func(ports.Archive) ports.Archive

// Chain applies middlewares so the first one sees transcripts first on Put.
func Chain(archive ports.Archive, mws ...Middleware) ports.Archive {
	for i := len(mws) - 1; i >= 0; i-- {
		archive = mws[i](archive)
	}
	return archive
}
