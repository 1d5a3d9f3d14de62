// Package provider defines the interface for report delivery backends.
package provider

import (
	"context"

	"github.com/don-san-sec/samurai/internal/email"
)

// Provider is the interface that report delivery backends must implement.
// Each provider hands a finished report, with the original message attached
// as a .eml artifact, to the target service (e.g., stdout, AWS SES).
type Provider interface {
	// Send delivers a report through this provider.
	// It returns an error if the delivery fails.
	Send(ctx context.Context, rep *email.Report) error

	// Name returns the human-readable name of this provider.
	Name() string
}
