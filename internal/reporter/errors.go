package reporter

import (
	"errors"
	"strings"

	"github.com/aws/smithy-go"

	"github.com/don-san-sec/samurai/internal/report"
)

// Error kinds surfaced to the caller. Extraction failures are recovered
// locally up to the single fallback tier; everything past that propagates
// as one of these tagged errors, never as raw collaborator detail.
var (
	// ErrNoMessageSelected means the caller supplied no message id.
	ErrNoMessageSelected = errors.New("no message selected")

	// ErrTotalRetrievalFailure means both retrieval tiers failed.
	ErrTotalRetrievalFailure = errors.New("unable to retrieve message")
)

// DeliveryError wraps a delivery channel failure so callers can classify it
// into a user-facing message without inspecting provider internals.
type DeliveryError struct {
	cause error
}

func (e *DeliveryError) Error() string {
	return "report delivery failed: " + e.cause.Error()
}

func (e *DeliveryError) Unwrap() error {
	return e.cause
}

// FailureKind is the user-facing classification of a failed submission.
type FailureKind int

const (
	FailureGeneric FailureKind = iota
	FailureQuota
	FailurePermission
	FailureConfig
)

// Classify maps a delivery failure to a FailureKind. Structured API error
// codes are consulted first; scanning the failure text for known substrings
// is the last resort, since collaborator wording differs.
func Classify(err error) FailureKind {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "TooManyRequestsException", "LimitExceededException", "SendingPausedException":
			return FailureQuota
		case "AccessDeniedException", "UnauthorizedAccessException", "NotAuthorizedException":
			return FailurePermission
		}
	}

	text := strings.ToLower(err.Error())
	switch {
	case strings.Contains(text, "quota") || strings.Contains(text, "limit"):
		return FailureQuota
	case strings.Contains(text, "permission") || strings.Contains(text, "denied"):
		return FailurePermission
	case strings.Contains(text, "invalid"):
		return FailureConfig
	}
	return FailureGeneric
}

// UserMessage returns the message shown to the reporting user for a failed
// submission. Every failure maps to something actionable; internal parsing
// or transport detail never leaks through.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrNoMessageSelected):
		return "Please select an email first."
	case errors.Is(err, report.ErrInvalidReporterIdentity):
		return "Invalid configuration. Contact support."
	case errors.Is(err, ErrTotalRetrievalFailure):
		return "Unable to process the selected email. Please try again."
	}

	var de *DeliveryError
	if errors.As(err, &de) {
		switch Classify(de.cause) {
		case FailureQuota:
			return "Daily email limit reached. Try again tomorrow."
		case FailurePermission:
			return "Permission denied. Contact your administrator."
		case FailureConfig:
			return "Invalid configuration. Contact support."
		}
	}

	return "Unable to send report. Please try again."
}
