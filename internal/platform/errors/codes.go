// Package errors provides structured domain errors that map onto gRPC status
// codes and carry localized user-facing messages.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Validation errors
	CodeDonationCategoryInvalid  Code = "DONATION_CATEGORY_INVALID"
	CodeDonationQuantityEmpty    Code = "DONATION_QUANTITY_EMPTY"
	CodeDonationAddressEmpty     Code = "DONATION_ADDRESS_EMPTY"
	CodeDonationIDInvalid        Code = "DONATION_ID_INVALID"
	CodeDonationFilterInvalid    Code = "DONATION_FILTER_INVALID"
	CodeProfileDisplayNameEmpty  Code = "PROFILE_DISPLAY_NAME_EMPTY"
	CodeProfileRoleInvalid       Code = "PROFILE_ROLE_INVALID"
	CodeProfileLocaleUnsupported Code = "PROFILE_LOCALE_UNSUPPORTED"

	// Lifecycle errors
	CodeDonationInvalidTransition Code = "DONATION_INVALID_TRANSITION"
	CodeDonationConflict          Code = "DONATION_CONFLICT"
	CodeLedgerUnavailable         Code = "LEDGER_UNAVAILABLE"

	// Identity errors
	CodeIdentityMissing     Code = "IDENTITY_MISSING"
	CodeIdentityInvalid     Code = "IDENTITY_INVALID"
	CodeProfileMissing      Code = "PROFILE_MISSING"
	CodeProfileExists       Code = "PROFILE_EXISTS"
	CodePermissionDenied    Code = "PERMISSION_DENIED"
	CodeNotificationMissing Code = "NOTIFICATION_MISSING"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	case CodeDonationCategoryInvalid,
		CodeDonationQuantityEmpty,
		CodeDonationAddressEmpty,
		CodeDonationIDInvalid,
		CodeDonationFilterInvalid,
		CodeProfileDisplayNameEmpty,
		CodeProfileRoleInvalid,
		CodeProfileLocaleUnsupported:
		return codes.InvalidArgument

	case CodeDonationInvalidTransition,
		CodeProfileMissing:
		return codes.FailedPrecondition

	// Lost the compare-and-swap race; the caller may re-read and decide.
	case CodeDonationConflict:
		return codes.Aborted

	case CodeLedgerUnavailable:
		return codes.Unavailable

	case CodeIdentityMissing,
		CodeIdentityInvalid:
		return codes.Unauthenticated

	case CodePermissionDenied:
		return codes.PermissionDenied

	case CodeNotFound,
		CodeNotificationMissing:
		return codes.NotFound

	case CodeProfileExists:
		return codes.AlreadyExists

	default:
		return codes.Internal
	}
}

// Retryable reports whether a client may retry the same request unchanged.
func (c Code) Retryable() bool {
	return c == CodeLedgerUnavailable
}
