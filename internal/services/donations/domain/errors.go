package domain

import (
	apperrors "github.com/louisbranch/foodshare/internal/platform/errors"
	"google.golang.org/grpc/codes"
)

// Sentinels for errors.Is checks; matching is by code.
var (
	ErrInvalidTransition = apperrors.New(apperrors.CodeDonationInvalidTransition, "invalid transition")
	ErrConflict          = apperrors.New(apperrors.CodeDonationConflict, "conflict")
	ErrUnavailable       = apperrors.New(apperrors.CodeLedgerUnavailable, "unavailable")
	ErrNotFound          = apperrors.New(apperrors.CodeNotFound, "not found")
)

// IsValidation reports whether err is any input validation error.
func IsValidation(err error) bool {
	return apperrors.GetCode(err).GRPCCode() == codes.InvalidArgument
}

func ErrCategoryInvalid(value string) error {
	return apperrors.WithMetadata(apperrors.CodeDonationCategoryInvalid, "food category is invalid", map[string]string{"food_category": value})
}

func ErrQuantityEmpty() error {
	return apperrors.New(apperrors.CodeDonationQuantityEmpty, "quantity is required")
}

func ErrAddressEmpty() error {
	return apperrors.New(apperrors.CodeDonationAddressEmpty, "pickup address is required")
}

func ErrDonationIDInvalid(value string) error {
	return apperrors.WithMetadata(apperrors.CodeDonationIDInvalid, "donation id is invalid", map[string]string{"donation_id": value})
}

// ErrTransitionNotAllowed reports a precondition that was false at read time.
func ErrTransitionNotAllowed(donationID string, op string, reason string) error {
	return apperrors.WithMetadata(apperrors.CodeDonationInvalidTransition, op+" not allowed: "+reason, map[string]string{
		"donation_id": donationID,
		"operation":   op,
	})
}

// ErrTransitionConflict reports a precondition that held at read time but
// failed the conditional write.
func ErrTransitionConflict(donationID string, op string, expected Status) error {
	return apperrors.WithMetadata(apperrors.CodeDonationConflict, op+" lost to a concurrent write", map[string]string{
		"donation_id":     donationID,
		"operation":       op,
		"expected_status": string(expected),
	})
}

// ErrLedgerUnavailable reports a retryable storage failure or timeout.
func ErrLedgerUnavailable(op string, cause error) error {
	return apperrors.WrapWithMetadata(apperrors.CodeLedgerUnavailable, "ledger unavailable", map[string]string{"operation": op}, cause)
}

func ErrDonationNotFound(donationID string) error {
	return apperrors.WithMetadata(apperrors.CodeNotFound, "donation not found", map[string]string{"donation_id": donationID})
}

func ErrProfileMissing(userID string) error {
	return apperrors.WithMetadata(apperrors.CodeProfileMissing, "profile not found", map[string]string{"user_id": userID})
}

func ErrProfileExists(userID string) error {
	return apperrors.WithMetadata(apperrors.CodeProfileExists, "profile already exists", map[string]string{"user_id": userID})
}

func ErrPermissionDenied(op string) error {
	return apperrors.WithMetadata(apperrors.CodePermissionDenied, op+" denied", map[string]string{"operation": op})
}

func errInvariant(message string) error {
	return apperrors.New(apperrors.CodeUnknown, "donation invariant violated: "+message)
}

func ErrIdentityMissing() error {
	return apperrors.New(apperrors.CodeIdentityMissing, "caller identity is required")
}

func ErrFilterInvalid(filter string, cause error) error {
	return apperrors.WrapWithMetadata(apperrors.CodeDonationFilterInvalid, "filter is invalid", map[string]string{"filter": filter}, cause)
}

func ErrNotificationMissing(notificationID string) error {
	return apperrors.WithMetadata(apperrors.CodeNotificationMissing, "notification not found", map[string]string{"notification_id": notificationID})
}
