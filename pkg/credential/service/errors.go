package service

import (
	"errors"
	"fmt"

	apperrors "github.com/chainsafe/faceauth-middleware/pkg/app/errors"
)

// Taxonomy codes returned to clients in the "reason" field.
const (
	ReasonValidation               = "ValidationError"
	ReasonDuplicateIdentity        = "DuplicateIdentity"
	ReasonNoFaceDetected           = "NoFaceDetected"
	ReasonLedgerUnavailable        = "LedgerUnavailable"
	ReasonLedgerTimeout            = "LedgerTimeout"
	ReasonLedgerReject             = "LedgerReject"
	ReasonRegistrationInconsistent = "RegistrationInconsistent"
	ReasonRegistrationIncomplete   = "RegistrationIncomplete"
	ReasonNotFound                 = "NotFound"
	ReasonInternal                 = "InternalError"
	// ReasonAuthenticationFailed is sent for both InvalidCredential and
	// BiometricMismatch so clients cannot tell which factor failed.
	ReasonAuthenticationFailed = "AuthenticationFailed"
	ReasonInvalidCredential    = "InvalidCredential"
	ReasonBiometricMismatch    = "BiometricMismatch"
)

var (
	ErrValidation               = errors.New("invalid request")
	ErrDuplicateIdentity        = errors.New("identity already registered")
	ErrNoFaceDetected           = errors.New("no face detected")
	ErrLedgerUnavailable        = errors.New("ledger unavailable")
	ErrLedgerTimeout            = errors.New("ledger outcome unknown")
	ErrLedgerReject             = errors.New("ledger rejected registration")
	ErrRegistrationInconsistent = errors.New("registration committed but not visible")
	ErrRegistrationIncomplete   = errors.New("registration incomplete")
	ErrNotFound                 = errors.New("identity not found")
	ErrInvalidCredential        = errors.New("invalid credential")
	ErrBiometricMismatch        = errors.New("biometric mismatch")
	ErrInternal                 = errors.New("internal error")
)

var codes = []struct {
	sentinel error
	code     string
}{
	{ErrValidation, ReasonValidation},
	{ErrDuplicateIdentity, ReasonDuplicateIdentity},
	{ErrNoFaceDetected, ReasonNoFaceDetected},
	{ErrLedgerUnavailable, ReasonLedgerUnavailable},
	{ErrLedgerTimeout, ReasonLedgerTimeout},
	{ErrLedgerReject, ReasonLedgerReject},
	{ErrRegistrationInconsistent, ReasonRegistrationInconsistent},
	{ErrRegistrationIncomplete, ReasonRegistrationIncomplete},
	{ErrNotFound, ReasonNotFound},
	{ErrInvalidCredential, ReasonInvalidCredential},
	{ErrBiometricMismatch, ReasonBiometricMismatch},
	{ErrInternal, ReasonInternal},
}

// Code returns the precise taxonomy code of err for logs and metrics. Unlike
// the client facing reason it distinguishes the two authentication failures.
func Code(err error) string {
	if err == nil {
		return "success"
	}
	for _, c := range codes {
		if errors.Is(err, c.sentinel) {
			return c.code
		}
	}
	return ReasonInternal
}

func taxonomyError(cat apperrors.Category, reason string, sentinel error, message string, cause error) error {
	err := sentinel
	if cause != nil {
		err = fmt.Errorf("%w: %w", sentinel, cause)
	}
	return apperrors.New(cat, reason, message, err)
}

func validationError(message string) error {
	return taxonomyError(apperrors.CategoryDataError, ReasonValidation, ErrValidation, message, errors.New(message))
}

func duplicateError(username string) error {
	return taxonomyError(apperrors.CategoryDataConflict, ReasonDuplicateIdentity, ErrDuplicateIdentity,
		"username already registered", fmt.Errorf("username %q", username))
}

func noFaceError(cause error) error {
	return taxonomyError(apperrors.CategoryDataError, ReasonNoFaceDetected, ErrNoFaceDetected,
		"no face detected in image", cause)
}

func ledgerUnavailableError(cause error) error {
	return taxonomyError(apperrors.CategoryRecovering, ReasonLedgerUnavailable, ErrLedgerUnavailable,
		"ledger unavailable, retry later", cause)
}

func ledgerTimeoutError(cause error) error {
	return taxonomyError(apperrors.CategoryConnectionTimeout, ReasonLedgerTimeout, ErrLedgerTimeout,
		"ledger did not confirm in time; check registration status before retrying", cause)
}

func ledgerRejectError(cause error) error {
	return taxonomyError(apperrors.CategoryDependencyFailure, ReasonLedgerReject, ErrLedgerReject,
		"ledger rejected the registration", cause)
}

func inconsistentError(username string) error {
	return taxonomyError(apperrors.CategoryGeneralError, ReasonRegistrationInconsistent, ErrRegistrationInconsistent,
		"registration accepted by ledger but not yet visible; operator reconciliation required",
		fmt.Errorf("username %q", username))
}

func incompleteError(username string) error {
	return taxonomyError(apperrors.CategoryResourceNotFound, ReasonRegistrationIncomplete, ErrRegistrationIncomplete,
		"registration incomplete; please register again", fmt.Errorf("orphaned similarity record for %q", username))
}

func notFoundError(username string) error {
	return taxonomyError(apperrors.CategoryResourceNotFound, ReasonNotFound, ErrNotFound,
		"user not found", fmt.Errorf("username %q", username))
}

func authenticationError(sentinel error) error {
	return taxonomyError(apperrors.CategoryUnauthorized, ReasonAuthenticationFailed, sentinel,
		"authentication failed", nil)
}

func internalError(cause error) error {
	return taxonomyError(apperrors.CategoryGeneralError, ReasonInternal, ErrInternal,
		"Internal Server Error", cause)
}

func extractorError(cause error) error {
	return taxonomyError(apperrors.CategoryDependencyFailure, ReasonInternal, ErrInternal,
		"face extraction failed", cause)
}
