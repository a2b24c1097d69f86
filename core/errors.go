package core

import (
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	EngineErrorBadInput           = "ENGINE_VALIDATION_FAILED"
	EngineErrorLifecycleBlocked   = "ENGINE_LIFECYCLE_BLOCKED"
	EngineErrorAuthorization      = "ENGINE_AUTHORIZATION_FAILED"
	EngineErrorCapacityExceeded   = "ENGINE_CAPACITY_EXCEEDED"
	EngineErrorInactive           = "ENGINE_TARGET_INACTIVE"
	EngineErrorNotFound           = "ENGINE_NOT_FOUND"
	EngineErrorNotInitialized     = "ENGINE_NOT_INITIALIZED"
	EngineErrorAlreadyInitialized = "ENGINE_ALREADY_INITIALIZED"
	EngineErrorInternal           = "ENGINE_INTERNAL_ERROR"
)

var (
	ErrNotInitialized     = errors.New("core: engine is not bootstrapped")
	ErrAlreadyInitialized = errors.New("core: engine is already bootstrapped")
	ErrNotFound           = errors.New("core: record not found")
)

// engineErrorMapper translates domain sentinels into stable service
// envelopes. Wrapping keeps the cause chain intact so callers can still
// match with errors.Is through the envelope.
func engineErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureEngineErrorEnvelope(richErr)
	}

	switch {
	case errors.Is(err, ErrLifecycleBlocked),
		errors.Is(err, ErrMigrationNotRequired),
		errors.Is(err, ErrMigrationAlreadyInProgress),
		errors.Is(err, ErrMigrationNotInProgress):
		return wrapEngineError(err, goerrors.CategoryConflict, EngineErrorLifecycleBlocked)
	case errors.Is(err, ErrIdentityMismatch),
		errors.Is(err, ErrScopeMismatch),
		errors.Is(err, ErrInsufficientRole):
		return wrapEngineError(err, goerrors.CategoryAuthz, EngineErrorAuthorization)
	case errors.Is(err, ErrCounterOverflow),
		errors.Is(err, ErrModuleLimitReached),
		errors.Is(err, ErrObservationLimitReached),
		errors.Is(err, ErrObservationTooLarge):
		return wrapEngineError(err, goerrors.CategoryOperation, EngineErrorCapacityExceeded)
	case errors.Is(err, ErrEngineInactive),
		errors.Is(err, ErrRepoInactive),
		errors.Is(err, ErrForkInactive),
		errors.Is(err, ErrObservationNotAllowed):
		return wrapEngineError(err, goerrors.CategoryConflict, EngineErrorInactive)
	case errors.Is(err, ErrNotInitialized):
		return wrapEngineError(err, goerrors.CategoryConflict, EngineErrorNotInitialized)
	case errors.Is(err, ErrAlreadyInitialized):
		return wrapEngineError(err, goerrors.CategoryConflict, EngineErrorAlreadyInitialized)
	case errors.Is(err, ErrNotFound):
		return wrapEngineError(err, goerrors.CategoryNotFound, EngineErrorNotFound)
	case errors.Is(err, ErrValueEmpty),
		errors.Is(err, ErrValueTooLong),
		errors.Is(err, ErrValueOutOfRange),
		errors.Is(err, ErrInvalidURL),
		errors.Is(err, ErrInvalidPhase),
		errors.Is(err, ErrInvalidRoleBits),
		errors.Is(err, ErrInvalidScope),
		errors.Is(err, ErrFeeOutOfRange),
		errors.Is(err, ErrZeroCeiling):
		return wrapEngineError(err, goerrors.CategoryBadInput, EngineErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureEngineErrorEnvelope(mapped)
}

func wrapEngineError(err error, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureEngineErrorEnvelope(
		goerrors.Wrap(err, category, err.Error()).
			WithTextCode(textCode),
	)
}

func ensureEngineErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = engineHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultEngineTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultEngineTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return EngineErrorBadInput
	case goerrors.CategoryNotFound:
		return EngineErrorNotFound
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return EngineErrorAuthorization
	case goerrors.CategoryConflict:
		return EngineErrorLifecycleBlocked
	case goerrors.CategoryOperation:
		return EngineErrorCapacityExceeded
	default:
		return EngineErrorInternal
	}
}

func engineHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryOperation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
