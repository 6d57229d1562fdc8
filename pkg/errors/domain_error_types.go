package errors

import "fmt"

// Error codes for the graph domain. Codes travel with the AppError so
// callers can branch on the exact failure without string matching.
const (
	CodeInvalidEndpoints     = "INVALID_ENDPOINTS"
	CodeInvalidWeight        = "INVALID_WEIGHT"
	CodeDuplicateLink        = "DUPLICATE_LINK"
	CodeLinkNotFound         = "LINK_NOT_FOUND"
	CodeUnsupportedAlgorithm = "UNSUPPORTED_ALGORITHM"
	CodeTransitionInProgress = "TRANSITION_IN_PROGRESS"
)

// NewInvalidEndpoints reports a link request with empty or equal endpoints
func NewInvalidEndpoints(sourceID, targetID string) *AppError {
	return NewValidationError("link endpoints must be two distinct, non-empty node ids").
		WithCode(CodeInvalidEndpoints).
		WithDetails(map[string]interface{}{
			"source": sourceID,
			"target": targetID,
		})
}

// NewInvalidWeight reports a link strength outside [0,1]
func NewInvalidWeight(weight float64) *AppError {
	return NewValidationError(fmt.Sprintf("link strength %v outside [0,1]", weight)).
		WithCode(CodeInvalidWeight).
		WithDetails(map[string]interface{}{"strength": weight})
}

// NewDuplicateLink reports a second link of the same type between the same
// ordered endpoints
func NewDuplicateLink(sourceID, targetID string, linkType string) *AppError {
	return NewConflictError(fmt.Sprintf("%s link already exists between %s and %s", linkType, sourceID, targetID)).
		WithCode(CodeDuplicateLink).
		WithDetails(map[string]interface{}{
			"source": sourceID,
			"target": targetID,
			"type":   linkType,
		})
}

// NewLinkNotFound reports an update against an unknown link id
func NewLinkNotFound(linkID string) *AppError {
	return NewNotFoundError("link").
		WithCode(CodeLinkNotFound).
		WithDetails(map[string]interface{}{"link_id": linkID})
}

// NewUnsupportedAlgorithm reports an unknown layout or clustering algorithm
// discriminator. There is no silent default.
func NewUnsupportedAlgorithm(kind, name string) *AppError {
	return NewValidationError(fmt.Sprintf("unsupported %s algorithm: %q", kind, name)).
		WithCode(CodeUnsupportedAlgorithm).
		WithDetails(map[string]interface{}{"algorithm": name})
}

// NewTransitionInProgress reports a layout transition started while another
// is in flight. The caller may retry once the running transition completes.
func NewTransitionInProgress() *AppError {
	return NewConcurrencyError("a layout transition is already in progress").
		WithCode(CodeTransitionInProgress)
}
