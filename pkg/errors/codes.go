package errors

import "net/http"

// ErrorCode is a string identifier for a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_005"
	ErrCodeTimeout            ErrorCode = "COMMON_006"
	ErrCodeValidation         ErrorCode = "COMMON_007"
	ErrCodeSerialization      ErrorCode = "COMMON_008"
	ErrCodeDatabaseError      ErrorCode = "COMMON_009"
	ErrCodeUnknown            ErrorCode = "COMMON_000"
	ErrCodeOK                 ErrorCode = "OK"
)

// Feature normalization error codes.
const (
	ErrCodeInvalidFeature   ErrorCode = "FEAT_001"
	ErrCodeMissingPrice     ErrorCode = "FEAT_002"
	ErrCodeMissingAddress   ErrorCode = "FEAT_003"
	ErrCodePriceBelowFloor  ErrorCode = "FEAT_004"
	ErrCodeUnparsableNumber ErrorCode = "FEAT_005"
)

// Prediction error codes.
const (
	ErrCodeInvalidArea      ErrorCode = "PRED_001"
	ErrCodeNonFiniteInput   ErrorCode = "PRED_002"
	ErrCodePredictionFailed ErrorCode = "PRED_003"
)

// Geospatial error codes.
const (
	ErrCodeInvalidGeoPoint ErrorCode = "GEO_001"
	ErrCodeInvalidK        ErrorCode = "GEO_002"
	ErrCodeInvalidBounds   ErrorCode = "GEO_003"
)

// Aggregation error codes.
const (
	ErrCodeAggregationFailed ErrorCode = "AGG_001"
	ErrCodeStoreUnavailable  ErrorCode = "AGG_002"
)

// Cache error codes.
const (
	ErrCodeCacheError          ErrorCode = "CACHE_001"
	ErrCodeCacheComputeFailure ErrorCode = "CACHE_002"
)

// httpStatusByCode maps every error code to the HTTP status the interface
// layer should respond with.  Codes not listed here map to 500.
var httpStatusByCode = map[ErrorCode]int{
	ErrCodeOK:                 http.StatusOK,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,

	ErrCodeInvalidFeature:   http.StatusBadRequest,
	ErrCodeMissingPrice:     http.StatusBadRequest,
	ErrCodeMissingAddress:   http.StatusBadRequest,
	ErrCodePriceBelowFloor:  http.StatusBadRequest,
	ErrCodeUnparsableNumber: http.StatusBadRequest,

	ErrCodeInvalidArea:    http.StatusBadRequest,
	ErrCodeNonFiniteInput: http.StatusBadRequest,

	ErrCodeInvalidGeoPoint: http.StatusBadRequest,
	ErrCodeInvalidK:        http.StatusBadRequest,
	ErrCodeInvalidBounds:   http.StatusBadRequest,

	ErrCodeStoreUnavailable: http.StatusServiceUnavailable,
}

// HTTPStatus returns the HTTP status code associated with c.
func (c ErrorCode) HTTPStatus() int {
	if status, ok := httpStatusByCode[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// validationCodes are the codes that classify as caller input errors.
var validationCodes = map[ErrorCode]bool{
	ErrCodeBadRequest:       true,
	ErrCodeValidation:       true,
	ErrCodeInvalidFeature:   true,
	ErrCodeMissingPrice:     true,
	ErrCodeMissingAddress:   true,
	ErrCodePriceBelowFloor:  true,
	ErrCodeUnparsableNumber: true,
	ErrCodeInvalidArea:      true,
	ErrCodeNonFiniteInput:   true,
	ErrCodeInvalidGeoPoint:  true,
	ErrCodeInvalidK:         true,
	ErrCodeInvalidBounds:    true,
}

// IsValidationCode reports whether c classifies a malformed-input failure.
func IsValidationCode(c ErrorCode) bool {
	return validationCodes[c]
}
