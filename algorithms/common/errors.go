package common

import "fmt"

// Error codes used across the feature pipeline and its adapters
const (
	ErrCodeInvalidConfiguration = "INVALID_CONFIGURATION"
	ErrCodeDecoding             = "DECODING_FAILED"
	ErrCodeShapeMismatch        = "SHAPE_MISMATCH"
)

// FeatureError is the error type returned by constructors and adapters.
type FeatureError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *FeatureError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *FeatureError) Unwrap() error {
	return e.Cause
}

// Is matches any *FeatureError carrying the same code, so callers can
// write errors.Is(err, common.ErrInvalidConfiguration).
func (e *FeatureError) Is(target error) bool {
	t, ok := target.(*FeatureError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is
var (
	ErrInvalidConfiguration = &FeatureError{Code: ErrCodeInvalidConfiguration, Message: "invalid configuration"}
	ErrDecoding             = &FeatureError{Code: ErrCodeDecoding, Message: "decoding failed"}
	ErrShapeMismatch        = &FeatureError{Code: ErrCodeShapeMismatch, Message: "shape mismatch"}
)

// NewFeatureError creates a new feature error
func NewFeatureError(code, message string, cause error) *FeatureError {
	return &FeatureError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// InvalidConfigurationf builds an INVALID_CONFIGURATION error with a formatted message.
func InvalidConfigurationf(format string, args ...any) *FeatureError {
	return NewFeatureError(ErrCodeInvalidConfiguration, fmt.Sprintf(format, args...), nil)
}
