package errors

import "github.com/pkg/errors"

var (
	// webhook errors
	ErrInvalidPayload = errors.New("invalid payload")

	// extraction errors
	ErrEmptyExtraction = errors.New("extractor returned no fields")

	// classification errors
	ErrNoUsableScores = errors.New("classifier returned no usable scores")

	// sink errors
	ErrSheetAppendFailed = errors.New("sheet append failed")
)
