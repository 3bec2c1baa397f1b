package pipeline

import (
	"errors"

	"github.com/dgallion1/msgexport/internal/render"
)

// Export request errors.
var (
	ErrEmptyContent      = errors.New("message content is empty")
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrInvalidTemplate   = render.ErrInvalidTemplate
	ErrBatchEmpty        = errors.New("batch has no requests")
	ErrBatchTooLarge     = errors.New("batch exceeds maximum size")
)
