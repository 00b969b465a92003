package mdstyle

import "errors"

// Sentinel errors for library operations.
var (
	ErrNilContext      = errors.New("context cannot be nil")
	ErrInvalidMaxWidth = errors.New("max width must be a positive number")

	// Document editing errors.
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrSplitSurrogate   = errors.New("offset splits a surrogate pair")

	// Image resolution errors. These never reach FromMarkdown callers: a
	// failed image resolves to the fallback text instead.
	ErrInvalidImageURL  = errors.New("invalid image URL")
	ErrImageFetch       = errors.New("image fetch failed")
	ErrImageTooLarge    = errors.New("image exceeds maximum size")
	ErrUnsupportedImage = errors.New("unsupported image format")

	// Inline rendering errors.
	ErrNoInlineRenderer = errors.New("no inline renderer configured")
	ErrEmptyInline      = errors.New("inline renderer returned no text")
)
