package domain

import "errors"

var (
	ErrEmptyPrompt   = errors.New("empty prompt")
	ErrInvalidImage  = errors.New("selected file is not an image")
	ErrQuotaExceeded = errors.New("daily usage limit reached")

	ErrImageNotReady        = errors.New("image size not known yet")
	ErrContainerUnavailable = errors.New("container size not available")
	ErrAlreadyAttached      = errors.New("input controller already attached")
	ErrUnsupportedScope     = errors.New("unsupported subscription scope")
	ErrActionNotFound       = errors.New("toolbar action not found")
	ErrViewerClosed         = errors.New("viewer closed")

	ErrRecordNotFound = errors.New("record not found")

	// ErrLimitUnavailable means the usage was recorded but the limit could not be fetched.
	ErrLimitUnavailable = errors.New("usage limit unavailable")
)

// DefaultPrompt is sent when the user does not supply one.
const DefaultPrompt = "turn this photo into a character figure. Behind it, place a box with the character's " +
	"image printed on it, and a computer showing the Blender modeling process on its screen. In front of the " +
	"box, add a round plastic base with the character figure standing on it. Make the PVC material look clear, " +
	"and set the scene indoors if possible"
