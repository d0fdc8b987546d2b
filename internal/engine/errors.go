package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCaptions means no transcript could be produced for a video.
	// Callers should present it as "this video cannot be summarized", not as a crash.
	ErrNoCaptions = errors.New("no captions available")

	// ErrNoTranscript is the platform's definitive answer that a video has no
	// usable captions (disabled, unavailable video, or no track in the requested
	// languages). Unlike network or proxy failures it ends the resolver chain.
	ErrNoTranscript = errors.New("platform reports no transcript")

	ErrInvalidURL         = errors.New("invalid YouTube URL")
	ErrUnsupportedBackend = errors.New("unsupported backend")
)

// NoCaptionsError is returned by the resolver once every strategy has been
// attempted or the platform reported that captions do not exist.
type NoCaptionsError struct {
	VideoID string
	Reason  string
	Err     error // definitive cause, nil when all strategies were exhausted
}

func (e *NoCaptionsError) Error() string {
	msg := fmt.Sprintf("no captions available for %s", e.VideoID)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg + " (the video may have no captions, or YouTube may be restricting access from this IP)"
}

func (e *NoCaptionsError) Is(target error) bool { return target == ErrNoCaptions }

func (e *NoCaptionsError) Unwrap() error { return e.Err }

// NoTranscript wraps ErrNoTranscript with a platform-supplied reason.
func NoTranscript(reason string) error {
	return fmt.Errorf("%w: %s", ErrNoTranscript, reason)
}
