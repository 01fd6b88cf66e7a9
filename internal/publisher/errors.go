package publisher

import "errors"

var (
	// ErrLoginFailed reports rejected credentials or a login form that never
	// yielded an authenticated page.
	ErrLoginFailed = errors.New("login failed")

	// ErrCaptchaDetected is fatal and never retried; retrying a challenge
	// raises the automation-detection risk.
	ErrCaptchaDetected = errors.New("captcha challenge detected")

	// ErrUploadTimeout reports an audio upload that did not complete within
	// the configured bound.
	ErrUploadTimeout = errors.New("audio upload timed out")

	// ErrUnexpectedUIState reports a page missing the expected control.
	// Fatal: blind retries against an unknown page risk duplicate
	// submissions.
	ErrUnexpectedUIState = errors.New("unexpected ui state")
)

// fatal reports errors that must never be retried within a transition.
func fatal(err error) bool {
	return errors.Is(err, ErrCaptchaDetected) || errors.Is(err, ErrUnexpectedUIState)
}
