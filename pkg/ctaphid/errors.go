package ctaphid

import (
	"errors"

	"github.com/pico-keys/commissioner/pkg/ctaptypes"
)

var (
	ErrMessageTooLarge        = errors.New("ctaphid: message payload too large")
	ErrUnexpectedCommand      = errors.New("ctaphid: unexpected command")
	ErrUnexpectedSequence     = errors.New("ctaphid: continuation packet out of order")
	ErrInvalidResponseMessage = errors.New("ctaphid: invalid response message")

	// ErrReadTimeout is returned by transports when no matching report
	// arrived within the configured deadline. It is never retried here;
	// the caller decides whether re-issuing the request is safe.
	ErrReadTimeout = errors.New("ctaphid: read timeout")
)

// CTAPError carries the authenticator's status byte verbatim, together
// with the CTAP command that provoked it.
type CTAPError struct {
	Command    ctaptypes.Command
	StatusCode StatusCode
}

func newCTAPError(cmd ctaptypes.Command, code StatusCode) *CTAPError {
	return &CTAPError{
		Command:    cmd,
		StatusCode: code,
	}
}

func (e *CTAPError) Error() string {
	return e.Command.String() + " failed (" + e.StatusCode.String() + ")"
}

// HidError represents a CTAPHID_ERROR response.
type HidError struct {
	Code Error
}

func (e *HidError) Error() string {
	return "ctaphid: " + e.Code.String()
}
