package notifier

import (
	"errors"
	"fmt"
	"time"
)

// Reason classifies why the channel rejected a send.
type Reason string

const (
	ReasonRateLimited  Reason = "RATE_LIMITED"
	ReasonUnauthorized Reason = "UNAUTHORIZED"
	ReasonBadPayload   Reason = "BAD_PAYLOAD"
	ReasonNetwork      Reason = "NETWORK"
	ReasonUnknown      Reason = "UNKNOWN"
)

// SendRejectedError reports that the channel was reached and refused the
// payload. It is distinct from a readiness timeout: the send was attempted.
type SendRejectedError struct {
	Reason  Reason
	Status  int
	Message string
}

func (e *SendRejectedError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("delivery channel rejected send (%s, status %d): %s", e.Reason, e.Status, e.Message)
	}
	return fmt.Sprintf("delivery channel rejected send (%s): %s", e.Reason, e.Message)
}

// Transient reports whether retrying the same payload can reasonably succeed.
// Authorization and payload-shape failures will not heal on their own.
func (e *SendRejectedError) Transient() bool {
	switch e.Reason {
	case ReasonRateLimited, ReasonNetwork, ReasonUnknown:
		return true
	default:
		return false
	}
}

// ReadinessTimeoutError reports that the channel never became ready, so the
// send never got a chance to be tried.
type ReadinessTimeoutError struct {
	State  State
	Waited time.Duration
}

func (e *ReadinessTimeoutError) Error() string {
	return fmt.Sprintf("delivery channel not ready after %s (state %s)", e.Waited, e.State)
}

// IsReadinessTimeout reports whether err is a readiness timeout.
// Uses errors.As to handle wrapped errors.
func IsReadinessTimeout(err error) bool {
	var rt *ReadinessTimeoutError
	return errors.As(err, &rt)
}

// IsTransientSend reports whether err is a send rejection worth retrying.
func IsTransientSend(err error) bool {
	var rej *SendRejectedError
	return errors.As(err, &rej) && rej.Transient()
}
