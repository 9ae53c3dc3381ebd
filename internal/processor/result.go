package processor

import (
	"encoding/json"
	"fmt"
)

// Status is the outcome of a processing run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Result is the standardized outcome every processor returns: either a
// success carrying a payload under the processor's payload key, or a
// failure carrying an error message. Exactly one of the two is populated,
// by construction. Results are immutable.
type Result struct {
	status  Status
	key     string
	payload string
	errMsg  string
}

// Success builds a successful result whose payload is published under key.
func Success(key, payload string) Result {
	return Result{status: StatusSuccess, key: key, payload: payload}
}

// Failed builds a failed result with the given error message.
func Failed(msg string) Result {
	return Result{status: StatusFailed, errMsg: msg}
}

// Failedf builds a failed result with a formatted error message.
func Failedf(format string, args ...any) Result {
	return Failed(fmt.Sprintf(format, args...))
}

// Status returns the outcome status.
func (r Result) Status() Status { return r.status }

// OK reports whether the run succeeded.
func (r Result) OK() bool { return r.status == StatusSuccess }

// Payload returns the payload text and whether it is present.
func (r Result) Payload() (string, bool) {
	return r.payload, r.status == StatusSuccess
}

// ErrMessage returns the error text of a failed result, "" on success.
func (r Result) ErrMessage() string { return r.errMsg }

// ToMap renders the result in the shape every adapter displays:
// status plus either the payload key or "error", never both.
func (r Result) ToMap() map[string]string {
	m := map[string]string{"status": string(r.status)}
	if r.status == StatusSuccess {
		m[r.key] = r.payload
	} else {
		m["error"] = r.errMsg
	}
	return m
}

// MarshalJSON renders the same shape as ToMap.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ToMap())
}
