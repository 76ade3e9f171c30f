package protocol

import (
	"errors"
	"fmt"
)

var ErrInvalidJSON = errors.New("invalid json")
var ErrMissingType = errors.New("missing or non-string type")
var ErrUnknownType = errors.New("unknown message type")
var ErrMalformedPayload = errors.New("malformed payload")

// DecodeError is returned for any push that cannot be turned into a typed
// message. Raw is the payload exactly as received.
type DecodeError struct {
	Raw string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode message: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
