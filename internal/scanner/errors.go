package scanner

import (
	"errors"
	"fmt"

	"github.com/vmware/govmomi/vim25/soap"
)

// ValidationError reports bad input detected before any inventory call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// RemoteFault wraps a failure reported by the management endpoint.
type RemoteFault struct {
	Op  string
	Err error
}

func (e *RemoteFault) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteFault) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err is, or wraps, a ValidationError.
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsRemoteFault reports whether err is, or wraps, a RemoteFault.
func IsRemoteFault(err error) bool {
	var f *RemoteFault
	return errors.As(err, &f)
}

// FaultMessage returns the SOAP fault string carried by err, or its plain
// message when err is not a SOAP fault.
func FaultMessage(err error) string {
	if err == nil {
		return ""
	}
	var inner error = err
	var f *RemoteFault
	if errors.As(err, &f) {
		inner = f.Err
	}
	for e := inner; e != nil; e = errors.Unwrap(e) {
		if soap.IsSoapFault(e) {
			if msg := soap.ToSoapFault(e).String; msg != "" {
				return msg
			}
		}
	}
	return inner.Error()
}
