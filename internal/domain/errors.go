package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies errors returned across the session boundary.
type ErrorKind int

const (
	// KindGeneric covers local precondition failures not listed below,
	// e.g. a transfer requested without an established channel.
	KindGeneric ErrorKind = iota
	// KindCodegen is a code generation attempt on a session that is not
	// idle, or with an invalid length or code.
	KindCodegen
	// KindRelayAddress is a relay URL that cannot be turned into a hint.
	KindRelayAddress
	// KindTransfer is any failure after a channel has been taken by a
	// send or receive.
	KindTransfer
	// KindChannel is a failure of the secure-channel collaborator not
	// classified above: rendezvous connectivity, handshake failure.
	KindChannel
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindGeneric:
		return "generic"
	case KindCodegen:
		return "codegen"
	case KindRelayAddress:
		return "relay-address"
	case KindTransfer:
		return "transfer"
	case KindChannel:
		return "channel"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// IsPrecondition reports whether errors of this kind come from calling the
// session in the wrong state. Those need a fresh session; the others can
// be retried at the network step.
func (k ErrorKind) IsPrecondition() bool {
	return k == KindGeneric || k == KindCodegen
}

// Error is the error type returned by the session layer. It is immutable
// once constructed.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrGeneric      = &Error{Kind: KindGeneric}
	ErrCodegen      = &Error{Kind: KindCodegen}
	ErrRelayAddress = &Error{Kind: KindRelayAddress}
	ErrTransfer     = &Error{Kind: KindTransfer}
	ErrChannel      = &Error{Kind: KindChannel}
)

func (e *Error) Error() string {
	var prefix string
	switch e.Kind {
	case KindCodegen:
		prefix = "error generating wormhole code"
	case KindRelayAddress:
		prefix = "invalid relay address"
	case KindTransfer:
		prefix = "transfer failed"
	case KindChannel:
		prefix = "secure channel error"
	default:
		prefix = "an error occurred"
	}
	switch {
	case e.Msg != "" && e.Err != nil:
		return prefix + ": " + e.Msg + ": " + e.Err.Error()
	case e.Msg != "":
		return prefix + ": " + e.Msg
	case e.Err != nil:
		return prefix + ": " + e.Err.Error()
	default:
		return prefix
	}
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.Err }

// Is matches the kind sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Msg != "" || t.Err != nil {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the outermost *Error in err's chain. Errors
// that carry no *Error are reported as KindGeneric.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindGeneric
}

// GenericError reports a local precondition failure.
func GenericError(msg string) error {
	return &Error{Kind: KindGeneric, Msg: msg}
}

// CodegenError reports a refused code generation.
func CodegenError(msg string) error {
	return &Error{Kind: KindCodegen, Msg: msg}
}

// RelayAddressError wraps a relay URL parse failure.
func RelayAddressError(err error) error {
	return wrap(KindRelayAddress, err)
}

// TransferError wraps a failure that happened during a send or receive.
func TransferError(err error) error {
	return wrap(KindTransfer, err)
}

// ChannelError wraps a failure of the secure-channel collaborator.
func ChannelError(err error) error {
	return wrap(KindChannel, err)
}

// wrap classifies err as kind. nil stays nil and errors that are already
// classified are passed through verbatim.
func wrap(kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: kind, Err: err}
}
