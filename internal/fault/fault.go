// Package fault classifies the failures the notification pipeline can hit.
//
// Every component reports errors as one of three kinds. Callers log and move
// on; nothing in the pipeline treats a fault as fatal.
package fault

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	// KindNetwork covers timeouts, connection failures and non-2xx responses.
	KindNetwork
	// KindPersistence covers query and write failures against the store.
	KindPersistence
	// KindDecode covers malformed external responses.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindPersistence:
		return "persistence"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s failure", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Network(op string, err error) error {
	return &Error{Kind: KindNetwork, Op: op, Err: err}
}

func Persistence(op string, err error) error {
	return &Error{Kind: KindPersistence, Op: op, Err: err}
}

func Decode(op string, err error) error {
	return &Error{Kind: KindDecode, Op: op, Err: err}
}

// KindOf reports the kind of the first fault in err's chain.
func KindOf(err error) Kind {
	var f *Error
	if errors.As(err, &f) {
		return f.Kind
	}
	return KindUnknown
}
