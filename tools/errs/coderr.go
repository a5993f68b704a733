package errs

import (
	stderrors "errors"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Error codes surfaced by the storage collaborator. Validation misses and
// absent recipients are handled as silent skips, not errors, so they carry
// no code.
const (
	CodeStorage  = 1100 // persistence or lookup round-trip failed
	CodeNotFound = 1101 // referenced document does not exist
)

var (
	ErrStorage  = NewCodeError(CodeStorage, "storage operation failed")
	ErrNotFound = NewCodeError(CodeNotFound, "record not found")
)

type CodeError struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Detail string `json:"detail,omitempty"`
}

func NewCodeError(code int, msg string) *CodeError {
	return &CodeError{Code: code, Msg: msg}
}

func (e *CodeError) WithDetail(detail string) *CodeError {
	d := detail
	if e.Detail != "" {
		d = e.Detail + ", " + detail
	}
	return &CodeError{Code: e.Code, Msg: e.Msg, Detail: d}
}

// Wrap attaches a stack trace to the error.
func (e *CodeError) Wrap() error {
	return errors.WithStack(e)
}

// WrapMsg clones the error, appends detail and attaches a stack trace.
func (e *CodeError) WrapMsg(detail string) error {
	return errors.WithStack(e.WithDetail(detail))
}

// Is matches any CodeError carrying the same code, through wrapping.
func (e *CodeError) Is(err error) bool {
	var ce *CodeError
	if !stderrors.As(err, &ce) {
		return false
	}
	return ce.Code == e.Code
}

func (e *CodeError) Error() string {
	v := make([]string, 0, 3)
	v = append(v, strconv.Itoa(e.Code), e.Msg)
	if e.Detail != "" {
		v = append(v, e.Detail)
	}
	return strings.Join(v, " ")
}

// IsCode reports whether err (possibly wrapped) carries the given code.
func IsCode(err error, code int) bool {
	var ce *CodeError
	if !stderrors.As(err, &ce) {
		return false
	}
	return ce.Code == code
}

// WrapMsg annotates an arbitrary error with a message and stack.
func WrapMsg(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, msg)
}

func New(msg string) error {
	return errors.New(msg)
}
