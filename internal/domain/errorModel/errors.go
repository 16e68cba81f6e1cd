package errorModel

import (
	"errors"
	"fmt"
)

// Kind names a failure class. It is what gets recorded on a document's last_error.
type Kind string

const (
	KindExtraction       Kind = "ExtractionError"
	KindConfiguration    Kind = "ConfigurationError"
	KindRateLimited      Kind = "UpstreamRateLimited"
	KindTransient        Kind = "UpstreamTransient"
	KindInvalidInput     Kind = "InvalidInput"
	KindAuthentication   Kind = "UpstreamAuthError"
	KindStoreUnavailable Kind = "StoreUnavailable"
	KindAlreadyRunning   Kind = "AlreadyProcessing"
	KindNotFound         Kind = "NotFound"
)

var (
	ErrExtraction        = errors.New("extraction failed")
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported format", ErrExtraction)
	ErrCorruptFile       = fmt.Errorf("%w: corrupt file", ErrExtraction)
	ErrConfiguration     = errors.New("invalid configuration")
	ErrRateLimited       = errors.New("upstream rate limited")
	ErrTransient         = errors.New("upstream transient failure")
	ErrInvalidInput      = errors.New("invalid input")
	ErrAuthentication    = errors.New("upstream authentication failed")
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrAlreadyProcessing = errors.New("document is already processing")
	ErrNotFound          = errors.New("not found")
)

var kindSentinels = map[Kind]error{
	KindExtraction:       ErrExtraction,
	KindConfiguration:    ErrConfiguration,
	KindRateLimited:      ErrRateLimited,
	KindTransient:        ErrTransient,
	KindInvalidInput:     ErrInvalidInput,
	KindAuthentication:   ErrAuthentication,
	KindStoreUnavailable: ErrStoreUnavailable,
	KindAlreadyRunning:   ErrAlreadyProcessing,
	KindNotFound:         ErrNotFound,
}

// Error carries a Kind, the operation that failed and the underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the sentinel that belongs to the error's kind.
func (e *Error) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && sentinel == target
}

func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Extraction(op string, err error) *Error    { return New(KindExtraction, op, err) }
func Configuration(op string, err error) *Error { return New(KindConfiguration, op, err) }
func RateLimited(op string, err error) *Error   { return New(KindRateLimited, op, err) }
func Transient(op string, err error) *Error     { return New(KindTransient, op, err) }
func InvalidInput(op string, err error) *Error  { return New(KindInvalidInput, op, err) }
func Auth(op string, err error) *Error          { return New(KindAuthentication, op, err) }
func StoreUnavailable(op string, err error) *Error {
	return New(KindStoreUnavailable, op, err)
}

// KindOf returns the kind of the first *Error in the chain, falling back to the
// sentinel the chain matches. Unknown errors are reported as transient.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	for kind, sentinel := range kindSentinels {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	return KindTransient
}

// IsRetryable reports whether the failure may clear up on its own.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrTransient)
}

// Describe renders err for the last_error column: "<Kind>: <message>".
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return fmt.Sprintf("%s: %v", KindOf(err), err)
}
