package apperrors

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
)

// GenericMessage é a mensagem exibida ao usuário final quando ocorre uma
// falha de infraestrutura. Detalhes reais ficam apenas nos logs.
const GenericMessage = "Ops. Parece que aconteceu um problema aqui do nosso lado. Tente novamente. Se o problema persistir contate o suporte técnico pelo telefone 0800-000-0000"

// Kind classifies an error into the taxonomy used across the API:
// validation problems, missing records, missing/invalid caller identity and
// infrastructure faults. Only the last one hides its cause from the caller.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindUnauthorized
	KindInfrastructure
)

// Error carries a user-facing message plus an operator-facing detail.
// Message is safe to return to clients; Detail and the wrapped error are not.
type Error struct {
	Kind    Kind
	Message string
	Detail  string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Detail != "" && e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Detail, e.Err)
	}
	if e.Detail != "" {
		return e.Detail
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(kind Kind, message, detail string, err error) *Error {
	return &Error{Kind: kind, Message: message, Detail: detail, Err: err}
}

// Validation marks malformed or unusable input. Message reaches the caller.
func Validation(message, detail string) *Error {
	return newError(KindValidation, message, detail, nil)
}

// NotFound marks a record the workflow required but could not find.
func NotFound(message, detail string) *Error {
	return newError(KindNotFound, message, detail, nil)
}

// Unauthorized marks a caller without a usable verified identity.
func Unauthorized(message, detail string) *Error {
	return newError(KindUnauthorized, message, detail, nil)
}

// Infrastructure wraps store/provider failures. The caller always sees
// GenericMessage; detail and err stay with the operators.
func Infrastructure(detail string, err error) *Error {
	return newError(KindInfrastructure, GenericMessage, detail, err)
}

// KindOf extracts the Kind from err, walking wrapped errors.
// Anything that is not an *Error counts as infrastructure.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInfrastructure
}

// UserMessage returns the message that may be shown to the end user.
func UserMessage(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return GenericMessage
}

// GRPCCode maps the taxonomy onto the wire codes the callable protocol uses.
func GRPCCode(err error) codes.Code {
	switch KindOf(err) {
	case KindValidation:
		return codes.InvalidArgument
	case KindNotFound:
		return codes.NotFound
	case KindUnauthorized:
		return codes.Unauthenticated
	default:
		return codes.Internal
	}
}
