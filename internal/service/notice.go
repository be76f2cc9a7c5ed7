package service

import (
	"errors"

	"github.com/nikolayk812/cartkeeper/internal/port"
)

const (
	MsgProductAdded  = "product added to cart"
	MsgOutOfStock    = "requested quantity exceeds available stock"
	MsgInvalidAmount = "invalid quantity"
	MsgAddFailed     = "failed to add product"
	MsgRemoveFailed  = "failed to remove product"
	MsgUpdateFailed  = "failed to update quantity"
	MsgPersistFailed = "failed to save cart"
)

type Notice struct {
	Message  string
	Severity port.Severity
}

// Describe maps the result of an operation to the message shown to the user.
// ok is false when the result deserves no message.
func Describe(op Op, outcome Outcome, err error) (_ Notice, ok bool) {
	if err == nil {
		if outcome == OutcomeProductAdded {
			return Notice{Message: MsgProductAdded, Severity: port.SeverityInfo}, true
		}
		return Notice{}, false
	}

	switch {
	case errors.Is(err, ErrOutOfStock):
		return errorNotice(MsgOutOfStock), true
	case errors.Is(err, ErrPersistence):
		return errorNotice(MsgPersistFailed), true
	case errors.Is(err, ErrInvalidQuantity) && op == OpUpdate:
		return errorNotice(MsgInvalidAmount), true
	}

	switch op {
	case OpAdd:
		return errorNotice(MsgAddFailed), true
	case OpRemove:
		return errorNotice(MsgRemoveFailed), true
	default:
		return errorNotice(MsgUpdateFailed), true
	}
}

func errorNotice(message string) Notice {
	return Notice{Message: message, Severity: port.SeverityError}
}
