package workorder

import (
	"fmt"

	"github.com/umputun/shopfloor/app/enums"
)

// Confirmation is a destructive or ambiguous action waiting for the operator's decision
type Confirmation struct {
	Action      enums.Confirm
	OrderNumber string
}

// Message returns the question shown to the operator
func (c Confirmation) Message() string {
	switch c.Action {
	case enums.ConfirmFinish:
		return "Do you confirm that the order is complete?"
	case enums.ConfirmDelete:
		return fmt.Sprintf("Do you want to remove order %s from pending?", c.OrderNumber)
	case enums.ConfirmLogout:
		return "Do you want to log out?"
	case enums.ConfirmResume:
		return fmt.Sprintf("Order %s is already in progress. Do you want to continue it?", c.OrderNumber)
	default:
		return ""
	}
}
