package push

import (
	"fmt"

	"github.com/example/tableside/pkg/models"
)

// StatusNotification builds the customer-facing notification for an order
// status. ok is false for statuses with no template (none today, but staff
// tooling may introduce intermediate states).
func StatusNotification(status models.OrderStatus, orderID, customerName string) (in Input, ok bool) {
	var title, body string
	switch status {
	case models.StatusPending:
		title = "Order received"
		body = fmt.Sprintf("Thank you %s! Your order %s has been received.", customerName, orderID)
	case models.StatusConfirmed:
		title = "Order confirmed"
		body = fmt.Sprintf("%s, your order %s is confirmed and queued for the kitchen.", customerName, orderID)
	case models.StatusPreparing:
		title = "Order in progress"
		body = fmt.Sprintf("%s, your order %s is being prepared.", customerName, orderID)
	case models.StatusReady:
		title = "Order ready"
		body = fmt.Sprintf("%s, your order %s is ready for pickup.", customerName, orderID)
	case models.StatusCompleted:
		title = "Order completed"
		body = fmt.Sprintf("Thank you %s! Order %s is complete.", customerName, orderID)
	case models.StatusCancelled:
		title = "Order cancelled"
		body = fmt.Sprintf("%s, your order %s has been cancelled. Please contact us for assistance.", customerName, orderID)
	default:
		return Input{}, false
	}
	return Input{Title: title, Body: body, OrderID: orderID}, true
}

// NewOrderNotification is the admin-facing alert for a freshly placed order.
func NewOrderNotification(order *models.Order) Input {
	return Input{
		Title:   "New order",
		Body:    fmt.Sprintf("%s placed order %s (%d items)", order.Customer.Name, order.OrderID, len(order.Items)),
		OrderID: order.OrderID,
	}
}
