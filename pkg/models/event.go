package models

type OrderEventType string

const (
	EventNewOrder    OrderEventType = "new-order"
	EventOrderUpdate OrderEventType = "order-update"
)

// OrderEvent is the transient message fanned out to live admin clients.
// It exists only in process memory and on the wire; it is never stored.
type OrderEvent struct {
	Type  OrderEventType `json:"type"`
	Order *Order         `json:"order,omitempty"`
}
