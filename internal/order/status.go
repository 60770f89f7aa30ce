package order

// Status is the order fulfillment state.
type Status string

const (
	StatusPending        Status = "Pending"
	StatusShipped        Status = "Shipped"
	StatusOutForDelivery Status = "Out for Delivery"
	StatusDelivered      Status = "Delivered"
	StatusCancelled      Status = "Cancelled"
)

func (s Status) String() string { return string(s) }

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusShipped, StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition reports whether the move from one status to another is
// allowed. Terminal states have no outgoing edges.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusShipped || to == StatusCancelled
	case StatusShipped:
		return to == StatusOutForDelivery || to == StatusCancelled
	case StatusOutForDelivery:
		return to == StatusDelivered || to == StatusCancelled
	default:
		return false
	}
}
