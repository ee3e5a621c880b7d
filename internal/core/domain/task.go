package domain

// ValidationTask is the queue message envelope. It carries a snapshot of
// the order at enqueue time, not a live reference, and no attempt
// metadata: a redelivered task is indistinguishable from a first attempt.
type ValidationTask struct {
	OrderID  string `json:"order_id"`
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}
