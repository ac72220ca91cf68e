package enums

// BuyerKind describes which identity path resolved the buyer of an order.
type BuyerKind string

const (
	BuyerKindRegistered BuyerKind = "registered"
	BuyerKindGuest      BuyerKind = "guest"
	BuyerKindNewUser    BuyerKind = "new_user"
)

// String implements fmt.Stringer.
func (k BuyerKind) String() string {
	return string(k)
}

// Accrues reports whether orders placed through this path can earn loyalty points.
func (k BuyerKind) Accrues() bool {
	return k == BuyerKindRegistered || k == BuyerKindNewUser
}
