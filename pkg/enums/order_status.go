package enums

// Seeded rows of the order_statuses table.
const (
	OrderStatusPending   = "pendiente"
	OrderStatusConfirmed = "confirmado"
	OrderStatusShipped   = "enviado"
	OrderStatusDelivered = "entregado"
	OrderStatusCanceled  = "cancelado"
)

// SeededOrderStatuses lists the statuses installed by the initial migration in display order.
var SeededOrderStatuses = []string{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCanceled,
}
