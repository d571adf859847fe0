package domain

// Order Statuses
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
	OrderStatusReturned   = "returned"
	OrderStatusRefunded   = "refunded"
)

// Payment Statuses
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// Payment Methods
const (
	PaymentMethodCOD     = "cod"
	PaymentMethodGateway = "gateway"
)

// Coupon Statuses
const (
	CouponStatusDraft     = "draft"
	CouponStatusActive    = "active"
	CouponStatusScheduled = "scheduled"
	CouponStatusExpired   = "expired"
)

// Return Statuses
const (
	ReturnStatusRequested = "requested"
	ReturnStatusApproved  = "approved"
	ReturnStatusRejected  = "rejected"
	ReturnStatusCompleted = "completed"
)

// List Exports for API
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusReturned,
	OrderStatusRefunded,
}

var PaymentStatuses = []string{
	PaymentStatusPending,
	PaymentStatusPaid,
	PaymentStatusFailed,
	PaymentStatusRefunded,
}

var PaymentMethods = []string{
	PaymentMethodCOD,
	PaymentMethodGateway,
}

var CouponStatuses = []string{
	CouponStatusDraft,
	CouponStatusActive,
	CouponStatusScheduled,
	CouponStatusExpired,
}

var ReturnStatuses = []string{
	ReturnStatusRequested,
	ReturnStatusApproved,
	ReturnStatusRejected,
	ReturnStatusCompleted,
}
