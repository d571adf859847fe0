package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"mollywear-backend/internal/cart"
	"mollywear-backend/internal/domain"
	"mollywear-backend/pkg/logger"
)

// PaymentGateway creates hosted payment orders for online checkout.
type PaymentGateway interface {
	CreatePaymentOrder(ctx context.Context, amount float64, receipt string) (string, error)
}

type OrderUsecase struct {
	orderRepo    domain.OrderRepository
	productRepo  domain.ProductRepository
	couponRepo   domain.CouponRepository
	settingsRepo domain.SettingsRepository
	cartStore    domain.CartStore
	gateway      PaymentGateway
	txManager    domain.TransactionManager
}

func NewOrderUsecase(
	orderRepo domain.OrderRepository,
	productRepo domain.ProductRepository,
	couponRepo domain.CouponRepository,
	settingsRepo domain.SettingsRepository,
	cartStore domain.CartStore,
	gateway PaymentGateway,
	txManager domain.TransactionManager,
) *OrderUsecase {
	return &OrderUsecase{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		couponRepo:   couponRepo,
		settingsRepo: settingsRepo,
		cartStore:    cartStore,
		gateway:      gateway,
		txManager:    txManager,
	}
}

type CheckoutReq struct {
	Address       domain.JSONB `json:"address"`
	PaymentMethod string       `json:"paymentMethod"`
	ShippingZone  string       `json:"shippingZone"`
}

// Checkout turns the session cart into an order. Prices, stock, and the
// coupon are all re-validated against the database at this point; the
// in-memory session state is advisory only.
func (u *OrderUsecase) Checkout(ctx context.Context, userID string, session *cart.Container, req CheckoutReq) (*domain.Order, error) {
	log := logger.Get()

	if req.PaymentMethod != domain.PaymentMethodCOD && req.PaymentMethod != domain.PaymentMethodGateway {
		return nil, fmt.Errorf("unknown payment method '%s'", req.PaymentMethod)
	}

	resolved, subtotal, err := session.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cart: %w", err)
	}
	if len(resolved) == 0 {
		return nil, fmt.Errorf("cart is empty")
	}

	// Stock check and order item mapping. Each line must map onto a size
	// row with enough stock.
	var orderItems []domain.OrderItem
	type deduction struct {
		sizeID string
		qty    int
	}
	var deductions []deduction
	for _, line := range resolved {
		var sizeRow *domain.SizeStock
		for i := range line.Product.Sizes {
			if line.Product.Sizes[i].Label == line.Size {
				sizeRow = &line.Product.Sizes[i]
				break
			}
		}
		if sizeRow == nil {
			return nil, fmt.Errorf("size '%s' is no longer offered for %s", line.Size, line.Product.Name)
		}
		if sizeRow.Stock < line.Quantity {
			return nil, fmt.Errorf("only %d left of %s (%s)", sizeRow.Stock, line.Product.Name, line.Size)
		}
		deductions = append(deductions, deduction{sizeID: sizeRow.ID, qty: line.Quantity})
		orderItems = append(orderItems, domain.OrderItem{
			ProductID: line.ProductID,
			Size:      line.Size,
			Quantity:  line.Quantity,
			Price:     line.UnitPrice,
		})
	}

	// Coupon re-validation. The session's applied coupon may have gone
	// stale since it was applied; a failure here aborts the checkout
	// rather than silently charging full price.
	var (
		discount   float64
		couponCode *string
		couponID   *domain.Coupon
	)
	if applied := session.AppliedCoupon(); applied != nil {
		fresh, err := u.couponRepo.GetCouponByCode(ctx, applied.Code)
		if err != nil {
			return nil, fmt.Errorf("coupon '%s' is no longer available", applied.Code)
		}
		if err := fresh.Applicable(time.Now()); err != nil {
			return nil, fmt.Errorf("coupon '%s' can no longer be applied: %w", applied.Code, err)
		}
		discount = math.Round(subtotal * float64(fresh.DiscountPercent) / 100)
		if discount > subtotal {
			discount = subtotal
		}
		couponCode = &fresh.Code
		couponID = fresh
	}

	zoneKey := req.ShippingZone
	if zoneKey == "" {
		zoneKey = "standard"
	}
	zone, err := u.settingsRepo.GetShippingZoneByKey(ctx, zoneKey)
	if err != nil {
		return nil, fmt.Errorf("shipping zone '%s' not found", zoneKey)
	}

	total := subtotal - discount + zone.Cost
	if total < 0 {
		total = 0
	}

	order := &domain.Order{
		UserID:          userID,
		Status:          domain.OrderStatusPending,
		Subtotal:        subtotal,
		DiscountAmount:  discount,
		CouponCode:      couponCode,
		ShippingFee:     zone.Cost,
		TotalAmount:     total,
		ShippingAddress: req.Address,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   domain.PaymentStatusPending,
		Items:           orderItems,
	}

	err = u.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := u.orderRepo.CreateOrder(txCtx, order); err != nil {
			return err
		}
		for _, d := range deductions {
			if err := u.productRepo.AdjustStock(txCtx, d.sizeID, -d.qty); err != nil {
				return fmt.Errorf("insufficient stock: %w", err)
			}
		}
		// Usage is counted at order placement, not at apply time. The
		// guarded increment is what actually enforces max_usage under
		// concurrent checkouts.
		if couponID != nil {
			if err := u.couponRepo.IncrementCouponUsage(txCtx, couponID.ID); err != nil {
				return fmt.Errorf("coupon '%s' can no longer be applied: %w", couponID.Code, err)
			}
		}
		return u.cartStore.ClearCart(txCtx, userID)
	})
	if err != nil {
		return nil, err
	}

	// Order is committed; now clear the in-memory session and drop the
	// coupon so the next cart starts clean.
	session.ClearCart(ctx)
	session.RemoveCoupon()

	// Gateway order creation happens after commit. If it fails the order
	// stays payable via a retry; COD orders skip this entirely.
	if req.PaymentMethod == domain.PaymentMethodGateway {
		gatewayID, err := u.gateway.CreatePaymentOrder(ctx, order.TotalAmount, order.ID)
		if err != nil {
			log.Error().Err(err).Str("order_id", order.ID).Msg("payment order creation failed")
			return order, nil
		}
		if err := u.orderRepo.SetPaymentOrderID(ctx, order.ID, gatewayID); err != nil {
			log.Error().Err(err).Str("order_id", order.ID).Msg("failed to store payment order id")
		} else {
			order.PaymentOrderID = &gatewayID
		}
	}

	return order, nil
}

func (u *OrderUsecase) GetMyOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	return u.orderRepo.GetByUserID(ctx, userID)
}

func (u *OrderUsecase) GetMyOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := u.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

// --- Admin ---

func (u *OrderUsecase) GetAllOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	return u.orderRepo.GetAll(ctx, filter)
}

func (u *OrderUsecase) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return u.orderRepo.GetByID(ctx, id)
}

// Forward-only progress weights. Admins may jump ahead (pending straight
// to cancelled) but never walk an order backwards.
var orderStatusWeights = map[string]int{
	domain.OrderStatusPending:    10,
	domain.OrderStatusConfirmed:  20,
	domain.OrderStatusProcessing: 30,
	domain.OrderStatusShipped:    40,
	domain.OrderStatusDelivered:  50,
	domain.OrderStatusReturned:   60,
	domain.OrderStatusRefunded:   70,
	domain.OrderStatusCancelled:  80,
}

func validateOrderTransition(current, next string) error {
	currentWeight, okCurrent := orderStatusWeights[current]
	newWeight, okNew := orderStatusWeights[next]
	if !okNew {
		return fmt.Errorf("unknown order status '%s'", next)
	}
	if okCurrent && newWeight < currentWeight {
		return fmt.Errorf("invalid transition: cannot go backward from '%s' to '%s'", current, next)
	}
	return nil
}

func (u *OrderUsecase) UpdateOrderStatus(ctx context.Context, orderID, newStatus, note, actorID string) error {
	order, err := u.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	if err := validateOrderTransition(order.Status, newStatus); err != nil {
		return err
	}
	if order.Status == newStatus {
		return nil
	}

	oldStatus := order.Status
	return u.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := u.orderRepo.UpdateStatus(txCtx, orderID, newStatus); err != nil {
			return err
		}

		reason := note
		if reason == "" {
			reason = fmt.Sprintf("Status changed from %s to %s", oldStatus, newStatus)
		}
		history := domain.OrderHistory{
			OrderID:        orderID,
			PreviousStatus: &oldStatus,
			NewStatus:      newStatus,
			Reason:         &reason,
			CreatedBy:      &actorID,
		}
		return u.orderRepo.CreateOrderHistory(txCtx, &history)
	})
}

func (u *OrderUsecase) UpdatePaymentStatus(ctx context.Context, orderID, newStatus, actorID string) error {
	order, err := u.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.PaymentStatus == newStatus {
		return nil
	}
	valid := false
	for _, s := range domain.PaymentStatuses {
		if s == newStatus {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("unknown payment status '%s'", newStatus)
	}

	return u.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := u.orderRepo.UpdatePaymentStatus(txCtx, orderID, newStatus); err != nil {
			return err
		}
		reason := fmt.Sprintf("Payment status changed: %s -> %s", order.PaymentStatus, newStatus)
		history := domain.OrderHistory{
			OrderID:        orderID,
			PreviousStatus: &order.Status,
			NewStatus:      order.Status,
			Reason:         &reason,
			CreatedBy:      &actorID,
		}
		return u.orderRepo.CreateOrderHistory(txCtx, &history)
	})
}

func (u *OrderUsecase) GetOrderHistory(ctx context.Context, orderID string) ([]domain.OrderHistory, error) {
	return u.orderRepo.GetOrderHistory(ctx, orderID)
}
