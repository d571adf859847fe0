package usecase

import (
	"context"
	"fmt"

	"mollywear-backend/internal/domain"
)

type ReturnUsecase struct {
	returnRepo  domain.ReturnRepository
	orderRepo   domain.OrderRepository
	productRepo domain.ProductRepository
	txManager   domain.TransactionManager
}

func NewReturnUsecase(
	returnRepo domain.ReturnRepository,
	orderRepo domain.OrderRepository,
	productRepo domain.ProductRepository,
	txManager domain.TransactionManager,
) *ReturnUsecase {
	return &ReturnUsecase{
		returnRepo:  returnRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		txManager:   txManager,
	}
}

// RequestReturn opens a return for one item of a delivered order.
func (u *ReturnUsecase) RequestReturn(ctx context.Context, userID, orderID, orderItemID, reason string) (*domain.Return, error) {
	if reason == "" {
		return nil, fmt.Errorf("a reason is required")
	}

	order, err := u.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domain.ErrNotFound
	}
	if order.Status != domain.OrderStatusDelivered {
		return nil, fmt.Errorf("only delivered orders can be returned")
	}

	found := false
	for _, item := range order.Items {
		if item.ID == orderItemID {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("item does not belong to this order")
	}

	existing, err := u.returnRepo.GetReturnsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, ret := range existing {
		if ret.OrderItemID == orderItemID && ret.Status != domain.ReturnStatusRejected {
			return nil, fmt.Errorf("a return for this item already exists")
		}
	}

	ret := &domain.Return{
		OrderID:     orderID,
		OrderItemID: orderItemID,
		UserID:      userID,
		Reason:      reason,
		Status:      domain.ReturnStatusRequested,
	}
	if err := u.returnRepo.CreateReturn(ctx, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

func (u *ReturnUsecase) GetMyReturns(ctx context.Context, userID string) ([]domain.Return, error) {
	return u.returnRepo.GetReturnsByUser(ctx, userID)
}

// --- Admin ---

func (u *ReturnUsecase) ListReturns(ctx context.Context, status string, limit, offset int) ([]domain.Return, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	return u.returnRepo.ListReturns(ctx, status, limit, offset)
}

// ReviewReturn approves or rejects a requested return. Approval restocks
// the returned size in the same transaction.
func (u *ReturnUsecase) ReviewReturn(ctx context.Context, returnID string, approve bool, adminNote *string) error {
	ret, err := u.returnRepo.GetReturnByID(ctx, returnID)
	if err != nil {
		return err
	}
	if ret.Status != domain.ReturnStatusRequested {
		return fmt.Errorf("return has already been reviewed")
	}

	if !approve {
		return u.returnRepo.UpdateReturnStatus(ctx, returnID, domain.ReturnStatusRejected, adminNote)
	}

	order, err := u.orderRepo.GetByID(ctx, ret.OrderID)
	if err != nil {
		return err
	}
	var item *domain.OrderItem
	for i := range order.Items {
		if order.Items[i].ID == ret.OrderItemID {
			item = &order.Items[i]
			break
		}
	}
	if item == nil {
		return fmt.Errorf("order item for return no longer exists")
	}

	return u.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := u.returnRepo.UpdateReturnStatus(txCtx, returnID, domain.ReturnStatusApproved, adminNote); err != nil {
			return err
		}
		product, err := u.productRepo.GetProductByID(txCtx, item.ProductID)
		if err != nil {
			// Product deleted since the order; approve without restock.
			return nil
		}
		for _, s := range product.Sizes {
			if s.Label == item.Size {
				return u.productRepo.AdjustStock(txCtx, s.ID, item.Quantity)
			}
		}
		return nil
	})
}

// CompleteReturn marks an approved return as received back at the warehouse.
func (u *ReturnUsecase) CompleteReturn(ctx context.Context, returnID string) error {
	ret, err := u.returnRepo.GetReturnByID(ctx, returnID)
	if err != nil {
		return err
	}
	if ret.Status != domain.ReturnStatusApproved {
		return fmt.Errorf("only approved returns can be completed")
	}
	return u.returnRepo.UpdateReturnStatus(ctx, returnID, domain.ReturnStatusCompleted, nil)
}
