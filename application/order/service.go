/*
Package order orchestrates order placement and the order lifecycle.

Placement runs in three steps: ValidateStock reads the catalog, Assemble
prices the lines, and the Committer writes everything in one unit of work.
The validator's check is a fast path only; the committer re-checks under
row locks, so two racing requests can never both take the last units.

Every operation takes the caller's Principal explicitly. Events recorded by
the aggregate are saved by the unit of work (outbox table or in-process
bus); this package never publishes them itself.
*/
package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/SChris-dev/EcoShop-API/domain/catalog"
	"github.com/SChris-dev/EcoShop-API/domain/order"
	"github.com/SChris-dev/EcoShop-API/domain/shared"
	"github.com/SChris-dev/EcoShop-API/pkg/logger"
	"github.com/SChris-dev/EcoShop-API/pkg/metrics"

	"go.uber.org/zap"
)

// IdempotencyStore is satisfied by the stores in infrastructure/idempotency.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string) (existingOrderID int64, reserved bool, err error)
	Complete(ctx context.Context, key string, orderID int64) error
	Release(ctx context.Context, key string) error
}

// PlacementRecorder counts placement outcomes; *metrics.ServerMetrics satisfies it.
type PlacementRecorder interface {
	RecordPlacement(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) RecordPlacement(string) {}

// ApplicationService Order application service
type ApplicationService struct {
	products  catalog.Repository
	orders    order.Repository
	uow       shared.UnitOfWork
	committer *Committer
	idem      IdempotencyStore
	recorder  PlacementRecorder
}

func NewApplicationService(
	products catalog.Repository,
	inventory catalog.Inventory,
	orders order.Repository,
	uow shared.UnitOfWork,
) *ApplicationService {
	return &ApplicationService{
		products:  products,
		orders:    orders,
		uow:       uow,
		committer: NewCommitter(uow, inventory, orders),
		recorder:  nopRecorder{},
	}
}

// SetIdempotencyStore enables Idempotency-Key handling. Without a store the
// key is ignored.
func (s *ApplicationService) SetIdempotencyStore(store IdempotencyStore) {
	s.idem = store
}

func (s *ApplicationService) SetRecorder(r PlacementRecorder) {
	if r != nil {
		s.recorder = r
	}
}

// PlaceOrder validates, prices and commits an order for the caller.
func (s *ApplicationService) PlaceOrder(ctx context.Context, p shared.Principal, req PlaceOrderRequest, idempotencyKey string) (*PlaceOrderResult, error) {
	if p.UserID <= 0 {
		return nil, order.NewAccessDeniedError("Access denied. Authentication required.")
	}
	if idempotencyKey == "" || s.idem == nil {
		o, err := s.place(ctx, p, req)
		if err != nil {
			return nil, err
		}
		return &PlaceOrderResult{Order: ToOrderResponse(o)}, nil
	}

	key := fmt.Sprintf("order:create:%d:%s", p.UserID, idempotencyKey)
	existingID, reserved, err := s.idem.Reserve(ctx, key)
	if err != nil {
		return nil, asStorageFailure(err)
	}
	if !reserved {
		existing, err := s.orders.FindByID(ctx, existingID)
		switch {
		case err == nil:
			s.recorder.RecordPlacement(metrics.OutcomeReplayed)
			return &PlaceOrderResult{Order: ToOrderResponse(existing), Replayed: true}, nil
		case !errors.Is(err, order.ErrOrderNotFound):
			return nil, asStorageFailure(err)
		}
		// The replayed order was deleted by an admin; place a new one under the same key.
		if err := s.idem.Release(ctx, key); err != nil {
			return nil, asStorageFailure(err)
		}
		_, reserved, err := s.idem.Reserve(ctx, key)
		if err != nil {
			return nil, asStorageFailure(err)
		}
		if !reserved {
			return nil, order.ErrPlacementInProgress
		}
	}

	o, err := s.place(ctx, p, req)
	if err != nil {
		if relErr := s.idem.Release(ctx, key); relErr != nil {
			logger.FromContext(ctx).Warn("Failed to release idempotency key", zap.String("key", key), zap.Error(relErr))
		}
		return nil, err
	}
	if err := s.idem.Complete(ctx, key, o.ID()); err != nil {
		logger.FromContext(ctx).Warn("Failed to complete idempotency key",
			zap.String("key", key), zap.Int64("order_id", o.ID()), zap.Error(err))
	}
	return &PlaceOrderResult{Order: ToOrderResponse(o)}, nil
}

func (s *ApplicationService) place(ctx context.Context, p shared.Principal, req PlaceOrderRequest) (*order.Order, error) {
	validated, err := order.ValidateStock(ctx, s.products, toLineRequests(req.Items))
	if err != nil {
		err = asStorageFailure(err)
		s.recorder.RecordPlacement(outcomeOf(err))
		return nil, err
	}

	draft := order.Assemble(p.UserID, validated)
	o, err := s.committer.Commit(ctx, draft)
	if err != nil {
		s.recorder.RecordPlacement(outcomeOf(err))
		return nil, err
	}

	s.recorder.RecordPlacement(metrics.OutcomeCreated)
	logger.FromContext(ctx).Info("Order placed",
		zap.Int64("order_id", o.ID()),
		zap.Int64("user_id", o.UserID()),
		zap.String("total_amount", o.TotalAmount().String()),
		zap.Int("items", o.ItemsCount()),
	)
	return o, nil
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, order.ErrInsufficientStock):
		return metrics.OutcomeInsufficientStock
	case errors.Is(err, order.ErrStockChanged):
		return metrics.OutcomeStockChanged
	case errors.Is(err, order.ErrProductNotFound),
		errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, order.ErrEmptyOrderItems):
		return metrics.OutcomeValidationFailed
	}
	return metrics.OutcomeFailed
}

// ListOrders returns every order to an admin and only the caller's own
// orders to anyone else, newest first.
func (s *ApplicationService) ListOrders(ctx context.Context, p shared.Principal, filter ListOrdersFilter) ([]*OrderResponse, error) {
	var spec shared.Specification[*order.Order]
	switch {
	case !p.IsAdmin:
		spec = order.NewByUserIDSpecification(p.UserID)
	case filter.UserID > 0:
		spec = order.NewByUserIDSpecification(filter.UserID)
	}

	if filter.Status != "" {
		status, err := order.ParseStatus(filter.Status)
		if err != nil {
			return nil, err
		}
		spec = and(spec, order.NewByStatusSpecification(status))
	}
	if !filter.From.IsZero() || !filter.To.IsZero() {
		to := filter.To
		if !to.IsZero() {
			// inclusive of the whole end day
			to = to.AddDate(0, 0, 1).Add(-1)
		}
		spec = and(spec, order.NewByDateRangeSpecification(filter.From, to))
	}

	orders, err := s.orders.FindAll(ctx, spec)
	if err != nil {
		return nil, asStorageFailure(err)
	}
	return toOrderResponses(orders), nil
}

func and(left, right shared.Specification[*order.Order]) shared.Specification[*order.Order] {
	if left == nil {
		return right
	}
	return shared.And(left, right)
}

// GetOrder is allowed for the owner and for admins.
func (s *ApplicationService) GetOrder(ctx context.Context, p shared.Principal, orderID int64) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, asStorageFailure(err)
	}
	if !p.CanAccess(o.UserID()) {
		return nil, order.NewAccessDeniedError("Access denied. You can only view your own orders.")
	}
	return ToOrderResponse(o), nil
}

// UpdateOrderStatus moves an order along the status graph. Admin only.
// Setting the current status again succeeds without writing.
func (s *ApplicationService) UpdateOrderStatus(ctx context.Context, p shared.Principal, orderID int64, req UpdateOrderStatusRequest) (*OrderResponse, error) {
	if !p.IsAdmin {
		return nil, order.NewAccessDeniedError("Access denied. Only admins can update orders.")
	}
	target, err := order.ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}

	var updated *order.Order
	err = s.uow.Execute(ctx, func(ctx context.Context) error {
		o, err := s.orders.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		changed, err := o.TransitionTo(target)
		if err != nil {
			return err
		}
		if changed {
			if err := s.orders.UpdateStatus(ctx, o); err != nil {
				return err
			}
			s.uow.RegisterDirty(ctx, o)
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, asStorageFailure(err)
	}
	return ToOrderResponse(updated), nil
}

// DeleteOrder removes the order and its items. Admin only; stock is not restored.
func (s *ApplicationService) DeleteOrder(ctx context.Context, p shared.Principal, orderID int64) error {
	if !p.IsAdmin {
		return order.NewAccessDeniedError("Access denied. Only admins can delete orders.")
	}

	err := s.uow.Execute(ctx, func(ctx context.Context) error {
		o, err := s.orders.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := s.orders.Delete(ctx, orderID); err != nil {
			return err
		}
		o.MarkDeleted()
		s.uow.RegisterRemoved(ctx, o)
		return nil
	})
	return asStorageFailure(err)
}
