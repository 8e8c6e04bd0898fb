/*
Package order Order subdomain

Order is the aggregate root. Its items are created with it, in the same
transaction, and never change afterwards: each item carries the product
name and unit price observed when the order was placed. Only the status
moves after creation, along the graph in status.go.

Identity is assigned by storage. The repository calls AssignIdentity once
the header row exists; that is also the point where order.placed is
recorded, since an event needs the aggregate id.
*/
package order

import (
	"fmt"
	"strconv"
	"time"

	"github.com/SChris-dev/EcoShop-API/domain/shared"
)

// Order Order aggregate root
type Order struct {
	id          int64
	userID      int64
	items       []Item
	totalAmount shared.Money
	status      Status
	version     int // optimistic lock, bumped by the repository after a successful update
	createdAt   time.Time
	updatedAt   time.Time

	events []shared.DomainEvent
	isNew  bool
}

// Item Order line, an entity inside the aggregate
type Item struct {
	id          int64
	productID   int64
	productName string
	quantity    int
	price       shared.Money
}

// NewOrder builds a pending order from an assembled draft.
func NewOrder(draft Draft) (*Order, error) {
	if draft.UserID <= 0 {
		return nil, fmt.Errorf("order owner is required")
	}
	if len(draft.Lines) == 0 {
		return nil, NewEmptyOrderItemsError()
	}

	items := make([]Item, len(draft.Lines))
	for i, line := range draft.Lines {
		if line.Quantity < 1 {
			return nil, NewInvalidQuantityError(i)
		}
		items[i] = Item{
			productID:   line.ProductID,
			productName: line.ProductName,
			quantity:    line.Quantity,
			price:       line.Price,
		}
	}

	total := sumItems(items)
	if !total.Equals(draft.TotalAmount) {
		return nil, fmt.Errorf("draft total %s does not match its lines (%s)", draft.TotalAmount, total)
	}

	now := time.Now()
	return &Order{
		userID:      draft.UserID,
		items:       items,
		totalAmount: total,
		status:      StatusPending,
		createdAt:   now,
		updatedAt:   now,
		isNew:       true,
	}, nil
}

func sumItems(items []Item) shared.Money {
	total := shared.Money{}
	for _, item := range items {
		total = total.Add(item.TotalPrice())
	}
	return total
}

// ReconstructionDTO is for repositories rebuilding an order from storage.
type ReconstructionDTO struct {
	ID          int64
	UserID      int64
	Items       []Item
	TotalAmount shared.Money
	Status      Status
	Version     int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func RebuildFromDTO(dto ReconstructionDTO) *Order {
	return &Order{
		id:          dto.ID,
		userID:      dto.UserID,
		items:       dto.Items,
		totalAmount: dto.TotalAmount,
		status:      dto.Status,
		version:     dto.Version,
		createdAt:   dto.CreatedAt,
		updatedAt:   dto.UpdatedAt,
	}
}

type ItemReconstructionDTO struct {
	ID          int64
	ProductID   int64
	ProductName string
	Quantity    int
	Price       shared.Money
}

func RebuildItemFromDTO(dto ItemReconstructionDTO) Item {
	return Item{
		id:          dto.ID,
		productID:   dto.ProductID,
		productName: dto.ProductName,
		quantity:    dto.Quantity,
		price:       dto.Price,
	}
}

// AssignIdentity stores the generated ids and records order.placed.
// itemIDs must be in item order; a shorter slice leaves the remaining ids unset.
func (o *Order) AssignIdentity(id int64, itemIDs []int64) {
	o.id = id
	for i := range o.items {
		if i < len(itemIDs) {
			o.items[i].id = itemIDs[i]
		}
	}
	if o.isNew {
		o.events = append(o.events, NewOrderPlacedEvent(o.id, o.userID, o.totalAmount, len(o.items)))
		o.isNew = false
	}
}

// TransitionTo moves the order along the status graph. Setting the current
// status again reports changed=false and records nothing.
func (o *Order) TransitionTo(target Status) (changed bool, err error) {
	if !target.IsValid() {
		return false, NewInvalidStatusError(string(target))
	}
	if target == o.status {
		return false, nil
	}
	if !o.status.CanTransitionTo(target) {
		return false, NewInvalidOrderStateError(o.status, target)
	}

	from := o.status
	o.status = target
	o.updatedAt = time.Now()
	o.events = append(o.events, NewOrderStatusChangedEvent(o.id, from, target))
	return true, nil
}

// MarkDeleted records order.deleted. Stock is not given back.
func (o *Order) MarkDeleted() {
	o.events = append(o.events, NewOrderDeletedEvent(o.id))
}

// IncrementVersionForSave is called by the repository after a successful update.
func (o *Order) IncrementVersionForSave() {
	o.version++
}

func (o *Order) ID() int64     { return o.id }
func (o *Order) UserID() int64 { return o.userID }

// Items returns a copy; items are immutable after creation.
func (o *Order) Items() []Item {
	items := make([]Item, len(o.items))
	copy(items, o.items)
	return items
}
func (o *Order) ItemsCount() int           { return len(o.items) }
func (o *Order) TotalAmount() shared.Money { return o.totalAmount }
func (o *Order) Status() Status            { return o.status }
func (o *Order) Version() int              { return o.version }
func (o *Order) CreatedAt() time.Time      { return o.createdAt }
func (o *Order) UpdatedAt() time.Time      { return o.updatedAt }
func (o *Order) IsNew() bool               { return o.isNew }
func (o *Order) AggregateID() string       { return strconv.FormatInt(o.id, 10) }

// SetTimestamps lets storage overwrite the clock values it actually persisted.
func (o *Order) SetTimestamps(createdAt, updatedAt time.Time) {
	o.createdAt, o.updatedAt = createdAt, updatedAt
}

// PullEvents returns and clears the recorded events.
func (o *Order) PullEvents() []shared.DomainEvent {
	events := o.events
	o.events = nil
	return events
}

func (item Item) ID() int64                { return item.id }
func (item Item) ProductID() int64         { return item.productID }
func (item Item) ProductName() string      { return item.productName }
func (item Item) Quantity() int            { return item.quantity }
func (item Item) Price() shared.Money      { return item.price }
func (item Item) TotalPrice() shared.Money { return item.price.Multiply(item.quantity) }

var _ shared.AggregateRoot = (*Order)(nil)
