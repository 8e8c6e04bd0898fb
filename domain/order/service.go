package order

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/SChris-dev/EcoShop-API/domain/catalog"
	"github.com/SChris-dev/EcoShop-API/domain/shared"
)

// LineRequest is one requested (product, quantity) pair.
type LineRequest struct {
	ProductID int64
	Quantity  int
}

// ProductFinder is the read side of the catalog the validator needs.
type ProductFinder interface {
	FindByID(ctx context.Context, id int64) (*catalog.Product, error)
}

// ValidatedLine is a request line plus the product snapshot it was checked against.
type ValidatedLine struct {
	Index    int
	Product  catalog.Product
	Quantity int
}

// ValidateStock resolves every line and checks availability without writing.
//
// Quantities for a product that appears on several lines are summed before
// the check, so {P:2},{P:2} against stock 3 fails. One ValidatedLine is
// still returned per request line, in request order.
func ValidateStock(ctx context.Context, finder ProductFinder, lines []LineRequest) ([]ValidatedLine, error) {
	if len(lines) == 0 {
		return nil, NewEmptyOrderItemsError()
	}

	products := make(map[int64]catalog.Product, len(lines))
	requested := make(map[int64]int, len(lines))
	firstIndex := make(map[int64]int, len(lines))
	var ids []int64

	validated := make([]ValidatedLine, len(lines))
	for i, line := range lines {
		if line.Quantity < 1 {
			return nil, NewInvalidQuantityError(i)
		}

		p, seen := products[line.ProductID]
		if !seen {
			found, err := finder.FindByID(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, catalog.ErrProductNotFound) {
					return nil, NewProductNotFoundError(i, line.ProductID)
				}
				return nil, fmt.Errorf("failed to load product %d: %w", line.ProductID, err)
			}
			p = *found
			products[line.ProductID] = p
			firstIndex[line.ProductID] = i
			ids = append(ids, line.ProductID)
		}

		requested[line.ProductID] += line.Quantity
		validated[i] = ValidatedLine{Index: i, Product: p, Quantity: line.Quantity}
	}

	for _, id := range ids {
		if !catalog.HasSufficientStock(products[id], requested[id]) {
			return nil, NewInsufficientStockError(firstIndex[id], products[id], requested[id])
		}
	}
	return validated, nil
}

// DraftLine is a priced order line, not yet persisted.
type DraftLine struct {
	ProductID   int64
	ProductName string
	Quantity    int
	Price       shared.Money
}

func (l DraftLine) Total() shared.Money { return l.Price.Multiply(l.Quantity) }

// Draft is an assembled order header plus lines.
type Draft struct {
	UserID      int64
	Status      Status
	Lines       []DraftLine
	TotalAmount shared.Money
}

// Assemble prices every line from the validated snapshot. Prices sent by a
// client never reach this point.
func Assemble(userID int64, lines []ValidatedLine) Draft {
	draft := Draft{
		UserID: userID,
		Status: StatusPending,
		Lines:  make([]DraftLine, len(lines)),
	}
	for i, line := range lines {
		dl := DraftLine{
			ProductID:   line.Product.ID,
			ProductName: line.Product.Name,
			Quantity:    line.Quantity,
			Price:       line.Product.Price,
		}
		draft.Lines[i] = dl
		draft.TotalAmount = draft.TotalAmount.Add(dl.Total())
	}
	return draft
}

// Quantities sums line quantities per product.
func (d Draft) Quantities() map[int64]int {
	q := make(map[int64]int, len(d.Lines))
	for _, l := range d.Lines {
		q[l.ProductID] += l.Quantity
	}
	return q
}

// ProductIDs returns the distinct product ids in ascending order, the order
// rows are locked in.
func (d Draft) ProductIDs() []int64 {
	q := d.Quantities()
	ids := make([]int64, 0, len(q))
	for id := range q {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ProductName returns the snapshot name for id, or "" if the draft has no such line.
func (d Draft) ProductName(id int64) string {
	for _, l := range d.Lines {
		if l.ProductID == id {
			return l.ProductName
		}
	}
	return ""
}
