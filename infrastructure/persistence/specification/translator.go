// Package specification turns order specifications into SQL conditions for
// the orders table.
package specification

import (
	"fmt"

	"github.com/SChris-dev/EcoShop-API/domain/order"
	"github.com/SChris-dev/EcoShop-API/domain/shared"

	"gorm.io/gorm"
)

// Condition is a parameterised WHERE fragment.
type Condition struct {
	SQL  string
	Args []any
}

// OrderTranslator implements translation for order specifications.
type OrderTranslator struct{}

func NewOrderTranslator() *OrderTranslator {
	return &OrderTranslator{}
}

// Translate returns a GORM scope for spec. A nil spec yields a no-op scope;
// an unsupported specification type is an error.
func (t *OrderTranslator) Translate(spec shared.Specification[*order.Order]) (func(*gorm.DB) *gorm.DB, error) {
	if spec == nil {
		return func(db *gorm.DB) *gorm.DB { return db }, nil
	}
	cond, err := t.Condition(spec)
	if err != nil {
		return nil, err
	}
	return func(db *gorm.DB) *gorm.DB {
		if cond.SQL == "" {
			return db
		}
		return db.Where(cond.SQL, cond.Args...)
	}, nil
}

// Condition builds the WHERE fragment for spec, recursing into composites.
func (t *OrderTranslator) Condition(spec shared.Specification[*order.Order]) (Condition, error) {
	switch s := spec.(type) {
	case shared.AndSpecification[*order.Order]:
		return t.binary(s.Left, s.Right, "AND")
	case shared.OrSpecification[*order.Order]:
		return t.binary(s.Left, s.Right, "OR")
	case shared.NotSpecification[*order.Order]:
		inner, err := t.Condition(s.Spec)
		if err != nil {
			return Condition{}, err
		}
		if inner.SQL == "" {
			// NOT(match all) matches nothing.
			return Condition{SQL: "1 = 0"}, nil
		}
		return Condition{SQL: "NOT (" + inner.SQL + ")", Args: inner.Args}, nil

	case order.ByUserIDSpecification:
		return Condition{SQL: "user_id = ?", Args: []any{s.UserID}}, nil
	case order.ByStatusSpecification:
		return Condition{SQL: "status = ?", Args: []any{string(s.Status)}}, nil
	case order.ByDateRangeSpecification:
		switch {
		case !s.Start.IsZero() && !s.End.IsZero():
			return Condition{SQL: "created_at >= ? AND created_at <= ?", Args: []any{s.Start, s.End}}, nil
		case !s.Start.IsZero():
			return Condition{SQL: "created_at >= ?", Args: []any{s.Start}}, nil
		case !s.End.IsZero():
			return Condition{SQL: "created_at <= ?", Args: []any{s.End}}, nil
		}
		return Condition{}, nil
	}

	return Condition{}, fmt.Errorf("unsupported order specification %T", spec)
}

func (t *OrderTranslator) binary(left, right shared.Specification[*order.Order], op string) (Condition, error) {
	l, err := t.Condition(left)
	if err != nil {
		return Condition{}, err
	}
	r, err := t.Condition(right)
	if err != nil {
		return Condition{}, err
	}

	switch {
	case l.SQL == "" && r.SQL == "":
		return Condition{}, nil
	case l.SQL == "":
		if op == "OR" {
			return Condition{}, nil
		}
		return r, nil
	case r.SQL == "":
		if op == "OR" {
			return Condition{}, nil
		}
		return l, nil
	}

	args := make([]any, 0, len(l.Args)+len(r.Args))
	args = append(args, l.Args...)
	args = append(args, r.Args...)
	return Condition{SQL: "(" + l.SQL + ") " + op + " (" + r.SQL + ")", Args: args}, nil
}
