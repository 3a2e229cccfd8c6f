package invoice

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/apexrecon/internal/apperrors"
	"github.com/MrJamesThe3rd/apexrecon/internal/money"
)

// Item is an immutable invoice line.
type Item struct {
	id          uuid.UUID
	description string
	quantity    int64
	unitPrice   decimal.Decimal
}

type ItemParams struct {
	Description string
	Quantity    int64
	UnitPrice   decimal.Decimal
}

func NewItem(id uuid.UUID, p ItemParams) (*Item, error) {
	if id == uuid.Nil {
		return nil, &apperrors.InvariantError{Entity: "invoice item", Message: "missing id"}
	}

	if strings.TrimSpace(p.Description) == "" {
		return nil, apperrors.Required("description")
	}

	if p.Quantity <= 0 {
		return nil, &apperrors.ValidationError{Field: "quantity", Message: "must be greater than zero"}
	}

	if err := money.RequireNonNegative("unit_price", p.UnitPrice); err != nil {
		return nil, err
	}

	return &Item{
		id:          id,
		description: strings.TrimSpace(p.Description),
		quantity:    p.Quantity,
		unitPrice:   p.UnitPrice,
	}, nil
}

func (i *Item) ID() uuid.UUID              { return i.id }
func (i *Item) Description() string        { return i.description }
func (i *Item) Quantity() int64            { return i.quantity }
func (i *Item) UnitPrice() decimal.Decimal { return i.unitPrice }

// Total is quantity × unit price.
func (i *Item) Total() decimal.Decimal {
	return i.unitPrice.Mul(decimal.NewFromInt(i.quantity))
}
