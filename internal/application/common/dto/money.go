// Package dto holds the response shapes shared by every application package.
package dto

import "github.com/kesher-io/kesher/internal/domain/shared/money"

// Money is an amount in minor units (agorot) plus a display string in major units.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Display  string `json:"display"`
}

func FromMoney(m money.Money) Money {
	return Money{
		Amount:   m.Amount(),
		Currency: m.Currency(),
		Display:  m.Decimal().StringFixed(2),
	}
}

// ListResult is a page of items plus the total row count.
type ListResult[T any] struct {
	Items    []T
	Total    int64
	Page     int
	PageSize int
}
