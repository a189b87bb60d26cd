package repository

import "time"

// OrderListFilter filters order list queries.
type OrderListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Status      string
	OrderNo     string
	OrderType   string
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// ProfileListFilter filters customer profile list queries.
type ProfileListFilter struct {
	Page     int
	PageSize int
	Keyword  string
}
