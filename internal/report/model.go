package report

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	GroupByDay      = "day"
	GroupByLocation = "location"
)

type Filter struct {
	From    string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To      string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	GroupBy string `form:"group_by" binding:"omitempty,oneof=day location"`
}

// Period is a resolved [From, To) window in the studio time zone.
type Period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type BookingRow struct {
	Key       string `db:"key" json:"key"`
	Total     int    `db:"total" json:"total"`
	Booked    int    `db:"booked" json:"booked"`
	CheckedIn int    `db:"checked_in" json:"checked_in"`
	Cancelled int    `db:"cancelled" json:"cancelled"`
}

type CreditRow struct {
	Type  string `db:"type" json:"type"`
	Count int    `db:"count" json:"count"`
	Total int    `db:"total" json:"total"`
}

type SalesRow struct {
	PackageID   int             `db:"package_id" json:"package_id"`
	PackageName string          `db:"package_name" json:"package_name"`
	Sold        int             `db:"sold" json:"sold"`
	Revenue     decimal.Decimal `db:"revenue" json:"revenue" swaggertype:"string"`
}

type BookingReport struct {
	Period  Period       `json:"period"`
	GroupBy string       `json:"group_by"`
	Rows    []BookingRow `json:"rows"`
}

type CreditReport struct {
	Period Period      `json:"period"`
	Rows   []CreditRow `json:"rows"`
}

type SalesReport struct {
	Period  Period          `json:"period"`
	Rows    []SalesRow      `json:"rows"`
	Revenue decimal.Decimal `json:"revenue" swaggertype:"string"`
}
