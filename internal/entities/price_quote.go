package entities

import "time"

type PriceSource string

const (
	PriceSourceBase    PriceSource = "base"
	PriceSourceSpecial PriceSource = "special_price"
)

// DayCharge is the price of one billing day and where it came from.
type DayCharge struct {
	Date       string      `json:"date"`
	Price      int64       `json:"price"`
	Source     PriceSource `json:"source"`
	OverrideID int64       `json:"override_id,omitempty"`
	Reason     string      `json:"reason,omitempty"`
}

type AddonCharge struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Unit     int64  `json:"unit_price"`
	Quantity int    `json:"quantity"`
	Amount   int64  `json:"amount"`
}

// PriceQuote is a computed price. All amounts are in cents.
type PriceQuote struct {
	CategoryID     int64         `json:"category_id"`
	CheckIn        time.Time     `json:"check_in"`
	CheckOut       time.Time     `json:"check_out"`
	Days           int           `json:"days"`
	DayCharges     []DayCharge   `json:"day_charges"`
	BaseSubtotal   int64         `json:"base_subtotal"`
	AddonCharges   []AddonCharge `json:"addon_charges,omitempty"`
	AddonsTotal    int64         `json:"addons_total"`
	Subtotal       int64         `json:"subtotal"`
	VIPDiscountPct int           `json:"vip_discount_pct,omitempty"`
	VIPDiscount    int64         `json:"vip_discount"`
	PromoCode      string        `json:"promo_code,omitempty"`
	PromoDiscount  int64         `json:"promo_discount"`
	Total          int64         `json:"total"`
	CatalogVersion uint64        `json:"catalog_version"`
}
