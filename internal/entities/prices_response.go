package entities

type SpecialPriceInfo struct {
	ID        int64  `json:"id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Price     int64  `json:"price"`
	Reason    string `json:"reason,omitempty"`
}

// PriceResponse is the public price list entry of one category.
type PriceResponse struct {
	CategoryID      int64              `json:"category_id"`
	Category        string             `json:"category"`
	BasePricePerDay int64              `json:"base_price_per_day"`
	DayLengthMinute int                `json:"day_length_minutes"`
	SpecialPrices   []SpecialPriceInfo `json:"special_prices,omitempty"`
}
