package service

import (
	"strings"
	"time"

	"greenpark/internal/db"
	"greenpark/internal/entities"
	apperrors "greenpark/internal/errors"
	"greenpark/internal/utils"
)

type PriceInput struct {
	CategoryID     int64
	Start          time.Time
	End            time.Time
	Addons         []string
	VIPDiscountPct int
	Promo          *db.PromoCode
}

// PriceResolver computes charges from a catalog snapshot. It is pure: the
// same snapshot, input and instant always give the same quote.
type PriceResolver struct {
	loc *time.Location
}

func NewPriceResolver(loc *time.Location) *PriceResolver {
	return &PriceResolver{loc: loc}
}

func pricingError(format string, args ...interface{}) error {
	return apperrors.New(apperrors.KindPricingConfiguration, format, args...)
}

func promoError(format string, args ...interface{}) error {
	return apperrors.New(apperrors.KindPromoCode, format, args...)
}

// percentOf returns pct percent of amount, rounded half up.
func percentOf(amount int64, pct int64) int64 {
	return (amount*pct + 50) / 100
}

func (r *PriceResolver) Compute(snap *Snapshot, in PriceInput, now time.Time) (*entities.PriceQuote, error) {
	if !in.Start.Before(in.End) {
		return nil, apperrors.Validation("check-out must be after check-in")
	}
	category, ok := snap.Category(in.CategoryID)
	if !ok {
		return nil, apperrors.NotFound("category %d not found", in.CategoryID)
	}
	if category.BasePricePerDay < 0 {
		return nil, pricingError("category %d has negative base price %d", category.ID, category.BasePricePerDay)
	}

	quote := &entities.PriceQuote{
		CategoryID:     category.ID,
		CheckIn:        in.Start,
		CheckOut:       in.End,
		CatalogVersion: snap.Version,
	}

	dates := utils.BillingDates(in.Start, in.End, category.DayLength(), r.loc)
	quote.Days = len(dates)
	for _, date := range dates {
		charge, err := dayCharge(snap, category, date)
		if err != nil {
			return nil, err
		}
		quote.DayCharges = append(quote.DayCharges, charge)
		quote.BaseSubtotal += charge.Price
	}

	for _, code := range dedupe(in.Addons) {
		addon, ok := snap.Addons[code]
		if !ok {
			return nil, apperrors.Validation("unknown add-on %q", code)
		}
		if addon.Price < 0 {
			return nil, pricingError("add-on %q has negative price %d", addon.Code, addon.Price)
		}
		qty := 1
		if addon.PerDay {
			qty = quote.Days
		}
		amount := addon.Price * int64(qty)
		quote.AddonCharges = append(quote.AddonCharges, entities.AddonCharge{
			Code:     addon.Code,
			Name:     addon.Name,
			Unit:     addon.Price,
			Quantity: qty,
			Amount:   amount,
		})
		quote.AddonsTotal += amount
	}
	quote.Subtotal = quote.BaseSubtotal + quote.AddonsTotal

	if in.VIPDiscountPct < 0 || in.VIPDiscountPct > 100 {
		return nil, pricingError("vip discount %d%% out of range", in.VIPDiscountPct)
	}
	quote.VIPDiscountPct = in.VIPDiscountPct
	quote.VIPDiscount = percentOf(quote.Subtotal, int64(in.VIPDiscountPct))
	afterVIP := quote.Subtotal - quote.VIPDiscount

	if in.Promo != nil {
		if err := ValidatePromo(in.Promo, category.ID, now); err != nil {
			return nil, err
		}
		discount, err := promoDiscount(in.Promo, afterVIP)
		if err != nil {
			return nil, err
		}
		quote.PromoCode = in.Promo.Code
		quote.PromoDiscount = discount
	}

	quote.Total = afterVIP - quote.PromoDiscount
	if quote.Total < 0 {
		return nil, pricingError("negative total %d for category %d (subtotal %d, vip %d, promo %d)",
			quote.Total, category.ID, quote.Subtotal, quote.VIPDiscount, quote.PromoDiscount)
	}
	return quote, nil
}

func dayCharge(snap *Snapshot, category db.ParkingCategory, date time.Time) (entities.DayCharge, error) {
	charge := entities.DayCharge{Date: utils.FormatDate(date), Price: category.BasePricePerDay, Source: entities.PriceSourceBase}
	if o, ok := snap.OverrideFor(category.ID, date); ok {
		charge.Price = o.Price
		charge.Source = entities.PriceSourceSpecial
		charge.OverrideID = o.ID
		charge.Reason = o.Reason
	}
	if charge.Price < 0 {
		return charge, pricingError("negative day price %d for category %d on %s", charge.Price, category.ID, charge.Date)
	}
	return charge, nil
}

// ValidatePromo reports why promo cannot be used for categoryID at now.
func ValidatePromo(promo *db.PromoCode, categoryID int64, now time.Time) error {
	switch {
	case !promo.Active:
		return promoError("promo code %s is not active", promo.Code)
	case promo.ValidFrom.Valid && now.Before(promo.ValidFrom.Time):
		return promoError("promo code %s is not valid yet", promo.Code)
	case promo.ValidTo.Valid && now.After(promo.ValidTo.Time):
		return promoError("promo code %s has expired", promo.Code)
	case promo.MaxUsage > 0 && promo.UsedCount >= promo.MaxUsage:
		return promoError("promo code %s has reached its usage limit", promo.Code)
	case !promo.AppliesTo(categoryID):
		return promoError("promo code %s does not apply to this category", promo.Code)
	}
	return nil
}

func promoDiscount(promo *db.PromoCode, amount int64) (int64, error) {
	switch promo.DiscountType {
	case db.DiscountPercentage:
		if promo.DiscountValue < 0 || promo.DiscountValue > 100 {
			return 0, pricingError("promo code %s has percentage %d out of range", promo.Code, promo.DiscountValue)
		}
		return percentOf(amount, promo.DiscountValue), nil
	case db.DiscountFixed:
		if promo.DiscountValue < 0 {
			return 0, pricingError("promo code %s has negative value %d", promo.Code, promo.DiscountValue)
		}
		return promo.DiscountValue, nil
	default:
		return 0, pricingError("promo code %s has unknown discount type %q", promo.Code, promo.DiscountType)
	}
}

func dedupe(codes []string) []string {
	seen := make(map[string]bool, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
