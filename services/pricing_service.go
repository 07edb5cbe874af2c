package services

import (
	"events-system/models"

	"github.com/shopspring/decimal"
)

// Package base rates per guest, in naira. Unknown package types fall
// back to the lowest tier.
var baseRates = map[string]int64{
	"palmwine":  15000,
	"cocktails": 25000,
	"flame":     35000,
	"full":      50000,
}

var (
	deliveryRate = decimal.NewFromInt(500)
	taxRate      = decimal.NewFromFloat(0.075)
	depositRate  = decimal.NewFromFloat(0.5)
)

const freeDeliveryKm = 10

// PricingService computes booking quotes. Pure: callers persist the
// result.
type PricingService struct{}

func NewPricingService() *PricingService {
	return &PricingService{}
}

// Quote prices a package for a guest count and delivery distance.
// Delivery is charged beyond 10km; VAT applies to the subtotal only.
func (s *PricingService) Quote(packageType string, guests, distanceKm int) models.Pricing {
	rate, ok := baseRates[packageType]
	if !ok {
		rate = baseRates["palmwine"]
	}

	subtotal := decimal.NewFromInt(rate).Mul(decimal.NewFromInt(int64(guests)))

	delivery := decimal.Zero
	if distanceKm > freeDeliveryKm {
		delivery = decimal.NewFromInt(int64(distanceKm)).Mul(deliveryRate)
	}

	tax := subtotal.Mul(taxRate)
	total := subtotal.Add(delivery).Add(tax)
	deposit := total.Mul(depositRate)

	return models.Pricing{
		Subtotal:        subtotal.InexactFloat64(),
		DeliveryCost:    delivery.InexactFloat64(),
		Tax:             tax.InexactFloat64(),
		Total:           total.InexactFloat64(),
		DepositRequired: deposit.InexactFloat64(),
	}
}
