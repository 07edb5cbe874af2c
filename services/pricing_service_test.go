package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuote_FlamePackage(t *testing.T) {
	service := NewPricingService()

	pricing := service.Quote("flame", 40, 5)

	assert.Equal(t, 1_400_000.0, pricing.Subtotal)
	assert.Equal(t, 0.0, pricing.DeliveryCost, "5km is within the free delivery radius")
	assert.Equal(t, 105_000.0, pricing.Tax)
	assert.Equal(t, 1_505_000.0, pricing.Total)
	assert.Equal(t, 752_500.0, pricing.DepositRequired)
}

func TestQuote_DeliveryBeyondFreeRadius(t *testing.T) {
	service := NewPricingService()

	pricing := service.Quote("flame", 40, 20)

	// The full distance is billed once the free radius is exceeded, and
	// VAT applies to the subtotal only.
	assert.Equal(t, 10_000.0, pricing.DeliveryCost)
	assert.Equal(t, 105_000.0, pricing.Tax)
	assert.Equal(t, 1_515_000.0, pricing.Total)
	assert.Equal(t, 757_500.0, pricing.DepositRequired)
}

func TestQuote_FreeDeliveryBoundary(t *testing.T) {
	service := NewPricingService()

	assert.Equal(t, 0.0, service.Quote("palmwine", 10, 10).DeliveryCost)
	assert.Equal(t, 5_500.0, service.Quote("palmwine", 10, 11).DeliveryCost)
}

func TestQuote_PackageRates(t *testing.T) {
	service := NewPricingService()

	tests := []struct {
		packageType  string
		wantSubtotal float64
	}{
		{"palmwine", 150_000},
		{"cocktails", 250_000},
		{"flame", 350_000},
		{"full", 500_000},
		{"unknown", 150_000}, // falls back to the lowest tier
		{"", 150_000},
	}

	for _, tt := range tests {
		t.Run(tt.packageType, func(t *testing.T) {
			assert.Equal(t, tt.wantSubtotal, service.Quote(tt.packageType, 10, 0).Subtotal)
		})
	}
}

func TestQuote_Deterministic(t *testing.T) {
	service := NewPricingService()

	first := service.Quote("cocktails", 75, 32)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, service.Quote("cocktails", 75, 32))
	}
}
