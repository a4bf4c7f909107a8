package domain

import "slices"

// TradingLimits holds the numeric ceilings attached to an entitlement set.
type TradingLimits struct {
	MaxNotional    float64 // largest single-order notional, inclusive
	RFQRateLimit   float64 // RFQs per second
	OrderRateLimit float64 // orders per second
	MaxOpenOrders  int
}

// WithinNotionalLimit reports whether amount fits under MaxNotional. The
// boundary is inclusive: an amount exactly equal to the limit passes.
func (l TradingLimits) WithinNotionalLimit(amount float64) bool {
	return amount <= l.MaxNotional
}

// Entitlements restricts what a principal may trade and where. An empty
// restriction list means "no restriction": the absence of an allowlist, not
// an empty allowlist. Each dimension is evaluated independently.
type Entitlements struct {
	AssetClasses []string
	Instruments  []string
	Venues       []string
	Limits       TradingLimits
}

// DefaultEntitlements returns an unrestricted entitlement set with the
// platform-default trading limits.
func DefaultEntitlements() *Entitlements {
	return &Entitlements{
		Limits: TradingLimits{
			MaxNotional:    10_000_000,
			RFQRateLimit:   10,
			OrderRateLimit: 50,
			MaxOpenOrders:  200,
		},
	}
}

func allowed(restriction []string, candidate string) bool {
	return len(restriction) == 0 || slices.Contains(restriction, candidate)
}

// CanTradeAssetClass reports whether the asset class is permitted.
func (e *Entitlements) CanTradeAssetClass(assetClass string) bool {
	return allowed(e.AssetClasses, assetClass)
}

// CanTradeInstrument reports whether the instrument is permitted.
func (e *Entitlements) CanTradeInstrument(instrumentID string) bool {
	return allowed(e.Instruments, instrumentID)
}

// CanAccessVenue reports whether the venue is permitted.
func (e *Entitlements) CanAccessVenue(venueID string) bool {
	return allowed(e.Venues, venueID)
}

// WithinNotionalLimit reports whether amount fits under the entitlement's
// notional ceiling (inclusive).
func (e *Entitlements) WithinNotionalLimit(amount float64) bool {
	return e.Limits.WithinNotionalLimit(amount)
}
