// Package rates maps hardware tiers to rental cost constants.
//
// DESIGN: The table is fixed at compile time. Lookups for a tier that is
// not in the table return the fallback rate rather than failing, so an
// unrecognized accelerator degrades to a conservative estimate instead of
// breaking accounting.
package rates

import "strings"

// Tier is a named hardware class used as a key into the rate table.
type Tier string

// Known tiers. TierUnknown is the fallback for unrecognized hardware.
const (
	TierA10G     Tier = "A10G"
	TierA100_40G Tier = "A100-40GB"
	TierA100_80G Tier = "A100-80GB"
	TierH100     Tier = "H100"
	TierT4       Tier = "T4"
	TierL4       Tier = "L4"
	TierL40S     Tier = "L40S"
	TierUnknown  Tier = "UNKNOWN"
)

// hourlyRates maps tiers to USD per hour.
var hourlyRates = map[Tier]float64{
	TierA10G:     1.10,
	TierA100_40G: 3.00,
	TierA100_80G: 4.00,
	TierH100:     8.00,
	TierT4:       0.60,
	TierL4:       0.80,
	TierL40S:     2.50,
	TierUnknown:  1.00,
}

// RateFor returns the USD/hour rate for a tier.
// Unrecognized tiers get the fallback rate, never an error.
func RateFor(tier Tier) float64 {
	if rate, ok := hourlyRates[tier]; ok {
		return rate
	}
	return hourlyRates[TierUnknown]
}

// PerSecond converts a tier's hourly rate to USD/second.
func PerSecond(tier Tier) float64 {
	return RateFor(tier) / 3600
}

// Normalize maps a free-text device name (as reported by nvidia-smi) to a
// tier. Matching is by substring on the upper-cased name; more specific
// patterns are tested before their prefixes (L40S before L4, A10G before
// A100 disambiguation via the "A10G" token).
func Normalize(deviceName string) Tier {
	name := strings.ToUpper(deviceName)
	switch {
	case strings.Contains(name, "A10G"):
		return TierA10G
	case strings.Contains(name, "A100"):
		if strings.Contains(name, "80") {
			return TierA100_80G
		}
		return TierA100_40G
	case strings.Contains(name, "H100"):
		return TierH100
	case strings.Contains(name, "A10"):
		return TierA10G
	case strings.Contains(name, "T4"):
		return TierT4
	case strings.Contains(name, "L40"):
		// Covers both L40 and L40S SKUs.
		return TierL40S
	case strings.Contains(name, "L4"):
		return TierL4
	}
	return TierUnknown
}

// Valid reports whether tier is present in the rate table.
func Valid(tier Tier) bool {
	_, ok := hourlyRates[tier]
	return ok
}

// Tiers returns all known tiers, fallback included, in display order.
func Tiers() []Tier {
	return []Tier{
		TierT4, TierL4, TierA10G, TierL40S,
		TierA100_40G, TierA100_80G, TierH100, TierUnknown,
	}
}
