package domain

import (
	"fmt"
	"math"
	"strings"
)

const defaultCurrency = "IDR"

// Currencies without a minor unit. Amounts in these currencies are stored as
// whole units; every other currency is stored in hundredths.
var zeroDecimalCurrencies = map[string]bool{
	"IDR": true,
	"JPY": true,
	"KRW": true,
	"VND": true,
}

// MinorUnitExponent is the number of decimal digits of currency's minor unit.
func MinorUnitExponent(currency string) int {
	c := strings.ToUpper(strings.TrimSpace(currency))
	if c == "" {
		c = defaultCurrency
	}
	if zeroDecimalCurrencies[c] {
		return 0
	}
	return 2
}

// ToMinorUnits converts a provider amount in major units to minor units.
func ToMinorUnits(amount float64, currency string) int64 {
	scale := math.Pow10(MinorUnitExponent(currency))
	return int64(math.Round(amount * scale))
}

// FormatAmount renders a minor-unit amount for display, e.g. "IDR 150000" or
// "USD 12.50".
func FormatAmount(minor int64, currency string) string {
	c := strings.ToUpper(strings.TrimSpace(currency))
	if c == "" {
		c = defaultCurrency
	}
	if MinorUnitExponent(c) == 0 {
		return fmt.Sprintf("%s %d", c, minor)
	}

	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s %s%d.%02d", c, sign, minor/100, minor%100)
}
