package common

import (
	"fmt"
	"strconv"
)

// CoinDecimals: account balances are reported in copper, 1 coin = 10^9 copper
const CoinDecimals = 9

// CopperToCoin converts a copper balance to a coin string without float precision loss
func CopperToCoin(copper uint64) string {
	return formatWithDecimals(copper, CoinDecimals)
}

// formatWithDecimals converts integer to decimal string by inserting decimal point
// Example: formatWithDecimals(24981836, 9) = "0.024981836"
func formatWithDecimals(value uint64, decimals int) string {
	s := fmt.Sprintf("%d", value)

	// Pad with leading zeros if needed
	for len(s) <= decimals {
		s = "0" + s
	}

	// Insert decimal point
	pos := len(s) - decimals
	return s[:pos] + "." + s[pos:]
}

// BalanceCopper extracts the "balance" field of an account document as copper.
// The peer reports it as a JSON number.
func BalanceCopper(account map[string]any) (uint64, bool) {
	switch v := account["balance"].(type) {
	case float64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case interface{ String() string }:
		n, err := strconv.ParseUint(v.String(), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}
