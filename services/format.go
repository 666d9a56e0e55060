package services

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// FormatAmount renders a money amount with thousands separators and exactly
// two decimals, e.g. 40,800.00. Amounts carry no currency symbol because BOQ
// sources do not agree on one.
func FormatAmount(amount float64) string {
	return humanize.FormatFloat("#,###.##", amount)
}

// FormatQty renders a quantity with thousands separators and no trailing
// zeros.
func FormatQty(qty float64) string {
	return humanize.Commaf(qty)
}

// FormatDays renders a day count, e.g. "1 day" or "1,250 days".
func FormatDays(days int) string {
	if days == 1 {
		return "1 day"
	}
	return humanize.Comma(int64(days)) + " days"
}

// FormatShare renders a 0..1 fraction as a percentage with one decimal.
func FormatShare(share float64) string {
	return fmt.Sprintf("%.1f%%", share*100)
}
