package boq

import "strings"

// DefaultUnit is assigned to line items whose source unit is absent.
const DefaultUnit = "no"

// unitAliases maps folded source spellings to canonical unit tokens.
var unitAliases = map[string]string{
	// area
	"m2": "m2", "m²": "m2", "sqm": "m2", "sq.m": "m2", "sq m": "m2", "sq.m.": "m2", "m.2": "m2",
	"م2": "m2", "م²": "m2", "متر مربع": "m2", "م.م": "m2",
	// volume
	"m3": "m3", "m³": "m3", "cum": "m3", "cu.m": "m3", "cu m": "m3", "cbm": "m3",
	"م3": "m3", "م³": "m3", "متر مكعب": "m3", "م.م3": "m3",
	// length
	"m": "m", "lm": "m", "rm": "m", "rmt": "m", "mtr": "m", "mtrs": "m", "l.m": "m", "r.m": "m", "ml": "m",
	"م": "m", "م.ط": "m", "مط": "m", "متر طولي": "m", "متر": "m",
	// count
	"no": "no", "nos": "no", "no.": "no", "nr": "no", "each": "no", "ea": "no", "pcs": "no", "pc": "no", "unit": "no",
	"عدد": "no", "قطعه": "no",
	// weight
	"kg": "kg", "kgs": "kg", "كجم": "kg", "كغ": "kg", "كيلوجرام": "kg",
	"t": "t", "ton": "t", "tons": "t", "tonne": "t", "mt": "t", "طن": "t",
	// liquid
	"l": "l", "ltr": "l", "litre": "l", "liter": "l", "لتر": "l",
	// lump sum and sets
	"ls": "ls", "l.s": "ls", "l.s.": "ls", "lumpsum": "ls", "lump sum": "ls", "lot": "ls",
	"مقطوعيه": "ls", "مقطوع": "ls",
	"set": "set", "sets": "set", "pair": "set", "طقم": "set",
	// time
	"day": "day", "days": "day", "يوم": "day",
	"month": "month", "months": "month", "شهر": "month",
}

// NormalizeUnit maps a source unit-of-measure string onto its canonical
// token. Unknown units are returned folded; absent units become DefaultUnit.
func NormalizeUnit(s string) string {
	u := foldText(s)
	if u == "" {
		return DefaultUnit
	}
	if canon, ok := unitAliases[u]; ok {
		return canon
	}
	if canon, ok := unitAliases[strings.TrimSuffix(u, ".")]; ok {
		return canon
	}
	return u
}

// isUnitToken reports whether s is a recognized unit spelling.
func isUnitToken(s string) bool {
	u := foldText(s)
	if _, ok := unitAliases[u]; ok {
		return true
	}
	_, ok := unitAliases[strings.TrimSuffix(u, ".")]
	return ok
}
