package boq

import (
	"strings"
	"unicode/utf8"
)

// Field names a logical BOQ column.
type Field string

const (
	FieldDescription    Field = "description"
	FieldQuantity       Field = "quantity"
	FieldUnit           Field = "unit"
	FieldUnitPrice      Field = "unitPrice"
	FieldTotal          Field = "total"
	FieldItemCode       Field = "itemCode"
	FieldCategory       Field = "category"
	FieldSpecifications Field = "specifications"
)

// Confidence records how the required columns of a sheet were resolved.
type Confidence string

const (
	HeaderMatched   Confidence = "header-matched"
	ContentInferred Confidence = "content-inferred"
)

// ColumnMap maps logical fields to zero-based column indices. Fields that
// were not located are absent from the map.
type ColumnMap map[Field]int

// Index returns the column of f, or -1 when f was not located.
func (m ColumnMap) Index(f Field) int {
	if i, ok := m[f]; ok {
		return i
	}
	return -1
}

func (m ColumnMap) has(f Field) bool {
	_, ok := m[f]
	return ok
}

func (m ColumnMap) taken(col int) bool {
	for _, c := range m {
		if c == col {
			return true
		}
	}
	return false
}

// Usable reports whether description and quantity both resolved.
func (m ColumnMap) Usable() bool {
	return m.has(FieldDescription) && m.has(FieldQuantity)
}

type keyword struct {
	text string
	// whole requires the keyword to equal a token of the header, so short
	// words like "no" do not match inside "unit no." descriptions.
	whole bool
}

// headerKeywords is evaluated in order per header cell: the first field
// whose keywords match claims the cell. Total and price come before
// quantity and unit so "Unit Price" and "Total Amount" are not misread.
var headerKeywords = []struct {
	field    Field
	keywords []keyword
}{
	{FieldTotal, []keyword{
		{"total", false}, {"amount", false}, {"extended", false}, {"value", false},
		{"الاجمالي", false}, {"اجمالي", false}, {"المبلغ", false}, {"القيمه", false}, {"المجموع", false},
	}},
	{FieldUnitPrice, []keyword{
		{"unit price", false}, {"unit rate", false}, {"rate", false}, {"price", false}, {"u.p", false}, {"cost", false},
		{"سعر الوحده", false}, {"سعر", false}, {"الفئه", false},
	}},
	{FieldQuantity, []keyword{
		{"qty", false}, {"quantity", false}, {"quant", false}, {"q'ty", false},
		{"الكميه", false}, {"كميه", false}, {"العدد", false},
	}},
	{FieldUnit, []keyword{
		{"unit", false}, {"uom", false}, {"u/m", false}, {"units", true},
		{"الوحده", false}, {"وحده", false},
	}},
	{FieldSpecifications, []keyword{
		{"specification", false}, {"spec", false}, {"remarks", false}, {"notes", false},
		{"المواصفات", false}, {"مواصفات", false}, {"ملاحظات", false},
	}},
	{FieldDescription, []keyword{
		{"description", false}, {"desc", false}, {"activity", false}, {"particulars", false},
		{"scope", false}, {"work", false}, {"item name", false},
		{"البيان", false}, {"بيان", false}, {"الوصف", false}, {"وصف", false}, {"البند", false}, {"الاعمال", false},
	}},
	{FieldItemCode, []keyword{
		{"item no", false}, {"item", true}, {"code", false}, {"ref", true}, {"s.no", false}, {"sr", true}, {"no", true}, {"#", true},
		{"رقم", false}, {"م", true}, {"الرمز", false}, {"كود", false},
	}},
	{FieldCategory, []keyword{
		{"category", false}, {"section", false}, {"trade", false}, {"division", false}, {"discipline", false},
		{"القسم", false}, {"التصنيف", false}, {"الباب", false},
	}},
}

func matchesKeyword(header string, toks []string, kw keyword) bool {
	if !kw.whole {
		return strings.Contains(header, kw.text)
	}
	if header == kw.text {
		return true
	}
	for _, t := range toks {
		if t == kw.text {
			return true
		}
	}
	return false
}

// headerField returns the first unclaimed field whose keywords match the
// header text.
func headerField(text string, claimed ColumnMap) (Field, bool) {
	h := foldText(text)
	if h == "" {
		return "", false
	}
	toks := tokens(h)
	for _, hk := range headerKeywords {
		for _, kw := range hk.keywords {
			if !matchesKeyword(h, toks, kw) {
				continue
			}
			if claimed.has(hk.field) {
				// a second "total" column must not fall through to quantity
				return "", false
			}
			return hk.field, true
		}
	}
	return "", false
}

// maxHeaderLen bounds the text of a header label. Longer cells are item
// descriptions that happen to contain a header word.
const maxHeaderLen = 40

// headerCandidate reports whether row can be a header row. Header rows hold
// labels only; a number anywhere marks a data row.
func headerCandidate(row []Cell) bool {
	for _, c := range row {
		if c.Kind == CellNumber {
			return false
		}
	}
	return true
}

// matchHeaderRow resolves fields from one row of header text, left to right.
func matchHeaderRow(row []Cell) ColumnMap {
	cm := ColumnMap{}
	for col, c := range row {
		if c.Kind != CellText || utf8.RuneCountInString(c.Text) > maxHeaderLen {
			continue
		}
		if f, ok := headerField(c.Text, cm); ok {
			cm[f] = col
		}
	}
	return cm
}

// Location is the output of LocateColumns.
type Location struct {
	Columns    ColumnMap
	Confidence Confidence
	// HeaderRow is the zero-based index of the header row within the
	// window, or -1 when no header row was recognized.
	HeaderRow int
}

// DataStart is the index of the first row after the header.
func (l Location) DataStart() int { return l.HeaderRow + 1 }

// LocateColumns infers the ColumnMap of a sheet from a window of its first
// rows. Header matching runs first; content-shape inference fills in
// whatever the header left unresolved. ok is false when description or
// quantity could not be resolved.
func LocateColumns(window [][]Cell) (Location, bool) {
	loc := Location{Columns: ColumnMap{}, HeaderRow: -1}

	best := 0
	for i, row := range window {
		if !headerCandidate(row) {
			continue
		}
		cm := matchHeaderRow(row)
		if cm.Usable() {
			loc.Columns, loc.HeaderRow = cm, i
			break
		}
		// Partial headers still anchor the data start when they match at
		// least two fields, one of them description or quantity.
		anchored := cm.has(FieldDescription) || cm.has(FieldQuantity)
		if anchored && len(cm) >= 2 && len(cm) > best {
			best = len(cm)
			loc.Columns, loc.HeaderRow = cm, i
		}
	}

	if loc.Columns.Usable() {
		loc.Confidence = HeaderMatched
		return loc, true
	}

	samples := window[loc.DataStart():]
	inferColumns(samples, loc.Columns)
	loc.Confidence = ContentInferred
	return loc, loc.Columns.Usable()
}

const (
	longTextMin  = 10
	shortTextMax = 8
)

type columnShape struct {
	nonBlank  int
	longText  int
	numeric   int
	positives map[float64]struct{}
	unitHits  int
	shortText int
	// serial is true while every value seen is the previous one plus one.
	serial bool
	last   float64
}

func profileColumns(samples [][]Cell) []columnShape {
	width := 0
	for _, r := range samples {
		if len(r) > width {
			width = len(r)
		}
	}
	shapes := make([]columnShape, width)
	for i := range shapes {
		shapes[i].positives = map[float64]struct{}{}
	}
	for _, r := range samples {
		for col, c := range r {
			s := &shapes[col]
			switch c.Kind {
			case CellBlank:
				continue
			case CellNumber:
				s.nonBlank++
				s.numeric++
				if s.numeric == 1 {
					s.serial = c.Num == float64(int64(c.Num))
				} else if c.Num != s.last+1 {
					s.serial = false
				}
				s.last = c.Num
				if c.Num > 0 {
					s.positives[c.Num] = struct{}{}
				}
			case CellText:
				s.nonBlank++
				s.serial = false
				n := utf8.RuneCountInString(c.Text)
				if n > longTextMin {
					s.longText++
				}
				if n <= shortTextMax {
					s.shortText++
					if isUnitToken(c.Text) {
						s.unitHits++
					}
				}
			}
		}
	}
	return shapes
}

// inferColumns fills unresolved fields of cm from the shape of the sample
// rows. Columns already claimed are never reassigned.
func inferColumns(samples [][]Cell, cm ColumnMap) {
	shapes := profileColumns(samples)

	if !cm.has(FieldDescription) {
		bestCol, bestLong := -1, 0
		for col, s := range shapes {
			if cm.taken(col) || s.longText == 0 || s.longText*2 < s.nonBlank {
				continue
			}
			if s.longText > bestLong {
				bestCol, bestLong = col, s.longText
			}
		}
		if bestCol >= 0 {
			cm[FieldDescription] = bestCol
		}
	}

	isNumeric := func(s columnShape) bool {
		return s.numeric > 0 && s.numeric*2 >= s.nonBlank
	}

	// A running 1, 2, 3 column left of the description is the item number.
	if d := cm.Index(FieldDescription); d > 0 && !cm.has(FieldItemCode) {
		for col := 0; col < d; col++ {
			if !cm.taken(col) && shapes[col].serial && shapes[col].numeric >= 2 && shapes[col].numeric == shapes[col].nonBlank {
				cm[FieldItemCode] = col
				break
			}
		}
	}

	if !cm.has(FieldQuantity) {
		for col, s := range shapes {
			if cm.taken(col) || !isNumeric(s) || len(s.positives) < 2 {
				continue
			}
			cm[FieldQuantity] = col
			break
		}
	}

	// Price and total only make sense to the right of the quantity.
	if q := cm.Index(FieldQuantity); q >= 0 {
		next := q + 1
		if !cm.has(FieldUnitPrice) {
			for col := next; col < len(shapes); col++ {
				if cm.taken(col) || !isNumeric(shapes[col]) || len(shapes[col].positives) == 0 {
					continue
				}
				cm[FieldUnitPrice] = col
				next = col + 1
				break
			}
		} else {
			next = cm.Index(FieldUnitPrice) + 1
		}
		if !cm.has(FieldTotal) && cm.has(FieldUnitPrice) {
			for col := next; col < len(shapes); col++ {
				if cm.taken(col) || !isNumeric(shapes[col]) || len(shapes[col].positives) == 0 {
					continue
				}
				cm[FieldTotal] = col
				break
			}
		}
	}

	if !cm.has(FieldUnit) {
		for col, s := range shapes {
			if cm.taken(col) || s.unitHits == 0 || s.shortText*2 < s.nonBlank {
				continue
			}
			cm[FieldUnit] = col
			break
		}
	}
}
