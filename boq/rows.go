package boq

// RejectReason explains why a row produced no line item.
type RejectReason string

const (
	RejectEmpty               RejectReason = "empty"
	RejectMissingDescription  RejectReason = "missing-description"
	RejectNonPositiveQuantity RejectReason = "non-positive-quantity"
	// RejectNumericDescription marks a number in the description column,
	// typically a subtotal or a row shifted out of alignment.
	RejectNumericDescription RejectReason = "numeric-description"
)

func cellAt(row []Cell, col int) Cell {
	if col < 0 || col >= len(row) {
		return Cell{}
	}
	return row[col]
}

// ExtractRow turns one normalized row into a candidate line item using the
// sheet's column map. The returned item has no ID, work type or estimate
// yet. rowIndex is the 1-based row number in the source sheet.
func ExtractRow(row []Cell, cm ColumnMap, sheet string, rowIndex int) (LineItem, RejectReason, bool) {
	if rowIsBlank(row) {
		return LineItem{}, RejectEmpty, false
	}

	desc := cellAt(row, cm.Index(FieldDescription))
	if desc.IsBlank() {
		return LineItem{}, RejectMissingDescription, false
	}
	if desc.Kind == CellNumber {
		return LineItem{}, RejectNumericDescription, false
	}

	qty := cellAt(row, cm.Index(FieldQuantity)).Float()
	if qty <= 0 {
		return LineItem{}, RejectNonPositiveQuantity, false
	}

	unitPrice := cellAt(row, cm.Index(FieldUnitPrice)).Float()
	if unitPrice < 0 {
		unitPrice = 0
	}

	total := cellAt(row, cm.Index(FieldTotal)).Float()
	if total <= 0 {
		total = qty * unitPrice
	}

	specs := cellAt(row, cm.Index(FieldSpecifications)).String()

	return LineItem{
		Sheet:              sheet,
		RowIndex:           rowIndex,
		ItemCode:           cellAt(row, cm.Index(FieldItemCode)).String(),
		Category:           cellAt(row, cm.Index(FieldCategory)).String(),
		Description:        truncateRunes(desc.String(), MaxDescriptionLen),
		Specifications:     truncateRunes(specs, MaxSpecificationsLen),
		Unit:               NormalizeUnit(cellAt(row, cm.Index(FieldUnit)).String()),
		Quantity:           qty,
		UnitPrice:          unitPrice,
		Total:              total,
		WorkType:           Unclassified,
		fullDescription:    desc.String(),
		fullSpecifications: specs,
	}, "", true
}
