package boq

// Display bounds for long-text fields. Classification always reads the
// untruncated text.
const (
	MaxDescriptionLen    = 500
	MaxSpecificationsLen = 2000
)

// LineItem is one extracted, classified and estimated unit of work.
type LineItem struct {
	ID       int    `json:"id"`
	Sheet    string `json:"sheetName"`
	RowIndex int    `json:"rowIndex"`

	ItemCode       string `json:"itemCode,omitempty"`
	Category       string `json:"category,omitempty"`
	Description    string `json:"description"`
	Specifications string `json:"specifications,omitempty"`
	Language       string `json:"language,omitempty"`

	Unit      string  `json:"unit"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Total     float64 `json:"total"`

	WorkType WorkType `json:"workType"`
	// ProductivityRate and EstimatedDurationDays are nil when no rate
	// applies to the item's (work type, unit) pair.
	ProductivityRate      *float64 `json:"productivityRate"`
	EstimatedDurationDays *int     `json:"estimatedDurationDays"`

	fullDescription    string
	fullSpecifications string
}

// FullDescription returns the untruncated source description.
func (it LineItem) FullDescription() string {
	if it.fullDescription != "" {
		return it.fullDescription
	}
	return it.Description
}

// FullSpecifications returns the untruncated source specifications.
func (it LineItem) FullSpecifications() string {
	if it.fullSpecifications != "" {
		return it.fullSpecifications
	}
	return it.Specifications
}

// Estimated reports whether the item carries a duration estimate.
func (it LineItem) Estimated() bool {
	return it.ProductivityRate != nil && it.EstimatedDurationDays != nil
}

// RestoreLineItem rebuilds an item read back from storage, where only the
// display-length description survives.
func RestoreLineItem(it LineItem, fullDescription, fullSpecifications string) LineItem {
	it.fullDescription = fullDescription
	it.fullSpecifications = fullSpecifications
	return it
}
