package entity

// ReceiptLine is one aggregated row on a printed bill.
type ReceiptLine struct {
	Name      string  `json:"name"`
	Addons    string  `json:"addons,omitempty"`
	Quantity  int     `json:"quantity"`
	Paid      int     `json:"paid_quantity"`
	UnitPrice float64 `json:"unit_price"`
	Total     float64 `json:"total"`
}

// Receipt is a value object composed from a bill at print time; it is not
// persisted.
type Receipt struct {
	StoreName string        `json:"store_name"`
	Reference string        `json:"reference"`
	Table     string        `json:"table,omitempty"`
	Date      string        `json:"date"`
	Status    string        `json:"status"`
	Lines     []ReceiptLine `json:"lines"`
	Sessions  []ReceiptLine `json:"sessions,omitempty"`
	Discount  float64       `json:"discount"`
	Total     float64       `json:"total"`
	Paid      float64       `json:"paid"`
	Remaining float64       `json:"remaining"`
}
