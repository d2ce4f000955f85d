// Package invoice holds the shared invoice data model: the single source of
// truth for table reconstruction, LLM field extraction, validation and API
// responses.
package invoice

// LineItem is one reconstructed invoice line.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
	// Confidence is a two-valued signal: 0.95 when quantity times unit
	// price matches the row total within one currency unit, 0.85 otherwise.
	Confidence float64 `json:"confidence"`
}

// Party describes the seller or buyer.
type Party struct {
	Name      string `json:"name,omitempty"`
	Address   string `json:"address,omitempty"`
	TaxID     string `json:"tax_id,omitempty"`
	TaxOffice string `json:"tax_office,omitempty"`
	IBAN      string `json:"iban,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
}

// Invoice is the root extraction result.
type Invoice struct {
	InvoiceNumber string `json:"invoice_number,omitempty"`
	InvoiceDate   string `json:"invoice_date,omitempty"`
	Currency      string `json:"currency,omitempty"`
	Language      string `json:"language,omitempty"`

	Seller Party `json:"seller"`
	Buyer  Party `json:"buyer"`

	Items []LineItem `json:"items"`

	Subtotal   float64 `json:"subtotal,omitempty"`
	VATTotal   float64 `json:"vat_total,omitempty"`
	VATRate    float64 `json:"vat_rate,omitempty"`
	GrandTotal float64 `json:"grand_total,omitempty"`
}
