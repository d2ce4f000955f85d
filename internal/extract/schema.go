package extract

import (
	"bytes"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// invoiceSchema is the canonical shape of an extracted invoice. The model's
// output is validated against it before anything downstream sees the data.
const invoiceSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "invoice_number": {"type": "string"},
    "invoice_date": {"type": "string"},
    "currency": {"type": "string"},
    "language": {"type": "string"},
    "seller": {"$ref": "#/$defs/party"},
    "buyer": {"$ref": "#/$defs/party"},
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "properties": {
          "description": {"type": "string"},
          "quantity": {"type": "integer"},
          "unit_price": {"type": "number"},
          "total_price": {"type": "number"},
          "confidence": {"type": "number"}
        },
        "required": ["description"]
      }
    },
    "subtotal": {"type": "number"},
    "vat_total": {"type": "number"},
    "vat_rate": {"type": "number"},
    "grand_total": {"type": "number"}
  },
  "$defs": {
    "party": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "name": {"type": "string"},
        "address": {"type": "string"},
        "tax_id": {"type": "string"},
        "tax_office": {"type": "string"},
        "iban": {"type": "string"},
        "phone": {"type": "string"},
        "email": {"type": "string"}
      }
    }
  }
}`

// compileInvoiceSchema compiles the canonical schema once at construction.
func compileInvoiceSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("invoice.json", bytes.NewReader([]byte(invoiceSchema))); err != nil {
		return nil, fmt.Errorf("failed to load invoice schema: %w", err)
	}
	schema, err := compiler.Compile("invoice.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile invoice schema: %w", err)
	}
	return schema, nil
}
