package layout

import (
	"math"
	"sort"

	"github.com/jaguuai/invoice-extraction-system/internal/ocr"
)

// groupRows clusters unordered tokens into horizontal rows. Tokens are
// walked in vertical-center order; a token joins the first row whose first
// member sits within the row band, otherwise it starts a new row. Anchoring
// to the first member rather than a running centroid can fragment a row when
// its first token is a vertical outlier; acceptable for invoice tables.
func groupRows(tokens []ocr.Token, bandHeight float64) [][]ocr.Token {
	sorted := make([]ocr.Token, len(tokens))
	copy(sorted, tokens)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CenterY < sorted[j].CenterY
	})

	var rows [][]ocr.Token
	for _, tok := range sorted {
		placed := false
		for i := range rows {
			if math.Abs(rows[i][0].CenterY-tok.CenterY) < bandHeight {
				rows[i] = append(rows[i], tok)
				placed = true
				break
			}
		}
		if !placed {
			rows = append(rows, []ocr.Token{tok})
		}
	}
	return rows
}
