package criteria

import (
	"encoding/json"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lender-qualify/internal/model"
)

// EncodeRow writes c back into the spreadsheet column layout. Parsing the
// result with ParseRow yields a value equal to c.
func EncodeRow(c model.LenderCriteria) []string {
	row := make([]string, ColumnCount)
	row[ColLenderName] = c.LenderName
	for _, col := range columns {
		switch col.kind {
		case kindText:
			if v := *col.text(&c); v != nil {
				row[col.index] = *v
			}
		case kindNumber:
			if v := *col.number(&c); v != nil {
				row[col.index] = strconv.FormatFloat(*v, 'f', -1, 64)
			}
		case kindBool:
			if v := *col.flag(&c); v != nil {
				if *v {
					row[col.index] = "yes"
				} else {
					row[col.index] = "no"
				}
			}
		}
	}
	return row
}

// EncodeRows renders a catalog as a sheet, header first.
func EncodeRows(lenders []model.LenderCriteria) [][]string {
	rows := make([][]string, 0, len(lenders)+1)
	rows = append(rows, Header())
	for _, c := range lenders {
		rows = append(rows, EncodeRow(c))
	}
	return rows
}

// MarshalCatalog encodes a parsed catalog for caching.
func MarshalCatalog(lenders []model.LenderCriteria) ([]byte, error) {
	if lenders == nil {
		lenders = []model.LenderCriteria{}
	}
	data, err := json.Marshal(lenders)
	if err != nil {
		return nil, eris.Wrap(err, "criteria: marshal catalog")
	}
	return data, nil
}

// UnmarshalCatalog decodes a catalog produced by MarshalCatalog.
func UnmarshalCatalog(data []byte) ([]model.LenderCriteria, error) {
	var lenders []model.LenderCriteria
	if err := json.Unmarshal(data, &lenders); err != nil {
		return nil, eris.Wrap(err, "criteria: unmarshal catalog")
	}
	if lenders == nil {
		lenders = []model.LenderCriteria{}
	}
	return lenders, nil
}
