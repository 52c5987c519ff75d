package criteria

import (
	"math"
	"strconv"
	"strings"

	"github.com/sells-group/lender-qualify/internal/model"
)

// ParseRow converts one spreadsheet row into LenderCriteria. It returns false
// when the lender name cell is blank; callers drop such rows. Short rows are
// allowed and their missing cells read as blank.
func ParseRow(row []string) (model.LenderCriteria, bool) {
	name := strings.TrimSpace(cell(row, ColLenderName))
	if name == "" {
		return model.LenderCriteria{}, false
	}

	c := model.LenderCriteria{LenderName: name}
	for _, col := range columns {
		raw := cell(row, col.index)
		switch col.kind {
		case kindText:
			*col.text(&c) = parseText(raw)
		case kindNumber:
			*col.number(&c) = parseNumber(raw)
		case kindBool:
			*col.flag(&c) = parseBool(raw)
		}
	}
	return c, true
}

// ParseRows parses a whole sheet. rows[0] is the header and is always
// skipped. Row order is preserved and duplicate lender names are kept.
func ParseRows(rows [][]string) []model.LenderCriteria {
	if len(rows) <= 1 {
		return []model.LenderCriteria{}
	}
	out := make([]model.LenderCriteria, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if c, ok := ParseRow(row); ok {
			out = append(out, c)
		}
	}
	return out
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func parseText(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	return &s
}

// parseNumber never fails: anything that is not a finite, non-negative
// number reads as "not published".
func parseNumber(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return nil
	}
	return &v
}

func parseBool(raw string) *bool {
	var v bool
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "true":
		v = true
	case "no", "false":
		v = false
	default:
		return nil
	}
	return &v
}
