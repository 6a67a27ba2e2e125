package source

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/couchcryptid/memory-map/internal/domain"
)

// decodeRows extracts an array-of-arrays from the named top-level field.
// Missing fields, non-array values and non-array rows are format failures.
func decodeRows(body []byte, field string) ([]domain.RawRow, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrFormat)
	}

	res := gjson.GetBytes(body, gjson.Escape(field))
	if !res.Exists() {
		return nil, fmt.Errorf("%w: missing %q field", ErrFormat, field)
	}
	if !res.IsArray() {
		return nil, fmt.Errorf("%w: %q is not an array", ErrFormat, field)
	}

	items := res.Array()
	rows := make([]domain.RawRow, 0, len(items))
	for i, item := range items {
		if !item.IsArray() {
			return nil, fmt.Errorf("%w: row %d of %q is not an array", ErrFormat, i, field)
		}
		cells := item.Array()
		row := make(domain.RawRow, len(cells))
		for j, cell := range cells {
			row[j] = cellText(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// cellText renders a cell as text: strings verbatim, numbers and booleans
// as their JSON literal, null and nested values as "".
func cellText(cell gjson.Result) string {
	switch cell.Type {
	case gjson.String:
		return cell.Str
	case gjson.Number, gjson.True, gjson.False:
		return cell.Raw
	default:
		return ""
	}
}
