package nullable

import (
	"github.com/nullsql/nullsql/pkg/eval"
	"github.com/nullsql/nullsql/pkg/nullerr"
	"github.com/nullsql/nullsql/pkg/token"
)

// combineBranches implements the Set-Expr Combinator (§4.7): column i's
// value is the OR of every branch's value at position i, with None
// absorbed whenever any branch has a known value; naming is preserved if
// any branch names the column.
func combineBranches(sn StatementNullable) (Nullable, error) {
	if len(sn) == 0 {
		return nil, nil
	}
	width := len(sn[0])
	for _, row := range sn[1:] {
		if len(row) != width {
			return nil, &nullerr.ShapeMismatchError{Pos: token.Position{}, Left: width, Right: len(row)}
		}
	}

	out := make(Nullable, width)
	for i := 0; i < width; i++ {
		place := eval.Unnamed()
		anyTrue := false
		anyKnownFalse := false
		for _, row := range sn {
			r := row[i]
			if r.Place.Named && !place.Named {
				place = r.Place
			}
			if r.Value == nil {
				continue
			}
			if *r.Value {
				anyTrue = true
			} else {
				anyKnownFalse = true
			}
		}

		var value *bool
		switch {
		case anyTrue:
			v := true
			value = &v
		case anyKnownFalse:
			v := false
			value = &v
		default:
			value = nil
		}
		out[i] = eval.Result{Place: place, Value: value}
	}
	return out, nil
}
