package survey

import (
	"fmt"
	"strings"
)

// Where accumulates SQL predicate fragments with positional arguments.
// Fragments use the $? marker for each argument; Add rewrites them to the
// next free $N placeholder so composed queries stay valid regardless of how
// many optional filters were applied before them.
type Where struct {
	conds []string
	args  []any
}

// Add appends one predicate fragment, consuming one $? marker per argument
// in order.
func (w *Where) Add(expr string, args ...any) {
	for _, a := range args {
		w.args = append(w.args, a)
		expr = strings.Replace(expr, "$?", fmt.Sprintf("$%d", len(w.args)), 1)
	}
	w.conds = append(w.conds, expr)
}

// Conds returns the accumulated fragments.
func (w *Where) Conds() []string { return w.conds }

// Args returns the accumulated arguments, positionally matching the
// placeholders in Conds.
func (w *Where) Args() []any { return w.args }

// Clause renders " where c1 and c2 ..." or the empty string.
func (w *Where) Clause() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " where " + strings.Join(w.conds, " and ")
}

// AppendBounds adds the bounding-box predicate over an inventory-shaped
// footprint (columns lat_north, lat_south, long_west, long_east on alias).
//
// The store holds latitudes with inverted sign (southern latitudes are
// positive), so stored values are negated before comparing against the
// caller's true signed bounds. Inclusive mode matches any overlap between
// the record footprint and the query box; exclusive mode requires the
// footprint to lie entirely within the box. Omitted bounds impose no
// constraint.
func AppendBounds(w *Where, alias string, b Bounds, exclusive bool) {
	if exclusive {
		if b.North != nil {
			w.Add("-"+alias+".lat_north <= $?", *b.North)
		}
		if b.South != nil {
			w.Add("-"+alias+".lat_south >= $?", *b.South)
		}
		if b.East != nil {
			w.Add(alias+".long_east <= $?", *b.East)
		}
		if b.West != nil {
			w.Add(alias+".long_west >= $?", *b.West)
		}
		return
	}
	if b.North != nil {
		w.Add("-"+alias+".lat_south <= $?", *b.North)
	}
	if b.South != nil {
		w.Add("-"+alias+".lat_north >= $?", *b.South)
	}
	if b.East != nil {
		w.Add(alias+".long_west <= $?", *b.East)
	}
	if b.West != nil {
		w.Add(alias+".long_east >= $?", *b.West)
	}
}

// AppendInterval adds the date-range predicate over columns date_start and
// date_end on alias. Inclusive mode matches any temporal overlap; exclusive
// mode requires the record interval to fall entirely within the query
// interval. Omitted sides impose no constraint.
func AppendInterval(w *Where, alias string, iv Interval, exclusive bool) {
	if exclusive {
		if iv.Start != nil {
			w.Add(alias+".date_start >= $?", *iv.Start)
		}
		if iv.End != nil {
			w.Add(alias+".date_end <= $?", *iv.End)
		}
		return
	}
	if iv.Start != nil {
		w.Add(alias+".date_end >= $?", *iv.Start)
	}
	if iv.End != nil {
		w.Add(alias+".date_start <= $?", *iv.End)
	}
}

// AppendPoint adds the VOS predicate over a point record (columns latitude,
// longitude, date_time on alias, latitude sign-inverted in the store). A
// point either lies inside a box and interval or it does not, so overlap
// and containment coincide and both polarity flags compile to the same
// closed-interval tests.
func AppendPoint(w *Where, alias string, b Bounds, iv Interval) {
	if b.North != nil {
		w.Add("-"+alias+".latitude <= $?", *b.North)
	}
	if b.South != nil {
		w.Add("-"+alias+".latitude >= $?", *b.South)
	}
	if b.East != nil {
		w.Add(alias+".longitude <= $?", *b.East)
	}
	if b.West != nil {
		w.Add(alias+".longitude >= $?", *b.West)
	}
	if iv.Start != nil {
		w.Add(alias+".date_time >= $?", *iv.Start)
	}
	if iv.End != nil {
		w.Add(alias+".date_time <= $?", *iv.End)
	}
}
