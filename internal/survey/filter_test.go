package survey

import (
	"reflect"
	"testing"
	"time"
)

func fp(v float64) *float64 { return &v }

func tp(v time.Time) *time.Time { return &v }

func TestWhereRenumbersPlaceholders(t *testing.T) {
	var w Where
	w.Add("a = $?", 1)
	w.Add("b between $? and $?", 2, 3)
	w.Add("c is not null")

	wantConds := []string{"a = $1", "b between $2 and $3", "c is not null"}
	if !reflect.DeepEqual(w.Conds(), wantConds) {
		t.Fatalf("conds = %v", w.Conds())
	}
	if !reflect.DeepEqual(w.Args(), []any{1, 2, 3}) {
		t.Fatalf("args = %v", w.Args())
	}
	if got := w.Clause(); got != " where a = $1 and b between $2 and $3 and c is not null" {
		t.Fatalf("clause = %q", got)
	}
}

func TestWhereEmptyClause(t *testing.T) {
	var w Where
	if w.Clause() != "" {
		t.Fatalf("empty Where must render no clause")
	}
}

func TestAppendBoundsInclusiveOverlap(t *testing.T) {
	// Record footprint south=10..north=20, west=30..east=40 (true signed,
	// post inversion). Query box 15..25 / 35..45 overlaps: the generated
	// comparisons are against the opposite edges.
	var w Where
	AppendBounds(&w, "i", Bounds{North: fp(25), South: fp(15), East: fp(45), West: fp(35)}, false)

	want := []string{
		"-i.lat_south <= $1",
		"-i.lat_north >= $2",
		"i.long_west <= $3",
		"i.long_east >= $4",
	}
	if !reflect.DeepEqual(w.Conds(), want) {
		t.Fatalf("conds = %v", w.Conds())
	}
	if !reflect.DeepEqual(w.Args(), []any{25.0, 15.0, 45.0, 35.0}) {
		t.Fatalf("args = %v", w.Args())
	}
}

func TestAppendBoundsExclusiveContainment(t *testing.T) {
	// Exclusive mode compares each record edge against its own query edge,
	// requiring full containment.
	var w Where
	AppendBounds(&w, "i", Bounds{North: fp(25), South: fp(15), East: fp(45), West: fp(35)}, true)

	want := []string{
		"-i.lat_north <= $1",
		"-i.lat_south >= $2",
		"i.long_east <= $3",
		"i.long_west >= $4",
	}
	if !reflect.DeepEqual(w.Conds(), want) {
		t.Fatalf("conds = %v", w.Conds())
	}
}

func TestAppendBoundsOmittedEdges(t *testing.T) {
	var w Where
	AppendBounds(&w, "i", Bounds{North: fp(10)}, false)
	if len(w.Conds()) != 1 {
		t.Fatalf("only the provided bound may constrain, got %v", w.Conds())
	}

	var empty Where
	AppendBounds(&empty, "i", Bounds{}, true)
	if len(empty.Conds()) != 0 {
		t.Fatalf("no bounds, no predicates, got %v", empty.Conds())
	}
}

func TestAppendIntervalPolarity(t *testing.T) {
	start := time.Date(2001, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2001, 9, 1, 0, 0, 0, 0, time.UTC)

	var incl Where
	AppendInterval(&incl, "i", Interval{Start: tp(start), End: tp(end)}, false)
	if !reflect.DeepEqual(incl.Conds(), []string{"i.date_end >= $1", "i.date_start <= $2"}) {
		t.Fatalf("inclusive conds = %v", incl.Conds())
	}

	var excl Where
	AppendInterval(&excl, "i", Interval{Start: tp(start), End: tp(end)}, true)
	if !reflect.DeepEqual(excl.Conds(), []string{"i.date_start >= $1", "i.date_end <= $2"}) {
		t.Fatalf("exclusive conds = %v", excl.Conds())
	}

	var onlyEnd Where
	AppendInterval(&onlyEnd, "i", Interval{End: tp(end)}, false)
	if !reflect.DeepEqual(onlyEnd.Conds(), []string{"i.date_start <= $1"}) {
		t.Fatalf("one-sided conds = %v", onlyEnd.Conds())
	}
}

func TestAppendPoint(t *testing.T) {
	start := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	var w Where
	AppendPoint(&w, "v", Bounds{North: fp(-20), South: fp(-40)}, Interval{Start: tp(start)})

	want := []string{
		"-v.latitude <= $1",
		"-v.latitude >= $2",
		"v.date_time >= $3",
	}
	if !reflect.DeepEqual(w.Conds(), want) {
		t.Fatalf("conds = %v", w.Conds())
	}
}

func TestPathSurveyID(t *testing.T) {
	if got := PathSurveyID("1999-0035"); got != "1999/0035" {
		t.Fatalf("PathSurveyID = %q", got)
	}
}
