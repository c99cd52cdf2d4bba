package survey

import (
	"database/sql"
	"testing"
)

func n(v int64) sql.NullInt64 { return sql.NullInt64{Int64: v, Valid: true} }

var null = sql.NullInt64{}

func TestMaxOfTwins(t *testing.T) {
	stats := InvStats{
		WatphyCnt:   n(12),
		Watchem1Cnt: n(0),
		Watchem2Cnt: n(5),
		Watpol1Cnt:  n(3),
		Watpol2Cnt:  null,
	}
	dt := BuildDataTypes(stats, 0)
	if dt.Water == nil {
		t.Fatalf("water must be present")
	}
	if dt.Water.WaterChemistry == nil || dt.Water.WaterChemistry.RecordCount != 5 {
		t.Fatalf("chemistry twin merge wrong: %+v", dt.Water.WaterChemistry)
	}
	if dt.Water.WaterPollution == nil || dt.Water.WaterPollution.RecordCount != 3 {
		t.Fatalf("pollution twin merge with null wrong: %+v", dt.Water.WaterPollution)
	}
}

func TestTwinsBothNullAbsent(t *testing.T) {
	dt := BuildDataTypes(InvStats{WatphyCnt: n(1)}, 0)
	if dt.Water == nil || dt.Water.WaterChemistry != nil {
		t.Fatalf("both-null twins must be absent: %+v", dt.Water)
	}
}

func TestWaterGatesSubCategories(t *testing.T) {
	// No physical water samples: the whole water branch is absent even if
	// twin counts exist.
	dt := BuildDataTypes(InvStats{Watchem1Cnt: n(9)}, 0)
	if dt.Water != nil {
		t.Fatalf("water must be absent without watphy records")
	}
}

func TestSedimentAndWeather(t *testing.T) {
	stats := InvStats{
		SedphyCnt:   n(7),
		Sedchem1Cnt: n(2),
		Sedchem2Cnt: n(1),
		Sedpol1Cnt:  null,
		Sedpol2Cnt:  null,
		WeatherCnt:  n(4),
	}
	dt := BuildDataTypes(stats, 0)
	if dt.Sediment == nil || dt.Sediment.RecordCount != 7 {
		t.Fatalf("sediment wrong: %+v", dt.Sediment)
	}
	if dt.Sediment.SedimentChemistry == nil || dt.Sediment.SedimentChemistry.RecordCount != 2 {
		t.Fatalf("sediment chemistry wrong: %+v", dt.Sediment.SedimentChemistry)
	}
	if dt.Sediment.SedimentPollution != nil {
		t.Fatalf("sediment pollution must be absent")
	}
	if dt.Weather == nil || dt.Weather.RecordCount != 4 {
		t.Fatalf("weather wrong: %+v", dt.Weather)
	}
}

func TestCurrentsComesFromLiveCountOnly(t *testing.T) {
	dt := BuildDataTypes(InvStats{}, 42)
	if dt.Currents == nil || dt.Currents.RecordCount != 42 {
		t.Fatalf("live currents wrong: %+v", dt.Currents)
	}
	dt = BuildDataTypes(InvStats{}, 0)
	if dt.Currents != nil {
		t.Fatalf("zero live currents must be absent")
	}
}

func TestParseDataCategory(t *testing.T) {
	if _, err := ParseDataCategory("water chemistry"); err != nil {
		t.Fatalf("known category rejected: %v", err)
	}
	if _, err := ParseDataCategory("plankton"); err == nil {
		t.Fatalf("unknown category accepted")
	}
}
