package survey

import "database/sql"

// InvStats carries the precomputed per-survey record counts from the
// inv_stats table. Several categories were loaded by two historical
// pipelines that were never reconciled, leaving twin count columns whose
// true value is their maximum. Counts are nullable in the store.
type InvStats struct {
	SurveyID       string
	WatphyCnt      sql.NullInt64
	WatnutCnt      sql.NullInt64
	Watpol1Cnt     sql.NullInt64
	Watpol2Cnt     sql.NullInt64
	Watchem1Cnt    sql.NullInt64
	Watchem2Cnt    sql.NullInt64
	WatcurrentsCnt sql.NullInt64
	SedphyCnt      sql.NullInt64
	Sedpol1Cnt     sql.NullInt64
	Sedpol2Cnt     sql.NullInt64
	Sedchem1Cnt    sql.NullInt64
	Sedchem2Cnt    sql.NullInt64
	WeatherCnt     sql.NullInt64
}

// RecordCount is the payload of one availability category.
type RecordCount struct {
	RecordCount int64 `json:"record_count"`
}

// WaterTypes nests the water sub-categories under the physical water
// samples. Absent sub-categories are omitted from the JSON body.
type WaterTypes struct {
	RecordCount    int64        `json:"record_count"`
	WaterChemistry *RecordCount `json:"water_chemistry,omitempty"`
	WaterPollution *RecordCount `json:"water_pollution,omitempty"`
	WaterNutrients *RecordCount `json:"water_nutrients,omitempty"`
	WaterCurrents  *RecordCount `json:"water_currents,omitempty"`
}

// SedimentTypes nests the sediment sub-categories.
type SedimentTypes struct {
	RecordCount       int64        `json:"record_count"`
	SedimentChemistry *RecordCount `json:"sediment_chemistry,omitempty"`
	SedimentPollution *RecordCount `json:"sediment_pollution,omitempty"`
}

// DataTypes is the per-survey data availability summary. A category appears
// only when records exist for it.
type DataTypes struct {
	Water    *WaterTypes    `json:"water,omitempty"`
	Sediment *SedimentTypes `json:"sediment,omitempty"`
	Weather  *RecordCount   `json:"weather,omitempty"`
	Currents *RecordCount   `json:"currents,omitempty"`
}

func nullToZero(n sql.NullInt64) int64 {
	if n.Valid {
		return n.Int64
	}
	return 0
}

// maxOfTwins merges a twin column pair from the two historical load
// pipelines. The loads overlap, so the true count is the max, never the sum.
func maxOfTwins(a, b sql.NullInt64) int64 {
	x, y := nullToZero(a), nullToZero(b)
	if x > y {
		return x
	}
	return y
}

func presence(count int64) *RecordCount {
	if count > 0 {
		return &RecordCount{RecordCount: count}
	}
	return nil
}

// BuildDataTypes rolls the sparse per-category counts into the nested
// availability summary. liveCurrents is the station-joined currents count
// computed live, because the currents column of inv_stats is unreliable.
func BuildDataTypes(stats InvStats, liveCurrents int64) *DataTypes {
	dt := &DataTypes{}

	if watphy := nullToZero(stats.WatphyCnt); watphy > 0 {
		water := &WaterTypes{RecordCount: watphy}
		water.WaterChemistry = presence(maxOfTwins(stats.Watchem1Cnt, stats.Watchem2Cnt))
		water.WaterPollution = presence(maxOfTwins(stats.Watpol1Cnt, stats.Watpol2Cnt))
		water.WaterNutrients = presence(nullToZero(stats.WatnutCnt))
		water.WaterCurrents = presence(nullToZero(stats.WatcurrentsCnt))
		dt.Water = water
	}

	if sedphy := nullToZero(stats.SedphyCnt); sedphy > 0 {
		sediment := &SedimentTypes{RecordCount: sedphy}
		sediment.SedimentChemistry = presence(maxOfTwins(stats.Sedchem1Cnt, stats.Sedchem2Cnt))
		sediment.SedimentPollution = presence(maxOfTwins(stats.Sedpol1Cnt, stats.Sedpol2Cnt))
		dt.Sediment = sediment
	}

	dt.Weather = presence(nullToZero(stats.WeatherCnt))
	dt.Currents = presence(liveCurrents)

	return dt
}
