package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"sadco.org/internal/survey"
)

// listColumns is the shared projection for list and search rows. Chief
// scientist and institute come from the lookup joins; nullable lookups
// surface as empty strings.
const listColumns = `
	i.survey_id,
	coalesce(i.project_name, ''),
	coalesce(i.cruise_name, ''),
	coalesce(p.name, ''),
	coalesce(s1.f_name, ''), coalesce(s1.surname, ''),
	coalesce(inst.name, ''),
	i.date_start, i.date_end,
	coalesce(st.name, '')`

const listJoins = `
	from inventory i
	left join planam p on p.code = i.planam_code
	left join scientists s1 on s1.code = i.sci_code_1
	left join institutes inst on inst.code = i.instit_code
	left join survey_type st on st.code = i.survey_type_code`

// deviceJoins restricts the inventory to surveys whose stations carry a
// sediment sample taken with the requested sampling device.
const deviceJoins = `
	join station stn on stn.survey_id = i.survey_id
	join sedphy sp on sp.station_id = stn.station_id`

func scanListItem(rows *sql.Rows) (survey.SurveyListItem, error) {
	var (
		it             survey.SurveyListItem
		fName, surname string
		dateStart      sql.NullTime
		dateEnd        sql.NullTime
	)
	err := rows.Scan(&it.ID, &it.ProjectName, &it.StationName, &it.PlatformName,
		&fName, &surname, &it.Institute, &dateStart, &dateEnd, &it.SurveyType)
	if err != nil {
		return survey.SurveyListItem{}, err
	}
	it.ChiefScientist = chiefScientist(fName, surname)
	if dateStart.Valid {
		t := dateStart.Time
		it.DateStart = &t
	}
	if dateEnd.Valid {
		t := dateEnd.Time
		it.DateEnd = &t
	}
	return it, nil
}

// chiefScientist composes "F_NAME SURNAME", tolerating either part missing.
func chiefScientist(fName, surname string) string {
	return strings.TrimSpace(strings.TrimSpace(fName) + " " + strings.TrimSpace(surname))
}

func (s *Store) List(ctx context.Context, page, size int) (survey.ListResult, error) {
	page = survey.NormalizePage(page)

	var total int64
	if err := s.db.QueryRowContext(ctx, `select count(*) from inventory`).Scan(&total); err != nil {
		return survey.ListResult{}, fmt.Errorf("pg: survey count: %w", err)
	}

	limit := survey.EffectiveLimit(size, total)
	items, err := s.fetchListPage(ctx, nil, "", page, limit)
	if err != nil {
		return survey.ListResult{}, err
	}
	return survey.ListResult{
		Items: items,
		Total: total,
		Page:  page,
		Pages: survey.Pages(total, limit),
	}, nil
}

func (s *Store) Search(ctx context.Context, f survey.SearchFilter) (survey.SearchResult, error) {
	page := survey.NormalizePage(f.Page)

	w := &survey.Where{}
	joins := ""
	if f.SurveyID != "" {
		w.Add("i.survey_id like $?", f.SurveyID+"%")
	}
	if f.SurveyTypeCode != "" {
		w.Add("i.survey_type_code = $?", f.SurveyTypeCode)
	}
	if f.SamplingDeviceCode != nil {
		joins = deviceJoins
		w.Add("sp.device_code = $?", *f.SamplingDeviceCode)
	}
	survey.AppendBounds(w, "i", f.Bounds, f.ExclusiveRegion)
	survey.AppendInterval(w, "i", f.Interval, f.ExclusiveInterval)

	var total int64
	countQuery := `select count(distinct i.survey_id) from inventory i` + joins + w.Clause()
	if err := s.db.QueryRowContext(ctx, countQuery, w.Args()...).Scan(&total); err != nil {
		return survey.SearchResult{}, fmt.Errorf("pg: search count: %w", err)
	}

	limit := survey.EffectiveLimit(f.Size, total)
	items, err := s.fetchListPage(ctx, w, joins, page, limit)
	if err != nil {
		return survey.SearchResult{}, err
	}

	devices, err := s.deviceFacets(ctx, f)
	if err != nil {
		return survey.SearchResult{}, err
	}
	types, err := s.surveyTypeFacets(ctx, f)
	if err != nil {
		return survey.SearchResult{}, err
	}

	return survey.SearchResult{
		Items:           items,
		SamplingDevices: devices,
		SurveyTypes:     types,
		Total:           total,
		Page:            page,
		Pages:           survey.Pages(total, limit),
	}, nil
}

// fetchListPage runs the shared list projection with an optional filter and
// extra joins, ordered by survey id for stable pagination.
func (s *Store) fetchListPage(ctx context.Context, w *survey.Where, joins string, page int, limit int64) ([]survey.SurveyListItem, error) {
	clause := ""
	var args []any
	if w != nil {
		clause = w.Clause()
		args = append(args, w.Args()...)
	}
	offset := int64(page-1) * limit

	query := `select distinct` + listColumns + listJoins + joins + clause +
		` order by i.survey_id` +
		fmt.Sprintf(` offset $%d limit $%d`, len(args)+1, len(args)+2)
	args = append(args, offset, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pg: survey page: %w", err)
	}
	defer rows.Close()

	items := []survey.SurveyListItem{}
	for rows.Next() {
		it, err := scanListItem(rows)
		if err != nil {
			return nil, fmt.Errorf("pg: survey page scan: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// deviceFacets counts surveys per sampling device over the whole store,
// narrowed only by the device parameter itself when one was selected. The
// other row filters do not apply to the facet universe.
func (s *Store) deviceFacets(ctx context.Context, f survey.SearchFilter) ([]survey.FacetCount, error) {
	w := &survey.Where{}
	if f.SamplingDeviceCode != nil {
		w.Add("sd.code = $?", *f.SamplingDeviceCode)
	}

	query := `select sd.code, sd.name, count(distinct stn.survey_id)
	from sampling_device sd
	join sedphy sp on sp.device_code = sd.code
	join station stn on stn.station_id = sp.station_id` + w.Clause() + `
	group by sd.code, sd.name
	order by sd.code`

	return s.fetchFacets(ctx, query, w.Args())
}

// surveyTypeFacets counts surveys per survey type over the whole store,
// narrowed only by the type parameter itself when one was selected.
func (s *Store) surveyTypeFacets(ctx context.Context, f survey.SearchFilter) ([]survey.FacetCount, error) {
	w := &survey.Where{}
	if f.SurveyTypeCode != "" {
		w.Add("st.code = $?", f.SurveyTypeCode)
	}

	query := `select st.code, st.name, count(distinct i.survey_id)
	from inventory i
	join survey_type st on st.code = i.survey_type_code` + w.Clause() + `
	group by st.code, st.name
	order by st.code`

	return s.fetchFacets(ctx, query, w.Args())
}

func (s *Store) fetchFacets(ctx context.Context, query string, args []any) ([]survey.FacetCount, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pg: facets: %w", err)
	}
	defer rows.Close()

	facets := []survey.FacetCount{}
	for rows.Next() {
		var fc survey.FacetCount
		if err := rows.Scan(&fc.Code, &fc.Name, &fc.Count); err != nil {
			return nil, fmt.Errorf("pg: facets scan: %w", err)
		}
		facets = append(facets, fc)
	}
	return facets, rows.Err()
}

func (s *Store) Get(ctx context.Context, surveyID string) (survey.Survey, error) {
	var (
		sv             survey.Survey
		fName, surname string
		dateStart      sql.NullTime
		dateEnd        sql.NullTime
		latN, latS     sql.NullFloat64
		lonW, lonE     sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, `select`+listColumns+`,
	i.lat_north, i.lat_south, i.long_west, i.long_east`+listJoins+`
	where i.survey_id = $1`, surveyID).
		Scan(&sv.ID, &sv.ProjectName, &sv.StationName, &sv.PlatformName,
			&fName, &surname, &sv.Institute, &dateStart, &dateEnd, &sv.SurveyType,
			&latN, &latS, &lonW, &lonE)
	if errors.Is(err, sql.ErrNoRows) {
		return survey.Survey{}, survey.ErrNotFound
	}
	if err != nil {
		return survey.Survey{}, fmt.Errorf("pg: survey detail: %w", err)
	}
	sv.ChiefScientist = chiefScientist(fName, surname)
	if dateStart.Valid {
		t := dateStart.Time
		sv.DateStart = &t
	}
	if dateEnd.Valid {
		t := dateEnd.Time
		sv.DateEnd = &t
	}
	// Stored latitudes carry an inverted sign; undo it here so everything
	// above this layer works in true signed coordinates.
	if latN.Valid {
		v := -latN.Float64
		sv.LatNorth = &v
	}
	if latS.Valid {
		v := -latS.Float64
		sv.LatSouth = &v
	}
	if lonW.Valid {
		v := lonW.Float64
		sv.LongWest = &v
	}
	if lonE.Valid {
		v := lonE.Float64
		sv.LongEast = &v
	}

	stations, err := s.surveyStations(ctx, surveyID)
	if err != nil {
		return survey.Survey{}, err
	}
	sv.Stations = stations
	return sv, nil
}

func (s *Store) surveyStations(ctx context.Context, surveyID string) ([]survey.StationPoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		select stn.latitude, stn.longitude
		from station stn
		where stn.survey_id = $1
		order by stn.station_id`, surveyID)
	if err != nil {
		return nil, fmt.Errorf("pg: survey stations: %w", err)
	}
	defer rows.Close()

	points := []survey.StationPoint{}
	for rows.Next() {
		var lat, lon sql.NullFloat64
		if err := rows.Scan(&lat, &lon); err != nil {
			return nil, fmt.Errorf("pg: survey stations scan: %w", err)
		}
		if !lat.Valid || !lon.Valid {
			continue
		}
		points = append(points, survey.StationPoint{Latitude: -lat.Float64, Longitude: lon.Float64})
	}
	return points, rows.Err()
}

func (s *Store) HydroDetail(ctx context.Context, surveyID string) (survey.HydroSurvey, error) {
	sv, err := s.Get(ctx, surveyID)
	if err != nil {
		return survey.HydroSurvey{}, err
	}

	stats, err := s.invStats(ctx, surveyID)
	if err != nil {
		return survey.HydroSurvey{}, err
	}
	liveCurrents, err := s.liveCurrentsCount(ctx, surveyID)
	if err != nil {
		return survey.HydroSurvey{}, err
	}

	return survey.HydroSurvey{
		Survey:    sv,
		DataTypes: survey.BuildDataTypes(stats, liveCurrents),
	}, nil
}

func (s *Store) invStats(ctx context.Context, surveyID string) (survey.InvStats, error) {
	st := survey.InvStats{SurveyID: surveyID}
	err := s.db.QueryRowContext(ctx, `
		select watphy_cnt, watnut_cnt,
		       watpol1_cnt, watpol2_cnt,
		       watchem1_cnt, watchem2_cnt,
		       watcurrents_cnt,
		       sedphy_cnt,
		       sedpol1_cnt, sedpol2_cnt,
		       sedchem1_cnt, sedchem2_cnt,
		       weather_cnt
		from inv_stats where survey_id = $1`, surveyID).
		Scan(&st.WatphyCnt, &st.WatnutCnt,
			&st.Watpol1Cnt, &st.Watpol2Cnt,
			&st.Watchem1Cnt, &st.Watchem2Cnt,
			&st.WatcurrentsCnt,
			&st.SedphyCnt,
			&st.Sedpol1Cnt, &st.Sedpol2Cnt,
			&st.Sedchem1Cnt, &st.Sedchem2Cnt,
			&st.WeatherCnt)
	if errors.Is(err, sql.ErrNoRows) {
		// No stats row means no loaded data; availability reads as empty.
		return st, nil
	}
	if err != nil {
		return survey.InvStats{}, fmt.Errorf("pg: inv_stats: %w", err)
	}
	return st, nil
}

// liveCurrentsCount joins stations to current records directly. The
// precomputed currents column in inv_stats drifted from the live tables and
// is not trusted.
func (s *Store) liveCurrentsCount(ctx context.Context, surveyID string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `
		select count(c.station_id)
		from station stn
		left join currents c on c.station_id = stn.station_id
		where stn.survey_id = $1`, surveyID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("pg: live currents count: %w", err)
	}
	return count, nil
}
