package pg

import (
	"context"
	"fmt"

	"sadco.org/internal/survey"
)

// hydroQueries maps each download category to its projection. Every query
// walks inventory -> station -> sample tables for one survey and emits a
// flat row set; the CSV layer formats whatever comes back.
var hydroQueries = map[survey.DataCategory]struct {
	columns []string
	query   string
}{
	survey.CategoryWater: {
		columns: []string{
			"survey_id", "latitude", "longitude", "year", "month", "day",
			"time", "station_name", "station_id", "platform_name",
			"max_sampling_depth", "subdes", "spldattim", "spldep",
			"filtered", "disoxygen", "salinity", "temperature",
			"sound_flag", "soundv", "turbidity", "pressure", "fluorescence",
		},
		query: `
		select i.survey_id,
		       -stn.latitude, stn.longitude,
		       extract(year from w.spldattim)::int,
		       extract(month from w.spldattim)::int,
		       extract(day from w.spldattim)::int,
		       to_char(w.spldattim, 'HH24:MI'),
		       coalesce(i.cruise_name, ''), stn.station_id,
		       coalesce(p.name, ''),
		       stn.max_spldep,
		       w.subdes, w.spldattim, w.spldep,
		       w.filtered, w.disoxygen, w.salinity, w.temperature,
		       w.sound_flag, w.soundv, w.turbidity, w.pressure, w.fluorescence
		from inventory i
		left join planam p on p.code = i.planam_code
		join station stn on stn.survey_id = i.survey_id
		join watphy w on w.station_id = stn.station_id
		where i.survey_id = $1
		order by stn.station_id, w.spldattim, w.spldep`,
	},
	survey.CategoryWaterNutrients: {
		columns: []string{
			"survey_id", "station_id", "spldattim", "spldep",
			"no2", "no3", "p", "po4", "ptot", "sio3", "sio4",
		},
		query: `
		select i.survey_id, stn.station_id, w.spldattim, w.spldep,
		       n.no2, n.no3, n.p, n.po4, n.ptot, n.sio3, n.sio4
		from inventory i
		join station stn on stn.survey_id = i.survey_id
		join watphy w on w.station_id = stn.station_id
		join watnut n on n.watphy_code = w.code
		where i.survey_id = $1
		order by stn.station_id, w.spldattim, w.spldep`,
	},
	survey.CategoryWaterChemistry: {
		// The chemistry record is split across two twin tables with
		// disjoint column sets; one CSV row merges both.
		columns: []string{
			"survey_id", "station_id", "spldattim", "spldep",
			"dic", "doc", "fluoride", "iodene", "iodate", "kjn",
			"nh3", "nitrogen", "oxa", "ph",
			"calcium", "cesium", "hydrocarbons", "magnesium", "pah",
			"potassium", "rubidium", "sodium", "strontium", "so4", "sussol",
		},
		query: `
		select i.survey_id, stn.station_id, w.spldattim, w.spldep,
		       c.dic, c.doc, c.fluoride, c.iodene, c.iodate, c.kjn,
		       c.nh3, c.nitrogen, c.oxa, c.ph,
		       c2.calcium, c2.cesium, c2.hydrocarbons, c2.magnesium, c2.pah,
		       c2.potassium, c2.rubidium, c2.sodium, c2.strontium, c2.so4, c2.sussol
		from inventory i
		join station stn on stn.survey_id = i.survey_id
		join watphy w on w.station_id = stn.station_id
		left join watchem1 c on c.watphy_code = w.code
		left join watchem2 c2 on c2.watphy_code = w.code
		where i.survey_id = $1
		order by stn.station_id, w.spldattim, w.spldep`,
	},
	survey.CategoryWaterNutrientsAndChem: {
		columns: []string{
			"survey_id", "station_id", "spldattim", "spldep",
			"no2", "no3", "p", "po4", "ptot", "sio3", "sio4",
			"dic", "doc", "fluoride", "iodene", "iodate", "kjn",
			"nh3", "nitrogen", "oxa", "ph",
		},
		query: `
		select i.survey_id, stn.station_id, w.spldattim, w.spldep,
		       n.no2, n.no3, n.p, n.po4, n.ptot, n.sio3, n.sio4,
		       c.dic, c.doc, c.fluoride, c.iodene, c.iodate, c.kjn,
		       c.nh3, c.nitrogen, c.oxa, c.ph
		from inventory i
		join station stn on stn.survey_id = i.survey_id
		join watphy w on w.station_id = stn.station_id
		left join watnut n on n.watphy_code = w.code
		left join watchem1 c on c.watphy_code = w.code
		where i.survey_id = $1
		order by stn.station_id, w.spldattim, w.spldep`,
	},
	survey.CategoryWaterPollution: {
		columns: []string{
			"survey_id", "station_id", "spldattim", "spldep",
			"arsenic", "cadmium", "chromium", "cobalt", "copper",
			"iron", "lead", "manganese", "mercury", "nickel",
			"selenium", "zinc",
			"aluminium", "antimony", "bismuth", "molybdenum",
			"silver", "titanium", "vanadium",
		},
		query: `
		select i.survey_id, stn.station_id, w.spldattim, w.spldep,
		       wp.arsenic, wp.cadmium, wp.chromium, wp.cobalt, wp.copper,
		       wp.iron, wp.lead, wp.manganese, wp.mercury, wp.nickel,
		       wp.selenium, wp.zinc,
		       wp2.aluminium, wp2.antimony, wp2.bismuth, wp2.molybdenum,
		       wp2.silver, wp2.titanium, wp2.vanadium
		from inventory i
		join station stn on stn.survey_id = i.survey_id
		join watphy w on w.station_id = stn.station_id
		left join watpol1 wp on wp.watphy_code = w.code
		left join watpol2 wp2 on wp2.watphy_code = w.code
		where i.survey_id = $1
		order by stn.station_id, w.spldattim, w.spldep`,
	},
	survey.CategoryWaterCurrents: {
		columns: []string{
			"survey_id", "station_id", "spldattim", "spldep",
			"current_dir", "current_speed",
		},
		query: `
		select i.survey_id, stn.station_id, w.spldattim, w.spldep,
		       wc.current_dir, wc.current_speed
		from inventory i
		join station stn on stn.survey_id = i.survey_id
		join watphy w on w.station_id = stn.station_id
		join watcurrents wc on wc.watphy_code = w.code
		where i.survey_id = $1
		order by stn.station_id, w.spldattim, w.spldep`,
	},
	survey.CategorySediment: {
		columns: []string{
			"survey_id", "latitude", "longitude", "station_id",
			"subdes", "spldattim", "spldep", "spldis", "splvol",
			"sievsz", "kurt", "skew", "meanpz", "medipz", "pctsat",
			"pctsil", "permty", "porsty", "dwf", "cod",
		},
		query: `
		select i.survey_id, -stn.latitude, stn.longitude, stn.station_id,
		       sp.subdes, sp.spldattim, sp.spldep, sp.spldis, sp.splvol,
		       sp.sievsz, sp.kurt, sp.skew, sp.meanpz, sp.medipz, sp.pctsat,
		       sp.pctsil, sp.permty, sp.porsty, sp.dwf, sp.cod
		from inventory i
		join station stn on stn.survey_id = i.survey_id
		join sedphy sp on sp.station_id = stn.station_id
		where i.survey_id = $1
		order by stn.station_id, sp.spldattim, sp.spldep`,
	},
	survey.CategorySedimentChemistry: {
		columns: []string{
			"survey_id", "station_id", "spldattim", "spldep",
			"fluoride", "kjn", "oxa", "toc", "ptot",
			"calcium", "magnesium", "potassium", "sodium", "strontium", "so3",
		},
		query: `
		select i.survey_id, stn.station_id, sp.spldattim, sp.spldep,
		       sc.fluoride, sc.kjn, sc.oxa, sc.toc, sc.ptot,
		       sc2.calcium, sc2.magnesium, sc2.potassium, sc2.sodium,
		       sc2.strontium, sc2.so3
		from inventory i
		join station stn on stn.survey_id = i.survey_id
		join sedphy sp on sp.station_id = stn.station_id
		left join sedchem1 sc on sc.sedphy_code = sp.code
		left join sedchem2 sc2 on sc2.sedphy_code = sp.code
		where i.survey_id = $1
		order by stn.station_id, sp.spldattim, sp.spldep`,
	},
	survey.CategorySedimentPollution: {
		columns: []string{
			"survey_id", "station_id", "spldattim", "spldep",
			"arsenic", "cadmium", "chromium", "cobalt", "copper",
			"iron", "lead", "manganese", "mercury", "nickel",
			"selenium", "zinc",
			"aluminium", "antimony", "bismuth", "molybdenum",
			"silver", "titanium", "vanadium",
		},
		query: `
		select i.survey_id, stn.station_id, sp.spldattim, sp.spldep,
		       spo.arsenic, spo.cadmium, spo.chromium, spo.cobalt, spo.copper,
		       spo.iron, spo.lead, spo.manganese, spo.mercury, spo.nickel,
		       spo.selenium, spo.zinc,
		       spo2.aluminium, spo2.antimony, spo2.bismuth, spo2.molybdenum,
		       spo2.silver, spo2.titanium, spo2.vanadium
		from inventory i
		join station stn on stn.survey_id = i.survey_id
		join sedphy sp on sp.station_id = stn.station_id
		left join sedpol1 spo on spo.sedphy_code = sp.code
		left join sedpol2 spo2 on spo2.sedphy_code = sp.code
		where i.survey_id = $1
		order by stn.station_id, sp.spldattim, sp.spldep`,
	},
	survey.CategoryWeather: {
		columns: []string{
			"survey_id", "station_id", "nav_equip_type", "atmosph_pres",
			"surface_tmp", "drybulb", "wetbulb", "cloud", "vis_code",
			"weather_code", "water_color", "transparency",
			"wind_dir", "wind_speed", "swell_dir", "swell_height",
			"swell_period", "dupflag",
		},
		query: `
		select i.survey_id, stn.station_id, we.nav_equip_type, we.atmosph_pres,
		       we.surface_tmp, we.drybulb, we.wetbulb, we.cloud, we.vis_code,
		       we.weather_code, we.water_color, we.transparency,
		       we.wind_dir, we.wind_speed, we.swell_dir, we.swell_height,
		       we.swell_period, we.dupflag
		from inventory i
		join station stn on stn.survey_id = i.survey_id
		join weather we on we.station_id = stn.station_id
		where i.survey_id = $1
		order by stn.station_id`,
	},
	survey.CategoryCurrents: {
		columns: []string{
			"survey_id", "station_id", "subdes", "spldattim", "spldep",
			"current_dir", "current_speed", "perc_good",
		},
		query: `
		select i.survey_id, stn.station_id, c.subdes, c.spldattim, c.spldep,
		       c.current_dir, c.current_speed, c.perc_good
		from inventory i
		join station stn on stn.survey_id = i.survey_id
		join currents c on c.station_id = stn.station_id
		where i.survey_id = $1
		order by stn.station_id, c.spldattim, c.spldep`,
	},
}

// HydroDownload projects the requested data category of one hydro survey
// into a flat table. survey.ErrNotFound distinguishes a missing survey from
// one that simply has no rows in the category.
func (s *Store) HydroDownload(ctx context.Context, surveyID string, category survey.DataCategory) (survey.Table, error) {
	q, ok := hydroQueries[category]
	if !ok {
		return survey.Table{}, fmt.Errorf("%w: %q", survey.ErrUnsupportedCategory, category)
	}
	if err := s.requireSurvey(ctx, surveyID); err != nil {
		return survey.Table{}, err
	}
	return s.fetchTable(ctx, q.columns, q.query, surveyID)
}

// CurrentsDownload walks the mooring hierarchy: cur_mooring -> cur_depth ->
// cur_data, with the paired water-sample readings and the instrument name
// joined in.
func (s *Store) CurrentsDownload(ctx context.Context, surveyID string) (survey.Table, error) {
	if err := s.requireCurrentsSurvey(ctx, surveyID); err != nil {
		return survey.Table{}, err
	}
	columns := []string{
		"survey_id", "mooring_name", "latitude", "longitude", "station_depth",
		"instrument", "sampling_depth", "time_interval", "datetime",
		"speed", "direction", "temperature", "vert_velocity", "pressure",
		"ph", "salinity", "dis_oxy",
	}
	return s.fetchTable(ctx, columns, `
		select m.survey_id, coalesce(m.stnnam, ''),
		       -m.latitude, m.longitude, m.stndep,
		       coalesce(ei.name, ''), d.spldep, d.time_interval, cd.datetime,
		       cd.speed, cd.direction, cd.temperature, cd.vert_velocity, cd.pressure,
		       cw.ph, cw.salinity, cw.dis_oxy
		from cur_mooring m
		join cur_depth d on d.mooring_code = m.code
		join cur_data cd on cd.depth_code = d.code
		left join cur_watphy cw on cw.depth_code = d.code and cw.data_code = cd.code
		left join edm_instrument2 ei on ei.code = d.instrument_number
		where m.survey_id = $1
		order by d.spldep, cd.datetime`, surveyID)
}

// WeatherDownload projects the periodic land-station weather series.
func (s *Store) WeatherDownload(ctx context.Context, surveyID string) (survey.Table, error) {
	if err := s.requireStationSurvey(ctx, "wet_station", surveyID); err != nil {
		return survey.Table{}, err
	}
	columns := []string{
		"survey_id", "station_name", "latitude", "longitude", "date_time",
		"air_temp_ave", "air_temp_min", "air_temp_min_time",
		"air_temp_max", "air_temp_max_time", "barometric_pressure",
		"fog", "rainfall", "relative_humidity",
		"solar_radiation", "solar_radiation_max",
		"wind_dir", "wind_speed_ave", "wind_speed_min", "wind_speed_max",
		"wind_speed_max_time", "wind_speed_max_length", "wind_speed_max_dir",
		"wind_speed_std",
	}
	return s.fetchTable(ctx, columns, `
		select ws.survey_id, coalesce(ws.name, ''),
		       -ws.latitude, ws.longitude, wd.date_time,
		       wd.air_temp_ave, wd.air_temp_min, wd.air_temp_min_time,
		       wd.air_temp_max, wd.air_temp_max_time, wd.barometric_pressure,
		       wd.fog, wd.rainfall, wd.relative_humidity,
		       wd.solar_radiation, wd.solar_radiation_max,
		       wd.wind_dir, wd.wind_speed_ave, wd.wind_speed_min, wd.wind_speed_max,
		       wd.wind_speed_max_time, wd.wind_speed_max_length, wd.wind_speed_max_dir,
		       wd.wind_speed_std
		from wet_station ws
		join wet_data wd on wd.station_id = ws.station_id
		where ws.survey_id = $1
		order by ws.station_id, wd.date_time`, surveyID)
}

// WavesDownload projects the wave-recorder spectral series.
func (s *Store) WavesDownload(ctx context.Context, surveyID string) (survey.Table, error) {
	if err := s.requireStationSurvey(ctx, "wav_station", surveyID); err != nil {
		return survey.Table{}, err
	}
	columns := []string{
		"survey_id", "station_name", "latitude", "longitude",
		"instrument_depth", "water_depth", "date_time",
		"number_readings", "record_length", "deltaf", "deltat", "frequency",
		"qp", "tb", "te", "wap", "eps", "hmo", "h1", "hs", "hmax",
		"tc", "tp", "tz", "ave_direction", "ave_spreading",
		"instrument_code", "mean_direction", "mean_spreading",
	}
	return s.fetchTable(ctx, columns, `
		select ws.survey_id, coalesce(ws.name, ''),
		       -ws.latitude, ws.longitude,
		       ws.instrument_depth, ws.water_depth, wd.date_time,
		       wd.number_readings, wd.record_length, wd.deltaf, wd.deltat, wd.frequency,
		       wd.qp, wd.tb, wd.te, wd.wap, wd.eps, wd.hmo, wd.h1, wd.hs, wd.hmax,
		       wd.tc, wd.tp, wd.tz, wd.ave_direction, wd.ave_spreading,
		       wd.instrument_code, wd.mean_direction, wd.mean_spreading
		from wav_station ws
		join wav_data wd on wd.station_id = ws.station_id
		where ws.survey_id = $1
		order by ws.station_id, wd.date_time`, surveyID)
}

func (s *Store) requireSurvey(ctx context.Context, surveyID string) error {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`select exists(select 1 from inventory where survey_id = $1)`, surveyID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("pg: survey check: %w", err)
	}
	if !exists {
		return survey.ErrNotFound
	}
	return nil
}

func (s *Store) requireCurrentsSurvey(ctx context.Context, surveyID string) error {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`select exists(select 1 from cur_mooring where survey_id = $1)`, surveyID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("pg: mooring check: %w", err)
	}
	if !exists {
		return survey.ErrNotFound
	}
	return nil
}

// requireStationSurvey checks survey existence against one of the typed
// station tables (wet_station, wav_station). The table name is always a
// compile-time constant, never request input.
func (s *Store) requireStationSurvey(ctx context.Context, table, surveyID string) error {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`select exists(select 1 from `+table+` where survey_id = $1)`, surveyID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("pg: %s check: %w", table, err)
	}
	if !exists {
		return survey.ErrNotFound
	}
	return nil
}

// fetchTable runs a projection and captures every column generically. Rows
// come back in whatever Go types the driver chooses; the CSV layer is
// responsible for formatting.
func (s *Store) fetchTable(ctx context.Context, columns []string, query string, args ...any) (survey.Table, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return survey.Table{}, fmt.Errorf("pg: download query: %w", err)
	}
	defer rows.Close()

	t := survey.Table{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return survey.Table{}, fmt.Errorf("pg: download scan: %w", err)
		}
		t.Rows = append(t.Rows, values)
	}
	return t, rows.Err()
}
