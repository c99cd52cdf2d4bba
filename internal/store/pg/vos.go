package pg

import (
	"context"
	"fmt"
	"strings"

	"sadco.org/internal/survey"
)

// vosTables are the five historical VOS load generations. They share one
// shape; searches and downloads run over their union.
var vosTables = []string{"vos_main", "vos_main2", "vos_main68", "vos_arch", "vos_arch2"}

var vosColumns = []string{
	"latitude", "longitude", "date_time", "daynull", "callsign",
	"country", "platform", "data_id", "quality_control", "source1",
	"load_id", "dupflag", "atmospheric_pressure",
	"surface_temperature", "surface_temperature_type",
	"drybulb", "wetbulb", "wetbulb_ice", "dewpoint",
	"cloud_amount", "cloud1", "cloud2", "cloud3", "cloud4", "cloud5",
	"visibility_code", "weather_code",
	"swell_direction", "swell_height", "swell_period",
	"wave_height", "wave_period",
	"wind_direction", "wind_speed", "wind_speed_type",
}

// vosWhere compiles the point filter once; per-table copies share the same
// predicate text because the tables share column names.
func vosWhere(f survey.VosFilter) *survey.Where {
	w := &survey.Where{}
	survey.AppendPoint(w, "v", f.Bounds, f.Interval)
	return w
}

func (s *Store) VosSearch(ctx context.Context, f survey.VosFilter) (survey.VosSearchResult, error) {
	parts := make([]string, len(vosTables))
	var args []any
	for i, table := range vosTables {
		// Arguments repeat per table; placeholders are renumbered so the
		// union's argument list stays positionally correct.
		tw := vosWhere(f)
		conds := tw.Conds()
		for j := range conds {
			conds[j] = renumber(conds[j], len(args))
		}
		parts[i] = "select count(*) as n from " + table + " v" + tw.Clause()
		args = append(args, tw.Args()...)
	}

	query := "select coalesce(sum(n), 0) from (" + strings.Join(parts, " union all ") + ") counts"

	var total int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return survey.VosSearchResult{}, fmt.Errorf("pg: vos count: %w", err)
	}
	return survey.VosSearchResult{Total: total}, nil
}

func (s *Store) VosDownload(ctx context.Context, f survey.VosFilter) (survey.Table, error) {
	parts := make([]string, len(vosTables))
	var args []any
	for i, table := range vosTables {
		tw := vosWhere(f)
		conds := tw.Conds()
		for j := range conds {
			conds[j] = renumber(conds[j], len(args))
		}
		parts[i] = "select -v.latitude as latitude, v.longitude, v." +
			strings.Join(vosColumns[2:], ", v.") + " from " + table + " v" + tw.Clause()
		args = append(args, tw.Args()...)
	}

	query := strings.Join(parts, " union all ") + " order by date_time"
	t, err := s.fetchTable(ctx, vosColumns, query, args...)
	if err != nil {
		return survey.Table{}, err
	}
	// A filter matching no observations is a miss, not an empty export.
	if len(t.Rows) == 0 {
		return survey.Table{}, survey.ErrNotFound
	}
	return t, nil
}

// renumber shifts the $N placeholders of one table's predicate so the
// union's argument list stays positionally correct.
func renumber(cond string, offset int) string {
	if offset == 0 {
		return cond
	}
	var b strings.Builder
	for i := 0; i < len(cond); i++ {
		if cond[i] != '$' {
			b.WriteByte(cond[i])
			continue
		}
		j := i + 1
		n := 0
		for j < len(cond) && cond[j] >= '0' && cond[j] <= '9' {
			n = n*10 + int(cond[j]-'0')
			j++
		}
		if j == i+1 {
			b.WriteByte('$')
			continue
		}
		fmt.Fprintf(&b, "$%d", n+offset)
		i = j - 1
	}
	return b.String()
}
