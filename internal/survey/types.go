// Package survey holds the domain types and pure query-composition logic of
// the SADCO survey API: search filters, predicate fragments, pagination
// math and the data-availability rollup. Everything here is side-effect
// free; the pg store executes the composed queries.
package survey

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no survey or record matches the requested id.
var ErrNotFound = errors.New("survey: not found")

// Bounds is a user-supplied bounding box in true signed latitude terms
// (north positive). Nil fields impose no constraint.
type Bounds struct {
	North *float64
	South *float64
	East  *float64
	West  *float64
}

// Interval is a half-open-ended date range. Nil sides impose no constraint.
type Interval struct {
	Start *time.Time
	End   *time.Time
}

// SearchFilter collects the survey search parameters. Built once per request
// from validated query parameters and never mutated afterwards.
type SearchFilter struct {
	SurveyID           string // prefix match
	SamplingDeviceCode *int
	SurveyTypeCode     string
	Bounds             Bounds
	Interval           Interval
	ExclusiveRegion    bool
	ExclusiveInterval  bool
	Page               int
	Size               int
}

// VosFilter narrows the VOS observation tables. VOS records are points in
// space and time, never footprints.
type VosFilter struct {
	Bounds            Bounds
	Interval          Interval
	ExclusiveRegion   bool
	ExclusiveInterval bool
}

// SurveyListItem is the row projection used by list and search responses.
type SurveyListItem struct {
	ID             string     `json:"id"`
	ProjectName    string     `json:"project_name"`
	StationName    string     `json:"station_name"`
	PlatformName   string     `json:"platform_name"`
	ChiefScientist string     `json:"chief_scientist"`
	Institute      string     `json:"institute"`
	DateStart      *time.Time `json:"date_start"`
	DateEnd        *time.Time `json:"date_end"`
	SurveyType     string     `json:"survey_type"`
}

// FacetCount is one facet bucket: a lookup code, its display name and the
// number of distinct surveys it covers.
type FacetCount struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// SearchResult is the full response of a faceted survey search. Facets
// reflect the filterable universe, not the current page.
type SearchResult struct {
	Items           []SurveyListItem `json:"items"`
	SamplingDevices []FacetCount     `json:"sampling_devices"`
	SurveyTypes     []FacetCount     `json:"survey_types"`
	Total           int64            `json:"total"`
	Page            int              `json:"page"`
	Pages           int              `json:"pages"`
}

// ListResult is the plain paginated survey list.
type ListResult struct {
	Items []SurveyListItem `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Pages int              `json:"pages"`
}

// StationPoint is a sampling location in true signed coordinates.
type StationPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Survey is the full survey detail in true signed latitude terms; the
// stored sign inversion is undone at the data-access boundary.
type Survey struct {
	ID             string         `json:"id"`
	ProjectName    string         `json:"project_name"`
	StationName    string         `json:"station_name"`
	PlatformName   string         `json:"platform_name"`
	ChiefScientist string         `json:"chief_scientist"`
	Institute      string         `json:"institute"`
	DateStart      *time.Time     `json:"date_start"`
	DateEnd        *time.Time     `json:"date_end"`
	LatNorth       *float64       `json:"lat_north"`
	LatSouth       *float64       `json:"lat_south"`
	LongWest       *float64       `json:"long_west"`
	LongEast       *float64       `json:"long_east"`
	SurveyType     string         `json:"survey_type"`
	Stations       []StationPoint `json:"stations"`
}

// HydroSurvey is a survey detail together with its data-type availability.
type HydroSurvey struct {
	Survey
	DataTypes *DataTypes `json:"data_types"`
}

// Table is a flat, ordered result set handed to the CSV/ZIP serializer.
type Table struct {
	Columns []string
	Rows    [][]any
}

// VosSearchResult reports the record count across the VOS tables.
type VosSearchResult struct {
	Total int64 `json:"total"`
}

// Service is the query surface the web layer depends on. The pg store is
// the production implementation.
type Service interface {
	List(ctx context.Context, page, size int) (ListResult, error)
	Search(ctx context.Context, f SearchFilter) (SearchResult, error)
	Get(ctx context.Context, surveyID string) (Survey, error)
	HydroDetail(ctx context.Context, surveyID string) (HydroSurvey, error)

	HydroDownload(ctx context.Context, surveyID string, category DataCategory) (Table, error)
	CurrentsDownload(ctx context.Context, surveyID string) (Table, error)
	WeatherDownload(ctx context.Context, surveyID string) (Table, error)
	WavesDownload(ctx context.Context, surveyID string) (Table, error)

	VosSearch(ctx context.Context, f VosFilter) (VosSearchResult, error)
	VosDownload(ctx context.Context, f VosFilter) (Table, error)
}

// PathSurveyID maps a survey id as it appears in a URL path segment to its
// stored form: the store uses '/' inside survey ids, which cannot appear in
// a path segment, so clients substitute '-'.
func PathSurveyID(pathID string) string {
	out := []byte(pathID)
	for i := range out {
		if out[i] == '-' {
			out[i] = '/'
		}
	}
	return string(out)
}
