package httpapi

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"sadco.org/internal/scope"
	"sadco.org/internal/survey"
)

const dateLayout = "2006-01-02"

// searchParams mirrors the search query string before conversion into a
// survey.SearchFilter. Everything arrives as text; ozzo validates the
// parsed values.
type searchParams struct {
	SurveyID           string
	SamplingDeviceCode *int
	SurveyTypeCode     string
	North              *float64
	South              *float64
	East               *float64
	West               *float64
	StartDate          string
	EndDate            string
	ExclusiveRegion    bool
	ExclusiveInterval  bool
	Page               int
	Size               int
}

func (p searchParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.North, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&p.South, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&p.East, validation.Min(-180.0), validation.Max(180.0)),
		validation.Field(&p.West, validation.Min(-180.0), validation.Max(180.0)),
		validation.Field(&p.StartDate, validation.Date(dateLayout)),
		validation.Field(&p.EndDate, validation.Date(dateLayout)),
		validation.Field(&p.Page, validation.Min(1)),
		validation.Field(&p.Size, validation.Min(0)),
	)
}

func parseSearchParams(q url.Values) (searchParams, error) {
	p := searchParams{
		SurveyID:       strings.TrimSpace(q.Get("survey_id")),
		SurveyTypeCode: strings.TrimSpace(q.Get("survey_type_code")),
		StartDate:      strings.TrimSpace(q.Get("start_date")),
		EndDate:        strings.TrimSpace(q.Get("end_date")),
		Page:           1,
		Size:           survey.DefaultPageSize,
	}

	var err error
	if p.SamplingDeviceCode, err = queryInt(q, "sampling_device_code"); err != nil {
		return p, err
	}
	if p.North, err = queryFloat(q, "north_bound"); err != nil {
		return p, err
	}
	if p.South, err = queryFloat(q, "south_bound"); err != nil {
		return p, err
	}
	if p.East, err = queryFloat(q, "east_bound"); err != nil {
		return p, err
	}
	if p.West, err = queryFloat(q, "west_bound"); err != nil {
		return p, err
	}
	if v, err := queryInt(q, "page"); err != nil {
		return p, err
	} else if v != nil {
		p.Page = *v
	}
	if v, err := queryInt(q, "size"); err != nil {
		return p, err
	} else if v != nil {
		p.Size = *v
	}
	p.ExclusiveRegion = queryBool(q, "exclusive_region")
	p.ExclusiveInterval = queryBool(q, "exclusive_interval")

	return p, p.Validate()
}

func (p searchParams) filter() survey.SearchFilter {
	f := survey.SearchFilter{
		SurveyID:           p.SurveyID,
		SamplingDeviceCode: p.SamplingDeviceCode,
		SurveyTypeCode:     p.SurveyTypeCode,
		Bounds:             survey.Bounds{North: p.North, South: p.South, East: p.East, West: p.West},
		ExclusiveRegion:    p.ExclusiveRegion,
		ExclusiveInterval:  p.ExclusiveInterval,
		Page:               p.Page,
		Size:               p.Size,
	}
	if p.StartDate != "" {
		t, _ := time.Parse(dateLayout, p.StartDate)
		f.Interval.Start = &t
	}
	if p.EndDate != "" {
		t, _ := time.Parse(dateLayout, p.EndDate)
		f.Interval.End = &t
	}
	return f
}

func queryFloat(q url.Values, key string) (*float64, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, validation.Errors{key: validation.NewError("validation_float", "must be a number")}
	}
	return &v, nil
}

func queryInt(q url.Values, key string) (*int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, validation.Errors{key: validation.NewError("validation_int", "must be an integer")}
	}
	return &v, nil
}

func queryBool(q url.Values, key string) bool {
	switch strings.ToLower(strings.TrimSpace(q.Get(key))) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func (a *API) handleSurveyList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := a.authorize(w, r, scope.SurveysRead); !ok {
		return
	}

	page, size := 1, survey.DefaultPageSize
	if v, err := queryInt(r.URL.Query(), "page"); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	} else if v != nil {
		page = *v
	}
	if v, err := queryInt(r.URL.Query(), "size"); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	} else if v != nil {
		size = *v
	}
	if page < 1 || size < 0 {
		writeError(w, r, http.StatusBadRequest, "page must be >= 1 and size >= 0")
		return
	}

	res, err := a.surveys.List(r.Context(), page, size)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) handleSurveySearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := a.authorize(w, r, scope.SurveysRead); !ok {
		return
	}

	params, err := parseSearchParams(r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res, err := a.surveys.Search(r.Context(), params.filter())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) handleSurveyDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/survey/surveys/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "not found")
		return
	}
	if _, ok := a.authorize(w, r, scope.SurveysRead); !ok {
		return
	}

	res, err := a.surveys.Get(r.Context(), survey.PathSurveyID(id))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) handleHydroDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/survey/hydro/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "not found")
		return
	}
	if _, ok := a.authorize(w, r, scope.HydroRead); !ok {
		return
	}

	res, err := a.surveys.HydroDetail(r.Context(), survey.PathSurveyID(id))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
