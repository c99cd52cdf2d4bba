package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"sadco.org/internal/auth"
	"sadco.org/internal/download"
	"sadco.org/internal/obs"
	"sadco.org/internal/scope"
	"sadco.org/internal/survey"
)

// downloadScopes maps the survey-type path segment to the scope its
// download requires. Every one of these is constrainable per survey.
var downloadScopes = map[survey.SurveyTypeName]scope.Scope{
	survey.TypeHydro:        scope.HydroDownload,
	survey.TypeCurrents:     scope.CurrentsDownload,
	survey.TypeWeather:      scope.WeatherDownload,
	survey.TypeWaves:        scope.WavesDownload,
	survey.TypeUTR:          scope.UTRDownload,
	survey.TypeEchoSounding: scope.EchoSoundingDownload,
}

func (a *API) handleSurveyDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/survey/download/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		writeError(w, r, http.StatusNotFound, "not found")
		return
	}
	surveyType := survey.SurveyTypeName(parts[0])
	required, ok := downloadScopes[surveyType]
	if !ok {
		writeError(w, r, http.StatusNotFound, "unknown survey type")
		return
	}
	surveyID := survey.PathSurveyID(parts[1])

	who, ok := a.authorize(w, r, required)
	if !ok {
		return
	}
	if err := who.EnforceConstraint(auth.ObjectSet(surveyID)); err != nil {
		handleServiceError(w, r, err)
		return
	}

	var (
		table   survey.Table
		variant string
		params  = map[string]string{"survey_id": surveyID}
		err     error
	)
	switch surveyType {
	case survey.TypeHydro:
		category, cerr := survey.ParseDataCategory(r.URL.Query().Get("data_type"))
		if cerr != nil {
			handleServiceError(w, r, cerr)
			return
		}
		params["data_type"] = string(category)
		variant = string(category)
		table, err = a.surveys.HydroDownload(r.Context(), surveyID, category)
	case survey.TypeCurrents, survey.TypeUTR:
		// UTR moorings live in the same tables as current meter arrays.
		variant = string(surveyType)
		table, err = a.surveys.CurrentsDownload(r.Context(), surveyID)
	case survey.TypeWeather:
		variant = string(surveyType)
		table, err = a.surveys.WeatherDownload(r.Context(), surveyID)
	case survey.TypeWaves:
		variant = string(surveyType)
		table, err = a.surveys.WavesDownload(r.Context(), surveyID)
	case survey.TypeEchoSounding:
		// Echo-sounding data was never migrated into the relational store.
		writeError(w, r, http.StatusNotImplemented, "echo-sounding downloads are not available")
		return
	default:
		writeError(w, r, http.StatusNotFound, "unknown survey type")
		return
	}
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	a.serveArchive(w, r, who, table, surveyID, variant, string(surveyType), params)
}

func (a *API) handleVosSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := a.authorize(w, r, scope.VosRead); !ok {
		return
	}

	params, err := parseSearchParams(r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res, err := a.surveys.VosSearch(r.Context(), vosFilter(params))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) handleVosDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	who, ok := a.authorize(w, r, scope.VosDownload)
	if !ok {
		return
	}
	// VOS observations have no per-survey identity, so only an
	// unconstrained grant may export them.
	if err := who.EnforceConstraint(auth.Wildcard()); err != nil {
		handleServiceError(w, r, err)
		return
	}

	params, err := parseSearchParams(r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	table, err := a.surveys.VosDownload(r.Context(), vosFilter(params))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	auditParams := map[string]string{
		"exclusive_region":   strconv.FormatBool(params.ExclusiveRegion),
		"exclusive_interval": strconv.FormatBool(params.ExclusiveInterval),
	}
	for _, k := range []string{"north_bound", "south_bound", "east_bound", "west_bound", "start_date", "end_date"} {
		if v := r.URL.Query().Get(k); v != "" {
			auditParams[k] = v
		}
	}
	a.serveArchive(w, r, who, table, "vos", "records", string(survey.TypeVos), auditParams)
}

func vosFilter(p searchParams) survey.VosFilter {
	f := p.filter()
	return survey.VosFilter{
		Bounds:            f.Bounds,
		Interval:          f.Interval,
		ExclusiveRegion:   f.ExclusiveRegion,
		ExclusiveInterval: f.ExclusiveInterval,
	}
}

// serveArchive zips the table, records the audit row and streams the
// archive. The audit insert is best-effort and never blocks the response.
func (a *API) serveArchive(w http.ResponseWriter, r *http.Request, who auth.Authorized,
	table survey.Table, surveyID, variant, surveyType string, params map[string]string) {

	data, info, err := download.ZipCSV(table, surveyID, variant)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	obs.ObserveDownload(surveyType, info.Size)
	if a.audits != nil {
		a.audits.Record(r.Context(), who, info, surveyType, params)
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+info.Name+`"`)
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
