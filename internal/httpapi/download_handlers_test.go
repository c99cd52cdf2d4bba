package httpapi

import (
	"archive/zip"
	"bytes"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"sadco.org/internal/audit"
	"sadco.org/internal/auth"
	"sadco.org/internal/scope"
	"sadco.org/internal/survey"
)

func sampleTable() survey.Table {
	return survey.Table{
		Columns: []string{"survey_id", "temperature"},
		Rows:    [][]any{{"1999/0001", 14.5}},
	}
}

func TestHydroDownloadConstrainedGrant(t *testing.T) {
	svc := &fakeService{table: sampleTable()}
	api := newTestAPI(svc, auth.Permissions{
		scope.HydroDownload: auth.ObjectSet("1999/0001"),
	})

	rec := doRequest(api, http.MethodGet,
		"/survey/download/hydro/1999-0001?data_type=water", "token")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastSurveyID != "1999/0001" || svc.lastCategory != survey.CategoryWater {
		t.Fatalf("dispatch wrong: id=%q category=%q", svc.lastSurveyID, svc.lastCategory)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/zip" {
		t.Fatalf("unexpected content type: %s", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="survey_1999-0001_water.zip"` {
		t.Fatalf("unexpected disposition: %s", cd)
	}

	body := rec.Body.Bytes()
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		t.Fatalf("response is not a zip: %v", err)
	}
	if len(zr.File) != 1 || zr.File[0].Name != "survey_1999-0001.csv" {
		t.Fatalf("unexpected archive entry: %+v", zr.File)
	}
}

func TestHydroDownloadOutsideGrantForbidden(t *testing.T) {
	svc := &fakeService{table: sampleTable()}
	api := newTestAPI(svc, auth.Permissions{
		scope.HydroDownload: auth.ObjectSet("1999/0001"),
	})

	rec := doRequest(api, http.MethodGet,
		"/survey/download/hydro/2000-0002?data_type=water", "token")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if svc.lastSurveyID != "" {
		t.Fatalf("service must not be reached on a denied constraint")
	}
}

func TestHydroDownloadUnknownCategory(t *testing.T) {
	api := newTestAPI(&fakeService{table: sampleTable()}, auth.Permissions{
		scope.HydroDownload: auth.Wildcard(),
	})

	rec := doRequest(api, http.MethodGet,
		"/survey/download/hydro/1999-0001?data_type=plankton", "token")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestUTRDownloadUsesMooringProjection(t *testing.T) {
	svc := &fakeService{table: sampleTable()}
	api := newTestAPI(svc, auth.Permissions{
		scope.UTRDownload: auth.Wildcard(),
	})

	rec := doRequest(api, http.MethodGet, "/survey/download/utr/1999-0001", "token")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastSurveyID != "1999/0001" {
		t.Fatalf("currents projection not used: %q", svc.lastSurveyID)
	}
}

func TestEchoSoundingDownloadNotImplemented(t *testing.T) {
	api := newTestAPI(&fakeService{}, auth.Permissions{
		scope.EchoSoundingDownload: auth.Wildcard(),
	})

	rec := doRequest(api, http.MethodGet, "/survey/download/echo-sounding/1999-0001", "token")
	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("expected 501, got %d", rec.Code)
	}
}

func TestUnknownSurveyTypeDownload(t *testing.T) {
	api := newTestAPI(&fakeService{}, allReadGrants())

	rec := doRequest(api, http.MethodGet, "/survey/download/plankton/1999-0001", "token")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestVosDownloadRequiresUnconstrainedGrant(t *testing.T) {
	api := newTestAPI(&fakeService{table: sampleTable()}, auth.Permissions{
		scope.VosDownload: auth.ObjectSet("1999/0001"),
	})

	rec := doRequest(api, http.MethodGet, "/vos/download", "token")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for a finite vos grant, got %d", rec.Code)
	}
}

func TestVosDownloadWildcardGrant(t *testing.T) {
	svc := &fakeService{table: sampleTable()}
	api := newTestAPI(svc, auth.Permissions{
		scope.VosDownload: auth.Wildcard(),
	})

	rec := doRequest(api, http.MethodGet, "/vos/download?north_bound=-20", "token")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastVosFilter.Bounds.North == nil {
		t.Fatalf("vos filter not propagated")
	}
}

func TestVosDownloadAuditsPolarityFlags(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("insert into download_audit").
		WithArgs("web-client", "", "vos",
			`{"exclusive_interval":"false","exclusive_region":"true","north_bound":"-20"}`,
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	svc := &fakeService{table: sampleTable()}
	authorizer := auth.NewAuthorizer(fakeIntrospector{}, fakeGrants{client: auth.Permissions{
		scope.VosDownload: auth.Wildcard(),
	}})
	api := New(svc, authorizer, audit.NewRecorder(db), ReadyProbe{}, "test")

	rec := doRequest(api, http.MethodGet, "/vos/download?north_bound=-20&exclusive_region=true", "token")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("audit row not recorded: %v", err)
	}
}

func TestDownloadRecordsAudit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("insert into download_audit").
		WithArgs("web-client", "", "waves",
			`{"survey_id":"1999/0001"}`, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	svc := &fakeService{table: sampleTable()}
	authorizer := auth.NewAuthorizer(fakeIntrospector{}, fakeGrants{client: auth.Permissions{
		scope.WavesDownload: auth.Wildcard(),
	}})
	api := New(svc, authorizer, audit.NewRecorder(db), ReadyProbe{}, "test")

	rec := doRequest(api, http.MethodGet, "/survey/download/waves/1999-0001", "token")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("audit row not recorded: %v", err)
	}
}

func TestMyDownloadsRequiresScope(t *testing.T) {
	api := newTestAPI(&fakeService{}, auth.Permissions{})

	rec := doRequest(api, http.MethodGet, "/download/my_downloads", "token")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestMyDownloadsLists(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("select count.*. from download_audit where client_id").
		WithArgs("web-client", "").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("order by timestamp desc").
		WithArgs("web-client", "", 0, 50).
		WillReturnRows(sqlmock.NewRows([]string{
			"timestamp", "client_id", "user_id", "survey_type", "parameters",
			"download_file_size", "download_file_checksum",
		}))

	authorizer := auth.NewAuthorizer(fakeIntrospector{}, fakeGrants{client: auth.Permissions{
		scope.DownloadRead: auth.Wildcard(),
	}})
	api := New(&fakeService{}, authorizer, audit.NewRecorder(db), ReadyProbe{}, "test")

	rec := doRequest(api, http.MethodGet, "/download/my_downloads", "token")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
