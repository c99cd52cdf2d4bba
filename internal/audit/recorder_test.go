package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"sadco.org/internal/auth"
	"sadco.org/internal/download"
)

func newMockRecorder(t *testing.T) (*Recorder, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewRecorder(db), mock
}

func TestRecordInsertsAttributedRow(t *testing.T) {
	r, mock := newMockRecorder(t)

	who := auth.Authorized{ClientID: "web-client", UserID: "marine-biologist"}
	info := download.FileInfo{Size: 2048, Checksum: "abc123"}

	mock.ExpectExec("insert into download_audit").
		WithArgs("web-client", "marine-biologist", "hydro",
			`{"data_type":"water","survey_id":"1999/0001"}`, int64(2048), "abc123").
		WillReturnResult(sqlmock.NewResult(1, 1))

	r.Record(context.Background(), who, info, "hydro",
		map[string]string{"survey_id": "1999/0001", "data_type": "water"})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRecordSwallowsInsertFailure(t *testing.T) {
	r, mock := newMockRecorder(t)

	mock.ExpectExec("insert into download_audit").
		WillReturnError(errors.New("connection refused"))

	// Must not panic or surface the error.
	r.Record(context.Background(), auth.Authorized{ClientID: "c"},
		download.FileInfo{}, "waves", nil)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListByCallerPages(t *testing.T) {
	r, mock := newMockRecorder(t)

	mock.ExpectQuery("select count.*. from download_audit where client_id").
		WithArgs("web-client", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery("order by timestamp desc").
		WithArgs("web-client", "u1", 0, 2).
		WillReturnRows(sqlmock.NewRows([]string{
			"timestamp", "client_id", "user_id", "survey_type", "parameters",
			"download_file_size", "download_file_checksum",
		}).AddRow(time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC), "web-client", "u1",
			"hydro", `{"survey_id":"1999/0001"}`, 2048, "abc").
			AddRow(time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC), "web-client", "u1",
				"waves", `{}`, 99, "def"))

	res, err := r.ListByCaller(context.Background(), "web-client", "u1", 1, 2)
	if err != nil {
		t.Fatalf("ListByCaller: %v", err)
	}
	if res.Total != 3 || res.Pages != 2 || len(res.Items) != 2 {
		t.Fatalf("unexpected page: total=%d pages=%d items=%d", res.Total, res.Pages, len(res.Items))
	}
	if res.Items[0].Parameters["survey_id"] != "1999/0001" {
		t.Fatalf("parameters not decoded: %+v", res.Items[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListAll(t *testing.T) {
	r, mock := newMockRecorder(t)

	mock.ExpectQuery("select count.*. from download_audit").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("order by timestamp desc").
		WithArgs(0, 50).
		WillReturnRows(sqlmock.NewRows([]string{
			"timestamp", "client_id", "user_id", "survey_type", "parameters",
			"download_file_size", "download_file_checksum",
		}))

	res, err := r.ListAll(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if res.Total != 0 || res.Pages != 0 || len(res.Items) != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
}
