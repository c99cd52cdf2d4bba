// Package audit persists the download trail: one row per served archive,
// attributed to the calling client and user. Recording is best-effort; a
// failed insert is logged and never fails the download it describes.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"sadco.org/internal/auth"
	"sadco.org/internal/download"
	"sadco.org/internal/obs"
)

// Entry is one recorded download.
type Entry struct {
	Timestamp  time.Time         `json:"timestamp"`
	ClientID   string            `json:"client_id"`
	UserID     string            `json:"user_id,omitempty"`
	SurveyType string            `json:"survey_type"`
	Parameters map[string]string `json:"parameters"`
	FileSize   int64             `json:"download_file_size"`
	Checksum   string            `json:"download_file_checksum"`
}

// ListResult is a page of audit entries.
type ListResult struct {
	Items []Entry `json:"items"`
	Total int64   `json:"total"`
	Page  int     `json:"page"`
	Pages int     `json:"pages"`
}

type Recorder struct {
	db *sql.DB
}

func NewRecorder(db *sql.DB) *Recorder { return &Recorder{db: db} }

// Record writes one audit row. Errors are swallowed after logging so the
// download response is never blocked by the trail.
func (r *Recorder) Record(ctx context.Context, who auth.Authorized, info download.FileInfo, surveyType string, params map[string]string) {
	raw, err := json.Marshal(params)
	if err != nil {
		raw = []byte("{}")
	}
	_, err = r.db.ExecContext(ctx, `
		insert into download_audit
			(timestamp, client_id, user_id, survey_type, parameters,
			 download_file_size, download_file_checksum)
		values (now(), $1, $2, $3, $4, $5, $6)`,
		who.ClientID, who.UserID, surveyType, string(raw), info.Size, info.Checksum)
	if err != nil {
		obs.LogRequest(map[string]any{
			"ts":    time.Now().UTC().Format(time.RFC3339Nano),
			"level": "error",
			"msg":   "download audit insert failed",
			"error": err.Error(),
		})
	}
}

// ListByCaller pages the audit rows of one client/user pair, newest first.
func (r *Recorder) ListByCaller(ctx context.Context, clientID, userID string, page, size int) (ListResult, error) {
	return r.list(ctx, `where client_id = $1 and user_id = $2`, []any{clientID, userID}, page, size)
}

// ListAll pages the whole audit trail, newest first.
func (r *Recorder) ListAll(ctx context.Context, page, size int) (ListResult, error) {
	return r.list(ctx, "", nil, page, size)
}

func (r *Recorder) list(ctx context.Context, where string, args []any, page, size int) (ListResult, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 50
	}
	clause := ""
	if where != "" {
		clause = " " + where
	}

	var total int64
	err := r.db.QueryRowContext(ctx, `select count(*) from download_audit`+clause, args...).Scan(&total)
	if err != nil {
		return ListResult{}, fmt.Errorf("audit: count: %w", err)
	}

	query := `
		select timestamp, client_id, user_id, survey_type, parameters,
		       download_file_size, download_file_checksum
		from download_audit` + clause +
		fmt.Sprintf(` order by timestamp desc offset $%d limit $%d`, len(args)+1, len(args)+2)
	args = append(args, (page-1)*size, size)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return ListResult{}, fmt.Errorf("audit: list: %w", err)
	}
	defer rows.Close()

	items := []Entry{}
	for rows.Next() {
		var (
			e   Entry
			raw string
		)
		if err := rows.Scan(&e.Timestamp, &e.ClientID, &e.UserID, &e.SurveyType,
			&raw, &e.FileSize, &e.Checksum); err != nil {
			return ListResult{}, fmt.Errorf("audit: scan: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &e.Parameters); err != nil {
			e.Parameters = map[string]string{}
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return ListResult{}, err
	}

	pages := int((total + int64(size) - 1) / int64(size))
	return ListResult{Items: items, Total: total, Page: page, Pages: pages}, nil
}
