// Package download turns flat result tables into the zipped-CSV payloads
// served by the download endpoints, and reports the file metadata the audit
// trail records.
package download

import (
	"archive/zip"
	"bytes"
	"crypto/md5"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"sadco.org/internal/survey"
)

// FileInfo describes a produced archive for the audit trail.
type FileInfo struct {
	Name     string
	Size     int64
	Checksum string // MD5, hex
}

// ArchiveName builds the zip file name for one survey download; the inner
// CSV drops the variant suffix. Survey ids use '/' internally, which is
// replaced for filesystem safety.
func ArchiveName(surveyID, variant string) string {
	return "survey_" + sanitizeID(surveyID) + "_" + sanitizeVariant(variant) + ".zip"
}

func csvName(surveyID string) string {
	return "survey_" + sanitizeID(surveyID) + ".csv"
}

func sanitizeID(surveyID string) string {
	out := []byte(surveyID)
	for i := range out {
		if out[i] == '/' {
			out[i] = '-'
		}
	}
	return string(out)
}

func sanitizeVariant(variant string) string {
	out := []byte(variant)
	for i := range out {
		if out[i] == ' ' {
			out[i] = '_'
		}
	}
	return string(out)
}

// ZipCSV renders the table as a single CSV entry inside a zip archive and
// returns the archive bytes with their audit metadata.
func ZipCSV(t survey.Table, surveyID, variant string) ([]byte, FileInfo, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	entry, err := zw.Create(csvName(surveyID))
	if err != nil {
		return nil, FileInfo{}, fmt.Errorf("download: zip entry: %w", err)
	}

	cw := csv.NewWriter(entry)
	if err := cw.Write(t.Columns); err != nil {
		return nil, FileInfo{}, fmt.Errorf("download: csv header: %w", err)
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) {
				record[i] = formatValue(row[i])
			}
		}
		if err := cw.Write(record); err != nil {
			return nil, FileInfo{}, fmt.Errorf("download: csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, FileInfo{}, fmt.Errorf("download: csv flush: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, FileInfo{}, fmt.Errorf("download: zip close: %w", err)
	}

	sum := md5.Sum(buf.Bytes())
	info := FileInfo{
		Name:     ArchiveName(surveyID, variant),
		Size:     int64(buf.Len()),
		Checksum: hex.EncodeToString(sum[:]),
	}
	return buf.Bytes(), info, nil
}

// formatValue renders one driver-produced cell. Nulls become empty cells;
// floats keep their shortest round-trip form; timestamps use a stable
// second-resolution layout.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.UTC().Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(x)
	}
}
