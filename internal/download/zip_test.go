package download

import (
	"archive/zip"
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"io"
	"strings"
	"testing"
	"time"

	"sadco.org/internal/survey"
)

func TestZipCSVRoundTrip(t *testing.T) {
	table := survey.Table{
		Columns: []string{"survey_id", "spldattim", "temperature", "salinity", "note"},
		Rows: [][]any{
			{"1999/0001", time.Date(1999, 2, 1, 6, 30, 0, 0, time.UTC), 14.25, nil, []byte("ok")},
			{"1999/0001", nil, int64(-3), true, "quoted, comma"},
		},
	}

	data, info, err := ZipCSV(table, "1999/0001", "water nutrients")
	if err != nil {
		t.Fatalf("ZipCSV: %v", err)
	}
	if info.Name != "survey_1999-0001_water_nutrients.zip" {
		t.Fatalf("unexpected archive name: %s", info.Name)
	}
	if info.Size != int64(len(data)) {
		t.Fatalf("size mismatch: info=%d actual=%d", info.Size, len(data))
	}
	sum := md5.Sum(data)
	if info.Checksum != hex.EncodeToString(sum[:]) {
		t.Fatalf("checksum mismatch")
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip.NewReader: %v", err)
	}
	if len(zr.File) != 1 || zr.File[0].Name != "survey_1999-0001.csv" {
		t.Fatalf("unexpected archive contents: %+v", zr.File)
	}

	rc, err := zr.File[0].Open()
	if err != nil {
		t.Fatalf("open entry: %v", err)
	}
	defer rc.Close()
	body, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read entry: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus two rows, got %d lines", len(lines))
	}
	if lines[0] != "survey_id,spldattim,temperature,salinity,note" {
		t.Fatalf("unexpected header: %s", lines[0])
	}
	if lines[1] != "1999/0001,1999-02-01 06:30:00,14.25,,ok" {
		t.Fatalf("unexpected first row: %s", lines[1])
	}
	if lines[2] != `1999/0001,,-3,true,"quoted, comma"` {
		t.Fatalf("unexpected second row: %s", lines[2])
	}
}

func TestZipCSVEmptyTable(t *testing.T) {
	table := survey.Table{Columns: []string{"a", "b"}}

	data, info, err := ZipCSV(table, "2000/0003", "currents")
	if err != nil {
		t.Fatalf("ZipCSV: %v", err)
	}
	if info.Size == 0 {
		t.Fatalf("archive must still contain the header")
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip.NewReader: %v", err)
	}
	rc, _ := zr.File[0].Open()
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if strings.TrimSpace(string(body)) != "a,b" {
		t.Fatalf("unexpected body: %q", body)
	}
}
