package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/iwvelando/payment-planner/internal/planner"
	"github.com/iwvelando/payment-planner/pkg/testutil"
)

func vehicleReport(t *testing.T) planner.Report {
	t.Helper()
	plan := testutil.ExactVehiclePlan(t)
	if err := plan.SetStartMonth("2026-01"); err != nil {
		t.Fatalf("SetStartMonth: %v", err)
	}
	report, err := plan.Report()
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	return report
}

func TestPretty(t *testing.T) {
	var buf bytes.Buffer
	if err := Pretty(&buf, vehicleReport(t)); err != nil {
		t.Fatalf("Pretty: %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"--- Payment plan Family car (vehicle, create) ---",
		"Target            | ₺800.000,00",
		"Remaining         | ₺0,00 (exact)",
		"2026-01-2026-12",
		"₺25.000,00",
		"Total repayment   | ₺684.000,00",
		"Affordable        | yes",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Pretty output missing %q:\n%s", want, output)
		}
	}
	if strings.Contains(output, "Title transfer") {
		t.Errorf("vehicle report should not list housing expenses")
	}
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := CSV(&buf, vehicleReport(t)); err != nil {
		t.Fatalf("CSV: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header and 2 periods, got %d rows", len(rows))
	}
	if rows[0][0] != "start_month" {
		t.Errorf("unexpected header %v", rows[0])
	}
	if rows[1][5] != "25000.00" || rows[1][8] != "sufficient" {
		t.Errorf("first period = %v", rows[1])
	}
	if rows[2][0] != "13" || rows[2][1] != "36" || rows[2][5] != "16000.00" {
		t.Errorf("second period = %v", rows[2])
	}
}

func TestWrite(t *testing.T) {
	report := vehicleReport(t)

	tests := []struct {
		format      string
		expectError bool
		contentType string
	}{
		{format: "pretty", contentType: "text/plain; charset=utf-8"},
		{format: "csv", contentType: "text/csv; charset=utf-8"},
		{format: "json", contentType: "application/json"},
		{format: "xml", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			err := Write(&buf, tt.format, report)
			if tt.expectError {
				if err == nil {
					t.Errorf("expected error for format %s", tt.format)
				}
				return
			}
			if err != nil {
				t.Fatalf("Write(%s): %v", tt.format, err)
			}
			if buf.Len() == 0 {
				t.Errorf("Write(%s) produced no output", tt.format)
			}
			if got := ContentType(tt.format); got != tt.contentType {
				t.Errorf("ContentType(%s) = %s, want %s", tt.format, got, tt.contentType)
			}
		})
	}
}

func TestJSONKeepsDecimalStrings(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, vehicleReport(t)); err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if decoded["target"] != "800000" {
		t.Errorf("target = %v, want \"800000\"", decoded["target"])
	}
}
