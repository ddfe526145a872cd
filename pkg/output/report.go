// Package output renders plan reports as text, CSV or JSON.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iwvelando/payment-planner/internal/planner"
	"github.com/iwvelando/payment-planner/pkg/constants"
	"github.com/iwvelando/payment-planner/pkg/format"
	"github.com/iwvelando/payment-planner/pkg/validation"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ContentType returns the MIME type of a report format.
func ContentType(outputFormat string) string {
	switch outputFormat {
	case constants.OutputFormatCSV:
		return "text/csv; charset=utf-8"
	case constants.OutputFormatJSON:
		return "application/json"
	}
	return "text/plain; charset=utf-8"
}

// Write renders the report in the requested format.
func Write(w io.Writer, outputFormat string, report planner.Report) error {
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return err
	}
	switch outputFormat {
	case constants.OutputFormatCSV:
		return CSV(w, report)
	case constants.OutputFormatJSON:
		return JSON(w, report)
	}
	return Pretty(w, report)
}

// Pretty writes a human-readable summary of the report.
func Pretty(w io.Writer, report planner.Report) error {
	p := message.NewPrinter(language.Turkish)
	b := &strings.Builder{}

	name := report.Name
	if name == "" {
		name = "(unnamed)"
	}
	_, _ = p.Fprintf(b, "--- Payment plan %s (%s, %s) ---\n", name, report.Category, report.Mode)
	_, _ = p.Fprintf(b, "Price             | %s\n", format.Currency(report.Price))
	if !report.AuxiliaryExpenses.IsZero() {
		expenses := report.AuxiliaryExpenses
		_, _ = p.Fprintf(b, "Title transfer    | %s\n", format.Currency(expenses.TitleTransferFee))
		_, _ = p.Fprintf(b, "Loan allocation   | %s\n", format.Currency(expenses.LoanAllocationFee))
		_, _ = p.Fprintf(b, "Appraisal         | %s\n", format.Currency(expenses.AppraisalFee))
		_, _ = p.Fprintf(b, "Lien registration | %s\n", format.Currency(expenses.LienRegistrationFee))
		_, _ = p.Fprintf(b, "Hazard insurance  | %s\n", format.Currency(expenses.HazardInsurancePremium))
		_, _ = p.Fprintf(b, "Revolving fund    | %s\n", format.Currency(expenses.RevolvingFundFee))
		for _, custom := range expenses.Custom {
			_, _ = p.Fprintf(b, "%-17s | %s\n", custom.Description, format.Currency(custom.Amount))
		}
	}
	_, _ = p.Fprintf(b, "Target            | %s\n", format.Currency(report.Target))
	_, _ = p.Fprintf(b, "Financing         | %s\n", format.Currency(report.Reconciliation.TotalFinancing))
	_, _ = p.Fprintf(b, "Remaining         | %s (%s)\n", format.Currency(report.Reconciliation.Remaining), report.Reconciliation.State)

	if len(report.Timeline) > 0 {
		_, _ = p.Fprintf(b, "\nMonths    | Monthly payment | Credits\n")
		_, _ = p.Fprintf(b, "______    | _______________ | _______\n")
		for _, period := range report.Timeline {
			_, _ = p.Fprintf(b, "%-9s | %15s | %s\n",
				periodLabel(period), format.Currency(period.MonthlyObligation), strings.Join(period.Credits, ", "))
		}
		_, _ = p.Fprintf(b, "\nYear | Months | Total\n")
		for _, year := range report.Yearly {
			_, _ = p.Fprintf(b, "%4d | %6d | %s\n", year.Year, year.Months, format.Currency(year.Total))
		}
		_, _ = p.Fprintf(b, "Total repayment   | %s\n", format.Currency(report.TotalRepayment))
	}

	_, _ = p.Fprintf(b, "Monthly income    | %s\n", format.Currency(report.TotalIncome))
	affordable := "no"
	if report.Affordable {
		affordable = "yes"
	}
	_, _ = p.Fprintf(b, "Affordable        | %s\n", affordable)
	for _, warning := range report.Warnings {
		_, _ = p.Fprintf(b, "WARNING: %s\n", warning)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// CSV writes one row per repayment period with its affordability verdict.
func CSV(w io.Writer, report planner.Report) error {
	cw := csv.NewWriter(w)
	header := []string{"start_month", "end_month", "start_label", "end_label", "credits",
		"monthly_obligation", "income", "balance", "verdict"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i, period := range report.Timeline {
		row := []string{
			strconv.Itoa(period.StartMonth),
			strconv.Itoa(period.EndMonth),
			period.StartLabel,
			period.EndLabel,
			strings.Join(period.Credits, "; "),
			period.MonthlyObligation.StringFixed(2),
			report.TotalIncome.StringFixed(2),
			"",
			"",
		}
		if i < len(report.Affordability) {
			row[7] = report.Affordability[i].Balance.StringFixed(2)
			row[8] = string(report.Affordability[i].Verdict)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// JSON writes the report as indented JSON.
func JSON(w io.Writer, report planner.Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

func periodLabel(period planner.RepaymentPeriod) string {
	if period.StartLabel != "" {
		return period.StartLabel + "-" + period.EndLabel
	}
	return fmt.Sprintf("%d-%d", period.StartMonth, period.EndMonth)
}
