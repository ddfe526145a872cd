package planner

import (
	"errors"
	"testing"
)

func TestRankOffersOrdersByRate(t *testing.T) {
	records := []OfferRecord{
		{LenderCode: "akbank", RateText: "3,15", InstallmentText: "10.500,00", TotalText: "126.000,00"},
		{LenderCode: "garanti-bbva", RateText: "1,89", InstallmentText: "9.392,10", TotalText: "112.705,20"},
		{LenderCode: "broken-bank", RateText: "abc", InstallmentText: "1", TotalText: "1"},
		{LenderCode: "is-bankasi", RateText: "2,89", InstallmentText: "10.000,00", TotalText: "120.000,00"},
	}

	offers, errs := RankOffers(records, dec("100000"), 12, DefaultLenders)

	wantRates := []string{"1.89", "2.89", "3.15"}
	if len(offers) != len(wantRates) {
		t.Fatalf("got %d offers, expected %d", len(offers), len(wantRates))
	}
	for i, want := range wantRates {
		if !offers[i].Rate.Equal(dec(want)) {
			t.Errorf("offer %d rate = %s, expected %s", i, offers[i].Rate, want)
		}
	}
	if offers[0].LenderName != "Garanti BBVA" {
		t.Errorf("LenderName = %q, expected Garanti BBVA", offers[0].LenderName)
	}
	if !offers[0].MonthlyInstallment.Equal(dec("9392.10")) {
		t.Errorf("MonthlyInstallment = %s, expected 9392.10", offers[0].MonthlyInstallment)
	}

	if len(errs) != 1 {
		t.Fatalf("got %d errors, expected 1", len(errs))
	}
	var malformed *MalformedQuoteError
	if !errors.As(errs[0], &malformed) || malformed.Field != "rate" || malformed.Text != "abc" {
		t.Errorf("unexpected error %v", errs[0])
	}
}

func TestRankOffersIsStable(t *testing.T) {
	records := []OfferRecord{
		{LenderCode: "first", RateText: "2,00", InstallmentText: "1", TotalText: "12"},
		{LenderCode: "second", RateText: "1,50", InstallmentText: "1", TotalText: "12"},
		{LenderCode: "third", RateText: "2,00", InstallmentText: "1", TotalText: "12"},
	}

	offers, _ := RankOffers(records, dec("1000"), 12, nil)

	want := []string{"second", "first", "third"}
	for i, code := range want {
		if offers[i].LenderCode != code {
			t.Errorf("position %d = %s, expected %s", i, offers[i].LenderCode, code)
		}
	}
}

func TestParseOfferDerivesMissingAmounts(t *testing.T) {
	offer, err := ParseOffer(OfferRecord{LenderCode: "ziraat-bankasi", RateText: "0"}, dec("120000"), 12, DefaultLenders)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !offer.MonthlyInstallment.Equal(dec("10000")) {
		t.Errorf("MonthlyInstallment = %s, expected 10000", offer.MonthlyInstallment)
	}
	if !offer.TotalRepayment.Equal(dec("120000")) {
		t.Errorf("TotalRepayment = %s, expected 120000", offer.TotalRepayment)
	}
}

func TestParseOfferMalformedFields(t *testing.T) {
	tests := []struct {
		name   string
		record OfferRecord
		field  string
	}{
		{"empty rate", OfferRecord{LenderCode: "teb", RateText: ""}, "rate"},
		{"negative rate", OfferRecord{LenderCode: "teb", RateText: "-1,00"}, "rate"},
		{"dotted rate", OfferRecord{LenderCode: "teb", RateText: "1.890"}, "rate"},
		{"rate over 100 percent", OfferRecord{LenderCode: "teb", RateText: "100,01"}, "rate"},
		{"bad installment", OfferRecord{LenderCode: "teb", RateText: "1,00", InstallmentText: "x"}, "installment"},
		{"bad total", OfferRecord{LenderCode: "teb", RateText: "1,00", InstallmentText: "100", TotalText: "1,2,3"}, "total"},
		{"no lender", OfferRecord{RateText: "1,00"}, "lenderCode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOffer(tt.record, dec("1000"), 12, DefaultLenders)
			var malformed *MalformedQuoteError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected MalformedQuoteError, got %v", err)
			}
			if malformed.Field != tt.field {
				t.Errorf("Field = %s, expected %s", malformed.Field, tt.field)
			}
		})
	}
}

func TestParseOfferAcceptsRateAtBound(t *testing.T) {
	offer, err := ParseOffer(OfferRecord{LenderCode: "teb", RateText: "100", InstallmentText: "100"}, dec("1000"), 12, DefaultLenders)
	if err != nil {
		t.Fatalf("ParseOffer: %v", err)
	}
	if !offer.Rate.Equal(dec("100")) {
		t.Errorf("Rate = %s, expected 100", offer.Rate)
	}
}

func TestLenderDirectoryDisplayName(t *testing.T) {
	names := DefaultLenders.Merge(map[string]string{"Yerel-Banka": "Yerel Bankası A.Ş."})

	tests := []struct {
		code     string
		expected string
	}{
		{"is-bankasi", "İş Bankası"},
		{"GARANTI-BBVA", "Garanti BBVA"},
		{"yerel-banka", "Yerel Bankası A.Ş."},
		{"yeni-banka", "Yeni Banka"},
		{"some-bank-x", "Some Bank X"},
	}

	for _, tt := range tests {
		if got := names.DisplayName(tt.code); got != tt.expected {
			t.Errorf("DisplayName(%q) = %q, expected %q", tt.code, got, tt.expected)
		}
	}
}
