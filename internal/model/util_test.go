package model

import (
	"encoding/json"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestAmountsMarshalAsJSONNumbers(t *testing.T) {
	payment := Payment{
		PaymentNumber: "PAY-20260828-ABCDEF",
		Amount:        decimal.RequireFromString("26.50"),
	}
	data, err := json.Marshal(payment)
	if err != nil {
		t.Fatalf("failed to marshal payment: %v", err)
	}
	if !strings.Contains(string(data), `"amount":26.5`) {
		t.Errorf("expected amount as a bare JSON number, got %s", data)
	}

	var decoded struct {
		Amount float64 `json:"amount"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("amount is not readable as a number: %v", err)
	}
	if decoded.Amount != 26.5 {
		t.Errorf("expected 26.5, got %v", decoded.Amount)
	}
}

func TestGenerateNumberFormat(t *testing.T) {
	datePart := time.Now().UTC().Format("20060102")
	pattern := regexp.MustCompile(`^PO-` + datePart + `-[0-9A-F]{6}$`)

	for i := 0; i < 20; i++ {
		number := GenerateNumber("PO")
		if !pattern.MatchString(number) {
			t.Fatalf("unexpected number format: %s", number)
		}
	}
}

func TestGenerateNumberPrefixes(t *testing.T) {
	for _, prefix := range []string{"Q", "RFQ", "PAY", "SQ"} {
		number := GenerateNumber(prefix)
		if len(number) != len(prefix)+1+8+1+6 {
			t.Errorf("unexpected length for %s number: %s", prefix, number)
		}
		if number[:len(prefix)+1] != prefix+"-" {
			t.Errorf("number %s does not start with %s-", number, prefix)
		}
	}
}

func TestGenerateNumberUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		number := GenerateNumber("Q")
		if seen[number] {
			t.Fatalf("duplicate number generated: %s", number)
		}
		seen[number] = true
	}
}

func TestGenerateTrackingNumberFormat(t *testing.T) {
	datePart := time.Now().UTC().Format("20060102")
	pattern := regexp.MustCompile(`^SH` + datePart + `[0-9A-F]{8}$`)

	for i := 0; i < 20; i++ {
		number := GenerateTrackingNumber()
		if !pattern.MatchString(number) {
			t.Fatalf("unexpected tracking number format: %s", number)
		}
	}
}

func TestLineTotal(t *testing.T) {
	cases := []struct {
		quantity  int
		unitPrice string
		want      string
	}{
		{1, "10.00", "10"},
		{3, "19.99", "59.97"},
		{100, "0.01", "1"},
		{7, "0.1", "0.7"},
		{0, "5.00", "0"},
	}
	for _, tc := range cases {
		got := LineTotal(tc.quantity, decimal.RequireFromString(tc.unitPrice))
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Errorf("LineTotal(%d, %s) = %s, want %s", tc.quantity, tc.unitPrice, got, tc.want)
		}
	}
}

func TestLineTotalNoFloatDrift(t *testing.T) {
	// 0.1 + 0.2 style drift must not appear in money arithmetic
	total := decimal.Zero
	price := decimal.RequireFromString("0.10")
	for i := 0; i < 3; i++ {
		total = total.Add(LineTotal(1, price))
	}
	if !total.Equal(decimal.RequireFromString("0.30")) {
		t.Fatalf("expected exactly 0.30, got %s", total)
	}
}
