package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// Monetary amounts serialize as JSON numbers, not quoted strings
	decimal.MarshalJSONWithoutQuotes = true
}

// GenerateNumber builds a human-readable document number such as
// "PO-20250115-3FA2B1". The random suffix comes from a v4 UUID; the unique
// index on the number column catches the rare collision.
func GenerateNumber(prefix string) string {
	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().UTC().Format("20060102"), randomSuffix(6))
}

// GenerateTrackingNumber builds a shipment tracking number such as
// "SH20250115A3F2B1C9".
func GenerateTrackingNumber() string {
	return fmt.Sprintf("SH%s%s", time.Now().UTC().Format("20060102"), randomSuffix(8))
}

func randomSuffix(n int) string {
	hex := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	if n > len(hex) {
		n = len(hex)
	}
	return hex[:n]
}

// LineTotal computes quantity × unit price for one order or quotation line
func LineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}
