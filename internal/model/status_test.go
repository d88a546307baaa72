package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestQuotationTransitions(t *testing.T) {
	allowed := []struct {
		from, to QuotationStatus
	}{
		{QuotationDraft, QuotationSent},
		{QuotationDraft, QuotationExpired},
		{QuotationSent, QuotationAccepted},
		{QuotationSent, QuotationRejected},
		{QuotationSent, QuotationExpired},
	}
	for _, tr := range allowed {
		if !tr.from.CanTransitionTo(tr.to) {
			t.Errorf("expected %s -> %s to be allowed", tr.from, tr.to)
		}
	}

	denied := []struct {
		from, to QuotationStatus
	}{
		{QuotationDraft, QuotationAccepted},
		{QuotationAccepted, QuotationSent},
		{QuotationAccepted, QuotationRejected},
		{QuotationRejected, QuotationAccepted},
		{QuotationExpired, QuotationSent},
		{QuotationSent, QuotationSent},
	}
	for _, tr := range denied {
		if tr.from.CanTransitionTo(tr.to) {
			t.Errorf("expected %s -> %s to be rejected", tr.from, tr.to)
		}
	}
}

func TestOrderTransitions(t *testing.T) {
	// cancel is reachable from every non-terminal state
	for _, from := range []OrderStatus{OrderPending, OrderConfirmed, OrderProcessing, OrderShipped} {
		if !from.CanTransitionTo(OrderCancelled) {
			t.Errorf("expected %s -> cancelled to be allowed", from)
		}
	}

	// terminal states go nowhere
	for _, from := range []OrderStatus{OrderDelivered, OrderCancelled} {
		for _, to := range []OrderStatus{OrderPending, OrderConfirmed, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled} {
			if from.CanTransitionTo(to) {
				t.Errorf("expected terminal %s -> %s to be rejected", from, to)
			}
		}
	}

	// no skipping ahead
	if OrderPending.CanTransitionTo(OrderShipped) {
		t.Error("expected pending -> shipped to be rejected")
	}
	if OrderConfirmed.CanTransitionTo(OrderDelivered) {
		t.Error("expected confirmed -> delivered to be rejected")
	}
}

func TestShipmentTransitions(t *testing.T) {
	chain := []ShipmentStatus{
		ShipmentPending, ShipmentConfirmed, ShipmentPickedUp,
		ShipmentInTransit, ShipmentOutForDelivery, ShipmentDelivered,
	}
	for i := 0; i < len(chain)-1; i++ {
		if !chain[i].CanTransitionTo(chain[i+1]) {
			t.Errorf("expected %s -> %s to be allowed", chain[i], chain[i+1])
		}
	}

	// no going backwards
	for i := 1; i < len(chain); i++ {
		if chain[i].CanTransitionTo(chain[i-1]) {
			t.Errorf("expected %s -> %s to be rejected", chain[i], chain[i-1])
		}
	}

	// cancelled and returned are reachable from every non-terminal state
	for _, from := range chain[:len(chain)-1] {
		if !from.CanTransitionTo(ShipmentCancelled) {
			t.Errorf("expected %s -> cancelled to be allowed", from)
		}
		if !from.CanTransitionTo(ShipmentReturned) {
			t.Errorf("expected %s -> returned to be allowed", from)
		}
	}

	for _, from := range []ShipmentStatus{ShipmentDelivered, ShipmentCancelled, ShipmentReturned} {
		if from.CanTransitionTo(ShipmentInTransit) {
			t.Errorf("expected terminal %s to reject further transitions", from)
		}
	}
}

func TestQuoteTransitions(t *testing.T) {
	if !QuotePending.CanTransitionTo(QuoteSent) {
		t.Error("expected pending -> sent to be allowed")
	}
	if !QuoteSent.CanTransitionTo(QuoteAccepted) {
		t.Error("expected sent -> accepted to be allowed")
	}
	if QuotePending.CanTransitionTo(QuoteAccepted) {
		t.Error("expected pending -> accepted to be rejected")
	}
	if QuoteAccepted.CanTransitionTo(QuoteRejected) {
		t.Error("expected accepted -> rejected to be rejected")
	}
}

func TestRequestTransitions(t *testing.T) {
	if !RequestDraft.CanTransitionTo(RequestSent) {
		t.Error("expected draft -> sent to be allowed")
	}
	if !RequestSent.CanTransitionTo(RequestReceivedQuotes) {
		t.Error("expected sent -> received_quotes to be allowed")
	}
	for _, from := range []RequestStatus{RequestDraft, RequestSent, RequestReceivedQuotes} {
		if !from.CanTransitionTo(RequestClosed) {
			t.Errorf("expected %s -> closed to be allowed", from)
		}
	}
	if RequestClosed.CanTransitionTo(RequestDraft) {
		t.Error("expected closed to be terminal")
	}
}

func TestStatusValid(t *testing.T) {
	if !QuotationSent.Valid() || QuotationStatus("bogus").Valid() {
		t.Error("quotation status validity check failed")
	}
	if !OrderDelivered.Valid() || OrderStatus("bogus").Valid() {
		t.Error("order status validity check failed")
	}
	if !ShipmentInTransit.Valid() || ShipmentStatus("bogus").Valid() {
		t.Error("shipment status validity check failed")
	}
	if !PaymentCompleted.Valid() || PaymentState("bogus").Valid() {
		t.Error("payment state validity check failed")
	}
	if !RoleMerchant.Valid() || Role("admin").Valid() {
		t.Error("role validity check failed")
	}
}

func TestDerivePaymentStatus(t *testing.T) {
	total := decimal.NewFromInt(100)

	cases := []struct {
		name      string
		completed decimal.Decimal
		want      PaymentStatus
	}{
		{"nothing paid", decimal.Zero, PaymentStatusPending},
		{"partial", decimal.NewFromInt(40), PaymentStatusPartial},
		{"almost paid", decimal.RequireFromString("99.99"), PaymentStatusPartial},
		{"exactly paid", decimal.NewFromInt(100), PaymentStatusPaid},
		{"overpaid", decimal.NewFromInt(150), PaymentStatusPaid},
	}
	for _, tc := range cases {
		if got := DerivePaymentStatus(tc.completed, total); got != tc.want {
			t.Errorf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}

	// a zero-total order never reads as paid
	if got := DerivePaymentStatus(decimal.Zero, decimal.Zero); got != PaymentStatusPending {
		t.Errorf("zero total: got %s, want pending", got)
	}
}

func TestDerivePaymentStatusMonotonic(t *testing.T) {
	total := decimal.NewFromInt(500)
	rank := map[PaymentStatus]int{
		PaymentStatusPending: 0,
		PaymentStatusPartial: 1,
		PaymentStatusPaid:    2,
	}

	prev := -1
	for paid := int64(0); paid <= 600; paid += 50 {
		status := DerivePaymentStatus(decimal.NewFromInt(paid), total)
		if rank[status] < prev {
			t.Fatalf("payment status regressed at %d: %s", paid, status)
		}
		prev = rank[status]
	}
}
