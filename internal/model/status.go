package model

import "github.com/shopspring/decimal"

// Legal status transitions per entity. Every status mutator goes through one
// of the CanTransition functions below; a status value missing from its map
// is terminal.

var quotationTransitions = map[QuotationStatus][]QuotationStatus{
	QuotationDraft: {QuotationSent, QuotationExpired},
	QuotationSent:  {QuotationAccepted, QuotationRejected, QuotationExpired},
}

// CanTransitionTo reports whether a quotation may move from s to next
func (s QuotationStatus) CanTransitionTo(next QuotationStatus) bool {
	return canTransition(quotationTransitions, s, next)
}

// Valid reports whether s is one of the known quotation statuses
func (s QuotationStatus) Valid() bool {
	switch s {
	case QuotationDraft, QuotationSent, QuotationAccepted, QuotationRejected, QuotationExpired:
		return true
	}
	return false
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderConfirmed, OrderCancelled},
	OrderConfirmed:  {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered, OrderCancelled},
}

// CanTransitionTo reports whether an order may move from s to next
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return canTransition(orderTransitions, s, next)
}

// Valid reports whether s is one of the known order statuses
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// Shipments advance linearly toward delivered; cancelled and returned are
// reachable from every non-terminal state.
var shipmentTransitions = map[ShipmentStatus][]ShipmentStatus{
	ShipmentPending:        {ShipmentConfirmed, ShipmentCancelled, ShipmentReturned},
	ShipmentConfirmed:      {ShipmentPickedUp, ShipmentCancelled, ShipmentReturned},
	ShipmentPickedUp:       {ShipmentInTransit, ShipmentCancelled, ShipmentReturned},
	ShipmentInTransit:      {ShipmentOutForDelivery, ShipmentCancelled, ShipmentReturned},
	ShipmentOutForDelivery: {ShipmentDelivered, ShipmentCancelled, ShipmentReturned},
}

// CanTransitionTo reports whether a shipment may move from s to next
func (s ShipmentStatus) CanTransitionTo(next ShipmentStatus) bool {
	return canTransition(shipmentTransitions, s, next)
}

// Valid reports whether s is one of the known shipment statuses
func (s ShipmentStatus) Valid() bool {
	switch s {
	case ShipmentPending, ShipmentConfirmed, ShipmentPickedUp, ShipmentInTransit,
		ShipmentOutForDelivery, ShipmentDelivered, ShipmentCancelled, ShipmentReturned:
		return true
	}
	return false
}

var quoteTransitions = map[QuoteStatus][]QuoteStatus{
	QuotePending: {QuoteSent, QuoteExpired},
	QuoteSent:    {QuoteAccepted, QuoteRejected, QuoteExpired},
}

// CanTransitionTo reports whether a shipping quote may move from s to next
func (s QuoteStatus) CanTransitionTo(next QuoteStatus) bool {
	return canTransition(quoteTransitions, s, next)
}

// Valid reports whether s is one of the known quote statuses
func (s QuoteStatus) Valid() bool {
	switch s {
	case QuotePending, QuoteSent, QuoteAccepted, QuoteRejected, QuoteExpired:
		return true
	}
	return false
}

var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestDraft:          {RequestSent, RequestClosed},
	RequestSent:           {RequestReceivedQuotes, RequestClosed},
	RequestReceivedQuotes: {RequestClosed},
}

// CanTransitionTo reports whether a quotation request may move from s to next
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	return canTransition(requestTransitions, s, next)
}

// Valid reports whether s is one of the known request statuses
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestDraft, RequestSent, RequestReceivedQuotes, RequestClosed:
		return true
	}
	return false
}

func canTransition[S comparable](table map[S][]S, from, to S) bool {
	for _, next := range table[from] {
		if next == to {
			return true
		}
	}
	return false
}

// DerivePaymentStatus computes an order's payment status from the sum of its
// completed payments. Pending or failed payments never advance the status;
// overdue is set by operators only, never derived.
func DerivePaymentStatus(completedTotal, orderTotal decimal.Decimal) PaymentStatus {
	if completedTotal.GreaterThanOrEqual(orderTotal) && orderTotal.IsPositive() {
		return PaymentStatusPaid
	}
	if completedTotal.IsPositive() {
		return PaymentStatusPartial
	}
	return PaymentStatusPending
}
