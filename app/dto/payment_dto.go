package dto

import "time"

// PaymentInitiationDTO is the checkout handle returned after initiation
type PaymentInitiationDTO struct {
	ReferenceNumber string     `json:"reference_number"`
	PaymentURL      string     `json:"payment_url"`
	Amount          uint64     `json:"amount"`
	Currency        string     `json:"currency"`
	InvoiceNumber   string     `json:"invoice_number"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
}

// CheckPaymentStatusResponse reports the gateway-confirmed state of a checkout
type CheckPaymentStatusResponse struct {
	Message         string `json:"message"`
	ReferenceNumber string `json:"reference_number"`
	Status          string `json:"status"`
	Paid            bool   `json:"paid"`
}

// PendingReferenceResponse reports the open checkout for the caller's session
type PendingReferenceResponse struct {
	Message         string `json:"message"`
	ReferenceNumber string `json:"reference_number,omitempty"`
	Pending         bool   `json:"pending"`
}

// PaymentNotificationRequest carries the gateway's server-to-server
// notification payload. Parsed from form data, verified by signature.
type PaymentNotificationRequest struct {
	InvoiceNumber   string `json:"m_payment_id" form:"m_payment_id"`
	ReferenceNumber string `json:"pf_payment_id" form:"pf_payment_id"`
	PaymentStatus   string `json:"payment_status" form:"payment_status"`
	AmountGross     string `json:"amount_gross" form:"amount_gross"`
	Signature       string `json:"signature" form:"signature"`
}
