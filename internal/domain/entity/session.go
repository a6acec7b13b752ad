package entity

import "time"

// Transaction represents a point-of-sale payment for a notarization service.
// It is created when the client selects a service and becomes immutable once
// the payment terminal confirms it.
type Transaction struct {
	ID           int64     `json:"id"`
	VoucherCode  string    `json:"voucher_code"`
	TemplateName string    `json:"template_name"`
	ServiceType  string    `json:"service_type"`
	Amount       float64   `json:"amount"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session represents one notarization workflow instance from confirmed
// payment to completion. The voucher code is copied from the transaction and
// never changes; it is the client-facing reference for the session.
type Session struct {
	ID               int64     `json:"id"`
	TransactionID    int64     `json:"transaction_id"`
	VoucherCode      string    `json:"voucher_code"`
	ServiceType      string    `json:"service_type"`
	Status           string    `json:"status"`
	ClientName       string    `json:"client_name"`
	ClientEmail      string    `json:"client_email"`
	TemplateName     string    `json:"template_name"`
	CertifierID      *int64    `json:"certifier_id,omitempty"`
	CertifierName    string    `json:"certifier_name,omitempty"`
	CallToken        string    `json:"call_token,omitempty"`
	DocumentContent  string    `json:"document_content,omitempty"`
	ClientSignature  string    `json:"client_signature,omitempty"`
	FinalDocumentURL string    `json:"final_document_url,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// SessionEvent is one transition in a session's history, retained for audit.
type SessionEvent struct {
	ID             int64     `json:"id"`
	SessionID      int64     `json:"session_id"`
	Actor          string    `json:"actor"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	Trigger        string    `json:"trigger"`
	Detail         string    `json:"detail,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// Certifier is an entry in the static certifier roster.
type Certifier struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
