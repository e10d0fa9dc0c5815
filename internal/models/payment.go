package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus tracks a payment application through certification.
type PaymentStatus string

const (
	PaymentStatusSubmitted   PaymentStatus = "Submitted"
	PaymentStatusUnderReview PaymentStatus = "UnderReview"
	PaymentStatusCertified   PaymentStatus = "Certified"
	PaymentStatusPaid        PaymentStatus = "Paid"
)

// PaymentStatuses lists the accepted payment states.
func PaymentStatuses() []PaymentStatus {
	return []PaymentStatus{PaymentStatusSubmitted, PaymentStatusUnderReview, PaymentStatusCertified, PaymentStatusPaid}
}

// Valid reports whether s is an accepted payment state.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusSubmitted, PaymentStatusUnderReview, PaymentStatusCertified, PaymentStatusPaid:
		return true
	}
	return false
}

// PaymentApplication is an interim payment claim against the contract.
type PaymentApplication struct {
	ID              int64           `db:"id" json:"id"`
	PaymentNumber   int             `db:"payment_number" json:"paymentNumber"`
	SubmissionDate  time.Time       `db:"submission_date" json:"submissionDate"`
	GrossAmount     decimal.Decimal `db:"gross_amount" json:"grossAmount"`
	AdvanceRecovery decimal.Decimal `db:"advance_recovery" json:"advanceRecovery"`
	RetentionAmount decimal.Decimal `db:"retention_amount" json:"retentionAmount"`
	VATAmount       decimal.Decimal `db:"vat_amount" json:"vatAmount"`
	NetPayment      decimal.Decimal `db:"net_payment" json:"netPayment"`
	Status          PaymentStatus   `db:"status" json:"status"`
	CertifiedDate   *time.Time      `db:"certified_date" json:"certifiedDate"`
	PaymentDate     *time.Time      `db:"payment_date" json:"paymentDate"`
	Remarks         *string         `db:"remarks" json:"remarks"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updatedAt"`
}

// DerivedNetPayment computes gross - advance recovery - retention + VAT.
func (p *PaymentApplication) DerivedNetPayment() decimal.Decimal {
	return p.GrossAmount.Sub(p.AdvanceRecovery).Sub(p.RetentionAmount).Add(p.VATAmount)
}

// PaymentApplicationFilter narrows payment application listings.
type PaymentApplicationFilter struct {
	Status *PaymentStatus
	Page   int
	Limit  int
}
