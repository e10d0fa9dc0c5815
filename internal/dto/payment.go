package dto

// CreatePaymentApplicationRequest registers an interim payment claim.
type CreatePaymentApplicationRequest struct {
	PaymentNumber   int      `json:"paymentNumber" validate:"required,gt=0"`
	SubmissionDate  string   `json:"submissionDate" validate:"required"`
	GrossAmount     Numeric  `json:"grossAmount"`
	AdvanceRecovery *Numeric `json:"advanceRecovery"`
	RetentionAmount *Numeric `json:"retentionAmount"`
	VATAmount       *Numeric `json:"vatAmount"`
	NetPayment      *Numeric `json:"netPayment"`
	Status          *string  `json:"status" validate:"omitempty,paymentstatus"`
	CertifiedDate   *string  `json:"certifiedDate"`
	PaymentDate     *string  `json:"paymentDate"`
	Remarks         *string  `json:"remarks" validate:"omitempty,max=2000"`
}

// UpdatePaymentApplicationRequest is a partial update of a payment claim.
type UpdatePaymentApplicationRequest struct {
	PaymentNumber   Optional[int]     `json:"paymentNumber" validate:"omitempty,gt=0"`
	SubmissionDate  Optional[string]  `json:"submissionDate"`
	GrossAmount     Optional[Numeric] `json:"grossAmount"`
	AdvanceRecovery Optional[Numeric] `json:"advanceRecovery"`
	RetentionAmount Optional[Numeric] `json:"retentionAmount"`
	VATAmount       Optional[Numeric] `json:"vatAmount"`
	NetPayment      Optional[Numeric] `json:"netPayment"`
	Status          Optional[string]  `json:"status" validate:"omitempty,paymentstatus"`
	CertifiedDate   Optional[string]  `json:"certifiedDate"`
	PaymentDate     Optional[string]  `json:"paymentDate"`
	Remarks         Optional[string]  `json:"remarks" validate:"omitempty,max=2000"`
}

// ListPaymentApplicationsQuery carries raw list parameters.
type ListPaymentApplicationsQuery struct {
	Status string `form:"status" validate:"omitempty,paymentstatus"`
	Page   string `form:"page"`
	Limit  string `form:"limit"`
}
