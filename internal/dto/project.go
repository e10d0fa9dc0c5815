package dto

// UpsertProjectDetailsRequest creates or replaces the snapshot for ProjectCode.
type UpsertProjectDetailsRequest struct {
	ProjectCode               string   `json:"projectCode" validate:"required,max=50"`
	ProjectName               string   `json:"projectName" validate:"required,max=200"`
	OriginalContractValue     *Numeric `json:"originalContractValue"`
	RevisedContractValue      *Numeric `json:"revisedContractValue"`
	AdvancePaymentPercentage  *Numeric `json:"advancePaymentPercentage"`
	AdvancePaymentBalance     *Numeric `json:"advancePaymentBalance"`
	RetentionPercentage       *Numeric `json:"retentionPercentage"`
	RetentionBalance          *Numeric `json:"retentionBalance"`
	WorkDonePercentage        *Numeric `json:"workDonePercentage"`
	PlannedWorkDonePercentage *Numeric `json:"plannedWorkDonePercentage"`
	AmountReceived            *Numeric `json:"amountReceived"`
}
