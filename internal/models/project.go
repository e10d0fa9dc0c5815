package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProjectDetails is the contract-level snapshot keyed by project code.
type ProjectDetails struct {
	ID                        int64               `db:"id" json:"id"`
	ProjectCode               string              `db:"project_code" json:"projectCode"`
	ProjectName               string              `db:"project_name" json:"projectName"`
	OriginalContractValue     decimal.NullDecimal `db:"original_contract_value" json:"originalContractValue"`
	RevisedContractValue      decimal.NullDecimal `db:"revised_contract_value" json:"revisedContractValue"`
	AdvancePaymentPercentage  decimal.NullDecimal `db:"advance_payment_percentage" json:"advancePaymentPercentage"`
	AdvancePaymentBalance     decimal.NullDecimal `db:"advance_payment_balance" json:"advancePaymentBalance"`
	RetentionPercentage       decimal.NullDecimal `db:"retention_percentage" json:"retentionPercentage"`
	RetentionBalance          decimal.NullDecimal `db:"retention_balance" json:"retentionBalance"`
	WorkDonePercentage        decimal.NullDecimal `db:"work_done_percentage" json:"workDonePercentage"`
	PlannedWorkDonePercentage decimal.NullDecimal `db:"planned_work_done_percentage" json:"plannedWorkDonePercentage"`
	AmountReceived            decimal.NullDecimal `db:"amount_received" json:"amountReceived"`
	CreatedAt                 time.Time           `db:"created_at" json:"createdAt"`
	UpdatedAt                 time.Time           `db:"updated_at" json:"updatedAt"`
}
