package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatusAggregate is one GROUP BY status row over non-excluded VOs.
type StatusAggregate struct {
	Status      VOStatus        `db:"status"`
	Count       int             `db:"count"`
	ProposalSum decimal.Decimal `db:"proposal_sum"`
	ApprovedSum decimal.Decimal `db:"approved_sum"`
}

// StatusCounts holds the number of VOs per workflow state.
type StatusCounts struct {
	PendingWithFFC      int `json:"pendingWithFFC"`
	PendingWithRSG      int `json:"pendingWithRSG"`
	PendingWithRSGFFC   int `json:"pendingWithRSGFFC"`
	ApprovedAwaitingDVO int `json:"approvedAwaitingDVO"`
	DVORRIssued         int `json:"dvorrIssued"`
	Total               int `json:"total"`
}

// StatusBreakdown is the per-status line of the statistics view.
type StatusBreakdown struct {
	Status VOStatus        `json:"status"`
	Label  string          `json:"label"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// VOStatistics is the reporting view over every VO not excluded from stats.
type VOStatistics struct {
	Counts              StatusCounts      `json:"counts"`
	TotalSubmittedValue decimal.Decimal   `json:"totalSubmittedValue"`
	TotalApprovedValue  decimal.Decimal   `json:"totalApprovedValue"`
	Breakdown           []StatusBreakdown `json:"breakdown"`
	GeneratedAt         time.Time         `json:"generatedAt"`
}
