package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// VOStatus is the workflow state of a variation order.
type VOStatus string

const (
	VOStatusPendingWithFFC      VOStatus = "PendingWithFFC"
	VOStatusPendingWithRSG      VOStatus = "PendingWithRSG"
	VOStatusPendingWithRSGFFC   VOStatus = "PendingWithRSGFFC"
	VOStatusApprovedAwaitingDVO VOStatus = "ApprovedAwaitingDVO"
	VOStatusDVORRIssued         VOStatus = "DVORRIssued"
)

// DefaultVOStatus is assigned when a VO is created without a status.
const DefaultVOStatus = VOStatusPendingWithFFC

// VOStatuses lists every workflow state in progression order.
func VOStatuses() []VOStatus {
	return []VOStatus{
		VOStatusPendingWithFFC,
		VOStatusPendingWithRSG,
		VOStatusPendingWithRSGFFC,
		VOStatusApprovedAwaitingDVO,
		VOStatusDVORRIssued,
	}
}

// Valid reports whether s is one of the five workflow states.
func (s VOStatus) Valid() bool {
	switch s {
	case VOStatusPendingWithFFC, VOStatusPendingWithRSG, VOStatusPendingWithRSGFFC, VOStatusApprovedAwaitingDVO, VOStatusDVORRIssued:
		return true
	}
	return false
}

// Label returns the display name used by dashboards and exports.
func (s VOStatus) Label() string {
	switch s {
	case VOStatusPendingWithFFC:
		return "Pending with FFC"
	case VOStatusPendingWithRSG:
		return "Pending with RSG"
	case VOStatusPendingWithRSGFFC:
		return "Pending with RSG/FFC"
	case VOStatusApprovedAwaitingDVO:
		return "Approved - Awaiting DVO"
	case VOStatusDVORRIssued:
		return "DVO/RR Issued"
	}
	return string(s)
}

// SubmissionType classifies the correspondence that raised the VO.
type SubmissionType string

const (
	SubmissionTypeVO      SubmissionType = "VO"
	SubmissionTypeGenCorr SubmissionType = "GenCorr"
	SubmissionTypeRFI     SubmissionType = "RFI"
	SubmissionTypeEmail   SubmissionType = "Email"
)

// SubmissionTypes lists the accepted submission types.
func SubmissionTypes() []SubmissionType {
	return []SubmissionType{SubmissionTypeVO, SubmissionTypeGenCorr, SubmissionTypeRFI, SubmissionTypeEmail}
}

// Valid reports whether t is an accepted submission type.
func (t SubmissionType) Valid() bool {
	switch t {
	case SubmissionTypeVO, SubmissionTypeGenCorr, SubmissionTypeRFI, SubmissionTypeEmail:
		return true
	}
	return false
}

// FileStage tags an uploaded document with the approval stage it evidences.
type FileStage string

const (
	FileStageProposed FileStage = "proposed"
	FileStageAssessed FileStage = "assessed"
	FileStageApproved FileStage = "approved"
)

// FileStages lists the accepted upload stages.
func FileStages() []FileStage {
	return []FileStage{FileStageProposed, FileStageAssessed, FileStageApproved}
}

// Valid reports whether st is an accepted upload stage.
func (st FileStage) Valid() bool {
	switch st {
	case FileStageProposed, FileStageAssessed, FileStageApproved:
		return true
	}
	return false
}

// Column returns the variation_orders column holding the stage's file URL.
func (st FileStage) Column() string {
	switch st {
	case FileStageProposed:
		return "proposed_file_url"
	case FileStageAssessed:
		return "assessed_file_url"
	case FileStageApproved:
		return "approved_file_url"
	}
	return ""
}

// VariationOrder is a tracked construction change request.
type VariationOrder struct {
	ID                  int64               `db:"id" json:"id"`
	Subject             string              `db:"subject" json:"subject"`
	SubmissionType      SubmissionType      `db:"submission_type" json:"submissionType"`
	SubmissionReference *string             `db:"submission_reference" json:"submissionReference"`
	ResponseReference   *string             `db:"response_reference" json:"responseReference"`
	VORReference        *string             `db:"vor_reference" json:"vorReference"`
	DVOReference        *string             `db:"dvo_reference" json:"dvoReference"`
	SubmissionDate      time.Time           `db:"submission_date" json:"submissionDate"`
	DVOIssuedDate       *time.Time          `db:"dvo_issued_date" json:"dvoIssuedDate"`
	AssessmentValue     decimal.NullDecimal `db:"assessment_value" json:"assessmentValue"`
	ProposalValue       decimal.NullDecimal `db:"proposal_value" json:"proposalValue"`
	ApprovedAmount      decimal.NullDecimal `db:"approved_amount" json:"approvedAmount"`
	Status              VOStatus            `db:"status" json:"status"`
	Remarks             *string             `db:"remarks" json:"remarks"`
	ActionNotes         *string             `db:"action_notes" json:"actionNotes"`
	ProposedFileURL     *string             `db:"proposed_file_url" json:"proposedFileUrl"`
	AssessedFileURL     *string             `db:"assessed_file_url" json:"assessedFileUrl"`
	ApprovedFileURL     *string             `db:"approved_file_url" json:"approvedFileUrl"`
	ExcludeFromStats    bool                `db:"exclude_from_stats" json:"excludeFromStats"`
	CreatedAt           time.Time           `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time           `db:"updated_at" json:"updatedAt"`
}

// SetFileURL stores url on the field matching stage.
func (vo *VariationOrder) SetFileURL(stage FileStage, url string) {
	switch stage {
	case FileStageProposed:
		vo.ProposedFileURL = &url
	case FileStageAssessed:
		vo.AssessedFileURL = &url
	case FileStageApproved:
		vo.ApprovedFileURL = &url
	}
}

// FieldChange assigns one column in a partial update. Value carries the Go
// type of the VariationOrder field tagged with Column.
type FieldChange struct {
	Column string
	Value  interface{}
}

// VOSortField is a sortable list column exposed to clients.
type VOSortField string

const (
	VOSortSubmissionDate VOSortField = "submissionDate"
	VOSortCreatedAt      VOSortField = "createdAt"
	VOSortProposalValue  VOSortField = "proposalValue"
	VOSortApprovedAmount VOSortField = "approvedAmount"
)

// SortOrder is the direction of a list ordering.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// VariationOrderFilter is a validated list query.
type VariationOrderFilter struct {
	Search         string
	Status         *VOStatus
	SubmissionType *SubmissionType
	SortBy         VOSortField
	SortOrder      SortOrder
	Page           int
	Limit          int
}
