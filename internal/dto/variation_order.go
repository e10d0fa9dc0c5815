package dto

// CreateVariationOrderRequest is the payload for registering a VO.
type CreateVariationOrderRequest struct {
	Subject             string   `json:"subject" validate:"required,max=500"`
	SubmissionType      string   `json:"submissionType" validate:"required,submissiontype"`
	SubmissionReference *string  `json:"submissionReference" validate:"omitempty,max=100"`
	ResponseReference   *string  `json:"responseReference" validate:"omitempty,max=100"`
	VORReference        *string  `json:"vorReference" validate:"omitempty,max=100"`
	DVOReference        *string  `json:"dvoReference" validate:"omitempty,max=100"`
	SubmissionDate      string   `json:"submissionDate" validate:"required"`
	DVOIssuedDate       *string  `json:"dvoIssuedDate"`
	AssessmentValue     *Numeric `json:"assessmentValue"`
	ProposalValue       *Numeric `json:"proposalValue"`
	ApprovedAmount      *Numeric `json:"approvedAmount"`
	Status              *string  `json:"status" validate:"omitempty,vostatus"`
	Remarks             *string  `json:"remarks" validate:"omitempty,max=2000"`
	ActionNotes         *string  `json:"actionNotes" validate:"omitempty,max=2000"`
	ExcludeFromStats    bool     `json:"excludeFromStats"`
}

// UpdateVariationOrderRequest is a partial update. Omitted fields keep their
// stored value; null or empty clears nullable fields.
type UpdateVariationOrderRequest struct {
	Subject             Optional[string]  `json:"subject" validate:"omitempty,max=500"`
	SubmissionType      Optional[string]  `json:"submissionType" validate:"omitempty,submissiontype"`
	SubmissionReference Optional[string]  `json:"submissionReference" validate:"omitempty,max=100"`
	ResponseReference   Optional[string]  `json:"responseReference" validate:"omitempty,max=100"`
	VORReference        Optional[string]  `json:"vorReference" validate:"omitempty,max=100"`
	DVOReference        Optional[string]  `json:"dvoReference" validate:"omitempty,max=100"`
	SubmissionDate      Optional[string]  `json:"submissionDate"`
	DVOIssuedDate       Optional[string]  `json:"dvoIssuedDate"`
	AssessmentValue     Optional[Numeric] `json:"assessmentValue"`
	ProposalValue       Optional[Numeric] `json:"proposalValue"`
	ApprovedAmount      Optional[Numeric] `json:"approvedAmount"`
	Status              Optional[string]  `json:"status" validate:"omitempty,vostatus"`
	Remarks             Optional[string]  `json:"remarks" validate:"omitempty,max=2000"`
	ActionNotes         Optional[string]  `json:"actionNotes" validate:"omitempty,max=2000"`
	ExcludeFromStats    Optional[bool]    `json:"excludeFromStats"`
}

// ListVariationOrdersQuery carries raw list parameters; numbers stay text so
// malformed values are reported alongside every other violation.
type ListVariationOrdersQuery struct {
	Search         string `form:"search"`
	Status         string `form:"status" validate:"omitempty,vostatus"`
	SubmissionType string `form:"submissionType" validate:"omitempty,submissiontype"`
	SortBy         string `form:"sortBy" validate:"omitempty,oneof=submissionDate createdAt proposalValue approvedAmount"`
	SortOrder      string `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
	Page           string `form:"page"`
	Limit          string `form:"limit"`
}

// ExportVariationOrdersQuery selects the register rendition.
type ExportVariationOrdersQuery struct {
	ListVariationOrdersQuery
	Format string `form:"format" validate:"required,oneof=csv xlsx pdf"`
}

// UploadFileRequest holds the multipart fields accompanying a VO document.
type UploadFileRequest struct {
	Stage string `form:"stage" validate:"required,filestage"`
}

// UploadFileResponse is returned after a document is stored.
type UploadFileResponse struct {
	VariationOrderID int64  `json:"variationOrderId"`
	Stage            string `json:"stage"`
	URL              string `json:"url"`
}
