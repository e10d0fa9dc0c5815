package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalDistinguishesOmittedNullAndValue(t *testing.T) {
	var req UpdateVariationOrderRequest
	require.NoError(t, json.Unmarshal([]byte(`{"remarks":"x","vorReference":null,"proposalValue":""}`), &req))

	assert.False(t, req.Subject.Set)
	assert.True(t, req.Remarks.Present())
	assert.Equal(t, "x", req.Remarks.Value)
	assert.True(t, req.VORReference.Set)
	assert.True(t, req.VORReference.Null)
	assert.True(t, req.ProposalValue.Set)
	assert.True(t, req.ProposalValue.Null)
	assert.Nil(t, req.ProposalValue.ValidationValue())
}

func TestOptionalKeepsEmptyText(t *testing.T) {
	var req UpdateVariationOrderRequest
	require.NoError(t, json.Unmarshal([]byte(`{"subject":""}`), &req))

	assert.True(t, req.Subject.Present())
	assert.Equal(t, "", req.Subject.Value)
}

func TestNumericAcceptsNumbersAndStrings(t *testing.T) {
	var req CreateVariationOrderRequest
	require.NoError(t, json.Unmarshal([]byte(`{"proposalValue":100000.25,"approvedAmount":" 5000 ","assessmentValue":true}`), &req))

	v, err := req.ProposalValue.Decimal()
	require.NoError(t, err)
	assert.Equal(t, "100000.25", v.String())

	a, err := req.ApprovedAmount.Decimal()
	require.NoError(t, err)
	assert.Equal(t, "5000", a.String())

	_, err = req.AssessmentValue.Decimal()
	assert.Error(t, err)
}

func TestOptionalMarshal(t *testing.T) {
	raw, err := json.Marshal(struct {
		A Optional[int] `json:"a"`
		B Optional[int] `json:"b"`
	}{A: Some(3), B: Null[int]()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":3,"b":null}`, string(raw))
}
