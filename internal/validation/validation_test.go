package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/vo-tracker-api/internal/dto"
	appErrors "github.com/noah-isme/vo-tracker-api/pkg/errors"
)

func fields(items []appErrors.FieldError) map[string]string {
	out := make(map[string]string, len(items))
	for _, item := range items {
		out[item.Field] = item.Reason
	}
	return out
}

func TestStructCollectsEveryViolation(t *testing.T) {
	v := New()
	status := "Closed"
	remarks := strings.Repeat("r", 2001)
	var errs Errors
	errs.Struct(v, dto.CreateVariationOrderRequest{
		SubmissionType: "Fax",
		Status:         &status,
		Remarks:        &remarks,
	})

	got := fields(errs.Items())
	assert.Equal(t, "is required", got["subject"])
	assert.Contains(t, got["submissionType"], "must be one of: VO, GenCorr, RFI, Email")
	assert.Contains(t, got["status"], "PendingWithFFC")
	assert.Equal(t, "must be at most 2000 characters", got["remarks"])
	assert.Equal(t, "is required", got["submissionDate"])
}

func TestStructSkipsOmittedOptionals(t *testing.T) {
	v := New()
	var errs Errors
	errs.Struct(v, dto.UpdateVariationOrderRequest{Remarks: dto.Some("fine")})
	assert.True(t, errs.Empty())

	errs = Errors{}
	errs.Struct(v, dto.UpdateVariationOrderRequest{
		Status:  dto.Some("Bogus"),
		Subject: dto.Some(strings.Repeat("s", 501)),
	})
	got := fields(errs.Items())
	assert.Len(t, got, 2)
	assert.Contains(t, got, "status")
	assert.Contains(t, got, "subject")
}

func TestAmountRules(t *testing.T) {
	var errs Errors
	neg := dto.Numeric("-1")
	bad := dto.Numeric("abc")
	blank := dto.Numeric("")
	ok := dto.Numeric("1500.75")

	assert.False(t, errs.Amount("a", &neg).Valid)
	assert.False(t, errs.Amount("b", &bad).Valid)
	assert.False(t, errs.Amount("c", &blank).Valid)
	assert.False(t, errs.Amount("d", nil).Valid)
	parsed := errs.Amount("e", &ok)
	require.True(t, parsed.Valid)
	assert.Equal(t, "1500.75", parsed.Decimal.String())

	got := fields(errs.Items())
	assert.Equal(t, "must be greater than or equal to 0", got["a"])
	assert.Equal(t, "must be a number", got["b"])
	assert.Len(t, got, 2)
}

func TestPercentageBounds(t *testing.T) {
	var errs Errors
	over := dto.Numeric("100.01")
	edge := dto.Numeric("100")
	errs.Percentage("over", &over)
	assert.True(t, errs.Percentage("edge", &edge).Valid)
	assert.Equal(t, map[string]string{"over": "must be between 0 and 100"}, fields(errs.Items()))
}

func TestDates(t *testing.T) {
	var errs Errors
	d, ok := errs.Date("submissionDate", "2024-05-01")
	require.True(t, ok)
	assert.Equal(t, "2024-05-01", d.Format("2006-01-02"))

	d, ok = errs.Date("other", "2024-05-01T22:10:00Z")
	require.True(t, ok)
	assert.Equal(t, 0, d.Hour())

	_, ok = errs.Date("bad", "01/05/2024")
	assert.False(t, ok)

	blank := "  "
	assert.Nil(t, errs.OptionalDate("dvoIssuedDate", &blank))

	err := errs.Err("invalid payload")
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, []appErrors.FieldError{{Field: "bad", Reason: "must be a valid date (YYYY-MM-DD)"}}, appErr.Details)
}
