package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/vo-tracker-api/internal/models"
)

func TestPaymentRepositoryListByStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "payment_number", "submission_date", "gross_amount", "advance_recovery", "retention_amount", "vat_amount", "net_payment", "status", "certified_date", "payment_date", "remarks", "created_at", "updated_at"}).
		AddRow(3, 12, now, "1000.00", "100", "50", "150", "1000", "Certified", now, nil, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + paymentColumns + " FROM payment_applications WHERE 1=1 AND status = $1 ORDER BY payment_number DESC, id DESC LIMIT 10 OFFSET 10")).
		WithArgs("Certified").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM payment_applications WHERE 1=1 AND status = $1")).
		WithArgs("Certified").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	status := models.PaymentStatusCertified
	items, total, err := repo.List(context.Background(), models.PaymentApplicationFilter{Status: &status, Page: 2, Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 11, total)
	assert.True(t, decimal.NewFromInt(1000).Equal(items[0].NetPayment))
	assert.NotNil(t, items[0].CertifiedDate)
	assert.Nil(t, items[0].PaymentDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryExistsByNumber(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM payment_applications WHERE payment_number = $1 AND id <> $2)")).
		WithArgs(4, int64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByNumber(context.Background(), 4, 0)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryCreateAndDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectQuery("INSERT INTO payment_applications").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM payment_applications WHERE id = $1")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	item := &models.PaymentApplication{PaymentNumber: 1, Status: models.PaymentStatusSubmitted, SubmissionDate: time.Now()}
	require.NoError(t, repo.Create(context.Background(), item))
	assert.Equal(t, int64(5), item.ID)

	assert.ErrorIs(t, repo.Delete(context.Background(), 5), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
