package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/sds-studio/sds/internal/invoice/domain"
	"github.com/sds-studio/sds/internal/invoice/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Invoice{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, db
}

func TestUpsertByNumber_Validation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.UpsertByNumber(ctx, domain.UpsertRequest{Number: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidNumber)

	_, err = svc.UpsertByNumber(ctx, domain.UpsertRequest{Number: "CB-x", Subtotal: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.UpsertByNumber(ctx, domain.UpsertRequest{Number: "CB-x", Status: "NOPE"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestUpsertByNumber_Defaults(t *testing.T) {
	svc, _ := newService(t)

	inv, err := svc.UpsertByNumber(context.Background(), domain.UpsertRequest{
		Number:   "CB-charge_1",
		Subtotal: 249000,
		Total:    249000,
		Currency: "eur",
	})
	require.NoError(t, err)
	assert.Equal(t, "EUR", inv.Currency)
	assert.Equal(t, domain.StatusDraft, inv.Status)
	assert.False(t, inv.DueDate.IsZero())
}

func TestUpsertByNumber_RedeliveryKeepsOneRow(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	paidAt := time.Now().UTC()
	first, err := svc.UpsertByNumber(ctx, domain.UpsertRequest{
		Number:           "CB-charge_2",
		Subtotal:         249000,
		Total:            249000,
		Status:           domain.StatusSent,
		ProviderChargeID: "charge_2",
	})
	require.NoError(t, err)

	second, err := svc.UpsertByNumber(ctx, domain.UpsertRequest{
		Number:           "CB-charge_2",
		Subtotal:         249000,
		Total:            249000,
		Status:           domain.StatusPaid,
		ProviderChargeID: "charge_2",
		PaidDate:         &paidAt,
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, domain.StatusPaid, second.Status)
	require.NotNil(t, second.PaidDate)

	var count int64
	require.NoError(t, db.Model(&domain.Invoice{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpsertByNumber_KeepsExistingProjectLink(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	projectID := snowflake.ID(42)
	_, err := svc.UpsertByNumber(ctx, domain.UpsertRequest{
		Number:    "CB-charge_3",
		Subtotal:  149000,
		Total:     149000,
		ProjectID: &projectID,
	})
	require.NoError(t, err)

	// A later redelivery without customer metadata must not unlink the project.
	inv, err := svc.UpsertByNumber(ctx, domain.UpsertRequest{
		Number:   "CB-charge_3",
		Subtotal: 149000,
		Total:    149000,
		Status:   domain.StatusPaid,
	})
	require.NoError(t, err)
	require.NotNil(t, inv.ProjectID)
	assert.Equal(t, projectID, *inv.ProjectID)
}

func TestMarkPaidByCharge(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	n, err := svc.MarkPaidByCharge(ctx, "  ", time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	_, err = svc.UpsertByNumber(ctx, domain.UpsertRequest{
		Number:           "PI-pi_1",
		Subtotal:         499000,
		Total:            499000,
		Status:           domain.StatusSent,
		ProviderChargeID: "pi_1",
	})
	require.NoError(t, err)

	paidAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	n, err = svc.MarkPaidByCharge(ctx, "pi_1", paidAt)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	inv, err := svc.UpsertByNumber(ctx, domain.UpsertRequest{
		Number:   "PI-pi_1",
		Subtotal: 499000,
		Total:    499000,
		Status:   domain.StatusPaid,
	})
	require.NoError(t, err)
	require.NotNil(t, inv.PaidDate)
}

func TestSetStatusByCharge(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	_, err := svc.SetStatusByCharge(ctx, "pi_2", "BOGUS")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = svc.UpsertByNumber(ctx, domain.UpsertRequest{
		Number:           "PI-pi_2",
		Subtotal:         149000,
		Total:            149000,
		Status:           domain.StatusSent,
		ProviderChargeID: "pi_2",
	})
	require.NoError(t, err)

	n, err := svc.SetStatusByCharge(ctx, "pi_2", domain.StatusOverdue)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	// Assignment is idempotent under redelivery.
	n, err = svc.SetStatusByCharge(ctx, "pi_2", domain.StatusOverdue)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var inv domain.Invoice
	require.NoError(t, db.Where("provider_charge_id = ?", "pi_2").First(&inv).Error)
	assert.Equal(t, domain.StatusOverdue, inv.Status)
}

func TestCreate(t *testing.T) {
	svc, _ := newService(t)

	inv, err := svc.Create(context.Background(), domain.CreateRequest{
		Subtotal: 100000,
		TaxRate:  0.20,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(inv.Number, "INV-"+time.Now().UTC().Format("20060102")+"-"))
	assert.EqualValues(t, 20000, inv.TaxAmount)
	assert.EqualValues(t, 120000, inv.Total)
	assert.Equal(t, "EUR", inv.Currency)
	assert.Equal(t, domain.StatusDraft, inv.Status)

	wantDue := time.Now().UTC().AddDate(0, 0, 30)
	assert.WithinDuration(t, wantDue, inv.DueDate, time.Minute)
}

func TestCreate_InvalidAmount(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Create(context.Background(), domain.CreateRequest{Subtotal: -100})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestSetStatus(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	inv, err := svc.Create(ctx, domain.CreateRequest{Subtotal: 149000})
	require.NoError(t, err)
	require.Nil(t, inv.PaidDate)

	_, err = svc.SetStatus(ctx, inv.ID, "NOPE")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	updated, err := svc.SetStatus(ctx, inv.ID, domain.StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, updated.Status)
	require.NotNil(t, updated.PaidDate)

	_, err = svc.SetStatus(ctx, snowflake.ID(999999), domain.StatusSent)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetByID_Missing(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.GetByID(context.Background(), snowflake.ID(123))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestList_FilterAndTotal(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, domain.CreateRequest{Subtotal: int64(1000 * (i + 1))})
		require.NoError(t, err)
	}
	inv, err := svc.Create(ctx, domain.CreateRequest{Subtotal: 5000})
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, inv.ID, domain.StatusSent)
	require.NoError(t, err)

	all, total, err := svc.List(ctx, domain.ListRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, all, 4)

	sent, total, err := svc.List(ctx, domain.ListRequest{Status: domain.StatusSent})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, sent, 1)
	assert.Equal(t, inv.ID, sent[0].ID)
}
