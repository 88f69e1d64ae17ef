package earnings

import (
	"context"
	"encoding/json"
	"testing"

	"maroctour/internal/database/dbtest"
	"maroctour/internal/domain/currency"
	"maroctour/internal/domain/payment"
	"maroctour/internal/domain/profile"
	"maroctour/internal/pkg/pagination"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fixedConverter quotes 1 EUR = 10 MAD.
type fixedConverter struct{}

func (fixedConverter) Convert(_ context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	switch {
	case from == to:
		return amount, nil
	case from == "EUR" && to == "MAD":
		return amount.Mul(decimal.NewFromInt(10)).Round(2), nil
	}
	return decimal.Zero, currency.ErrUnsupportedCurrency
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := dbtest.Open(t, &profile.Profile{}, &Entry{})
	repo := profile.NewRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &profile.Profile{ID: "partner-1", Email: "riad@example.ma", Role: profile.RolePartnerHotel}))
	require.NoError(t, repo.Create(ctx, &profile.Profile{ID: "client-1", Email: "client@example.ma", Role: profile.RoleClient}))
	return NewService(db, fixedConverter{}, nil), db
}

func TestCredit(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	entry, applied, err := svc.Credit(ctx, "partner-1", "pay-1", dec("900.00"), "MAD")
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, EntryCredit, entry.Type)

	_, applied, err = svc.Credit(ctx, "partner-1", "pay-1", dec("900.00"), "MAD")
	require.NoError(t, err)
	assert.False(t, applied, "second delivery must not credit again")

	_, _, err = svc.Credit(ctx, "partner-1", "pay-2", dec("45.50"), "EUR")
	require.NoError(t, err)

	b, err := svc.Balance(ctx, "partner-1")
	require.NoError(t, err)
	assert.Equal(t, "1355.00", b.Total.StringFixed(2))
	assert.Equal(t, "1355.00", b.Pending.StringFixed(2))
	assert.Equal(t, "0.00", b.Paid.StringFixed(2))
	assert.Equal(t, LedgerCurrency, b.Currency)
}

func TestCredit_Rejects(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	_, _, err := svc.Credit(ctx, "client-1", "pay-1", dec("10"), "MAD")
	assert.ErrorIs(t, err, ErrPartnerNotFound)

	_, _, err = svc.Credit(ctx, "partner-1", "pay-1", dec("0"), "MAD")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, _, err = svc.Credit(ctx, "partner-1", "pay-1", dec("10"), "USD")
	assert.ErrorIs(t, err, currency.ErrUnsupportedCurrency)
}

func TestReverse(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	_, _, err := svc.Reverse(ctx, "pay-1", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrNoCredit)

	_, _, err = svc.Credit(ctx, "partner-1", "pay-1", dec("30.00"), "EUR")
	require.NoError(t, err)

	entry, applied, err := svc.Reverse(ctx, "pay-1", decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, "300.00", entry.Amount.StringFixed(2))
	assert.Equal(t, "EUR", entry.SourceCurrency)

	_, applied, err = svc.Reverse(ctx, "pay-1", decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.False(t, applied)

	b, err := svc.Balance(ctx, "partner-1")
	require.NoError(t, err)
	assert.True(t, b.Total.IsZero())
	assert.True(t, b.Pending.IsZero())
}

func TestReverse_PartialShare(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	_, _, err := svc.Credit(ctx, "partner-1", "pay-1", dec("900.00"), "MAD")
	require.NoError(t, err)

	_, _, err = svc.Reverse(ctx, "pay-1", dec("0"))
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, _, err = svc.Reverse(ctx, "pay-1", dec("1.5"))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	entry, applied, err := svc.Reverse(ctx, "pay-1", dec("0.01"))
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, "9.00", entry.Amount.StringFixed(2))

	b, err := svc.Balance(ctx, "partner-1")
	require.NoError(t, err)
	assert.Equal(t, "891.00", b.Total.StringFixed(2))
	assert.Equal(t, "891.00", b.Pending.StringFixed(2))
}

func TestPayout(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	_, _, err := svc.Credit(ctx, "partner-1", "pay-1", dec("900.00"), "MAD")
	require.NoError(t, err)

	_, _, err = svc.Payout(ctx, "partner-1", dec("1000"), "admin-1", "")
	assert.ErrorIs(t, err, ErrInsufficientPending)

	_, _, err = svc.Payout(ctx, "partner-1", dec("-5"), "admin-1", "")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	entry, b, err := svc.Payout(ctx, "partner-1", dec("600"), "admin-1", "virement avril")
	require.NoError(t, err)
	assert.Equal(t, EntryPayout, entry.Type)
	assert.Nil(t, entry.PaymentID)
	assert.Equal(t, "admin-1", entry.CreatedBy)
	assert.Equal(t, "300.00", b.Pending.StringFixed(2))
	assert.Equal(t, "600.00", b.Paid.StringFixed(2))
	assert.Equal(t, "900.00", b.Total.StringFixed(2))

	// a second payout has no payment id either; the unique index must allow it
	_, _, err = svc.Payout(ctx, "partner-1", dec("300"), "admin-1", "")
	require.NoError(t, err)

	items, total, err := svc.Entries(ctx, "partner-1", pagination.Parse("1", "10"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, items, 3)
}

func TestBalance_NotPartner(t *testing.T) {
	svc, _ := setupTestService(t)

	_, err := svc.Balance(context.Background(), "client-1")
	assert.ErrorIs(t, err, ErrPartnerNotFound)
	_, err = svc.Balance(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrPartnerNotFound)
}

func eventBody(t *testing.T, evt payment.Event) []byte {
	t.Helper()
	b, err := json.Marshal(evt)
	require.NoError(t, err)
	return b
}

func TestHandlePaymentEvent(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	evt := payment.Event{PaymentID: "pay-1", PartnerID: "partner-1", PartnerAmount: "450.00", Currency: "MAD"}
	require.NoError(t, svc.HandlePaymentEvent(ctx, payment.EventSucceeded, eventBody(t, evt)))
	require.NoError(t, svc.HandlePaymentEvent(ctx, payment.EventSucceeded, eventBody(t, evt)))

	b, err := svc.Balance(ctx, "partner-1")
	require.NoError(t, err)
	assert.Equal(t, "450.00", b.Pending.StringFixed(2))

	require.NoError(t, svc.HandlePaymentEvent(ctx, payment.EventRefunded, eventBody(t, evt)))
	b, err = svc.Balance(ctx, "partner-1")
	require.NoError(t, err)
	assert.True(t, b.Pending.IsZero())

	// a 10 MAD refund on a 1000 MAD payment only takes back its share
	partial := payment.Event{PaymentID: "pay-5", PartnerID: "partner-1", Amount: "1000.00", PartnerAmount: "900.00", Currency: "MAD"}
	require.NoError(t, svc.HandlePaymentEvent(ctx, payment.EventSucceeded, eventBody(t, partial)))
	partial.RefundedAmount = "10.00"
	require.NoError(t, svc.HandlePaymentEvent(ctx, payment.EventRefunded, eventBody(t, partial)))
	b, err = svc.Balance(ctx, "partner-1")
	require.NoError(t, err)
	assert.Equal(t, "891.00", b.Total.StringFixed(2))
	assert.Equal(t, "891.00", b.Pending.StringFixed(2))

	// never-applicable events are dropped, not requeued
	assert.NoError(t, svc.HandlePaymentEvent(ctx, payment.EventSucceeded, []byte("{bad")))
	assert.NoError(t, svc.HandlePaymentEvent(ctx, payment.EventSucceeded,
		eventBody(t, payment.Event{PaymentID: "pay-2", PartnerID: "ghost", PartnerAmount: "10", Currency: "MAD"})))
	assert.NoError(t, svc.HandlePaymentEvent(ctx, payment.EventSucceeded,
		eventBody(t, payment.Event{PaymentID: "pay-3", PartnerID: "partner-1", PartnerAmount: "10", Currency: "USD"})))
	assert.NoError(t, svc.HandlePaymentEvent(ctx, payment.EventRefunded, eventBody(t, payment.Event{PaymentID: "pay-9"})))
	assert.NoError(t, svc.HandlePaymentEvent(ctx, payment.EventSucceeded, eventBody(t, payment.Event{PaymentID: "pay-4"})))
}
