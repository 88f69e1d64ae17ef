package profile

import (
	"context"
	"testing"

	"maroctour/internal/database/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestService(t *testing.T) (*Service, *Repository) {
	t.Helper()
	db := dbtest.Open(t, &Profile{})
	repo := NewRepository(db)
	return NewService(repo, []string{"admin@maroctour.ma"}), repo
}

func strPtr(s string) *string { return &s }

func TestCreateAppliesDefaults(t *testing.T) {
	_, repo := setupTestService(t)
	ctx := context.Background()

	p := &Profile{Email: "client@example.ma"}
	require.NoError(t, repo.Create(ctx, p))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, RoleClient, got.Role)
	assert.Equal(t, DefaultCountry, got.Country)
	assert.Equal(t, StatusActive, got.Status)
	assert.False(t, got.IsVerified)
	assert.Equal(t, "0.1", got.CommissionRate.String())
}

func TestUpdateMe_ClientCannotSetBankDetails(t *testing.T) {
	svc, repo := setupTestService(t)
	ctx := context.Background()

	p := &Profile{Email: "client@example.ma", Role: RoleClient}
	require.NoError(t, repo.Create(ctx, p))

	updated, err := svc.UpdateMe(ctx, p.ID, UpdateMeRequest{
		FirstName: strPtr(" Amina "),
		City:      strPtr("Fès"),
		IBAN:      strPtr("MA64011111000001234567890123"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Amina", updated.FirstName)
	assert.Equal(t, "Fès", updated.City)
	assert.Empty(t, updated.IBAN)
}

func TestUpdateMe_PartnerBankDetails(t *testing.T) {
	svc, repo := setupTestService(t)
	ctx := context.Background()

	p := &Profile{Email: "riad@example.ma", Role: RolePartnerHotel}
	require.NoError(t, repo.Create(ctx, p))

	updated, err := svc.UpdateMe(ctx, p.ID, UpdateMeRequest{
		CompanyName: strPtr("Riad Atlas"),
		IBAN:        strPtr("ma64 0111 1100 0001 2345 6789 0123"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Riad Atlas", updated.CompanyName)
	assert.Equal(t, "MA64011111000001234567890123", updated.IBAN)
	assert.Equal(t, RolePartnerHotel, updated.Role)
}

func TestUpdateMe_NotFound(t *testing.T) {
	svc, _ := setupTestService(t)
	_, err := svc.UpdateMe(context.Background(), "missing", UpdateMeRequest{})
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestResolveForUser(t *testing.T) {
	svc, repo := setupTestService(t)
	ctx := context.Background()

	partner := &Profile{Email: "car@example.ma", Role: RolePartnerCar}
	require.NoError(t, repo.Create(ctx, partner))

	res := svc.ResolveForUser(ctx, partner.ID, "")
	assert.Equal(t, DestinationPartner, res.Destination)
	assert.Equal(t, "/dashboard/partner", res.RedirectPath)

	res = svc.ResolveForUser(ctx, "no-such-user", "someone@example.ma")
	assert.Equal(t, DestinationClient, res.Destination)
	assert.Nil(t, res.Profile)

	res = svc.ResolveForUser(ctx, "no-such-user", "ADMIN@maroctour.ma")
	assert.Equal(t, DestinationAdmin, res.Destination)
}

func TestAdminIDs(t *testing.T) {
	_, repo := setupTestService(t)
	ctx := context.Background()

	a := &Profile{Email: "root@example.ma", Role: RoleAdmin}
	b := &Profile{Email: "admin@maroctour.ma", Role: RoleClient}
	c := &Profile{Email: "client@example.ma", Role: RoleClient}
	for _, p := range []*Profile{a, b, c} {
		require.NoError(t, repo.Create(ctx, p))
	}

	ids, err := repo.AdminIDs(ctx, []string{"admin@maroctour.ma"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, ids)
}
