package repository_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolga/rota/internal/model"
	"github.com/tolga/rota/internal/repository"
	"github.com/tolga/rota/internal/testutil"
)

func createTestTenant(t *testing.T, db *repository.DB) *model.Tenant {
	t.Helper()
	tenantRepo := repository.NewTenantRepository(db)
	tenant := &model.Tenant{
		Name:     "Test Unit " + uuid.New().String()[:8],
		Slug:     "unit-" + uuid.New().String()[:8],
		IsActive: true,
	}
	require.NoError(t, tenantRepo.Create(context.Background(), tenant))
	return tenant
}

func TestStaffRepository_CreateAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewStaffRepository(db)
	ctx := context.Background()

	tenant := createTestTenant(t, db)

	first := &model.Staff{TenantID: tenant.ID, Name: "Dr. Bal", Title: "Asst. Dr.", Seniority: "ara", IsActive: true}
	second := &model.Staff{TenantID: tenant.ID, Name: "Dr. Aksoy", Title: "Uzm. Dr.", Seniority: "uzman", IsActive: true}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	staff, err := repo.ListByTenant(ctx, tenant.ID)
	require.NoError(t, err)
	require.Len(t, staff, 2)
	assert.Equal(t, "Dr. Aksoy", staff[0].Name, "staff listed in name order")
	assert.Equal(t, "Dr. Bal", staff[1].Name)
}

func TestStaffRepository_ListSkipsInactive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewStaffRepository(db)
	ctx := context.Background()

	tenant := createTestTenant(t, db)

	active := &model.Staff{TenantID: tenant.ID, Name: "Active", Title: "Asst. Dr.", Seniority: "ara", IsActive: true}
	require.NoError(t, repo.Create(ctx, active))
	inactive := &model.Staff{TenantID: tenant.ID, Name: "Gone", Title: "Asst. Dr.", Seniority: "ara"}
	require.NoError(t, repo.Create(ctx, inactive))
	inactive.IsActive = false
	require.NoError(t, repo.Update(ctx, inactive))

	staff, err := repo.ListByTenant(ctx, tenant.ID)
	require.NoError(t, err)
	require.Len(t, staff, 1)
	assert.Equal(t, "Active", staff[0].Name)
}

func TestStaffRepository_GetByIDScopedToTenant(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewStaffRepository(db)
	ctx := context.Background()

	tenant := createTestTenant(t, db)
	other := createTestTenant(t, db)

	staff := &model.Staff{TenantID: tenant.ID, Name: "Dr. Can", Title: "Asst. Dr.", Seniority: "comez", IsActive: true}
	require.NoError(t, repo.Create(ctx, staff))

	found, err := repo.GetByID(ctx, tenant.ID, staff.ID)
	require.NoError(t, err)
	assert.Equal(t, staff.Name, found.Name)

	_, err = repo.GetByID(ctx, other.ID, staff.ID)
	assert.ErrorIs(t, err, repository.ErrStaffNotFound)
}
