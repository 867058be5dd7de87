//go:build integration

package repositories

import (
	"context"
	"testing"

	"github.com/tailingsiq/tailingsiq-engine/pkg/models"
	"github.com/tailingsiq/tailingsiq-engine/pkg/testhelpers"
)

// repoTestContext holds shared dependencies for repository integration tests.
type repoTestContext struct {
	t   *testing.T
	db  *testhelpers.TestDB
	ctx context.Context
}

// setupRepoTest initializes the shared testcontainer and truncates all
// tables so each test starts from a clean database.
func setupRepoTest(t *testing.T) *repoTestContext {
	db := testhelpers.GetTestDB(t)
	db.TruncateAll(t)
	return &repoTestContext{
		t:   t,
		db:  db,
		ctx: context.Background(),
	}
}

// createTestUser inserts a user directly for tests that need one.
func (tc *repoTestContext) createTestUser(email, role string) *models.User {
	tc.t.Helper()
	repo := NewUserRepository(tc.db.DB)
	user := &models.User{
		Email:        email,
		PasswordHash: "$2a$10$N9qo8uLOickgx2ZMRZoMye.fake.hash.for.tests.only",
		Name:         "Test User",
		Role:         role,
	}
	if err := repo.Create(tc.ctx, user); err != nil {
		tc.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// createTestFacility inserts a facility directly for tests that need one.
func (tc *repoTestContext) createTestFacility(name string) *models.Facility {
	tc.t.Helper()
	repo := NewFacilityRepository(tc.db.DB)
	facility := &models.Facility{
		Name:     name,
		Location: "British Columbia, Canada",
		Status:   models.FacilityStatusActive,
	}
	if err := repo.Create(tc.ctx, facility); err != nil {
		tc.t.Fatalf("failed to create test facility: %v", err)
	}
	return facility
}

func strPtr(s string) *string { return &s }
