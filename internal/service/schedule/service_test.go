package schedule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andmv/LDM-BookingService/internal/domain"
	scheduleRepo "github.com/andmv/LDM-BookingService/internal/infra/storage/schedule"
	"github.com/andmv/LDM-BookingService/internal/integrations/catalogservice"
	"github.com/andmv/LDM-BookingService/internal/service/schedule/models"
)

type mockScheduleRepo struct {
	cfg      *domain.ScheduleConfig
	getErr   error
	upserted *domain.ScheduleConfig
}

func (m *mockScheduleRepo) GetByListingID(_ context.Context, _ int64) (*domain.ScheduleConfig, error) {
	return m.cfg, m.getErr
}

func (m *mockScheduleRepo) Upsert(_ context.Context, cfg *domain.ScheduleConfig) (*domain.ScheduleConfig, error) {
	m.upserted = cfg
	return cfg, nil
}

type mockCatalog struct {
	listing *catalogservice.Listing
	err     error
}

func (m *mockCatalog) GetListing(_ context.Context, _ int64) (*catalogservice.Listing, error) {
	return m.listing, m.err
}

type noopLogger struct{}

func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}

const ownerID = int64(7)

func ownedListing() *catalogservice.Listing {
	return &catalogservice.Listing{ID: 3, OwnerIDs: []int64{ownerID}}
}

func validUpdateRequest() *models.UpdateScheduleConfigRequest {
	return &models.UpdateScheduleConfigRequest{
		UserID:    ownerID,
		ListingID: 3,
		Enabled:   true,
		Timezone:  "Europe/Berlin",
		Hours: map[string][]models.ClockRange{
			"mon": {{Start: "09:00", End: "17:00"}},
		},
		SlotIntervalMinutes:   30,
		RescheduleEnabled:     true,
		RescheduleCutoffValue: 24,
		RescheduleCutoffUnit:  "hours",
		PendingBlocksSlots:    true,
	}
}

func TestGetConfig_Found(t *testing.T) {
	repo := &mockScheduleRepo{cfg: &domain.ScheduleConfig{ListingID: 3, Enabled: true, Timezone: "UTC"}}

	svc := NewService(repo, &mockCatalog{listing: ownedListing()}, noopLogger{})
	resp, err := svc.GetConfig(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.ListingID)
	assert.True(t, resp.Enabled)
}

func TestGetConfig_NotFound(t *testing.T) {
	repo := &mockScheduleRepo{getErr: scheduleRepo.ErrConfigNotFound}

	svc := NewService(repo, &mockCatalog{listing: ownedListing()}, noopLogger{})
	_, err := svc.GetConfig(context.Background(), 3)
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestUpdateConfig_OwnerUpserts(t *testing.T) {
	repo := &mockScheduleRepo{}

	svc := NewService(repo, &mockCatalog{listing: ownedListing()}, noopLogger{})
	resp, err := svc.UpdateConfig(context.Background(), validUpdateRequest())
	require.NoError(t, err)

	assert.Equal(t, "Europe/Berlin", resp.Timezone)
	require.NotNil(t, repo.upserted)
	assert.Equal(t, domain.CutoffUnitHours, repo.upserted.RescheduleCutoffUnit)
	assert.Len(t, repo.upserted.Hours["mon"], 1)
}

func TestUpdateConfig_StrangerDenied(t *testing.T) {
	repo := &mockScheduleRepo{}

	req := validUpdateRequest()
	req.UserID = 999

	svc := NewService(repo, &mockCatalog{listing: ownedListing()}, noopLogger{})
	_, err := svc.UpdateConfig(context.Background(), req)
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Nil(t, repo.upserted)
}

func TestUpdateConfig_ListingNotFound(t *testing.T) {
	svc := NewService(&mockScheduleRepo{}, &mockCatalog{err: catalogservice.ErrListingNotFound}, noopLogger{})
	_, err := svc.UpdateConfig(context.Background(), validUpdateRequest())
	assert.ErrorIs(t, err, ErrListingNotFound)
}

func TestUpdateConfig_Validation(t *testing.T) {
	svc := NewService(&mockScheduleRepo{}, &mockCatalog{listing: ownedListing()}, noopLogger{})

	req := validUpdateRequest()
	req.Timezone = "Mars/Olympus"
	_, err := svc.UpdateConfig(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = validUpdateRequest()
	req.Hours = map[string][]models.ClockRange{"monday": {{Start: "09:00", End: "17:00"}}}
	_, err = svc.UpdateConfig(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = validUpdateRequest()
	req.Hours = map[string][]models.ClockRange{"mon": {{Start: "17:00", End: "09:00"}}}
	_, err = svc.UpdateConfig(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = validUpdateRequest()
	req.DaysOff = []string{"07-09-2026"}
	_, err = svc.UpdateConfig(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = validUpdateRequest()
	req.SlotIntervalMinutes = 10000
	_, err = svc.UpdateConfig(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
