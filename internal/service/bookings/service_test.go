package bookings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andmv/LDM-BookingService/internal/domain"
	"github.com/andmv/LDM-BookingService/internal/integrations/catalogservice"
	"github.com/andmv/LDM-BookingService/internal/integrations/paymentgateway"
	"github.com/andmv/LDM-BookingService/internal/refund"
	"github.com/andmv/LDM-BookingService/internal/service/bookings/models"
	"github.com/andmv/LDM-BookingService/pkg/ptr"
	"github.com/andmv/LDM-BookingService/pkg/timerange"
)

type mockBookingRepo struct {
	bookings map[int64]*domain.Booking

	busy       []timerange.Range
	lastFilter domain.BlockingRangesFilter

	confirmedID   int64
	cancelledWith domain.BookingStatus
	updatedRange  *timerange.Range

	stale       []*domain.Booking
	expiredIDs  []int64
	markExpired func(ids []int64) int64
}

func (m *mockBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	b, ok := m.bookings[id]
	if !ok {
		return nil, errors.New("booking not found: not found")
	}
	clone := *b
	return &clone, nil
}

func (m *mockBookingRepo) GetByUserID(_ context.Context, userID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	var out []*domain.Booking
	for _, b := range m.bookings {
		if b.CustomerID != userID {
			continue
		}
		if status != nil && b.Status != *status {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (m *mockBookingRepo) GetByListingWithFilter(_ context.Context, filter domain.ListingBookingsFilter) ([]*domain.Booking, error) {
	var out []*domain.Booking
	for _, b := range m.bookings {
		if b.ListingID == filter.ListingID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockBookingRepo) FindBlockingRanges(_ context.Context, filter domain.BlockingRangesFilter) ([]timerange.Range, error) {
	m.lastFilter = filter
	return m.busy, nil
}

func (m *mockBookingRepo) UpdateStatus(_ context.Context, id int64, status domain.BookingStatus) error {
	m.bookings[id].Status = status
	return nil
}

func (m *mockBookingRepo) ConfirmPayment(_ context.Context, id int64, orderRef *string) error {
	m.confirmedID = id
	m.bookings[id].Status = domain.StatusConfirmed
	m.bookings[id].ExternalOrderRef = orderRef
	return nil
}

func (m *mockBookingRepo) Cancel(_ context.Context, id int64, status domain.BookingStatus, reason string) error {
	m.cancelledWith = status
	m.bookings[id].Status = status
	m.bookings[id].CancellationReason = &reason
	return nil
}

func (m *mockBookingRepo) UpdateRange(_ context.Context, id int64, start, end time.Time, timezone string) error {
	m.updatedRange = &timerange.Range{Start: start, End: end}
	m.bookings[id].StartDatetime = start
	m.bookings[id].EndDatetime = end
	m.bookings[id].Timezone = timezone
	return nil
}

func (m *mockBookingRepo) FindStalePending(_ context.Context, _ time.Time) ([]*domain.Booking, error) {
	return m.stale, nil
}

func (m *mockBookingRepo) MarkExpired(_ context.Context, ids []int64) (int64, error) {
	m.expiredIDs = ids
	if m.markExpired != nil {
		return m.markExpired(ids), nil
	}
	for _, id := range ids {
		if b, ok := m.bookings[id]; ok {
			b.Status = domain.StatusExpired
		}
	}
	return int64(len(ids)), nil
}

type mockScheduleRepo struct {
	cfg *domain.ScheduleConfig
}

func (m *mockScheduleRepo) GetByListingID(_ context.Context, _ int64) (*domain.ScheduleConfig, error) {
	return m.cfg, nil
}

type mockCatalog struct {
	listing *catalogservice.Listing
	err     error
}

func (m *mockCatalog) GetListing(_ context.Context, _ int64) (*catalogservice.Listing, error) {
	return m.listing, m.err
}

type mockGateway struct {
	result *paymentgateway.RefundResult
	err    error

	calls      int
	lastAmount float64
}

func (m *mockGateway) RefundWithGracefulDegradation(_ context.Context, _ string, amount float64, _ string) (*paymentgateway.RefundResult, error) {
	m.calls++
	m.lastAmount = amount
	return m.result, m.err
}

type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedTime struct{ now time.Time }

func (f *fixedTime) Now() time.Time { return f.now }

type noopLogger struct{}

func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}

var (
	testNow   = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	testStart = testNow.Add(72 * time.Hour)
)

const (
	customerID = int64(42)
	ownerID    = int64(7)
	strangerID = int64(999)
)

// Возврат 100% при lead time > 48 часов, 50% за 24-48 часов, иначе ничего
func testPolicy() refund.Policy {
	return refund.Policy{
		Tiers: []refund.Tier{
			{MinLeadMinutes: 48 * 60, Percent: 100},
			{MinLeadMinutes: 24 * 60, Percent: 50},
		},
	}
}

func testBooking(status domain.BookingStatus) *domain.Booking {
	return &domain.Booking{
		ID:            1,
		ListingID:     3,
		ServiceID:     10,
		CustomerID:    customerID,
		StartDatetime: testStart,
		EndDatetime:   testStart.Add(time.Hour),
		Timezone:      "UTC",
		Status:        status,
		Price:         60,
		Currency:      "USD",
	}
}

func newTestService(repo *mockBookingRepo, catalog *mockCatalog, gateway *mockGateway) *Service {
	cfg := &domain.ScheduleConfig{
		Enabled:                  true,
		Timezone:                 "UTC",
		RescheduleEnabled:         true,
		RescheduleRestrictEnabled: true,
		RescheduleCutoffValue:     24,
		RescheduleCutoffUnit:      domain.CutoffUnitHours,
		PendingBlocksSlots:        true,
	}
	svc := NewService(repo, &mockScheduleRepo{cfg: cfg}, catalog, gateway, fakeTxManager{}, testPolicy(), time.Hour, noopLogger{})
	svc.timeProvider = &fixedTime{now: testNow}
	return svc
}

func ownedListing() *catalogservice.Listing {
	return &catalogservice.Listing{ID: 3, OwnerIDs: []int64{ownerID}}
}

func TestConfirm_PendingToConfirmed(t *testing.T) {
	repo := &mockBookingRepo{bookings: map[int64]*domain.Booking{1: testBooking(domain.StatusPendingPayment)}}

	svc := newTestService(repo, &mockCatalog{listing: ownedListing()}, &mockGateway{})
	orderRef := ptr.Ptr("order-555")
	resp, err := svc.Confirm(context.Background(), 1, &models.ConfirmBookingRequest{UserID: customerID, ExternalOrderRef: orderRef})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.Equal(t, int64(1), repo.confirmedID)
	require.NotNil(t, resp.ExternalOrderRef)
	assert.Equal(t, "order-555", *resp.ExternalOrderRef)
}

func TestConfirm_AlreadyConfirmedIsNoop(t *testing.T) {
	repo := &mockBookingRepo{bookings: map[int64]*domain.Booking{1: testBooking(domain.StatusConfirmed)}}

	svc := newTestService(repo, &mockCatalog{listing: ownedListing()}, &mockGateway{})
	resp, err := svc.Confirm(context.Background(), 1, &models.ConfirmBookingRequest{UserID: customerID})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.Zero(t, repo.confirmedID)
}

func TestConfirm_TerminalStatusRejected(t *testing.T) {
	for _, status := range []domain.BookingStatus{domain.StatusCancelled, domain.StatusExpired, domain.StatusCompleted} {
		repo := &mockBookingRepo{bookings: map[int64]*domain.Booking{1: testBooking(status)}}

		svc := newTestService(repo, &mockCatalog{listing: ownedListing()}, &mockGateway{})
		_, err := svc.Confirm(context.Background(), 1, &models.ConfirmBookingRequest{UserID: customerID})
		assert.ErrorIs(t, err, ErrInvalidTransition, "status=%s", status)
	}
}

func TestCancel_PendingWithoutPayment(t *testing.T) {
	repo := &mockBookingRepo{bookings: map[int64]*domain.Booking{1: testBooking(domain.StatusPendingPayment)}}
	gateway := &mockGateway{}

	svc := newTestService(repo, &mockCatalog{listing: ownedListing()}, gateway)
	resp, err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: customerID, CancellationReason: "changed my mind"})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusCancelled), resp.Booking.Status)
	assert.Nil(t, resp.Refund)
	assert.Empty(t, resp.Warning)
	assert.Zero(t, gateway.calls)
}

func TestCancel_FullRefundFromConfirmed(t *testing.T) {
	booking := testBooking(domain.StatusConfirmed)
	booking.ExternalOrderRef = ptr.Ptr("order-555")
	repo := &mockBookingRepo{bookings: map[int64]*domain.Booking{1: booking}}
	gateway := &mockGateway{result: &paymentgateway.RefundResult{Success: true, Amount: 60, Automatic: true}}

	svc := newTestService(repo, &mockCatalog{listing: ownedListing()}, gateway)
	// now на 72 часа раньше начала: тир 100%
	resp, err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: customerID, CancellationReason: "plans changed"})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusRefunded), resp.Booking.Status)
	require.NotNil(t, resp.Refund)
	assert.Equal(t, 60.0, resp.Refund.Amount)
	assert.True(t, resp.Refund.Automatic)
	assert.Empty(t, resp.Warning)
	assert.Equal(t, 60.0, gateway.lastAmount)
	assert.Equal(t, domain.StatusRefunded, repo.cancelledWith)
}

func TestCancel_GatewayFailureDoesNotBlockCancellation(t *testing.T) {
	booking := testBooking(domain.StatusConfirmed)
	booking.ExternalOrderRef = ptr.Ptr("order-555")
	repo := &mockBookingRepo{bookings: map[int64]*domain.Booking{1: booking}}
	gateway := &mockGateway{err: paymentgateway.ErrServiceDegraded}

	svc := newTestService(repo, &mockCatalog{listing: ownedListing()}, gateway)
	resp, err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: customerID, CancellationReason: "plans changed"})
	require.NoError(t, err)

	// Отмена прошла, возврат - нет: статус cancelled плюс предупреждение
	assert.Equal(t, string(domain.StatusCancelled), resp.Booking.Status)
	assert.NotEmpty(t, resp.Warning)
	assert.Equal(t, domain.StatusCancelled, repo.cancelledWith)
}

func TestCancel_NoRefundTierSkipsGateway(t *testing.T) {
	booking := testBooking(domain.StatusConfirmed)
	booking.StartDatetime = testNow.Add(2 * time.Hour)
	booking.ExternalOrderRef = ptr.Ptr("order-555")
	repo := &mockBookingRepo{bookings: map[int64]*domain.Booking{1: booking}}
	gateway := &mockGateway{}

	svc := newTestService(repo, &mockCatalog{listing: ownedListing()}, gateway)
	resp, err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: customerID, CancellationReason: "late cancellation"})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusCancelled), resp.Booking.Status)
	assert.Nil(t, resp.Refund)
	assert.Zero(t, gateway.calls)
}

func TestCancel_OwnerCanCancelForeignBooking(t *testing.T) {
	repo := &mockBookingRepo{bookings: map[int64]*domain.Booking{1: testBooking(domain.StatusConfirmed)}}

	svc := newTestService(repo, &mockCatalog{listing: ownedListing()}, &mockGateway{})
	_, err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: ownerID, CancellationReason: "listing maintenance"})
	assert.NoError(t, err)
}

func TestCancel_StrangerDenied(t *testing.T) {
	repo := &mockBookingRepo{bookings: map[int64]*domain.Booking{1: testBooking(domain.StatusConfirmed)}}

	svc := newTestService(repo, &mockCatalog{listing: ownedListing()}, &mockGateway{})
	_, err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: strangerID, CancellationReason: "hijack"})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestCancel_TerminalStatusRejected(t *testing.T) {
	repo := &mockBookingRepo{bookings: map[int64]*domain.Booking{1: testBooking(domain.StatusExpired)}}

	svc := newTestService(repo, &mockCatalog{listing: ownedListing()}, &mockGateway{})
	_, err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: customerID, CancellationReason: "too late"})
	assert.ErrorIs(t, err, ErrCannotCancel)
}

func TestReschedule_Success(t *testing.T) {
	repo := &mockBookingRepo{bookings: map[int64]*domain.Booking{1: testBooking(domain.StatusConfirmed)}}

	newStart := testStart.Add(24 * time.Hour)
	newEnd := newStart.Add(time.Hour)

	svc := newTestService(repo, &mockCatalog{listing: ownedListing()}, &mockGateway{})
	resp, err := svc.Reschedule(context.Background(), 1, &models.RescheduleBookingRequest{
		UserID:   customerID,
		NewStart: newStart,
		NewEnd:   newEnd,
	})
	require.NoError(t, err)

	assert.True(t, resp.StartDatetime.Equal(newStart))
	require.NotNil(t, repo.updatedRange)
	assert.True(t, repo.updatedRange.Start.Equal(newStart))

	// Собственный диапазон исключен из проверки конфликтов
	require.NotNil(t, repo.lastFilter.ExcludeBookingID)
	assert.Equal(t, int64(1), *repo.lastFilter.ExcludeBookingID)
}

func TestReschedule_ConflictRejected(t *testing.T) {
	newStart := testStart.Add(24 * time.Hour)
	newEnd := newStart.Add(time.Hour)

	repo := &mockBookingRepo{
		bookings: map[int64]*domain.Booking{1: testBooking(domain.StatusConfirmed)},
		busy:     []timerange.Range{{Start: newStart.Add(30 * time.Minute), End: newEnd.Add(time.Hour)}},
	}

	svc := newTestService(repo, &mockCatalog{listing: ownedListing()}, &mockGateway{})
	_, err := svc.Reschedule(context.Background(), 1, &models.RescheduleBookingRequest{
		UserID:   customerID,
		NewStart: newStart,
		NewEnd:   newEnd,
	})
	assert.ErrorIs(t, err, ErrSlotConflict)
	assert.Nil(t, repo.updatedRange)
}

func TestReschedule_OnlyConfirmed(t *testing.T) {
	repo := &mockBookingRepo{bookings: map[int64]*domain.Booking{1: testBooking(domain.StatusPendingPayment)}}

	svc := newTestService(repo, &mockCatalog{listing: ownedListing()}, &mockGateway{})
	_, err := svc.Reschedule(context.Background(), 1, &models.RescheduleBookingRequest{
		UserID:   customerID,
		NewStart: testStart.Add(24 * time.Hour),
		NewEnd:   testStart.Add(25 * time.Hour),
	})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestReschedule_CutoffTooClose(t *testing.T) {
	// Начало через 12 часов при cutoff 24 часа: окно переноса закрыто
	booking := testBooking(domain.StatusConfirmed)
	booking.StartDatetime = testNow.Add(12 * time.Hour)
	booking.EndDatetime = booking.StartDatetime.Add(time.Hour)
	repo := &mockBookingRepo{bookings: map[int64]*domain.Booking{1: booking}}

	svc := newTestService(repo, &mockCatalog{listing: ownedListing()}, &mockGateway{})
	_, err := svc.Reschedule(context.Background(), 1, &models.RescheduleBookingRequest{
		UserID:   customerID,
		NewStart: testNow.Add(48 * time.Hour),
		NewEnd:   testNow.Add(49 * time.Hour),
	})
	assert.ErrorIs(t, err, ErrRescheduleNotAllowed)
}

func TestReschedule_InvalidRange(t *testing.T) {
	repo := &mockBookingRepo{bookings: map[int64]*domain.Booking{1: testBooking(domain.StatusConfirmed)}}

	svc := newTestService(repo, &mockCatalog{listing: ownedListing()}, &mockGateway{})
	_, err := svc.Reschedule(context.Background(), 1, &models.RescheduleBookingRequest{
		UserID:   customerID,
		NewStart: testStart,
		NewEnd:   testStart,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExpireStaleHolds_Batch(t *testing.T) {
	stale1 := testBooking(domain.StatusPendingPayment)
	stale2 := testBooking(domain.StatusPendingPayment)
	stale2.ID = 2

	repo := &mockBookingRepo{
		bookings: map[int64]*domain.Booking{1: stale1, 2: stale2},
		stale:    []*domain.Booking{stale1, stale2},
	}

	svc := newTestService(repo, &mockCatalog{listing: ownedListing()}, &mockGateway{})
	resp, err := svc.ExpireStaleHolds(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), resp.ExpiredCount)
	assert.ElementsMatch(t, []int64{1, 2}, repo.expiredIDs)
	assert.Equal(t, domain.StatusExpired, repo.bookings[1].Status)
	assert.Equal(t, domain.StatusExpired, repo.bookings[2].Status)
}

func TestExpireStaleHolds_Idempotent(t *testing.T) {
	stale := testBooking(domain.StatusPendingPayment)
	repo := &mockBookingRepo{
		bookings: map[int64]*domain.Booking{1: stale},
		stale:    []*domain.Booking{stale},
	}

	svc := newTestService(repo, &mockCatalog{listing: ownedListing()}, &mockGateway{})
	first, err := svc.ExpireStaleHolds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ExpiredCount)

	// Повторный запуск не находит необработанных строк
	repo.stale = nil
	second, err := svc.ExpireStaleHolds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), second.ExpiredCount)
	assert.Equal(t, domain.StatusExpired, repo.bookings[1].Status)
}

func TestExpireStaleHolds_NoStaleIsNoop(t *testing.T) {
	repo := &mockBookingRepo{bookings: map[int64]*domain.Booking{}}

	svc := newTestService(repo, &mockCatalog{listing: ownedListing()}, &mockGateway{})
	resp, err := svc.ExpireStaleHolds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.ExpiredCount)
	assert.Nil(t, repo.expiredIDs)
}

func TestGetByID_AccessChecks(t *testing.T) {
	repo := &mockBookingRepo{bookings: map[int64]*domain.Booking{1: testBooking(domain.StatusConfirmed)}}

	svc := newTestService(repo, &mockCatalog{listing: ownedListing()}, &mockGateway{})

	_, err := svc.GetByID(context.Background(), 1, customerID)
	assert.NoError(t, err)

	_, err = svc.GetByID(context.Background(), 1, ownerID)
	assert.NoError(t, err)

	_, err = svc.GetByID(context.Background(), 1, strangerID)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestGetListingBookings_OwnerOnly(t *testing.T) {
	repo := &mockBookingRepo{bookings: map[int64]*domain.Booking{1: testBooking(domain.StatusConfirmed)}}

	svc := newTestService(repo, &mockCatalog{listing: ownedListing()}, &mockGateway{})

	resp, err := svc.GetListingBookings(context.Background(), &models.GetListingBookingsRequest{
		UserID:    ownerID,
		ListingID: 3,
	})
	require.NoError(t, err)
	assert.Len(t, resp.Bookings, 1)

	_, err = svc.GetListingBookings(context.Background(), &models.GetListingBookingsRequest{
		UserID:    strangerID,
		ListingID: 3,
	})
	assert.ErrorIs(t, err, ErrAccessDenied)
}
