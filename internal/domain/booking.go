package domain

import (
	"fmt"
	"time"

	"github.com/andmv/LDM-BookingService/pkg/timerange"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPendingPayment BookingStatus = "pending_payment"
	StatusConfirmed      BookingStatus = "confirmed"
	StatusCancelled      BookingStatus = "cancelled"
	StatusRefunded       BookingStatus = "refunded"
	StatusExpired        BookingStatus = "expired"
	StatusCompleted      BookingStatus = "completed"
)

// allowedTransitions закрытая таблица переходов статусов.
// Возврат в pending_payment невозможен ни из какого состояния.
var allowedTransitions = map[BookingStatus][]BookingStatus{
	StatusPendingPayment: {StatusConfirmed, StatusCancelled, StatusExpired},
	StatusConfirmed:      {StatusCancelled, StatusRefunded, StatusCompleted},
	StatusCancelled:      {},
	StatusRefunded:       {},
	StatusExpired:        {},
	StatusCompleted:      {},
}

// ParseBookingStatus валидирует строковое значение статуса
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if _, ok := allowedTransitions[status]; !ok {
		return "", fmt.Errorf("unknown booking status %q", s)
	}
	return status, nil
}

// CanTransitionTo проверяет допустимость перехода в следующий статус
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal returns true for final states
func (s BookingStatus) IsTerminal() bool {
	return len(allowedTransitions[s]) == 0
}

// BlockingStatuses возвращает набор статусов, которые занимают свой временной
// диапазон при проверке конфликтов. Неоплаченные холды можно исключить
// политикой листинга (pendingBlocks=false).
func BlockingStatuses(pendingBlocks bool) []BookingStatus {
	if pendingBlocks {
		return []BookingStatus{StatusPendingPayment, StatusConfirmed}
	}
	return []BookingStatus{StatusConfirmed}
}

// Booking represents a reservation of a listing's service for a time range.
// StartDatetime/EndDatetime are absolute instants; Timezone is kept for
// display only, all conflict math uses the instants.
type Booking struct {
	ID         int64
	ListingID  int64
	ServiceID  int64
	CustomerID int64

	StartDatetime time.Time
	EndDatetime   time.Time
	Timezone      string

	Status   BookingStatus
	Price    float64
	Currency string

	// Ссылка на заказ во внешней коммерс-системе. nil = оплата не начата.
	ExternalOrderRef *string

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Range returns the booked interval as a half-open range
func (b *Booking) Range() timerange.Range {
	return timerange.Range{Start: b.StartDatetime, End: b.EndDatetime}
}

// HasPayment returns true if the booking is linked to an external order
func (b *Booking) HasPayment() bool {
	return b.ExternalOrderRef != nil && *b.ExternalOrderRef != ""
}

// CanBeCancelled returns true if the booking can still be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPendingPayment || b.Status == StatusConfirmed
}

// IsStaleHold проверяет, что это неоплаченный холд старше ttl
func (b *Booking) IsStaleHold(now time.Time, ttl time.Duration) bool {
	return b.Status == StatusPendingPayment && !b.HasPayment() && now.Sub(b.CreatedAt) > ttl
}

// ListingBookingsFilter фильтр для выборки бронирований листинга
type ListingBookingsFilter struct {
	ListingID       int64          // Обязательный параметр
	StartDate       *time.Time     // Начало периода (опционально)
	EndDate         *time.Time     // Конец периода (опционально)
	Status          *BookingStatus // Фильтр по статусу (опционально)
	IncludeInactive bool           // Включать ли терминальные бронирования
}

// BlockingRangesFilter параметры выборки занятых диапазонов листинга.
// Выбираются бронирования в блокирующих статусах, пересекающие окно
// [WindowStart, WindowEnd). Неоплаченные pending-холды, созданные раньше
// StalePendingBefore, не считаются занятыми (они подлежат экспирации).
type BlockingRangesFilter struct {
	ListingID          int64
	WindowStart        time.Time
	WindowEnd          time.Time
	Statuses           []BookingStatus
	StalePendingBefore time.Time // zero = без фильтра устаревших холдов
	ExcludeBookingID   *int64    // исключить собственный диапазон (reschedule)
}
