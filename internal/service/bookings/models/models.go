package models

import (
	"errors"
	"time"

	"github.com/andmv/LDM-BookingService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// ConfirmBookingRequest запрос на подтверждение оплаты холда
type ConfirmBookingRequest struct {
	UserID           int64   `json:"userId"`
	ExternalOrderRef *string `json:"externalOrderRef,omitempty"` // Ссылка на заказ в платежном шлюзе
}

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	UserID             int64  `json:"userId"`
	CancellationReason string `json:"cancellationReason"`
}

// RescheduleBookingRequest запрос на перенос бронирования
type RescheduleBookingRequest struct {
	UserID   int64     `json:"userId"`
	NewStart time.Time `json:"newStart"`
	NewEnd   time.Time `json:"newEnd"`
	Timezone string    `json:"timezone,omitempty"`
}

// GetUserBookingsRequest запрос на получение бронирований пользователя
type GetUserBookingsRequest struct {
	UserID int64   `json:"userId"`
	Status *string `json:"status,omitempty"`
}

// GetListingBookingsRequest запрос на получение бронирований листинга
type GetListingBookingsRequest struct {
	UserID          int64      `json:"userId"`
	ListingID       int64      `json:"listingId"`
	StartDate       *time.Time `json:"startDate,omitempty"`       // Начало периода (опционально)
	EndDate         *time.Time `json:"endDate,omitempty"`         // Конец периода (опционально)
	Status          *string    `json:"status,omitempty"`          // Фильтр по статусу (опционально)
	IncludeInactive bool       `json:"includeInactive,omitempty"` // Включить отменённые и протухшие
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetListingBookingsRequest) ToDomainFilter() (domain.ListingBookingsFilter, error) {
	filter := domain.ListingBookingsFilter{
		ListingID:       r.ListingID,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		IncludeInactive: r.IncludeInactive,
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID            int64     `json:"id"`
	ListingID     int64     `json:"listingId"`
	ServiceID     int64     `json:"serviceId"`
	CustomerID    int64     `json:"customerId"`
	StartDatetime time.Time `json:"startDatetime"`
	EndDatetime   time.Time `json:"endDatetime"`
	Timezone      string    `json:"timezone"`
	Status        string    `json:"status"`

	Price            float64 `json:"price"`
	Currency         string  `json:"currency"`
	ExternalOrderRef *string `json:"externalOrderRef,omitempty"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RefundResponse детали возврата, рассчитанного при отмене
type RefundResponse struct {
	Amount    float64 `json:"amount"`
	Percent   float64 `json:"percent"`
	Reason    string  `json:"reason"`
	Automatic bool    `json:"automatic"` // Шлюз провел возврат автоматически
}

// CancelBookingResponse результат отмены бронирования.
// Warning заполняется, когда отмена прошла, а возврат - нет.
type CancelBookingResponse struct {
	Booking *BookingResponse `json:"booking"`
	Refund  *RefundResponse  `json:"refund,omitempty"`
	Warning string           `json:"warning,omitempty"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// ExpireStaleHoldsResponse результат зачистки протухших холдов
type ExpireStaleHoldsResponse struct {
	ExpiredCount int64 `json:"expiredCount"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:                 b.ID,
		ListingID:          b.ListingID,
		ServiceID:          b.ServiceID,
		CustomerID:         b.CustomerID,
		StartDatetime:      b.StartDatetime,
		EndDatetime:        b.EndDatetime,
		Timezone:           b.Timezone,
		Status:             string(b.Status),
		Price:              b.Price,
		Currency:           b.Currency,
		ExternalOrderRef:   b.ExternalOrderRef,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}

	// Конвертируем CancelledAt в строку ISO 8601
	if b.CancelledAt != nil {
		cancelledStr := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	if bookings == nil {
		return &BookingListResponse{
			Bookings: []BookingResponse{},
		}
	}

	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, len(bookings)),
	}

	for i, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings[i] = *bookingResp
		}
	}

	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s, err := domain.ParseBookingStatus(status)
	if err != nil {
		return "", ErrInvalidStatus
	}
	return s, nil
}
