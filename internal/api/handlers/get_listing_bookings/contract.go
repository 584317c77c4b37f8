package get_listing_bookings

import (
	"context"

	"github.com/andmv/LDM-BookingService/internal/service/bookings/models"
)

type BookingService interface {
	GetListingBookings(ctx context.Context, req *models.GetListingBookingsRequest) (*models.BookingListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
