package create_hold

import "errors"

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена в каталоге
	ErrServiceNotFound = errors.New("create_hold: service not found")

	// ErrServiceNotBookable возвращается, когда услуга неактивна или является аддоном
	ErrServiceNotBookable = errors.New("create_hold: service is not bookable")

	// ErrListingMismatch возвращается, когда услуга принадлежит другому листингу
	ErrListingMismatch = errors.New("create_hold: service does not belong to this listing")

	// ErrBookingsDisabled возвращается, когда бронирования листинга выключены
	ErrBookingsDisabled = errors.New("create_hold: bookings are disabled for this listing")

	// ErrSlotConflict возвращается, когда диапазон пересекается с существующим бронированием
	ErrSlotConflict = errors.New("create_hold: slot is already taken")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_hold: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_hold: internal error")
)
