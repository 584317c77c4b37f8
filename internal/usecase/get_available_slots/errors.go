package get_available_slots

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_available_slots: invalid input data")

	// ErrServiceNotFound возвращается, когда услуга не найдена в каталоге
	ErrServiceNotFound = errors.New("get_available_slots: service not found")

	// ErrServiceNotBookable возвращается для неактивных услуг и аддонов,
	// которые нельзя бронировать напрямую
	ErrServiceNotBookable = errors.New("get_available_slots: service is not bookable")

	// ErrListingNotLinked возвращается, когда услуга не привязана к листингу
	// (листинг не настроен для бронирования)
	ErrListingNotLinked = errors.New("get_available_slots: service has no listing")

	// ErrInvalidConfiguration возвращается при некорректной конфигурации
	// расписания (например, неизвестная таймзона)
	ErrInvalidConfiguration = errors.New("get_available_slots: invalid schedule configuration")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_available_slots: internal error")
)
