package catalogservice

// Service модель бронируемой услуги из каталога
type Service struct {
	ID                  int64   `json:"id"`
	ListingID           int64   `json:"listing_id"`
	Name                string  `json:"name"`
	DurationMinutes     int     `json:"duration_minutes"`
	Price               float64 `json:"price"`
	Currency            string  `json:"currency"`
	BufferBeforeMinutes int     `json:"buffer_before_minutes"`
	BufferAfterMinutes  int     `json:"buffer_after_minutes"`
	IsAddon             bool    `json:"is_addon"`
	Status              string  `json:"status"` // active | inactive
}

// IsActive returns true if the service is bookable
func (s *Service) IsActive() bool {
	return s.Status == "active"
}

// Listing модель листинга (бронируемого ресурса) из каталога
type Listing struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	OwnerIDs []int64 `json:"owner_ids"`
}

// IsOwnedBy проверяет, что пользователь владеет листингом
func (l *Listing) IsOwnedBy(userID int64) bool {
	for _, id := range l.OwnerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// ErrorResponse модель ошибки от каталога
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
