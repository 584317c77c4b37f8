package create_hold

import "time"

// Request модель запроса на создание холда
type Request struct {
	ServiceID  int64     // ID услуги
	ListingID  int64     // ID листинга (должен совпадать с листингом услуги)
	CustomerID int64     // ID клиента
	Start      time.Time // Начало слота (абсолютный момент)
	End        time.Time // Конец слота (полуоткрытый интервал)
	Timezone   string    // IANA-таймзона, в которой клиент выбирал слот
}

// Response модель ответа с созданным холдом
type Response struct {
	ID            int64     // ID созданного бронирования
	ListingID     int64     // ID листинга
	ServiceID     int64     // ID услуги
	CustomerID    int64     // ID клиента
	StartDatetime time.Time // Начало слота
	EndDatetime   time.Time // Конец слота
	Timezone      string    // Таймзона бронирования
	Status        string    // Статус (pending_payment)

	// Снимок цены на момент создания холда
	Price    float64 // Цена услуги
	Currency string  // Валюта

	ExpiresAt time.Time // Момент, после которого неоплаченный холд считается протухшим
	CreatedAt time.Time // Время создания
	UpdatedAt time.Time // Время обновления
}
