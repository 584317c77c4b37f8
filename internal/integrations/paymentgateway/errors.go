package paymentgateway

import "errors"

var (
	// ErrOrderNotFound возвращается, когда заказ не найден в коммерс-системе
	ErrOrderNotFound = errors.New("payment gateway is unaware of this order")

	// ErrRefundRejected возвращается, когда шлюз отклонил возврат
	ErrRefundRejected = errors.New("payment gateway rejected the refund")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("paymentgateway client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от шлюза
	ErrInvalidResponse = errors.New("paymentgateway client: invalid response")

	// ErrServiceDegraded возвращается при применении graceful degradation:
	// шлюз недоступен, возврат нужно провести вручную
	ErrServiceDegraded = errors.New("payment gateway unavailable: refund requires manual processing")
)
