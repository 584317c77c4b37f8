package create_hold

import (
	"time"

	createHold "github.com/andmv/LDM-BookingService/internal/usecase/create_hold"
)

// CreateHoldRequest HTTP request model
type CreateHoldRequest struct {
	ServiceID int64     `json:"serviceId"`
	ListingID int64     `json:"listingId"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Timezone  string    `json:"timezone,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP request в запрос use case
func (r *CreateHoldRequest) ToUseCaseRequest(customerID int64) *createHold.Request {
	return &createHold.Request{
		ServiceID:  r.ServiceID,
		ListingID:  r.ListingID,
		CustomerID: customerID,
		Start:      r.Start,
		End:        r.End,
		Timezone:   r.Timezone,
	}
}

// CreateHoldResponse HTTP response model
type CreateHoldResponse struct {
	ID            int64     `json:"id"`
	ListingID     int64     `json:"listingId"`
	ServiceID     int64     `json:"serviceId"`
	CustomerID    int64     `json:"customerId"`
	StartDatetime time.Time `json:"startDatetime"`
	EndDatetime   time.Time `json:"endDatetime"`
	Timezone      string    `json:"timezone"`
	Status        string    `json:"status"`
	Price         float64   `json:"price"`
	Currency      string    `json:"currency"`
	ExpiresAt     time.Time `json:"expiresAt"`
	CreatedAt     time.Time `json:"createdAt"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createHold.Response) *CreateHoldResponse {
	return &CreateHoldResponse{
		ID:            resp.ID,
		ListingID:     resp.ListingID,
		ServiceID:     resp.ServiceID,
		CustomerID:    resp.CustomerID,
		StartDatetime: resp.StartDatetime,
		EndDatetime:   resp.EndDatetime,
		Timezone:      resp.Timezone,
		Status:        resp.Status,
		Price:         resp.Price,
		Currency:      resp.Currency,
		ExpiresAt:     resp.ExpiresAt,
		CreatedAt:     resp.CreatedAt,
	}
}
