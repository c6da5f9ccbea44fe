package booking

import "time"

type CreateBookingRequest struct {
	VendorID       int64     `json:"vendor_id" validate:"required"`
	ServiceType    string    `json:"service_type" validate:"required"`
	EventDate      time.Time `json:"event_date" validate:"required"`
	GrossAmount    int64     `json:"gross_amount" validate:"required,gt=0"`
	IdempotencyKey string    `json:"idempotency_key"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason"`
}
