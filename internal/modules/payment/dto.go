package payment

type InitPaymentRequest struct {
	BookingID int64 `json:"booking_id" binding:"required"`
}

type InitPaymentResponse struct {
	Reference string  `json:"reference"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Status    string  `json:"status"`
}

// webhookPayload is the provider's event envelope. Amounts arrive in minor
// units (cents).
type webhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
		Currency  string `json:"currency"`
		Status    string `json:"status"`
	} `json:"data"`
}
