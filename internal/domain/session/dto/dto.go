package dto

// SendCodeRequest starts a login
type SendCodeRequest struct {
	Phone string `json:"phone"`
}

// LoginRequest completes a login started with SendCodeRequest
type LoginRequest struct {
	Code     string `json:"code"`
	Password string `json:"password,omitempty"`
}

// ActionResponse acknowledges a state-changing call
type ActionResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
