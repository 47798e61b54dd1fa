package dto

// RegisterRequest describes account registration payload.
type RegisterRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

// LoginRequest describes authentication payload.
type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ErrorResponse carries a typed rejection reason.
type ErrorResponse struct {
	Error string `json:"error"`
}
