package domain

// LoginRequest represents login credentials
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=255"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the opaque bearer credential issued on login
type LoginResponse struct {
	Token string `json:"token"`
}
