package auth

type LoginPayload struct {
	Email    string `json:"email" mod:"trim,lcase" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type RegisterPayload struct {
	Email       string `json:"email" mod:"trim,lcase" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	DisplayName string `json:"display_name" mod:"trim" validate:"max=100"`
}

// MeResponse represents the current user response.
type MeResponse struct {
	ID          int    `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}
