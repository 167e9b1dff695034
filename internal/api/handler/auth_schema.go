package handler

type signInRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
	// Role is optional; anything but "admin" or "user" falls back to "user".
	Role string `json:"role,omitempty"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type signInResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}
