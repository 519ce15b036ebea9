package models

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Registration is the sign-up payload. The server re-checks every rule.
type Registration struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"username"`
	Password string `json:"password" validate:"password"`
	Gender   Gender `json:"gender" validate:"required,oneof=male female other"`
}

type EmailVerification struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"otp"`
}

type OTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type UsernameChange struct {
	Username string `json:"username" validate:"username"`
}

// AuthResult is what a successful login returns.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
