package domain

// LoginAttempt is step one of the admin login. It is never persisted or logged.
type LoginAttempt struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// OTPSubmission carries the one-time passcode for step two.
type OTPSubmission struct {
	OTP string `json:"otp" validate:"required,max=12"`
}

// OTPDraft carries digits typed so far; an empty string is allowed.
type OTPDraft struct {
	OTP string `json:"otp" validate:"max=12"`
}

// AuthReply is the JSON body returned by the Authentication Service.
type AuthReply struct {
	Message string `json:"message,omitempty"`
	Token   string `json:"token,omitempty"`
}
