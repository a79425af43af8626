package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// LoginRequest accepts either the username or the email in Login.
type LoginRequest struct {
	Login    string `json:"login"    validate:"required,min=1"`
	Password string `json:"password" validate:"required,min=4"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RegistroRequest is the public self-registration form; it always creates a CAJERO.
type RegistroRequest struct {
	Username string `json:"username" validate:"required,min=3,max=150"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type CrearUsuarioRequest struct {
	Username string `json:"username" validate:"required,min=3,max=150"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Rol      string `json:"rol"      validate:"required,oneof=ADMIN CAJERO"`
}

type ActualizarUsuarioRequest struct {
	Email    *string `json:"email"    validate:"omitempty,email"`
	Rol      string  `json:"rol"      validate:"omitempty,oneof=ADMIN CAJERO"`
	Password string  `json:"password" validate:"omitempty,min=8"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UsuarioResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Rol      string `json:"rol"`
	Activo   bool   `json:"activo"`
}

type LoginResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int             `json:"expires_in"` // seconds
	User         UsuarioResponse `json:"user"`
}
