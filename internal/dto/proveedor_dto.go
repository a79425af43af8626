package dto

type CrearProveedorRequest struct {
	Nombre    string `json:"nombre"    validate:"required,min=2,max=200"`
	Telefono  string `json:"telefono"  validate:"max=50"`
	Direccion string `json:"direccion"`
	Correo    string `json:"correo"    validate:"required,email"`
}

type ActualizarProveedorRequest struct {
	Nombre    *string `json:"nombre"    validate:"omitempty,min=2,max=200"`
	Telefono  *string `json:"telefono"  validate:"omitempty,max=50"`
	Direccion *string `json:"direccion"`
	Correo    *string `json:"correo"    validate:"omitempty,email"`
}

type ProveedorResponse struct {
	ID        string `json:"id"`
	Nombre    string `json:"nombre"`
	Telefono  string `json:"telefono"`
	Direccion string `json:"direccion"`
	Correo    string `json:"correo"`
	Activo    bool   `json:"activo"`
}
