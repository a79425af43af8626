package handler

import (
	"errors"
	"net/http"
	"reflect"

	"stockmaster/internal/apierror"
	"stockmaster/internal/middleware"
	"stockmaster/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false after writing the error response; the caller must return.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// bindQuery binds query-string filters. Returns false after writing a 400.
func bindQuery(c *gin.Context, filter interface{}) bool {
	if err := c.ShouldBindQuery(filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return false
	}
	return true
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return uuid.Nil, false
	}
	return id, true
}

// actorFrom builds the service actor from the JWT claims set by JWTAuth.
func actorFrom(c *gin.Context) service.Actor {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return service.Actor{}
	}
	id, _ := uuid.Parse(claims.UserID)
	return service.Actor{ID: id, Rol: claims.Rol}
}

var statusPorError = []struct {
	err    error
	status int
}{
	{service.ErrNoEncontrado, http.StatusNotFound},
	{service.ErrCredencialesInvalidas, http.StatusUnauthorized},
	{service.ErrPermisoDenegado, http.StatusForbidden},

	{service.ErrStockInsuficiente, http.StatusConflict},
	{service.ErrReferenciaDuplicada, http.StatusConflict},
	{service.ErrCodigoDuplicado, http.StatusConflict},
	{service.ErrCorreoDuplicado, http.StatusConflict},
	{service.ErrUsuarioDuplicado, http.StatusConflict},
	{service.ErrTransicionInvalida, http.StatusConflict},

	{service.ErrDescuentoInvalido, http.StatusUnprocessableEntity},
	{service.ErrReferenciaReservada, http.StatusUnprocessableEntity},
	{service.ErrPagoInsuficiente, http.StatusUnprocessableEntity},
	{service.ErrCantidadInvalida, http.StatusUnprocessableEntity},
	{service.ErrTipoMovimientoInvalido, http.StatusUnprocessableEntity},
	{service.ErrProductoInactivo, http.StatusUnprocessableEntity},
	{service.ErrProductoRepetido, http.StatusUnprocessableEntity},
	{service.ErrSinProductos, http.StatusUnprocessableEntity},
	{service.ErrPrecioInvalido, http.StatusUnprocessableEntity},
	{service.ErrFechaInvalida, http.StatusUnprocessableEntity},
	{service.ErrEstadoInvalido, http.StatusUnprocessableEntity},
}

// respondError maps service errors onto the HTTP envelope. Unknown errors are
// logged and hidden behind a generic 500.
func respondError(c *gin.Context, err error) {
	for _, m := range statusPorError {
		if errors.Is(err, m.err) {
			c.JSON(m.status, apierror.New(err.Error()))
			return
		}
	}
	log.Error().
		Str("request_id", c.GetString(middleware.RequestIDKey)).
		Str("path", c.FullPath()).
		Str("method", c.Request.Method).
		Err(err).
		Msg("unhandled error")
	c.JSON(http.StatusInternalServerError, apierror.Interno())
}
