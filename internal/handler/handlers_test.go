package handler_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stockmaster/internal/dto"
	"stockmaster/internal/handler"
	"stockmaster/internal/middleware"
	"stockmaster/internal/model"
	"stockmaster/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_jwt_secret_32_chars_minimum!"

// ── Fakes ─────────────────────────────────────────────────────────────────────
// Each fake embeds the service interface; calling a method the test did not
// override panics, which keeps the fakes honest about what a handler uses.

type fakeVentaSvc struct {
	service.VentaService
	actor service.Actor
	req   dto.FinalizarVentaRequest
	err   error
}

func (f *fakeVentaSvc) Finalizar(_ context.Context, actor service.Actor, req dto.FinalizarVentaRequest) (*dto.VentaResponse, error) {
	f.actor, f.req = actor, req
	if f.err != nil {
		return nil, f.err
	}
	return &dto.VentaResponse{ID: uuid.NewString(), NumeroTicket: 1, TotalFinal: decimal.RequireFromString("17.85")}, nil
}

func (f *fakeVentaSvc) FacturaPDF(_ context.Context, actor service.Actor, _ uuid.UUID) ([]byte, int, error) {
	f.actor = actor
	if f.err != nil {
		return nil, 0, f.err
	}
	return []byte("%PDF-1.3 fake"), 7, nil
}

type fakeAuthSvc struct {
	service.AuthService
	err error
}

func (f *fakeAuthSvc) Login(context.Context, dto.LoginRequest) (*dto.LoginResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.LoginResponse{AccessToken: "tok", TokenType: "bearer"}, nil
}

type fakeReporteSvc struct {
	service.ReporteService
	filas []dto.ExportVentaFila
	err   error
}

func (f *fakeReporteSvc) ExportVentas(context.Context, string, string) ([]dto.ExportVentaFila, error) {
	return f.filas, f.err
}

type fakeDevolucionSvc struct {
	service.DevolucionService
	ventaID uuid.UUID
}

func (f *fakeDevolucionSvc) Procesar(_ context.Context, _ service.Actor, ventaID uuid.UUID, _ dto.DevolucionRequest) (*dto.DevolucionResultado, error) {
	f.ventaID = ventaID
	return &dto.DevolucionResultado{Errores: []string{"No se puede devolver 5 de Galletas. Máximo: 2"}}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func signToken(t *testing.T, userID, rol string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID, "username": "testuser", "rol": rol,
		"exp": time.Now().Add(time.Hour).Unix(), "iat": time.Now().Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func do(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func ventaValida() dto.FinalizarVentaRequest {
	return dto.FinalizarVentaRequest{
		Items:         []dto.ItemVentaRequest{{ProductoID: uuid.NewString(), Cantidad: 3}},
		MetodoPago:    model.MetodoEfectivo,
		MontoRecibido: decimal.RequireFromString("20"),
	}
}

// ── Tests: ventas ─────────────────────────────────────────────────────────────

func TestFinalizarVenta_PasaActorDelToken(t *testing.T) {
	svc := &fakeVentaSvc{}
	r := newRouter()
	r.POST("/ventas", middleware.JWTAuth(testSecret), handler.NewVentasHandler(svc).Finalizar)

	uid := uuid.New()
	w := do(r, http.MethodPost, "/ventas", signToken(t, uid.String(), model.RolCajero), ventaValida())

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, uid, svc.actor.ID)
	assert.Equal(t, model.RolCajero, svc.actor.Rol)
	assert.Equal(t, 3, svc.req.Items[0].Cantidad)
}

func TestFinalizarVenta_StockInsuficienteEs409(t *testing.T) {
	svc := &fakeVentaSvc{err: fmt.Errorf("%w: Galletas (disponible 2)", service.ErrStockInsuficiente)}
	r := newRouter()
	r.POST("/ventas", middleware.JWTAuth(testSecret), handler.NewVentasHandler(svc).Finalizar)

	w := do(r, http.MethodPost, "/ventas", signToken(t, uuid.NewString(), model.RolCajero), ventaValida())

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Galletas")
}

func TestFinalizarVenta_Validaciones(t *testing.T) {
	r := newRouter()
	r.POST("/ventas", middleware.JWTAuth(testSecret), handler.NewVentasHandler(&fakeVentaSvc{}).Finalizar)
	tok := signToken(t, uuid.NewString(), model.RolCajero)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/ventas", tok, "{no json").Code)

	sinItems := ventaValida()
	sinItems.Items = nil
	w := do(r, http.MethodPost, "/ventas", tok, sinItems)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "fields")

	metodo := ventaValida()
	metodo.MetodoPago = "CHEQUE"
	assert.Equal(t, http.StatusUnprocessableEntity, do(r, http.MethodPost, "/ventas", tok, metodo).Code)
}

func TestFactura_DevuelvePDF(t *testing.T) {
	r := newRouter()
	r.GET("/ventas/:id/factura", middleware.JWTAuth(testSecret), handler.NewVentasHandler(&fakeVentaSvc{}).Factura)
	tok := signToken(t, uuid.NewString(), model.RolAdmin)

	w := do(r, http.MethodGet, "/ventas/"+uuid.NewString()+"/factura", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "factura_7.pdf")

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/ventas/xyz/factura", tok, nil).Code)
}

func TestFactura_VentaAjenaEs403(t *testing.T) {
	r := newRouter()
	svc := &fakeVentaSvc{err: service.ErrPermisoDenegado}
	r.GET("/ventas/:id/factura", middleware.JWTAuth(testSecret), handler.NewVentasHandler(svc).Factura)

	w := do(r, http.MethodGet, "/ventas/"+uuid.NewString()+"/factura", signToken(t, uuid.NewString(), model.RolCajero), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

// ── Tests: devoluciones ───────────────────────────────────────────────────────

func TestProcesarDevolucion_ReportaRechazos(t *testing.T) {
	svc := &fakeDevolucionSvc{}
	r := newRouter()
	r.POST("/ventas/:id/devoluciones", middleware.JWTAuth(testSecret), handler.NewDevolucionesHandler(svc).Procesar)

	ventaID := uuid.New()
	w := do(r, http.MethodPost, "/ventas/"+ventaID.String()+"/devoluciones", signToken(t, uuid.NewString(), model.RolCajero),
		dto.DevolucionRequest{Items: []dto.ItemDevolucionRequest{{DetalleVentaID: uuid.NewString(), Cantidad: 5}}})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ventaID, svc.ventaID)
	assert.Contains(t, w.Body.String(), "Máximo: 2")
}

// ── Tests: auth ───────────────────────────────────────────────────────────────

func TestLogin_CredencialesInvalidasEs401(t *testing.T) {
	r := newRouter()
	r.POST("/login", handler.NewAuthHandler(&fakeAuthSvc{err: service.ErrCredencialesInvalidas}).Login)

	w := do(r, http.MethodPost, "/login", "", dto.LoginRequest{Login: "admin", Password: "wrongpass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_PasswordCortaEs422(t *testing.T) {
	r := newRouter()
	r.POST("/login", handler.NewAuthHandler(&fakeAuthSvc{}).Login)

	w := do(r, http.MethodPost, "/login", "", dto.LoginRequest{Login: "u", Password: "12"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

// ── Tests: reportes ───────────────────────────────────────────────────────────

func TestExportVentasCSV(t *testing.T) {
	svc := &fakeReporteSvc{filas: []dto.ExportVentaFila{{
		VentaID: "v-1", NumeroTicket: 1, Fecha: "2026-10-18 10:00:00", Cajero: "caja1",
		Producto: "Galletas, surtidas", Cantidad: 3,
		PrecioUnitario: decimal.RequireFromString("5"), Subtotal: decimal.RequireFromString("15"),
		MetodoPago: model.MetodoEfectivo, IVA: decimal.RequireFromString("2.85"),
		Descuento: decimal.Zero, TotalFinal: decimal.RequireFromString("17.85"),
	}}}
	r := newRouter()
	r.GET("/export", handler.NewReportesHandler(svc).ExportVentasCSV)

	w := do(r, http.MethodGet, "/export?desde=2026-10-01&hasta=2026-10-18", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

	rows, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ID Venta", rows[0][0])
	assert.Equal(t, "Total Final", rows[0][10])
	assert.Equal(t, "Galletas, surtidas", rows[1][3])
	assert.Equal(t, "17.85", rows[1][10])
}

func TestExportVentasCSV_FechaInvalidaEs422(t *testing.T) {
	r := newRouter()
	r.GET("/export", handler.NewReportesHandler(&fakeReporteSvc{err: service.ErrFechaInvalida}).ExportVentasCSV)

	w := do(r, http.MethodGet, "/export?desde=ayer", "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
