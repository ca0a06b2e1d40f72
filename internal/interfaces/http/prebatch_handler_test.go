package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Prebatch-api/internal/application/auth"
	"github.com/jhoicas/Prebatch-api/internal/application/dto"
	"github.com/jhoicas/Prebatch-api/internal/application/prebatch"
	"github.com/jhoicas/Prebatch-api/internal/domain/entity"
	"github.com/jhoicas/Prebatch-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/Prebatch-api/internal/interfaces/http"
)

const (
	demoPlan     = "PLAN-DEMO"
	demoBatch    = "PLAN-DEMO-B001"
	demoPassword = "clave-segura"
)

// flakyRecords falla al guardar mientras fail sea true.
type flakyRecords struct {
	*memory.RecordRepository
	fail bool
}

func (f *flakyRecords) Create(ctx context.Context, rec *entity.PrebatchRecord) error {
	if f.fail {
		return errors.New("conexión perdida")
	}
	return f.RecordRepository.Create(ctx, rec)
}

type testServer struct {
	app      *fiber.App
	store    *memory.Store
	sessions *prebatch.SessionManager
	records  *flakyRecords
	token    string
}

// newTestServer arma el router completo sobre el plan de demostración y
// devuelve el token de un operador ya autenticado.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewDemoStore(time.Now())
	records := &flakyRecords{RecordRepository: store.Records}

	authUC := auth.NewAuthUseCase(store.Users, auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer})
	_, err := authUC.RegisterUser(context.Background(), testUsername, demoPassword, "Operador Uno", entity.RoleOperator)
	require.NoError(t, err)

	scales := prebatch.NewScaleRouter(prebatch.DefaultScales(), prebatch.WithWatchdogWindow(time.Hour))
	t.Cleanup(scales.Close)
	ledger := prebatch.NewLotLedger(store.Lots)
	sessions := prebatch.NewSessionManager(prebatch.SessionDeps{
		Ledger:       ledger,
		Scales:       scales,
		Requirements: store.Requirements,
		Records:      records,
		Batches:      store.Batches,
		Verifier:     authUC,
		Recorder:     prebatch.NopRecorder{},
		Logger:       zerolog.Nop(),
		Clock:        time.Now,
	})

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:    authUC,
		Sessions:  sessions,
		Ledger:    ledger,
		Scales:    scales,
		Plans:     prebatch.NewPlanUseCase(store.Batches, store.Requirements),
		JWTSecret: testJWTSecret,
		Logger:    zerolog.Nop(),
	})

	srv := &testServer{app: app, store: store, sessions: sessions, records: records}
	var login dto.LoginResponse
	resp := srv.do(t, http.MethodPost, "/api/auth/login", dto.LoginRequest{Username: testUsername, Password: demoPassword}, &login)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	srv.token = login.Token
	return srv
}

// do envía body como JSON y decodifica la respuesta en out si no es nil.
func (s *testServer) do(t *testing.T, method, path string, body interface{}, out interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func (s *testServer) weigh(t *testing.T, scaleID, kg string) {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/scales/"+scaleID+"/readings",
		dto.ScaleReadingRequest{Weight: decimal.RequireFromString(kg), Unit: "kg", Stable: true}, nil)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
}

// selectSal deja la sesión en el lote B001, ingrediente RE-SAL.
func (s *testServer) selectSal(t *testing.T) dto.SelectionResponse {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/prebatch/session/batch", dto.SelectBatchRequest{PlanID: demoPlan, BatchID: demoBatch}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sel dto.SelectionResponse
	resp = s.do(t, http.MethodPost, "/api/prebatch/session/ingredient", dto.SelectIngredientRequest{ReCode: "RE-SAL"}, &sel)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return sel
}

func remainingOf(t *testing.T, s *testServer, lotID string) decimal.Decimal {
	t.Helper()
	l, err := s.store.Lots.GetByIntakeLotID(context.Background(), lotID)
	require.NoError(t, err)
	require.NotNil(t, l)
	return l.RemainingVolume
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_PasswordIncorrecto_Retorna401(t *testing.T) {
	srv := newTestServer(t)
	srv.token = ""
	var errBody dto.ErrorResponse
	resp := srv.do(t, http.MethodPost, "/api/auth/login", dto.LoginRequest{Username: testUsername, Password: "otra-clave"}, &errBody)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", errBody.Code)
}

func TestRegister_OperadorNoPuedeCrearUsuarios(t *testing.T) {
	srv := newTestServer(t)
	resp := srv.do(t, http.MethodPost, "/api/auth/register", dto.RegisterRequest{Username: "op2", Password: "clave-segura-2"}, nil)

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestPrebatch_SinToken_Retorna401(t *testing.T) {
	srv := newTestServer(t)
	srv.token = ""
	resp := srv.do(t, http.MethodGet, "/api/prebatch/session", nil, nil)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujo de pesaje
// ──────────────────────────────────────────────────────────────────────────────

func TestFlujo_PesarYConfirmarPaquete(t *testing.T) {
	srv := newTestServer(t)
	sel := srv.selectSal(t)
	require.NotNil(t, sel.AutoSelectedLot)
	assert.Equal(t, "IL-SAL-001", sel.AutoSelectedLot.IntakeLotID)
	assert.Equal(t, "scale-01", sel.ScaleID)
	assert.Equal(t, 3, sel.TotalPackages)

	srv.weigh(t, "scale-01", "5")

	var commit dto.CommitResponse
	resp := srv.do(t, http.MethodPost, "/api/prebatch/session/done", nil, &commit)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 1, commit.Record.PackageNo)
	assert.Equal(t, "PLAN-DEMO-B001-RE-SAL-1", commit.Record.BatchRecordID)
	assert.True(t, commit.Record.NetVolume.Equal(decimal.NewFromInt(5)))
	assert.Empty(t, commit.InventoryWarnings)
	assert.False(t, commit.IngredientDone)
	assert.True(t, remainingOf(t, srv, "IL-SAL-001").Equal(decimal.NewFromInt(3)))

	var view dto.SessionResponse
	srv.do(t, http.MethodGet, "/api/prebatch/session", nil, &view)
	assert.Equal(t, "weighing", view.State)
	assert.Equal(t, 2, view.NextPackageNo)
	require.Len(t, view.Records, 1)
}

func TestFlujo_DosLotesEnUnPaquete(t *testing.T) {
	srv := newTestServer(t)
	srv.selectSal(t)
	srv.weigh(t, "scale-01", "5")
	require.Equal(t, http.StatusCreated, srv.do(t, http.MethodPost, "/api/prebatch/session/done", nil, nil).StatusCode)

	// IL-SAL-001 quedó con 3 kg: se agotan en el segundo paquete y el resto sale de IL-SAL-002.
	srv.weigh(t, "scale-01", "3")
	var o dto.OriginResponse
	resp := srv.do(t, http.MethodPost, "/api/prebatch/session/origins", nil, &o)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "IL-SAL-001", o.IntakeLotID)

	resp = srv.do(t, http.MethodPost, "/api/prebatch/session/lot", dto.ScanLotRequest{IntakeLotID: "IL-SAL-002"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "con IL-SAL-001 agotado la cabeza FIFO es IL-SAL-002")
	srv.weigh(t, "scale-01", "5")

	var commit dto.CommitResponse
	resp = srv.do(t, http.MethodPost, "/api/prebatch/session/done", nil, &commit)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 2, commit.Record.PackageNo)
	require.Len(t, commit.Record.Origins, 2)
	assert.True(t, commit.Record.Origins[0].TakeVolume.Equal(decimal.NewFromInt(3)))
	assert.Equal(t, "IL-SAL-002", commit.Record.Origins[1].IntakeLotID)
	assert.True(t, commit.Record.Origins[1].TakeVolume.Equal(decimal.NewFromInt(2)))
	assert.True(t, remainingOf(t, srv, "IL-SAL-001").IsZero())
	assert.True(t, remainingOf(t, srv, "IL-SAL-002").Equal(decimal.NewFromInt(48)))
}

func TestScanLot_ViolacionFIFO_Retorna409ConLoteEsperado(t *testing.T) {
	srv := newTestServer(t)
	srv.selectSal(t)

	var errBody dto.ErrorResponse
	resp := srv.do(t, http.MethodPost, "/api/prebatch/session/lot", dto.ScanLotRequest{IntakeLotID: "IL-SAL-002"}, &errBody)

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "FIFO_VIOLATION", errBody.Code)
	assert.Equal(t, "IL-SAL-001", errBody.ExpectedLotID)
	assert.NotNil(t, errBody.ExpectedExpiry)
}

func TestScanLot_LoteDesconocido_Retorna404(t *testing.T) {
	srv := newTestServer(t)
	srv.selectSal(t)

	var errBody dto.ErrorResponse
	resp := srv.do(t, http.MethodPost, "/api/prebatch/session/lot", dto.ScanLotRequest{IntakeLotID: "IL-NO-EXISTE"}, &errBody)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "UNKNOWN_LOT", errBody.Code)
}

func TestDone_FalloDePersistencia_Retorna503Reintentable(t *testing.T) {
	srv := newTestServer(t)
	srv.selectSal(t)
	srv.weigh(t, "scale-01", "5")
	srv.records.fail = true

	var errBody dto.ErrorResponse
	resp := srv.do(t, http.MethodPost, "/api/prebatch/session/done", nil, &errBody)

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.True(t, errBody.Retryable)
	assert.True(t, remainingOf(t, srv, "IL-SAL-001").Equal(decimal.NewFromInt(8)), "sin registro no se descuenta inventario")

	srv.records.fail = false
	resp = srv.do(t, http.MethodPost, "/api/prebatch/session/done", nil, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode, "el reintento usa el mismo estado")
}

func TestCancel_ConfirmacionInvalidaYValida(t *testing.T) {
	srv := newTestServer(t)
	srv.selectSal(t)
	srv.weigh(t, "scale-01", "5")
	var commit dto.CommitResponse
	require.Equal(t, http.StatusCreated, srv.do(t, http.MethodPost, "/api/prebatch/session/done", nil, &commit).StatusCode)
	path := "/api/prebatch/records/" + commit.Record.BatchRecordID

	var errBody dto.ErrorResponse
	resp := srv.do(t, http.MethodDelete, path, dto.CancelPackageRequest{Token: "7"}, &errBody)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "INVALID_CONFIRMATION", errBody.Code)

	var cancel dto.CancelResponse
	resp = srv.do(t, http.MethodDelete, path, dto.CancelPackageRequest{Token: "1"}, &cancel)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, cancel.Restored, 1)
	assert.True(t, remainingOf(t, srv, "IL-SAL-001").Equal(decimal.NewFromInt(8)))
	assert.Equal(t, 0, srv.store.Records.Len())
}

func TestPackageSize_BloqueadoHastaDesbloquear(t *testing.T) {
	srv := newTestServer(t)
	srv.selectSal(t)
	body := dto.PackageSizeRequest{PackageSize: decimal.NewFromInt(4)}

	var errBody dto.ErrorResponse
	resp := srv.do(t, http.MethodPut, "/api/prebatch/session/package-size", body, &errBody)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FIELD_LOCKED", errBody.Code)

	resp = srv.do(t, http.MethodPost, "/api/prebatch/session/package-size/unlock", dto.UnlockRequest{Password: "incorrecta"}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = srv.do(t, http.MethodPost, "/api/prebatch/session/package-size/unlock", dto.UnlockRequest{Password: demoPassword}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var view dto.SessionResponse
	resp = srv.do(t, http.MethodPut, "/api/prebatch/session/package-size", body, &view)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 4, view.TotalPackages)
	assert.False(t, view.PackageSizeLocked)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestLots_OrdenFIFO(t *testing.T) {
	srv := newTestServer(t)
	var lots []dto.LotResponse
	resp := srv.do(t, http.MethodGet, "/api/prebatch/lots/RE-AZU", nil, &lots)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, lots, 2)
	assert.Equal(t, "IL-AZU-001", lots[0].IntakeLotID)
	assert.Equal(t, "IL-AZU-002", lots[1].IntakeLotID, "sin vencimiento va al final")
}

func TestPlan_PreviewConPaquetesPesados(t *testing.T) {
	srv := newTestServer(t)
	var out dto.PlanPreviewResponse
	resp := srv.do(t, http.MethodGet, "/api/prebatch/plan?required=12.5&package_size=5&packaged=5", nil, &out)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, out.TotalPackages)
	assert.Equal(t, 2, out.NextPackageNo)
	assert.True(t, out.Target.Equal(decimal.NewFromInt(5)))
	require.Len(t, out.Packages, 3)
	assert.True(t, out.Packages[0].Done)
	assert.True(t, out.Packages[2].Target.Equal(decimal.RequireFromString("2.5")))
}

func TestPlan_RequeridoInvalido_Retorna400(t *testing.T) {
	srv := newTestServer(t)
	resp := srv.do(t, http.MethodGet, "/api/prebatch/plan?required=abc", nil, nil)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPlans_BatchesEIngredientes(t *testing.T) {
	srv := newTestServer(t)
	var batches []dto.BatchResponse
	resp := srv.do(t, http.MethodGet, "/api/prebatch/plans/"+demoPlan+"/batches", nil, &batches)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, batches, 2)
	assert.Equal(t, demoBatch, batches[0].BatchID)

	var summary []dto.IngredientSummaryResponse
	resp = srv.do(t, http.MethodGet, "/api/prebatch/plans/"+demoPlan+"/ingredients", nil, &summary)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, summary, 2)
	assert.Equal(t, "RE-AZU", summary[0].ReCode)
	assert.Equal(t, 2, summary[0].BatchCount)
}

func TestScales_ListadoYBalanzaDesconocida(t *testing.T) {
	srv := newTestServer(t)
	srv.weigh(t, "scale-02", "12.34")

	var scales []dto.ScaleResponse
	resp := srv.do(t, http.MethodGet, "/api/scales", nil, &scales)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, scales, 3)
	assert.Equal(t, "scale-02", scales[1].ID)
	assert.True(t, scales[1].Connected)
	assert.True(t, scales[1].Active, "la primera balanza en reportar queda activa")

	resp = srv.do(t, http.MethodPost, "/api/scales/scale-99/readings",
		dto.ScaleReadingRequest{Weight: decimal.NewFromInt(1), Unit: "kg"}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestScales_Tolerancia(t *testing.T) {
	srv := newTestServer(t)
	var out dto.ToleranceResponse
	resp := srv.do(t, http.MethodGet, "/api/scales/scale-01/tolerance?target=5&actual=5.005", nil, &out)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, out.Within)
}

// ──────────────────────────────────────────────────────────────────────────────
// Estado de lotes y cierre de sesión
// ──────────────────────────────────────────────────────────────────────────────

func TestSetLotStatus_InactivarCabezaPromueveSiguiente(t *testing.T) {
	srv := newTestServer(t)

	var lot dto.LotResponse
	resp := srv.do(t, http.MethodPut, "/api/prebatch/lots/IL-AZU-001/status", dto.LotStatusRequest{Status: "inactive"}, &lot)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, entity.LotStatusInactive, lot.Status)

	var lots []dto.LotResponse
	resp = srv.do(t, http.MethodGet, "/api/prebatch/lots/RE-AZU", nil, &lots)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, lots, 1)
	assert.Equal(t, "IL-AZU-002", lots[0].IntakeLotID)

	resp = srv.do(t, http.MethodPut, "/api/prebatch/lots/IL-AZU-001/status", dto.LotStatusRequest{Status: "Active"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = srv.do(t, http.MethodGet, "/api/prebatch/lots/RE-AZU", nil, &lots)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, lots, 2)
	assert.Equal(t, "IL-AZU-001", lots[0].IntakeLotID)
}

func TestSetLotStatus_EstadoInvalidoOLoteDesconocido(t *testing.T) {
	srv := newTestServer(t)

	var errBody dto.ErrorResponse
	resp := srv.do(t, http.MethodPut, "/api/prebatch/lots/IL-AZU-001/status", dto.LotStatusRequest{Status: "Borrado"}, &errBody)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errBody.Code)

	resp = srv.do(t, http.MethodPut, "/api/prebatch/lots/IL-NO-EXISTE/status", dto.LotStatusRequest{Status: "Inactive"}, &errBody)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "UNKNOWN_LOT", errBody.Code)
}

func TestCloseSession_DescartaLaSesionDelOperador(t *testing.T) {
	srv := newTestServer(t)
	srv.selectSal(t)
	require.Equal(t, 1, srv.sessions.Len())

	resp := srv.do(t, http.MethodDelete, "/api/prebatch/session", nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 0, srv.sessions.Len())

	var view dto.SessionResponse
	resp = srv.do(t, http.MethodGet, "/api/prebatch/session", nil, &view)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, view.BatchID)
}
