package prebatch

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Prebatch-api/internal/application/dto"
	"github.com/jhoicas/Prebatch-api/internal/domain"
	"github.com/jhoicas/Prebatch-api/internal/domain/entity"
	rules "github.com/jhoicas/Prebatch-api/internal/domain/prebatch"
	"github.com/jhoicas/Prebatch-api/internal/domain/repository"
)

// State es la etapa de la sesión de pesaje.
type State int

const (
	StateUnselected State = iota // sin ingrediente
	StateSelecting               // ingrediente elegido, sin lote
	StateWeighing
	StateCommitting
	StateCompleted // el ingrediente terminó y no quedó otro lote de producción seleccionado
)

func (s State) String() string {
	switch s {
	case StateUnselected:
		return "unselected"
	case StateSelecting:
		return "selecting"
	case StateWeighing:
		return "weighing"
	case StateCommitting:
		return "committing"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// SessionDeps agrupa las dependencias compartidas por todas las sesiones.
type SessionDeps struct {
	Ledger       *LotLedger
	Scales       *ScaleRouter
	Requirements repository.RequirementRepository
	Records      repository.RecordRepository
	Batches      repository.BatchRepository
	Verifier     CredentialVerifier
	Recorder     Recorder
	Logger       zerolog.Logger
	Clock        func() time.Time
}

// Session es la máquina de estados de pesaje de un operador.
// Todas las operaciones se serializan; una validación fallida no modifica el estado.
type Session struct {
	mu       sync.Mutex
	deps     SessionDeps
	operator string
	log      zerolog.Logger

	state        State
	planID       string
	batchID      string
	batches      []*entity.ProductionBatch
	requirements []*entity.IngredientRequirement
	records      []*entity.PrebatchRecord

	reCode       string
	selectedLot  string
	scaleID      string
	packageSize  decimal.Decimal
	sizeOverride bool
	unlocked     bool
	composer     rules.OriginComposer
}

// NewSession crea la sesión del operador.
func NewSession(operator string, deps SessionDeps) *Session {
	if deps.Recorder == nil {
		deps.Recorder = NopRecorder{}
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &Session{
		deps:     deps,
		operator: operator,
		log:      deps.Logger.With().Str("operator", operator).Logger(),
	}
}

// Operator devuelve el usuario dueño de la sesión.
func (s *Session) Operator() string { return s.operator }

// SelectBatch carga el lote de producción con sus requerimientos y paquetes.
func (s *Session) SelectBatch(ctx context.Context, planID, batchID string) error {
	if planID == "" || batchID == "" {
		return fmt.Errorf("%w: plan_id y batch_id son obligatorios", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	batches, err := s.deps.Batches.ListByPlan(ctx, planID)
	if err != nil {
		return domain.NewPersistenceError("listar lotes de producción", err)
	}
	if findBatch(batches, batchID) == nil {
		return fmt.Errorf("%w: lote de producción %s", domain.ErrNotFound, batchID)
	}
	reqs, recs, err := s.loadBatch(ctx, batchID)
	if err != nil {
		return err
	}
	s.planID, s.batchID, s.batches = planID, batchID, batches
	s.requirements, s.records = reqs, recs
	s.clearIngredient()
	s.state = StateUnselected
	return nil
}

func (s *Session) loadBatch(ctx context.Context, batchID string) ([]*entity.IngredientRequirement, []*entity.PrebatchRecord, error) {
	reqs, err := s.deps.Requirements.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, nil, domain.NewPersistenceError("listar requerimientos", err)
	}
	recs, err := s.deps.Records.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, nil, domain.NewPersistenceError("listar paquetes", err)
	}
	return reqs, recs, nil
}

func (s *Session) clearIngredient() {
	s.reCode = ""
	s.selectedLot = ""
	s.packageSize = decimal.Zero
	s.sizeOverride = false
	s.unlocked = false
	s.composer.Reset()
}

// SelectIngredient elige el ingrediente a pesar; la primera vez pasa el requerimiento
// a InProgress y preselecciona la cabeza FIFO.
func (s *Session) SelectIngredient(ctx context.Context, reCode string) (*dto.SelectionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.batchID == "" {
		return nil, domain.ErrNoSelection
	}
	return s.selectIngredient(ctx, reCode)
}

func (s *Session) selectIngredient(ctx context.Context, reCode string) (*dto.SelectionResponse, error) {
	req := findRequirement(s.requirements, reCode)
	if req == nil {
		return nil, fmt.Errorf("%w: ingrediente %s en lote %s", domain.ErrNotFound, reCode, s.batchID)
	}
	if err := rules.CheckPlan(req.PerBatchVolume, req.PackageSize); err != nil {
		return nil, err
	}
	eligible, err := s.deps.Ledger.EligibleLots(ctx, req.ReCode, false)
	if err != nil {
		return nil, err
	}
	if req.Status == entity.RequirementPending {
		if err := s.deps.Requirements.SetStatus(ctx, s.batchID, req.ReCode, entity.RequirementInProgress); err != nil {
			return nil, domain.NewPersistenceError("actualizar estado de ingrediente", err)
		}
		req.Status = entity.RequirementInProgress
	}

	s.clearIngredient()
	s.reCode = req.ReCode
	s.packageSize = req.PackageSize
	s.routeScale()

	resp := &dto.SelectionResponse{ReCode: req.ReCode, ScaleID: s.scaleID}
	if head := rules.Head(eligible); head != nil {
		s.selectedLot = head.IntakeLotID
		lr := ToLotResponse(head)
		resp.AutoSelectedLot = &lr
		s.state = StateWeighing
	} else {
		resp.NoInventory = true
		s.state = StateSelecting
	}
	recs := s.ingredientRecords()
	resp.Target = rules.TargetWeight(req.PerBatchVolume, s.packageSize, rules.PackagedVolume(recs))
	resp.TotalPackages = rules.TotalPackages(req.PerBatchVolume, s.packageSize)
	resp.NextPackageNo = rules.NextPackageNo(rules.PackageNumbers(recs))
	s.log.Info().Str("batch_id", s.batchID).Str("re_code", req.ReCode).Str("scale_id", s.scaleID).
		Bool("no_inventory", resp.NoInventory).Msg("ingrediente seleccionado")
	return resp, nil
}

// routeScale activa la balanza según el tamaño de paquete. Sin tamaño no se elige
// balanza y la sesión lee la balanza activa de la planta.
func (s *Session) routeScale() {
	id := s.deps.Scales.SelectScaleFor(s.packageSize)
	s.scaleID = id
	if id == "" {
		return
	}
	if err := s.deps.Scales.SetActive(id); err != nil {
		s.log.Warn().Err(err).Str("scale_id", id).Msg("no se pudo activar balanza")
	}
}

// ScanLot registra un lote escaneado; debe ser la cabeza FIFO del ingrediente.
// Ante una violación FIFO la selección de lote se limpia.
func (s *Session) ScanLot(ctx context.Context, lotID string) (*entity.InventoryLot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reCode == "" {
		return nil, domain.ErrNoSelection
	}
	lot, err := s.deps.Ledger.CheckScan(ctx, s.reCode, strings.TrimSpace(lotID), s.composer.PendingByLot())
	if err != nil {
		var fv *domain.FIFOViolationError
		if errors.As(err, &fv) {
			s.selectedLot = ""
			s.deps.Recorder.FIFOViolation(s.reCode)
			s.log.Warn().Str("re_code", s.reCode).Str("scanned", fv.ScannedLotID).
				Str("expected", fv.ExpectedLotID).Msg("violación FIFO")
		}
		return nil, err
	}
	s.selectedLot = lot.IntakeLotID
	s.state = StateWeighing
	return lot, nil
}

// liveWeight lee la balanza de la sesión; falla si está en error.
func (s *Session) liveWeight() (decimal.Decimal, error) {
	id := s.scaleID
	if id == "" {
		id = s.deps.Scales.Active()
	}
	return s.deps.Scales.LiveWeight(id)
}

// checkDelta valida que el lote pueda cubrir el delta actual.
func (s *Session) checkDelta(ctx context.Context, lotID string, delta decimal.Decimal) error {
	pending := s.composer.PendingByLot()
	lot, err := s.deps.Ledger.CheckScan(ctx, s.reCode, lotID, pending)
	if err != nil {
		return err
	}
	if avail := rules.Available(lot, pending); delta.GreaterThan(avail.Add(rules.Epsilon)) {
		return fmt.Errorf("%w: lote %s tiene %s kg, se intentan tomar %s kg",
			domain.ErrInsufficientStock, lot.IntakeLotID, avail.String(), delta.String())
	}
	return nil
}

// AddOrigin atribuye el delta de la balanza al lote seleccionado y limpia la selección.
func (s *Session) AddOrigin(ctx context.Context) (entity.PackageOrigin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reCode == "" {
		return entity.PackageOrigin{}, domain.ErrNoSelection
	}
	if s.selectedLot == "" {
		return entity.PackageOrigin{}, domain.ErrMissingLotSelection
	}
	live, err := s.liveWeight()
	if err != nil {
		return entity.PackageOrigin{}, err
	}
	delta := s.composer.Delta(live)
	if !delta.GreaterThan(rules.Epsilon) {
		return entity.PackageOrigin{}, domain.ErrNothingToAdd
	}
	if err := s.checkDelta(ctx, s.selectedLot, delta); err != nil {
		return entity.PackageOrigin{}, err
	}
	o, err := s.composer.Add(s.selectedLot, live)
	if err != nil {
		return entity.PackageOrigin{}, err
	}
	s.selectedLot = ""
	s.state = StateWeighing
	return o, nil
}

// RemoveOrigin descarta el origen en la posición index.
func (s *Session) RemoveOrigin(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.composer.Remove(index)
}

// Done confirma el paquete en curso: persiste el registro con sus orígenes,
// descuenta inventario y, si el ingrediente quedó completo, avanza en cascada.
// Los fallos de inventario posteriores al registro se informan como advertencias.
func (s *Session) Done(ctx context.Context) (*dto.CommitResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reCode == "" {
		return nil, domain.ErrNoSelection
	}
	req := findRequirement(s.requirements, s.reCode)
	if req == nil {
		return nil, domain.ErrNoSelection
	}
	if req.Status == entity.RequirementDone {
		return nil, fmt.Errorf("%w: el ingrediente %s ya está completo", domain.ErrConflict, req.ReCode)
	}
	live, err := s.liveWeight()
	if err != nil {
		return nil, err
	}
	if delta := s.composer.Delta(live); delta.GreaterThan(rules.Epsilon) && s.selectedLot != "" {
		if err := s.checkDelta(ctx, s.selectedLot, delta); err != nil {
			return nil, err
		}
	}
	origins, err := s.composer.Finalize(s.selectedLot, live)
	if err != nil {
		return nil, err
	}

	recs := s.ingredientRecords()
	net := decimal.Zero
	for _, o := range origins {
		net = net.Add(o.TakeVolume)
	}
	pkgNo := rules.NextPackageNo(rules.PackageNumbers(recs))
	total := rules.TotalPackages(req.PerBatchVolume, s.packageSize)
	rec := &entity.PrebatchRecord{
		ID:            uuid.New().String(),
		BatchRecordID: rules.BatchRecordID(s.batchID, req.ReCode, pkgNo),
		PlanID:        s.planID,
		BatchID:       s.batchID,
		ReCode:        req.ReCode,
		PackageNo:     pkgNo,
		TotalPackages: total,
		NetVolume:     net,
		TotalVolume:   req.PerBatchVolume,
		Origins:       origins,
		IntakeLotID:   origins[0].IntakeLotID,
		ScaleID:       s.scaleID,
		CreatedBy:     s.operator,
		CreatedAt:     s.deps.Clock(),
	}

	prev := s.state
	s.state = StateCommitting
	if err := s.deps.Records.Create(ctx, rec); err != nil {
		s.state = prev
		return nil, domain.NewPersistenceError("guardar paquete", err)
	}

	resp := &dto.CommitResponse{Record: ToRecordResponse(rec)}
	for _, o := range origins {
		if err := s.deps.Ledger.Consume(ctx, o.IntakeLotID, o.TakeVolume); err != nil {
			s.deps.Recorder.InventoryError("consume")
			s.log.Error().Err(err).Str("record_id", rec.ID).Str("intake_lot_id", o.IntakeLotID).
				Str("volume", o.TakeVolume.String()).Msg("no se pudo descontar inventario")
			resp.InventoryWarnings = append(resp.InventoryWarnings, fmt.Sprintf("lote %s: %v", o.IntakeLotID, err))
		}
	}
	s.records = append(s.records, rec)
	s.composer.Reset()
	s.selectedLot = ""
	s.state = StateWeighing
	recs = s.ingredientRecords()
	req.TotalPackagedVolume = rules.PackagedVolume(recs)
	s.deps.Recorder.PackageCommitted(req.ReCode, net)
	s.log.Info().Str("batch_record_id", rec.BatchRecordID).Str("net", net.String()).
		Int("package_no", pkgNo).Int("total_packages", total).Msg("paquete registrado")

	if rules.IsPackageSetComplete(pkgNo, total, rules.PackageNumbers(recs)) {
		if err := s.completeIngredient(ctx, req, resp); err != nil {
			s.log.Error().Err(err).Str("re_code", req.ReCode).Msg("no se pudo completar ingrediente")
			resp.CascadeError = err.Error()
		}
		return resp, nil
	}
	s.preselectHead(ctx)
	return resp, nil
}

// preselectHead deja seleccionada la cabeza FIFO para el próximo paquete.
func (s *Session) preselectHead(ctx context.Context) {
	eligible, err := s.deps.Ledger.EligibleLots(ctx, s.reCode, false)
	if err != nil {
		s.log.Warn().Err(err).Msg("no se pudo refrescar lotes elegibles")
		return
	}
	if head := rules.Head(eligible); head != nil {
		s.selectedLot = head.IntakeLotID
	}
}

// completeIngredient marca Done, prepara el lote de producción si todos sus
// ingredientes terminaron y avanza al siguiente lote que necesite el ingrediente.
func (s *Session) completeIngredient(ctx context.Context, req *entity.IngredientRequirement, resp *dto.CommitResponse) error {
	if err := s.deps.Requirements.SetStatus(ctx, s.batchID, req.ReCode, entity.RequirementDone); err != nil {
		return domain.NewPersistenceError("marcar ingrediente completo", err)
	}
	req.Status = entity.RequirementDone
	resp.IngredientDone = true

	reqs := s.requirements
	if fresh, err := s.deps.Requirements.ListByBatch(ctx, s.batchID); err == nil {
		reqs = fresh
		s.requirements = fresh
	} else {
		s.log.Warn().Err(err).Msg("no se pudo refrescar requerimientos")
	}
	if allDone(reqs) {
		if b := findBatch(s.batches, s.batchID); b != nil && !b.Prepared {
			if err := s.deps.Batches.MarkPrepared(ctx, s.batchID); err != nil {
				return domain.NewPersistenceError("marcar lote preparado", err)
			}
			b.Prepared = true
			resp.BatchPrepared = true
			s.log.Info().Str("batch_id", s.batchID).Msg("lote de producción preparado")
		}
	}

	next, err := s.advance(ctx, req.ReCode)
	if err != nil || next == "" {
		resp.AllBatchesComplete = err == nil
		s.selectedLot = ""
		s.composer.Reset()
		s.state = StateCompleted
		return err
	}
	resp.AdvancedToBatch = next
	return nil
}

// advance busca el siguiente lote de producción no preparado cuyo requerimiento
// del ingrediente no esté Done y lo deja seleccionado.
func (s *Session) advance(ctx context.Context, reCode string) (string, error) {
	idx := -1
	for i, b := range s.batches {
		if b.BatchID == s.batchID {
			idx = i
			break
		}
	}
	for _, b := range s.batches[idx+1:] {
		if b.Prepared {
			continue
		}
		reqs, recs, err := s.loadBatch(ctx, b.BatchID)
		if err != nil {
			return "", err
		}
		r := findRequirement(reqs, reCode)
		if r == nil || r.Status == entity.RequirementDone {
			continue
		}
		prevBatch, prevReqs, prevRecs := s.batchID, s.requirements, s.records
		s.batchID, s.requirements, s.records = b.BatchID, reqs, recs
		if _, err := s.selectIngredient(ctx, r.ReCode); err != nil {
			// selectIngredient no toca la sesión si falla; solo se revierte el lote
			s.batchID, s.requirements, s.records = prevBatch, prevReqs, prevRecs
			return "", fmt.Errorf("avanzar al lote %s: %w", b.BatchID, err)
		}
		s.log.Info().Str("batch_id", b.BatchID).Str("re_code", reCode).Msg("avance al siguiente lote de producción")
		return b.BatchID, nil
	}
	return "", nil
}

// Cancel elimina un paquete confirmado y devuelve su volumen a los lotes de origen.
// confirmation debe ser el número de paquete, el id o el batch_record_id.
// El inventario se devuelve y el ingrediente se reabre antes de borrar el registro;
// si un paso falla se deshace lo hecho y el error es reintentable.
func (s *Session) Cancel(ctx context.Context, recordID, confirmation string) (*dto.CancelResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := findRecord(s.records, recordID)
	if rec == nil {
		found, err := s.deps.Records.GetByID(ctx, recordID)
		if err != nil {
			return nil, domain.NewPersistenceError("buscar paquete", err)
		}
		if found == nil {
			return nil, fmt.Errorf("%w: paquete %s", domain.ErrNotFound, recordID)
		}
		rec = found
	}
	if !confirmationMatches(rec, confirmation) {
		return nil, domain.ErrInvalidConfirmation
	}

	resp := &dto.CancelResponse{Record: ToRecordResponse(rec), Restored: []dto.OriginResponse{}}
	var restored []entity.PackageOrigin
	for _, o := range rec.EffectiveOrigins() {
		err := s.deps.Ledger.Restore(ctx, o.IntakeLotID, o.TakeVolume)
		if errors.Is(err, domain.ErrUnknownLot) {
			// el lote fue dado de baja: no hay a dónde devolver
			s.deps.Recorder.InventoryError("restore")
			s.log.Error().Err(err).Str("record_id", rec.ID).Str("intake_lot_id", o.IntakeLotID).
				Msg("lote de origen inexistente")
			resp.InventoryWarnings = append(resp.InventoryWarnings, fmt.Sprintf("lote %s: %v", o.IntakeLotID, err))
			continue
		}
		if err != nil {
			s.deps.Recorder.InventoryError("restore")
			s.undoRestore(ctx, rec, restored)
			return nil, err
		}
		restored = append(restored, o)
	}

	reopened, err := s.reopenRequirement(ctx, rec)
	if err != nil {
		s.undoRestore(ctx, rec, restored)
		return nil, err
	}

	if err := s.deps.Records.Delete(ctx, rec.ID); err != nil {
		s.undoReopen(ctx, rec, reopened)
		s.undoRestore(ctx, rec, restored)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, domain.NewPersistenceError("eliminar paquete", err)
	}

	for _, o := range restored {
		resp.Restored = append(resp.Restored, dto.OriginResponse{IntakeLotID: o.IntakeLotID, TakeVolume: o.TakeVolume})
	}
	s.records = removeRecord(s.records, rec.ID)
	if rec.BatchID == s.batchID {
		if req := findRequirement(s.requirements, rec.ReCode); req != nil {
			req.TotalPackagedVolume = rules.PackagedVolume(rules.IngredientRecords(s.records, s.batchID, req.ReCode))
			if reopened {
				req.Status = entity.RequirementInProgress
				if s.state == StateCompleted && rules.SameID(s.reCode, req.ReCode) {
					s.state = StateWeighing
					s.preselectHead(ctx)
				}
			}
		}
	}
	s.deps.Recorder.PackageCancelled(rec.ReCode)
	s.log.Info().Str("batch_record_id", rec.BatchRecordID).Msg("paquete cancelado")
	return resp, nil
}

// reopenRequirement regresa a InProgress el ingrediente Done del paquete.
// Indica si el estado cambió.
func (s *Session) reopenRequirement(ctx context.Context, rec *entity.PrebatchRecord) (bool, error) {
	reqs := s.requirements
	if rec.BatchID != s.batchID {
		var err error
		if reqs, err = s.deps.Requirements.ListByBatch(ctx, rec.BatchID); err != nil {
			return false, domain.NewPersistenceError("listar requerimientos", err)
		}
	}
	req := findRequirement(reqs, rec.ReCode)
	if req == nil || req.Status != entity.RequirementDone {
		return false, nil
	}
	if err := s.deps.Requirements.SetStatus(ctx, rec.BatchID, req.ReCode, entity.RequirementInProgress); err != nil {
		return false, domain.NewPersistenceError("reabrir ingrediente", err)
	}
	return true, nil
}

func (s *Session) undoReopen(ctx context.Context, rec *entity.PrebatchRecord, reopened bool) {
	if !reopened {
		return
	}
	if err := s.deps.Requirements.SetStatus(ctx, rec.BatchID, rec.ReCode, entity.RequirementDone); err != nil {
		s.log.Error().Err(err).Str("batch_id", rec.BatchID).Str("re_code", rec.ReCode).
			Msg("no se pudo restablecer ingrediente completo")
	}
}

// undoRestore vuelve a descontar lo devuelto por una cancelación que no pudo completarse.
func (s *Session) undoRestore(ctx context.Context, rec *entity.PrebatchRecord, restored []entity.PackageOrigin) {
	for _, o := range restored {
		if err := s.deps.Ledger.Consume(ctx, o.IntakeLotID, o.TakeVolume); err != nil {
			s.deps.Recorder.InventoryError("restore_undo")
			s.log.Error().Err(err).Str("record_id", rec.ID).Str("intake_lot_id", o.IntakeLotID).
				Str("volume", o.TakeVolume.String()).Msg("inventario inconsistente: no se pudo revertir la devolución")
		}
	}
}

// UnlockPackageSize habilita la edición del tamaño de paquete con la contraseña del operador.
func (s *Session) UnlockPackageSize(ctx context.Context, password string) error {
	if s.deps.Verifier == nil {
		return domain.ErrUnauthorized
	}
	if err := s.deps.Verifier.VerifyCredential(ctx, s.operator, password); err != nil {
		if errors.Is(err, domain.ErrPersistence) {
			return err
		}
		return domain.ErrUnauthorized
	}
	s.mu.Lock()
	s.unlocked = true
	s.mu.Unlock()
	return nil
}

// LockPackageSize vuelve a bloquear el tamaño de paquete.
func (s *Session) LockPackageSize() {
	s.mu.Lock()
	s.unlocked = false
	s.mu.Unlock()
}

// SetPackageSize cambia el tamaño de paquete del ingrediente en curso; requiere desbloqueo.
func (s *Session) SetPackageSize(size decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.unlocked {
		return domain.ErrFieldLocked
	}
	if size.IsNegative() {
		return fmt.Errorf("%w: tamaño de paquete negativo", domain.ErrInvalidInput)
	}
	req := findRequirement(s.requirements, s.reCode)
	if s.reCode == "" || req == nil {
		return domain.ErrNoSelection
	}
	if err := rules.CheckPlan(req.PerBatchVolume, size); err != nil {
		return err
	}
	s.packageSize = size
	s.sizeOverride = true
	s.routeScale()
	return nil
}

// Lots devuelve los lotes elegibles del ingrediente en curso descontando lo ya atribuido.
func (s *Session) Lots(ctx context.Context) ([]*entity.InventoryLot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reCode == "" {
		return nil, domain.ErrNoSelection
	}
	return s.deps.Ledger.eligible(ctx, s.reCode, false, s.composer.PendingByLot())
}

// View arma la vista de la sesión para la UI.
func (s *Session) View() dto.SessionResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := dto.SessionResponse{
		Operator:          s.operator,
		State:             s.state.String(),
		PlanID:            s.planID,
		BatchID:           s.batchID,
		ReCode:            s.reCode,
		SelectedLotID:     s.selectedLot,
		PackageSize:       s.packageSize,
		PackageSizeLocked: !s.unlocked,
		ScaleID:           s.scaleID,
		Origins:           []dto.OriginResponse{},
		Plan:              []dto.PlannedPackageResponse{},
		Requirements:      make([]dto.RequirementResponse, 0, len(s.requirements)),
		Records:           make([]dto.RecordResponse, 0, len(s.records)),
	}
	for _, r := range s.requirements {
		rr := toRequirementResponse(r)
		rr.PackagedVolume = rules.PackagedVolume(rules.IngredientRecords(s.records, s.batchID, r.ReCode))
		v.Requirements = append(v.Requirements, rr)
	}
	for _, r := range s.records {
		v.Records = append(v.Records, ToRecordResponse(r))
	}
	req := findRequirement(s.requirements, s.reCode)
	if req == nil {
		return v
	}
	for _, o := range s.composer.Origins() {
		v.Origins = append(v.Origins, dto.OriginResponse{IntakeLotID: o.IntakeLotID, TakeVolume: o.TakeVolume})
	}
	recs := s.ingredientRecords()
	v.Plan = toPlanResponse(rules.Plan(req.PerBatchVolume, s.packageSize, recs))
	v.TotalPackages = rules.TotalPackages(req.PerBatchVolume, s.packageSize)
	v.NextPackageNo = rules.NextPackageNo(rules.PackageNumbers(recs))
	v.Target = rules.TargetWeight(req.PerBatchVolume, s.packageSize, rules.PackagedVolume(recs))

	live, err := s.liveWeight()
	v.LiveWeight = live
	v.ScaleStale = err != nil
	v.Delta = s.composer.Delta(live)
	if s.scaleID != "" {
		v.WithinTolerance, _ = s.deps.Scales.IsWithinTolerance(s.scaleID, v.Target, live)
	}
	return v
}

func (s *Session) ingredientRecords() []*entity.PrebatchRecord {
	return rules.IngredientRecords(s.records, s.batchID, s.reCode)
}

func confirmationMatches(rec *entity.PrebatchRecord, confirmation string) bool {
	c := strings.TrimSpace(confirmation)
	if c == "" {
		return false
	}
	return c == strconv.Itoa(rec.PackageNo) || c == rec.ID || rules.SameID(c, rec.BatchRecordID)
}

func findRequirement(reqs []*entity.IngredientRequirement, reCode string) *entity.IngredientRequirement {
	if reCode == "" {
		return nil
	}
	for _, r := range reqs {
		if rules.SameID(r.ReCode, reCode) {
			return r
		}
	}
	return nil
}

func findBatch(batches []*entity.ProductionBatch, batchID string) *entity.ProductionBatch {
	for _, b := range batches {
		if b.BatchID == batchID {
			return b
		}
	}
	return nil
}

func findRecord(records []*entity.PrebatchRecord, id string) *entity.PrebatchRecord {
	for _, r := range records {
		if r.ID == id || r.BatchRecordID == id {
			return r
		}
	}
	return nil
}

func removeRecord(records []*entity.PrebatchRecord, id string) []*entity.PrebatchRecord {
	out := records[:0]
	for _, r := range records {
		if r.ID != id {
			out = append(out, r)
		}
	}
	return out
}

func allDone(reqs []*entity.IngredientRequirement) bool {
	if len(reqs) == 0 {
		return false
	}
	for _, r := range reqs {
		if r.Status != entity.RequirementDone {
			return false
		}
	}
	return true
}
