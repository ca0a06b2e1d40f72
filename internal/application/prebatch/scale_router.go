package prebatch

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Prebatch-api/internal/domain"
	"github.com/jhoicas/Prebatch-api/internal/domain/entity"
)

// DefaultWatchdogWindow es el tiempo sin lecturas tras el cual una balanza pasa a error.
const DefaultWatchdogWindow = 5 * time.Second

var gramsPerKg = decimal.NewFromInt(1000)

// ScaleConfig describe una balanza del banco.
type ScaleConfig struct {
	ID        string
	Label     string
	Capacity  decimal.Decimal
	Tolerance decimal.Decimal
	Precision int
}

// DefaultScales es el banco de planta: 10 kg, 30 kg y 150 kg.
func DefaultScales() []ScaleConfig {
	return []ScaleConfig{
		{ID: "scale-01", Label: "Balanza 10 kg", Capacity: decimal.NewFromInt(10), Tolerance: decimal.RequireFromString("0.01"), Precision: 4},
		{ID: "scale-02", Label: "Balanza 30 kg", Capacity: decimal.NewFromInt(30), Tolerance: decimal.RequireFromString("0.02"), Precision: 4},
		{ID: "scale-03", Label: "Balanza 150 kg", Capacity: decimal.NewFromInt(150), Tolerance: decimal.RequireFromString("0.5"), Precision: 3},
	}
}

// RouterOption configura un ScaleRouter.
type RouterOption func(*ScaleRouter)

// WithWatchdogWindow cambia la ventana del watchdog.
func WithWatchdogWindow(d time.Duration) RouterOption {
	return func(r *ScaleRouter) { r.window = d }
}

// WithClock inyecta el reloj usado para LastSeenAt.
func WithClock(now func() time.Time) RouterOption {
	return func(r *ScaleRouter) { r.now = now }
}

// WithRecorder registra eventos de balanza en rec.
func WithRecorder(rec Recorder) RouterOption {
	return func(r *ScaleRouter) { r.rec = rec }
}

// WithLogger asigna el logger del router.
func WithLogger(log zerolog.Logger) RouterOption {
	return func(r *ScaleRouter) { r.log = log }
}

// ScaleRouter mantiene el estado de cada balanza, aplica lecturas en orden de llegada
// y marca error cuando una balanza deja de reportar durante la ventana del watchdog.
type ScaleRouter struct {
	mu        sync.RWMutex
	scales    map[string]*entity.ScaleState
	order     []string // por capacidad ascendente
	timers    map[string]*time.Timer
	seq       map[string]uint64
	active    string
	observers map[int]chan entity.ScaleState
	nextObs   int
	closed    bool

	window time.Duration
	now    func() time.Time
	rec    Recorder
	log    zerolog.Logger
}

// NewScaleRouter construye el router con el banco de balanzas indicado.
func NewScaleRouter(cfgs []ScaleConfig, opts ...RouterOption) *ScaleRouter {
	r := &ScaleRouter{
		scales:    make(map[string]*entity.ScaleState, len(cfgs)),
		timers:    make(map[string]*time.Timer, len(cfgs)),
		seq:       make(map[string]uint64, len(cfgs)),
		observers: make(map[int]chan entity.ScaleState),
		window:    DefaultWatchdogWindow,
		now:       time.Now,
		rec:       NopRecorder{},
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	for _, c := range cfgs {
		r.scales[c.ID] = &entity.ScaleState{
			ID:        c.ID,
			Label:     c.Label,
			Capacity:  c.Capacity,
			Tolerance: c.Tolerance,
			Precision: c.Precision,
			LastValue: decimal.Zero,
		}
		r.order = append(r.order, c.ID)
	}
	sort.SliceStable(r.order, func(i, j int) bool {
		return r.scales[r.order[i]].Capacity.LessThan(r.scales[r.order[j]].Capacity)
	})
	return r
}

// OnReading aplica una lectura: normaliza a kg, actualiza el estado y rearma el watchdog.
func (r *ScaleRouter) OnReading(rd entity.ScaleReading) error {
	weight, err := toKg(rd.Weight, rd.Unit)
	if err != nil {
		return err
	}
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	s, ok := r.scales[rd.ScaleID]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrUnknownScale, rd.ScaleID)
	}
	seen := rd.ReceivedAt
	if seen.IsZero() {
		seen = r.now()
	}
	s.LastValue = weight
	s.Stable = rd.Stable
	s.Connected = true
	s.LastSeenAt = seen
	s.Error = rd.Error || rd.ErrorMsg != ""
	s.ErrorMessage = rd.ErrorMsg
	if r.active == "" {
		r.active = rd.ScaleID
	}
	r.armLocked(rd.ScaleID)
	snap := *s
	r.publishLocked(snap)
	r.mu.Unlock()

	r.rec.ScaleReading(snap.ID, snap.LastValue, snap.Error)
	return nil
}

// armLocked reinicia el watchdog de la balanza. Requiere r.mu tomado.
func (r *ScaleRouter) armLocked(id string) {
	r.seq[id]++
	seq := r.seq[id]
	if t, ok := r.timers[id]; ok {
		t.Stop()
	}
	r.timers[id] = time.AfterFunc(r.window, func() { r.expire(id, seq) })
}

func (r *ScaleRouter) expire(id string, seq uint64) {
	r.mu.Lock()
	if r.closed || r.seq[id] != seq {
		r.mu.Unlock()
		return
	}
	s := r.scales[id]
	s.Error = true
	s.Connected = false
	s.ErrorMessage = "sin lecturas"
	r.publishLocked(*s)
	r.mu.Unlock()

	r.log.Warn().Str("scale_id", id).Dur("window", r.window).Msg("watchdog: balanza sin lecturas")
	r.rec.WatchdogTripped(id)
}

// Run consume lecturas hasta que ctx termine o el canal se cierre.
// Las lecturas inválidas se registran y se descartan.
func (r *ScaleRouter) Run(ctx context.Context, in <-chan entity.ScaleReading) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case rd, ok := <-in:
			if !ok {
				return nil
			}
			if err := r.OnReading(rd); err != nil {
				r.log.Debug().Err(err).Str("scale_id", rd.ScaleID).Msg("lectura descartada")
			}
		}
	}
}

// SelectScaleFor elige la balanza de menor capacidad que cubre size;
// si ninguna la cubre, la de mayor capacidad. Vacío si size <= 0.
func (r *ScaleRouter) SelectScaleFor(size decimal.Decimal) string {
	if !size.IsPositive() || len(r.order) == 0 {
		return ""
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.order {
		if size.LessThanOrEqual(r.scales[id].Capacity) {
			return id
		}
	}
	return r.order[len(r.order)-1]
}

// IsWithinTolerance compara |actual - target| con la tolerancia de la balanza.
func (r *ScaleRouter) IsWithinTolerance(scaleID string, target, actual decimal.Decimal) (bool, error) {
	r.mu.RLock()
	s, ok := r.scales[scaleID]
	r.mu.RUnlock()
	if !ok {
		return false, fmt.Errorf("%w: %s", domain.ErrUnknownScale, scaleID)
	}
	return actual.Sub(target).Abs().LessThanOrEqual(s.Tolerance), nil
}

// State devuelve una copia del estado de la balanza.
func (r *ScaleRouter) State(id string) (entity.ScaleState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.scales[id]
	if !ok {
		return entity.ScaleState{}, false
	}
	return *s, true
}

// States devuelve todas las balanzas por capacidad ascendente.
func (r *ScaleRouter) States() []entity.ScaleState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entity.ScaleState, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.scales[id])
	}
	return out
}

// Active devuelve la balanza activa de la planta; vacío hasta que alguna reporte o se elija.
func (r *ScaleRouter) Active() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// SetActive cambia la balanza activa.
func (r *ScaleRouter) SetActive(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.scales[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownScale, id)
	}
	r.active = id
	return nil
}

// LiveWeight devuelve la última lectura en kg. Devuelve ErrStaleScale si la
// balanza está en error; el valor devuelto sigue siendo la última lectura.
func (r *ScaleRouter) LiveWeight(id string) (decimal.Decimal, error) {
	s, ok := r.State(id)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", domain.ErrUnknownScale, id)
	}
	if s.Error {
		return s.LastValue, fmt.Errorf("%w: %s", domain.ErrStaleScale, id)
	}
	return s.LastValue, nil
}

// Subscribe registra un observador de cambios de estado. El canal tiene buffer;
// si el observador se atrasa los cambios se descartan. cancel libera el canal.
func (r *ScaleRouter) Subscribe() (<-chan entity.ScaleState, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch := make(chan entity.ScaleState, 16)
	if r.closed {
		close(ch)
		return ch, func() {}
	}
	id := r.nextObs
	r.nextObs++
	r.observers[id] = ch
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if c, ok := r.observers[id]; ok {
				delete(r.observers, id)
				close(c)
			}
		})
	}
}

// publishLocked entrega el estado sin bloquear. Requiere r.mu tomado, así los
// observadores reciben los cambios de cada balanza en el orden en que ocurrieron.
func (r *ScaleRouter) publishLocked(s entity.ScaleState) {
	for _, ch := range r.observers {
		select {
		case ch <- s:
		default:
		}
	}
}

// Close detiene los watchdogs y cierra los observadores.
func (r *ScaleRouter) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	for _, t := range r.timers {
		t.Stop()
	}
	for id, ch := range r.observers {
		delete(r.observers, id)
		close(ch)
	}
}

func toKg(w decimal.Decimal, unit string) (decimal.Decimal, error) {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "", "kg":
		return w, nil
	case "g":
		return w.Div(gramsPerKg), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: unidad %q", domain.ErrInvalidInput, unit)
	}
}
