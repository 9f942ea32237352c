// Package session modela la sesión de compra diaria y sus ítems
package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/hugohenrick/verduleria-api/internal/domain"
	"github.com/shopspring/decimal"
)

// DateKeyLayout es el formato de dateKey (YYYY-MM-DD)
const DateKeyLayout = "2006-01-02"

// Status representa el estado de la sesión
type Status string

const (
	StatusPlanificacion Status = "PLANIFICACION"
	StatusAbierta       Status = "ABIERTA"
	StatusCerrada       Status = "CERRADA"
)

var (
	ErrInvalidDateKey   = domain.NewValidation("INVALID_DATE_KEY", "dateKey debe tener formato YYYY-MM-DD")
	ErrNegativeBudget   = domain.NewValidation("NEGATIVE_BUDGET", "el presupuesto no puede ser negativo")
	ErrSessionNotFound  = domain.NewNotFound("SESSION_NOT_FOUND", "sesión no encontrada")
	ErrActiveSession    = domain.NewStateConflict("ACTIVE_SESSION_EXISTS", "ya existe una sesión sin cerrar")
	ErrDuplicateDateKey = domain.NewStateConflict("DUPLICATE_DATE_KEY", "ya existe una sesión para esa fecha")
	ErrEmptyPlan        = domain.NewStateConflict("EMPTY_PLAN", "la sesión no tiene ítems planificados")
	ErrNotPlanning      = domain.NewStateConflict("NOT_PLANNING", "la sesión no está en PLANIFICACION")
	ErrNotOpen          = domain.NewStateConflict("NOT_OPEN", "la sesión no está ABIERTA")
)

// Session es el ciclo de compra de un día
type Session struct {
	ID                string           `json:"id"`
	DateKey           string           `json:"dateKey"`
	DateTarget        *time.Time       `json:"dateTarget"`
	Status            Status           `json:"status"`
	PlannedBudgetReal *decimal.Decimal `json:"plannedBudgetReal"`
	PlannedBudgetRef  *decimal.Decimal `json:"plannedBudgetRef"`
	CreatedBy         string           `json:"createdBy"`
	OpenedAt          *time.Time       `json:"openedAt"`
	ClosedAt          *time.Time       `json:"closedAt"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

// NewSession crea una sesión en PLANIFICACION
func NewSession(dateKey string, dateTarget *time.Time, createdBy string, now time.Time) (*Session, error) {
	if _, err := time.Parse(DateKeyLayout, dateKey); err != nil {
		return nil, ErrInvalidDateKey
	}
	return &Session{
		ID:         uuid.New().String(),
		DateKey:    dateKey,
		DateTarget: dateTarget,
		Status:     StatusPlanificacion,
		CreatedBy:  createdBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// DateKeyFor devuelve el dateKey del instante en la zona dada
func DateKeyFor(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(DateKeyLayout)
}

// Open pasa la sesión a ABIERTA. Requiere al menos un ítem planificado.
func (s *Session) Open(plannedItems int, now time.Time) error {
	if s.Status != StatusPlanificacion {
		if s.Status == StatusCerrada {
			return domain.ErrSessionClosed
		}
		return ErrNotPlanning
	}
	if plannedItems < 1 {
		return ErrEmptyPlan
	}
	s.Status = StatusAbierta
	s.OpenedAt = &now
	s.UpdatedAt = now
	return nil
}

// Close pasa la sesión a CERRADA. Es irreversible.
func (s *Session) Close(now time.Time) error {
	switch s.Status {
	case StatusCerrada:
		return domain.ErrSessionClosed
	case StatusAbierta:
	default:
		return ErrNotOpen
	}
	s.Status = StatusCerrada
	s.ClosedAt = &now
	s.UpdatedAt = now
	return nil
}

// SetBudget guarda los presupuestos planificados. Permitido en cualquier estado.
func (s *Session) SetBudget(real, ref *decimal.Decimal, now time.Time) error {
	if (real != nil && real.IsNegative()) || (ref != nil && ref.IsNegative()) {
		return ErrNegativeBudget
	}
	s.PlannedBudgetReal = real
	s.PlannedBudgetRef = ref
	s.UpdatedAt = now
	return nil
}

// IsClosed indica si la sesión ya no acepta cambios
func (s *Session) IsClosed() bool {
	return s.Status == StatusCerrada
}

// EnsureWritable falla si la sesión está cerrada
func (s *Session) EnsureWritable() error {
	if s.IsClosed() {
		return domain.ErrSessionClosed
	}
	return nil
}

// EnsureOpen falla si la sesión no está ABIERTA
func (s *Session) EnsureOpen() error {
	if err := s.EnsureWritable(); err != nil {
		return err
	}
	if s.Status != StatusAbierta {
		return ErrNotOpen
	}
	return nil
}

// CanEditItems valida si se pueden agregar, editar o quitar ítems del origen dado
func (s *Session) CanEditItems(origin Origin) error {
	if err := s.EnsureWritable(); err != nil {
		return err
	}
	switch origin {
	case OriginPlanificado:
		if s.Status != StatusPlanificacion {
			return ErrNotPlanning
		}
	case OriginNoPlanificado:
		if s.Status != StatusAbierta {
			return ErrNotOpen
		}
	default:
		return ErrInvalidOrigin
	}
	return nil
}

// PickCurrent elige la sesión vigente: ABIERTA, luego PLANIFICACION, luego la más reciente
func PickCurrent(sessions []*Session) *Session {
	var current *Session
	rank := func(s *Session) int {
		switch s.Status {
		case StatusAbierta:
			return 0
		case StatusPlanificacion:
			return 1
		}
		return 2
	}
	for _, s := range sessions {
		if current == nil || rank(s) < rank(current) ||
			(rank(s) == rank(current) && s.DateKey > current.DateKey) {
			current = s
		}
	}
	return current
}
