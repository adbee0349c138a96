package services

import (
	"errors"
	"fmt"
	"time"
)

// Common service errors
var (
	ErrNotFound            = errors.New("registro não encontrado")
	ErrUnauthorized        = errors.New("não autorizado")
	ErrInvalidCredentials  = errors.New("credenciais inválidas")
	ErrInvalidState        = errors.New("transição de estado inválida")
	ErrDuplicate           = errors.New("registro duplicado")
	ErrInvalidDateRange    = errors.New("data final anterior à data de início")
	ErrInvalidDueDay       = errors.New("dia de vencimento fora do intervalo 1-31")
	ErrPersistenceConflict = errors.New("conflito de persistência")
)

// InvalidDateRangeError reports a contract whose effective end precedes its
// start. It wraps ErrInvalidDateRange so callers can branch with errors.Is
// while still seeing the offending dates.
type InvalidDateRangeError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidDateRangeError) Error() string {
	return fmt.Sprintf("%v: início %s, fim efetivo %s",
		ErrInvalidDateRange, e.Start.Format("2006-01-02"), e.End.Format("2006-01-02"))
}

func (e *InvalidDateRangeError) Unwrap() error {
	return ErrInvalidDateRange
}

// InvalidDueDayError reports a due day outside 1-31. Input validation should
// reject it before the engine runs, but the due day also drives
// reconciliation-time recomputation, so the engine re-validates.
type InvalidDueDayError struct {
	Day int
}

func (e *InvalidDueDayError) Error() string {
	return fmt.Sprintf("%v: %d", ErrInvalidDueDay, e.Day)
}

func (e *InvalidDueDayError) Unwrap() error {
	return ErrInvalidDueDay
}
