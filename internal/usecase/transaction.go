package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Transaction executa operações em sequência e, se uma falhar, roda as
// compensações das que já passaram, em ordem inversa.
type Transaction struct {
	operations    []Operation
	compensations []Compensation
	logger        zerolog.Logger
}

type Operation struct {
	Name string
	Fn   func(context.Context) error
}

type Compensation struct {
	Name string
	Fn   func(context.Context) error
}

func NewTransaction(logger zerolog.Logger) *Transaction {
	return &Transaction{
		operations:    []Operation{},
		compensations: []Compensation{},
		logger:        logger,
	}
}

func (t *Transaction) AddOperation(name string, fn func(context.Context) error) {
	t.operations = append(t.operations, Operation{name, fn})
}

// AddCompensation registra o desfazer da operação de mesmo índice. Use nil
// quando a operação não tem o que desfazer.
func (t *Transaction) AddCompensation(name string, fn func(context.Context) error) {
	t.compensations = append(t.compensations, Compensation{name, fn})
}

func (t *Transaction) Execute(ctx context.Context) error {
	for i, op := range t.operations {
		if err := op.Fn(ctx); err != nil {
			t.rollback(ctx, i)
			return fmt.Errorf("operation '%s' failed: %w (rolled back %d operations)", op.Name, err, i)
		}
	}
	return nil
}

func (t *Transaction) rollback(ctx context.Context, failedAtIndex int) {
	// a compensação roda mesmo se o ctx original já foi cancelado
	ctx = context.WithoutCancel(ctx)
	for i := failedAtIndex - 1; i >= 0; i-- {
		if i >= len(t.compensations) || t.compensations[i].Fn == nil {
			continue
		}
		comp := t.compensations[i]
		if err := comp.Fn(ctx); err != nil {
			t.logger.Error().Err(err).Str("compensation", comp.Name).Msg("⚠️ compensation failed (inconsistency risk!)")
		}
	}
}
