package vehicle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/galacerda/fiscal-api/internal/common/apperrors"
	"github.com/galacerda/fiscal-api/internal/plate"
	"gorm.io/gorm"
)

// Store é o subconjunto do repositório que o serviço usa.
type Store interface {
	FindByPlate(ctx context.Context, plate string) (*Vehicle, error)
}

// ConsultResult é o resultado da consulta de regularização. Os três desfechos
// (não encontrado, vencido, regularizado) são todos respostas de sucesso;
// só sintaxe inválida ou falha de store viram erro.
type ConsultResult struct {
	Plate          string // placa consultada, como enviada
	Found          bool
	Regularized    bool
	PermitEndLocal string // hh:mm no fuso configurado; vazio se não regularizado
}

type Service struct {
	store Store
	loc   *time.Location
	now   func() time.Time
}

// Option configura o Service (hoje só o relógio, para testes).
type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService cria o serviço de consulta. loc é o fuso usado para exibir o fim
// da janela ao usuário; nil cai no fuso fixo UTC-3 herdado do sistema antigo.
func NewService(store Store, loc *time.Location, opts ...Option) *Service {
	if loc == nil {
		loc = time.FixedZone("UTC-3", -3*60*60)
	}
	s := &Service{store: store, loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ConsultPlate valida a sintaxe, consulta o registro e classifica a janela de
// permissão contra o relógio atual.
func (s *Service) ConsultPlate(ctx context.Context, p string) (*ConsultResult, error) {
	if s == nil || s.store == nil {
		return nil, apperrors.Infrastructure("vehicle service not initialized", nil)
	}

	p = plate.Normalize(p)
	if !plate.IsValid(p) {
		return nil, apperrors.Validation("Placa invalida", fmt.Sprintf("invalid plate syntax: %q", p))
	}

	v, err := s.store.FindByPlate(ctx, p)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &ConsultResult{Plate: p}, nil
	}
	if err != nil {
		return nil, apperrors.Infrastructure("query vehicle by plate", err)
	}

	if !s.now().Before(v.PermitEnd) {
		return &ConsultResult{Plate: p, Found: true}, nil
	}

	return &ConsultResult{
		Plate:          p,
		Found:          true,
		Regularized:    true,
		PermitEndLocal: v.PermitEnd.In(s.loc).Format("15:04"),
	}, nil
}
