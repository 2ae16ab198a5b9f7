package irregularity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/galacerda/fiscal-api/internal/common/apperrors"
	"github.com/galacerda/fiscal-api/internal/device"
	"github.com/galacerda/fiscal-api/internal/fiscal"
	"github.com/galacerda/fiscal-api/internal/plate"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeviceStore resolve o aparelho vinculado à identidade do chamador.
type DeviceStore interface {
	FindByUID(ctx context.Context, uid string) (*device.Device, error)
}

// FiscalStore resolve o fiscal vinculado a um aparelho.
type FiscalStore interface {
	FindByDeviceID(ctx context.Context, deviceID string) (*fiscal.Fiscal, error)
}

// ReportStore persiste e lista registros de irregularidade.
type ReportStore interface {
	Create(ctx context.Context, rep *Report) error
	List(ctx context.Context, plate, fiscalID string, offset, limit int) ([]Report, int64, error)
}

// Service encadeia autenticação → aparelho → fiscal → persistência.
// Não há transação cobrindo a sequência de leituras e a escrita final: a
// janela entre resolver o fiscal e gravar o registro é tolerada neste domínio.
type Service struct {
	devices DeviceStore
	fiscais FiscalStore
	reports ReportStore
}

func NewService(devices DeviceStore, fiscais FiscalStore, reports ReportStore) *Service {
	return &Service{devices: devices, fiscais: fiscais, reports: reports}
}

// RegisterInput é a entrada do registro de irregularidade.
type RegisterInput struct {
	CallerUID string // identidade verificada pelo transporte; vazio = anônimo
	Plate     string
	Photos    []string // exatamente 4 referências opacas, ordem preservada
	Type      Type     // opcional
}

// Register executa a máquina linear do registro, parando no primeiro desvio.
// Falhas de negócio (anônimo, aparelho sem vínculo, fiscal ausente) voltam
// como apperrors Unauthorized/NotFound; falha de store vira Infrastructure.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Report, error) {
	if s == nil || s.devices == nil || s.fiscais == nil || s.reports == nil {
		return nil, apperrors.Infrastructure("irregularity service not initialized", nil)
	}

	if strings.TrimSpace(in.CallerUID) == "" {
		return nil, apperrors.Unauthorized("Usuario não autenticado", "register without verified identity")
	}

	p := plate.Normalize(in.Plate)
	if !plate.IsValid(p) {
		return nil, apperrors.Validation("Placa invalida", fmt.Sprintf("invalid plate syntax: %q", p))
	}
	if err := validatePhotos(in.Photos); err != nil {
		return nil, err
	}

	d, err := s.devices.FindByUID(ctx, in.CallerUID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Unauthorized(
			"Não há aparelho vinculado ao usuario",
			fmt.Sprintf("no device bound to uid=%s", in.CallerUID),
		)
	}
	if err != nil {
		return nil, apperrors.Infrastructure("query device by uid", err)
	}

	f, err := s.fiscais.FindByDeviceID(ctx, d.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound(
			"Fiscal não encontrado",
			fmt.Sprintf("no fiscal bound to device=%s", d.ID),
		)
	}
	if err != nil {
		return nil, apperrors.Infrastructure("query fiscal by device", err)
	}

	rep := &Report{
		ID:       uuid.NewString(),
		Plate:    p,
		FiscalID: f.ID,
		Type:     DisplayLabel(in.Type),
	}
	rep.setPhotos(in.Photos)

	if err := s.reports.Create(ctx, rep); err != nil {
		return nil, apperrors.Infrastructure("insert irregularity report", err)
	}
	return rep, nil
}

// ListInput filtra a listagem de registros.
type ListInput struct {
	Plate    string
	FiscalID string
	Offset   int
	Limit    int
}

func (s *Service) List(ctx context.Context, in ListInput) ([]Report, int64, error) {
	if s == nil || s.reports == nil {
		return nil, 0, apperrors.Infrastructure("irregularity service not initialized", nil)
	}
	reports, total, err := s.reports.List(ctx, plate.Normalize(in.Plate), strings.TrimSpace(in.FiscalID), in.Offset, in.Limit)
	if err != nil {
		return nil, 0, apperrors.Infrastructure("list irregularity reports", err)
	}
	return reports, total, nil
}

func validatePhotos(photos []string) error {
	if len(photos) != PhotoCount {
		return apperrors.Validation(
			"São necessárias exatamente 4 fotos",
			fmt.Sprintf("expected %d photo refs, got %d", PhotoCount, len(photos)),
		)
	}
	for i, ph := range photos {
		if strings.TrimSpace(ph) == "" {
			return apperrors.Validation(
				"São necessárias exatamente 4 fotos",
				fmt.Sprintf("photo ref %d is empty", i+1),
			)
		}
	}
	return nil
}
