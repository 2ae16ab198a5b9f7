package vehicle

import (
	"time"
)

// Vehicle é o registro de permissão de estacionamento de um veículo.
// A tabela é alimentada por um sistema externo; aqui só há leitura.
type Vehicle struct {
	ID          string    `gorm:"primaryKey;size:36"`
	Plate       string    `gorm:"uniqueIndex;size:8;not null"` // 3 letras + 4 dígitos
	PermitStart time.Time `gorm:"not null"`                    // início da janela (UTC)
	PermitEnd   time.Time `gorm:"not null;index"`              // fim da janela (UTC)
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// TableName mantém o nome de coleção herdado do sistema original.
func (Vehicle) TableName() string {
	return "veiculos"
}
