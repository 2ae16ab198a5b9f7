package fiscal

import (
	"time"
)

// Fiscal é a pessoa autorizada a registrar irregularidades. O vínculo com o
// aparelho é uma chave explícita (DeviceID) e não uma referência nativa do
// store.
type Fiscal struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Name      string    `gorm:"size:128"`
	DeviceID  string    `gorm:"index;size:36;not null"` // Device.ID
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName mantém o nome de coleção herdado do sistema original.
func (Fiscal) TableName() string {
	return "fiscais"
}
