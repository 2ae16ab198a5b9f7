package device

import (
	"time"
)

// Device é um terminal físico de fiscalização. DeviceID é o identificador
// opaco gravado no aparelho; UID é a identidade interna vinculada a ele.
type Device struct {
	ID        string    `gorm:"primaryKey;size:36"`
	DeviceID  string    `gorm:"uniqueIndex;size:64;not null"`
	UID       string    `gorm:"index;size:36;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName mantém o nome de coleção herdado do sistema original.
func (Device) TableName() string {
	return "aparelhos"
}
