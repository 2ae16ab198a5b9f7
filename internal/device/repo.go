package device

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// FindByDeviceID busca pelo identificador externo do aparelho.
func (r *Repo) FindByDeviceID(ctx context.Context, deviceID string) (*Device, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var d Device
	if err := r.db.WithContext(ctx).Where("device_id = ?", deviceID).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// FindByUID busca o aparelho vinculado a uma identidade. Havendo mais de um,
// vale o primeiro por ordem de chave primária (política first-match).
func (r *Repo) FindByUID(ctx context.Context, uid string) (*Device, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var d Device
	if err := r.db.WithContext(ctx).Where("uid = ?", uid).Order("id").First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}
