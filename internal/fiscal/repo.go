package fiscal

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

// FindByDeviceID resolve o fiscal vinculado a um aparelho. O modelo assume no
// máximo um fiscal ativo por aparelho; se houver mais de um, vale o primeiro
// por ordem de chave primária (política first-match).
func (r *Repo) FindByDeviceID(ctx context.Context, deviceID string) (*Fiscal, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var f Fiscal
	if err := r.db.WithContext(ctx).Where("device_id = ?", deviceID).Order("id").First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}
