package vehicle

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

// FindByPlate busca por igualdade exata de placa (a placa é comparada como
// foi armazenada; a validação de sintaxe acontece antes da consulta).
func (r *Repo) FindByPlate(ctx context.Context, plate string) (*Vehicle, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var v Vehicle
	if err := r.db.WithContext(ctx).Where("plate = ?", plate).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}
