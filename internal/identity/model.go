package identity

import (
	"strings"
	"time"
)

// AuthUser é a identidade interna vinculada a um aparelho. O UID é o mesmo
// gravado no registro do aparelho; o e-mail é a credencial de login exibida
// ao dispositivo no bootstrap.
type AuthUser struct {
	ID           string    `gorm:"primaryKey;size:36"` // uid do provedor de identidade
	Email        string    `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string    `gorm:"size:128;not null"`
	PasswordSalt string    `gorm:"size:64;not null"`
	Roles        string    `gorm:"size:256"` // separado por vírgula, ex.: "fiscal"
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (AuthUser) TableName() string {
	return "auth_users"
}

func (u AuthUser) RolesSlice() []string {
	if strings.TrimSpace(u.Roles) == "" {
		return nil
	}
	parts := strings.Split(u.Roles, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
