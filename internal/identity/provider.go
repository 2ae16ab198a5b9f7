package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/galacerda/fiscal-api/internal/common/apperrors"
	"github.com/galacerda/fiscal-api/internal/common/middleware"
	"github.com/galacerda/fiscal-api/internal/device"
	"gorm.io/gorm"
)

// DeviceStore resolve o registro do aparelho pelo identificador externo.
type DeviceStore interface {
	FindByDeviceID(ctx context.Context, deviceID string) (*device.Device, error)
}

// Store é o repositório de identidades.
type Store interface {
	FindByID(ctx context.Context, id string) (*AuthUser, error)
	FindByEmail(ctx context.Context, email string) (*AuthUser, error)
	UpdatePassword(ctx context.Context, id, hashHex, saltHex string) error
}

// Credentials é o par devolvido no bootstrap do aparelho. A senha temporária
// aparece em texto puro uma única vez; a partir daqui só existe o hash.
type Credentials struct {
	Email             string
	TemporaryPassword string
}

// Provider faz a ponte aparelho → identidade: emite credenciais de bootstrap
// e verifica credenciais no login. As consultas à base de identidades passam
// por um circuit breaker.
type Provider struct {
	devices DeviceStore
	users   Store
	breaker *middleware.CircuitBreaker
}

func NewProvider(devices DeviceStore, users Store, breaker *middleware.CircuitBreaker) *Provider {
	return &Provider{devices: devices, users: users, breaker: breaker}
}

// IssueDeviceCredentials resolve aparelho → uid → usuário, rotaciona a senha
// temporária e devolve {email, senha}. Aparelho ou identidade inexistentes
// voltam como invalid-argument com a mensagem genérica: o chamador não aprende
// qual das duas buscas falhou, o motivo real fica no detalhe para os logs.
func (p *Provider) IssueDeviceCredentials(ctx context.Context, deviceID string) (*Credentials, error) {
	if p == nil || p.devices == nil || p.users == nil {
		return nil, apperrors.Infrastructure("identity provider not initialized", nil)
	}

	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return nil, apperrors.Validation(apperrors.GenericMessage, "empty deviceId in credentials request")
	}

	d, err := p.devices.FindByDeviceID(ctx, deviceID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Validation(
			apperrors.GenericMessage,
			fmt.Sprintf("no device with deviceId=%s", deviceID),
		)
	}
	if err != nil {
		return nil, apperrors.Infrastructure("query device by deviceId", err)
	}

	u, err := p.findUser(ctx, d.UID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Validation(
			apperrors.GenericMessage,
			fmt.Sprintf("device %s points at missing auth user uid=%s", deviceID, d.UID),
		)
	}
	if err != nil {
		return nil, apperrors.Infrastructure("query auth user by uid", err)
	}

	plain, err := NewTemporaryPassword()
	if err != nil {
		return nil, apperrors.Infrastructure("generate temporary password", err)
	}
	salt, err := GenerateSaltHex()
	if err != nil {
		return nil, apperrors.Infrastructure("generate password salt", err)
	}
	hash, err := HashPassword(plain, salt)
	if err != nil {
		return nil, apperrors.Infrastructure("hash temporary password", err)
	}
	if err := p.users.UpdatePassword(ctx, u.ID, hash, salt); err != nil {
		return nil, apperrors.Infrastructure("store temporary password", err)
	}

	return &Credentials{Email: u.Email, TemporaryPassword: plain}, nil
}

// VerifyCredentials valida e-mail + senha para o login. Qualquer desvio
// (usuário inexistente, senha errada) volta como Unauthorized com a mesma
// mensagem, sem revelar qual credencial falhou.
func (p *Provider) VerifyCredentials(ctx context.Context, email, password string) (*AuthUser, error) {
	if p == nil || p.users == nil {
		return nil, apperrors.Infrastructure("identity provider not initialized", nil)
	}

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperrors.Unauthorized("Credenciais inválidas", "empty email or password")
	}

	var u *AuthUser
	err := p.call(ctx, func() error {
		var inner error
		u, inner = p.users.FindByEmail(ctx, email)
		if errors.Is(inner, gorm.ErrRecordNotFound) {
			// não conta como falha de infraestrutura para o breaker
			u = nil
			return nil
		}
		return inner
	})
	if err != nil {
		return nil, apperrors.Infrastructure("query auth user by email", err)
	}
	if u == nil {
		return nil, apperrors.Unauthorized("Credenciais inválidas", fmt.Sprintf("unknown email %s", email))
	}

	if !VerifyPassword(password, u.PasswordSalt, u.PasswordHash) {
		return nil, apperrors.Unauthorized("Credenciais inválidas", fmt.Sprintf("wrong password for uid=%s", u.ID))
	}
	return u, nil
}

func (p *Provider) findUser(ctx context.Context, uid string) (*AuthUser, error) {
	var u *AuthUser
	var lookupErr error
	err := p.call(ctx, func() error {
		var inner error
		u, inner = p.users.FindByID(ctx, uid)
		if errors.Is(inner, gorm.ErrRecordNotFound) {
			lookupErr = inner
			u = nil
			return nil
		}
		return inner
	})
	if err != nil {
		return nil, err
	}
	if lookupErr != nil {
		return nil, lookupErr
	}
	return u, nil
}

func (p *Provider) call(ctx context.Context, fn func() error) error {
	if p.breaker == nil {
		return fn()
	}
	return p.breaker.Call(ctx, fn)
}
