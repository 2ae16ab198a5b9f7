package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/galacerda/fiscal-api/internal/common/apperrors"
	"github.com/galacerda/fiscal-api/internal/common/middleware"
	"github.com/galacerda/fiscal-api/internal/device"
	"gorm.io/gorm"
)

type fakeDevices struct {
	byDeviceID map[string]*device.Device
	err        error
}

func (f *fakeDevices) FindByDeviceID(ctx context.Context, deviceID string) (*device.Device, error) {
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.byDeviceID[deviceID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return d, nil
}

type fakeUsers struct {
	byID    map[string]*AuthUser
	byEmail map[string]*AuthUser
	updates int
	err     error
}

func (f *fakeUsers) FindByID(ctx context.Context, id string) (*AuthUser, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) FindByEmail(ctx context.Context, email string) (*AuthUser, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) UpdatePassword(ctx context.Context, id, hashHex, saltHex string) error {
	u, ok := f.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.PasswordHash = hashHex
	u.PasswordSalt = saltHex
	f.updates++
	return nil
}

func newTestProvider(devices *fakeDevices, users *fakeUsers) *Provider {
	return NewProvider(devices, users, middleware.NewCircuitBreaker("identity", 3, time.Second))
}

func seededUsers() *fakeUsers {
	u := &AuthUser{ID: "uid-1", Email: "fiscal@example.com"}
	return &fakeUsers{
		byID:    map[string]*AuthUser{"uid-1": u},
		byEmail: map[string]*AuthUser{"fiscal@example.com": u},
	}
}

func TestIssueDeviceCredentials(t *testing.T) {
	devices := &fakeDevices{byDeviceID: map[string]*device.Device{
		"TERM-01": {ID: "dev-1", DeviceID: "TERM-01", UID: "uid-1"},
	}}
	users := seededUsers()
	p := newTestProvider(devices, users)

	creds, err := p.IssueDeviceCredentials(context.Background(), "TERM-01")
	if err != nil {
		t.Fatalf("IssueDeviceCredentials: %v", err)
	}
	if creds.Email != "fiscal@example.com" {
		t.Fatalf("email mismatch: %s", creds.Email)
	}
	if creds.TemporaryPassword == "" {
		t.Fatalf("expected a temporary password")
	}
	if users.updates != 1 {
		t.Fatalf("expected one password rotation, got %d", users.updates)
	}

	// a senha devolvida precisa funcionar no login
	u, err := p.VerifyCredentials(context.Background(), "fiscal@example.com", creds.TemporaryPassword)
	if err != nil {
		t.Fatalf("VerifyCredentials with issued password: %v", err)
	}
	if u.ID != "uid-1" {
		t.Fatalf("uid mismatch: %s", u.ID)
	}
}

func TestIssueDeviceCredentialsRotates(t *testing.T) {
	devices := &fakeDevices{byDeviceID: map[string]*device.Device{
		"TERM-01": {ID: "dev-1", DeviceID: "TERM-01", UID: "uid-1"},
	}}
	users := seededUsers()
	p := newTestProvider(devices, users)

	first, err := p.IssueDeviceCredentials(context.Background(), "TERM-01")
	if err != nil {
		t.Fatalf("first issue: %v", err)
	}
	second, err := p.IssueDeviceCredentials(context.Background(), "TERM-01")
	if err != nil {
		t.Fatalf("second issue: %v", err)
	}
	if first.TemporaryPassword == second.TemporaryPassword {
		t.Fatalf("rotation must produce a fresh password")
	}
	if _, err := p.VerifyCredentials(context.Background(), "fiscal@example.com", first.TemporaryPassword); apperrors.KindOf(err) != apperrors.KindUnauthorized {
		t.Fatalf("stale password must stop working, got %v", err)
	}
}

func TestIssueDeviceCredentialsUnknownDevice(t *testing.T) {
	p := newTestProvider(&fakeDevices{byDeviceID: map[string]*device.Device{}}, seededUsers())

	_, err := p.IssueDeviceCredentials(context.Background(), "TERM-99")
	if apperrors.KindOf(err) != apperrors.KindValidation {
		t.Fatalf("expected validation kind, got %v (%v)", apperrors.KindOf(err), err)
	}
	if apperrors.UserMessage(err) != apperrors.GenericMessage {
		t.Fatalf("unknown device must not leak which lookup failed")
	}
}

func TestIssueDeviceCredentialsMissingUser(t *testing.T) {
	devices := &fakeDevices{byDeviceID: map[string]*device.Device{
		"TERM-01": {ID: "dev-1", DeviceID: "TERM-01", UID: "uid-gone"},
	}}
	p := newTestProvider(devices, seededUsers())

	_, err := p.IssueDeviceCredentials(context.Background(), "TERM-01")
	if apperrors.KindOf(err) != apperrors.KindValidation {
		t.Fatalf("expected validation kind, got %v (%v)", apperrors.KindOf(err), err)
	}
	if apperrors.UserMessage(err) != apperrors.GenericMessage {
		t.Fatalf("missing user must not leak which lookup failed")
	}
}

func TestIssueDeviceCredentialsStoreFailure(t *testing.T) {
	devices := &fakeDevices{byDeviceID: map[string]*device.Device{
		"TERM-01": {ID: "dev-1", DeviceID: "TERM-01", UID: "uid-1"},
	}}
	users := seededUsers()
	users.err = errors.New("connection reset")
	p := newTestProvider(devices, users)

	_, err := p.IssueDeviceCredentials(context.Background(), "TERM-01")
	if apperrors.KindOf(err) != apperrors.KindInfrastructure {
		t.Fatalf("expected infrastructure kind, got %v", apperrors.KindOf(err))
	}
	if apperrors.UserMessage(err) != apperrors.GenericMessage {
		t.Fatalf("store failure must surface the generic message")
	}
}

func TestVerifyCredentials(t *testing.T) {
	users := seededUsers()
	salt, err := GenerateSaltHex()
	if err != nil {
		t.Fatalf("GenerateSaltHex: %v", err)
	}
	hash, err := HashPassword("s3cr3t", salt)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	users.byID["uid-1"].PasswordSalt = salt
	users.byID["uid-1"].PasswordHash = hash
	p := newTestProvider(&fakeDevices{}, users)

	if _, err := p.VerifyCredentials(context.Background(), "fiscal@example.com", "s3cr3t"); err != nil {
		t.Fatalf("valid credentials: %v", err)
	}
	if _, err := p.VerifyCredentials(context.Background(), "fiscal@example.com", "wrong"); apperrors.KindOf(err) != apperrors.KindUnauthorized {
		t.Fatalf("wrong password: expected unauthorized, got %v", err)
	}
	if _, err := p.VerifyCredentials(context.Background(), "nobody@example.com", "s3cr3t"); apperrors.KindOf(err) != apperrors.KindUnauthorized {
		t.Fatalf("unknown email: expected unauthorized, got %v", err)
	}
	if _, err := p.VerifyCredentials(context.Background(), "", ""); apperrors.KindOf(err) != apperrors.KindUnauthorized {
		t.Fatalf("empty credentials: expected unauthorized, got %v", err)
	}
}

func TestVerifyCredentialsBreakerOpens(t *testing.T) {
	users := seededUsers()
	users.err = errors.New("connection reset")
	p := newTestProvider(&fakeDevices{}, users)

	for i := 0; i < 3; i++ {
		if _, err := p.VerifyCredentials(context.Background(), "fiscal@example.com", "s3cr3t"); apperrors.KindOf(err) != apperrors.KindInfrastructure {
			t.Fatalf("call %d: expected infrastructure, got %v", i, err)
		}
	}
	// circuito aberto: a chamada nem chega ao store
	_, err := p.VerifyCredentials(context.Background(), "fiscal@example.com", "s3cr3t")
	if !errors.Is(err, middleware.ErrCircuitOpen) {
		t.Fatalf("expected circuit open error in the chain, got %v", err)
	}
	if apperrors.KindOf(err) != apperrors.KindInfrastructure {
		t.Fatalf("open circuit must classify as infrastructure")
	}
}
