package vehicle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/galacerda/fiscal-api/internal/common/apperrors"
	"gorm.io/gorm"
)

type fakeStore struct {
	vehicles map[string]*Vehicle
	queries  int
	failWith error
}

func (f *fakeStore) FindByPlate(ctx context.Context, plate string) (*Vehicle, error) {
	f.queries++
	if f.failWith != nil {
		return nil, f.failWith
	}
	v, ok := f.vehicles[plate]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *v
	return &cp, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestConsultPlateInvalidSyntax(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, time.UTC)

	_, err := svc.ConsultPlate(context.Background(), "AB123")
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if apperrors.KindOf(err) != apperrors.KindValidation {
		t.Fatalf("expected validation kind, got %v", apperrors.KindOf(err))
	}
	if store.queries != 0 {
		t.Fatalf("invalid plate must not hit the store, got %d queries", store.queries)
	}
}

func TestConsultPlateNotFoundIsSuccess(t *testing.T) {
	svc := NewService(&fakeStore{vehicles: map[string]*Vehicle{}}, time.UTC)

	res, err := svc.ConsultPlate(context.Background(), "ABC1234")
	if err != nil {
		t.Fatalf("ConsultPlate: %v", err)
	}
	if res.Found || res.Regularized {
		t.Fatalf("expected not-found result, got %+v", res)
	}
	if res.Plate != "ABC1234" {
		t.Fatalf("queried plate echo mismatch: %s", res.Plate)
	}
}

func TestConsultPlateExpiredPermit(t *testing.T) {
	now := time.Date(2023, 5, 10, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{vehicles: map[string]*Vehicle{
		"ABC1234": {Plate: "ABC1234", PermitEnd: now.Add(-time.Hour)},
	}}
	svc := NewService(store, time.UTC, WithClock(fixedClock(now)))

	res, err := svc.ConsultPlate(context.Background(), "ABC1234")
	if err != nil {
		t.Fatalf("ConsultPlate: %v", err)
	}
	if !res.Found || res.Regularized {
		t.Fatalf("expected found+unregularized, got %+v", res)
	}
	if res.PermitEndLocal != "" {
		t.Fatalf("expired permit must not render end time, got %q", res.PermitEndLocal)
	}
}

func TestConsultPlatePermitEndBoundary(t *testing.T) {
	now := time.Date(2023, 5, 10, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{vehicles: map[string]*Vehicle{
		"ABC1234": {Plate: "ABC1234", PermitEnd: now},
	}}
	svc := NewService(store, time.UTC, WithClock(fixedClock(now)))

	// now == permitEnd conta como vencido (now >= permitEnd).
	res, err := svc.ConsultPlate(context.Background(), "ABC1234")
	if err != nil {
		t.Fatalf("ConsultPlate: %v", err)
	}
	if res.Regularized {
		t.Fatalf("expected unregularized at exact permit end")
	}
}

func TestConsultPlateRegularizedFormatsLocalTime(t *testing.T) {
	now := time.Date(2023, 5, 10, 12, 0, 0, 0, time.UTC)
	end := time.Date(2023, 5, 10, 18, 30, 0, 0, time.UTC)
	store := &fakeStore{vehicles: map[string]*Vehicle{
		"ABC1234": {Plate: "ABC1234", PermitEnd: end},
	}}

	loc := time.FixedZone("UTC-3", -3*60*60)
	svc := NewService(store, loc, WithClock(fixedClock(now)))

	res, err := svc.ConsultPlate(context.Background(), "ABC1234")
	if err != nil {
		t.Fatalf("ConsultPlate: %v", err)
	}
	if !res.Regularized {
		t.Fatalf("expected regularized, got %+v", res)
	}
	// 18:30 UTC em UTC-3 → 15:30
	if res.PermitEndLocal != "15:30" {
		t.Fatalf("formatted end time mismatch: %q", res.PermitEndLocal)
	}
}

func TestConsultPlateRepeatedReadIsIdentical(t *testing.T) {
	now := time.Date(2023, 5, 10, 12, 0, 0, 0, time.UTC)
	end := now.Add(2 * time.Hour)
	store := &fakeStore{vehicles: map[string]*Vehicle{
		"abc1234": {Plate: "abc1234", PermitEnd: end},
	}}
	svc := NewService(store, time.UTC, WithClock(fixedClock(now)))

	first, err := svc.ConsultPlate(context.Background(), "abc1234")
	if err != nil {
		t.Fatalf("first consult: %v", err)
	}
	second, err := svc.ConsultPlate(context.Background(), "abc1234")
	if err != nil {
		t.Fatalf("second consult: %v", err)
	}
	if *first != *second {
		t.Fatalf("repeated read differs: %+v vs %+v", first, second)
	}
}

func TestConsultPlateStoreFailureIsInfrastructure(t *testing.T) {
	store := &fakeStore{failWith: errors.New("connection refused")}
	svc := NewService(store, time.UTC)

	_, err := svc.ConsultPlate(context.Background(), "ABC1234")
	if err == nil {
		t.Fatalf("expected error")
	}
	if apperrors.KindOf(err) != apperrors.KindInfrastructure {
		t.Fatalf("expected infrastructure kind, got %v", apperrors.KindOf(err))
	}
	if apperrors.UserMessage(err) != apperrors.GenericMessage {
		t.Fatalf("infrastructure faults must hide details from the user")
	}
}
