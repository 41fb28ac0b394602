package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/sm8ta/patient_records/internal/core/domain"
	"github.com/sm8ta/patient_records/internal/core/ports"
)

type nopLogger struct{}

func (nopLogger) Info(string, map[string]interface{})  {}
func (nopLogger) Error(string, map[string]interface{}) {}
func (nopLogger) Debug(string, map[string]interface{}) {}
func (nopLogger) Warn(string, map[string]interface{})  {}

var _ ports.LoggerPort = nopLogger{}

// memKV is a map-backed KeyValueStore. Setting failWith makes every call
// fail.
type memKV struct {
	mu       sync.Mutex
	data     map[string][]byte
	failWith error
}

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}}
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	v, ok := m.data[key]
	if !ok {
		return nil, ports.ErrKeyNotFound
	}
	return v, nil
}

func (m *memKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.data[key] = value
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	delete(m.data, key)
	return nil
}

var _ ports.KeyValueStore = (*memKV)(nil)

type stubIssuer struct {
	token string
	err   error
}

func (s stubIssuer) CreateToken(_ *domain.User) (string, error) {
	return s.token, s.err
}

// mockPatientRepository counts calls so tests can assert that nothing hit
// the network.
type mockPatientRepository struct {
	ListFunc   func(ctx context.Context) ([]domain.Patient, error)
	CreateFunc func(ctx context.Context, req domain.PatientRequest) (domain.Patient, error)
	UpdateFunc func(ctx context.Context, id string, req domain.PatientRequest) (domain.Patient, error)
	DeleteFunc func(ctx context.Context, id string) error

	calls int32
}

func (m *mockPatientRepository) Calls() int {
	return int(atomic.LoadInt32(&m.calls))
}

func (m *mockPatientRepository) List(ctx context.Context) ([]domain.Patient, error) {
	atomic.AddInt32(&m.calls, 1)
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *mockPatientRepository) Create(ctx context.Context, req domain.PatientRequest) (domain.Patient, error) {
	atomic.AddInt32(&m.calls, 1)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, req)
	}
	return domain.Patient{}, errors.New("CreateFunc not implemented in mock")
}

func (m *mockPatientRepository) Update(ctx context.Context, id string, req domain.PatientRequest) (domain.Patient, error) {
	atomic.AddInt32(&m.calls, 1)
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, req)
	}
	return domain.Patient{}, errors.New("UpdateFunc not implemented in mock")
}

func (m *mockPatientRepository) Delete(ctx context.Context, id string) error {
	atomic.AddInt32(&m.calls, 1)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return errors.New("DeleteFunc not implemented in mock")
}

var _ ports.PatientRepository = (*mockPatientRepository)(nil)

type mockPatientStore struct {
	ListFunc   func(ctx context.Context) ([]domain.Patient, error)
	CreateFunc func(ctx context.Context, p *domain.Patient) (*domain.Patient, error)
	UpdateFunc func(ctx context.Context, p *domain.Patient) (*domain.Patient, error)
	DeleteFunc func(ctx context.Context, id string) error

	calls int32
}

func (m *mockPatientStore) List(ctx context.Context) ([]domain.Patient, error) {
	atomic.AddInt32(&m.calls, 1)
	return m.ListFunc(ctx)
}

func (m *mockPatientStore) Create(ctx context.Context, p *domain.Patient) (*domain.Patient, error) {
	atomic.AddInt32(&m.calls, 1)
	return m.CreateFunc(ctx, p)
}

func (m *mockPatientStore) Update(ctx context.Context, p *domain.Patient) (*domain.Patient, error) {
	atomic.AddInt32(&m.calls, 1)
	return m.UpdateFunc(ctx, p)
}

func (m *mockPatientStore) Delete(ctx context.Context, id string) error {
	atomic.AddInt32(&m.calls, 1)
	return m.DeleteFunc(ctx, id)
}

var _ ports.PatientStore = (*mockPatientStore)(nil)
