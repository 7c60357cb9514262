//	mockgen -source=internal/usecase/interfaces.go -destination=internal/usecase/mocks/mock_interfaces.go -package=mocks
//

// Package mocks is a generated GoMock package.
package mocks

import (
	context "context"
	reflect "reflect"

	domain "github.com/dashfin/finmirror/internal/domain"
	usecase "github.com/dashfin/finmirror/internal/usecase"
	gomock "go.uber.org/mock/gomock"
)

// MockCollectionWatcher is a mock of CollectionWatcher interface.
type MockCollectionWatcher struct {
	ctrl     *gomock.Controller
	recorder *MockCollectionWatcherMockRecorder
	isgomock struct{}
}

// MockCollectionWatcherMockRecorder is the mock recorder for MockCollectionWatcher.
type MockCollectionWatcherMockRecorder struct {
	mock *MockCollectionWatcher
}

// NewMockCollectionWatcher creates a new mock instance.
func NewMockCollectionWatcher(ctrl *gomock.Controller) *MockCollectionWatcher {
	mock := &MockCollectionWatcher{ctrl: ctrl}
	mock.recorder = &MockCollectionWatcherMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockCollectionWatcher) EXPECT() *MockCollectionWatcherMockRecorder {
	return m.recorder
}

// Watch mocks base method.
func (m *MockCollectionWatcher) Watch(ctx context.Context, collection string) (<-chan usecase.Delivery, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Watch", ctx, collection)
	ret0, _ := ret[0].(<-chan usecase.Delivery)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Watch indicates an expected call of Watch.
func (mr *MockCollectionWatcherMockRecorder) Watch(ctx, collection any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Watch", reflect.TypeOf((*MockCollectionWatcher)(nil).Watch), ctx, collection)
}

// MockCollectionWriter is a mock of CollectionWriter interface.
type MockCollectionWriter struct {
	ctrl     *gomock.Controller
	recorder *MockCollectionWriterMockRecorder
	isgomock struct{}
}

// MockCollectionWriterMockRecorder is the mock recorder for MockCollectionWriter.
type MockCollectionWriterMockRecorder struct {
	mock *MockCollectionWriter
}

// NewMockCollectionWriter creates a new mock instance.
func NewMockCollectionWriter(ctrl *gomock.Controller) *MockCollectionWriter {
	mock := &MockCollectionWriter{ctrl: ctrl}
	mock.recorder = &MockCollectionWriterMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockCollectionWriter) EXPECT() *MockCollectionWriterMockRecorder {
	return m.recorder
}

// Delete mocks base method.
func (m *MockCollectionWriter) Delete(ctx context.Context, collection, id string) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Delete", ctx, collection, id)
	ret0, _ := ret[0].(error)
	return ret0
}

// Delete indicates an expected call of Delete.
func (mr *MockCollectionWriterMockRecorder) Delete(ctx, collection, id any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Delete", reflect.TypeOf((*MockCollectionWriter)(nil).Delete), ctx, collection, id)
}

// Insert mocks base method.
func (m *MockCollectionWriter) Insert(ctx context.Context, collection string, fields domain.RecordFields) (*domain.Record, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Insert", ctx, collection, fields)
	ret0, _ := ret[0].(*domain.Record)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Insert indicates an expected call of Insert.
func (mr *MockCollectionWriterMockRecorder) Insert(ctx, collection, fields any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Insert", reflect.TypeOf((*MockCollectionWriter)(nil).Insert), ctx, collection, fields)
}

// Replace mocks base method.
func (m *MockCollectionWriter) Replace(ctx context.Context, collection, id string, fields domain.RecordFields) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Replace", ctx, collection, id, fields)
	ret0, _ := ret[0].(error)
	return ret0
}

// Replace indicates an expected call of Replace.
func (mr *MockCollectionWriterMockRecorder) Replace(ctx, collection, id, fields any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Replace", reflect.TypeOf((*MockCollectionWriter)(nil).Replace), ctx, collection, id, fields)
}

// MockIdentityProvider is a mock of IdentityProvider interface.
type MockIdentityProvider struct {
	ctrl     *gomock.Controller
	recorder *MockIdentityProviderMockRecorder
	isgomock struct{}
}

// MockIdentityProviderMockRecorder is the mock recorder for MockIdentityProvider.
type MockIdentityProviderMockRecorder struct {
	mock *MockIdentityProvider
}

// NewMockIdentityProvider creates a new mock instance.
func NewMockIdentityProvider(ctrl *gomock.Controller) *MockIdentityProvider {
	mock := &MockIdentityProvider{ctrl: ctrl}
	mock.recorder = &MockIdentityProviderMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockIdentityProvider) EXPECT() *MockIdentityProviderMockRecorder {
	return m.recorder
}

// Identity mocks base method.
func (m *MockIdentityProvider) Identity(ctx context.Context) *domain.Ownership {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Identity", ctx)
	ret0, _ := ret[0].(*domain.Ownership)
	return ret0
}

// Identity indicates an expected call of Identity.
func (mr *MockIdentityProviderMockRecorder) Identity(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Identity", reflect.TypeOf((*MockIdentityProvider)(nil).Identity), ctx)
}

// MockIDGenerator is a mock of IDGenerator interface.
type MockIDGenerator struct {
	ctrl     *gomock.Controller
	recorder *MockIDGeneratorMockRecorder
	isgomock struct{}
}

// MockIDGeneratorMockRecorder is the mock recorder for MockIDGenerator.
type MockIDGeneratorMockRecorder struct {
	mock *MockIDGenerator
}

// NewMockIDGenerator creates a new mock instance.
func NewMockIDGenerator(ctrl *gomock.Controller) *MockIDGenerator {
	mock := &MockIDGenerator{ctrl: ctrl}
	mock.recorder = &MockIDGeneratorMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockIDGenerator) EXPECT() *MockIDGeneratorMockRecorder {
	return m.recorder
}

// Generate mocks base method.
func (m *MockIDGenerator) Generate() string {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Generate")
	ret0, _ := ret[0].(string)
	return ret0
}

// Generate indicates an expected call of Generate.
func (mr *MockIDGeneratorMockRecorder) Generate() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Generate", reflect.TypeOf((*MockIDGenerator)(nil).Generate))
}

// MockMutator is a mock of Mutator interface.
type MockMutator struct {
	ctrl     *gomock.Controller
	recorder *MockMutatorMockRecorder
	isgomock struct{}
}

// MockMutatorMockRecorder is the mock recorder for MockMutator.
type MockMutatorMockRecorder struct {
	mock *MockMutator
}

// NewMockMutator creates a new mock instance.
func NewMockMutator(ctrl *gomock.Controller) *MockMutator {
	mock := &MockMutator{ctrl: ctrl}
	mock.recorder = &MockMutatorMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockMutator) EXPECT() *MockMutatorMockRecorder {
	return m.recorder
}

// Create mocks base method.
func (m *MockMutator) Create(ctx context.Context, fields domain.RecordFields) (*domain.Record, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Create", ctx, fields)
	ret0, _ := ret[0].(*domain.Record)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Create indicates an expected call of Create.
func (mr *MockMutatorMockRecorder) Create(ctx, fields any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Create", reflect.TypeOf((*MockMutator)(nil).Create), ctx, fields)
}

// Update mocks base method.
func (m *MockMutator) Update(ctx context.Context, id string, fields domain.RecordFields) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Update", ctx, id, fields)
	ret0, _ := ret[0].(error)
	return ret0
}

// Update indicates an expected call of Update.
func (mr *MockMutatorMockRecorder) Update(ctx, id, fields any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Update", reflect.TypeOf((*MockMutator)(nil).Update), ctx, id, fields)
}
