package detection

import (
	"context"
	"sync"

	"github.com/heartmarshall/medchan-backend/internal/domain"
)

var _ detectionRepo = &detectionRepoMock{}

type detectionRepoMock struct {
	CreateFunc func(ctx context.Context, d domain.Detection) (*domain.Detection, error)
	ListFunc   func(ctx context.Context, offset, limit int) ([]domain.Detection, error)

	calls struct {
		Create []struct {
			Ctx context.Context
			D   domain.Detection
		}
		List []struct {
			Ctx    context.Context
			Offset int
			Limit  int
		}
	}
	lockCreate sync.RWMutex
	lockList   sync.RWMutex
}

func (mock *detectionRepoMock) Create(ctx context.Context, d domain.Detection) (*domain.Detection, error) {
	if mock.CreateFunc == nil {
		panic("detectionRepoMock.CreateFunc: method is nil but detectionRepo.Create was just called")
	}
	callInfo := struct {
		Ctx context.Context
		D   domain.Detection
	}{Ctx: ctx, D: d}
	mock.lockCreate.Lock()
	mock.calls.Create = append(mock.calls.Create, callInfo)
	mock.lockCreate.Unlock()
	return mock.CreateFunc(ctx, d)
}

func (mock *detectionRepoMock) CreateCalls() []struct {
	Ctx context.Context
	D   domain.Detection
} {
	mock.lockCreate.RLock()
	calls := mock.calls.Create
	mock.lockCreate.RUnlock()
	return calls
}

func (mock *detectionRepoMock) List(ctx context.Context, offset, limit int) ([]domain.Detection, error) {
	if mock.ListFunc == nil {
		panic("detectionRepoMock.ListFunc: method is nil but detectionRepo.List was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		Offset int
		Limit  int
	}{Ctx: ctx, Offset: offset, Limit: limit}
	mock.lockList.Lock()
	mock.calls.List = append(mock.calls.List, callInfo)
	mock.lockList.Unlock()
	return mock.ListFunc(ctx, offset, limit)
}

func (mock *detectionRepoMock) ListCalls() []struct {
	Ctx    context.Context
	Offset int
	Limit  int
} {
	mock.lockList.RLock()
	calls := mock.calls.List
	mock.lockList.RUnlock()
	return calls
}
