package rest

import (
	"context"
	"sync"

	"github.com/heartmarshall/medchan-backend/internal/domain"
	"github.com/heartmarshall/medchan-backend/internal/service/detection"
	"github.com/heartmarshall/medchan-backend/internal/service/message"
)

var _ detectionService = &detectionServiceMock{}

type detectionServiceMock struct {
	CreateFunc func(ctx context.Context, input detection.CreateInput) (*domain.Detection, error)
	ListFunc   func(ctx context.Context, input detection.ListInput) ([]domain.Detection, error)

	calls struct {
		Create []struct {
			Ctx   context.Context
			Input detection.CreateInput
		}
		List []struct {
			Ctx   context.Context
			Input detection.ListInput
		}
	}
	lockCreate sync.RWMutex
	lockList   sync.RWMutex
}

func (mock *detectionServiceMock) Create(ctx context.Context, input detection.CreateInput) (*domain.Detection, error) {
	if mock.CreateFunc == nil {
		panic("detectionServiceMock.CreateFunc: method is nil but detectionService.Create was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input detection.CreateInput
	}{Ctx: ctx, Input: input}
	mock.lockCreate.Lock()
	mock.calls.Create = append(mock.calls.Create, callInfo)
	mock.lockCreate.Unlock()
	return mock.CreateFunc(ctx, input)
}

func (mock *detectionServiceMock) CreateCalls() []struct {
	Ctx   context.Context
	Input detection.CreateInput
} {
	mock.lockCreate.RLock()
	calls := mock.calls.Create
	mock.lockCreate.RUnlock()
	return calls
}

func (mock *detectionServiceMock) List(ctx context.Context, input detection.ListInput) ([]domain.Detection, error) {
	if mock.ListFunc == nil {
		panic("detectionServiceMock.ListFunc: method is nil but detectionService.List was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input detection.ListInput
	}{Ctx: ctx, Input: input}
	mock.lockList.Lock()
	mock.calls.List = append(mock.calls.List, callInfo)
	mock.lockList.Unlock()
	return mock.ListFunc(ctx, input)
}

func (mock *detectionServiceMock) ListCalls() []struct {
	Ctx   context.Context
	Input detection.ListInput
} {
	mock.lockList.RLock()
	calls := mock.calls.List
	mock.lockList.RUnlock()
	return calls
}

var _ messageService = &messageServiceMock{}

type messageServiceMock struct {
	ListFunc func(ctx context.Context, input message.ListInput) ([]domain.StoredMessage, error)

	calls struct {
		List []struct {
			Ctx   context.Context
			Input message.ListInput
		}
	}
	lockList sync.RWMutex
}

func (mock *messageServiceMock) List(ctx context.Context, input message.ListInput) ([]domain.StoredMessage, error) {
	if mock.ListFunc == nil {
		panic("messageServiceMock.ListFunc: method is nil but messageService.List was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input message.ListInput
	}{Ctx: ctx, Input: input}
	mock.lockList.Lock()
	mock.calls.List = append(mock.calls.List, callInfo)
	mock.lockList.Unlock()
	return mock.ListFunc(ctx, input)
}

func (mock *messageServiceMock) ListCalls() []struct {
	Ctx   context.Context
	Input message.ListInput
} {
	mock.lockList.RLock()
	calls := mock.calls.List
	mock.lockList.RUnlock()
	return calls
}
