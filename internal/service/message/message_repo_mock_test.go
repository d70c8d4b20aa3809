package message

import (
	"context"
	"sync"

	"github.com/heartmarshall/medchan-backend/internal/domain"
)

var _ messageRepo = &messageRepoMock{}

type messageRepoMock struct {
	ListFunc func(ctx context.Context, filter domain.MessageFilter) ([]domain.StoredMessage, error)

	calls struct {
		List []struct {
			Ctx    context.Context
			Filter domain.MessageFilter
		}
	}
	lockList sync.RWMutex
}

func (mock *messageRepoMock) List(ctx context.Context, filter domain.MessageFilter) ([]domain.StoredMessage, error) {
	if mock.ListFunc == nil {
		panic("messageRepoMock.ListFunc: method is nil but messageRepo.List was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		Filter domain.MessageFilter
	}{Ctx: ctx, Filter: filter}
	mock.lockList.Lock()
	mock.calls.List = append(mock.calls.List, callInfo)
	mock.lockList.Unlock()
	return mock.ListFunc(ctx, filter)
}

func (mock *messageRepoMock) ListCalls() []struct {
	Ctx    context.Context
	Filter domain.MessageFilter
} {
	mock.lockList.RLock()
	calls := mock.calls.List
	mock.lockList.RUnlock()
	return calls
}
