package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storytime-server/internal/model"
	"storytime-server/internal/service"
)

// MockStoryGenerator is a mock type for the StoryGenerator type
type MockStoryGenerator struct {
	mock.Mock
}

// GenerateStory provides a mock function with given fields: ctx, req
func (_m *MockStoryGenerator) GenerateStory(ctx context.Context, req model.GenerateStoryRequest) (model.GeneratedStory, error) {
	ret := _m.Called(ctx, req)

	var r0 model.GeneratedStory
	if rf, ok := ret.Get(0).(func(context.Context, model.GenerateStoryRequest) model.GeneratedStory); ok {
		r0 = rf(ctx, req)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(model.GeneratedStory)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, model.GenerateStoryRequest) error); ok {
		r1 = rf(ctx, req)
	} else {
		err := ret.Error(1)
		if err != nil {
			r1 = err
		}
	}

	return r0, r1
}

// GenerateSpeech provides a mock function with given fields: ctx, text
func (_m *MockStoryGenerator) GenerateSpeech(ctx context.Context, text string) ([]byte, error) {
	ret := _m.Called(ctx, text)

	var r0 []byte
	if rf, ok := ret.Get(0).(func(context.Context, string) []byte); ok {
		r0 = rf(ctx, text)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]byte)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, text)
	} else {
		err := ret.Error(1)
		if err != nil {
			r1 = err
		}
	}

	return r0, r1
}

// NewMockStoryGenerator creates a new instance of MockStoryGenerator. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockStoryGenerator(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockStoryGenerator {
	m := &MockStoryGenerator{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

var _ service.StoryGenerator = (*MockStoryGenerator)(nil)
