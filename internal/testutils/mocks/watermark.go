package mocks

import (
	"context"
	"time"
)

type WatermarkMock struct {
	stored     time.Time
	now        time.Time
	readError  error
	writeError error
	ReadCalls  int
	WriteCalls int
}

type WatermarkMockOptions func(*WatermarkMock)

func Stored(t time.Time) WatermarkMockOptions {
	return func(w *WatermarkMock) {
		w.stored = t
	}
}

func Now(t time.Time) WatermarkMockOptions {
	return func(w *WatermarkMock) {
		w.now = t
	}
}

func ReadMethodError(err error) WatermarkMockOptions {
	return func(w *WatermarkMock) {
		w.readError = err
	}
}

func WriteMethodError(err error) WatermarkMockOptions {
	return func(w *WatermarkMock) {
		w.writeError = err
	}
}

func NewWatermarkMock(opts ...WatermarkMockOptions) *WatermarkMock {
	w := &WatermarkMock{
		stored: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		now:    time.Date(2024, 5, 1, 12, 5, 0, 0, time.UTC),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (m *WatermarkMock) Read(_ context.Context, _ string) (time.Time, error) {
	m.ReadCalls++
	if m.readError != nil {
		return time.Time{}, m.readError
	}
	return m.stored, nil
}

func (m *WatermarkMock) Write(_ context.Context, _ string) (time.Time, error) {
	m.WriteCalls++
	if m.writeError != nil {
		return time.Time{}, m.writeError
	}
	m.stored = m.now
	return m.now, nil
}

func (m *WatermarkMock) Current() time.Time {
	return m.stored
}
