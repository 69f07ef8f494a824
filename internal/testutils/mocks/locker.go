package mocks

import "context"

type LockerMock struct {
	lockError   error
	unlockError error
	Locked      bool
	Unlocks     int
}

func NewLockerMock(lockError error, unlockError error) *LockerMock {
	return &LockerMock{lockError: lockError, unlockError: unlockError}
}

func (m *LockerMock) Lock(_ context.Context) error {
	if m.lockError != nil {
		return m.lockError
	}
	m.Locked = true
	return nil
}

func (m *LockerMock) Unlock(_ context.Context) error {
	m.Unlocks++
	m.Locked = false
	return m.unlockError
}
