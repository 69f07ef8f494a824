package mocks

import (
	"context"
	"time"

	"marketplace-leads/internal/leads"
)

type FetcherMock struct {
	leads   []leads.Lead
	skipped int
	err     error
	Cutoff  time.Time
}

func NewFetcherMock(found []leads.Lead, skipped int, err error) *FetcherMock {
	return &FetcherMock{leads: found, skipped: skipped, err: err}
}

func (m *FetcherMock) FetchSince(_ context.Context, cutoff time.Time) ([]leads.Lead, int, error) {
	m.Cutoff = cutoff
	if m.err != nil {
		return nil, 0, m.err
	}
	return m.leads, m.skipped, nil
}

// NotifierMock fails the leads listed in errors and records every attempt.
type NotifierMock struct {
	errors   map[string]error
	Notified []string
}

func NewNotifierMock(errors map[string]error) *NotifierMock {
	return &NotifierMock{errors: errors}
}

func (m *NotifierMock) Notify(_ context.Context, lead leads.Lead) error {
	m.Notified = append(m.Notified, lead.RowKey)
	return m.errors[lead.RowKey]
}
