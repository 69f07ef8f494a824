package pipeline

import (
	"context"
	"time"

	"marketplace-leads/internal/leads"
)

type watermarkStore interface {
	Read(ctx context.Context, job string) (time.Time, error)
	Write(ctx context.Context, job string) (time.Time, error)
}

type leadFetcher interface {
	FetchSince(ctx context.Context, cutoff time.Time) (found []leads.Lead, skipped int, err error)
}

type leadNotifier interface {
	Notify(ctx context.Context, lead leads.Lead) error
}

type runLocker interface {
	Lock(ctx context.Context) error
	Unlock(ctx context.Context) error
}

type recorder interface {
	Lead(outcome string)
	Run(result string, elapsed time.Duration)
	Watermark(t time.Time)
	CollectMemoryAndCpu() error
}
