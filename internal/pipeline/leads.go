package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"marketplace-leads/internal/leads"
	"marketplace-leads/internal/locker"
	"marketplace-leads/internal/metrics"
	"marketplace-leads/internal/notifier"
	"marketplace-leads/internal/storetime"
)

type LeadPipeline struct {
	job        string
	watermarks watermarkStore
	fetcher    leadFetcher
	notifier   leadNotifier
	locker     runLocker
	metrics    recorder
	logger     *slog.Logger
}

func NewLeadPipeline(job string, watermarks watermarkStore, fetcher leadFetcher, n leadNotifier, lock runLocker, rec recorder) *LeadPipeline {
	return &LeadPipeline{
		job:        job,
		watermarks: watermarks,
		fetcher:    fetcher,
		notifier:   n,
		locker:     lock,
		metrics:    rec,
		logger:     slog.With("pipe", "leads"),
	}
}

// Process runs one polling pass. Failures of a single lead are logged and the
// pass continues; failures to lock, read, fetch or write abort it and leave the
// watermark where it was.
func (p *LeadPipeline) Process(ctx context.Context) error {
	startTime := time.Now()

	if err := p.metrics.CollectMemoryAndCpu(); err != nil {
		p.logger.Warn(err.Error())
	}

	if err := p.locker.Lock(ctx); err != nil {
		if errors.Is(err, locker.ErrNotAcquired) {
			p.logger.Warn(fmt.Sprintf("skipping run of %s: %v", p.job, err))
			p.metrics.Run(metrics.RunSkipped, time.Since(startTime))
			return nil
		}
		p.metrics.Run(metrics.RunFailed, time.Since(startTime))
		return err
	}

	defer func() {
		if uErr := p.locker.Unlock(context.Background()); uErr != nil {
			p.logger.Error(fmt.Sprintf("error releasing run lock: %v", uErr))
		}
	}()

	err := p.run(ctx)

	result := metrics.RunSucceeded
	if err != nil {
		result = metrics.RunFailed
	}
	p.metrics.Run(result, time.Since(startTime))

	if mErr := p.metrics.CollectMemoryAndCpu(); mErr != nil {
		p.logger.Warn(mErr.Error())
	}

	p.logger.Debug(fmt.Sprintf("elapsed time: %.2f seconds", time.Since(startTime).Seconds()))
	return err
}

func (p *LeadPipeline) run(ctx context.Context) error {
	cutoff, err := p.watermarks.Read(ctx, p.job)
	if err != nil {
		return err
	}

	newLeads, skipped, err := p.fetcher.FetchSince(ctx, cutoff)
	if err != nil {
		return err
	}

	for i := 0; i < skipped; i++ {
		p.metrics.Lead(metrics.OutcomeInvalid)
	}

	p.logger.Info(fmt.Sprintf("found %d leads created after %s", len(newLeads), storetime.Format(cutoff)))

	for _, lead := range newLeads {
		p.notify(ctx, lead)
	}

	written, err := p.watermarks.Write(ctx, p.job)
	if err != nil {
		return err
	}

	p.metrics.Watermark(written)
	p.logger.Info(fmt.Sprintf("watermark advanced to %s", storetime.Format(written)))
	return nil
}

func (p *LeadPipeline) notify(ctx context.Context, lead leads.Lead) {
	logger := p.logger.With("lead", lead.RowKey)

	err := p.notifier.Notify(ctx, lead)
	if err == nil {
		logger.Info("email sent")
		p.metrics.Lead(metrics.OutcomeSent)
		return
	}

	var statusErr *notifier.StatusError

	switch {
	case errors.As(err, &statusErr):
		logger.Error(fmt.Sprintf("error sending email, status code: %d", statusErr.StatusCode))
		p.metrics.Lead(metrics.OutcomeRejected)
	case errors.Is(err, leads.ErrMalformedCustomerInfo):
		logger.Error(fmt.Sprintf("skipping lead with malformed customer info: %v", err))
		p.metrics.Lead(metrics.OutcomeInvalid)
	default:
		logger.Error(fmt.Sprintf("failed to send, error: %v", err))
		p.metrics.Lead(metrics.OutcomeFailed)
	}
}
