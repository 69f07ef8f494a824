package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/ses"

	"marketplace-leads/internal/awsutils"
	"marketplace-leads/internal/email"
	"marketplace-leads/internal/healthcheck"
	"marketplace-leads/internal/leads"
	"marketplace-leads/internal/locker"
	"marketplace-leads/internal/metrics"
	"marketplace-leads/internal/notifier"
	"marketplace-leads/internal/pipeline"
	"marketplace-leads/internal/smtp"
	"marketplace-leads/internal/watermark"
)

const providerSmtp = "smtp"

type pipelineProcessor interface {
	Process(ctx context.Context) error
}

type server interface {
	ListenAndServe(ctx context.Context) error
}

type App struct {
	pipe     pipelineProcessor
	server   server
	interval time.Duration
	logger   *slog.Logger
}

type configProvider interface {
	GetAwsConfig() aws.Config
	GetJobName() string
	GetLeadsTable() string
	GetWatermarkTable() string
	GetEmailProvider() string
	GetNotifierConfig() notifier.Config
	GetSmtpConfig() smtp.Config
	GetLockConfig() locker.Config
	GetPipelineInterval() int
	GetHealthCheckServerPort() int
}

func New(cp configProvider) (*App, error) {
	awsConfig := cp.GetAwsConfig()
	db := dynamodb.NewFromConfig(awsConfig)

	var sender email.Sender
	if cp.GetEmailProvider() == providerSmtp {
		sender = smtp.New(cp.GetSmtpConfig())
	} else {
		sender = awsutils.NewSesEmailClient(ses.NewFromConfig(awsConfig))
	}

	runLock, err := locker.New(cp.GetLockConfig(), cp.GetJobName())
	if err != nil {
		return nil, fmt.Errorf("failed to create run lock: %w", err)
	}

	m := metrics.New()
	pipe := pipeline.NewLeadPipeline(
		cp.GetJobName(),
		watermark.NewStore(db, cp.GetWatermarkTable()),
		leads.NewFetcher(db, cp.GetLeadsTable()),
		notifier.New(cp.GetNotifierConfig(), sender),
		runLock,
		m,
	)

	interval := time.Duration(cp.GetPipelineInterval()) * time.Second

	var srv server
	if interval > 0 {
		srv = healthcheck.NewServer(cp.GetHealthCheckServerPort(), m.Handler())
	}

	return &App{pipe: pipe, server: srv, interval: interval, logger: slog.With("pipe", "app")}, nil
}

// Run executes a single pass when no interval is configured; otherwise it
// repeats passes until ctx is done and serves the health-check meanwhile.
func (a *App) Run(ctx context.Context) error {
	if a.interval <= 0 {
		return a.pipe.Process(ctx)
	}

	var wg sync.WaitGroup

	if a.server != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.server.ListenAndServe(ctx); err != nil {
				a.logger.Error(err.Error())
			}
		}()
	}

	a.runPipelineUntilContextIsDone(ctx)

	wg.Wait()
	return nil
}

func (a *App) runPipelineUntilContextIsDone(ctx context.Context) {
	for {
		if err := a.pipe.Process(ctx); err != nil {
			a.logger.Error(fmt.Sprintf("run failed: %v", err))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(a.interval):
		}
	}
}
