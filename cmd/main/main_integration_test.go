//go:build integration

package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-leads/internal/storetime"
	"marketplace-leads/internal/testutils/facades"
)

const (
	leadsTable     = "MarketplaceLeads"
	watermarkTable = "LastExecutions"
	jobName        = "IntegrationCheckTableForLeads"
)

func TestMainComplete(t *testing.T) {
	t.Setenv("JOB_NAME", jobName)
	t.Setenv("LEADS_TABLE", leadsTable)
	t.Setenv("WATERMARK_TABLE", watermarkTable)
	t.Setenv("EMAIL_PROVIDER", "smtp")
	t.Setenv("SENDER_EMAIL", "leads@example.com")
	t.Setenv("RECIPIENT_EMAIL", "sales@example.com")
	t.Setenv("SMTP_HOST", "127.0.0.1")
	t.Setenv("SMTP_USER", "user")
	t.Setenv("SMTP_PASS", "pass")
	t.Setenv("SMTP_PORT", "1025")
	t.Setenv("SMTP_ALLOW_INSECURE_TLS", "true")
	t.Setenv("PIPELINE_INTERVAL", "0")
	t.Setenv("LOCK_DRIVER", "fs")
	t.Setenv("LOCK_PATH", t.TempDir()+"/leads.lock")

	lFacade := facades.NewLeadsFacade(leadsTable, watermarkTable)

	previous := time.Now().UTC().Add(-time.Hour).Truncate(time.Millisecond)
	require.NoError(t, lFacade.PutWatermark(context.TODO(), jobName, storetime.Format(previous)))

	fixtures := make([]string, 0)
	for i := 0; i < 3; i++ {
		rowKey, err := lFacade.AddLead(context.TODO(), "Integration Offer", previous.Add(time.Duration(i+1)*time.Minute))
		require.NoError(t, err)
		fixtures = append(fixtures, rowKey)
	}

	started := time.Now().UTC().Truncate(time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	run(ctx)

	stored, err := lFacade.GetWatermark(context.TODO(), jobName)
	require.NoError(t, err)

	advanced, err := storetime.Parse(stored)
	require.NoError(t, err)
	assert.False(t, advanced.Before(started), "watermark %s should not precede %s", stored, storetime.Format(started))

	for _, value := range fixtures {
		if errFix := lFacade.DeleteLead(context.Background(), value); errFix != nil {
			t.Errorf("error while deleting fixture %s, error: %v", value, errFix)
		}
	}
	if errFix := lFacade.DeleteWatermark(context.Background(), jobName); errFix != nil {
		t.Errorf("error while deleting watermark of %s, error: %v", jobName, errFix)
	}
}
