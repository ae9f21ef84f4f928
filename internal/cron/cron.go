package cron

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/caarlos0/env/v6"
	cronv3 "github.com/robfig/cron/v3"

	"github.com/testlify/tenderstack/config"
	"github.com/testlify/tenderstack/interfaces"
	cron_config "github.com/testlify/tenderstack/internal/cron/config"
	"github.com/testlify/tenderstack/internal/logger"
	"github.com/testlify/tenderstack/internal/models"
	"github.com/testlify/tenderstack/internal/tracing"
	"github.com/testlify/tenderstack/services/filter"
)

// GroupTenderstack serializes jobs that touch the tender pipeline: the filter
// cycle and the log purge never overlap each other.
const GroupTenderstack = "tenderstack"

var jobLocks = struct {
	sync.Mutex
	locks map[string]*sync.Mutex
}{
	locks: map[string]*sync.Mutex{
		GroupTenderstack: new(sync.Mutex),
	},
}

type CronManager struct {
	cfg           *config.Config
	log           logger.Logger
	cron          *cronv3.Cron
	stopCh        chan struct{}
	jobIDs        map[string]cronv3.EntryID
	filterService *filter.Service
	logRepo       interfaces.LogRepository
}

func NewCronManager(cfg *config.Config, log logger.Logger, filterService *filter.Service, logRepo interfaces.LogRepository) *CronManager {
	return &CronManager{
		cfg:           cfg,
		log:           log,
		stopCh:        make(chan struct{}),
		jobIDs:        make(map[string]cronv3.EntryID),
		filterService: filterService,
		logRepo:       logRepo,
	}
}

// Start initializes and starts the cron scheduler.
func (cm *CronManager) Start() {
	cm.log.Info("Starting cron manager")
	cronOptions := []cronv3.Option{
		cronv3.WithSeconds(),
		cronv3.WithChain(
			cronv3.SkipIfStillRunning(cronv3.DefaultLogger),
			cronv3.Recover(cronv3.DefaultLogger),
		),
	}
	c := cronv3.New(cronOptions...)
	cm.registerJobs(c)
	c.Start()
	cm.cron = c
}

// Stop gracefully stops the cron manager, waiting for running jobs to finish.
func (cm *CronManager) Stop() {
	if cm.cron != nil {
		cm.log.Info("Stopping cron manager")
		ctx := cm.cron.Stop()
		<-ctx.Done()
	}
	close(cm.stopCh)
}

func (cm *CronManager) registerJobs(c *cronv3.Cron) {
	var cronConfig cron_config.Config
	if err := env.Parse(&cronConfig); err != nil {
		cm.log.Fatalf("Failed to parse cron config from environment: %v", err)
	}

	if cronConfig.CronScheduleHeartbeat != "" {
		podName := os.Getenv("POD_NAME")
		if podName == "" {
			podName = "local"
		}
		id, err := c.AddFunc(cronConfig.CronScheduleHeartbeat, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			cm.log.Infof("Cron heartbeat from pod: %s", podName)
		})
		if err != nil {
			cm.log.Fatalf("Could not add heartbeat cron job: %v", err)
		}
		cm.jobIDs["heartbeat"] = id
		cm.log.Infof("Registered heartbeat job with schedule: %s", cronConfig.CronScheduleHeartbeat)
	}

	if cronConfig.CronScheduleFilterExport != "" {
		id, err := c.AddFunc(cronConfig.CronScheduleFilterExport, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			jobLocks.locks[GroupTenderstack].Lock()
			defer jobLocks.locks[GroupTenderstack].Unlock()
			cm.runFilterExport()
		})
		if err != nil {
			cm.log.Fatalf("Could not add filter export cron job: %v", err)
		}
		cm.jobIDs["filter_export"] = id
		cm.log.Infof("Registered filter export job with schedule: %s", cronConfig.CronScheduleFilterExport)
	}

	if cronConfig.CronScheduleLogPurge != "" {
		id, err := c.AddFunc(cronConfig.CronScheduleLogPurge, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			jobLocks.locks[GroupTenderstack].Lock()
			defer jobLocks.locks[GroupTenderstack].Unlock()
			cm.purgeProcessingLogs()
		})
		if err != nil {
			cm.log.Fatalf("Could not add log purge cron job: %v", err)
		}
		cm.jobIDs["log_purge"] = id
		cm.log.Infof("Registered log purge job with schedule: %s", cronConfig.CronScheduleLogPurge)
	}
}

func (cm *CronManager) runFilterExport() {
	ctx := context.Background()

	span, ctx := tracing.StartTracerSpan(ctx, "CronManager.runFilterExport")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	result, err := cm.filterService.RunFilterCycle(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		cm.log.Errorf("Scheduled filter cycle failed: %v", err)
		return
	}

	cm.log.Infof("Scheduled filter cycle done: %d selected of %d candidates", result.Selected, result.Candidates)
}

func (cm *CronManager) purgeProcessingLogs() {
	ctx := context.Background()

	span, ctx := tracing.StartTracerSpan(ctx, "CronManager.purgeProcessingLogs")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	cutoff := time.Now().Add(-models.LogRetention)
	deleted, err := cm.logRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		tracing.TraceErr(span, err)
		cm.log.Errorf("Failed to purge processing logs: %v", err)
		return
	}

	cm.log.Infof("Purged %d processing logs older than %s", deleted, cutoff.Format(time.RFC3339))
}
