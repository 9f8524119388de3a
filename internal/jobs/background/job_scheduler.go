package background

import (
	"context"
	"fmt"
	"sync"
	"time"

	"notesaas/internal/logger"
	"notesaas/internal/models"
	"notesaas/internal/repositories"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

const quotaReconcileJob = "quota-reconcile"

// JobScheduler runs the periodic maintenance jobs.
type JobScheduler struct {
	scheduler  gocron.Scheduler
	tenantRepo repositories.TenantRepository
	interval   time.Duration
	jobs       map[string]gocron.Job
	mu         sync.RWMutex
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler(tenantRepo repositories.TenantRepository, quotaInterval time.Duration) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	js := &JobScheduler{
		scheduler:  scheduler,
		tenantRepo: tenantRepo,
		interval:   quotaInterval,
		jobs:       make(map[string]gocron.Job),
	}

	if err := js.registerJobs(); err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	logger.Info("starting background job scheduler", zap.Int("jobs", len(js.jobs)))
	js.scheduler.Start()
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	logger.Info("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() error {
	job, err := js.scheduler.NewJob(
		gocron.DurationJob(js.interval),
		gocron.NewTask(js.runQuotaReconcile),
		gocron.WithName(quotaReconcileJob),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("create %s job: %w", quotaReconcileJob, err)
	}

	js.mu.Lock()
	js.jobs[quotaReconcileJob] = job
	js.mu.Unlock()
	return nil
}

// JobNames lists the registered jobs.
func (js *JobScheduler) JobNames() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()
	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	return names
}

func (js *JobScheduler) runQuotaReconcile() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	over, err := ReconcileQuotas(ctx, js.tenantRepo)
	if err != nil {
		logger.Error("quota reconciliation failed", zap.Error(err))
		return
	}
	for _, usage := range over {
		logger.Warn("tenant over note quota",
			zap.String("tenant_id", usage.Tenant.ID.String()),
			zap.String("slug", usage.Tenant.Slug),
			zap.Int("active_notes", usage.ActiveNotes),
			zap.Int("limit", usage.Tenant.NoteLimit))
	}
}

// ReconcileQuotas returns the free tenants whose active note count exceeds
// their limit. Concurrent creations can overshoot the soft quota; this only
// reports them and changes nothing.
func ReconcileQuotas(ctx context.Context, tenantRepo repositories.TenantRepository) ([]models.TenantUsage, error) {
	usages, err := tenantRepo.ListUsage(ctx, models.SubscriptionFree)
	if err != nil {
		return nil, err
	}

	var over []models.TenantUsage
	for _, usage := range usages {
		if usage.Tenant.NoteLimit != models.UnlimitedNotes && usage.ActiveNotes > usage.Tenant.NoteLimit {
			over = append(over, usage)
		}
	}
	return over, nil
}
