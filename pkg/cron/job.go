package cron

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Job runs a function on a cron schedule with seconds precision. A tick that
// fires while the previous run is still in progress is skipped.
type Job struct {
	name      string
	schedule  string
	fn        func() error
	cron      *cron.Cron
	cronEntry cron.EntryID
	log       *logrus.Entry

	mutex     sync.RWMutex
	isRunning bool
	lastRun   time.Time
	lastErr   error
}

// NewJob validates the schedule and registers fn. Nothing runs until Start.
func NewJob(name, schedule string, fn func() error, log *logrus.Entry) (*Job, error) {
	job := &Job{
		name:     name,
		schedule: schedule,
		fn:       fn,
		cron:     cron.New(cron.WithSeconds()),
		log:      log.WithField("job", name),
	}

	entryID, err := job.cron.AddFunc(schedule, job.Run)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid schedule %q for job %s", schedule, name)
	}
	job.cronEntry = entryID
	return job, nil
}

// Start starts the scheduler, running the job once right away when runNow is set
func (j *Job) Start(runNow bool) {
	j.cron.Start()
	j.log.WithField("schedule", j.schedule).Info("Scheduled job")
	if runNow {
		go j.Run()
	}
}

// Run executes the job now unless a run is already in progress
func (j *Job) Run() {
	j.mutex.Lock()
	if j.isRunning {
		j.mutex.Unlock()
		j.log.Debug("Job already in progress, skipping")
		return
	}
	j.isRunning = true
	j.mutex.Unlock()

	err := j.fn()

	j.mutex.Lock()
	j.isRunning = false
	j.lastRun = time.Now()
	j.lastErr = err
	j.mutex.Unlock()

	if err != nil {
		j.log.WithError(err).Warn("Job failed")
	}
}

// Stop stops the scheduler and waits for a running job to finish
func (j *Job) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
	j.log.Debug("Job stopped")
}

// NextRun returns the next scheduled run time, or zero when not started
func (j *Job) NextRun() time.Time {
	return j.cron.Entry(j.cronEntry).Next
}

// IsRunning returns whether a run is currently in progress
func (j *Job) IsRunning() bool {
	j.mutex.RLock()
	defer j.mutex.RUnlock()
	return j.isRunning
}

// LastRun returns when the job last finished and its error
func (j *Job) LastRun() (time.Time, error) {
	j.mutex.RLock()
	defer j.mutex.RUnlock()
	return j.lastRun, j.lastErr
}

func (j *Job) Schedule() string {
	return j.schedule
}

func (j *Job) Name() string {
	return j.name
}
