package scheduler

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	service     *Service
	serviceOnce sync.Once
	serviceErr  error
)

var (
	ErrNotInitialized = errors.New("scheduler not initialized")
	ErrEmptyJobName   = errors.New("job name is required")
	ErrEmptyCronExpr  = errors.New("cron expression is required")
)

// JobRun is the last known outcome of a maintenance job.
type JobRun struct {
	Name         string        `json:"name"`
	Cron         string        `json:"cron"`
	Runs         int           `json:"runs"`
	LastStarted  *time.Time    `json:"lastStarted,omitempty"`
	LastDuration time.Duration `json:"lastDurationNs"`
	Running      bool          `json:"running"`
	LastPanic    string        `json:"lastPanic,omitempty"`
	NextRun      *time.Time    `json:"nextRun,omitempty"`
}

// Service runs the maintenance jobs and remembers how each one last went.
type Service struct {
	scheduler gocron.Scheduler
	stopOnce  sync.Once
	stopErr   error

	mu   sync.Mutex
	runs map[string]*JobRun
	jobs map[string]gocron.Job
}

func newService() (*Service, error) {
	s := &Service{runs: make(map[string]*JobRun), jobs: make(map[string]gocron.Job)}
	sched, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
		gocron.WithGlobalJobOptions(
			gocron.WithEventListeners(
				gocron.AfterJobRunsWithPanic(func(jobID uuid.UUID, jobName string, recoverData any) {
					log.Error().
						Str("job_id", jobID.String()).
						Str("job_name", jobName).
						Interface("panic", recoverData).
						Msg("Maintenance job panicked")
					s.recordPanic(jobName, recoverData)
				}),
			),
		),
	)
	if err != nil {
		return nil, err
	}
	s.scheduler = sched
	return s, nil
}

// Init creates the process-wide scheduler. Later calls return the first result.
func Init() error {
	serviceOnce.Do(func() {
		service, serviceErr = newService()
		if serviceErr == nil {
			log.Info().Msg("Scheduler initialized")
		}
	})
	return serviceErr
}

func ServiceInstance() (*Service, error) {
	if service == nil && serviceErr == nil {
		return nil, ErrNotInitialized
	}
	return service, serviceErr
}

func Start() error {
	svc, err := ServiceInstance()
	if err != nil {
		return err
	}
	svc.Start()
	return nil
}

func Stop() error {
	svc, err := ServiceInstance()
	if err != nil {
		return err
	}
	return svc.Stop()
}

func AddJob(name, cronExpr string, task func(), opts ...gocron.JobOption) (gocron.Job, error) {
	svc, err := ServiceInstance()
	if err != nil {
		return nil, err
	}
	return svc.AddJob(name, cronExpr, task, opts...)
}

// Status lists the registered jobs of the process-wide scheduler.
func Status() ([]JobRun, error) {
	svc, err := ServiceInstance()
	if err != nil {
		return nil, err
	}
	return svc.Status(), nil
}

func (s *Service) Start() {
	if s == nil {
		log.Error().Msg("Scheduler start requested before initialization")
		return
	}
	log.Info().Int("jobs", len(s.scheduler.Jobs())).Msg("Scheduler starting")
	s.scheduler.Start()
}

// Stop waits for running jobs and is safe to call more than once.
func (s *Service) Stop() error {
	if s == nil {
		return ErrNotInitialized
	}
	s.stopOnce.Do(func() {
		log.Info().Msg("Scheduler stopping")
		s.stopErr = s.scheduler.Shutdown()
	})
	return s.stopErr
}

// AddJob registers a cron job evaluated in UTC. A run that is still going
// when the next tick fires is rescheduled rather than doubled up.
func (s *Service) AddJob(name, cronExpr string, task func(), opts ...gocron.JobOption) (gocron.Job, error) {
	if s == nil {
		return nil, ErrNotInitialized
	}
	name = strings.TrimSpace(name)
	cronExpr = strings.TrimSpace(cronExpr)
	if name == "" {
		return nil, ErrEmptyJobName
	}
	if cronExpr == "" {
		return nil, ErrEmptyCronExpr
	}
	jobLogger := log.With().Str("component", "scheduler").Str("job_name", name).Str("cron", cronExpr).Logger()

	tracked := func() {
		started := s.begin(name)
		jobLogger.Debug().Msg("Maintenance job started")
		defer func() {
			elapsed := s.finish(name, started)
			jobLogger.Debug().Dur("elapsed", elapsed).Msg("Maintenance job finished")
		}()
		task()
	}

	jobOpts := append([]gocron.JobOption{
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	}, opts...)
	job, err := s.scheduler.NewJob(gocron.CronJob(cronExpr, false), gocron.NewTask(tracked), jobOpts...)
	if err != nil {
		jobLogger.Error().Err(err).Msg("Failed to register maintenance job")
		return nil, err
	}

	s.mu.Lock()
	s.runs[name] = &JobRun{Name: name, Cron: cronExpr}
	s.jobs[name] = job
	s.mu.Unlock()

	jobLogger.Info().Msg("Maintenance job registered")
	return job, nil
}

func (s *Service) begin(name string) time.Time {
	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	if run := s.runs[name]; run != nil {
		run.Runs++
		run.Running = true
		run.LastStarted = &now
		run.LastPanic = ""
	}
	return now
}

func (s *Service) finish(name string, started time.Time) time.Duration {
	elapsed := time.Since(started)
	s.mu.Lock()
	defer s.mu.Unlock()
	if run := s.runs[name]; run != nil {
		run.Running = false
		run.LastDuration = elapsed
	}
	return elapsed
}

func (s *Service) recordPanic(name string, recoverData any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run := s.runs[name]; run != nil {
		run.Running = false
		run.LastPanic = strings.TrimSpace(fmtPanic(recoverData))
	}
}

// Status returns a snapshot of every registered job, sorted by name.
func (s *Service) Status() []JobRun {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobRun, 0, len(s.runs))
	for name, run := range s.runs {
		snapshot := *run
		if job := s.jobs[name]; job != nil {
			if next, err := job.NextRun(); err == nil && !next.IsZero() {
				next = next.UTC()
				snapshot.NextRun = &next
			}
		}
		out = append(out, snapshot)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func fmtPanic(recoverData any) string {
	if err, ok := recoverData.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(recoverData)
}
