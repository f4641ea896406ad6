package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a unit of background work with a stable name.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler runs registered jobs on cron schedules.
type Scheduler struct {
	cron    *cron.Cron
	jobs    map[string]Job
	running bool
}

func New() *Scheduler {
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(cron.DefaultLogger)),
		),
		jobs: make(map[string]Job),
	}
}

// AddJob registers a job under the given cron spec (with seconds field).
func (s *Scheduler) AddJob(spec string, job Job) error {
	name := job.Name()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("register job %s: already registered", name)
	}

	_, err := s.cron.AddFunc(spec, func() {
		log.Printf("[Scheduler] job %s starting", name)
		start := time.Now()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		if err := job.Run(ctx); err != nil {
			log.Printf("[Scheduler] job %s failed: %v", name, err)
			return
		}
		log.Printf("[Scheduler] job %s finished in %s", name, time.Since(start))
	})
	if err != nil {
		return fmt.Errorf("register job %s: %w", name, err)
	}

	s.jobs[name] = job
	return nil
}

func (s *Scheduler) Start() {
	if s.running {
		return
	}
	s.cron.Start()
	s.running = true
	log.Println("[Scheduler] started")
}

// Stop halts scheduling and waits for in-flight jobs to finish.
func (s *Scheduler) Stop() {
	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	log.Println("[Scheduler] stopped")
}

// RunNow executes a registered job immediately, outside its schedule.
func (s *Scheduler) RunNow(name string) error {
	job, exists := s.jobs[name]
	if !exists {
		return fmt.Errorf("run job %s: not registered", name)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()
	return job.Run(ctx)
}
