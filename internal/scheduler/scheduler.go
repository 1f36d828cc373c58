// Package scheduler запускает фоновые задачи сервиса по cron-расписанию поверх gocron.
package scheduler

import (
	"errors"
	"strings"
	"sync"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

var (
	ErrEmptyJobName  = errors.New("job name is required")
	ErrEmptyCronExpr = errors.New("cron expression is required")
)

// Logger интерфейс для логирования
type Logger interface {
	Debug(format string, v ...interface{})
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Service обертка над gocron.Scheduler
type Service struct {
	scheduler gocron.Scheduler
	logger    Logger
	stopOnce  sync.Once
	stopErr   error
}

// New создает планировщик; паника в задаче логируется и не роняет процесс
func New(logger Logger) (*Service, error) {
	sched, err := gocron.NewScheduler(
		gocron.WithGlobalJobOptions(
			gocron.WithEventListeners(
				gocron.AfterJobRunsWithPanic(func(jobID uuid.UUID, jobName string, recoverData any) {
					logger.Error("Scheduler job panicked: job_id=%s, job_name=%s, panic=%v", jobID, jobName, recoverData)
				}),
			),
		),
	)
	if err != nil {
		return nil, err
	}
	logger.Info("Scheduler initialized")
	return &Service{scheduler: sched, logger: logger}, nil
}

// Start запускает зарегистрированные задачи
func (s *Service) Start() {
	s.logger.Info("Scheduler starting")
	s.scheduler.Start()
}

// Stop останавливает планировщик и ждет завершения текущих запусков
func (s *Service) Stop() error {
	s.stopOnce.Do(func() {
		s.logger.Info("Scheduler stopping")
		s.stopErr = s.scheduler.Shutdown()
	})
	return s.stopErr
}

// AddJob регистрирует задачу по cron-выражению.
// Следующий запуск пропускается, пока предыдущий не завершился.
func (s *Service) AddJob(name, cronExpr string, task func()) (gocron.Job, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyJobName
	}
	if strings.TrimSpace(cronExpr) == "" {
		return nil, ErrEmptyCronExpr
	}

	s.logger.Info("Registering scheduler job: name=%s, cron=%s", name, cronExpr)

	wrappedTask := func() {
		s.logger.Debug("Scheduler job started: name=%s", name)
		task()
		s.logger.Debug("Scheduler job completed: name=%s", name)
	}

	job, err := s.scheduler.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(wrappedTask),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		s.logger.Error("Failed to register scheduler job name=%s: %v", name, err)
		return nil, err
	}
	return job, nil
}
