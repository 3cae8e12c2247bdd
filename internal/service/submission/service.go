package submission

import (
	"context"
	"sync"
	"time"

	"github.com/Domenick1991/civicbook/internal/domain"
	"github.com/Domenick1991/civicbook/internal/logger"
	"github.com/Domenick1991/civicbook/internal/pricing"
	"github.com/Domenick1991/civicbook/internal/validation"
	"github.com/Domenick1991/civicbook/internal/workflow"
	"github.com/google/uuid"
)

type UseCase interface {
	Submit(ctx context.Context, input Input) (*domain.Record, error)
	Quote(ctx context.Context, input Input) (*pricing.Quote, error)
	Advance(ctx context.Context, category domain.Category, id uuid.UUID) (*domain.Record, error)
	Cancel(ctx context.Context, category domain.Category, id uuid.UUID) (*domain.Record, error)
	List(ctx context.Context, category domain.Category) ([]domain.Record, error)
	FindByReference(ctx context.Context, reference string) ([]domain.Record, error)
}

type Store interface {
	Load(ctx context.Context, key string) ([]domain.Record, error)
	Save(ctx context.Context, key string, records []domain.Record) error
}

type Locker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	ReleaseLock(ctx context.Context, key, token string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value any) error
}

type Resources interface {
	Resource(id string) (domain.Resource, bool)
}

type References interface {
	Generate(prefix string) (string, error)
	NewID() (uuid.UUID, error)
}

// Policy is the per-category configuration the service runs on.
type Policy struct {
	Workflows *workflow.Table
	Tariffs   map[domain.Category]pricing.Tariff
	Prefixes  map[domain.Category]string
}

// Input is one citizen request as collected by a form.
type Input struct {
	Category domain.Category `json:"category"`
	Contact  domain.Contact  `json:"contact"`
	Details  domain.Details  `json:"details"`
}

type Service struct {
	store     Store
	locker    Locker
	producer  Producer
	resources Resources
	policy    Policy
	refs      References
	validator *validation.RequestValidator
	log       *logger.Logger

	// mu serializes list mutations when no Locker is configured.
	mu sync.Mutex

	now            func() time.Time
	keyPrefix      string
	historyLimit   int
	lockTTL        time.Duration
	lockRetries    int
	lockRetryDelay time.Duration
	eventsTopic    string
}

type ServiceOption func(*Service)

func WithLocker(locker Locker) ServiceOption {
	return func(s *Service) {
		s.locker = locker
	}
}

// WithProducer enables lifecycle events on topic.
func WithProducer(producer Producer, topic string) ServiceOption {
	return func(s *Service) {
		s.producer = producer
		s.eventsTopic = topic
	}
}

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

func WithKeyPrefix(prefix string) ServiceOption {
	return func(s *Service) {
		s.keyPrefix = prefix
	}
}

// WithHistoryLimit caps each category list. Zero keeps everything.
func WithHistoryLimit(limit int) ServiceOption {
	return func(s *Service) {
		s.historyLimit = limit
	}
}

func WithLockPolicy(ttl time.Duration, retries int, delay time.Duration) ServiceOption {
	return func(s *Service) {
		s.lockTTL = ttl
		s.lockRetries = retries
		s.lockRetryDelay = delay
	}
}

func NewService(
	store Store,
	resources Resources,
	policy Policy,
	refs References,
	validator *validation.RequestValidator,
	log *logger.Logger,
	opts ...ServiceOption,
) *Service {
	service := &Service{
		store:          store,
		resources:      resources,
		policy:         policy,
		refs:           refs,
		validator:      validator,
		log:            log,
		now:            time.Now,
		lockTTL:        5 * time.Second,
		lockRetries:    3,
		lockRetryDelay: 50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(service)
	}
	if service.lockRetries < 1 {
		service.lockRetries = 1
	}
	return service
}

var _ UseCase = (*Service)(nil)
