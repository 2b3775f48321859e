package seed

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/crudstrategy/core"
	"github.com/poiesic/crudstrategy/storage"
)

// Seeder bulk-creates records of one kind from a stream of full names.
// Creates run on a worker pool, so records land in completion order rather
// than source order.
type Seeder[T core.Record] struct {
	store  storage.Store[T]
	kind   core.Kind[T]
	pool   *ants.Pool
	logger *slog.Logger
}

type settings struct {
	poolSize int
	logger   *slog.Logger
}

// Option configures a Seeder.
type Option func(*settings)

// WithPoolSize sets the number of concurrent creates.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(s *settings) {
		s.poolSize = size
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a seeder writing to store. The store must be safe for
// concurrent use; wrap plain backends with storage.Locked.
func New[T core.Record](store storage.Store[T], kind core.Kind[T], opts ...Option) (*Seeder[T], error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	s := &settings{
		poolSize: runtime.NumCPU() / 2,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.poolSize < 1 {
		s.poolSize = 1
	}

	pool, err := ants.NewPool(s.poolSize)
	if err != nil {
		return nil, fmt.Errorf("error creating worker pool: %w", err)
	}

	return &Seeder[T]{
		store:  store,
		kind:   kind,
		pool:   pool,
		logger: s.logger,
	}, nil
}

// Seed creates one record with a fresh id for every name in names. Names are
// trimmed and blank ones skipped. Seed waits for every submitted create and
// returns how many succeeded along with the joined errors of those that did
// not. It stops reading names once ctx is cancelled.
func (s *Seeder[T]) Seed(ctx context.Context, names iter.Seq[string]) (int, error) {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		errs    []error
	)
	fail := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	for name := range names {
		if err := ctx.Err(); err != nil {
			fail(err)
			break
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		item := s.kind.New(uuid.New(), name)
		if err := core.ValidateRecord(item); err != nil {
			fail(fmt.Errorf("%s %q: %w", s.kind.Name, name, err))
			continue
		}

		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			if err := s.store.Create(ctx, item); err != nil {
				s.logger.Error("error creating record", "kind", s.kind.Name, "id", item.RecordID(), "err", err)
				fail(fmt.Errorf("%s %s: %w", s.kind.Name, item.RecordID(), err))
				return
			}
			mu.Lock()
			created++
			mu.Unlock()
		})
		if err != nil {
			wg.Done()
			fail(fmt.Errorf("error submitting create: %w", err))
			break
		}
	}

	wg.Wait()
	s.logger.Info("seeding finished", "kind", s.kind.Name, "created", created, "failed", len(errs))
	return created, errors.Join(errs...)
}

// Release releases the worker pool.
// The seeder should not be used after calling Release.
func (s *Seeder[T]) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}
