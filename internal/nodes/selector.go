// Package nodes выбирает целевой index node для deployment.
package nodes

import (
	"errors"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/shaiso/Subgraphd/internal/domain"
)

// ErrEmptyPool — пул узлов пуст и явный узел не указан.
// Это ошибка конфигурации: корректной цели не существует.
var ErrEmptyPool = errors.New("index node pool is empty")

// Selector выбирает узел из сконфигурированного пула
// или проверяет явно запрошенный.
type Selector struct {
	pool   []domain.NodeID
	logger *slog.Logger

	// rand.Rand не потокобезопасен, а Selector разделяется между воркерами.
	mu  sync.Mutex
	rnd *rand.Rand
}

// Config — конфигурация Selector.
type Config struct {
	// Pool — допустимые узлы.
	Pool []string

	// Source — источник случайности (опционально; для детерминированных тестов).
	Source rand.Source

	// Logger
	Logger *slog.Logger
}

// NewSelector создаёт новый Selector.
func NewSelector(cfg Config) *Selector {
	src := cfg.Source
	if src == nil {
		now := uint64(time.Now().UnixNano())
		src = rand.NewPCG(now, now>>1)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	pool := make([]domain.NodeID, 0, len(cfg.Pool))
	for _, n := range cfg.Pool {
		pool = append(pool, domain.NodeID(n))
	}

	return &Selector{
		pool:   pool,
		logger: logger,
		rnd:    rand.New(src),
	}
}

// Select возвращает целевой узел.
//
// Явный узел возвращается как есть. Если его нет в пуле — пишется
// предупреждение: вызывающий может намеренно нацеливаться на узел вне пула
// (например, при миграции). Без явного узла выбирается равновероятно
// случайный узел пула.
func (s *Selector) Select(explicit domain.NodeID) (domain.NodeID, error) {
	if !explicit.IsZero() {
		if !s.Contains(explicit) {
			s.logger.Warn("requested node is not in the configured pool",
				"node", explicit,
				"pool", s.pool,
			)
		}
		return explicit, nil
	}

	if len(s.pool) == 0 {
		return "", ErrEmptyPool
	}

	s.mu.Lock()
	i := s.rnd.IntN(len(s.pool))
	s.mu.Unlock()

	return s.pool[i], nil
}

// Contains проверяет, входит ли узел в пул.
func (s *Selector) Contains(node domain.NodeID) bool {
	return slices.Contains(s.pool, node)
}

// Pool возвращает копию пула.
func (s *Selector) Pool() []domain.NodeID {
	return slices.Clone(s.pool)
}
