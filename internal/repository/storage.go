package repository

import (
	"errors"
	"sync"

	models "github.com/RoGogDBD/social-pulse/internal/model"
)

// ErrNoSnapshot возвращается, если ни одного снимка ещё не сохранено.
var ErrNoSnapshot = errors.New("no snapshot available")

// Storage определяет интерфейс модели чтения: последний снимок сессии.
//
// Запись выполняется симулятором после каждого тика, чтение — HTTP-обработчиками.
type Storage interface {
	// Save заменяет последний снимок.
	Save(snapshot models.Snapshot)
	// Latest возвращает последний снимок и флаг наличия.
	Latest() (models.Snapshot, bool)
	// Metric возвращает снимок метрики по имени и флаг наличия.
	Metric(name string) (models.MetricSnapshot, bool)
	// Names возвращает имена метрик в порядке снимка.
	Names() []string
}

// MemStorage реализует интерфейс Storage на основе памяти.
//
// Снимок заменяется целиком под мьютексом, поэтому читатель всегда видит
// результат одного полного тика.
type MemStorage struct {
	snapshot models.Snapshot // Последний снимок
	has      bool            // Был ли сохранён хотя бы один снимок
	mu       sync.RWMutex    // Мьютекс для конкурентного доступа
}

// NewMemStorage создаёт и возвращает новый экземпляр MemStorage.
func NewMemStorage() *MemStorage {
	return &MemStorage{}
}

// Save заменяет последний снимок.
//
// snapshot — снимок, сформированный симулятором; хранилище не копирует его,
// поэтому вызывающий не должен изменять снимок после сохранения.
func (s *MemStorage) Save(snapshot models.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snapshot
	s.has = true
}

// OnSnapshot позволяет подключить хранилище как наблюдателя тиков.
func (s *MemStorage) OnSnapshot(snapshot models.Snapshot) error {
	s.Save(snapshot)
	return nil
}

// Latest возвращает последний снимок и флаг наличия.
func (s *MemStorage) Latest() (models.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, s.has
}

// Metric возвращает снимок метрики по имени и флаг наличия.
//
// name — имя метрики.
func (s *MemStorage) Metric(name string) (models.MetricSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.has {
		return models.MetricSnapshot{}, false
	}
	return s.snapshot.Metric(name)
}

// Names возвращает имена метрик в порядке снимка.
func (s *MemStorage) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.snapshot.Metrics))
	for _, m := range s.snapshot.Metrics {
		names = append(names, m.Name)
	}
	return names
}
