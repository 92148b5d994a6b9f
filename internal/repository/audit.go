package repository

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	models "github.com/RoGogDBD/social-pulse/internal/model"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// FileAuditObserver дописывает событие каждого тика в файл в формате JSON Lines.
//
// Поля:
//   - filePath: путь к файлу для записи событий
//   - mu: мьютекс для синхронизации доступа к файлу
type FileAuditObserver struct {
	filePath string
	mu       sync.Mutex
}

// NewFileAuditObserver создает новый экземпляр FileAuditObserver.
//
// filePath — путь к файлу аудита. Каталог создаётся при необходимости.
func NewFileAuditObserver(filePath string) (*FileAuditObserver, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}
	return &FileAuditObserver{filePath: filePath}, nil
}

// OnSnapshot записывает событие тика в файл.
func (f *FileAuditObserver) OnSnapshot(snapshot models.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.OpenFile(f.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open audit file: %w", err)
	}
	defer func() { _ = file.Close() }()

	data, err := json.Marshal(models.NewTickEvent(snapshot))
	if err != nil {
		return fmt.Errorf("failed to marshal tick event: %w", err)
	}

	if _, err := file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write tick event: %w", err)
	}
	return nil
}

// HTTPAuditObserver отправляет событие каждого тика на удалённый сервер.
type HTTPAuditObserver struct {
	url    string
	client *resty.Client
}

// NewHTTPAuditObserver создает новый экземпляр HTTPAuditObserver.
//
// url — адрес удалённого сервера.
func NewHTTPAuditObserver(url string) *HTTPAuditObserver {
	return &HTTPAuditObserver{
		url:    url,
		client: resty.New().SetTimeout(5 * time.Second),
	}
}

// OnSnapshot отправляет событие тика на удалённый сервер.
func (h *HTTPAuditObserver) OnSnapshot(snapshot models.Snapshot) error {
	resp, err := h.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(models.NewTickEvent(snapshot)).
		Post(h.url)
	if err != nil {
		return fmt.Errorf("failed to send tick event: %w", err)
	}

	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusCreated {
		return fmt.Errorf("audit server returned status %d", resp.StatusCode())
	}
	return nil
}

// AsyncObserver передаёт снимки вложенному наблюдателю в отдельной горутине.
//
// Порядок снимков сохраняется. Если буфер заполнен, снимок отбрасывается,
// чтобы медленный приёмник не задерживал тики.
type AsyncObserver struct {
	name   string
	next   models.SnapshotObserver
	ch     chan models.Snapshot
	done   chan struct{}
	mu     sync.Mutex
	closed bool
	logger *zap.Logger
}

// NewAsyncObserver запускает рабочую горутину с буфером размера buffer.
func NewAsyncObserver(name string, next models.SnapshotObserver, buffer int, logger *zap.Logger) *AsyncObserver {
	if buffer <= 0 {
		buffer = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &AsyncObserver{
		name:   name,
		next:   next,
		ch:     make(chan models.Snapshot, buffer),
		done:   make(chan struct{}),
		logger: logger,
	}
	go a.run()
	return a
}

func (a *AsyncObserver) run() {
	defer close(a.done)
	for snap := range a.ch {
		if err := a.next.OnSnapshot(snap); err != nil {
			a.logger.Warn("observer failed",
				zap.String("observer", a.name),
				zap.Int64("tick", snap.Tick),
				zap.Error(err),
			)
		}
	}
}

// OnSnapshot ставит снимок в очередь. Вызов после Close игнорируется.
func (a *AsyncObserver) OnSnapshot(snapshot models.Snapshot) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}

	select {
	case a.ch <- snapshot:
	default:
		a.logger.Warn("observer queue full, snapshot dropped",
			zap.String("observer", a.name),
			zap.Int64("tick", snapshot.Tick),
		)
	}
	return nil
}

// Close дожидается обработки очереди и останавливает горутину.
func (a *AsyncObserver) Close() {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.ch)
	}
	a.mu.Unlock()
	<-a.done
}

// Broadcaster рассылает снимок каждого тика подключённым наблюдателям.
//
// Реализует simulator.Notifier и models.SnapshotSubject.
type Broadcaster struct {
	observers []models.SnapshotObserver
	mu        sync.RWMutex
	logger    *zap.Logger
}

// NewBroadcaster создает новый экземпляр Broadcaster.
func NewBroadcaster(logger *zap.Logger) *Broadcaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broadcaster{
		observers: make([]models.SnapshotObserver, 0),
		logger:    logger,
	}
}

// Attach добавляет наблюдателя к списку.
func (b *Broadcaster) Attach(observer models.SnapshotObserver) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = append(b.observers, observer)
}

// Detach удаляет наблюдателя из списка.
func (b *Broadcaster) Detach(observer models.SnapshotObserver) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, obs := range b.observers {
		if obs == observer {
			b.observers = append(b.observers[:i], b.observers[i+1:]...)
			break
		}
	}
}

// Notify уведомляет всех подключённых наблюдателей о новом снимке в порядке подключения.
// Ошибка наблюдателя логируется и не прерывает рассылку.
func (b *Broadcaster) Notify(snapshot models.Snapshot) {
	b.mu.RLock()
	observers := make([]models.SnapshotObserver, len(b.observers))
	copy(observers, b.observers)
	b.mu.RUnlock()

	for _, observer := range observers {
		if err := observer.OnSnapshot(snapshot); err != nil {
			b.logger.Warn("snapshot observer error",
				zap.Int64("tick", snapshot.Tick),
				zap.Error(err),
			)
		}
	}
}

// HasObservers проверяет, есть ли подключённые наблюдатели.
func (b *Broadcaster) HasObservers() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.observers) > 0
}
