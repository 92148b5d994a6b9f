package simulator

import (
	"sync"
	"time"
)

// Ticker — периодический источник событий времени.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock абстрагирует часы, чтобы тики можно было имитировать в тестах.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// RealClock — системные часы.
type RealClock struct{}

// Now возвращает текущее время.
func (RealClock) Now() time.Time { return time.Now() }

// NewTicker возвращает обёртку над time.Ticker.
func (RealClock) NewTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// Scheduler запускает повторяющиеся задачи по часам Clock.
type Scheduler struct {
	clock Clock
}

// NewScheduler создаёт планировщик. При clock == nil используются системные часы.
func NewScheduler(clock Clock) *Scheduler {
	if clock == nil {
		clock = RealClock{}
	}
	return &Scheduler{clock: clock}
}

// Handle — дескриптор запланированной задачи.
type Handle struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// Cancel останавливает задачу и дожидается завершения текущего запуска.
// Повторные вызовы безопасны. Нельзя вызывать из самой задачи.
func (h *Handle) Cancel() {
	h.once.Do(func() { close(h.stop) })
	<-h.done
}

// Done закрывается после остановки задачи.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Every запускает task каждые interval, передавая время срабатывания.
// Первый запуск происходит через interval после вызова.
func (s *Scheduler) Every(interval time.Duration, task func(time.Time)) *Handle {
	h := &Handle{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	ticker := s.clock.NewTicker(interval)

	go func() {
		defer close(h.done)
		defer ticker.Stop()
		for {
			select {
			case <-h.stop:
				return
			case t := <-ticker.C():
				select {
				case <-h.stop:
					return
				default:
				}
				task(t)
			}
		}
	}()

	return h
}
