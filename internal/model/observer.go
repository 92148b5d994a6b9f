package models

// TickEvent представляет событие аудита одного тика симулятора.
type TickEvent struct {
	Timestamp int64            `json:"ts"`
	SessionID string           `json:"session_id"`
	Tick      int64            `json:"tick"`
	Values    map[string]int64 `json:"values"`
}

// NewTickEvent формирует событие аудита из снимка.
func NewTickEvent(s Snapshot) TickEvent {
	values := make(map[string]int64, len(s.Metrics))
	for _, m := range s.Metrics {
		values[m.Name] = m.Value
	}
	return TickEvent{
		Timestamp: s.Timestamp.Unix(),
		SessionID: s.SessionID,
		Tick:      s.Tick,
		Values:    values,
	}
}

// SnapshotObserver интерфейс наблюдателя, получающего снимок после каждого тика.
type SnapshotObserver interface {
	OnSnapshot(snapshot Snapshot) error
}

// SnapshotSubject интерфейс субъекта, рассылающего снимки наблюдателям.
type SnapshotSubject interface {
	Attach(observer SnapshotObserver)
	Detach(observer SnapshotObserver)
	Notify(snapshot Snapshot)
}
