package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	models "github.com/RoGogDBD/social-pulse/internal/model"
)

// SaveSnapshotToFile атомарно записывает снимок в файл в формате JSON.
//
// Данные сначала пишутся во временный файл рядом с целевым, затем он переименовывается.
func SaveSnapshotToFile(snapshot models.Snapshot, filePath string) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := json.NewEncoder(tmp).Encode(snapshot); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	return os.Rename(tmp.Name(), filePath)
}

// LoadSnapshotFromFile читает снимок из файла.
//
// Ошибка отсутствия файла возвращается как есть, её можно проверить через os.IsNotExist.
func LoadSnapshotFromFile(filePath string) (models.Snapshot, error) {
	var snapshot models.Snapshot

	data, err := os.ReadFile(filePath)
	if err != nil {
		return snapshot, err
	}
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return snapshot, fmt.Errorf("failed to decode snapshot %s: %w", filePath, err)
	}
	return snapshot, nil
}

// FileStore сохраняет каждый полученный снимок в файл.
type FileStore struct {
	filePath string
	mu       sync.Mutex
}

// NewFileStore создаёт FileStore для пути filePath.
func NewFileStore(filePath string) *FileStore {
	return &FileStore{filePath: filePath}
}

// OnSnapshot сохраняет снимок в файл.
func (f *FileStore) OnSnapshot(snapshot models.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return SaveSnapshotToFile(snapshot, f.filePath)
}
