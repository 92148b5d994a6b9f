package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveLoadSnapshotFile_TableDriven(t *testing.T) {
	tmpDir := t.TempDir()
	tests := []struct {
		name     string
		filePath string
	}{
		{"flat file", filepath.Join(tmpDir, "snapshot.json")},
		{"nested dir", filepath.Join(tmpDir, "a", "b", "snapshot.json")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := testSnapshot(7, map[string]int64{"followers": 1250, "likes": 640, "comments": 151})
			require.NoError(t, SaveSnapshotToFile(want, tt.filePath))

			got, err := LoadSnapshotFromFile(tt.filePath)
			require.NoError(t, err)
			require.Equal(t, want.SessionID, got.SessionID)
			require.Equal(t, want.Tick, got.Tick)
			require.True(t, want.Timestamp.Equal(got.Timestamp))
			require.Equal(t, want.Metrics, got.Metrics)
		})
	}
}

func TestLoadSnapshotFromFile_Errors(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := LoadSnapshotFromFile(filepath.Join(tmpDir, "missing.json"))
	require.Error(t, err)
	require.True(t, os.IsNotExist(err))

	broken := filepath.Join(tmpDir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("{not json"), 0644))
	_, err = LoadSnapshotFromFile(broken)
	require.Error(t, err)
	require.False(t, os.IsNotExist(err))
}

func TestFileStore_OnSnapshotOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	fs := NewFileStore(path)

	require.NoError(t, fs.OnSnapshot(testSnapshot(1, map[string]int64{"likes": 1})))
	require.NoError(t, fs.OnSnapshot(testSnapshot(2, map[string]int64{"likes": 2})))

	got, err := LoadSnapshotFromFile(path)
	require.NoError(t, err)
	require.Equal(t, int64(2), got.Tick)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
