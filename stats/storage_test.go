package stats

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorage(t *testing.T) {
	tempDir := t.TempDir()

	storage, err := NewStorage(tempDir)
	require.NoError(t, err)
	defer storage.Shutdown()

	t.Run("RecordAnalysis", func(t *testing.T) {
		storage.RecordAnalysis(KindSEO, 80)
		storage.RecordAnalysis(KindSEO, 60)
		storage.RecordAnalysis(KindAIO, 45)
		storage.RecordAnalysis(Kind("other"), 99)

		stats := storage.GetCurrentStats()
		assert.Equal(t, 2, stats.SEOAnalyses)
		assert.Equal(t, 140, stats.SEOScoreSum)
		assert.Equal(t, 70.0, stats.AverageSEOScore())
		assert.Equal(t, 1, stats.AIOAnalyses)
		assert.Equal(t, 45.0, stats.AverageAIOScore())
		assert.False(t, stats.LastUpdated.IsZero())
	})

	t.Run("IncrementFetch", func(t *testing.T) {
		storage.IncrementFetch(1, 2, 3)

		stats := storage.GetCurrentStats()
		assert.Equal(t, 1, stats.FetchCacheHits)
		assert.Equal(t, 2, stats.FetchCacheMisses)
		assert.Equal(t, 3, stats.FetchErrors)
	})

	t.Run("Persistence", func(t *testing.T) {
		require.NoError(t, storage.save())

		storage2, err := NewStorage(tempDir)
		require.NoError(t, err)
		defer storage2.Shutdown()

		stats := storage2.GetCurrentStats()
		assert.Equal(t, 2, stats.SEOAnalyses)
		assert.Equal(t, 1, stats.FetchCacheHits)
	})

	t.Run("Cleanup", func(t *testing.T) {
		oldMonth := time.Now().AddDate(0, -2, 0).Format("2006-01")
		lastMonth := time.Now().AddDate(0, -1, 0).Format("2006-01")
		storage.mutex.Lock()
		storage.stats[oldMonth] = &MonthlyStats{SEOAnalyses: 100}
		storage.stats[lastMonth] = &MonthlyStats{SEOAnalyses: 10}
		storage.mutex.Unlock()

		storage.Cleanup(1)

		_, exists := storage.GetMonthlyStats(oldMonth)
		assert.False(t, exists, "old stats should have been cleaned up")
		_, exists = storage.GetMonthlyStats(lastMonth)
		assert.True(t, exists)
		assert.Equal(t, []string{time.Now().Format("2006-01"), lastMonth}, storage.GetAllMonths())
	})

	t.Run("FileSize", func(t *testing.T) {
		require.NoError(t, storage.save())

		info, err := os.Stat(filepath.Join(tempDir, "stats.json"))
		require.NoError(t, err)
		assert.Less(t, info.Size(), int64(1024))
	})

	t.Run("ConcurrentAccess", func(t *testing.T) {
		before := storage.GetCurrentStats()

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					storage.RecordAnalysis(KindAIO, 1)
					storage.IncrementFetch(1, 0, 0)
					storage.GetCurrentStats()
				}
			}()
		}
		wg.Wait()

		stats := storage.GetCurrentStats()
		assert.Equal(t, before.AIOAnalyses+1000, stats.AIOAnalyses)
		assert.Equal(t, before.FetchCacheHits+1000, stats.FetchCacheHits)
	})
}

func TestStorageShutdownFlushes(t *testing.T) {
	tempDir := t.TempDir()

	storage, err := NewStorage(tempDir)
	require.NoError(t, err)

	storage.RecordAnalysis(KindSEO, 50)
	require.NoError(t, storage.Shutdown())
	require.NoError(t, storage.Shutdown())

	reloaded, err := NewStorage(tempDir)
	require.NoError(t, err)
	defer reloaded.Shutdown()
	assert.Equal(t, 1, reloaded.GetCurrentStats().SEOAnalyses)
}

func TestNewStorageRejectsCorruptFile(t *testing.T) {
	tempDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "stats.json"), []byte("{not json"), 0644))

	_, err := NewStorage(tempDir)
	assert.Error(t, err)
}

func TestReport(t *testing.T) {
	storage, err := NewStorage(t.TempDir())
	require.NoError(t, err)
	defer storage.Shutdown()

	storage.RecordAnalysis(KindAIO, 30)
	storage.RecordAnalysis(KindAIO, 60)

	report := storage.Report()
	assert.Equal(t, time.Now().Format("2006-01"), report.Month)
	assert.Equal(t, 2, report.AIOAnalyses)
	assert.Equal(t, 45.0, report.AverageAIOScore)
	assert.Zero(t, report.AverageSEOScore)
}
