package logging

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/amirhossein-jamali/health-logger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/health-logger/internal/domain/error"
	persistencemocks "github.com/amirhossein-jamali/health-logger/mocks/port/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestView(t *testing.T) {
	clock := newSettableClock(t, time.UnixMilli(1))
	cfg := storageOnly(entity.DefaultLoggerConfig())
	cfg.Level = entity.LevelDebug
	store := newMemoryKV()
	s := NewService(cfg, store, nil, clock, nil)

	s.Debug("d1")
	s.Info("i1")
	s.Warn("w1")
	s.Error("e1")
	s.Warn("w2")
	writes := store.setCount()

	t.Run("No filter returns everything", func(t *testing.T) {
		got, err := s.View(context.Background(), ViewFilter{})
		require.NoError(t, err)
		assert.Len(t, got, 5)
	})

	t.Run("Level set", func(t *testing.T) {
		got, err := s.View(context.Background(), ViewFilter{Levels: []entity.LogLevel{entity.LevelWarn, entity.LevelError}})
		require.NoError(t, err)

		msgs := make([]string, 0, len(got))
		for _, e := range got {
			msgs = append(msgs, e.Message)
		}
		assert.Equal(t, []string{"w1", "e1", "w2"}, msgs)
	})

	t.Run("MaxEntries keeps the newest", func(t *testing.T) {
		got, err := s.View(context.Background(), ViewFilter{MaxEntries: 2})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "e1", got[0].Message)
		assert.Equal(t, "w2", got[1].Message)
	})

	t.Run("Viewing never writes", func(t *testing.T) {
		assert.Equal(t, writes, store.setCount())
	})
}

func TestViewDefaultLimit(t *testing.T) {
	clock := newSettableClock(t, time.UnixMilli(1))
	s := NewService(storageOnly(entity.DefaultLoggerConfig()), newMemoryKV(), nil, clock, nil)
	for i := 0; i < DefaultViewEntries+20; i++ {
		s.Info(fmt.Sprintf("m%d", i))
	}

	got, err := s.View(context.Background(), ViewFilter{})
	require.NoError(t, err)
	require.Len(t, got, DefaultViewEntries)
	assert.Equal(t, "m20", got[0].Message)
}

func TestViewStoreError(t *testing.T) {
	store := persistencemocks.NewMockKeyValueStore(t)
	store.EXPECT().Get(mock.Anything, StorageKey).Return(nil, errs.ErrDatabaseConnection).Once()
	s := NewService(entity.DefaultLoggerConfig(), store, nil, nil, nil)

	_, err := s.View(context.Background(), ViewFilter{})
	assert.ErrorIs(t, err, errs.ErrLogStoreUnavailable)
}
