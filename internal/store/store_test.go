package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/BaSui01/modflow/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	s := New(db, zap.NewNop())
	require.NoError(t, s.AutoMigrate())
	return s
}

func TestStore_CreateAndListLogs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	entry := &ModerationLog{
		ContentID:   "content-1",
		ContentKind: string(types.KindPrayer),
		Status:      string(types.StatusRejected),
		Flags: FlagList{{
			Category: types.CategoryViolence,
			Severity: types.SeverityHigh,
			Score:    0.8,
		}},
		RawScores:        ScoreMap{"violence": 0.8},
		ProcessingTimeMS: 120,
		ModelVersion:     "moderation-latest",
		UserID:           "user-1",
	}
	require.NoError(t, s.CreateLog(ctx, entry))

	logs, err := s.ListLogsSince(ctx, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "content-1", logs[0].ContentID)
	require.Len(t, logs[0].Flags, 1)
	assert.Equal(t, types.CategoryViolence, logs[0].Flags[0].Category)
	assert.InDelta(t, 0.8, logs[0].RawScores["violence"], 1e-9)
}

func TestStore_TaskLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	task := &ModerationTask{
		TaskID:    "task-1",
		ContentID: "content-9",
		MediaURL:  "https://media.example/clip.mp4",
		UserID:    "user-2",
	}
	require.NoError(t, s.CreateTask(ctx, task))

	loaded, err := s.GetTask(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, string(types.TaskPending), loaded.Status)
	assert.Nil(t, loaded.Result)

	result := types.NewResult([]types.Flag{
		{Category: types.CategoryHateSpeech, Severity: types.SeverityCritical, Score: 0.95},
	}, map[string]float64{"hate": 0.95}, 90, "moderation-latest")

	// first terminal write wins
	updated, err := s.CompleteTask(ctx, "task-1", types.TaskCompleted, result)
	require.NoError(t, err)
	assert.True(t, updated)

	// second terminal write is a detectable no-op
	updated, err = s.CompleteTask(ctx, "task-1", types.TaskCompleted, result)
	require.NoError(t, err)
	assert.False(t, updated, "completing an already-terminal task must be a no-op")

	loaded, err = s.GetTask(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, string(types.TaskCompleted), loaded.Status)
	require.NotNil(t, loaded.CompletedAt)
	require.NotNil(t, loaded.Result)
	assert.False(t, loaded.Result.Approved)
}

func TestStore_GetTask_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetTask(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestStore_PolicyRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// absent row reads as nil without error
	policy, err := s.LoadPolicy(ctx)
	require.NoError(t, err)
	assert.Nil(t, policy)

	want := types.Policy{
		Enabled:    true,
		StrictMode: true,
		Thresholds: map[types.Category]float64{types.CategoryViolence: 0.9},
	}
	require.NoError(t, s.SavePolicy(ctx, want))

	policy, err = s.LoadPolicy(ctx)
	require.NoError(t, err)
	require.NotNil(t, policy)
	assert.True(t, policy.StrictMode)
	assert.InDelta(t, 0.9, policy.Thresholds[types.CategoryViolence], 1e-9)

	// save again updates the same named row
	want.Enabled = false
	require.NoError(t, s.SavePolicy(ctx, want))
	policy, err = s.LoadPolicy(ctx)
	require.NoError(t, err)
	assert.False(t, policy.Enabled)

	var count int64
	require.NoError(t, s.DB().Model(&ModerationConfig{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestStore_SetContentVisibility(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// row absent: insert
	require.NoError(t, s.SetContentVisibility(ctx, "content-5", types.StatusRejected, false))
	row, err := s.GetContent(ctx, "content-5")
	require.NoError(t, err)
	assert.False(t, row.IsVisible)
	assert.Equal(t, string(types.StatusRejected), row.ModerationStatus)

	// row present: update
	require.NoError(t, s.SetContentVisibility(ctx, "content-5", types.StatusApproved, true))
	row, err = s.GetContent(ctx, "content-5")
	require.NoError(t, err)
	assert.True(t, row.IsVisible)
}

func TestStore_StatsSince(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	entries := []*ModerationLog{
		{ContentID: "a", ContentKind: string(types.KindPrayer), Status: string(types.StatusApproved)},
		{ContentID: "b", ContentKind: string(types.KindPrayer), Status: string(types.StatusApproved)},
		{ContentID: "c", ContentKind: string(types.KindChat), Status: string(types.StatusRejected),
			Flags: FlagList{{Category: types.CategoryProfanity, Severity: types.SeverityMedium, Score: 0.7}}},
		{ContentID: "d", ContentKind: string(types.KindVideoResponse), Status: string(types.StatusPending)},
	}
	for _, e := range entries {
		require.NoError(t, s.CreateLog(ctx, e))
	}

	stats, err := s.StatsSince(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.Total)
	assert.Equal(t, int64(2), stats.Approved)
	assert.Equal(t, int64(1), stats.Rejected)
	assert.Equal(t, int64(1), stats.Pending)
	assert.InDelta(t, 0.5, stats.ApprovalRate, 1e-9)
	assert.Equal(t, int64(2), stats.ByKind[string(types.KindPrayer)])
	assert.Equal(t, int64(1), stats.ByCategory[types.CategoryProfanity])
}

func TestStore_CreateLog_PersistenceError(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	mock.ExpectQuery("SELECT version").WillReturnRows(
		sqlmock.NewRows([]string{"version"}).AddRow("15.0"))

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "moderation_logs"`).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	s := New(db, zap.NewNop())
	err = s.CreateLog(context.Background(), &ModerationLog{
		ContentID:   "x",
		ContentKind: string(types.KindChat),
		Status:      string(types.StatusApproved),
	})
	require.Error(t, err)
	assert.Equal(t, types.ErrPersistence, types.GetErrorCode(err))
}
