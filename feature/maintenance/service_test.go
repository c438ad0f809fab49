package maintenance

import (
	"context"
	"fmt"
	"testing"
	"time"

	"courtsync/core/archive"
	"courtsync/core/archive/mocks"
	"courtsync/core/clock"
	queuemodels "courtsync/feature/queue/models"
	resmodels "courtsync/feature/reservation/models"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T, name string) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&resmodels.Reservation{},
		&queuemodels.QueueSession{},
		&clock.DevSetting{},
	))
	return db
}

func TestRun_Report(t *testing.T) {
	db := setupTestDB(t, "maint_report")
	svc := NewService(db, clock.New(db, false), zap.NewNop(), nil)
	now := time.Now().UTC()

	// A confirmed reservation mid-booking and an upcoming session inside
	// its joinable window.
	db.Create(&resmodels.Reservation{
		ID:        "r1",
		Status:    resmodels.StatusConfirmed,
		CreatedAt: now.Add(-time.Hour),
		StartTime: now.Add(-10 * time.Minute),
		EndTime:   now.Add(50 * time.Minute),
	})
	db.Create(&queuemodels.QueueSession{
		ID:        "q1",
		Status:    queuemodels.StatusUpcoming,
		StartTime: now.Add(90 * time.Minute),
		EndTime:   now.Add(4 * time.Hour),
	})

	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, report.Success)
	assert.WithinDuration(t, now, report.ProcessedAt, 10*time.Second)
	assert.Equal(t, 1, report.Reservations.StartedOngoing)
	assert.Equal(t, 1, report.QueueSessions.Opened)
	assert.Empty(t, report.Errors)
}

func TestRun_UsesOffsetClock(t *testing.T) {
	db := setupTestDB(t, "maint_offset")
	clk := clock.New(db, true)
	require.NoError(t, clk.SetOffset(context.Background(), 24*time.Hour))

	svc := NewService(db, clk, zap.NewNop(), nil)

	// Freshly created e-wallet booking: not expired on the wall clock,
	// expired once the run observes the +24h offset.
	db.Create(&resmodels.Reservation{
		ID:            "r1",
		Status:        resmodels.StatusPendingPayment,
		PaymentMethod: resmodels.PaymentEWallet,
		CreatedAt:     time.Now().UTC(),
		StartTime:     time.Now().UTC().Add(2 * time.Hour),
		EndTime:       time.Now().UTC().Add(3 * time.Hour),
	})

	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Reservations.Expired)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), report.ProcessedAt, 10*time.Second)
}

func TestRun_StepErrorIsolation(t *testing.T) {
	dsn := "file:maint_isolation?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	// Reservations exist, queue_sessions deliberately does not: every queue
	// step fails, every reservation step still runs.
	require.NoError(t, db.AutoMigrate(&resmodels.Reservation{}, &clock.DevSetting{}))

	now := time.Now().UTC()
	db.Create(&resmodels.Reservation{
		ID:        "r1",
		Status:    resmodels.StatusConfirmed,
		CreatedAt: now.Add(-time.Hour),
		StartTime: now.Add(-10 * time.Minute),
		EndTime:   now.Add(50 * time.Minute),
	})

	svc := NewService(db, clock.New(db, false), zap.NewNop(), nil)

	report, err := svc.Run(context.Background())
	require.NoError(t, err, "step failures must not fail the run")

	assert.True(t, report.Success)
	assert.Equal(t, 1, report.Reservations.StartedOngoing)
	assert.Len(t, report.Errors, len(report.QueueSessions.Steps))
	assert.Zero(t, report.QueueSessions.Completed)
}

func TestRun_OrchestrationFailure(t *testing.T) {
	dsn := "file:maint_noclock?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	// Development clock over a store without dev_settings: the single
	// clock read fails before any step runs.
	svc := NewService(db, clock.New(db, true), zap.NewNop(), nil)

	report, err := svc.Run(context.Background())
	assert.Error(t, err)
	assert.Nil(t, report)
}

func TestRun_ArchivesReport(t *testing.T) {
	db := setupTestDB(t, "maint_archive")

	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "courtsync").Return(true, nil)
	client.On("PutObject", mock.Anything, "courtsync", mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).Return(minio.UploadInfo{}, nil)

	archiver := archive.NewArchiver(client, "courtsync", "reports")
	svc := NewService(db, clock.New(db, false), zap.NewNop(), archiver)

	report, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, report.ArchivedAs)
	client.AssertExpectations(t)
}

func TestRun_ArchiveFailureDoesNotFailRun(t *testing.T) {
	db := setupTestDB(t, "maint_archive_fail")

	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "courtsync").Return(false, assert.AnError)

	archiver := archive.NewArchiver(client, "courtsync", "reports")
	svc := NewService(db, clock.New(db, false), zap.NewNop(), archiver)

	report, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Success)
	assert.Empty(t, report.ArchivedAs)
}

func TestRun_OverlappingRunsConverge(t *testing.T) {
	db := setupTestDB(t, "maint_overlap")
	svc := NewService(db, clock.New(db, false), zap.NewNop(), nil)
	now := time.Now().UTC()

	db.Create(&resmodels.Reservation{
		ID:        "r1",
		Status:    resmodels.StatusConfirmed,
		CreatedAt: now.Add(-time.Hour),
		StartTime: now.Add(-10 * time.Minute),
		EndTime:   now.Add(50 * time.Minute),
	})
	db.Create(&queuemodels.QueueSession{
		ID:        "q1",
		Status:    queuemodels.StatusOpen,
		StartTime: now.Add(-10 * time.Minute),
		EndTime:   now.Add(time.Hour),
	})

	// The status guards make run order irrelevant: whichever run observes
	// a row first moves it, the other matches zero rows.
	first, err := svc.Run(context.Background())
	require.NoError(t, err)
	second, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, first.Reservations.StartedOngoing+second.Reservations.StartedOngoing)
	assert.Equal(t, 1, first.QueueSessions.Activated+second.QueueSessions.Activated)

	var r resmodels.Reservation
	require.NoError(t, db.First(&r, "id = ?", "r1").Error)
	assert.Equal(t, resmodels.StatusOngoing, r.Status)

	var q queuemodels.QueueSession
	require.NoError(t, db.First(&q, "id = ?", "q1").Error)
	assert.Equal(t, queuemodels.StatusActive, q.Status)
}
