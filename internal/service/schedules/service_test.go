package schedules

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonflow/scheduling-service/internal/domain"
	catalogRepo "github.com/salonflow/scheduling-service/internal/infra/storage/catalog"
	scheduleRepo "github.com/salonflow/scheduling-service/internal/infra/storage/schedule"
	"github.com/salonflow/scheduling-service/internal/service/schedules/models"
	"github.com/salonflow/scheduling-service/pkg/ptr"
)

type fakeScheduleRepo struct {
	entries map[int64]*domain.StaffSchedule
	nextID  int64

	deleted []int64
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{entries: map[int64]*domain.StaffSchedule{}, nextID: 1}
}

func (f *fakeScheduleRepo) Create(_ context.Context, entry *domain.StaffSchedule) (*domain.StaffSchedule, error) {
	created := *entry
	created.ID = f.nextID
	f.nextID++
	f.entries[created.ID] = &created
	return &created, nil
}

func (f *fakeScheduleRepo) GetByID(_ context.Context, id int64) (*domain.StaffSchedule, error) {
	entry, ok := f.entries[id]
	if !ok {
		return nil, scheduleRepo.ErrScheduleNotFound
	}
	return entry, nil
}

func (f *fakeScheduleRepo) GetByStaffID(_ context.Context, staffID int64) ([]*domain.StaffSchedule, error) {
	var result []*domain.StaffSchedule
	for _, entry := range f.entries {
		if entry.StaffID == staffID {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (f *fakeScheduleRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.entries[id]; !ok {
		return scheduleRepo.ErrScheduleNotFound
	}
	delete(f.entries, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeCatalogRepo struct {
	staffIDs    map[int64]bool
	locationIDs map[int64]bool
}

func (f *fakeCatalogRepo) GetStaff(_ context.Context, id int64) (*domain.StaffMember, error) {
	if !f.staffIDs[id] {
		return nil, catalogRepo.ErrStaffNotFound
	}
	return &domain.StaffMember{ID: id, Name: "Анна", Active: true}, nil
}

func (f *fakeCatalogRepo) GetLocation(_ context.Context, id int64) (*domain.Location, error) {
	if !f.locationIDs[id] {
		return nil, catalogRepo.ErrLocationNotFound
	}
	return &domain.Location{ID: id, Timezone: "UTC"}, nil
}

type fakeInvalidator struct {
	staffIDs []int64
	dates    []time.Time
}

func (f *fakeInvalidator) InvalidateStaffDay(_ context.Context, staffID int64, date time.Time) error {
	f.staffIDs = append(f.staffIDs, staffID)
	f.dates = append(f.dates, date)
	return nil
}

type noopLogger struct{}

func (noopLogger) Info(format string, v ...interface{})  {}
func (noopLogger) Warn(format string, v ...interface{})  {}
func (noopLogger) Error(format string, v ...interface{}) {}

func newTestService() (*Service, *fakeScheduleRepo, *fakeInvalidator) {
	repo := newFakeScheduleRepo()
	catalog := &fakeCatalogRepo{
		staffIDs:    map[int64]bool{3: true},
		locationIDs: map[int64]bool{1: true},
	}
	invalidator := &fakeInvalidator{}
	return NewService(repo, catalog, invalidator, noopLogger{}), repo, invalidator
}

func TestCreateWindow(t *testing.T) {
	svc, repo, invalidator := newTestService()

	resp, err := svc.CreateWindow(context.Background(), &models.CreateWindowRequest{
		StaffID:           3,
		DayOfWeek:         1,
		StartTime:         "09:00",
		EndTime:           "17:00",
		LocationID:        ptr.Ptr(int64(1)),
		ServiceCategories: []string{"hair"},
		StartDate:         "2026-01-01",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, "09:00", resp.StartTime)
	assert.Equal(t, "17:00", resp.EndTime)
	assert.False(t, resp.IsBlocked)
	assert.Nil(t, resp.EndDate)

	entry := repo.entries[1]
	require.NotNil(t, entry)
	assert.Equal(t, time.Monday, entry.DayOfWeek)
	assert.False(t, entry.IsBlocked)

	// Повторяющееся окно не сбрасывает кэш точечно
	assert.Empty(t, invalidator.staffIDs)
}

func TestCreateWindow_InvertedWindowRejected(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CreateWindow(context.Background(), &models.CreateWindowRequest{
		StaffID:   3,
		DayOfWeek: 1,
		StartTime: "17:00",
		EndTime:   "09:00",
		StartDate: "2026-01-01",
	})
	assert.ErrorIs(t, err, ErrInvalidTimeWindow)
}

func TestCreateWindow_ZeroLengthWindowRejected(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CreateWindow(context.Background(), &models.CreateWindowRequest{
		StaffID:   3,
		DayOfWeek: 1,
		StartTime: "09:00",
		EndTime:   "09:00",
		StartDate: "2026-01-01",
	})
	assert.ErrorIs(t, err, ErrInvalidTimeWindow)
}

func TestCreateWindow_UnknownStaff(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CreateWindow(context.Background(), &models.CreateWindowRequest{
		StaffID:   99,
		DayOfWeek: 1,
		StartTime: "09:00",
		EndTime:   "17:00",
		StartDate: "2026-01-01",
	})
	assert.ErrorIs(t, err, ErrStaffNotFound)
}

func TestCreateWindow_UnknownLocation(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CreateWindow(context.Background(), &models.CreateWindowRequest{
		StaffID:    3,
		DayOfWeek:  1,
		StartTime:  "09:00",
		EndTime:    "17:00",
		LocationID: ptr.Ptr(int64(42)),
		StartDate:  "2026-01-01",
	})
	assert.ErrorIs(t, err, ErrLocationNotFound)
}

func TestCreateWindow_BadDayOfWeek(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CreateWindow(context.Background(), &models.CreateWindowRequest{
		StaffID:   3,
		DayOfWeek: 7,
		StartTime: "09:00",
		EndTime:   "17:00",
		StartDate: "2026-01-01",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateBlock(t *testing.T) {
	svc, repo, invalidator := newTestService()

	resp, err := svc.CreateBlock(context.Background(), &models.CreateBlockRequest{
		StaffID:   3,
		Date:      "2026-03-02",
		StartTime: "12:00",
		EndTime:   "13:00",
	})
	require.NoError(t, err)
	assert.True(t, resp.IsBlocked)
	require.NotNil(t, resp.EndDate)
	assert.Equal(t, resp.StartDate, *resp.EndDate)

	entry := repo.entries[resp.ID]
	require.NotNil(t, entry)
	// 2026-03-02 - понедельник
	assert.Equal(t, time.Monday, entry.DayOfWeek)
	assert.True(t, entry.IsBlocked)

	// Блокировка сразу сбрасывает кэш слотов за этот день
	require.Len(t, invalidator.staffIDs, 1)
	assert.Equal(t, int64(3), invalidator.staffIDs[0])
	assert.Equal(t, "2026-03-02", invalidator.dates[0].Format("2006-01-02"))
}

func TestListByStaff(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CreateWindow(context.Background(), &models.CreateWindowRequest{
		StaffID:   3,
		DayOfWeek: 1,
		StartTime: "09:00",
		EndTime:   "17:00",
		StartDate: "2026-01-01",
	})
	require.NoError(t, err)
	_, err = svc.CreateBlock(context.Background(), &models.CreateBlockRequest{
		StaffID:   3,
		Date:      "2026-03-02",
		StartTime: "12:00",
		EndTime:   "13:00",
	})
	require.NoError(t, err)

	resp, err := svc.ListByStaff(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, resp.Schedules, 2)
}

func TestDelete_BlockInvalidatesDay(t *testing.T) {
	svc, repo, invalidator := newTestService()

	block, err := svc.CreateBlock(context.Background(), &models.CreateBlockRequest{
		StaffID:   3,
		Date:      "2026-03-02",
		StartTime: "12:00",
		EndTime:   "13:00",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), block.ID))
	assert.Equal(t, []int64{block.ID}, repo.deleted)
	// Один сброс при создании блокировки, второй при удалении
	assert.Len(t, invalidator.staffIDs, 2)
}

func TestDelete_NotFound(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.Delete(context.Background(), 99)
	assert.ErrorIs(t, err, ErrScheduleNotFound)
}
