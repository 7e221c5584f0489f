package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore keeps the ledger in memory with the same (user, date) uniqueness
// the real table enforces.
type memStore struct {
	records map[string]*Record // by id
	byDay   map[string]string  // user|date -> id
	logs    []LogEntry
}

func newMemStore() *memStore {
	return &memStore{records: map[string]*Record{}, byDay: map[string]string{}}
}

func dayKey(userID, date string) string { return userID + "|" + date }

func (m *memStore) ClockIn(_ context.Context, userID, date, clockInTime string) error {
	t := clockInTime
	if id, ok := m.byDay[dayKey(userID, date)]; ok {
		rec := m.records[id]
		rec.ClockInTime = &t
		rec.Status = StatusPresent
		return nil
	}
	id := uuid.NewString()
	m.records[id] = &Record{ID: id, UserID: userID, Date: date, Status: StatusPresent, ClockInTime: &t}
	m.byDay[dayKey(userID, date)] = id
	return nil
}

func (m *memStore) ClockOut(_ context.Context, userID, date, clockOutTime string) (bool, error) {
	id, ok := m.byDay[dayKey(userID, date)]
	if !ok {
		return false, nil
	}
	t := clockOutTime
	rec := m.records[id]
	rec.ClockOutTime = &t
	rec.Status = StatusPresent
	return true, nil
}

func (m *memStore) IsClockedIn(_ context.Context, userID, date string) (bool, error) {
	id, ok := m.byDay[dayKey(userID, date)]
	if !ok {
		return false, nil
	}
	rec := m.records[id]
	return rec.ClockInTime != nil && rec.ClockOutTime == nil, nil
}

func (m *memStore) CountPresent(_ context.Context, userID string) (int, error) {
	n := 0
	for _, rec := range m.records {
		if rec.UserID == userID && rec.Status == StatusPresent {
			n++
		}
	}
	return n, nil
}

func (m *memStore) StatsForUser(_ context.Context, userID string) (Stats, error) {
	var s Stats
	for _, rec := range m.records {
		if rec.UserID != userID {
			continue
		}
		s.Total++
		switch rec.Status {
		case StatusPresent:
			s.Present++
		case StatusAbsent:
			s.Absent++
		case StatusLate:
			s.Late++
		}
	}
	return s, nil
}

func (m *memStore) PercentageList(_ context.Context) ([]PercentageRow, error) { return nil, nil }

func (m *memStore) CountByStatusOn(_ context.Context, date, status string) (int, error) {
	n := 0
	for _, rec := range m.records {
		if rec.Date == date && rec.Status == status {
			n++
		}
	}
	return n, nil
}

func (m *memStore) Report(_ context.Context, _ ReportFilter) ([]ReportRow, error) { return nil, nil }

func (m *memStore) RecentRecords(_ context.Context, _ int) ([]RecentRow, error) { return nil, nil }

func (m *memStore) ListRecords(_ context.Context, _ RecordFilter) ([]Record, error) {
	var res []Record
	for _, rec := range m.records {
		res = append(res, *rec)
	}
	return res, nil
}

func (m *memStore) GetRecord(_ context.Context, id string) (*Record, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	copied := *rec
	return &copied, nil
}

func (m *memStore) CreateRecord(_ context.Context, rec Record) (Record, error) {
	if _, ok := m.byDay[dayKey(rec.UserID, rec.Date)]; ok {
		return Record{}, ErrDuplicateRecord
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Status == "" {
		rec.Status = StatusPending
	}
	m.records[rec.ID] = &rec
	m.byDay[dayKey(rec.UserID, rec.Date)] = rec.ID
	return rec, nil
}

func (m *memStore) UpdateRecord(_ context.Context, id string, upd RecordUpdate) (*Record, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Date != nil {
		rec.Date = *upd.Date
	}
	if upd.Status != nil {
		rec.Status = *upd.Status
	}
	if upd.ClockInTime != nil {
		rec.ClockInTime = upd.ClockInTime
	}
	if upd.ClockOutTime != nil {
		rec.ClockOutTime = upd.ClockOutTime
	}
	copied := *rec
	return &copied, nil
}

func (m *memStore) DeleteRecord(_ context.Context, id string) error {
	rec, ok := m.records[id]
	if !ok {
		return ErrNotFound
	}
	delete(m.byDay, dayKey(rec.UserID, rec.Date))
	delete(m.records, id)
	return nil
}

func (m *memStore) InsertLog(_ context.Context, entry LogEntry) error {
	m.logs = append(m.logs, entry)
	return nil
}

func (m *memStore) ListLogs(_ context.Context, _ int) ([]LogEntry, error) { return m.logs, nil }

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestClockInIsIdempotentPerDay(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	svc.now = fixedClock(time.Date(2024, 5, 1, 8, 5, 0, 0, time.UTC))

	first, err := svc.ClockIn(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "08:05:00", first.ClockInTime)
	assert.Equal(t, 1, first.PresentCount)

	svc.now = fixedClock(time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC))
	second, err := svc.ClockIn(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "09:30:00", second.ClockInTime)
	assert.Equal(t, 1, second.PresentCount, "same-day clock-in must not add a row")
	assert.Len(t, store.records, 1)

	rec := store.records[store.byDay["u1|2024-05-01"]]
	require.NotNil(t, rec.ClockInTime)
	assert.Equal(t, "09:30:00", *rec.ClockInTime, "clock-in time takes the latest call")
}

func TestClockOutWithoutRecordFails(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	svc.now = fixedClock(time.Date(2024, 5, 1, 16, 30, 0, 0, time.UTC))

	_, err := svc.ClockOut(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrNoRecordToday)
	assert.Empty(t, store.records, "failed clock-out must not create a record")
}

func TestClockInThenOutProducesOneCompleteRecord(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)

	svc.now = fixedClock(time.Date(2024, 5, 1, 8, 5, 0, 0, time.UTC))
	_, err := svc.ClockIn(context.Background(), "u1")
	require.NoError(t, err)

	svc.now = fixedClock(time.Date(2024, 5, 1, 16, 30, 0, 0, time.UTC))
	out, err := svc.ClockOut(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "16:30:00", out)

	require.Len(t, store.records, 1)
	rec := store.records[store.byDay["u1|2024-05-01"]]
	assert.Equal(t, "2024-05-01", rec.Date)
	assert.Equal(t, StatusPresent, rec.Status)
	assert.Equal(t, "08:05:00", *rec.ClockInTime)
	assert.Equal(t, "16:30:00", *rec.ClockOutTime)
}

func TestIsClockedInLifecycle(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	svc.now = fixedClock(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC))

	in, err := svc.IsClockedIn(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, in)

	_, err = svc.ClockIn(context.Background(), "u1")
	require.NoError(t, err)
	in, err = svc.IsClockedIn(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, in)

	_, err = svc.ClockOut(context.Background(), "u1")
	require.NoError(t, err)
	in, err = svc.IsClockedIn(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, in, "clocked out means no longer clocked in")
}

func TestStatsPercentageZeroWhenNoRecords(t *testing.T) {
	svc := NewService(newMemStore())

	stats, err := svc.StatsForUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.Zero(t, stats.Percentage)
}

func TestStatsPercentage(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)

	late := StatusLate
	for i, status := range []string{StatusPresent, StatusPresent, StatusAbsent, late} {
		_, err := store.CreateRecord(context.Background(), Record{
			UserID: "u1",
			Date:   time.Date(2024, 5, 1+i, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
			Status: status,
		})
		require.NoError(t, err)
	}

	stats, err := svc.StatsForUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Present)
	assert.Equal(t, 1, stats.Absent)
	assert.Equal(t, 1, stats.Late)
	assert.InDelta(t, 50.0, stats.Percentage, 0.001)
}

func TestTodayPercentageNoStudents(t *testing.T) {
	svc := NewService(newMemStore())

	pct, err := svc.TodayPercentage(context.Background(), 0)
	require.NoError(t, err)
	assert.Zero(t, pct)
}

func TestTodayPercentage(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	svc.now = fixedClock(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))

	for _, user := range []string{"u1", "u2", "u3"} {
		_, err := svc.ClockIn(context.Background(), user)
		require.NoError(t, err)
	}

	pct, err := svc.TodayPercentage(context.Background(), 4)
	require.NoError(t, err)
	assert.InDelta(t, 75.0, pct, 0.001)
}

func TestRecordAction(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	svc.now = fixedClock(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC))

	require.NoError(t, svc.RecordAction(context.Background(), "u1", "login"))
	require.Len(t, store.logs, 1)
	assert.Equal(t, "login", store.logs[0].Action)
	assert.Equal(t, "u1", store.logs[0].UserID)
}
