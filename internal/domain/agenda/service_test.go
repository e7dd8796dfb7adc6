package agenda

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	nextID    int64
	entries   map[int64]*Entry
	usernames map[int64]string
	failWith  error
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		entries:   make(map[int64]*Entry),
		usernames: map[int64]string{1: "ana", 2: "dr_lopez", 3: "bea", 4: "dr_rojas"},
	}
}

func (m *mockRepo) Create(_ context.Context, e *Entry) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.nextID++
	e.ID = m.nextID
	c := *e
	m.entries[e.ID] = &c
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*Entry, error) {
	e, ok := m.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *e
	return &c, nil
}

func (m *mockRepo) filter(keep func(e *Entry) bool) []*Entry {
	var out []*Entry
	for _, e := range m.entries {
		if keep(e) {
			c := *e
			c.Patient = &Person{ID: e.PatientID, Username: m.usernames[e.PatientID]}
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledFor.Equal(out[j].ScheduledFor) {
			return out[i].ScheduledFor.Before(out[j].ScheduledFor)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *mockRepo) List(_ context.Context) ([]*Entry, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return m.filter(func(*Entry) bool { return true }), nil
}

func (m *mockRepo) ListByPatient(_ context.Context, username string) ([]*Entry, error) {
	return m.filter(func(e *Entry) bool { return m.usernames[e.PatientID] == username }), nil
}

func (m *mockRepo) ListByDoctor(_ context.Context, doctorID int64) ([]*Entry, error) {
	return m.filter(func(e *Entry) bool { return e.DoctorID == doctorID }), nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, id int64, status Status) error {
	e, ok := m.entries[id]
	if !ok {
		return ErrNotFound
	}
	e.Status = status
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.entries[id]; !ok {
		return ErrNotFound
	}
	delete(m.entries, id)
	return nil
}

func day(d int) time.Time {
	return time.Date(2024, 7, d, 0, 0, 0, 0, time.UTC)
}

func TestSchedule_DefaultsToPending(t *testing.T) {
	svc := NewService(newMockRepo(), zerolog.Nop())
	e := &Entry{PatientID: 1, DoctorID: 2, ScheduledFor: day(5)}
	require.NoError(t, svc.Schedule(context.Background(), e))
	assert.Equal(t, StatusPending, e.Status)
	assert.NotZero(t, e.ID)
}

func TestSchedule_Validation(t *testing.T) {
	tests := []struct {
		name string
		e    Entry
		want error
	}{
		{"no doctor", Entry{PatientID: 1, ScheduledFor: day(1)}, ErrInvalidEntry},
		{"no date", Entry{PatientID: 1, DoctorID: 2}, ErrInvalidEntry},
		{"bad status", Entry{PatientID: 1, DoctorID: 2, ScheduledFor: day(1), Status: "done"}, ErrInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockRepo()
			svc := NewService(repo, zerolog.Nop())
			e := tt.e
			assert.ErrorIs(t, svc.Schedule(context.Background(), &e), tt.want)
			assert.Empty(t, repo.entries)
		})
	}
}

func TestList_EarliestFirst(t *testing.T) {
	svc := NewService(newMockRepo(), zerolog.Nop())
	ctx := context.Background()
	for _, e := range []*Entry{
		{PatientID: 1, DoctorID: 2, ScheduledFor: day(20)},
		{PatientID: 3, DoctorID: 4, ScheduledFor: day(2)},
		{PatientID: 1, DoctorID: 4, ScheduledFor: day(9)},
	} {
		require.NoError(t, svc.Schedule(ctx, e))
	}

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []time.Time{day(2), day(9), day(20)}, []time.Time{all[0].ScheduledFor, all[1].ScheduledFor, all[2].ScheduledFor})

	ana, err := svc.ListByPatient(ctx, "ana")
	require.NoError(t, err)
	assert.Len(t, ana, 2)

	rojas, err := svc.ListByDoctor(ctx, 4)
	require.NoError(t, err)
	require.Len(t, rojas, 2)
	assert.Equal(t, day(2), rojas[0].ScheduledFor)
}

func TestUpdateStatus(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, zerolog.Nop())
	ctx := context.Background()
	e := &Entry{PatientID: 1, DoctorID: 2, ScheduledFor: day(5)}
	require.NoError(t, svc.Schedule(ctx, e))

	require.NoError(t, svc.UpdateStatus(ctx, e.ID, StatusCompleted))
	assert.Equal(t, StatusCompleted, repo.entries[e.ID].Status)

	assert.ErrorIs(t, svc.UpdateStatus(ctx, e.ID, "archived"), ErrInvalidStatus)
	assert.Equal(t, StatusCompleted, repo.entries[e.ID].Status)

	assert.ErrorIs(t, svc.UpdateStatus(ctx, 404, StatusCancelled), ErrNotFound)
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"pending", StatusPending, false},
		{" Completed ", StatusCompleted, false},
		{"CANCELLED", StatusCancelled, false},
		{"canceled", StatusCancelled, false},
		{"done", "", true},
	}
	for _, tt := range tests {
		got, err := ParseStatus(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidStatus, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestStoreFailure(t *testing.T) {
	repo := newMockRepo()
	repo.failWith = errors.New("timeout")
	svc := NewService(repo, zerolog.Nop())

	_, err := svc.List(context.Background())
	assert.ErrorIs(t, err, ErrStore)
}

func TestDelete(t *testing.T) {
	svc := NewService(newMockRepo(), zerolog.Nop())
	ctx := context.Background()
	e := &Entry{PatientID: 1, DoctorID: 2, ScheduledFor: day(5)}
	require.NoError(t, svc.Schedule(ctx, e))

	require.NoError(t, svc.Delete(ctx, e.ID))
	_, err := svc.Get(ctx, e.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
