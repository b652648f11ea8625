package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ANIKETSHETTY47/meters-dashboard/internal/domain"
	"github.com/ANIKETSHETTY47/meters-dashboard/internal/resolver"
)

type listCall struct{ limit, offset int }

// fakeAPI serves total meters; meter i lives in area "area-<i%areas>".
type fakeAPI struct {
	mu        sync.Mutex
	total     int
	areas     int
	listCalls []listCall
	deleted   []string
	listErr   error
	deleteErr error
	hook      func(offset int)
}

func (f *fakeAPI) ListMeters(ctx context.Context, limit, offset int) (*domain.MetersPage, error) {
	f.mu.Lock()
	f.listCalls = append(f.listCalls, listCall{limit, offset})
	err, hook := f.listErr, f.hook
	f.mu.Unlock()

	if hook != nil {
		hook(offset)
	}
	if err != nil {
		return nil, err
	}
	page := &domain.MetersPage{Count: f.total, Results: []domain.Meter{}}
	for i := offset; i < offset+limit && i < f.total; i++ {
		page.Results = append(page.Results, domain.Meter{
			ID:   fmt.Sprintf("m%d", i),
			Area: domain.AreaRef{ID: fmt.Sprintf("area-%d", i%f.areas)},
		})
	}
	return page, nil
}

func (f *fakeAPI) DeleteMeter(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAPI) calls() []listCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]listCall(nil), f.listCalls...)
}

type fakeAreas struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeAreas) Areas(ctx context.Context, id string) ([]domain.Address, error) {
	f.mu.Lock()
	f.calls = append(f.calls, id)
	f.mu.Unlock()
	return []domain.Address{{ID: id, House: domain.House{Address: "ул. Ленина, д. 1"}, StrNumber: "7"}}, nil
}

func newTestStore(api *fakeAPI) (*Store, *fakeAreas) {
	areas := &fakeAreas{}
	return New(api, resolver.New(areas, zerolog.Nop()), DefaultLimit, zerolog.Nop()), areas
}

func TestGoToPageSetsOffset(t *testing.T) {
	api := &fakeAPI{total: 195, areas: 5}
	s, _ := newTestStore(api)
	ctx := context.Background()

	_, err := s.FetchPage(ctx)
	require.NoError(t, err)
	totalPages := s.Cursor().TotalPages()
	require.Equal(t, 10, totalPages)

	for n := 1; n <= totalPages; n++ {
		_, err := s.GoToPage(ctx, n)
		require.NoError(t, err)
		_, err = s.FetchPage(ctx)
		require.NoError(t, err)

		assert.Equal(t, (n-1)*20, s.Cursor().Offset)
		assert.Equal(t, n, s.Cursor().Page())
		calls := api.calls()
		assert.Equal(t, listCall{20, (n - 1) * 20}, calls[len(calls)-1])
	}
}

func TestFetchPageLoadsMetersAndAddresses(t *testing.T) {
	api := &fakeAPI{total: 45, areas: 3}
	s, areas := newTestStore(api)

	var events []domain.Event
	s.Subscribe(func(ev domain.Event) { events = append(events, ev) })

	res, err := s.FetchPage(context.Background())
	require.NoError(t, err)

	st := s.Snapshot()
	assert.Len(t, st.Meters, 20)
	assert.Equal(t, 45, st.Cursor.Total)
	assert.Len(t, st.Addresses, 3)
	assert.Equal(t, []string{"area-0", "area-1", "area-2"}, areas.calls)
	assert.Len(t, res.Outcomes, 3)
	assert.Empty(t, resolver.Failed(res.Outcomes))

	require.Len(t, events, 4)
	assert.Equal(t, domain.EventPageLoaded, events[0].Kind)
	assert.Equal(t, 45, events[0].Total)
	for _, ev := range events[1:] {
		assert.Equal(t, domain.EventAddressResolved, ev.Kind)
	}
	assert.Equal(t, "area-2", events[3].SubjectID)
}

func TestFetchPageDeduplicatesAreaLookups(t *testing.T) {
	api := &fakeAPI{total: 3, areas: 2} // areas: area-0, area-1, area-0
	s, areas := newTestStore(api)

	_, err := s.FetchPage(context.Background())
	require.NoError(t, err)
	assert.Len(t, areas.calls, 2)
}

func TestFetchPageFailureKeepsState(t *testing.T) {
	api := &fakeAPI{total: 60, areas: 4}
	s, _ := newTestStore(api)
	ctx := context.Background()

	_, err := s.FetchPage(ctx)
	require.NoError(t, err)
	before := s.Snapshot()

	boom := errors.New("connection refused")
	api.listErr = boom

	_, err = s.GoToPage(ctx, 3)
	assert.ErrorIs(t, err, boom)

	after := s.Snapshot()
	assert.Equal(t, before.Meters, after.Meters)
	assert.Equal(t, before.Cursor, after.Cursor)
}

func TestDeleteRefetchesOnceAtSameOffset(t *testing.T) {
	api := &fakeAPI{total: 60, areas: 4}
	s, _ := newTestStore(api)
	ctx := context.Background()

	_, err := s.GoToPage(ctx, 2)
	require.NoError(t, err)
	before := len(api.calls())

	var kinds []domain.EventKind
	s.Subscribe(func(ev domain.Event) { kinds = append(kinds, ev.Kind) })

	_, err = s.DeleteMeter(ctx, "m25")
	require.NoError(t, err)

	calls := api.calls()
	require.Len(t, calls, before+1)
	assert.Equal(t, listCall{20, 20}, calls[len(calls)-1])
	assert.Equal(t, []string{"m25"}, api.deleted)
	require.NotEmpty(t, kinds)
	assert.Equal(t, domain.EventMeterDeleted, kinds[0])
	assert.Equal(t, domain.EventPageLoaded, kinds[1])
}

func TestDeleteFailureDoesNotRefetch(t *testing.T) {
	api := &fakeAPI{total: 10, areas: 2}
	s, _ := newTestStore(api)

	_, err := s.FetchPage(context.Background())
	require.NoError(t, err)

	api.deleteErr = errors.New("500 Internal Server Error")
	_, err = s.DeleteMeter(context.Background(), "m1")
	assert.ErrorIs(t, err, api.deleteErr)
	assert.ErrorIs(t, err, ErrDelete)
	assert.Len(t, api.calls(), 1)
}

func TestStalePageIsDiscarded(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	api := &fakeAPI{total: 100, areas: 3}
	api.hook = func(offset int) {
		if offset == 20 {
			close(entered)
			<-release
		}
	}
	s, _ := newTestStore(api)
	ctx := context.Background()

	errc := make(chan error, 1)
	go func() {
		_, err := s.GoToPage(ctx, 2)
		errc <- err
	}()
	<-entered

	_, err := s.GoToPage(ctx, 3)
	require.NoError(t, err)
	close(release)

	assert.ErrorIs(t, <-errc, ErrStalePage)
	st := s.Snapshot()
	assert.Equal(t, 40, st.Cursor.Offset)
	require.NotEmpty(t, st.Meters)
	assert.Equal(t, "m40", st.Meters[0].ID)
}

func TestFailedFetchRestoresShownPageWhileOlderFetchInFlight(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	api := &fakeAPI{total: 100, areas: 3}
	s, _ := newTestStore(api)
	ctx := context.Background()

	_, err := s.FetchPage(ctx)
	require.NoError(t, err)

	api.mu.Lock()
	api.hook = func(offset int) {
		if offset == 20 {
			close(entered)
			<-release
		}
	}
	api.mu.Unlock()

	errc := make(chan error, 1)
	go func() {
		_, err := s.GoToPage(ctx, 2)
		errc <- err
	}()
	<-entered

	boom := errors.New("connection reset")
	api.mu.Lock()
	api.listErr = boom
	api.mu.Unlock()

	_, err = s.GoToPage(ctx, 3)
	assert.ErrorIs(t, err, boom)
	close(release)

	assert.ErrorIs(t, <-errc, ErrStalePage)
	st := s.Snapshot()
	assert.Equal(t, 0, st.Cursor.Offset)
	require.NotEmpty(t, st.Meters)
	assert.Equal(t, "m0", st.Meters[0].ID)
}

func TestNextAndPrevPageStayInBounds(t *testing.T) {
	api := &fakeAPI{total: 41, areas: 2}
	s, _ := newTestStore(api)
	ctx := context.Background()

	moved, err := s.PrevPage(ctx)
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Empty(t, api.calls())

	_, err = s.FetchPage(ctx)
	require.NoError(t, err)

	for _, want := range []int{20, 40} {
		moved, err = s.NextPage(ctx)
		require.NoError(t, err)
		assert.True(t, moved)
		assert.Equal(t, want, s.Cursor().Offset)
	}

	moved, err = s.NextPage(ctx)
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Equal(t, 40, s.Cursor().Offset)

	moved, err = s.PrevPage(ctx)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, 20, s.Cursor().Offset)
}

func TestUnsubscribe(t *testing.T) {
	api := &fakeAPI{total: 1, areas: 1}
	s, _ := newTestStore(api)

	var a, b int
	stopA := s.Subscribe(func(domain.Event) { a++ })
	s.Subscribe(func(domain.Event) { b++ })

	_, err := s.FetchPage(context.Background())
	require.NoError(t, err)
	stopA()
	_, err = s.FetchPage(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, a)
	assert.Equal(t, 4, b)
}

func TestAddressBookGrowsAcrossPages(t *testing.T) {
	api := &fakeAPI{total: 40, areas: 40}
	s, _ := newTestStore(api)
	ctx := context.Background()

	_, err := s.GoToPage(ctx, 1)
	require.NoError(t, err)
	_, err = s.GoToPage(ctx, 2)
	require.NoError(t, err)

	assert.Len(t, s.Snapshot().Addresses, 40)
	_, ok := s.Address("area-3")
	assert.True(t, ok)
}
