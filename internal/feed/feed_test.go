package feed

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianoliveira/appfeed/internal/domain"
)

// pagedSource serves records in fixed-size pages using the index as cursor.
type pagedSource struct {
	records []domain.Notification
	calls   int
	failAt  int
}

func (s *pagedSource) FetchPage(_ context.Context, req domain.PageRequest) (domain.Page, error) {
	s.calls++
	if s.failAt > 0 && s.calls == s.failAt {
		return domain.Page{}, errors.New("upstream unavailable")
	}
	start := 0
	if req.Cursor != "" {
		if _, err := fmt.Sscanf(req.Cursor, "%d", &start); err != nil {
			return domain.Page{}, domain.ErrInvalidCursor
		}
	}
	end := start + req.NormalizedLimit()
	if end > len(s.records) {
		end = len(s.records)
	}
	page := domain.Page{Notifications: append([]domain.Notification(nil), s.records[start:end]...)}
	if end < len(s.records) {
		page.NextCursor = fmt.Sprint(end)
	}
	return page, nil
}

func deliver(t *testing.T, f *Feed, page domain.Page) {
	t.Helper()
	req, ok := f.LoadMore()
	require.True(t, ok)
	applied, err := f.Receive(Result{Request: req, Page: page})
	require.NoError(t, err)
	require.True(t, applied)
}

func TestFeed_PagesAccumulate(t *testing.T) {
	f := New(testScope, 2)
	assert.False(t, f.Started())

	deliver(t, f, domain.Page{Notifications: []domain.Notification{rec("1", false), rec("2", true)}, NextCursor: "2"})
	assert.Equal(t, []string{"1"}, ids(f.Unread()))
	assert.Equal(t, []string{"2"}, ids(f.Latest()))
	assert.Equal(t, Target{Bucket: BucketLatest, Index: 0, ID: "2"}, f.Trigger())

	deliver(t, f, domain.Page{Notifications: []domain.Notification{rec("3", false), rec("4", true)}})
	assert.Equal(t, []string{"1", "3"}, ids(f.Unread()))
	assert.Equal(t, []string{"2", "4"}, ids(f.Latest()))
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(f.Records()))
	assert.False(t, f.HasMore())

	_, ok := f.LoadMore()
	assert.False(t, ok)
}

func TestFeed_MarkReadKeepsItemInUnread(t *testing.T) {
	f := New(testScope, 10)
	deliver(t, f, domain.Page{Notifications: []domain.Notification{rec("1", false), rec("2", false), rec("3", true)}})

	require.True(t, f.MarkRead("1"))
	unread := f.Unread()
	assert.Equal(t, []string{"1", "2"}, ids(unread))
	assert.True(t, unread[0].IsRead)
	assert.Equal(t, []string{"3"}, ids(f.Latest()))

	assert.False(t, f.MarkRead("missing"))

	f.MarkAllRead()
	assert.Equal(t, []string{"1", "2"}, ids(f.Unread()))
	for _, n := range f.Unread() {
		assert.True(t, n.IsRead)
	}
}

func TestFeed_RedeliveredRecordReplacedInPlace(t *testing.T) {
	f := New(testScope, 10)
	deliver(t, f, domain.Page{Notifications: []domain.Notification{rec("1", false)}, NextCursor: "x"})
	f.MarkRead("1")

	updated := rec("1", false)
	updated.Title = "edited"
	deliver(t, f, domain.Page{Notifications: []domain.Notification{updated, rec("2", true)}})

	got, ok := f.Get("1")
	require.True(t, ok)
	assert.Equal(t, "edited", got.Title)
	assert.True(t, got.IsRead, "read state is monotonic")
	assert.Equal(t, []string{"1", "2"}, ids(f.Records()))
}

func TestFeed_SectionsHiddenWhileLoading(t *testing.T) {
	f := New(testScope, 10)
	deliver(t, f, domain.Page{Notifications: []domain.Notification{rec("1", false), rec("2", true)}, NextCursor: "x"})
	assert.Equal(t, Sections{Unread: true, Latest: true}, f.Sections())

	_, ok := f.LoadMore()
	require.True(t, ok)
	assert.True(t, f.IsLoading())
	assert.Equal(t, Sections{}, f.Sections())
}

func TestFeed_SetScopeDiscardsInFlightPage(t *testing.T) {
	f := New(testScope, 10)
	deliver(t, f, domain.Page{Notifications: []domain.Notification{rec("1", false)}, NextCursor: "x"})

	stale, ok := f.LoadMore()
	require.True(t, ok)

	other := domain.Scope{Account: testScope.Account, AppDomain: "other.example.com"}
	assert.True(t, f.SetScope(other))
	assert.False(t, f.SetScope(other))
	assert.Empty(t, f.Unread())
	assert.Empty(t, f.Latest())
	assert.False(t, f.IsLoading())

	applied, err := f.Receive(Result{Request: stale, Page: domain.Page{Notifications: []domain.Notification{rec("9", false)}}})
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Empty(t, f.Records())

	req, ok := f.LoadMore()
	require.True(t, ok)
	assert.Equal(t, other, req.Scope)
	assert.Equal(t, "", req.Cursor)
}

func TestFeed_ReceiveFailureLeavesBuckets(t *testing.T) {
	f := New(testScope, 10)
	deliver(t, f, domain.Page{Notifications: []domain.Notification{rec("1", false)}, NextCursor: "x"})

	req, _ := f.LoadMore()
	applied, err := f.Receive(Result{Request: req, Err: errors.New("boom")})
	assert.True(t, applied)
	require.Error(t, err)
	assert.False(t, f.IsLoading())
	assert.True(t, f.HasMore())
	assert.Equal(t, []string{"1"}, ids(f.Unread()))
}

func TestFeed_DropsForeignAndInvalidRecords(t *testing.T) {
	f := New(testScope, 10)
	foreign := rec("f", false)
	foreign.AppDomain = "other.example.com"
	deliver(t, f, domain.Page{Notifications: []domain.Notification{rec("", false), foreign, rec("1", true)}})

	assert.Equal(t, []string{"1"}, ids(f.Records()))
}

func TestFeed_Replace(t *testing.T) {
	f := New(testScope, 10)
	deliver(t, f, domain.Page{Notifications: []domain.Notification{rec("1", false)}})

	f.Replace([]domain.Notification{rec("1", true), rec("2", true)})
	assert.Equal(t, []string{"1"}, ids(f.Unread()))
	assert.Equal(t, []string{"2"}, ids(f.Latest()))
}

func TestFeed_Reload(t *testing.T) {
	f := New(testScope, 10)
	deliver(t, f, domain.Page{Notifications: []domain.Notification{rec("1", false)}})
	f.Reload()

	assert.Empty(t, f.Records())
	assert.True(t, f.HasMore())
	assert.Equal(t, testScope, f.Scope())
}

func TestFeed_Collect(t *testing.T) {
	src := &pagedSource{}
	for i := 0; i < 7; i++ {
		src.records = append(src.records, rec(fmt.Sprintf("n%d", i), i%2 == 0))
	}

	t.Run("bounded", func(t *testing.T) {
		f := New(testScope, 3)
		require.NoError(t, f.Collect(context.Background(), src, 2))
		assert.Len(t, f.Records(), 6)
		assert.True(t, f.HasMore())
	})

	t.Run("until exhausted", func(t *testing.T) {
		f := New(testScope, 3)
		require.NoError(t, f.Collect(context.Background(), src, 0))
		assert.Len(t, f.Records(), 7)
		assert.False(t, f.HasMore())
		assert.Equal(t, []string{"n1", "n3", "n5"}, ids(f.Unread()))
	})

	t.Run("failure", func(t *testing.T) {
		failing := &pagedSource{records: src.records, failAt: 2}
		f := New(testScope, 3)
		err := f.Collect(context.Background(), failing, 0)
		require.Error(t, err)
		assert.Len(t, f.Records(), 3)
		assert.False(t, f.IsLoading())
	})
}
