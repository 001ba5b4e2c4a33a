package state

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/cristianoliveira/appfeed/internal/domain"
	"github.com/cristianoliveira/appfeed/internal/errors"
	"github.com/cristianoliveira/appfeed/internal/feed"
	"github.com/cristianoliveira/appfeed/internal/logging"
	"github.com/cristianoliveira/appfeed/internal/tui/render"
)

const (
	defaultViewportWidth  = 80
	defaultViewportHeight = 20
	statusTTL             = 5 * time.Second
)

// Options configures a feed Model.
type Options struct {
	Account  string
	Domain   string
	PageSize int
	Backend  domain.FeedBackend
	// Context bounds every backend call issued by the model.
	Context context.Context
}

// rowSpan locates one rendered notification inside the viewport content.
type rowSpan struct {
	start int
	lines int
}

// Model is the bubbletea model for a single scrollable application feed.
type Model struct {
	ctx     context.Context
	backend domain.FeedBackend

	feed         *feed.Feed
	tracker      feed.VisibilityTracker
	subscription *domain.Subscription
	domains      []string

	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model
	keys     keyMap

	cursor int
	rows   []rowSpan
	follow bool
	width  int

	errorHandler *errors.TUIHandler
	now          func() time.Time
}

// New builds a model showing the feed of opts.Domain for opts.Account.
func New(opts Options) (*Model, error) {
	if opts.Backend == nil {
		return nil, fmt.Errorf("feed model: backend is required")
	}
	if strings.TrimSpace(opts.Domain) == "" {
		return nil, fmt.Errorf("feed model: app domain is required")
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		ctx:          ctx,
		backend:      opts.Backend,
		feed:         feed.New(domain.Scope{Account: opts.Account, AppDomain: opts.Domain}, opts.PageSize),
		viewport:     viewport.New(defaultViewportWidth, defaultViewportHeight),
		spinner:      sp,
		help:         help.New(),
		keys:         defaultKeyMap(),
		width:        defaultViewportWidth,
		errorHandler: errors.NewTUIHandler(nil),
		now:          time.Now,
	}
	m.refresh()
	return m, nil
}

// Init starts the spinner and requests the header metadata, the list of
// feeds to cycle through and the first page.
func (m *Model) Init() tea.Cmd {
	scope := m.feed.Scope()
	return tea.Batch(
		m.spinner.Tick,
		loadSubscription(m.ctx, m.backend, scope),
		listSubscriptions(m.ctx, m.backend, scope.Account),
		m.loadMore(),
	)
}

// Update handles messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case pageLoadedMsg:
		m.handlePage(msg)
	case subscriptionLoadedMsg:
		m.handleSubscription(msg)
	case subscriptionsListedMsg:
		m.handleSubscriptions(msg)
	case markedReadMsg:
		m.handleMarked(msg)
	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg))
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.refresh()
	if m.follow {
		m.scrollToCursor()
		m.follow = false
	}
	cmds = append(cmds, m.checkVisibility())
	return m, tea.Batch(cmds...)
}

// View renders header, feed and footer.
func (m *Model) View() string {
	state := m.feed.State()
	header := render.Header(render.HeaderState{
		Name:   m.subscription.DisplayName(),
		Domain: m.feed.Scope().AppDomain,
		Icon:   m.subscription.Icon(),
		Unread: unreadCount(state),
		Width:  m.width,
	})

	footer := render.FooterState{
		Loading: m.feed.IsLoading(),
		Spinner: m.spinner.View(),
		Started: m.feed.Started(),
		HasMore: m.feed.HasMore(),
		Help:    m.help.View(m.keys),
		Width:   m.width,
	}
	if status, ok := m.errorHandler.LatestWithin(statusTTL); ok {
		footer.Status = status.Text
		footer.StatusType = status.Type
	}
	return header + "\n" + m.viewport.View() + "\n" + render.Footer(footer)
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.viewport.Width = width
	m.viewport.Height = max(1, height-render.HeaderLines-render.FooterLines)
	m.help.Width = width
}

func (m *Model) handlePage(msg pageLoadedMsg) {
	applied, err := m.feed.Receive(msg.result)
	if !applied {
		return
	}
	if err != nil {
		errors.Report(m.errorHandler, "load page", err)
	}
}

func (m *Model) handleSubscription(msg subscriptionLoadedMsg) {
	if msg.scope != m.feed.Scope() {
		return
	}
	if msg.err != nil {
		if stderrors.Is(msg.err, domain.ErrSubscriptionNotFound) {
			m.errorHandler.Warning(errors.Describe(msg.err))
			return
		}
		errors.Report(m.errorHandler, "load subscription", msg.err)
		return
	}
	m.subscription = msg.sub
}

func (m *Model) handleSubscriptions(msg subscriptionsListedMsg) {
	if msg.err != nil {
		logging.Warn("listing subscriptions failed", "error", msg.err)
		return
	}
	m.domains = m.domains[:0]
	for _, sub := range msg.subs {
		m.domains = append(m.domains, sub.AppDomain)
	}
}

func (m *Model) handleMarked(msg markedReadMsg) {
	if msg.err != nil {
		errors.Report(m.errorHandler, "mark read", msg.err)
		return
	}
	if msg.all && msg.scope == m.feed.Scope() {
		m.errorHandler.Success(fmt.Sprintf("marked %d notifications read", msg.updated))
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(m.cursor + 1)
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(m.cursor - 1)
	case key.Matches(msg, m.keys.Top):
		m.moveCursor(0)
	case key.Matches(msg, m.keys.Bottom):
		m.moveCursor(m.feed.State().Len() - 1)
	case key.Matches(msg, m.keys.MarkRead):
		return m.markSelectedRead()
	case key.Matches(msg, m.keys.MarkAllRead):
		return m.markAllRead()
	case key.Matches(msg, m.keys.Reload):
		return m.reload()
	case key.Matches(msg, m.keys.NextFeed):
		return m.nextFeed()
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) moveCursor(to int) {
	m.cursor = to
	m.follow = true
}

func (m *Model) selected() (domain.Notification, bool) {
	state := m.feed.State()
	switch {
	case m.cursor < 0 || m.cursor >= state.Len():
		return domain.Notification{}, false
	case m.cursor < len(state.Unread):
		return state.Unread[m.cursor], true
	default:
		return state.Latest[m.cursor-len(state.Unread)], true
	}
}

func (m *Model) markSelectedRead() tea.Cmd {
	n, ok := m.selected()
	if !ok || n.IsRead {
		return nil
	}
	m.feed.MarkRead(n.ID)
	return markRead(m.ctx, m.backend, m.feed.Scope(), n.ID)
}

func (m *Model) markAllRead() tea.Cmd {
	if unreadCount(m.feed.State()) == 0 {
		m.errorHandler.Info("nothing to mark")
		return nil
	}
	m.feed.MarkAllRead()
	return markAllRead(m.ctx, m.backend, m.feed.Scope())
}

func (m *Model) reload() tea.Cmd {
	m.feed.Reload()
	m.restart()
	return m.loadMore()
}

func (m *Model) nextFeed() tea.Cmd {
	scope := m.feed.Scope()
	next := ""
	for i, d := range m.domains {
		if d == scope.AppDomain {
			next = m.domains[(i+1)%len(m.domains)]
			break
		}
	}
	if next == "" && len(m.domains) > 0 {
		next = m.domains[0]
	}
	if next == "" || next == scope.AppDomain {
		m.errorHandler.Info("no other subscriptions")
		return nil
	}

	scope.AppDomain = next
	m.feed.SetScope(scope)
	m.subscription = nil
	m.restart()
	return tea.Batch(loadSubscription(m.ctx, m.backend, scope), m.loadMore())
}

func (m *Model) restart() {
	m.tracker.Reset()
	m.cursor = 0
	m.viewport.GotoTop()
}

func (m *Model) loadMore() tea.Cmd {
	req, ok := m.feed.LoadMore()
	if !ok {
		return nil
	}
	return fetchPage(m.ctx, m.backend, req)
}

// refresh rebuilds the viewport content from the feed state and records
// where each notification row landed.
func (m *Model) refresh() {
	state := m.feed.State()
	total := state.Len()
	m.cursor = min(max(m.cursor, 0), max(total-1, 0))
	m.rows = m.rows[:0]

	var lines []string
	switch {
	case total == 0 && m.feed.IsLoading():
		lines = render.Skeleton(m.viewport.Width)
	case total == 0 && m.feed.Started():
		lines = []string{render.Empty()}
	}

	sections := m.feed.Sections()
	add := func(bucket feed.Bucket, show bool, items []domain.Notification, offset int) {
		if show {
			lines = append(lines, render.Section(bucket.String(), len(items)))
		}
		for i, n := range items {
			row := render.Row(render.RowState{
				Notification: n,
				Image:        m.subscription.ImageFor(n.Type),
				Selected:     offset+i == m.cursor,
				Width:        m.viewport.Width,
				Now:          m.now(),
			})
			m.rows = append(m.rows, rowSpan{start: len(lines), lines: len(row)})
			lines = append(lines, row...)
		}
	}
	add(feed.BucketUnread, sections.Unread, state.Unread, 0)
	if sections.Latest && len(state.Unread) > 0 {
		lines = append(lines, "")
	}
	add(feed.BucketLatest, sections.Latest, state.Latest, len(state.Unread))

	m.viewport.SetContent(strings.Join(lines, "\n"))
}

func (m *Model) scrollToCursor() {
	if m.cursor >= len(m.rows) {
		return
	}
	row := m.rows[m.cursor]
	switch {
	case m.cursor == 0:
		m.viewport.GotoTop()
	case row.start < m.viewport.YOffset:
		m.viewport.SetYOffset(row.start)
	case row.start+row.lines > m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(row.start + row.lines - m.viewport.Height)
	}
}

// checkVisibility observes the trigger row against the viewport and asks
// for the next page when it scrolls into view. Observations are skipped
// while a page is in flight so an appearance is not spent on a request the
// cursor would refuse.
func (m *Model) checkVisibility() tea.Cmd {
	if m.feed.IsLoading() {
		return nil
	}
	target := m.feed.Trigger()
	if !m.tracker.Observe(target.ID, m.targetVisible(target)) {
		return nil
	}
	logging.Debug("feed trigger visible", "scope", m.feed.Scope().String(), "id", target.ID)
	return m.loadMore()
}

func (m *Model) targetVisible(target feed.Target) bool {
	idx := target.Index
	switch target.Bucket {
	case feed.BucketUnread:
	case feed.BucketLatest:
		idx += len(m.feed.Unread())
	default:
		return false
	}
	if idx < 0 || idx >= len(m.rows) {
		return false
	}
	row := m.rows[idx]
	top := m.viewport.YOffset
	bottom := top + m.viewport.Height
	return row.start < bottom && row.start+row.lines > top
}

func unreadCount(state feed.State) int {
	count := 0
	for _, n := range state.Unread {
		if !n.IsRead {
			count++
		}
	}
	for _, n := range state.Latest {
		if !n.IsRead {
			count++
		}
	}
	return count
}
