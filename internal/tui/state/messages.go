package state

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cristianoliveira/appfeed/internal/domain"
	"github.com/cristianoliveira/appfeed/internal/feed"
)

// pageLoadedMsg carries the outcome of one page fetch. Its request
// remembers the cursor generation, so results for a previous scope are
// recognised and dropped by the feed.
type pageLoadedMsg struct {
	result feed.Result
}

// subscriptionLoadedMsg carries the header metadata for scope.
type subscriptionLoadedMsg struct {
	scope domain.Scope
	sub   *domain.Subscription
	err   error
}

// subscriptionsListedMsg carries every subscription of the account, used to
// cycle between feeds.
type subscriptionsListedMsg struct {
	subs []domain.Subscription
	err  error
}

// markedReadMsg reports the server side of a mark-read action.
type markedReadMsg struct {
	scope   domain.Scope
	id      string
	all     bool
	updated int64
	err     error
}

func fetchPage(ctx context.Context, src domain.PageSource, req feed.Request) tea.Cmd {
	return func() tea.Msg {
		page, err := src.FetchPage(ctx, req.PageRequest)
		return pageLoadedMsg{result: feed.Result{Request: req, Page: page, Err: err}}
	}
}

func loadSubscription(ctx context.Context, lookup domain.SubscriptionLookup, scope domain.Scope) tea.Cmd {
	return func() tea.Msg {
		sub, err := lookup.GetSubscription(ctx, scope.Account, scope.AppDomain)
		return subscriptionLoadedMsg{scope: scope, sub: sub, err: err}
	}
}

func listSubscriptions(ctx context.Context, lookup domain.SubscriptionLookup, account string) tea.Cmd {
	return func() tea.Msg {
		subs, err := lookup.ListSubscriptions(ctx, account)
		return subscriptionsListedMsg{subs: subs, err: err}
	}
}

func markRead(ctx context.Context, marker domain.ReadMarker, scope domain.Scope, id string) tea.Cmd {
	return func() tea.Msg {
		err := marker.MarkRead(ctx, scope, id)
		return markedReadMsg{scope: scope, id: id, err: err}
	}
}

func markAllRead(ctx context.Context, marker domain.ReadMarker, scope domain.Scope) tea.Cmd {
	return func() tea.Msg {
		n, err := marker.MarkAllRead(ctx, scope)
		return markedReadMsg{scope: scope, all: true, updated: n, err: err}
	}
}
