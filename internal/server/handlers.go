package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cristianoliveira/appfeed/internal/api"
	"github.com/cristianoliveira/appfeed/internal/domain"
)

func (s *Server) handleListSubscriptions(c *gin.Context) {
	subs, err := s.store.ListSubscriptions(c.Request.Context(), accountOf(c))
	if err != nil {
		s.fail(c, "list subscriptions", err)
		return
	}
	c.JSON(http.StatusOK, api.SubscriptionList{Subscriptions: subs})
}

func (s *Server) handleGetSubscription(c *gin.Context) {
	sub, err := s.store.GetSubscription(c.Request.Context(), accountOf(c), c.Param("domain"))
	if err != nil {
		s.fail(c, "get subscription", err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (s *Server) handlePutSubscription(c *gin.Context) {
	var sub domain.Subscription
	if err := c.ShouldBindJSON(&sub); err != nil {
		badRequest(c, "invalid subscription body: %v", err)
		return
	}
	appDomain := c.Param("domain")
	if sub.AppDomain != "" && sub.AppDomain != appDomain {
		badRequest(c, "body app domain %q does not match path %q", sub.AppDomain, appDomain)
		return
	}
	sub.AppDomain = appDomain
	if err := sub.Validate(); err != nil {
		badRequest(c, "%v", err)
		return
	}
	if err := s.store.UpsertSubscription(c.Request.Context(), accountOf(c), sub); err != nil {
		s.fail(c, "upsert subscription", err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (s *Server) handleListNotifications(c *gin.Context) {
	req := domain.PageRequest{Scope: scopeOf(c), Cursor: c.Query("cursor")}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			badRequest(c, "limit must be a positive integer, got %q", raw)
			return
		}
		req.Limit = limit
	}
	page, err := s.store.FetchPage(c.Request.Context(), req)
	if err != nil {
		s.fail(c, "fetch page", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) handleSendNotification(c *gin.Context) {
	var n domain.Notification
	if err := c.ShouldBindJSON(&n); err != nil {
		badRequest(c, "invalid notification body: %v", err)
		return
	}
	scope := scopeOf(c)
	n.Account = scope.Account
	n.AppDomain = scope.AppDomain
	// a sender never creates an already-read notification
	n.IsRead = false

	created, err := s.store.AddNotification(c.Request.Context(), n)
	if err != nil {
		s.fail(c, "send notification", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) handleMarkRead(c *gin.Context) {
	id := c.Param("id")
	if err := s.store.MarkRead(c.Request.Context(), scopeOf(c), id); err != nil {
		s.fail(c, "mark read", err)
		return
	}
	c.JSON(http.StatusOK, api.MarkReadResponse{ID: id, IsRead: true})
}

func (s *Server) handleMarkAllRead(c *gin.Context) {
	n, err := s.store.MarkAllRead(c.Request.Context(), scopeOf(c))
	if err != nil {
		s.fail(c, "mark all read", err)
		return
	}
	c.JSON(http.StatusOK, api.MarkAllReadResponse{Updated: n})
}
