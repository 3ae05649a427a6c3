package api

import (
	"net/http"
	"strconv"

	"github.com/okian/assessor/internal/domain/model"
	"github.com/okian/assessor/internal/domain/types"
)

const (
	defaultNotificationLimit = 20
	maxNotificationLimit     = 100
)

// NotificationFeed exposes recent pipeline notifications.
type NotificationFeed interface {
	RecentNotifications(limit int) []model.Notification
}

// NotificationsHandler serves the recent notification feed.
type NotificationsHandler struct {
	feed NotificationFeed
}

// NewNotificationsHandler creates a new notifications handler.
func NewNotificationsHandler(feed NotificationFeed) *NotificationsHandler {
	return &NotificationsHandler{feed: feed}
}

// HandleRecent handles GET /notifications?limit=N, newest first.
func (h *NotificationsHandler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	limit := defaultNotificationLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxNotificationLimit {
			writeError(w, http.StatusBadRequest, "invalid_limit", nil)
			return
		}
		limit = n
	}

	list := h.feed.RecentNotifications(limit)
	out := make([]types.Notification, 0, len(list))
	for _, n := range list {
		out = append(out, types.FromNotification(n))
	}
	writeJSON(w, http.StatusOK, out)
}
