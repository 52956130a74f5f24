package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"farmstore/internal/notifications"
)

func ListNotifications(channel *notifications.Channel) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/notifications"
		defer handlePanic(c, route)

		snap := channel.Snapshot()

		pageStr := c.Query("page")
		limitStr := c.Query("limit")
		if pageStr == "" || limitStr == "" {
			c.JSON(http.StatusOK, snap)
			return
		}

		page, limit, err := parsePaginationParams(pageStr, limitStr)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		total := int64(len(snap.Notifications))
		start := (page - 1) * limit
		if start > total {
			start = total
		}
		end := start + limit
		if end > total {
			end = total
		}

		c.JSON(http.StatusOK, gin.H{
			"notifications": snap.Notifications[start:end],
			"unreadCount":   snap.UnreadCount,
			"pagination": gin.H{
				"page":  page,
				"limit": limit,
				"total": total,
			},
		})
	}
}

func MarkNotificationRead(channel *notifications.Channel) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/notifications/:id/read"
		defer handlePanic(c, route)

		if !channel.MarkAsRead(c.Param("id")) {
			respondWithError(c, http.StatusNotFound, route, "notification not found")
			return
		}
		c.JSON(http.StatusOK, gin.H{"unreadCount": channel.UnreadCount()})
	}
}

func MarkAllNotificationsRead(channel *notifications.Channel) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/notifications/read-all"
		defer handlePanic(c, route)

		channel.MarkAllAsRead()
		c.JSON(http.StatusOK, gin.H{"unreadCount": channel.UnreadCount()})
	}
}

func ClearNotifications(channel *notifications.Channel) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/notifications"
		defer handlePanic(c, route)

		channel.ClearNotifications()
		log.Printf("[%s] notification log cleared", route)
		c.JSON(http.StatusOK, gin.H{"message": "notifications cleared"})
	}
}

// NotificationsSocket streams the log and order alerts to a dashboard.
func NotificationsSocket(channel *notifications.Channel, hub *notifications.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/ws"

		if err := hub.Serve(c.Writer, c.Request, channel.Snapshot()); err != nil {
			log.Printf("[%s] websocket ended: %v", route, err)
		}
	}
}
