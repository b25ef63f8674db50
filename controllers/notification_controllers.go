package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"

	"github.com/yeremiapane/reservation-app/models"
	"github.com/yeremiapane/reservation-app/utils"
)

type NotificationController struct {
	DB    *gorm.DB
	Clock clockwork.Clock
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db, Clock: clockwork.NewRealClock()}
}

// GetMyNotifications lists the caller's notifications, unread first.
func (nc *NotificationController) GetMyNotifications(c *gin.Context) {
	userID, _ := currentUser(c)

	query := nc.DB.Where("user_id = ?", userID)
	if c.Query("unread") == "true" {
		query = query.Where("read = ?", false)
	}

	var notifications []models.Notification
	if err := query.Order("read asc, created_at desc").Find(&notifications).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var unread int64
	nc.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).Count(&unread)

	utils.RespondJSON(c, http.StatusOK, "Your notifications", gin.H{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

func (nc *NotificationController) GetNotificationByID(c *gin.Context) {
	userID, _ := currentUser(c)

	var notification models.Notification
	if err := nc.DB.First(&notification, c.Param("notification_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if notification.UserID != userID {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notification detail", notification)
}

// MarkRead flags one notification as read and stamps the time.
func (nc *NotificationController) MarkRead(c *gin.Context) {
	userID, _ := currentUser(c)

	var notification models.Notification
	if err := nc.DB.First(&notification, c.Param("notification_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if notification.UserID != userID {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	if !notification.Read {
		now := nc.Clock.Now()
		notification.Read = true
		notification.ReadAt = &now
		if err := nc.DB.Save(&notification).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Notification marked as read", notification)
}

// MarkAllRead flags every unread notification of the caller.
func (nc *NotificationController) MarkAllRead(c *gin.Context) {
	userID, _ := currentUser(c)
	now := nc.Clock.Now()

	result := nc.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Updates(map[string]interface{}{"read": true, "read_at": now})
	if result.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, result.Error)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "All notifications marked as read", gin.H{
		"updated": result.RowsAffected,
	})
}

func (nc *NotificationController) DeleteNotification(c *gin.Context) {
	userID, _ := currentUser(c)

	var notification models.Notification
	if err := nc.DB.First(&notification, c.Param("notification_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if notification.UserID != userID {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	if err := nc.DB.Delete(&notification).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notification deleted", gin.H{"id": notification.ID})
}
