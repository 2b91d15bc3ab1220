// Package broadcast delivers payloads to topic subscribers. The core
// only depends on contract.Gateway; this package provides the topic
// naming scheme plus two gateways: an in-process WebSocket hub and a
// Redis pub/sub bridge for multi-process deployments.
package broadcast

import (
	"fmt"

	"roomchat/domain"
)

func RoomPublicTopic(roomID domain.RoomID) string {
	return fmt.Sprintf("room/%d/public", roomID)
}

func RoomUsersTopic(roomID domain.RoomID) string {
	return fmt.Sprintf("room/%d/users", roomID)
}

func RoomPreviewsTopic(roomID domain.RoomID) string {
	return fmt.Sprintf("room/%d/previews", roomID)
}

func UserNotificationsTopic(userID domain.UserID) string {
	return fmt.Sprintf("user/%d/notifications", userID)
}
