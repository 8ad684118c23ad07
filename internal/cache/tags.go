package cache

import "fmt"

// Invalidation tags for the portal's cached views. Mutations call
// Invalidate with these exact tags; view handlers store under them.

func DashboardTag(userID uint) string {
	return fmt.Sprintf("dashboard:%d", userID)
}

func EventTag(eventID uint) string {
	return fmt.Sprintf("event:%d", eventID)
}

func NewsTag(newsID uint) string {
	return fmt.Sprintf("news:%d", newsID)
}
