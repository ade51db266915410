package entity

import "time"

// DashboardStats aggregates the site-wide counters and the caller's own totals.
type DashboardStats struct {
	TotalUsers   int            `json:"totalUsers"`
	Site         map[string]int `json:"site"`
	MyGroups     int            `json:"myGroups"`
	JoinedGroups int            `json:"joinedGroups"`
	MyArticles   int            `json:"myArticles"`
	UpcomingMine int            `json:"upcomingMine"`
	GeneratedAt  time.Time      `json:"generatedAt"`
}

// Activity is one recorded user action against a backend resource.
type Activity struct {
	ID         string    `json:"id"`
	UserEmail  string    `json:"user_email"`
	Action     string    `json:"action"`
	Resource   string    `json:"resource"`
	ResourceID string    `json:"resource_id"`
	Outcome    string    `json:"outcome"`
	Detail     string    `json:"detail,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ImageFile is an image selected for upload.
type ImageFile struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}
