package models

import "time"

// CategoryCount is the number of links filed under one category.
type CategoryCount struct {
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
	Links      int    `json:"links"`
	Visits     int    `json:"visits"`
}

// DayCount is the number of visits on one calendar day (UTC).
type DayCount struct {
	Day    time.Time `json:"day"`
	Visits int       `json:"visits"`
}

// Stats summarizes how the collection is used.
type Stats struct {
	TotalLinks      int             `json:"total_links"`
	TotalCategories int             `json:"total_categories"`
	TotalVisits     int             `json:"total_visits"`
	Uncategorized   int             `json:"uncategorized"`
	NeverVisited    int             `json:"never_visited"`
	TopLinks        []*Link         `json:"top_links"`
	PerCategory     []CategoryCount `json:"per_category"`
	RecentVisits    []DayCount      `json:"recent_visits"`
}
