package models

import "time"

// Pledge is one recorded commitment. Token is the client-supplied captcha
// token and doubles as the record key; the system treats it as unique per
// pledge with last-write-wins on collision.
type Pledge struct {
	Token     string
	Country   string
	Hours     float64
	Timestamp time.Time
}

// SummaryEntry is one row of the per-country aggregate view.
type SummaryEntry struct {
	Country string  `json:"country"`
	Hours   float64 `json:"hours"`
	Count   int64   `json:"count"`
}

// RecentEntry is one row of the most-recent-first activity feed.
type RecentEntry struct {
	Country string  `json:"country"`
	Hours   float64 `json:"hours"`
}

// PledgeRequest is the POST /api/pledge body.
type PledgeRequest struct {
	Token   string  `json:"token"`
	Country string  `json:"country"`
	Hours   float64 `json:"hours"`
}
