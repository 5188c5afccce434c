package models

import (
	"strings"
	"time"
)

type ViewType string

const (
	ViewTypeCard   ViewType = "card_view"
	ViewTypeDetail ViewType = "detail_view"
	ViewTypeLaunch ViewType = "launch"
)

// AnalyticsEvent records one view of an app. App name and category are
// copied at write time so history survives renames and deletes.
type AnalyticsEvent struct {
	ID          int       `json:"id"`
	AppID       *int      `json:"appId"`
	AppName     string    `json:"appName"`
	AppCategory string    `json:"appCategory"`
	ViewType    ViewType  `json:"viewType"`
	UserAgent   *string   `json:"userAgent"`
	SessionID   *string   `json:"sessionId"`
	IPAddress   *string   `json:"ipAddress"`
	CreatedAt   time.Time `json:"createdAt"`
}

type NewAnalyticsEvent struct {
	AppID       *int     `json:"appId" validate:"omitempty,min=1"`
	AppName     string   `json:"appName" validate:"required"`
	AppCategory string   `json:"appCategory" validate:"required"`
	ViewType    ViewType `json:"viewType" validate:"required,oneof=card_view detail_view launch"`
	UserAgent   *string  `json:"userAgent"`
	SessionID   *string  `json:"sessionId"`
	IPAddress   *string  `json:"ipAddress"`
}

func (in *NewAnalyticsEvent) Normalize() {
	in.AppName = strings.TrimSpace(in.AppName)
	in.AppCategory = strings.TrimSpace(in.AppCategory)
	in.UserAgent = optional(in.UserAgent)
	in.SessionID = optional(in.SessionID)
	in.IPAddress = optional(in.IPAddress)
}

func (in NewAnalyticsEvent) Build(id int, now time.Time) AnalyticsEvent {
	return AnalyticsEvent{
		ID:          id,
		AppID:       in.AppID,
		AppName:     in.AppName,
		AppCategory: in.AppCategory,
		ViewType:    in.ViewType,
		UserAgent:   in.UserAgent,
		SessionID:   in.SessionID,
		IPAddress:   in.IPAddress,
		CreatedAt:   now,
	}
}

type AppViews struct {
	AppID       *int   `json:"appId"`
	AppName     string `json:"appName"`
	AppCategory string `json:"appCategory"`
	Views       int    `json:"views"`
}

type CategoryViews struct {
	Category string `json:"category"`
	Views    int    `json:"views"`
}

// AnalyticsSummary aggregates the event log.
type AnalyticsSummary struct {
	TotalViews      int              `json:"totalViews"`
	UniqueSessions  int              `json:"uniqueSessions"`
	MostViewedApps  []AppViews       `json:"mostViewedApps"`
	ViewsByCategory []CategoryViews  `json:"viewsByCategory"`
	ViewsByType     map[ViewType]int `json:"viewsByType"`
	RecentEvents    []AnalyticsEvent `json:"recentEvents"`
}
