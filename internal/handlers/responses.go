package handlers

import (
	"time"

	"github.com/abhishekprajapati1/clavel-assignment/internal/access"
	"github.com/abhishekprajapati1/clavel-assignment/internal/models"
)

type userResponse struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	FirstName          string     `json:"first_name"`
	LastName           string     `json:"last_name"`
	Role               string     `json:"role"`
	IsActive           bool       `json:"is_active"`
	IsVerified         bool       `json:"is_verified"`
	IsPremium          bool       `json:"is_premium"`
	PremiumActivatedAt *time.Time `json:"premium_activated_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func toUserResponse(u models.User) userResponse {
	return userResponse{
		ID:                 u.ID,
		Email:              u.Email,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		Role:               string(u.Role),
		IsActive:           u.IsActive,
		IsVerified:         u.IsVerified,
		IsPremium:          u.IsPremium,
		PremiumActivatedAt: u.PremiumActivatedAt,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

type deviceInfoResponse struct {
	Browser   string `json:"browser"`
	OS        string `json:"os"`
	Device    string `json:"device"`
	UserAgent string `json:"user_agent"`
}

type sessionResponse struct {
	ID           string             `json:"id"`
	DeviceInfo   deviceInfoResponse `json:"device_info"`
	IPAddress    *string            `json:"ip_address"`
	IsActive     bool               `json:"is_active"`
	IsCurrent    bool               `json:"is_current"`
	LastActivity time.Time          `json:"last_activity"`
	CreatedAt    time.Time          `json:"created_at"`
	ExpiresAt    time.Time          `json:"expires_at"`
}

func toSessionResponse(s models.Session, currentID string) sessionResponse {
	return sessionResponse{
		ID: s.ID,
		DeviceInfo: deviceInfoResponse{
			Browser:   s.DeviceInfo.Browser,
			OS:        s.DeviceInfo.OS,
			Device:    s.DeviceInfo.Device,
			UserAgent: s.DeviceInfo.UserAgent,
		},
		IPAddress:    s.IPAddress,
		IsActive:     s.IsActive,
		IsCurrent:    s.ID == currentID,
		LastActivity: s.LastActivity,
		CreatedAt:    s.CreatedAt,
		ExpiresAt:    s.ExpiresAt,
	}
}

type sessionStatsResponse struct {
	TotalSessions    int            `json:"total_sessions"`
	ActiveSessions   int            `json:"active_sessions"`
	InactiveSessions int            `json:"inactive_sessions"`
	DeviceBreakdown  map[string]int `json:"device_breakdown"`
	BrowserBreakdown map[string]int `json:"browser_breakdown"`
}

type accessInfoResponse struct {
	HasPremiumAccess bool   `json:"has_premium_access"`
	CanDownload      bool   `json:"can_download"`
	CanScreenshot    bool   `json:"can_screenshot"`
	UpgradeRequired  bool   `json:"upgrade_required"`
	Role             string `json:"role"`
}

func toAccessInfoResponse(info access.Info) accessInfoResponse {
	return accessInfoResponse{
		HasPremiumAccess: info.HasPremiumAccess,
		CanDownload:      info.CanDownload,
		CanScreenshot:    info.CanScreenshot,
		UpgradeRequired:  info.UpgradeRequired,
		Role:             string(info.Role),
	}
}
