package models

import "time"

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

func (r UserRole) Valid() bool {
	return r == UserRoleUser || r == UserRoleAdmin
}

type User struct {
	ID                 string
	Email              string
	PasswordHash       []byte
	FirstName          string
	LastName           string
	Role               UserRole
	IsActive           bool
	IsVerified         bool
	IsPremium          bool
	PremiumActivatedAt *time.Time
	StripeCustomerID   *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

type DeviceInfo struct {
	Browser   string
	OS        string
	Device    string
	UserAgent string
}

type Session struct {
	ID           string
	UserID       string
	DeviceInfo   DeviceInfo
	IPAddress    *string
	IsActive     bool
	LastActivity time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ExpiresAt    time.Time
}

type SessionStats struct {
	Total     int
	Active    int
	Inactive  int
	ByDevice  map[string]int
	ByBrowser map[string]int
}

func NewSessionStats() SessionStats {
	return SessionStats{
		ByDevice:  map[string]int{},
		ByBrowser: map[string]int{},
	}
}

func (s *SessionStats) Add(device, browser string, active bool, count int) {
	s.Total += count
	if active {
		s.Active += count
	} else {
		s.Inactive += count
	}
	s.ByDevice[device] += count
	s.ByBrowser[browser] += count
}
