// Package access maps a user's role and premium flag to the permissions the
// API grants. It performs no I/O and is evaluated on every request.
package access

import "github.com/abhishekprajapati1/clavel-assignment/internal/models"

type Info struct {
	HasPremiumAccess bool
	CanDownload      bool
	CanScreenshot    bool
	UpgradeRequired  bool
	Role             models.UserRole
}

type Capability string

const (
	CapabilityDownload   Capability = "download"
	CapabilityScreenshot Capability = "screenshot"
)

func ParseCapability(s string) (Capability, bool) {
	switch Capability(s) {
	case CapabilityDownload, CapabilityScreenshot:
		return Capability(s), true
	}
	return "", false
}

func Compute(role models.UserRole, isPremium bool) Info {
	premium := role == models.UserRoleAdmin || isPremium
	return Info{
		HasPremiumAccess: premium,
		CanDownload:      premium,
		CanScreenshot:    premium,
		UpgradeRequired:  !premium,
		Role:             role,
	}
}

func ForUser(u models.User) Info {
	return Compute(u.Role, u.IsPremium)
}

func (i Info) Allows(c Capability) bool {
	switch c {
	case CapabilityDownload:
		return i.CanDownload
	case CapabilityScreenshot:
		return i.CanScreenshot
	}
	return false
}
