package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/abhishekprajapati1/clavel-assignment/internal/models"
)

// MemoryUserRepository is an in-process UserRepository used by tests and
// local tooling. It mirrors the SQL semantics, including the conditional
// premium flip.
type MemoryUserRepository struct {
	mu    sync.Mutex
	users map[string]models.User
	now   func() time.Time
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: map[string]models.User{}, now: time.Now}
}

func (r *MemoryUserRepository) Create(_ context.Context, user models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return ErrEmailTaken
		}
	}
	now := r.now()
	user.CreatedAt, user.UpdatedAt = now, now
	r.users[user.ID] = user
	return nil
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, ErrUserNotFound
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return u, nil
}

func (r *MemoryUserRepository) List(_ context.Context, limit, offset int) ([]models.User, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	if offset >= total {
		return []models.User{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *MemoryUserRepository) MarkVerified(_ context.Context, id string) error {
	return r.update(id, func(u *models.User) { u.IsVerified = true })
}

func (r *MemoryUserRepository) UpdatePassword(_ context.Context, id string, hash []byte) error {
	return r.update(id, func(u *models.User) { u.PasswordHash = hash })
}

func (r *MemoryUserRepository) SetActive(_ context.Context, id string, active bool) error {
	return r.update(id, func(u *models.User) { u.IsActive = active })
}

func (r *MemoryUserRepository) SetRole(_ context.Context, id string, role models.UserRole) error {
	if !role.Valid() {
		return fmt.Errorf("set role: unknown role %q", role)
	}
	return r.update(id, func(u *models.User) { u.Role = role })
}

func (r *MemoryUserRepository) SetStripeCustomer(_ context.Context, id, customerID string) error {
	return r.update(id, func(u *models.User) { u.StripeCustomerID = &customerID })
}

func (r *MemoryUserRepository) ActivatePremium(_ context.Context, id string, at time.Time) (time.Time, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return time.Time{}, false, ErrUserNotFound
	}
	if u.IsPremium {
		var existing time.Time
		if u.PremiumActivatedAt != nil {
			existing = *u.PremiumActivatedAt
		}
		return existing, false, nil
	}
	u.IsPremium = true
	u.PremiumActivatedAt = &at
	u.UpdatedAt = r.now()
	r.users[id] = u
	return at, true, nil
}

func (r *MemoryUserRepository) update(id string, fn func(*models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	fn(&u)
	u.UpdatedAt = r.now()
	r.users[id] = u
	return nil
}

type MemorySessionRepository struct {
	mu       sync.Mutex
	sessions map[string]models.Session
	seq      int
	order    map[string]int
	now      func() time.Time
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: map[string]models.Session{},
		order:    map[string]int{},
		now:      time.Now,
	}
}

func (r *MemorySessionRepository) Create(_ context.Context, session models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	session.IsActive = true
	session.LastActivity, session.CreatedAt, session.UpdatedAt = now, now, now
	r.sessions[session.ID] = session
	r.seq++
	r.order[session.ID] = r.seq
	return nil
}

func (r *MemorySessionRepository) GetByID(_ context.Context, id string) (models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return models.Session{}, ErrSessionNotFound
	}
	return s, nil
}

// ListByUser returns newest first. Creation order breaks ties between
// sessions created within the same clock tick.
func (r *MemorySessionRepository) ListByUser(_ context.Context, userID string) ([]models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Session
	for _, s := range r.sessions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return r.order[out[i].ID] > r.order[out[j].ID] })
	return out, nil
}

func (r *MemorySessionRepository) Touch(_ context.Context, sessionID string, ip string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return nil
	}
	now := r.now()
	s.LastActivity, s.UpdatedAt = now, now
	if ip != "" {
		s.IPAddress = &ip
	}
	r.sessions[sessionID] = s
	return nil
}

func (r *MemorySessionRepository) Revoke(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.deactivate(sessionID)
	return nil
}

func (r *MemorySessionRepository) RevokeForUser(_ context.Context, userID, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok || s.UserID != userID {
		return ErrSessionNotFound
	}
	r.deactivate(sessionID)
	return nil
}

func (r *MemorySessionRepository) RevokeAll(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, s := range r.sessions {
		if s.UserID == userID && s.IsActive {
			r.deactivate(id)
			n++
		}
	}
	return n, nil
}

func (r *MemorySessionRepository) Stats(_ context.Context, userID string) (models.SessionStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := models.NewSessionStats()
	for _, s := range r.sessions {
		if s.UserID == userID {
			stats.Add(s.DeviceInfo.Device, s.DeviceInfo.Browser, s.IsActive, 1)
		}
	}
	return stats, nil
}

func (r *MemorySessionRepository) ExpireIdle(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	var n int64
	for id, s := range r.sessions {
		if s.IsActive && (s.LastActivity.Before(before) || s.ExpiresAt.Before(now)) {
			r.deactivate(id)
			n++
		}
	}
	return n, nil
}

func (r *MemorySessionRepository) PurgeInactive(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, s := range r.sessions {
		if !s.IsActive && s.UpdatedAt.Before(before) {
			delete(r.sessions, id)
			delete(r.order, id)
			n++
		}
	}
	return n, nil
}

func (r *MemorySessionRepository) deactivate(id string) {
	s, ok := r.sessions[id]
	if !ok || !s.IsActive {
		return
	}
	s.IsActive = false
	s.UpdatedAt = r.now()
	r.sessions[id] = s
}

type MemoryPaymentRepository struct {
	mu       sync.Mutex
	payments map[string]models.Payment
}

func NewMemoryPaymentRepository() *MemoryPaymentRepository {
	return &MemoryPaymentRepository{payments: map[string]models.Payment{}}
}

func (r *MemoryPaymentRepository) Record(_ context.Context, payment models.Payment) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.payments[payment.SessionID]; ok {
		return false, nil
	}
	payment.CreatedAt = time.Now()
	r.payments[payment.SessionID] = payment
	return true, nil
}

func (r *MemoryPaymentRepository) GetBySession(_ context.Context, sessionID string) (models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.payments[sessionID]
	if !ok {
		return models.Payment{}, ErrPaymentNotFound
	}
	return p, nil
}
