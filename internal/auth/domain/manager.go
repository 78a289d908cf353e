package domain

import "time"

type Status string

const (
	StatusRegular   Status = "regular"
	StatusSuperuser Status = "superuser"
)

type Manager struct {
	Username     string
	PasswordHash string
	Status       Status
	// SuperuserExpiry is the last calendar day on which superuser status
	// holds. Nil on a superuser means the grant never expires.
	SuperuserExpiry *time.Time
}

// Expired reports whether the manager is stored as superuser but the grant's
// last day is before today.
func (m Manager) Expired(today time.Time) bool {
	return m.Status == StatusSuperuser && m.SuperuserExpiry != nil && m.SuperuserExpiry.Before(today)
}

func (m Manager) IsSuperuser(today time.Time) bool {
	return m.Status == StatusSuperuser && !m.Expired(today)
}

// Downgrade resets an expired superuser to regular and reports whether it did.
func (m *Manager) Downgrade(today time.Time) bool {
	if !m.Expired(today) {
		return false
	}
	m.Status = StatusRegular
	m.SuperuserExpiry = nil
	return true
}

// Grant applies a privilege change. A nil expiry revokes.
func (m *Manager) Grant(expiry *time.Time) {
	if expiry == nil {
		m.Status = StatusRegular
		m.SuperuserExpiry = nil
		return
	}
	e := *expiry
	m.Status = StatusSuperuser
	m.SuperuserExpiry = &e
}

// Principal is the authenticated caller as seen by request handlers.
type Principal struct {
	Username string `json:"username"`
	Status   Status `json:"status"`
}
