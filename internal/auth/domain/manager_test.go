package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func ptr(t time.Time) *time.Time { return &t }

func TestSuperuserExpiry(t *testing.T) {
	today := day(2026, 5, 20)

	tests := []struct {
		name      string
		m         Manager
		superuser bool
		expired   bool
	}{
		{"regular", Manager{Status: StatusRegular}, false, false},
		{"permanent superuser", Manager{Status: StatusSuperuser}, true, false},
		{"expires today", Manager{Status: StatusSuperuser, SuperuserExpiry: ptr(today)}, true, false},
		{"expires tomorrow", Manager{Status: StatusSuperuser, SuperuserExpiry: ptr(today.AddDate(0, 0, 1))}, true, false},
		{"expired yesterday", Manager{Status: StatusSuperuser, SuperuserExpiry: ptr(today.AddDate(0, 0, -1))}, false, true},
		{"stale expiry on regular", Manager{Status: StatusRegular, SuperuserExpiry: ptr(today.AddDate(0, 0, 3))}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.superuser, tt.m.IsSuperuser(today))
			assert.Equal(t, tt.expired, tt.m.Expired(today))
		})
	}
}

func TestDowngrade(t *testing.T) {
	today := day(2026, 5, 20)
	m := Manager{Status: StatusSuperuser, SuperuserExpiry: ptr(today.AddDate(0, 0, -1))}

	assert.True(t, m.Downgrade(today))
	assert.Equal(t, StatusRegular, m.Status)
	assert.Nil(t, m.SuperuserExpiry)
	assert.False(t, m.Downgrade(today))
}

func TestGrant(t *testing.T) {
	today := day(2026, 5, 20)
	m := Manager{Status: StatusRegular}

	m.Grant(&today)
	assert.Equal(t, StatusSuperuser, m.Status)
	assert.Equal(t, today, *m.SuperuserExpiry)

	m.Grant(nil)
	assert.Equal(t, StatusRegular, m.Status)
	assert.Nil(t, m.SuperuserExpiry)
}
