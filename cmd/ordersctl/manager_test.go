package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmehra2102/plasto-orders/internal/auth/domain"
)

func TestNewManager(t *testing.T) {
	today := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

	m, err := newManager("alice", "s3cret", false, 0, false, today)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRegular, m.Status)
	assert.Nil(t, m.SuperuserExpiry)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte("s3cret")))

	m, err = newManager("carol", "pw", true, 3, false, today)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuperuser, m.Status)
	require.NotNil(t, m.SuperuserExpiry)
	assert.Equal(t, today.AddDate(0, 0, 3), *m.SuperuserExpiry)

	m, err = newManager("root", "pw", false, 0, true, today)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuperuser, m.Status)
	assert.Nil(t, m.SuperuserExpiry)
	assert.True(t, m.IsSuperuser(today.AddDate(10, 0, 0)))

	_, err = newManager("bob", "pw", true, -1, false, today)
	assert.Error(t, err)
	_, err = newManager("bob", "", false, 0, false, today)
	assert.Error(t, err)
}

func TestNewClockUsesConfiguredZone(t *testing.T) {
	// 23:30 UTC on the 15th is already the 16th in Moscow.
	now := func() time.Time { return time.Date(2026, 10, 15, 23, 30, 0, 0, time.UTC) }

	clk, err := newClock("Europe/Moscow", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC), clk.Today())

	clk, err = newClock("UTC", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), clk.Today())

	_, err = newClock("Mars/Olympus", now)
	assert.Error(t, err)
}
