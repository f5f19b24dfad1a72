package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSession_IsExpired(t *testing.T) {
	active := &Session{ExpiresAt: time.Now().Add(time.Hour)}
	assert.False(t, active.IsExpired())

	expired := &Session{ExpiresAt: time.Now().Add(-time.Hour)}
	assert.True(t, expired.IsExpired())
}

func TestSession_Touch(t *testing.T) {
	s := &Session{}
	s.Touch()
	assert.False(t, s.LastSeenAt.IsZero())
}

func TestSession_DisplayName(t *testing.T) {
	tests := []struct {
		name    string
		session Session
		want    string
	}{
		{
			name:    "device name wins",
			session: Session{DeviceName: "Dana's iPhone", Platform: "iOS"},
			want:    "Dana's iPhone",
		},
		{
			name:    "platform fallback",
			session: Session{Platform: "iOS"},
			want:    "iOS",
		},
		{
			name:    "client with version",
			session: Session{ClientName: "Novelreads iOS", ClientVersion: "1.2.0"},
			want:    "Novelreads iOS 1.2.0",
		},
		{
			name:    "client without version",
			session: Session{ClientName: "Novelreads Web"},
			want:    "Novelreads Web",
		},
		{
			name:    "nothing known",
			session: Session{},
			want:    "Unknown Device",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.session.DisplayName())
		})
	}
}
