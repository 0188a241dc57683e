package auth

import (
	"log"
	"time"
)

// NotificationPurger removes expired records owned by another package.
// The mess package implements it for old notifications.
type NotificationPurger interface {
	PurgeExpiredNotifications() (int64, error)
}

// Janitor periodically removes expired sessions, OAuth states and
// notifications in the background.
type Janitor struct {
	sessions *SessionStore
	states   *OAuthStateStore
	purgers  []NotificationPurger
	interval time.Duration
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewJanitor creates a new cleanup janitor
func NewJanitor(sessions *SessionStore, states *OAuthStateStore, interval time.Duration, purgers ...NotificationPurger) *Janitor {
	if interval == 0 {
		interval = time.Hour
	}
	return &Janitor{
		sessions: sessions,
		states:   states,
		purgers:  purgers,
		interval: interval,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start begins the periodic cleanup goroutine
func (j *Janitor) Start() {
	go func() {
		defer close(j.doneChan)
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		j.runOnce()
		for {
			select {
			case <-ticker.C:
				j.runOnce()
			case <-j.stopChan:
				return
			}
		}
	}()
	log.Printf("Cleanup janitor started (interval: %s)", j.interval)
}

// Stop signals the janitor to stop and waits for it to finish
func (j *Janitor) Stop() {
	close(j.stopChan)
	<-j.doneChan
	log.Println("Cleanup janitor stopped")
}

func (j *Janitor) runOnce() {
	if err := j.sessions.CleanupExpiredSessions(); err != nil {
		log.Printf("Error cleaning up expired sessions: %v", err)
	}
	if err := j.states.CleanupExpiredStates(); err != nil {
		log.Printf("Error cleaning up expired OAuth states: %v", err)
	}
	for _, p := range j.purgers {
		if n, err := p.PurgeExpiredNotifications(); err != nil {
			log.Printf("Error purging expired notifications: %v", err)
		} else if n > 0 {
			log.Printf("Purged %d expired notifications", n)
		}
	}
}
