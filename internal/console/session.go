package console

import (
	"sync"

	"go.uber.org/zap"
)

// Credentials entered for one run. They live only in memory.
type Credentials struct {
	AccountID string
	Username  string
	Password  string
}

// Session is the state owned by a single run: the remote page, the
// credentials while signing in and the chosen scope.
type Session struct {
	remote        Remote
	creds         Credentials
	Region        RegionSelection
	ResourceTypes string

	closeOnce sync.Once
	closed    bool
}

func newSession(remote Remote, creds Credentials) *Session {
	return &Session{remote: remote, creds: creds}
}

// Username returns the signed-in user name.
func (s *Session) Username() string {
	return s.creds.Username
}

// forgetSecrets drops the password once it has been submitted.
func (s *Session) forgetSecrets() {
	s.creds.Password = ""
}

// release closes the remote exactly once. Close errors are logged only.
func (s *Session) release(logger *zap.Logger) {
	s.closeOnce.Do(func() {
		s.forgetSecrets()
		s.closed = true
		if err := s.remote.Close(); err != nil {
			logger.Warn("Failed to close browser session", zap.Error(err))
		}
	})
}

// Closed reports whether the remote has been released.
func (s *Session) Closed() bool {
	return s.closed
}
