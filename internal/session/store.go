package session

import (
	"sync"
	"time"
)

// Credential is the access/refresh pair of the logged-in user.
type Credential struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Store holds at most one Credential. The pair is always replaced as a whole.
type Store struct {
	lock sync.RWMutex // protects cred
	cred *Credential
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Set(cred Credential) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.cred = &cred
}

func (s *Store) Get() (Credential, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.cred == nil {
		return Credential{}, false
	}
	return *s.cred, true
}

// AccessToken returns the current access token, if any.
func (s *Store) AccessToken() (string, bool) {
	cred, ok := s.Get()
	if !ok || cred.AccessToken == "" {
		return "", false
	}
	return cred.AccessToken, true
}

func (s *Store) Clear() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.cred = nil
}

// CompareAndSwap replaces the credential only while its access token is still
// accessToken. It reports whether the swap happened.
func (s *Store) CompareAndSwap(accessToken string, cred Credential) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.cred == nil || s.cred.AccessToken != accessToken {
		return false
	}
	s.cred = &cred
	return true
}

// ClearIf drops the credential only while its access token is still accessToken.
func (s *Store) ClearIf(accessToken string) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.cred == nil || s.cred.AccessToken != accessToken {
		return false
	}
	s.cred = nil
	return true
}
