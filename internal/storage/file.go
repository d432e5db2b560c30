package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"github.com/Sh16coder/Trackitstudy/internal"
)

// FileStorage keeps everything in memory and persists to JSON files
// with debounced background saves. Good enough for a single instance;
// multi-instance deployments use the postgres or mongo backend.
type FileStorage struct {
	sessions         map[string]*internal.StudySession   // id -> session
	ownerIndex       map[string][]*internal.StudySession // ownerID -> sessions, date descending
	profiles         map[string]*internal.UserProfile    // userID -> profile
	codeIndex        map[string]string                   // shareCode -> userID
	mu               sync.RWMutex
	sessionsFile     string
	profilesFile     string
	saveSessionsChan chan struct{}
	saveProfilesChan chan struct{}
	shutdownChan     chan struct{}
	saveDelay        time.Duration
	logger           internal.Logger
}

func NewFileStorage(sessionsFile, profilesFile string, logger internal.Logger) (*FileStorage, error) {
	s := &FileStorage{
		sessions:         make(map[string]*internal.StudySession),
		ownerIndex:       make(map[string][]*internal.StudySession),
		profiles:         make(map[string]*internal.UserProfile),
		codeIndex:        make(map[string]string),
		sessionsFile:     sessionsFile,
		profilesFile:     profilesFile,
		saveSessionsChan: make(chan struct{}, 1),
		saveProfilesChan: make(chan struct{}, 1),
		shutdownChan:     make(chan struct{}),
		saveDelay:        500 * time.Millisecond,
		logger:           logger,
	}

	if err := s.loadSessions(); err != nil {
		logger.Errorf("storage: failed to load sessions: %v", err)
		return nil, err
	}
	if err := s.loadProfiles(); err != nil {
		logger.Errorf("storage: failed to load profiles: %v", err)
		return nil, err
	}

	go s.saveWorker(s.saveSessionsChan, s.saveSessions, "sessions")
	go s.saveWorker(s.saveProfilesChan, s.saveProfiles, "profiles")

	return s, nil
}

func (s *FileStorage) loadSessions() error {
	file, err := os.Open(s.sessionsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	var sessions []*internal.StudySession
	if err := json.NewDecoder(file).Decode(&sessions); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range sessions {
		s.sessions[sess.ID] = sess
		s.insertIntoIndex(sess)
	}
	return nil
}

func (s *FileStorage) loadProfiles() error {
	file, err := os.Open(s.profilesFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	var profiles []*internal.UserProfile
	if err := json.NewDecoder(file).Decode(&profiles); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range profiles {
		s.profiles[p.UserID] = p
		if p.ShareCode != "" {
			s.codeIndex[p.ShareCode] = p.UserID
		}
	}
	return nil
}

// insertIntoIndex keeps the owner's slice date descending, newest
// CreatedAt first within a day. Caller holds the write lock.
func (s *FileStorage) insertIntoIndex(sess *internal.StudySession) {
	owned := s.ownerIndex[sess.OwnerID]
	inserted := false
	for i, existing := range owned {
		if existing.Date < sess.Date ||
			(existing.Date == sess.Date && existing.CreatedAt.Before(sess.CreatedAt)) {
			owned = append(owned[:i], append([]*internal.StudySession{sess}, owned[i:]...)...)
			inserted = true
			break
		}
	}
	if !inserted {
		owned = append(owned, sess)
	}
	s.ownerIndex[sess.OwnerID] = owned
}

func atomicWriteFileJSON(filePath string, data interface{}) error {
	tempFile := filePath + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, filePath)
}

func (s *FileStorage) saveSessions() error {
	s.mu.RLock()
	sessions := make([]*internal.StudySession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.RUnlock()

	return atomicWriteFileJSON(s.sessionsFile, sessions)
}

func (s *FileStorage) saveProfiles() error {
	s.mu.RLock()
	profiles := make([]*internal.UserProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		profiles = append(profiles, p)
	}
	s.mu.RUnlock()

	return atomicWriteFileJSON(s.profilesFile, profiles)
}

// saveWorker batches writes so bursts of submissions hit the disk once.
func (s *FileStorage) saveWorker(signal chan struct{}, save func() error, what string) {
	timer := time.NewTimer(s.saveDelay)
	defer timer.Stop()

	for {
		select {
		case <-signal:
			timer.Reset(s.saveDelay)
		case <-timer.C:
			if err := save(); err != nil {
				s.logger.Errorf("storage: error saving %s: %v", what, err)
			}
		case <-s.shutdownChan:
			return
		}
	}
}

func (s *FileStorage) Close() error {
	close(s.shutdownChan)

	// Flush pending data synchronously on shutdown
	if err := s.saveSessions(); err != nil {
		return err
	}
	if err := s.saveProfiles(); err != nil {
		return err
	}
	return nil
}

// --- SessionRepository ---

func (s *FileStorage) SaveSession(ctx context.Context, sess *internal.StudySession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.ID] = sess
	s.insertIntoIndex(sess)

	select {
	case s.saveSessionsChan <- struct{}{}:
	default:
	}
	return nil
}

func (s *FileStorage) ListSessions(ctx context.Context, ownerID string, limit int) ([]internal.StudySession, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	owned, ok := s.ownerIndex[ownerID]
	if !ok {
		return []internal.StudySession{}, nil
	}
	if len(owned) > limit {
		owned = owned[:limit]
	}
	sessions := make([]internal.StudySession, len(owned))
	for i, sess := range owned {
		sessions[i] = *sess
	}
	return sessions, nil
}

// --- ProfileRepository ---

func (s *FileStorage) GetProfile(ctx context.Context, userID string) (*internal.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *FileStorage) MergeProfile(ctx context.Context, userID string, patch internal.ProfilePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		p = &internal.UserProfile{UserID: userID, CreatedAt: time.Now()}
		s.profiles[userID] = p
	}
	if patch.DisplayName != "" {
		p.DisplayName = patch.DisplayName
	}
	// A share code, once set, is never replaced.
	if patch.ShareCode != "" && p.ShareCode == "" {
		p.ShareCode = patch.ShareCode
		s.codeIndex[p.ShareCode] = userID
	}

	select {
	case s.saveProfilesChan <- struct{}{}:
	default:
	}
	return nil
}

func (s *FileStorage) FindProfileByShareCode(ctx context.Context, code string) (*internal.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.codeIndex[code]
	if !ok {
		return nil, ErrNotFound
	}
	p, ok := s.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *p
	return &copied, nil
}

// --- Compile-time assertions ---
var _ SessionRepository = (*FileStorage)(nil)
var _ ProfileRepository = (*FileStorage)(nil)
