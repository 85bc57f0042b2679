package persistence

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/mockdrill/mockdrill-go/internal/domain/entities"
	"github.com/mockdrill/mockdrill-go/internal/domain/errs"
)

// Store persists the four application documents (users, settings, drills,
// session) as JSON blobs in a KV backend. A single mutex serializes
// read-modify-write cycles so concurrent handlers never clobber each other's
// updates to the same document.
type Store struct {
	mu sync.Mutex
	kv KV
}

// NewStore wraps the given KV backend.
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// Close closes the underlying backend.
func (s *Store) Close() error {
	return s.kv.Close()
}

func (s *Store) load(key string, dest interface{}) (bool, error) {
	raw, ok, err := s.kv.Get(key)
	if err != nil {
		return false, err
	}
	if !ok || len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("corrupt document %q: %w", key, err)
	}
	return true, nil
}

func (s *Store) save(key string, src interface{}) error {
	raw, err := json.Marshal(src)
	if err != nil {
		return fmt.Errorf("marshal document %q: %w", key, err)
	}
	return s.kv.Set(key, raw)
}

// --- Settings ---

// GetSettings returns the stored operator settings. A missing document reads
// as the zero value.
func (s *Store) GetSettings() (entities.UserSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var settings entities.UserSettings
	if _, err := s.load(KeySettings, &settings); err != nil {
		return entities.UserSettings{}, err
	}
	return settings, nil
}

// SaveSettings deep-merges partial into the stored settings and persists the
// result. The merged settings are returned.
func (s *Store) SaveSettings(partial entities.UserSettings) (entities.UserSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var settings entities.UserSettings
	if _, err := s.load(KeySettings, &settings); err != nil {
		return entities.UserSettings{}, err
	}
	settings.Merge(partial)
	if err := s.save(KeySettings, settings); err != nil {
		return entities.UserSettings{}, err
	}
	return settings, nil
}

// --- Drills ---

// SaveDrill appends a drill record to the collection. Records are never
// replaced; each send creates a new entry.
func (s *Store) SaveDrill(record entities.DrillRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var drills []entities.DrillRecord
	if _, err := s.load(KeyDrills, &drills); err != nil {
		return err
	}
	drills = append(drills, record)
	return s.save(KeyDrills, drills)
}

// GetAllDrills returns every drill record in insertion order.
func (s *Store) GetAllDrills() ([]entities.DrillRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var drills []entities.DrillRecord
	if _, err := s.load(KeyDrills, &drills); err != nil {
		return nil, err
	}
	return drills, nil
}

// GetDrillByID returns the drill with the given id, or errs.ErrNotFound.
func (s *Store) GetDrillByID(id string) (entities.DrillRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var drills []entities.DrillRecord
	if _, err := s.load(KeyDrills, &drills); err != nil {
		return entities.DrillRecord{}, err
	}
	for _, d := range drills {
		if d.ID == id {
			return d, nil
		}
	}
	return entities.DrillRecord{}, fmt.Errorf("drill %q: %w", id, errs.ErrNotFound)
}

// UpdateDrillAnalytics applies a partial analytics update to one drill record
// and returns the updated record. Unknown ids return errs.ErrNotFound.
func (s *Store) UpdateDrillAnalytics(id string, patch entities.AnalyticsPatch) (entities.DrillRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var drills []entities.DrillRecord
	if _, err := s.load(KeyDrills, &drills); err != nil {
		return entities.DrillRecord{}, err
	}
	for i := range drills {
		if drills[i].ID != id {
			continue
		}
		drills[i].Analytics.Apply(patch)
		if err := s.save(KeyDrills, drills); err != nil {
			return entities.DrillRecord{}, err
		}
		return drills[i], nil
	}
	return entities.DrillRecord{}, fmt.Errorf("drill %q: %w", id, errs.ErrNotFound)
}

// GetDashboardStats aggregates the drill collection into dashboard numbers.
func (s *Store) GetDashboardStats() (entities.DashboardStats, error) {
	drills, err := s.GetAllDrills()
	if err != nil {
		return entities.DashboardStats{}, err
	}
	return entities.ComputeDashboardStats(drills), nil
}

// --- Users ---

// GetAllUsers returns the user directory in insertion order.
func (s *Store) GetAllUsers() ([]entities.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var users []entities.User
	if _, err := s.load(KeyUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// FindUserByEmail looks a user up case-insensitively.
func (s *Store) FindUserByEmail(email string) (entities.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var users []entities.User
	if _, err := s.load(KeyUsers, &users); err != nil {
		return entities.User{}, err
	}
	needle := strings.ToLower(email)
	for _, u := range users {
		if strings.ToLower(u.Email) == needle {
			return u, nil
		}
	}
	return entities.User{}, fmt.Errorf("user %q: %w", email, errs.ErrNotFound)
}

// AppendUser adds a user to the directory. Emails are unique
// case-insensitively; a duplicate returns errs.ErrAlreadyExists.
func (s *Store) AppendUser(user entities.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var users []entities.User
	if _, err := s.load(KeyUsers, &users); err != nil {
		return err
	}
	needle := strings.ToLower(user.Email)
	for _, u := range users {
		if strings.ToLower(u.Email) == needle {
			return fmt.Errorf("user %q: %w", user.Email, errs.ErrAlreadyExists)
		}
	}
	users = append(users, user)
	return s.save(KeyUsers, users)
}

// --- Session ---

// GetSession returns the current session, or errs.ErrNotFound when nobody is
// signed in.
func (s *Store) GetSession() (entities.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var session entities.Session
	ok, err := s.load(KeySession, &session)
	if err != nil {
		return entities.Session{}, err
	}
	if !ok {
		return entities.Session{}, errs.ErrNotFound
	}
	return session, nil
}

// SetSession records the signed-in user, replacing any previous session.
func (s *Store) SetSession(session entities.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(KeySession, session)
}

// ClearSession signs the current user out. Clearing an absent session is a
// no-op.
func (s *Store) ClearSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kv.Delete(KeySession)
}
