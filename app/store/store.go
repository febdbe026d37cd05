// Package store keeps the job board state: jobs, users, applications and the current session.
// Everything is loaded from a key-value persistence.Storage once by Initialize, and every change
// is written back before it becomes visible in memory, so a failed write never leaves the two apart.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	log "github.com/go-pkgz/lgr"

	"github.com/umputun/jbapp/app/persistence"
)

// storage keys, one JSON document each
const (
	keyJobs         = "jobs"
	keyUsers        = "users"
	keyApplications = "applications"
	keyCurrentUser  = "current-user"
)

const dateLayout = "2006-01-02"

// Store is the job board data layer. It is not safe for concurrent use,
// callers invoke operations one at a time.
type Store struct {
	storage persistence.Storage
	now     func() time.Time

	jobs         []Job // most recent first
	users        []User
	applications []Application
	session      *User

	jobIDs  idGen
	userIDs idGen
	appIDs  idGen
}

// Option customizes Store
type Option func(s *Store)

// WithClock sets the time source used for ids and dates
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New makes a Store on top of storage. Initialize has to be called before use.
func New(storage persistence.Storage, opts ...Option) *Store {
	res := &Store{
		storage:      storage,
		now:          time.Now,
		jobs:         []Job{},
		users:        []User{},
		applications: []Application{},
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// Initialize loads all collections and the session from storage and returns the jobs.
// Unreadable collections fall back to defaults, a short job list is replaced by the sample catalog.
func (s *Store) Initialize() []Job {
	s.jobs = s.loadJobs()

	s.users = []User{}
	if users, ok := loadJSON[[]User](s.storage, keyUsers); ok && users != nil {
		s.users = users
	}

	s.applications = []Application{}
	if apps, ok := loadJSON[[]Application](s.storage, keyApplications); ok && apps != nil {
		s.applications = apps
	}

	s.jobIDs, s.userIDs, s.appIDs = idGen{}, idGen{}, idGen{}
	for _, j := range s.jobs {
		s.jobIDs.observe(j.ID)
	}
	for _, u := range s.users {
		s.userIDs.observe(u.ID)
	}
	for _, a := range s.applications {
		s.appIDs.observe(a.ID)
	}

	s.session = nil
	if u, ok := loadJSON[*User](s.storage, keyCurrentUser); ok && u != nil {
		s.restoreSession(*u)
	}

	log.Printf("[INFO] store initialized, jobs:%d, users:%d, applications:%d, signed in:%v",
		len(s.jobs), len(s.users), len(s.applications), s.session != nil)
	return slices.Clone(s.jobs)
}

// RegisterUser creates an account and signs it in. If the account is saved but the session is not,
// the new user is returned together with the error.
func (s *Store) RegisterUser(name, email, password, confirmPassword string) (User, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return User{}, fmt.Errorf("%w: name, email and password are required", ErrValidation)
	}
	if password != confirmPassword {
		return User{}, fmt.Errorf("%w: passwords do not match", ErrValidation)
	}
	if s.findUser(func(u User) bool { return u.Email == email }) != nil {
		return User{}, fmt.Errorf("%w: %s", ErrDuplicateEmail, email)
	}

	now := s.now()
	user := User{
		ID:         s.userIDs.next(now),
		Name:       name,
		Email:      email,
		Password:   password,
		DateJoined: now.UTC().Format(dateLayout),
	}

	users := append(slices.Clone(s.users), user)
	if err := s.save(keyUsers, users); err != nil {
		return User{}, err
	}
	s.users = users
	log.Printf("[INFO] registered user %d (%s)", user.ID, user.Email)

	if err := s.setSession(&user); err != nil {
		return user, err
	}
	return user, nil
}

// Authenticate signs in the user with exactly matching email and password.
// Unknown email and wrong password produce the same error.
func (s *Store) Authenticate(email, password string) (User, error) {
	u := s.findUser(func(u User) bool { return u.Email == email && u.Password == password })
	if u == nil {
		log.Printf("[DEBUG] failed sign in attempt for %q", email)
		return User{}, ErrInvalidCredentials
	}
	user := *u
	if err := s.setSession(&user); err != nil {
		return User{}, err
	}
	log.Printf("[INFO] user %d signed in", user.ID)
	return user, nil
}

// Logout clears the session
func (s *Store) Logout() error {
	if err := s.setSession(nil); err != nil {
		return err
	}
	log.Printf("[INFO] signed out")
	return nil
}

// CurrentUser returns the signed in user, if any
func (s *Store) CurrentUser() (User, bool) {
	if s.session == nil {
		return User{}, false
	}
	return *s.session, true
}

// PostJob validates req and adds a new job in front of the list
func (s *Store) PostJob(req JobRequest) (Job, error) {
	if s.session == nil {
		return Job{}, fmt.Errorf("%w: posting a job", ErrAuthRequired)
	}

	job := Job{
		Title:       strings.TrimSpace(req.Title),
		Company:     strings.TrimSpace(req.Company),
		Location:    strings.TrimSpace(req.Location),
		Salary:      strings.TrimSpace(req.Salary),
		StartDate:   strings.TrimSpace(req.StartDate),
		Description: strings.TrimSpace(req.Description),
	}
	if job.Title == "" || job.Company == "" {
		return Job{}, fmt.Errorf("%w: title and company are required", ErrValidation)
	}
	if p := strings.TrimSpace(req.Position); p != "" {
		pos, err := ParsePosition(p)
		if err != nil {
			return Job{}, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		job.Position = pos
	}
	if job.StartDate != "" {
		if _, err := time.Parse(dateLayout, job.StartDate); err != nil {
			return Job{}, fmt.Errorf("%w: invalid start date %q, expected YYYY-MM-DD", ErrValidation, job.StartDate)
		}
	}

	now := s.now()
	job.ID = s.jobIDs.next(now)
	job.DatePosted = now.UTC().Format(dateLayout)

	jobs := append([]Job{job}, s.jobs...)
	if err := s.save(keyJobs, jobs); err != nil {
		return Job{}, err
	}
	s.jobs = jobs
	log.Printf("[INFO] job %d %q at %q posted by user %d", job.ID, job.Title, job.Company, s.session.ID)
	return job, nil
}

// ApplyToJob records an application of the signed in user to jobID
func (s *Store) ApplyToJob(jobID int64) (Application, error) {
	if s.session == nil {
		return Application{}, fmt.Errorf("%w: applying for a job", ErrAuthRequired)
	}
	if _, ok := s.Job(jobID); !ok {
		return Application{}, fmt.Errorf("%w: %d", ErrNotFound, jobID)
	}
	userID := s.session.ID
	if s.HasApplied(jobID, userID) {
		return Application{}, fmt.Errorf("%w: job %d", ErrDuplicateApplication, jobID)
	}

	now := s.now()
	app := Application{
		ID:          s.appIDs.next(now),
		JobID:       jobID,
		UserID:      userID,
		DateApplied: now.UTC().Format(dateLayout),
		Status:      ApplicationStatus,
	}

	apps := append(slices.Clone(s.applications), app)
	if err := s.save(keyApplications, apps); err != nil {
		return Application{}, err
	}
	s.applications = apps
	log.Printf("[INFO] user %d applied for job %d", userID, jobID)
	return app, nil
}

// ListJobs returns jobs matching both filters, in the stored order.
// Empty positionFilter matches any position, otherwise it has to be equal.
// Empty searchTerm matches any job, otherwise it has to be a case-insensitive substring
// of title, company, description or location.
func (s *Store) ListJobs(searchTerm, positionFilter string) []Job {
	term := strings.ToLower(searchTerm)
	res := []Job{}
	for _, j := range s.jobs {
		if positionFilter != "" && string(j.Position) != positionFilter {
			continue
		}
		if term != "" && !matchTerm(j, term) {
			continue
		}
		res = append(res, j)
	}
	return res
}

// HasApplied checks if userID already applied for jobID
func (s *Store) HasApplied(jobID, userID int64) bool {
	for _, a := range s.applications {
		if a.JobID == jobID && a.UserID == userID {
			return true
		}
	}
	return false
}

// Job returns the job with given id
func (s *Store) Job(jobID int64) (Job, bool) {
	for _, j := range s.jobs {
		if j.ID == jobID {
			return j, true
		}
	}
	return Job{}, false
}

func matchTerm(j Job, term string) bool {
	for _, field := range []string{j.Title, j.Company, j.Description, j.Location} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func (s *Store) findUser(match func(u User) bool) *User {
	for i := range s.users {
		if match(s.users[i]) {
			return &s.users[i]
		}
	}
	return nil
}

// loadJobs reads stored jobs, replacing them with the sample catalog if there are too few
func (s *Store) loadJobs() []Job {
	jobs, _ := loadJSON[[]Job](s.storage, keyJobs)
	if len(jobs) >= minJobs {
		return jobs
	}

	seed, err := seedJobs()
	if err != nil {
		log.Printf("[ERROR] can't load sample jobs: %v", err)
		if jobs == nil {
			return []Job{}
		}
		return jobs
	}
	log.Printf("[INFO] %d stored jobs, replacing with %d sample jobs", len(jobs), len(seed))
	if err := s.save(keyJobs, seed); err != nil {
		log.Printf("[WARN] %v", err)
	}
	return seed
}

// restoreSession accepts the stored session only if its user still exists
func (s *Store) restoreSession(stored User) {
	u := s.findUser(func(u User) bool { return u.ID == stored.ID })
	if u == nil {
		log.Printf("[WARN] session references unknown user %d, signing out", stored.ID)
		if err := s.storage.Delete(keyCurrentUser); err != nil {
			log.Printf("[WARN] failed to clear stale session: %v", err)
		}
		return
	}
	user := *u
	s.session = &user
}

// setSession persists the session and then switches to it, nil signs out
func (s *Store) setSession(u *User) error {
	if u == nil {
		if err := s.storage.Delete(keyCurrentUser); err != nil {
			return fmt.Errorf("%w: failed to clear %s: %w", ErrStorage, keyCurrentUser, err)
		}
		s.session = nil
		return nil
	}
	if err := s.save(keyCurrentUser, u); err != nil {
		return err
	}
	user := *u
	s.session = &user
	return nil
}

func (s *Store) save(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: failed to encode %s: %w", ErrStorage, key, err)
	}
	if err := s.storage.Set(key, data); err != nil {
		return fmt.Errorf("%w: failed to save %s: %w", ErrStorage, key, err)
	}
	return nil
}

// loadJSON reads and decodes key. Any failure is logged and reported as not loaded.
func loadJSON[T any](storage persistence.Storage, key string) (res T, ok bool) {
	data, err := storage.Get(key)
	if errors.Is(err, persistence.ErrNotFound) {
		return res, false
	}
	if err != nil {
		log.Printf("[WARN] failed to read %s, using defaults: %v", key, err)
		return res, false
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		log.Printf("[WARN] failed to decode %s, using defaults: %v", key, err)
		return res, false
	}
	return v, true
}
