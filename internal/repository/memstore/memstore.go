// Package memstore keeps practice data in process memory. It backs the
// "memory" database driver and the service tests.
package memstore

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/Erkezh/studypoint-edu/internal/evaluator"
	"github.com/Erkezh/studypoint-edu/internal/model"
	"github.com/Erkezh/studypoint-edu/internal/service"
	"github.com/Erkezh/studypoint-edu/internal/util"
)

type snapshotKey struct {
	learnerID uint
	skillID   uint
}

type dataset struct {
	sessions    map[string]*model.PracticeSession
	attempts    map[string][]model.PracticeAttempt
	snapshots   map[snapshotKey]model.ProgressSnapshot
	questions   map[uint]model.Question
	skills      map[uint]model.Skill
	assignments map[string]model.Assignment
	statuses    map[string]model.AssignmentStatus
	users       map[uint]model.User
	subs        map[uint]model.Subscription
	plugins     map[string]model.Plugin
	nextID      uint
}

func newDataset() *dataset {
	return &dataset{
		sessions:    map[string]*model.PracticeSession{},
		attempts:    map[string][]model.PracticeAttempt{},
		snapshots:   map[snapshotKey]model.ProgressSnapshot{},
		questions:   map[uint]model.Question{},
		skills:      map[uint]model.Skill{},
		assignments: map[string]model.Assignment{},
		statuses:    map[string]model.AssignmentStatus{},
		users:       map[uint]model.User{},
		subs:        map[uint]model.Subscription{},
		plugins:     map[string]model.Plugin{},
	}
}

// clone copies everything a transaction may write.
func (d *dataset) clone() *dataset {
	out := *d
	out.sessions = make(map[string]*model.PracticeSession, len(d.sessions))
	for k, v := range d.sessions {
		out.sessions[k] = v.Clone()
	}
	out.attempts = make(map[string][]model.PracticeAttempt, len(d.attempts))
	for k, v := range d.attempts {
		out.attempts[k] = slices.Clone(v)
	}
	out.snapshots = make(map[snapshotKey]model.ProgressSnapshot, len(d.snapshots))
	for k, v := range d.snapshots {
		out.snapshots[k] = v
	}
	out.statuses = make(map[string]model.AssignmentStatus, len(d.statuses))
	for k, v := range d.statuses {
		out.statuses[k] = v
	}
	return &out
}

// Store is an in-memory service.Store. Transactions are serialized and
// applied only when fn succeeds.
type Store struct {
	mu   sync.Mutex
	data *dataset
	now  func() time.Time
}

func New() *Store {
	return &Store{data: newDataset(), now: time.Now}
}

var _ service.Store = (*Store)(nil)

func (s *Store) Stores() service.Stores {
	return bind(&unit{store: s, data: func() *dataset { return s.data }, locking: true})
}

func (s *Store) Transaction(ctx context.Context, fn func(service.Stores) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(bind(&unit{store: s, data: func() *dataset { return work }})); err != nil {
		return err
	}
	s.data = work
	return nil
}

// unit is one view of the data, either direct (locking) or a transaction's
// private copy.
type unit struct {
	store   *Store
	data    func() *dataset
	locking bool
}

func (u *unit) with(fn func(d *dataset) error) error {
	if u.locking {
		u.store.mu.Lock()
		defer u.store.mu.Unlock()
	}
	return fn(u.data())
}

func bind(u *unit) service.Stores {
	return service.Stores{
		Sessions:    sessionStore{u},
		Questions:   questionStore{u},
		Skills:      skillStore{u},
		Assignments: assignmentStore{u},
		Plugins:     pluginStore{u},
		Learners:    learnerStore{u},
	}
}

type sessionStore struct{ u *unit }

func (s sessionStore) FindActive(_ context.Context, learnerID, skillID uint, _ bool) (*model.PracticeSession, error) {
	var found *model.PracticeSession
	err := s.u.with(func(d *dataset) error {
		for _, sess := range d.sessions {
			if sess.LearnerID != learnerID || sess.SkillID != skillID || sess.IsFinished() {
				continue
			}
			if found == nil || sess.StartedAt.After(found.StartedAt) {
				found = sess
			}
		}
		if found != nil {
			found = found.Clone()
		}
		return nil
	})
	return found, err
}

func (s sessionStore) FindByID(_ context.Context, id string, _ bool) (*model.PracticeSession, error) {
	var found *model.PracticeSession
	err := s.u.with(func(d *dataset) error {
		sess, ok := d.sessions[id]
		if !ok {
			return fmt.Errorf("%w: session %s", util.ErrNotFound, id)
		}
		found = sess.Clone()
		return nil
	})
	return found, err
}

func (s sessionStore) Create(_ context.Context, sess *model.PracticeSession) error {
	return s.u.with(func(d *dataset) error {
		if sess.ID == "" {
			sess.ID = model.GenerateUUID()
		}
		if _, ok := d.sessions[sess.ID]; ok {
			return fmt.Errorf("%w: session %s exists", util.ErrConflict, sess.ID)
		}
		now := s.u.store.now()
		sess.CreatedAt, sess.UpdatedAt = now, now
		d.sessions[sess.ID] = sess.Clone()
		return nil
	})
}

func (s sessionStore) Save(_ context.Context, sess *model.PracticeSession) error {
	return s.u.with(func(d *dataset) error {
		if _, ok := d.sessions[sess.ID]; !ok {
			return fmt.Errorf("%w: session %s", util.ErrNotFound, sess.ID)
		}
		sess.UpdatedAt = s.u.store.now()
		d.sessions[sess.ID] = sess.Clone()
		return nil
	})
}

func (s sessionStore) HasAttempt(_ context.Context, sessionID, questionRef string) (bool, error) {
	var found bool
	err := s.u.with(func(d *dataset) error {
		found = slices.ContainsFunc(d.attempts[sessionID], func(a model.PracticeAttempt) bool {
			return a.QuestionRef == questionRef
		})
		return nil
	})
	return found, err
}

func (s sessionStore) AddAttempt(_ context.Context, a *model.PracticeAttempt) error {
	return s.u.with(func(d *dataset) error {
		for _, existing := range d.attempts[a.SessionID] {
			if existing.QuestionRef == a.QuestionRef {
				return fmt.Errorf("%w: question %s already answered", util.ErrConflict, a.QuestionRef)
			}
		}
		if a.ID == "" {
			a.ID = model.GenerateUUID()
		}
		now := s.u.store.now()
		a.CreatedAt, a.UpdatedAt = now, now
		d.attempts[a.SessionID] = append(d.attempts[a.SessionID], *a)
		return nil
	})
}

func (s sessionStore) ListAttempts(_ context.Context, sessionID string) ([]model.PracticeAttempt, error) {
	var out []model.PracticeAttempt
	err := s.u.with(func(d *dataset) error {
		out = slices.Clone(d.attempts[sessionID])
		sort.SliceStable(out, func(i, j int) bool { return out[i].AnsweredAt.Before(out[j].AnsweredAt) })
		return nil
	})
	return out, err
}

func (s sessionStore) GetSnapshot(_ context.Context, learnerID, skillID uint) (*model.ProgressSnapshot, error) {
	var out *model.ProgressSnapshot
	err := s.u.with(func(d *dataset) error {
		if snap, ok := d.snapshots[snapshotKey{learnerID, skillID}]; ok {
			out = &snap
		}
		return nil
	})
	return out, err
}

func (s sessionStore) UpsertSnapshot(_ context.Context, snap *model.ProgressSnapshot) error {
	return s.u.with(func(d *dataset) error {
		now := s.u.store.now()
		if snap.CreatedAt.IsZero() {
			snap.CreatedAt = now
		}
		snap.UpdatedAt = now
		d.snapshots[snapshotKey{snap.LearnerID, snap.SkillID}] = *snap
		return nil
	})
}

type questionStore struct{ u *unit }

func (s questionStore) Get(_ context.Context, id uint) (*model.Question, error) {
	var out *model.Question
	err := s.u.with(func(d *dataset) error {
		q, ok := d.questions[id]
		if !ok {
			return fmt.Errorf("%w: question %d", util.ErrNotFound, id)
		}
		out = &q
		return nil
	})
	return out, err
}

func (s questionStore) Query(_ context.Context, skillID uint, levels []int, excludeIDs []uint, limit int) ([]model.Question, error) {
	var out []model.Question
	err := s.u.with(func(d *dataset) error {
		for _, q := range d.questions {
			if q.SkillID != skillID || !slices.Contains(levels, q.Level) || slices.Contains(excludeIDs, q.ID) {
				continue
			}
			out = append(out, q)
		}
		return nil
	})
	rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

type skillStore struct{ u *unit }

func (s skillStore) Get(_ context.Context, id uint) (*model.Skill, error) {
	var out *model.Skill
	err := s.u.with(func(d *dataset) error {
		sk, ok := d.skills[id]
		if !ok {
			return fmt.Errorf("%w: skill %d", util.ErrNotFound, id)
		}
		out = &sk
		return nil
	})
	return out, err
}

type assignmentStore struct{ u *unit }

func (s assignmentStore) ListActive(_ context.Context, learnerID, skillID uint) ([]model.AssignmentStatus, error) {
	var out []model.AssignmentStatus
	err := s.u.with(func(d *dataset) error {
		for _, st := range d.statuses {
			a, ok := d.assignments[st.AssignmentID]
			if !ok || st.StudentID != learnerID || a.SkillID != skillID || st.Status == model.AssignmentCompleted {
				continue
			}
			st.Assignment = a
			out = append(out, st)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return nil
	})
	return out, err
}

func (s assignmentStore) SaveStatus(_ context.Context, st *model.AssignmentStatus) error {
	return s.u.with(func(d *dataset) error {
		if _, ok := d.statuses[st.ID]; !ok {
			return fmt.Errorf("%w: assignment status %s", util.ErrNotFound, st.ID)
		}
		st.UpdatedAt = s.u.store.now()
		saved := *st
		saved.Assignment = model.Assignment{}
		d.statuses[st.ID] = saved
		return nil
	})
}

type learnerStore struct{ u *unit }

func (l learnerStore) Profile(_ context.Context, learnerID uint) (*service.LearnerProfile, error) {
	var p *service.LearnerProfile
	err := l.u.with(func(d *dataset) error {
		u, ok := d.users[learnerID]
		if !ok {
			return fmt.Errorf("%w: user %d", util.ErrNotFound, learnerID)
		}
		p = &service.LearnerProfile{ID: u.ID, Role: u.Role, GradeLevel: u.GradeLevel}
		if sub, ok := d.subs[learnerID]; ok {
			p.Subscription = &sub
		}
		return nil
	})
	return p, err
}

type pluginStore struct{ u *unit }

func (ps pluginStore) FindPlugin(_ context.Context, pluginID string) (*model.Plugin, error) {
	var p *model.Plugin
	err := ps.u.with(func(d *dataset) error {
		found, ok := d.plugins[pluginID]
		if !ok {
			return fmt.Errorf("%w: %s", evaluator.ErrPluginNotFound, pluginID)
		}
		p = &found
		return nil
	})
	return p, err
}

// Profile implements service.LearnerDirectory outside a transaction.
func (s *Store) Profile(ctx context.Context, learnerID uint) (*service.LearnerProfile, error) {
	return s.Stores().Learners.Profile(ctx, learnerID)
}

// FindPlugin implements evaluator.PluginLookup outside a transaction.
func (s *Store) FindPlugin(ctx context.Context, pluginID string) (*model.Plugin, error) {
	return s.Stores().Plugins.FindPlugin(ctx, pluginID)
}

func (s *Store) id(current uint) uint {
	if current != 0 {
		if current > s.data.nextID {
			s.data.nextID = current
		}
		return current
	}
	s.data.nextID++
	return s.data.nextID
}

func (s *Store) AddSkill(sk model.Skill) model.Skill {
	s.mu.Lock()
	defer s.mu.Unlock()
	sk.ID = s.id(sk.ID)
	s.data.skills[sk.ID] = sk
	return sk
}

func (s *Store) AddQuestion(q model.Question) model.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	q.ID = s.id(q.ID)
	if q.Level == 0 {
		q.Level = 1
	}
	s.data.questions[q.ID] = q
	return q
}

func (s *Store) AddUser(u model.User) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.id(u.ID)
	s.data.users[u.ID] = u
	return u
}

func (s *Store) AddSubscription(sub model.Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub.ID = s.id(sub.ID)
	s.data.subs[sub.UserID] = sub
}

func (s *Store) AddPlugin(p model.Plugin) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id(p.ID)
	s.data.plugins[p.PluginID] = p
}

// AddAssignment stores a and a NOT_STARTED status row for each student.
func (s *Store) AddAssignment(a model.Assignment, studentIDs ...uint) model.Assignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = model.GenerateUUID()
	}
	s.data.assignments[a.ID] = a
	for _, sid := range studentIDs {
		st := model.AssignmentStatus{
			UUIDBase:     model.UUIDBase{ID: model.GenerateUUID()},
			AssignmentID: a.ID,
			StudentID:    sid,
			Status:       model.AssignmentNotStarted,
		}
		s.data.statuses[st.ID] = st
	}
	return a
}

// AssignmentStatuses returns the student's rows for a, any status.
func (s *Store) AssignmentStatuses(studentID uint) []model.AssignmentStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.AssignmentStatus
	for _, st := range s.data.statuses {
		if st.StudentID == studentID {
			out = append(out, st)
		}
	}
	return out
}
