package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Erkezh/studypoint-edu/internal/activity"
	"github.com/Erkezh/studypoint-edu/internal/evaluator"
	"github.com/Erkezh/studypoint-edu/internal/model"
	"github.com/Erkezh/studypoint-edu/internal/scoring"
	"github.com/Erkezh/studypoint-edu/internal/util"
	"github.com/Erkezh/studypoint-edu/pkg/event"
	"github.com/Erkezh/studypoint-edu/pkg/logger"
	"github.com/Erkezh/studypoint-edu/pkg/monitoring"
	"github.com/Erkezh/studypoint-edu/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// WrongStreakLimit 连错多少题结束会话
const WrongStreakLimit = 3

// PracticeDeps 构造 PracticeService 所需的依赖
type PracticeDeps struct {
	Store     Store
	Learners  LearnerDirectory
	Generator Generator
	Evaluator Evaluator
	Limiter   SubscriptionLimiter
	Publisher event.Publisher
	Logger    *zap.Logger
	Settings  Settings
	Now       func() time.Time
}

// PracticeService 练习会话状态机
type PracticeService struct {
	store     Store
	learners  LearnerDirectory
	generator Generator
	evaluator Evaluator
	limiter   SubscriptionLimiter
	publisher event.Publisher
	logger    *zap.Logger
	now       func() time.Time
	settings  atomic.Pointer[Settings]
}

func NewPracticeService(deps PracticeDeps) *PracticeService {
	s := &PracticeService{
		store:     deps.Store,
		learners:  deps.Learners,
		generator: deps.Generator,
		evaluator: deps.Evaluator,
		limiter:   deps.Limiter,
		publisher: deps.Publisher,
		logger:    deps.Logger,
		now:       deps.Now,
	}
	if s.limiter == nil {
		s.limiter = Unlimited{}
	}
	if s.publisher == nil {
		s.publisher = event.Discard{}
	}
	if s.logger == nil {
		s.logger = logger.Log
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	s.UpdateSettings(deps.Settings)
	return s
}

// UpdateSettings swaps the tunables used by subsequent calls.
func (s *PracticeService) UpdateSettings(settings Settings) {
	if settings.SessionExpiry <= 0 {
		settings.SessionExpiry = DefaultSessionExpiry
	}
	s.settings.Store(&settings)
}

func (s *PracticeService) Settings() Settings {
	return *s.settings.Load()
}

// SessionEvent 会话开始/结束事件
type SessionEvent struct {
	SessionID  string             `json:"sessionId"`
	LearnerID  uint               `json:"learnerId"`
	SkillID    uint               `json:"skillId"`
	SmartScore int                `json:"smartScore"`
	Reason     model.FinishReason `json:"reason,omitempty"`
}

// AttemptEvent 作答记录事件
type AttemptEvent struct {
	SessionID   string `json:"sessionId"`
	AttemptID   string `json:"attemptId"`
	LearnerID   uint   `json:"learnerId"`
	SkillID     uint   `json:"skillId"`
	QuestionRef string `json:"questionRef"`
	IsCorrect   bool   `json:"isCorrect"`
	ScoreBefore int    `json:"scoreBefore"`
	ScoreAfter  int    `json:"scoreAfter"`
	Delta       int    `json:"delta"`
}

type outgoing struct {
	eventType string
	payload   interface{}
}

func sessionEvent(eventType string, sess *model.PracticeSession) outgoing {
	return outgoing{eventType: eventType, payload: SessionEvent{
		SessionID:  sess.ID,
		LearnerID:  sess.LearnerID,
		SkillID:    sess.SkillID,
		SmartScore: sess.CurrentSmartScore,
		Reason:     sess.FinishReason,
	}}
}

// flush publishes events of a committed unit of work.
func (s *PracticeService) flush(events []outgoing) {
	for _, e := range events {
		switch e.eventType {
		case event.SessionStarted:
			monitoring.SessionsStarted.Inc()
		case event.SessionFinished:
			if p, ok := e.payload.(SessionEvent); ok {
				monitoring.SessionsFinished.WithLabelValues(string(p.Reason)).Inc()
			}
		}
		if err := s.publisher.Publish(e.eventType, e.payload); err != nil {
			s.logger.Warn("Failed to publish practice event", zap.String("type", e.eventType), zap.Error(err))
		}
	}
}

func (s *PracticeService) profile(ctx context.Context, learnerID uint) (*LearnerProfile, error) {
	if s.learners == nil {
		return &LearnerProfile{ID: learnerID, Role: model.Student}, nil
	}
	p, err := s.learners.Profile(ctx, learnerID)
	if errors.Is(err, util.ErrNotFound) {
		return &LearnerProfile{ID: learnerID, Role: model.Student}, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PracticeService) loadOwned(ctx context.Context, st Stores, learnerID uint, sessionID string, forUpdate bool) (*model.PracticeSession, error) {
	sess, err := st.Sessions.FindByID(ctx, sessionID, forUpdate)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, fmt.Errorf("%w: session %s", util.ErrNotFound, sessionID)
		}
		return nil, err
	}
	// 他人的会话按不存在处理
	if sess.LearnerID != learnerID {
		return nil, fmt.Errorf("%w: session %s", util.ErrNotFound, sessionID)
	}
	return sess, nil
}

// expire finishes an open session idle for longer than the session expiry.
func (s *PracticeService) expire(sess *model.PracticeSession, now time.Time) bool {
	if sess.IsFinished() || now.Sub(sess.LastActivityAt) <= s.Settings().SessionExpiry {
		return false
	}
	sess.Finish(now, model.FinishExpired)
	s.logger.Info("Practice session expired",
		zap.String("session_id", sess.ID),
		zap.Uint("learner_id", sess.LearnerID),
		zap.Time("last_activity_at", sess.LastActivityAt),
	)
	return true
}

// currentQuestion resolves the pending question for a view. A question that
// vanished from the bank is logged and shown as absent.
func (s *PracticeService) currentQuestion(ctx context.Context, st Stores, sess *model.PracticeSession) *PendingQuestion {
	if sess.IsFinished() || sess.PendingQuestionRef == "" {
		return nil
	}
	state := sess.State.Data()
	p, err := resolve(ctx, st, sess, &state, sess.PendingQuestionRef)
	if err != nil {
		s.logger.Warn("Pending question unavailable",
			zap.String("session_id", sess.ID),
			zap.String("question_ref", sess.PendingQuestionRef),
			zap.Error(err),
		)
		return nil
	}
	return p
}

// Start resumes the learner's open session on the skill or creates one.
func (s *PracticeService) Start(ctx context.Context, learnerID, skillID uint) (*SessionView, error) {
	ctx, span := tracing.Tracer().Start(ctx, "practice.Start")
	defer span.End()
	span.SetAttributes(attribute.Int64("learner_id", int64(learnerID)), attribute.Int64("skill_id", int64(skillID)))

	profile, err := s.profile(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var (
		view *SessionView
		out  []outgoing
	)
	err = s.store.Transaction(ctx, func(st Stores) error {
		out = nil

		skill, err := st.Skills.Get(ctx, skillID)
		if err != nil {
			return err
		}
		if !skill.IsPublished {
			return fmt.Errorf("%w: skill %d", util.ErrNotFound, skillID)
		}

		active, err := st.Sessions.FindActive(ctx, learnerID, skillID, true)
		if err != nil {
			return err
		}
		if active != nil {
			if !s.expire(active, now) {
				view = newSessionView(active, s.currentQuestion(ctx, st, active))
				return nil
			}
			if err := st.Sessions.Save(ctx, active); err != nil {
				return err
			}
			out = append(out, sessionEvent(event.SessionFinished, active))
		}

		sess := &model.PracticeSession{
			UUIDBase:                   model.UUIDBase{ID: model.GenerateUUID()},
			LearnerID:                  learnerID,
			SkillID:                    skillID,
			StartedAt:                  now,
			CurrentZone:                scoring.ZoneFor(scoring.MinScore),
			InactivityThresholdSeconds: activity.ThresholdForGrade(profile.GradeLevel),
			LastActivityAt:             now,
		}
		var state model.SessionState
		pending, err := s.nextQuestion(ctx, st, skill, sess, &state)
		if err != nil {
			return err
		}
		sess.PendingQuestionRef = pending.Ref
		sess.State = datatypes.NewJSONType(state)

		if err := st.Sessions.Create(ctx, sess); err != nil {
			return err
		}
		out = append(out, sessionEvent(event.SessionStarted, sess))
		view = newSessionView(sess, pending)

		s.logger.Info("Practice session started",
			zap.String("session_id", sess.ID),
			zap.Uint("learner_id", learnerID),
			zap.Uint("skill_id", skillID),
			zap.String("source", pending.Kind.String()),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.flush(out)
	return view, nil
}

// Get returns the session view.
func (s *PracticeService) Get(ctx context.Context, learnerID uint, sessionID string) (*SessionView, error) {
	ctx, span := tracing.Tracer().Start(ctx, "practice.Get")
	defer span.End()
	span.SetAttributes(attribute.String("session_id", sessionID))

	now := s.now()
	var (
		view *SessionView
		out  []outgoing
	)
	err := s.store.Transaction(ctx, func(st Stores) error {
		out = nil
		sess, err := s.loadOwned(ctx, st, learnerID, sessionID, true)
		if err != nil {
			return err
		}
		if s.expire(sess, now) {
			if err := st.Sessions.Save(ctx, sess); err != nil {
				return err
			}
			out = append(out, sessionEvent(event.SessionFinished, sess))
		}
		view = newSessionView(sess, s.currentQuestion(ctx, st, sess))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.flush(out)
	return view, nil
}

// Next returns the pending question while it is unanswered, otherwise
// selects a new one.
func (s *PracticeService) Next(ctx context.Context, learnerID uint, sessionID string) (*NextResult, error) {
	ctx, span := tracing.Tracer().Start(ctx, "practice.Next")
	defer span.End()
	span.SetAttributes(attribute.String("session_id", sessionID))

	now := s.now()
	var (
		result *NextResult
		out    []outgoing
	)
	err := s.store.Transaction(ctx, func(st Stores) error {
		out = nil
		sess, err := s.loadOwned(ctx, st, learnerID, sessionID, true)
		if err != nil {
			return err
		}
		if s.expire(sess, now) {
			out = append(out, sessionEvent(event.SessionFinished, sess))
			result = &NextResult{Finished: true}
			return st.Sessions.Save(ctx, sess)
		}
		if sess.IsFinished() {
			result = &NextResult{Finished: true}
			return nil
		}

		sess.ActiveTimeSeconds, sess.LastActivityAt = activity.Credit(
			sess.LastActivityAt, now, sess.InactivityThresholdSeconds, sess.ActiveTimeSeconds)

		if ref := sess.PendingQuestionRef; ref != "" {
			answered, err := st.Sessions.HasAttempt(ctx, sess.ID, ref)
			if err != nil {
				return err
			}
			if !answered {
				if p := s.currentQuestion(ctx, st, sess); p != nil {
					result = &NextResult{Question: p.View()}
					return st.Sessions.Save(ctx, sess)
				}
			}
		}

		skill, err := st.Skills.Get(ctx, sess.SkillID)
		if err != nil {
			return err
		}
		state := sess.State.Data().Clone()
		if IsGeneratedRef(sess.PendingQuestionRef) {
			delete(state.Generated, sess.PendingQuestionRef)
		}
		p, err := s.nextQuestion(ctx, st, skill, sess, &state)
		if err != nil {
			return err
		}
		sess.PendingQuestionRef = p.Ref
		sess.State = datatypes.NewJSONType(state)
		result = &NextResult{Question: p.View()}
		return st.Sessions.Save(ctx, sess)
	})
	if err != nil {
		return nil, err
	}

	s.flush(out)
	return result, nil
}

// Submit grades the answer to the pending question and advances the session.
// Every write of a submit commits together or not at all.
func (s *PracticeService) Submit(ctx context.Context, learnerID uint, sessionID string, req SubmitRequest) (*SubmitResult, error) {
	ctx, span := tracing.Tracer().Start(ctx, "practice.Submit")
	defer span.End()
	span.SetAttributes(attribute.String("session_id", sessionID), attribute.String("question_ref", req.QuestionRef))

	if strings.TrimSpace(req.QuestionRef) == "" {
		return nil, fmt.Errorf("%w: questionRef is required", util.ErrValidation)
	}
	if req.TimeSpentSec < 0 {
		return nil, fmt.Errorf("%w: timeSpentSec must not be negative", util.ErrValidation)
	}

	profile, err := s.profile(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var (
		result   *SubmitResult
		out      []outgoing
		expired  bool
		consumed bool
	)
	err = s.store.Transaction(ctx, func(st Stores) error {
		out = nil
		sess, err := s.loadOwned(ctx, st, learnerID, sessionID, true)
		if err != nil {
			return err
		}
		if s.expire(sess, now) {
			// 过期结束需要提交，再向调用方报告冲突
			expired = true
			out = append(out, sessionEvent(event.SessionFinished, sess))
			return st.Sessions.Save(ctx, sess)
		}
		if sess.IsFinished() {
			return fmt.Errorf("%w: session already finished", util.ErrConflict)
		}
		if sess.PendingQuestionRef == "" || req.QuestionRef != sess.PendingQuestionRef {
			return fmt.Errorf("%w: question %s is not the pending question", util.ErrConflict, req.QuestionRef)
		}
		answered, err := st.Sessions.HasAttempt(ctx, sess.ID, req.QuestionRef)
		if err != nil {
			return err
		}
		if answered {
			return fmt.Errorf("%w: question %s already answered", util.ErrConflict, req.QuestionRef)
		}

		state := sess.State.Data().Clone()
		pending, err := resolve(ctx, st, sess, &state, req.QuestionRef)
		if err != nil {
			return err
		}
		snap := pending.Snapshot()

		if err := ValidateAnswer(snap.Type, req.SubmittedAnswer); err != nil {
			return err
		}
		correct, explanation, err := s.grade(ctx, st, snap, req.SubmittedAnswer)
		if err != nil {
			return err
		}

		if err := s.limiter.Consume(ctx, profile); err != nil {
			return err
		}
		consumed = true

		scoreBefore, zoneBefore := sess.CurrentSmartScore, sess.CurrentZone
		res := scoring.Compute(scoring.Input{
			Score:         scoreBefore,
			Zone:          zoneBefore,
			Level:         snap.Level,
			Correct:       correct,
			CorrectStreak: sess.CurrentStreakCorrect,
			WrongStreak:   sess.WrongStreak,
		})
		sess.ActiveTimeSeconds, sess.LastActivityAt = activity.Credit(
			sess.LastActivityAt, now, sess.InactivityThresholdSeconds, sess.ActiveTimeSeconds)

		attempt := &model.PracticeAttempt{
			UUIDBase:        model.UUIDBase{ID: model.GenerateUUID()},
			SessionID:       sess.ID,
			QuestionRef:     pending.Ref,
			LearnerID:       learnerID,
			SkillID:         sess.SkillID,
			QuestionID:      pending.QuestionID(),
			Level:           snap.Level,
			Question:        datatypes.NewJSONType(snap),
			SubmittedAnswer: datatypes.JSONMap(req.SubmittedAnswer),
			IsCorrect:       correct,
			ScoreBefore:     scoreBefore,
			ScoreAfter:      res.Score,
			ZoneBefore:      zoneBefore,
			ZoneAfter:       res.Zone,
			Delta:           res.Delta,
			TimeSpentSec:    req.TimeSpentSec,
			AnsweredAt:      now,
		}
		if err := st.Sessions.AddAttempt(ctx, attempt); err != nil {
			return err
		}

		sess.QuestionsAnswered++
		if correct {
			sess.CorrectCount++
		} else {
			sess.IncorrectCount++
		}
		sess.CurrentSmartScore = res.Score
		sess.BestSmartScore = max(sess.BestSmartScore, res.Score)
		sess.CurrentStreakCorrect = res.CorrectStreak
		sess.MaxStreakCorrect = max(sess.MaxStreakCorrect, res.CorrectStreak)
		sess.WrongStreak = res.WrongStreak
		sess.CurrentZone = res.Zone

		state.Window.Record(correct)
		if res.Zone == model.ZoneChallenge && state.EnteredChallengeAt == nil {
			entered := now
			state.EnteredChallengeAt = &entered
		}
		if pending.Kind == SourceGenerated {
			delete(state.Generated, pending.Ref)
		}
		sess.PendingQuestionRef = ""

		var (
			next            *PendingQuestion
			nextUnavailable bool
		)
		switch {
		case sess.WrongStreak >= WrongStreakLimit:
			sess.Finish(now, model.FinishWrongStreak)
		case sess.CurrentSmartScore >= scoring.MaxScore:
			sess.Finish(now, model.FinishMastered)
		default:
			next, err = s.eagerNext(ctx, st, sess, &state)
			if err != nil {
				// 作答照常提交，下一题留给 Next 重试
				nextUnavailable = true
				log := s.logger.Warn
				if errors.Is(err, util.ErrConfiguration) {
					log = s.logger.Error
				}
				log("Failed to select next question after submit",
					zap.String("session_id", sess.ID),
					zap.Uint("skill_id", sess.SkillID),
					zap.Error(err),
				)
			} else {
				sess.PendingQuestionRef = next.Ref
			}
		}
		sess.State = datatypes.NewJSONType(state)

		progress, err := st.Sessions.GetSnapshot(ctx, learnerID, sess.SkillID)
		if err != nil {
			return err
		}
		if progress == nil {
			progress = &model.ProgressSnapshot{LearnerID: learnerID, SkillID: sess.SkillID}
		}
		progress.Record(sess.CurrentSmartScore, correct, req.TimeSpentSec, now)
		if err := st.Sessions.UpsertSnapshot(ctx, progress); err != nil {
			return err
		}

		statuses, err := st.Assignments.ListActive(ctx, learnerID, sess.SkillID)
		if err != nil {
			return err
		}
		for i := range statuses {
			statuses[i].Apply(sess.CurrentSmartScore, sess.BestSmartScore, req.TimeSpentSec, now)
			if err := st.Assignments.SaveStatus(ctx, &statuses[i]); err != nil {
				return err
			}
		}

		if err := st.Sessions.Save(ctx, sess); err != nil {
			return err
		}

		out = append(out, outgoing{eventType: event.AttemptRecorded, payload: AttemptEvent{
			SessionID:   sess.ID,
			AttemptID:   attempt.ID,
			LearnerID:   learnerID,
			SkillID:     sess.SkillID,
			QuestionRef: attempt.QuestionRef,
			IsCorrect:   correct,
			ScoreBefore: scoreBefore,
			ScoreAfter:  res.Score,
			Delta:       res.Delta,
		}})
		if sess.IsFinished() {
			out = append(out, sessionEvent(event.SessionFinished, sess))
			s.logger.Info("Practice session finished",
				zap.String("session_id", sess.ID),
				zap.Uint("learner_id", learnerID),
				zap.Int("score", sess.CurrentSmartScore),
				zap.String("reason", string(sess.FinishReason)),
			)
		}

		result = &SubmitResult{
			IsCorrect:    correct,
			Delta:        res.Delta,
			Session:      newSessionView(sess, next),
			Finished:        sess.IsFinished(),
			FinishReason:    sess.FinishReason,
			NextUnavailable: nextUnavailable,
		}
		if !correct {
			result.Explanation = explanation
		}
		if next != nil {
			result.NextQuestion = next.View()
		}
		return nil
	})
	if err != nil {
		if consumed {
			s.limiter.Refund(ctx, profile)
		}
		return nil, err
	}

	s.flush(out)
	if expired {
		return nil, fmt.Errorf("%w: session expired", util.ErrConflict)
	}
	monitoring.ObserveAttempt(result.IsCorrect, result.Session.CurrentSmartScore)
	return result, nil
}

func (s *PracticeService) eagerNext(ctx context.Context, st Stores, sess *model.PracticeSession, state *model.SessionState) (*PendingQuestion, error) {
	skill, err := st.Skills.Get(ctx, sess.SkillID)
	if err != nil {
		return nil, err
	}
	return s.nextQuestion(ctx, st, skill, sess, state)
}

// grade returns correctness and the explanation to show on a miss.
func (s *PracticeService) grade(ctx context.Context, st Stores, snap model.QuestionSnapshot, answer map[string]any) (bool, string, error) {
	switch snap.Type {
	case model.QuestionPlugin, model.QuestionInteractive:
		pluginID, _ := snap.Data["plugin_id"].(string)
		if pluginID == "" {
			return false, "", fmt.Errorf("%w: question %s has no plugin_id", util.ErrValidation, snap.Ref)
		}
		if s.evaluator == nil {
			return false, "", fmt.Errorf("%w: no evaluator for plugin %s", util.ErrConfiguration, pluginID)
		}
		res, err := s.evaluator.Evaluate(ctx, st.Plugins, pluginID, answer)
		if err != nil {
			if errors.Is(err, evaluator.ErrPluginNotFound) {
				return false, "", fmt.Errorf("%w: %v", util.ErrNotFound, err)
			}
			return false, "", err
		}
		explanation := res.Explanation
		if explanation == "" {
			explanation = snap.Explanation
		}
		return res.Correct, explanation, nil
	default:
		return IsCorrect(snap.Type, snap.Data, snap.CorrectAnswer, answer), snap.Explanation, nil
	}
}

// Heartbeat credits active time without touching anything else.
func (s *PracticeService) Heartbeat(ctx context.Context, learnerID uint, sessionID string) (*SessionView, error) {
	ctx, span := tracing.Tracer().Start(ctx, "practice.Heartbeat")
	defer span.End()
	span.SetAttributes(attribute.String("session_id", sessionID))

	now := s.now()
	var (
		view *SessionView
		out  []outgoing
	)
	err := s.store.Transaction(ctx, func(st Stores) error {
		out = nil
		sess, err := s.loadOwned(ctx, st, learnerID, sessionID, true)
		if err != nil {
			return err
		}
		if s.expire(sess, now) {
			out = append(out, sessionEvent(event.SessionFinished, sess))
			view = newSessionView(sess, nil)
			return st.Sessions.Save(ctx, sess)
		}
		if sess.IsFinished() {
			view = newSessionView(sess, nil)
			return nil
		}

		sess.ActiveTimeSeconds, sess.LastActivityAt = activity.Credit(
			sess.LastActivityAt, now, sess.InactivityThresholdSeconds, sess.ActiveTimeSeconds)
		if err := st.Sessions.Save(ctx, sess); err != nil {
			return err
		}
		view = newSessionView(sess, s.currentQuestion(ctx, st, sess))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.flush(out)
	return view, nil
}

// Finish ends the session. Finishing a finished session is a no-op.
func (s *PracticeService) Finish(ctx context.Context, learnerID uint, sessionID string) error {
	ctx, span := tracing.Tracer().Start(ctx, "practice.Finish")
	defer span.End()
	span.SetAttributes(attribute.String("session_id", sessionID))

	now := s.now()
	var out []outgoing
	err := s.store.Transaction(ctx, func(st Stores) error {
		out = nil
		sess, err := s.loadOwned(ctx, st, learnerID, sessionID, true)
		if err != nil {
			return err
		}
		if sess.IsFinished() {
			return nil
		}
		if !s.expire(sess, now) {
			sess.Finish(now, model.FinishManual)
		}
		if err := st.Sessions.Save(ctx, sess); err != nil {
			return err
		}
		out = append(out, sessionEvent(event.SessionFinished, sess))
		s.logger.Info("Practice session finished",
			zap.String("session_id", sess.ID),
			zap.Uint("learner_id", learnerID),
			zap.Int("score", sess.CurrentSmartScore),
			zap.String("reason", string(sess.FinishReason)),
		)
		return nil
	})
	if err != nil {
		return err
	}

	s.flush(out)
	return nil
}

// Attempts lists the session's attempts oldest first.
func (s *PracticeService) Attempts(ctx context.Context, learnerID uint, sessionID string) ([]AttemptView, error) {
	st := s.store.Stores()
	if _, err := s.loadOwned(ctx, st, learnerID, sessionID, false); err != nil {
		return nil, err
	}
	attempts, err := st.Sessions.ListAttempts(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]AttemptView, 0, len(attempts))
	for i := range attempts {
		out = append(out, newAttemptView(&attempts[i]))
	}
	return out, nil
}

// Progress returns the learner's aggregate on the skill. A skill never
// practiced yields a zero snapshot.
func (s *PracticeService) Progress(ctx context.Context, learnerID, skillID uint) (*model.ProgressSnapshot, error) {
	st := s.store.Stores()
	if _, err := st.Skills.Get(ctx, skillID); err != nil {
		return nil, err
	}
	snap, err := st.Sessions.GetSnapshot(ctx, learnerID, skillID)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		snap = &model.ProgressSnapshot{LearnerID: learnerID, SkillID: skillID}
	}
	return snap, nil
}
