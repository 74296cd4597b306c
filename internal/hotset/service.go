// Package hotset is the live shoot-day service. It reads a snapshot from
// storage, applies one lifecycle change, writes it back under the version it
// read and returns the rebuilt projected schedule.
package hotset

import (
	"context"
	"errors"
	"time"

	apperr "github.com/julianstephens/hotset/internal/errors"
	"github.com/julianstephens/hotset/internal/lifecycle"
	"github.com/julianstephens/hotset/internal/logger"
	"github.com/julianstephens/hotset/internal/models"
	"github.com/julianstephens/hotset/internal/notifier"
	"github.com/julianstephens/hotset/internal/optimizer"
	"github.com/julianstephens/hotset/internal/scheduler"
	"github.com/julianstephens/hotset/internal/storage"
	"github.com/julianstephens/hotset/internal/swap"
	"github.com/julianstephens/hotset/internal/validation"
	"github.com/julianstephens/hotset/internal/variance"
)

type Notifier interface {
	Notify(ctx context.Context, alert notifier.Alert) error
}

type Backuper interface {
	Create(ctx context.Context, label string) (string, error)
}

// Result is the state after a mutation.
type Result struct {
	Session   models.Session         `json:"session"`
	Projected []models.ProjectedItem `json:"projected"`
}

// SwapResult holds both days touched by a scene swap.
type SwapResult struct {
	Target Result `json:"target"`
	Source Result `json:"source"`
}

type Service struct {
	store     storage.Provider
	policy    models.Policy
	scheduler *scheduler.Scheduler
	variance  *variance.Engine
	catchUp   *optimizer.Generator
	matcher   *swap.Matcher
	validator *validation.Validator
	notifier  Notifier
	backups   Backuper
}

type Option func(*Service)

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithBackups(b Backuper) Option {
	return func(s *Service) { s.backups = b }
}

func New(store storage.Provider, policy models.Policy, opts ...Option) *Service {
	s := &Service{
		store:     store,
		policy:    policy,
		scheduler: scheduler.New(),
		variance:  variance.New(policy),
		catchUp:   optimizer.NewGenerator(policy),
		matcher:   swap.NewMatcher(policy.Swap),
		validator: validation.New(policy.MaxWorkdayMinutes),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) GetSession(ctx context.Context, sessionID string) (models.Session, error) {
	return s.store.GetSession(ctx, sessionID)
}

func (s *Service) ListSessions(ctx context.Context) ([]models.Session, error) {
	return s.store.ListSessions(ctx)
}

func (s *Service) GetSnapshot(ctx context.Context, sessionID string) (models.Snapshot, error) {
	return s.store.GetSnapshot(ctx, sessionID)
}

func (s *Service) GetProjectedSchedule(ctx context.Context, sessionID string, now time.Time) ([]models.ProjectedItem, error) {
	snap, err := s.store.GetSnapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.scheduler.Build(snap, now), nil
}

func (s *Service) GetVariance(ctx context.Context, sessionID string, now time.Time) (variance.Report, error) {
	snap, err := s.store.GetSnapshot(ctx, sessionID)
	if err != nil {
		return variance.Report{}, err
	}
	return s.variance.Report(snap, now), nil
}

// mutate runs fn on a copy of the session and saves it under the version
// that was read. A concurrent writer makes the save fail with a
// ConflictError and nothing is written.
func (s *Service) mutate(ctx context.Context, sessionID string, now time.Time, fn func(*models.Snapshot) error) (Result, error) {
	before, err := s.store.GetSnapshot(ctx, sessionID)
	if err != nil {
		return Result{}, err
	}
	work := before.Clone()
	if err := fn(&work); err != nil {
		return Result{}, err
	}
	saved, err := s.store.SaveSnapshot(ctx, work, before.Session.Version)
	if err != nil {
		return Result{}, err
	}
	s.watch(ctx, before, saved, now)
	return s.result(saved, now), nil
}

// mutateItem resolves the owning session of itemID first.
func (s *Service) mutateItem(ctx context.Context, itemID string, now time.Time, fn func(*models.Snapshot) error) (Result, error) {
	sessionID, err := s.store.FindItemSession(ctx, itemID)
	if err != nil {
		return Result{}, err
	}
	return s.mutate(ctx, sessionID, now, fn)
}

func (s *Service) result(snap models.Snapshot, now time.Time) Result {
	return Result{Session: snap.Session, Projected: s.scheduler.Build(snap, now)}
}

func (s *Service) StartDay(ctx context.Context, sessionID string, now time.Time) (Result, error) {
	return s.mutate(ctx, sessionID, now, func(snap *models.Snapshot) error {
		return lifecycle.StartDay(snap, now)
	})
}

func (s *Service) StartItem(ctx context.Context, itemID string, now time.Time) (Result, error) {
	return s.mutateItem(ctx, itemID, now, func(snap *models.Snapshot) error {
		return lifecycle.Start(snap, itemID, now)
	})
}

// CompleteItem finishes an in-progress item. A nil actualMinutes uses the
// wall clock since the item started.
func (s *Service) CompleteItem(ctx context.Context, itemID string, actualMinutes *int, now time.Time) (Result, error) {
	return s.mutateItem(ctx, itemID, now, func(snap *models.Snapshot) error {
		return lifecycle.Complete(snap, itemID, actualMinutes, now)
	})
}

func (s *Service) SkipItem(ctx context.Context, itemID, reason string, now time.Time) (Result, error) {
	return s.mutateItem(ctx, itemID, now, func(snap *models.Snapshot) error {
		return lifecycle.Skip(snap, itemID, reason, now)
	})
}

func (s *Service) AdjustBlockTime(ctx context.Context, blockID string, start, end, now time.Time) (Result, error) {
	return s.mutateItem(ctx, blockID, now, func(snap *models.Snapshot) error {
		return lifecycle.Adjust(snap, blockID, start, end)
	})
}

// ActivitySpec describes a block added to a running day.
type ActivitySpec struct {
	BlockType       models.BlockType `json:"block_type"`
	Name            string           `json:"name"`
	DurationMinutes int              `json:"duration_minutes"`
	InsertAfterID   string           `json:"insert_after_id,omitempty"`
}

func (s *Service) InsertActivity(ctx context.Context, sessionID string, spec ActivitySpec, now time.Time) (Result, error) {
	if spec.BlockType == "" {
		spec.BlockType = models.BlockActivity
	}
	return s.mutate(ctx, sessionID, now, func(snap *models.Snapshot) error {
		block, err := lifecycle.NewBlock(sessionID, spec.BlockType, spec.Name, spec.DurationMinutes)
		if err != nil {
			return err
		}
		return lifecycle.InsertAfter(snap, spec.InsertAfterID, block)
	})
}

func (s *Service) DeleteBlock(ctx context.Context, blockID string, now time.Time) (Result, error) {
	return s.mutateItem(ctx, blockID, now, func(snap *models.Snapshot) error {
		return lifecycle.Delete(snap, blockID)
	})
}

// MoveItem places a pending item directly after afterID, or first when
// afterID is empty.
func (s *Service) MoveItem(ctx context.Context, itemID, afterID string, now time.Time) (Result, error) {
	return s.mutateItem(ctx, itemID, now, func(snap *models.Snapshot) error {
		return lifecycle.Move(snap, itemID, afterID)
	})
}

func (s *Service) GetCatchUpSuggestions(ctx context.Context, sessionID string, now time.Time) ([]models.Suggestion, error) {
	snap, err := s.store.GetSnapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.catchUp.Generate(snap, now), nil
}

// ApplySuggestion regenerates the suggestions for the current state and
// applies the one with the given id.
func (s *Service) ApplySuggestion(ctx context.Context, sessionID, suggestionID string, now time.Time) (Result, error) {
	return s.mutate(ctx, sessionID, now, func(snap *models.Snapshot) error {
		sug, ok := optimizer.Find(s.catchUp.Generate(*snap, now), suggestionID)
		if !ok {
			return apperr.NewNotFound("suggestion", suggestionID)
		}
		logger.Debug("Applying suggestion", "session", sessionID, "suggestion", suggestionID)
		return optimizer.Apply(snap, sug, now)
	})
}

func (s *Service) GetSwapSuggestions(ctx context.Context, sessionID, sceneID string, limit int) ([]models.SwapSuggestion, error) {
	snap, err := s.store.GetSnapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	idx := snap.Item(sceneID)
	if idx < 0 {
		return nil, apperr.NewNotFound("scene", sceneID)
	}
	scene := snap.Items[idx]
	if !scene.IsScene() {
		return nil, apperr.NewValidation("scene_id", "%s is not a scene", sceneID)
	}
	if scene.Status != models.ItemPending {
		return nil, apperr.NewInvalidState("scene", scene.ID, string(scene.Status), "find swaps for")
	}
	others, err := s.store.ListOpenSnapshots(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.policy.Swap.Limit
	}
	return s.matcher.Suggest(scene, snap.Session, others, limit), nil
}

// SwapScenes exchanges sceneOutID on the active day with sceneInID on the
// source day. Both days are written in one transaction. Every failure is a
// CrossDayTransactionError naming the side that rejected the swap.
func (s *Service) SwapScenes(ctx context.Context, sessionID, sceneOutID, sceneInID, sourceSessionID string, now time.Time) (SwapResult, error) {
	target, err := s.store.GetSnapshot(ctx, sessionID)
	if err != nil {
		return SwapResult{}, err
	}
	source, err := s.store.GetSnapshot(ctx, sourceSessionID)
	if err != nil {
		return SwapResult{}, err
	}
	targetVersion, sourceVersion := target.Session.Version, source.Session.Version

	t, src := target.Clone(), source.Clone()
	if err := swap.Exchange(&t, sceneOutID, &src, sceneInID); err != nil {
		return SwapResult{}, err
	}

	s.backup(ctx, "pre-swap")

	savedT, savedS, err := s.store.SaveSwap(ctx, t, targetVersion, src, sourceVersion)
	if err != nil {
		return SwapResult{}, err
	}
	logger.Info("Swapped scenes", "session", sessionID, "out", sceneOutID, "in", sceneInID, "source", sourceSessionID)

	s.watch(ctx, target, savedT, now)
	return SwapResult{Target: s.result(savedT, now), Source: s.result(savedS, now)}, nil
}

func (s *Service) RecordWrap(ctx context.Context, sessionID string, now time.Time) (Result, error) {
	res, err := s.mutate(ctx, sessionID, now, func(snap *models.Snapshot) error {
		return lifecycle.Wrap(snap, now)
	})
	if err != nil {
		return Result{}, err
	}

	s.backup(ctx, "wrap")
	if summary, err := s.GetDaySummary(ctx, sessionID); err == nil {
		s.notify(ctx, wrapAlert(summary))
	}
	return res, nil
}

func (s *Service) backup(ctx context.Context, label string) {
	if s.backups == nil {
		return
	}
	path, err := s.backups.Create(ctx, label)
	if err != nil {
		logger.Warn("Backup failed", "label", label, "error", err)
		return
	}
	logger.Debug("Backup written", "label", label, "path", path)
}

// watch alerts on the first write that finds the day significantly behind.
// The previous state is judged as of its own write so that an alert fires
// once per crossing.
func (s *Service) watch(ctx context.Context, before, after models.Snapshot, now time.Time) {
	if s.notifier == nil || after.Session.Status != models.SessionInProgress {
		return
	}
	last := before.Session.UpdatedAt
	if last.IsZero() || last.After(now) {
		last = now
	}
	was := s.variance.Classify(s.variance.RealTimeDeviation(before.Session, before.Items, last))
	report := s.variance.Report(after, now)
	if report.Status == variance.StatusSignificantlyBehind && was != variance.StatusSignificantlyBehind {
		s.notify(ctx, behindAlert(after.Session, report))
	}
}

func (s *Service) notify(ctx context.Context, alert notifier.Alert) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, alert); err != nil {
		if errors.Is(err, notifier.ErrTrayNotRunning) {
			logger.Debug("Notification skipped", "reason", err)
			return
		}
		logger.Warn("Notification failed", "error", err)
	}
}
