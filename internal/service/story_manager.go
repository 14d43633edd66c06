package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"escape_room_backend/internal/model"
	"escape_room_backend/internal/repository"
	"escape_room_backend/internal/util"
	"escape_room_backend/pkg/logger"
	"escape_room_backend/pkg/monitoring"
	"escape_room_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	MessageIncorrect     = "Incorrect answer, keep trying"
	MessageNewHint       = "A new hint has been revealed"
	MessageCorrect       = "Congratulations, that is the correct answer"
	MessageStoryComplete = "Congratulations, the story is complete"
	MessageResolved      = "This stage has already been solved"
)

// Outcome labels for monitoring.PasswordSubmissions.
const (
	outcomeIncorrect = "incorrect"
	outcomeHint      = "hint"
	outcomeCorrect   = "correct"
	outcomeComplete  = "complete"
	outcomeResolved  = "resolved"
)

// StoryManager runs the story progression state machine. Loaders build a
// StoryContext; transitions take one and run as a single transaction.
type StoryManager struct {
	DB          *gorm.DB
	UserRepo    *repository.UserRepository
	StoryRepo   *repository.StoryRepository
	StageRepo   *repository.StageRepository
	HintRepo    *repository.HintRepository
	AccessRepo  *repository.AccessRepository
	AttemptRepo *repository.AttemptRepository

	Now func() time.Time
}

func NewStoryManager(
	db *gorm.DB,
	userRepo *repository.UserRepository,
	storyRepo *repository.StoryRepository,
	stageRepo *repository.StageRepository,
	hintRepo *repository.HintRepository,
	accessRepo *repository.AccessRepository,
	attemptRepo *repository.AttemptRepository,
) *StoryManager {
	return &StoryManager{
		DB:          db,
		UserRepo:    userRepo,
		StoryRepo:   storyRepo,
		StageRepo:   stageRepo,
		HintRepo:    hintRepo,
		AccessRepo:  accessRepo,
		AttemptRepo: attemptRepo,
		Now: func() time.Time {
			return time.Now().UTC().Truncate(time.Millisecond)
		},
	}
}

// LoadByStory loads the user's progress on a story.
func (s *StoryManager) LoadByStory(ctx context.Context, user model.User, storyID uint) (StoryContext, error) {
	ctx, span := tracing.Start(ctx, "StoryManager.LoadByStory", attribute.Int64("story.id", int64(storyID)))
	defer span.End()

	story, err := s.StoryRepo.FindByID(ctx, storyID)
	if err != nil {
		return StoryContext{}, err
	}
	if story == nil {
		return StoryContext{}, fmt.Errorf("%w: story %d", util.ErrNotFound, storyID)
	}

	access, err := s.AccessRepo.FindByUserAndStory(ctx, user.ID, story.ID)
	if err != nil {
		return StoryContext{}, err
	}
	sc := StoryContext{User: user, Story: *story, Access: access}
	if access == nil {
		sc.Status = StatusNew
		return sc, nil
	}
	return s.loadActiveAttempt(ctx, sc)
}

// LoadByAttempt loads progress through an attempt id. The context always
// exposes the active attempt of the access; Stale reports whether the
// requested attempt has been superseded.
func (s *StoryManager) LoadByAttempt(ctx context.Context, user model.User, attemptID uint) (StoryContext, error) {
	ctx, span := tracing.Start(ctx, "StoryManager.LoadByAttempt", attribute.Int64("attempt.id", int64(attemptID)))
	defer span.End()

	access, err := s.AccessRepo.FindByAttempt(ctx, attemptID)
	if err != nil {
		return StoryContext{}, err
	}
	if access == nil {
		return StoryContext{}, fmt.Errorf("%w: attempt %d", util.ErrNotFound, attemptID)
	}
	if access.UserID != user.ID {
		return StoryContext{}, fmt.Errorf("%w: attempt %d", util.ErrUnauthorized, attemptID)
	}

	story, err := s.StoryRepo.FindByID(ctx, access.StoryID)
	if err != nil {
		return StoryContext{}, err
	}
	if story == nil {
		return StoryContext{}, fmt.Errorf("%w: story %d", util.ErrNotFound, access.StoryID)
	}

	sc, err := s.loadActiveAttempt(ctx, StoryContext{
		User:               user,
		Story:              *story,
		Access:             access,
		RequestedAttemptID: attemptID,
	})
	if err != nil {
		return StoryContext{}, err
	}
	sc.Stale = sc.Attempt == nil || sc.Attempt.ID != attemptID
	return sc, nil
}

func (s *StoryManager) loadActiveAttempt(ctx context.Context, sc StoryContext) (StoryContext, error) {
	attempt, err := s.AttemptRepo.FindActive(ctx, sc.Access.ID)
	if err != nil {
		return StoryContext{}, err
	}
	sc.Attempt = attempt
	sc.Status = statusOf(sc.Access, attempt)
	if attempt == nil {
		return sc, nil
	}

	stage, err := s.StageRepo.FindByID(ctx, attempt.StageID)
	if err != nil {
		return StoryContext{}, err
	}
	if stage == nil {
		return StoryContext{}, fmt.Errorf("%w: stage %d of attempt %d", util.ErrNotFound, attempt.StageID, attempt.ID)
	}
	sc.Stage = stage
	return sc, nil
}

func (s *StoryManager) CheckAccess(sc StoryContext) StatusView {
	return ToStatusView(sc)
}

func (s *StoryManager) Attempt(sc StoryContext) AttemptView {
	return ToAttemptView(sc)
}

// BuyStory charges the story cost and records the purchase. The balance
// check is repeated under the user row lock so concurrent purchases cannot
// overdraw.
func (s *StoryManager) BuyStory(ctx context.Context, sc StoryContext) (StoryContext, error) {
	ctx, span := tracing.Start(ctx, "StoryManager.BuyStory", attribute.Int64("story.id", int64(sc.Story.ID)))
	defer span.End()

	if sc.Access != nil {
		return sc, fmt.Errorf("%w: story %d", util.ErrAlreadyOwned, sc.Story.ID)
	}
	if sc.User.Gold < sc.Story.Cost {
		return sc, fmt.Errorf("%w: story %d costs %d", util.ErrInsufficientFunds, sc.Story.ID, sc.Story.Cost)
	}

	var (
		access model.StoryAccess
		buyer  model.User
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.UserRepo.WithTx(tx)
		accesses := s.AccessRepo.WithTx(tx)

		user, err := users.LockByID(ctx, sc.User.ID)
		if err != nil {
			return err
		}
		if user == nil {
			return fmt.Errorf("%w: user %s", util.ErrNotFound, sc.User.ID)
		}

		existing, err := accesses.FindByUserAndStory(ctx, user.ID, sc.Story.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: story %d", util.ErrAlreadyOwned, sc.Story.ID)
		}

		// MySQL reports zero affected rows for a no-op update, so free
		// stories skip the deduction entirely.
		if sc.Story.Cost > 0 {
			ok, err := users.DeductGold(ctx, user.ID, sc.Story.Cost)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: story %d costs %d", util.ErrInsufficientFunds, sc.Story.ID, sc.Story.Cost)
			}
			user.Gold -= sc.Story.Cost
		}

		access = model.StoryAccess{
			UserID:       user.ID,
			StoryID:      sc.Story.ID,
			PurchaseDate: s.Now(),
		}
		if err := accesses.Create(ctx, &access); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: story %d", util.ErrAlreadyOwned, sc.Story.ID)
			}
			return err
		}
		buyer = *user
		return nil
	})
	if err != nil {
		return sc, tracing.Fail(span, err)
	}

	monitoring.StoryPurchases.Inc()
	logger.For("story").Info("Story purchased",
		zap.String("user_id", buyer.ID),
		zap.Uint("story_id", sc.Story.ID),
		zap.Int("cost", sc.Story.Cost),
		zap.Int("gold_left", buyer.Gold))

	next := sc
	next.User = buyer
	next.Access = &access
	next.Status = StatusPurchased
	return next, nil
}

// StartStory opens the first attempt on the lowest level stage.
func (s *StoryManager) StartStory(ctx context.Context, sc StoryContext) (StoryContext, error) {
	ctx, span := tracing.Start(ctx, "StoryManager.StartStory", attribute.Int64("story.id", int64(sc.Story.ID)))
	defer span.End()

	if sc.Access == nil {
		return sc, fmt.Errorf("%w: no access to story %d", util.ErrNotFound, sc.Story.ID)
	}
	if sc.Attempt != nil {
		return sc, fmt.Errorf("%w: story %d", util.ErrAlreadyStarted, sc.Story.ID)
	}

	var (
		attempt model.Attempt
		stage   *model.Stage
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		accesses := s.AccessRepo.WithTx(tx)
		attempts := s.AttemptRepo.WithTx(tx)

		access, err := accesses.LockByID(ctx, sc.Access.ID)
		if err != nil {
			return err
		}
		if access == nil {
			return fmt.Errorf("%w: story access %d", util.ErrNotFound, sc.Access.ID)
		}

		count, err := attempts.CountByAccess(ctx, access.ID)
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: story %d", util.ErrAlreadyStarted, sc.Story.ID)
		}

		stage, err = s.StageRepo.WithTx(tx).FindFirst(ctx, sc.Story.ID)
		if err != nil {
			return err
		}
		if stage == nil {
			return fmt.Errorf("%w: story %d has no stages", util.ErrMalformedContent, sc.Story.ID)
		}

		attempt = model.Attempt{
			StoryAccessID: access.ID,
			StageID:       stage.ID,
			StartDate:     s.Now(),
		}
		if err := attempts.Create(ctx, &attempt); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: story %d", util.ErrAlreadyStarted, sc.Story.ID)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return sc, tracing.Fail(span, err)
	}

	monitoring.StoriesStarted.Inc()
	logger.For("story").Info("Story started",
		zap.String("user_id", sc.User.ID),
		zap.Uint("story_id", sc.Story.ID),
		zap.Uint("attempt_id", attempt.ID))

	next := sc
	next.Attempt = &attempt
	next.Stage = stage
	next.Status = StatusStarted
	next.Stale = false
	next.RequestedAttemptID = attempt.ID
	return next, nil
}

// ValidatePassword records the submission and evaluates it against the
// current stage. The stage password is checked before hint triggers. Only
// one submission can finish an attempt; later ones get MessageResolved.
func (s *StoryManager) ValidatePassword(ctx context.Context, sc StoryContext, password string) (PasswordCheck, error) {
	ctx, span := tracing.Start(ctx, "StoryManager.ValidatePassword")
	defer span.End()

	if sc.Attempt == nil || sc.Stage == nil {
		return PasswordCheck{}, fmt.Errorf("%w: story %d has no attempt", util.ErrNotFound, sc.Story.ID)
	}

	// Submissions against a superseded attempt are logged where they were sent.
	target := sc.Attempt.ID
	if sc.Stale && sc.RequestedAttemptID != 0 {
		target = sc.RequestedAttemptID
	}
	span.SetAttributes(attribute.Int64("attempt.id", int64(target)))

	var (
		result  PasswordCheck
		outcome string
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attempts := s.AttemptRepo.WithTx(tx)

		attempt, err := attempts.LockByID(ctx, target)
		if err != nil {
			return err
		}
		if attempt == nil {
			return fmt.Errorf("%w: attempt %d", util.ErrNotFound, target)
		}

		now := s.Now()
		if err := attempts.CreateSubmission(ctx, &model.PasswordSubmission{
			AttemptID: attempt.ID,
			Password:  password,
			EnterDate: now,
		}); err != nil {
			return err
		}

		if sc.Stale || attempt.Finished() {
			result, outcome = PasswordCheck{Message: MessageResolved}, outcomeResolved
			return nil
		}

		if password == sc.Stage.Password {
			result, outcome, err = s.advance(ctx, tx, attempt, sc.Stage, now)
			return err
		}

		unlocked, err := s.unlockHint(ctx, tx, attempt, sc.Stage, password, now)
		if err != nil {
			return err
		}
		if unlocked {
			result, outcome = PasswordCheck{Message: MessageNewHint, NewHint: true}, outcomeHint
			return nil
		}

		result, outcome = PasswordCheck{Message: MessageIncorrect}, outcomeIncorrect
		return nil
	})
	if err != nil {
		return PasswordCheck{}, tracing.Fail(span, err)
	}

	span.SetAttributes(attribute.String("password.outcome", outcome))
	monitoring.PasswordSubmissions.WithLabelValues(outcome).Inc()
	logger.For("story").Info("Password submitted",
		zap.String("user_id", sc.User.ID),
		zap.Uint("story_id", sc.Story.ID),
		zap.Uint("attempt_id", target),
		zap.String("outcome", outcome))
	return result, nil
}

// advance finishes the attempt and opens the next stage if there is one.
// The finish_date compare-and-set is the serialization point for concurrent
// correct submissions.
func (s *StoryManager) advance(ctx context.Context, tx *gorm.DB, attempt *model.Attempt, stage *model.Stage, now time.Time) (PasswordCheck, string, error) {
	attempts := s.AttemptRepo.WithTx(tx)

	won, err := attempts.MarkFinished(ctx, attempt.ID, now)
	if err != nil {
		return PasswordCheck{}, "", err
	}
	if !won {
		return PasswordCheck{Message: MessageResolved}, outcomeResolved, nil
	}

	nextStage, err := s.StageRepo.WithTx(tx).FindNext(ctx, stage)
	if err != nil {
		return PasswordCheck{}, "", err
	}
	if nextStage == nil {
		return PasswordCheck{Message: MessageStoryComplete, EndStory: true}, outcomeComplete, nil
	}

	next := model.Attempt{
		StoryAccessID: attempt.StoryAccessID,
		StageID:       nextStage.ID,
		StartDate:     now,
	}
	if err := attempts.Create(ctx, &next); err != nil {
		return PasswordCheck{}, "", err
	}
	return PasswordCheck{Message: MessageCorrect, NextAttemptID: &next.ID}, outcomeCorrect, nil
}

// unlockHint reveals the stage hint whose trigger matches. It reports false
// when nothing matches or the hint was already revealed in this attempt.
func (s *StoryManager) unlockHint(ctx context.Context, tx *gorm.DB, attempt *model.Attempt, stage *model.Stage, trigger string, now time.Time) (bool, error) {
	hints := s.HintRepo.WithTx(tx)

	hint, err := hints.FindByTrigger(ctx, stage.ID, trigger)
	if err != nil || hint == nil {
		return false, err
	}

	existing, err := hints.FindUnlock(ctx, attempt.ID, hint.ID)
	if err != nil || existing != nil {
		return false, err
	}

	err = hints.CreateUnlock(ctx, &model.HintUnlock{
		AttemptID: attempt.ID,
		HintID:    hint.ID,
		EnterDate: now,
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return false, nil
	}
	return err == nil, err
}

// GetHints lists the hints revealed during the active attempt, oldest first.
func (s *StoryManager) GetHints(ctx context.Context, sc StoryContext) ([]HintView, error) {
	ctx, span := tracing.Start(ctx, "StoryManager.GetHints")
	defer span.End()

	if sc.Attempt == nil {
		return nil, fmt.Errorf("%w: story %d has no attempt", util.ErrNotFound, sc.Story.ID)
	}
	hints, err := s.HintRepo.ListUnlocked(ctx, sc.Attempt.ID)
	if err != nil {
		return nil, err
	}
	return ToHintViews(hints), nil
}
