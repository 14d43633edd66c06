package service

import (
	"context"
	"encoding/json"
	"escape_room_backend/internal/config"
	"escape_room_backend/internal/model"
	"escape_room_backend/internal/repository"
	"escape_room_backend/internal/util"
	"escape_room_backend/pkg/logger"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// CatalogCache stores the serialized catalog. Nil disables caching.
type CatalogCache interface {
	Get(ctx context.Context) ([]byte, bool, error)
	Set(ctx context.Context, data []byte, ttl time.Duration) error
}

type StorySummary struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Difficulty  string    `json:"difficulty"`
	Rating      *float64  `json:"rating,omitempty"`
	Cost        int       `json:"cost"`
	CoverURL    string    `json:"coverUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type StoryDetail struct {
	StorySummary
	StageCount int64 `json:"stageCount"`
}

type StoryService struct {
	StoryRepo *repository.StoryRepository
	StageRepo *repository.StageRepository
	Storage   *StorageService
	Cache     CatalogCache
	Cfg       *config.Config
}

func NewStoryService(
	storyRepo *repository.StoryRepository,
	stageRepo *repository.StageRepository,
	storage *StorageService,
	cache CatalogCache,
	cfg *config.Config,
) *StoryService {
	return &StoryService{
		StoryRepo: storyRepo,
		StageRepo: stageRepo,
		Storage:   storage,
		Cache:     cache,
		Cfg:       cfg,
	}
}

// ListStories returns the catalog. Cache failures are logged and the
// database is used instead.
func (s *StoryService) ListStories(ctx context.Context) ([]StorySummary, error) {
	if s.Cache != nil {
		data, ok, err := s.Cache.Get(ctx)
		if err != nil {
			logger.For("catalog").Warn("Story catalog cache read failed", zap.Error(err))
		} else if ok {
			var cached []StorySummary
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
			logger.For("catalog").Warn("Story catalog cache entry is corrupt", zap.Error(err))
		}
	}

	stories, err := s.StoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]StorySummary, 0, len(stories))
	for i := range stories {
		summary, err := s.summarize(ctx, &stories[i])
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}

	if s.Cache != nil {
		if data, err := json.Marshal(summaries); err == nil {
			if err := s.Cache.Set(ctx, data, s.Cfg.Game.CatalogCacheTTL()); err != nil {
				logger.For("catalog").Warn("Story catalog cache write failed", zap.Error(err))
			}
		}
	}
	return summaries, nil
}

func (s *StoryService) GetStory(ctx context.Context, id uint) (*StoryDetail, error) {
	story, err := s.StoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if story == nil {
		return nil, fmt.Errorf("%w: story %d", util.ErrNotFound, id)
	}

	summary, err := s.summarize(ctx, story)
	if err != nil {
		return nil, err
	}
	count, err := s.StageRepo.CountByStory(ctx, story.ID)
	if err != nil {
		return nil, err
	}
	return &StoryDetail{StorySummary: summary, StageCount: count}, nil
}

func (s *StoryService) summarize(ctx context.Context, story *model.Story) (StorySummary, error) {
	summary := StorySummary{
		ID:          story.ID,
		Title:       story.Title,
		Description: story.Description,
		Type:        story.Type,
		Difficulty:  story.Difficulty,
		Rating:      story.Rating,
		Cost:        story.Cost,
		CreatedAt:   story.CreatedAt,
	}
	if s.Storage != nil {
		url, err := s.Storage.CoverURL(ctx, story.CoverKey)
		if err != nil {
			return StorySummary{}, err
		}
		summary.CoverURL = url
	}
	return summary, nil
}
