package client

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"backend/internal/models"
)

// TopicsSortBy are the possible sorting mechanisms for the topics.
type TopicsSortBy string

const (
	CreatedDateAsc     TopicsSortBy = "CREATED_DATE_ASC"
	CreatedDateDesc    TopicsSortBy = "CREATED_DATE_DESC"
	UpdatedDateAsc     TopicsSortBy = "UPDATED_DATE_ASC"
	UpdatedDateDesc    TopicsSortBy = "UPDATED_DATE_DESC"
	NumOfQuestionsAsc  TopicsSortBy = "NUM_OF_QUESTIONS_ASC"
	NumOfQuestionsDesc TopicsSortBy = "NUM_OF_QUESTIONS_DESC"
)

// MaxPageSize is the number of topics per page, when pagination is active.
const MaxPageSize = 24

// TopicsService caches the full topic list in memory and serves
// filtered, sorted slices of it.
type TopicsService struct {
	api    *APIClient
	topics []models.Topic
}

func NewTopicsService(api *APIClient) *TopicsService {
	return &TopicsService{api: api}
}

func (s *TopicsService) loadList(ctx context.Context) error {
	topics, err := getResource[[]models.Topic](ctx, s.api, "/topics")
	if err != nil {
		return err
	}
	s.topics = topics
	return nil
}

// TopicsListOptions filter and shape the cached list.
type TopicsListOptions struct {
	Force                  bool
	Search                 string
	CategoryID             string
	EventID                string
	WithPagination         bool
	StartPaginationAfterID string
	SortBy                 TopicsSortBy
}

// GetList returns (and optionally filters) the list of topics.
// Note: it's a slice of the cached array; the cache is never mutated.
func (s *TopicsService) GetList(ctx context.Context, options TopicsListOptions) ([]models.Topic, error) {
	if s.topics == nil || options.Force {
		if err := s.loadList(ctx); err != nil {
			return nil, err
		}
	}

	filteredList := slices.Clone(s.topics)

	if search := strings.ToLower(options.Search); search != "" {
		terms := strings.Fields(search)
		filteredList = slices.DeleteFunc(filteredList, func(t models.Topic) bool {
			name := strings.ToLower(t.Name)
			for _, term := range terms {
				if !strings.Contains(name, term) {
					return true
				}
			}
			return false
		})
	}

	if options.CategoryID != "" {
		filteredList = slices.DeleteFunc(filteredList, func(t models.Topic) bool {
			return t.Category.CategoryID != options.CategoryID
		})
	}
	if options.EventID != "" {
		filteredList = slices.DeleteFunc(filteredList, func(t models.Topic) bool {
			return t.Event.EventID != options.EventID
		})
	}

	sortTopics(filteredList, options.SortBy)

	if options.WithPagination && len(filteredList) > MaxPageSize {
		indexOfLastOfPreviousPage := 0
		if options.StartPaginationAfterID != "" {
			if i := slices.IndexFunc(filteredList, func(t models.Topic) bool {
				return t.TopicID == options.StartPaginationAfterID
			}); i > 0 {
				indexOfLastOfPreviousPage = i
			}
		}
		end := min(indexOfLastOfPreviousPage+MaxPageSize, len(filteredList))
		filteredList = filteredList[:end]
	}

	return filteredList, nil
}

func sortTopics(topics []models.Topic, sortBy TopicsSortBy) {
	if sortBy == "" {
		sortBy = CreatedDateDesc
	}
	switch sortBy {
	case CreatedDateAsc:
		slices.SortStableFunc(topics, func(a, b models.Topic) int {
			return strings.Compare(a.CreatedAt, b.CreatedAt)
		})
	case CreatedDateDesc:
		slices.SortStableFunc(topics, func(a, b models.Topic) int {
			return strings.Compare(b.CreatedAt, a.CreatedAt)
		})
	case UpdatedDateAsc:
		slices.SortStableFunc(topics, func(a, b models.Topic) int {
			return strings.Compare(a.UpdatedAt, b.UpdatedAt)
		})
	case UpdatedDateDesc:
		slices.SortStableFunc(topics, func(a, b models.Topic) int {
			return strings.Compare(b.UpdatedAt, a.UpdatedAt)
		})
	case NumOfQuestionsAsc:
		slices.SortStableFunc(topics, func(a, b models.Topic) int {
			return a.NumOfQuestions - b.NumOfQuestions
		})
	case NumOfQuestionsDesc:
		slices.SortStableFunc(topics, func(a, b models.Topic) int {
			return b.NumOfQuestions - a.NumOfQuestions
		})
	}
}

// GetById gets a topic by its id.
func (s *TopicsService) GetById(ctx context.Context, topicID string) (models.Topic, error) {
	return getResource[models.Topic](ctx, s.api, "/topics/"+topicID)
}

// Insert a topic.
func (s *TopicsService) Insert(ctx context.Context, topic models.Topic) (models.Topic, error) {
	return sendResource[models.Topic](ctx, s.api, http.MethodPost, "/topics", topic)
}

// Update a topic.
func (s *TopicsService) Update(ctx context.Context, topic models.Topic) (models.Topic, error) {
	return sendResource[models.Topic](ctx, s.api, http.MethodPut, "/topics/"+topic.TopicID, topic)
}

func (s *TopicsService) patchAction(ctx context.Context, topic models.Topic, action string) error {
	_, err := s.api.do(ctx, http.MethodPatch, "/topics/"+topic.TopicID, map[string]string{"action": action})
	return err
}

// Open a topic.
func (s *TopicsService) Open(ctx context.Context, topic models.Topic) error {
	return s.patchAction(ctx, topic, "OPEN")
}

// Close a topic.
func (s *TopicsService) Close(ctx context.Context, topic models.Topic) error {
	return s.patchAction(ctx, topic, "CLOSE")
}

// Archive a topic.
func (s *TopicsService) Archive(ctx context.Context, topic models.Topic) error {
	return s.patchAction(ctx, topic, "ARCHIVE")
}

// Unarchive a topic.
func (s *TopicsService) Unarchive(ctx context.Context, topic models.Topic) error {
	return s.patchAction(ctx, topic, "UNARCHIVE")
}

// Follow subscribes the caller to the topic's email alerts.
func (s *TopicsService) Follow(ctx context.Context, topic models.Topic) error {
	return s.patchAction(ctx, topic, "FOLLOW")
}

// Delete a topic.
func (s *TopicsService) Delete(ctx context.Context, topic models.Topic) error {
	_, err := s.api.do(ctx, http.MethodDelete, "/topics/"+topic.TopicID, nil)
	return err
}
