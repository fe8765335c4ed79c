package client

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"backend/internal/models"
)

// QuestionsService serves the questions of the topic currently open in
// the UI, with the same search and pagination behavior as the topics
// list.
type QuestionsService struct {
	api       *APIClient
	topicID   string
	questions []models.Question
}

func NewQuestionsService(api *APIClient) *QuestionsService {
	return &QuestionsService{api: api}
}

func questionsPath(topicID string) string {
	return fmt.Sprintf("/topics/%s/questions", topicID)
}

func questionPath(topicID, questionID string) string {
	return fmt.Sprintf("/topics/%s/questions/%s", topicID, questionID)
}

func (s *QuestionsService) loadListOfTopic(ctx context.Context, topic models.Topic) error {
	questions, err := getResource[[]models.Question](ctx, s.api, questionsPath(topic.TopicID))
	if err != nil {
		return err
	}
	s.topicID = topic.TopicID
	s.questions = questions
	return nil
}

// QuestionsListOptions filter and shape the cached list.
type QuestionsListOptions struct {
	Force                  bool
	Search                 string
	WithPagination         bool
	StartPaginationAfterID string
}

// GetListOfTopic returns (and optionally filters) the questions of a
// topic. The back-end returns them sorted by last activity.
func (s *QuestionsService) GetListOfTopic(ctx context.Context, topic models.Topic, options QuestionsListOptions) ([]models.Question, error) {
	if s.questions == nil || s.topicID != topic.TopicID || options.Force {
		if err := s.loadListOfTopic(ctx, topic); err != nil {
			return nil, err
		}
	}

	filteredList := slices.Clone(s.questions)

	if search := strings.ToLower(options.Search); search != "" {
		terms := strings.Fields(search)
		filteredList = slices.DeleteFunc(filteredList, func(q models.Question) bool {
			haystack := strings.ToLower(q.Summary + " " + q.Text)
			for _, term := range terms {
				if !strings.Contains(haystack, term) {
					return true
				}
			}
			return false
		})
	}

	if options.WithPagination && len(filteredList) > MaxPageSize {
		indexOfLastOfPreviousPage := 0
		if options.StartPaginationAfterID != "" {
			if i := slices.IndexFunc(filteredList, func(q models.Question) bool {
				return q.QuestionID == options.StartPaginationAfterID
			}); i > 0 {
				indexOfLastOfPreviousPage = i
			}
		}
		end := min(indexOfLastOfPreviousPage+MaxPageSize, len(filteredList))
		filteredList = filteredList[:end]
	}

	return filteredList, nil
}

// Insert a question under a topic.
func (s *QuestionsService) Insert(ctx context.Context, topic models.Topic, question models.Question) (models.Question, error) {
	return sendResource[models.Question](ctx, s.api, http.MethodPost, questionsPath(topic.TopicID), question)
}

// Update a question.
func (s *QuestionsService) Update(ctx context.Context, topic models.Topic, question models.Question) (models.Question, error) {
	return sendResource[models.Question](ctx, s.api, http.MethodPut, questionPath(topic.TopicID, question.QuestionID), question)
}

// Delete a question.
func (s *QuestionsService) Delete(ctx context.Context, topic models.Topic, question models.Question) error {
	_, err := s.api.do(ctx, http.MethodDelete, questionPath(topic.TopicID, question.QuestionID), nil)
	return err
}

// Upvote a question.
func (s *QuestionsService) Upvote(ctx context.Context, topic models.Topic, question models.Question) (models.Question, error) {
	return sendResource[models.Question](ctx, s.api, http.MethodPatch, questionPath(topic.TopicID, question.QuestionID),
		map[string]string{"action": "UPVOTE"})
}

// CancelUpvote removes the caller's upvote from a question.
func (s *QuestionsService) CancelUpvote(ctx context.Context, topic models.Topic, question models.Question) (models.Question, error) {
	return sendResource[models.Question](ctx, s.api, http.MethodPatch, questionPath(topic.TopicID, question.QuestionID),
		map[string]string{"action": "UPVOTE_CANCEL"})
}

type upvoteStatus struct {
	Upvoted bool `json:"upvoted"`
}

// IsUpvoted checks whether the caller upvoted a question.
func (s *QuestionsService) IsUpvoted(ctx context.Context, topic models.Topic, question models.Question) (bool, error) {
	status, err := sendResource[upvoteStatus](ctx, s.api, http.MethodPatch, questionPath(topic.TopicID, question.QuestionID),
		map[string]string{"action": "IS_UPVOTED"})
	if err != nil {
		return false, err
	}
	return status.Upvoted, nil
}
