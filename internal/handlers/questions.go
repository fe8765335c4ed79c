package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"backend/internal/config"
	"backend/internal/db"
	"backend/internal/models"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
)

// Notifier delivers the new-question email to a topic's subjects.
type Notifier interface {
	NotifyNewQuestion(ctx context.Context, topic models.Topic, question models.Question) error
}

type Questions struct {
	cfg      config.Config
	ddb      db.DynamoAPI
	notifier Notifier
}

func NewQuestions(cfg config.Config, ddb db.DynamoAPI, notifier Notifier) *Questions {
	return &Questions{cfg: cfg, ddb: ddb, notifier: notifier}
}

func (h *Questions) Handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	user, err := authenticate(req)
	if err != nil {
		return errResp(401, "unauthorized")
	}

	topic, err := loadTopic(ctx, h.ddb, h.cfg, req.PathParameters["topicId"])
	if err != nil {
		return errResp(404, "Topic not found")
	}

	questionID := req.PathParameters["questionId"]
	var question models.Question
	if questionID != "" {
		question, err = loadQuestion(ctx, h.ddb, h.cfg, topic.TopicID, questionID)
		if err != nil {
			return errResp(404, "Question not found")
		}
	} else if !isCollectionMethod(req) {
		// Mutating verbs need an item path.
		return errResp(404, "Question not found")
	}

	switch req.RequestContext.HTTP.Method {
	case "GET":
		if questionID == "" {
			return h.list(ctx, topic)
		}
		return jsonResp(200, question)
	case "POST":
		return h.create(ctx, user, topic, req.Body)
	case "PUT":
		return h.update(ctx, user, topic, question, req.Body)
	case "PATCH":
		return h.patch(ctx, user, question, req.Body)
	case "DELETE":
		return h.remove(ctx, user, topic, question)
	default:
		return errResp(405, "method not allowed")
	}
}

func (h *Questions) list(ctx context.Context, topic models.Topic) (events.APIGatewayV2HTTPResponse, error) {
	questions, err := h.questionsOfTopic(ctx, topic)
	if err != nil {
		return errResp(500, "query failed")
	}
	return jsonResp(200, questions)
}

func (h *Questions) questionsOfTopic(ctx context.Context, topic models.Topic) ([]models.Question, error) {
	questions, err := db.QueryByKey[models.Question](ctx, h.ddb, h.cfg.Tables.Questions, "topicId", topic.TopicID, false)
	if err != nil {
		return nil, err
	}
	models.SortQuestions(questions)
	return questions, nil
}

func (h *Questions) create(ctx context.Context, user models.User, topic models.Topic, body string) (events.APIGatewayV2HTTPResponse, error) {
	if topic.IsClosed() {
		return errResp(409, "Topic is closed")
	}
	if !topic.CanUserAskQuestions(user) {
		return errResp(403, "Role not allowed to ask questions")
	}

	var question models.Question
	if err := json.Unmarshal([]byte(body), &question); err != nil {
		return errResp(400, "invalid json body")
	}
	question.TopicID = topic.TopicID
	question.QuestionID = uuid.NewString()
	question.NumOfUpvotes = 0
	question.CreatedAt = nowISO()
	question.UpdatedAt = ""
	if question.Creator.UserID == "" {
		question.Creator = models.SubjectFromUser(user)
	}

	if fields := question.Validate(); len(fields) > 0 {
		return invalidFieldsResp(fields)
	}

	err := db.Put(ctx, h.ddb, h.cfg.Tables.Questions, question, "topicId", "questionId")
	if errors.Is(err, db.ErrConditionFailed) {
		return errResp(409, "Question already exists")
	}
	if err != nil {
		return errResp(500, "put failed")
	}

	h.updateCountersOfTopic(ctx, topic)

	// A failed send aborts the request; the question is already stored.
	if err := h.notifier.NotifyNewQuestion(ctx, topic, question); err != nil {
		return errResp(500, "notification failed")
	}

	return jsonResp(201, question)
}

func (h *Questions) update(ctx context.Context, user models.User, topic models.Topic, question models.Question, body string) (events.APIGatewayV2HTTPResponse, error) {
	if !question.CanUserEdit(user) {
		return errResp(403, "Unauthorized")
	}
	if topic.IsClosed() {
		return errResp(409, "Topic is closed")
	}
	hasAnswers, err := h.questionHasAnswers(ctx, question)
	if err != nil {
		return errResp(500, "query failed")
	}
	if hasAnswers {
		return errResp(409, "Question has answers")
	}

	var changes models.Question
	if err := json.Unmarshal([]byte(body), &changes); err != nil {
		return errResp(400, "invalid json body")
	}
	question.SafeLoad(changes)
	question.UpdatedAt = nowISO()

	if fields := question.Validate(); len(fields) > 0 {
		return invalidFieldsResp(fields)
	}

	if err := db.Put(ctx, h.ddb, h.cfg.Tables.Questions, question); err != nil {
		return errResp(500, "put failed")
	}
	return jsonResp(200, question)
}

func (h *Questions) remove(ctx context.Context, user models.User, topic models.Topic, question models.Question) (events.APIGatewayV2HTTPResponse, error) {
	if !question.CanUserEdit(user) {
		return errResp(403, "Unauthorized")
	}
	if topic.IsClosed() {
		return errResp(409, "Topic is closed")
	}
	hasAnswers, err := h.questionHasAnswers(ctx, question)
	if err != nil {
		return errResp(500, "query failed")
	}
	if hasAnswers {
		return errResp(409, "Question has answers")
	}

	key := db.Key("topicId", topic.TopicID, "questionId", question.QuestionID)
	if err := db.Delete(ctx, h.ddb, h.cfg.Tables.Questions, key); err != nil {
		return errResp(500, "delete failed")
	}

	h.updateCountersOfTopic(ctx, topic)

	return noContentResp()
}

func (h *Questions) patch(ctx context.Context, user models.User, question models.Question, body string) (events.APIGatewayV2HTTPResponse, error) {
	cmd, err := parseQuestionCommand(body)
	if err != nil {
		if errors.Is(err, errUnsupportedAction) {
			return errResp(400, "Unsupported action")
		}
		return errResp(400, "invalid json body")
	}

	switch cmd.(type) {
	case upvoteQuestion:
		return h.upvote(ctx, user, question, false)
	case cancelQuestionUpvote:
		return h.upvote(ctx, user, question, true)
	case checkQuestionUpvote:
		return h.isUpvoted(ctx, user, question)
	default:
		return errResp(400, "Unsupported action")
	}
}

func (h *Questions) upvote(ctx context.Context, user models.User, question models.Question, cancel bool) (events.APIGatewayV2HTTPResponse, error) {
	key := db.Key("questionId", question.QuestionID, "userId", user.UserID)
	if cancel {
		if err := db.Delete(ctx, h.ddb, h.cfg.Tables.QuestionsUpvotes, key); err != nil {
			return errResp(500, "delete failed")
		}
	} else {
		// Plain put: re-upvoting by the same user overwrites the marker.
		upvote := models.Upvote{QuestionID: question.QuestionID, UserID: user.UserID, CreatedAt: nowISO()}
		if err := db.Put(ctx, h.ddb, h.cfg.Tables.QuestionsUpvotes, upvote); err != nil {
			return errResp(500, "put failed")
		}
	}

	count, err := h.liveNumUpvotes(ctx, question)
	if err != nil {
		return errResp(500, "query failed")
	}
	question.NumOfUpvotes = count
	if err := db.Put(ctx, h.ddb, h.cfg.Tables.Questions, question); err != nil {
		return errResp(500, "put failed")
	}
	return jsonResp(200, question)
}

// liveNumUpvotes counts the upvote markers with a strongly consistent
// read, so the caller's own mutation is always visible.
func (h *Questions) liveNumUpvotes(ctx context.Context, question models.Question) (int, error) {
	upvotes, err := db.QueryByKey[models.Upvote](ctx, h.ddb, h.cfg.Tables.QuestionsUpvotes, "questionId", question.QuestionID, true)
	if err != nil {
		return 0, err
	}
	return len(upvotes), nil
}

func (h *Questions) isUpvoted(ctx context.Context, user models.User, question models.Question) (events.APIGatewayV2HTTPResponse, error) {
	key := db.Key("questionId", question.QuestionID, "userId", user.UserID)
	_, err := db.Get[models.Upvote](ctx, h.ddb, h.cfg.Tables.QuestionsUpvotes, key)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return errResp(500, "query failed")
	}
	return jsonResp(200, map[string]bool{"upvoted": err == nil})
}

func (h *Questions) questionHasAnswers(ctx context.Context, question models.Question) (bool, error) {
	answers, err := db.QueryByKey[models.Answer](ctx, h.ddb, h.cfg.Tables.Answers, "questionId", question.QuestionID, false)
	if err != nil {
		return false, err
	}
	return len(answers) > 0, nil
}

// updateCountersOfTopic recomputes the denormalized question count. A
// failure leaves the counter stale until the next mutation.
func (h *Questions) updateCountersOfTopic(ctx context.Context, topic models.Topic) {
	questions, err := h.questionsOfTopic(ctx, topic)
	if err == nil {
		err = db.UpdateSet(ctx, h.ddb, h.cfg.Tables.Topics,
			db.Key("topicId", topic.TopicID), "numOfQuestions", len(questions))
	}
	if err != nil {
		slog.Warn("counters not updated", "topicId", topic.TopicID, "error", err)
	}
}
