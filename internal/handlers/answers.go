package handlers

import (
	"context"
	"encoding/json"
	"errors"

	"backend/internal/config"
	"backend/internal/db"
	"backend/internal/models"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
)

type Answers struct {
	cfg config.Config
	ddb db.DynamoAPI
}

func NewAnswers(cfg config.Config, ddb db.DynamoAPI) *Answers {
	return &Answers{cfg: cfg, ddb: ddb}
}

func (h *Answers) Handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	user, err := authenticate(req)
	if err != nil {
		return errResp(401, "unauthorized")
	}

	topic, err := loadTopic(ctx, h.ddb, h.cfg, req.PathParameters["topicId"])
	if err != nil {
		return errResp(404, "Topic not found")
	}
	question, err := loadQuestion(ctx, h.ddb, h.cfg, topic.TopicID, req.PathParameters["questionId"])
	if err != nil {
		return errResp(404, "Question not found")
	}

	answerID := req.PathParameters["answerId"]
	var answer models.Answer
	if answerID != "" {
		answer, err = db.Get[models.Answer](ctx, h.ddb, h.cfg.Tables.Answers,
			db.Key("questionId", question.QuestionID, "answerId", answerID))
		if err != nil {
			return errResp(404, "Answer not found")
		}
	} else if !isCollectionMethod(req) {
		return errResp(404, "Answer not found")
	}

	switch req.RequestContext.HTTP.Method {
	case "GET":
		if answerID == "" {
			return h.list(ctx, question)
		}
		return jsonResp(200, answer)
	case "POST":
		return h.create(ctx, user, topic, question, req.Body)
	case "PUT":
		return h.update(ctx, user, topic, answer, req.Body)
	case "DELETE":
		return h.remove(ctx, user, topic, answer)
	default:
		return errResp(405, "method not allowed")
	}
}

func (h *Answers) list(ctx context.Context, question models.Question) (events.APIGatewayV2HTTPResponse, error) {
	answers, err := db.QueryByKey[models.Answer](ctx, h.ddb, h.cfg.Tables.Answers, "questionId", question.QuestionID, false)
	if err != nil {
		return errResp(500, "query failed")
	}
	models.SortAnswers(answers)
	return jsonResp(200, answers)
}

// canUserAnswer restricts answering to administrators and the topic's
// subjects (the panel the questions are addressed to).
func canUserAnswer(user models.User, topic models.Topic) bool {
	if user.IsAdministrator {
		return true
	}
	for _, s := range topic.Subjects {
		if s.UserID != "" && s.UserID == user.UserID {
			return true
		}
	}
	return false
}

func (h *Answers) create(ctx context.Context, user models.User, topic models.Topic, question models.Question, body string) (events.APIGatewayV2HTTPResponse, error) {
	if topic.IsClosed() {
		return errResp(409, "Topic is closed")
	}
	if !canUserAnswer(user, topic) {
		return errResp(403, "Role not allowed to answer")
	}

	var answer models.Answer
	if err := json.Unmarshal([]byte(body), &answer); err != nil {
		return errResp(400, "invalid json body")
	}
	answer.QuestionID = question.QuestionID
	answer.AnswerID = uuid.NewString()
	answer.CreatedAt = nowISO()
	answer.UpdatedAt = ""
	if answer.Creator.UserID == "" {
		answer.Creator = models.SubjectFromUser(user)
	}

	if fields := answer.Validate(); len(fields) > 0 {
		return invalidFieldsResp(fields)
	}

	err := db.Put(ctx, h.ddb, h.cfg.Tables.Answers, answer, "questionId", "answerId")
	if errors.Is(err, db.ErrConditionFailed) {
		return errResp(409, "Answer already exists")
	}
	if err != nil {
		return errResp(500, "put failed")
	}

	// Surface the activity in question lists.
	question.UpdatedAt = answer.CreatedAt
	if err := db.Put(ctx, h.ddb, h.cfg.Tables.Questions, question); err != nil {
		return errResp(500, "put failed")
	}

	return jsonResp(201, answer)
}

func (h *Answers) update(ctx context.Context, user models.User, topic models.Topic, answer models.Answer, body string) (events.APIGatewayV2HTTPResponse, error) {
	if !answer.CanUserEdit(user) {
		return errResp(403, "Unauthorized")
	}
	if topic.IsClosed() {
		return errResp(409, "Topic is closed")
	}

	var changes models.Answer
	if err := json.Unmarshal([]byte(body), &changes); err != nil {
		return errResp(400, "invalid json body")
	}
	answer.SafeLoad(changes)
	answer.UpdatedAt = nowISO()

	if fields := answer.Validate(); len(fields) > 0 {
		return invalidFieldsResp(fields)
	}

	if err := db.Put(ctx, h.ddb, h.cfg.Tables.Answers, answer); err != nil {
		return errResp(500, "put failed")
	}
	return jsonResp(200, answer)
}

func (h *Answers) remove(ctx context.Context, user models.User, topic models.Topic, answer models.Answer) (events.APIGatewayV2HTTPResponse, error) {
	if !answer.CanUserEdit(user) {
		return errResp(403, "Unauthorized")
	}
	if topic.IsClosed() {
		return errResp(409, "Topic is closed")
	}

	key := db.Key("questionId", answer.QuestionID, "answerId", answer.AnswerID)
	if err := db.Delete(ctx, h.ddb, h.cfg.Tables.Answers, key); err != nil {
		return errResp(500, "delete failed")
	}
	return noContentResp()
}
