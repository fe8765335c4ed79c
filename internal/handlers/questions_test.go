package handlers

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"backend/internal/db"
	"backend/internal/db/dynamotest"
	"backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func questionPathParams(questionID string) map[string]string {
	params := map[string]string{"topicId": "t1"}
	if questionID != "" {
		params["questionId"] = questionID
	}
	return params
}

func newQuestionsHandler(t *testing.T) (*Questions, *fixtures) {
	t.Helper()
	fake := newFake(t)
	notifier := &notifierMock{}
	h := NewQuestions(testConfig(), fake, notifier)
	return h, &fixtures{fake: fake, notifier: notifier}
}

type fixtures struct {
	fake     *dynamotest.Fake
	notifier *notifierMock
}

func TestCreateQuestion(t *testing.T) {
	h, fx := newQuestionsHandler(t)
	seed(t, fx.fake, "topics", openTestTopic())

	user := models.User{UserID: "u1", Name: "Ada", Email: "ada@example.org"}
	body := `{"summary":"When is the budget vote?","text":"Agenda unclear."}`

	resp, err := h.Handle(context.Background(), request(t, "POST", questionPathParams(""), user, body))
	require.NoError(t, err)
	require.Equal(t, 201, resp.StatusCode, resp.Body)

	created := decodeBody[models.Question](t, resp)
	assert.NotEmpty(t, created.QuestionID)
	assert.Equal(t, "t1", created.TopicID)
	assert.Equal(t, "u1", created.Creator.UserID)

	// the denormalized counter matches the live count
	topic, err := db.Get[models.Topic](context.Background(), fx.fake, "topics", db.Key("topicId", "t1"))
	require.NoError(t, err)
	assert.Equal(t, 1, topic.NumOfQuestions)

	require.Len(t, fx.notifier.calls, 1)
	assert.Equal(t, created.QuestionID, fx.notifier.calls[0].QuestionID)
}

func TestCreateQuestionClosedTopic(t *testing.T) {
	h, fx := newQuestionsHandler(t)
	topic := openTestTopic()
	topic.ClosedAt = "2026-01-02T00:00:00Z"
	seed(t, fx.fake, "topics", topic)

	user := models.User{UserID: "u1"}
	resp, err := h.Handle(context.Background(), request(t, "POST", questionPathParams(""), user, `{"summary":"late"}`))
	require.NoError(t, err)

	assert.Equal(t, 409, resp.StatusCode)
	assert.Contains(t, resp.Body, "Topic is closed")
	assert.Equal(t, 0, fx.fake.Len("questions"))
	assert.Empty(t, fx.notifier.calls)
}

func TestCreateQuestionRoleNotAllowed(t *testing.T) {
	h, fx := newQuestionsHandler(t)
	topic := openTestTopic()
	topic.RolesAbleToAskQuestions = []string{"board"}
	seed(t, fx.fake, "topics", topic)

	user := models.User{UserID: "u1", Roles: []string{"delegate"}}
	resp, err := h.Handle(context.Background(), request(t, "POST", questionPathParams(""), user, `{"summary":"q"}`))
	require.NoError(t, err)

	assert.Equal(t, 403, resp.StatusCode)
	assert.Equal(t, 0, fx.fake.Len("questions"))
}

func TestCreateQuestionInvalidFields(t *testing.T) {
	h, fx := newQuestionsHandler(t)
	seed(t, fx.fake, "topics", openTestTopic())

	user := models.User{UserID: "u1"}
	resp, err := h.Handle(context.Background(), request(t, "POST", questionPathParams(""), user, `{"text":"no summary"}`))
	require.NoError(t, err)

	assert.Equal(t, 400, resp.StatusCode)
	assert.Contains(t, resp.Body, "Invalid fields")
	assert.Contains(t, resp.Body, "summary")
}

func TestCreateQuestionNotificationFailureAborts(t *testing.T) {
	h, fx := newQuestionsHandler(t)
	seed(t, fx.fake, "topics", openTestTopic())
	fx.notifier.err = errors.New("ses unavailable")

	user := models.User{UserID: "u1"}
	resp, err := h.Handle(context.Background(), request(t, "POST", questionPathParams(""), user, `{"summary":"q"}`))
	require.NoError(t, err)

	assert.Equal(t, 500, resp.StatusCode)
	// the question was already stored before the send was attempted
	assert.Equal(t, 1, fx.fake.Len("questions"))
}

func TestCreateQuestionCounterFailureIsSwallowed(t *testing.T) {
	h, fx := newQuestionsHandler(t)
	seed(t, fx.fake, "topics", openTestTopic())
	fx.fake.ErrUpdateItem = errors.New("throttled")

	user := models.User{UserID: "u1"}
	resp, err := h.Handle(context.Background(), request(t, "POST", questionPathParams(""), user, `{"summary":"q"}`))
	require.NoError(t, err)

	// the primary operation still succeeds, the counter stays stale
	assert.Equal(t, 201, resp.StatusCode)
	topic, err := db.Get[models.Topic](context.Background(), fx.fake, "topics", db.Key("topicId", "t1"))
	require.NoError(t, err)
	assert.Equal(t, 0, topic.NumOfQuestions)
}

func seedQuestion(t *testing.T, fx *fixtures, questionID, creatorID string) models.Question {
	t.Helper()
	question := models.Question{
		TopicID:    "t1",
		QuestionID: questionID,
		Summary:    "When is the budget vote?",
		Creator:    models.Subject{UserID: creatorID, Name: "Ada"},
		CreatedAt:  "2026-01-03T00:00:00Z",
	}
	seed(t, fx.fake, "questions", question)
	return question
}

func TestGetQuestionNotFound(t *testing.T) {
	h, fx := newQuestionsHandler(t)
	seed(t, fx.fake, "topics", openTestTopic())

	resp, err := h.Handle(context.Background(), request(t, "GET", questionPathParams("missing"), models.User{UserID: "u1"}, ""))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
	assert.Contains(t, resp.Body, "Question not found")
}

func TestListQuestionsSortedByLastActivity(t *testing.T) {
	h, fx := newQuestionsHandler(t)
	seed(t, fx.fake, "topics", openTestTopic())
	seed(t, fx.fake, "questions", models.Question{TopicID: "t1", QuestionID: "a", Summary: "a", Creator: models.Subject{UserID: "u1"}, CreatedAt: "2026-01-01T00:00:00Z"})
	seed(t, fx.fake, "questions", models.Question{TopicID: "t1", QuestionID: "b", Summary: "b", Creator: models.Subject{UserID: "u1"}, CreatedAt: "2026-01-02T00:00:00Z"})
	seed(t, fx.fake, "questions", models.Question{TopicID: "t1", QuestionID: "c", Summary: "c", Creator: models.Subject{UserID: "u1"}, CreatedAt: "2026-01-01T06:00:00Z", UpdatedAt: "2026-01-03T00:00:00Z"})

	resp, err := h.Handle(context.Background(), request(t, "GET", questionPathParams(""), models.User{UserID: "u1"}, ""))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	questions := decodeBody[[]models.Question](t, resp)
	require.Len(t, questions, 3)
	assert.Equal(t, "c", questions[0].QuestionID)
	assert.Equal(t, "b", questions[1].QuestionID)
	assert.Equal(t, "a", questions[2].QuestionID)
}

func TestUpdateQuestion(t *testing.T) {
	h, fx := newQuestionsHandler(t)
	seed(t, fx.fake, "topics", openTestTopic())
	seedQuestion(t, fx, "q1", "u1")

	body := `{"summary":"Rephrased","text":"clearer"}`
	resp, err := h.Handle(context.Background(), request(t, "PUT", questionPathParams("q1"), models.User{UserID: "u1"}, body))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode, resp.Body)

	updated := decodeBody[models.Question](t, resp)
	assert.Equal(t, "Rephrased", updated.Summary)
	assert.NotEmpty(t, updated.UpdatedAt)
	assert.Equal(t, "u1", updated.Creator.UserID)
}

func TestUpdateQuestionUnauthorized(t *testing.T) {
	h, fx := newQuestionsHandler(t)
	seed(t, fx.fake, "topics", openTestTopic())
	seedQuestion(t, fx, "q1", "u1")

	resp, err := h.Handle(context.Background(), request(t, "PUT", questionPathParams("q1"), models.User{UserID: "u2"}, `{"summary":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)
}

func TestUpdateQuestionWithAnswers(t *testing.T) {
	h, fx := newQuestionsHandler(t)
	seed(t, fx.fake, "topics", openTestTopic())
	seedQuestion(t, fx, "q1", "u1")
	seed(t, fx.fake, "answers", models.Answer{QuestionID: "q1", AnswerID: "a1", Text: "answered", Creator: models.Subject{UserID: "board1"}, CreatedAt: "2026-01-04T00:00:00Z"})

	resp, err := h.Handle(context.Background(), request(t, "PUT", questionPathParams("q1"), models.User{UserID: "u1"}, `{"summary":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, 409, resp.StatusCode)
	assert.Contains(t, resp.Body, "Question has answers")

	resp, err = h.Handle(context.Background(), request(t, "DELETE", questionPathParams("q1"), models.User{UserID: "u1"}, ""))
	require.NoError(t, err)
	assert.Equal(t, 409, resp.StatusCode)
	assert.Equal(t, 1, fx.fake.Len("questions"))
}

func TestDeleteQuestionRecomputesCounter(t *testing.T) {
	h, fx := newQuestionsHandler(t)
	topic := openTestTopic()
	topic.NumOfQuestions = 1
	seed(t, fx.fake, "topics", topic)
	seedQuestion(t, fx, "q1", "u1")

	resp, err := h.Handle(context.Background(), request(t, "DELETE", questionPathParams("q1"), models.User{UserID: "u1"}, ""))
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)
	assert.Equal(t, 0, fx.fake.Len("questions"))

	stored, err := db.Get[models.Topic](context.Background(), fx.fake, "topics", db.Key("topicId", "t1"))
	require.NoError(t, err)
	assert.Equal(t, 0, stored.NumOfQuestions)
}

func patchAction(action string) string {
	return fmt.Sprintf(`{"action":%q}`, action)
}

func TestUpvoteLifecycle(t *testing.T) {
	h, fx := newQuestionsHandler(t)
	seed(t, fx.fake, "topics", openTestTopic())
	seedQuestion(t, fx, "q1", "u1")

	ada := models.User{UserID: "u1"}
	bob := models.User{UserID: "u2"}

	// upvote, then check
	resp, err := h.Handle(context.Background(), request(t, "PATCH", questionPathParams("q1"), ada, patchAction("UPVOTE")))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode, resp.Body)
	assert.Equal(t, 1, decodeBody[models.Question](t, resp).NumOfUpvotes)

	resp, err = h.Handle(context.Background(), request(t, "PATCH", questionPathParams("q1"), ada, patchAction("IS_UPVOTED")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"upvoted":true}`, resp.Body)

	// re-upvoting by the same user does not inflate the count
	resp, err = h.Handle(context.Background(), request(t, "PATCH", questionPathParams("q1"), ada, patchAction("UPVOTE")))
	require.NoError(t, err)
	assert.Equal(t, 1, decodeBody[models.Question](t, resp).NumOfUpvotes)

	// a second user makes it two
	resp, err = h.Handle(context.Background(), request(t, "PATCH", questionPathParams("q1"), bob, patchAction("UPVOTE")))
	require.NoError(t, err)
	assert.Equal(t, 2, decodeBody[models.Question](t, resp).NumOfUpvotes)

	// cancelling drops back to one and the check turns false
	resp, err = h.Handle(context.Background(), request(t, "PATCH", questionPathParams("q1"), ada, patchAction("UPVOTE_CANCEL")))
	require.NoError(t, err)
	assert.Equal(t, 1, decodeBody[models.Question](t, resp).NumOfUpvotes)

	resp, err = h.Handle(context.Background(), request(t, "PATCH", questionPathParams("q1"), ada, patchAction("IS_UPVOTED")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"upvoted":false}`, resp.Body)
}

func TestPatchUnsupportedAction(t *testing.T) {
	h, fx := newQuestionsHandler(t)
	seed(t, fx.fake, "topics", openTestTopic())
	seedQuestion(t, fx, "q1", "u1")

	resp, err := h.Handle(context.Background(), request(t, "PATCH", questionPathParams("q1"), models.User{UserID: "u1"}, patchAction("SHOUT")))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
	assert.Contains(t, resp.Body, "Unsupported action")
}

func TestQuestionsTopicNotFound(t *testing.T) {
	h, _ := newQuestionsHandler(t)

	resp, err := h.Handle(context.Background(), request(t, "GET", questionPathParams(""), models.User{UserID: "u1"}, ""))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
	assert.Contains(t, resp.Body, "Topic not found")
}

func TestQuestionsCollectionPathRejectsItemVerbs(t *testing.T) {
	h, fx := newQuestionsHandler(t)
	seed(t, fx.fake, "topics", openTestTopic())
	user := models.User{UserID: "u1"}

	// without a questionId only list and create are valid; an upvote
	// here must not write a marker keyed by an empty id
	resp, err := h.Handle(context.Background(), request(t, "PATCH", questionPathParams(""), user, patchAction("UPVOTE")))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
	assert.Equal(t, 0, fx.fake.Len("questionsUpvotes"))
	assert.Equal(t, 0, fx.fake.Len("questions"))

	resp, err = h.Handle(context.Background(), request(t, "PUT", questionPathParams(""), user, `{"summary":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)

	resp, err = h.Handle(context.Background(), request(t, "DELETE", questionPathParams(""), user, ""))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestQuestionsUnauthenticated(t *testing.T) {
	h, fx := newQuestionsHandler(t)
	seed(t, fx.fake, "topics", openTestTopic())

	resp, err := h.Handle(context.Background(), request(t, "GET", questionPathParams(""), models.User{}, ""))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}
