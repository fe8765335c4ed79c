package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"backend/internal/config"
	"backend/internal/db"
	"backend/internal/db/dynamotest"
	"backend/internal/models"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	return config.Config{
		Project: "esn-assembly",
		Stage:   "dev",
		Tables: config.Tables{
			Topics:           "topics",
			Questions:        "questions",
			QuestionsUpvotes: "questionsUpvotes",
			Answers:          "answers",
			Categories:       "categories",
			Events:           "events",
		},
		QuestionBaseURL: "https://dev.esn-ga.link/t/topics/",
	}
}

func newFake(t *testing.T) *dynamotest.Fake {
	t.Helper()
	fake := dynamotest.New()
	fake.AddTable("topics", "topicId")
	fake.AddTable("questions", "topicId", "questionId")
	fake.AddTable("questionsUpvotes", "questionId", "userId")
	fake.AddTable("answers", "questionId", "answerId")
	fake.AddTable("categories", "categoryId")
	fake.AddTable("events", "eventId")
	return fake
}

func seed(t *testing.T, fake *dynamotest.Fake, table string, item any) {
	t.Helper()
	require.NoError(t, db.Put(context.Background(), fake, table, item))
}

// request builds an API Gateway event with the user placed where the
// authorizer function puts it.
func request(t *testing.T, method string, pathParams map[string]string, user models.User, body string) events.APIGatewayV2HTTPRequest {
	t.Helper()
	b, err := json.Marshal(user)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))

	return events.APIGatewayV2HTTPRequest{
		PathParameters: pathParams,
		Body:           body,
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{Method: method},
			Authorizer: &events.APIGatewayV2HTTPRequestContextAuthorizerDescription{
				Lambda: map[string]any{"user": raw},
			},
		},
	}
}

func decodeBody[T any](t *testing.T, resp events.APIGatewayV2HTTPResponse) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &v))
	return v
}

func openTestTopic() models.Topic {
	return models.Topic{
		TopicID:   "t1",
		Name:      "Budget Review",
		Category:  models.Category{CategoryID: "c1", Name: "Finance"},
		Event:     models.Event{EventID: "e1", Name: "GA 2026"},
		Subjects:  []models.Subject{{UserID: "board1", Name: "Board", Email: "board@example.org"}},
		CreatedAt: "2026-01-01T00:00:00Z",
	}
}

type notifierMock struct {
	calls []models.Question
	err   error
}

func (n *notifierMock) NotifyNewQuestion(_ context.Context, _ models.Topic, question models.Question) error {
	n.calls = append(n.calls, question)
	return n.err
}
