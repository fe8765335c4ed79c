package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"backend/internal/config"
	"backend/internal/db"
	"backend/internal/models"

	"github.com/aws/aws-lambda-go/events"
)

// Each resource controller runs the same explicit pipeline:
// authenticate -> load context -> authorize -> execute -> respond.
// The stages are plain functions over the inbound request; there is no
// shared base handler and no lifecycle hooks.

func authenticate(req events.APIGatewayV2HTTPRequest) (models.User, error) {
	// The authorizer function puts the resolved user into the lambda
	// authorizer context under "user".
	if req.RequestContext.Authorizer == nil || req.RequestContext.Authorizer.Lambda == nil {
		return models.User{}, errors.New("missing authorizer context")
	}
	raw, ok := req.RequestContext.Authorizer.Lambda["user"]
	if !ok {
		return models.User{}, errors.New("missing user in authorizer context")
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return models.User{}, err
	}
	var user models.User
	if err := json.Unmarshal(b, &user); err != nil {
		return models.User{}, err
	}
	if strings.TrimSpace(user.UserID) == "" {
		return models.User{}, errors.New("missing user id")
	}
	return user, nil
}

func loadTopic(ctx context.Context, client db.DynamoAPI, cfg config.Config, topicID string) (models.Topic, error) {
	return db.Get[models.Topic](ctx, client, cfg.Tables.Topics, db.Key("topicId", topicID))
}

func loadQuestion(ctx context.Context, client db.DynamoAPI, cfg config.Config, topicID, questionID string) (models.Question, error) {
	return db.Get[models.Question](ctx, client, cfg.Tables.Questions,
		db.Key("topicId", topicID, "questionId", questionID))
}

// isCollectionMethod reports whether the request verb is valid on a
// collection path, where no resource id is present. PUT, PATCH and
// DELETE only make sense against an item.
func isCollectionMethod(req events.APIGatewayV2HTTPRequest) bool {
	switch req.RequestContext.HTTP.Method {
	case "GET", "POST":
		return true
	}
	return false
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func jsonResp(status int, v any) (events.APIGatewayV2HTTPResponse, error) {
	b, _ := json.Marshal(v)
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers: map[string]string{
			"content-type":                "application/json",
			"access-control-allow-origin": "*",
		},
		Body: string(b),
	}, nil
}

func errResp(status int, msg string) (events.APIGatewayV2HTTPResponse, error) {
	return jsonResp(status, map[string]any{
		"error": msg,
	})
}

func noContentResp() (events.APIGatewayV2HTTPResponse, error) {
	return events.APIGatewayV2HTTPResponse{
		StatusCode: 204,
		Headers: map[string]string{
			"access-control-allow-origin": "*",
		},
	}, nil
}

func invalidFieldsResp(fields []string) (events.APIGatewayV2HTTPResponse, error) {
	return errResp(400, "Invalid fields: "+strings.Join(fields, ", "))
}
