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

// Follower subscribes an email address to a topic's alert channel.
type Follower interface {
	EnsureTopicAlerts(ctx context.Context, topic *models.Topic, email string) (string, error)
}

// AttachmentResolver turns an attachment id into a download URL.
type AttachmentResolver interface {
	DownloadURL(ctx context.Context, topicID, attachmentID string) (string, error)
}

type Topics struct {
	cfg         config.Config
	ddb         db.DynamoAPI
	follower    Follower
	attachments AttachmentResolver
}

func NewTopics(cfg config.Config, ddb db.DynamoAPI, follower Follower, attachments AttachmentResolver) *Topics {
	return &Topics{cfg: cfg, ddb: ddb, follower: follower, attachments: attachments}
}

func (h *Topics) Handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	user, err := authenticate(req)
	if err != nil {
		return errResp(401, "unauthorized")
	}

	topicID := req.PathParameters["topicId"]
	var topic models.Topic
	if topicID != "" {
		topic, err = loadTopic(ctx, h.ddb, h.cfg, topicID)
		if err != nil {
			return errResp(404, "Topic not found")
		}
	} else if !isCollectionMethod(req) {
		return errResp(404, "Topic not found")
	}

	switch req.RequestContext.HTTP.Method {
	case "GET":
		if topicID == "" {
			return h.list(ctx)
		}
		if attachmentID := req.PathParameters["attachmentId"]; attachmentID != "" {
			return h.attachmentURL(ctx, topic, attachmentID)
		}
		return jsonResp(200, topic)
	case "POST":
		return h.create(ctx, user, req.Body)
	case "PUT":
		return h.update(ctx, user, topic, req.Body)
	case "PATCH":
		return h.patch(ctx, user, topic, req.Body)
	case "DELETE":
		return h.remove(ctx, user, topic)
	default:
		return errResp(405, "method not allowed")
	}
}

func (h *Topics) list(ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	topics, err := db.ScanAll[models.Topic](ctx, h.ddb, h.cfg.Tables.Topics)
	if err != nil {
		return errResp(500, "scan failed")
	}
	return jsonResp(200, topics)
}

func (h *Topics) create(ctx context.Context, user models.User, body string) (events.APIGatewayV2HTTPResponse, error) {
	if !user.IsAdministrator {
		return errResp(403, "Unauthorized")
	}

	var topic models.Topic
	if err := json.Unmarshal([]byte(body), &topic); err != nil {
		return errResp(400, "invalid json body")
	}
	topic.TopicID = uuid.NewString()
	topic.NumOfQuestions = 0
	topic.CreatedAt = nowISO()
	topic.UpdatedAt = ""
	topic.ClosedAt = ""
	topic.ArchivedAt = ""
	topic.AlertsTopicArn = ""

	if fields := topic.Validate(); len(fields) > 0 {
		return invalidFieldsResp(fields)
	}

	err := db.Put(ctx, h.ddb, h.cfg.Tables.Topics, topic, "topicId")
	if errors.Is(err, db.ErrConditionFailed) {
		return errResp(409, "Topic already exists")
	}
	if err != nil {
		return errResp(500, "put failed")
	}
	return jsonResp(201, topic)
}

func (h *Topics) update(ctx context.Context, user models.User, topic models.Topic, body string) (events.APIGatewayV2HTTPResponse, error) {
	if !user.IsAdministrator {
		return errResp(403, "Unauthorized")
	}
	if topic.IsArchived() {
		return errResp(409, "Topic is archived")
	}

	var changes models.Topic
	if err := json.Unmarshal([]byte(body), &changes); err != nil {
		return errResp(400, "invalid json body")
	}
	topic.SafeLoad(changes)
	topic.UpdatedAt = nowISO()

	if fields := topic.Validate(); len(fields) > 0 {
		return invalidFieldsResp(fields)
	}

	if err := db.Put(ctx, h.ddb, h.cfg.Tables.Topics, topic); err != nil {
		return errResp(500, "put failed")
	}
	return jsonResp(200, topic)
}

func (h *Topics) patch(ctx context.Context, user models.User, topic models.Topic, body string) (events.APIGatewayV2HTTPResponse, error) {
	cmd, err := parseTopicCommand(body)
	if err != nil {
		if errors.Is(err, errUnsupportedAction) {
			return errResp(400, "Unsupported action")
		}
		return errResp(400, "invalid json body")
	}

	if follow, ok := cmd.(followTopic); ok {
		return h.follow(ctx, user, topic, follow)
	}

	// Status changes are for organizers only; an archived topic can
	// only be unarchived.
	if !user.IsAdministrator {
		return errResp(403, "Unauthorized")
	}
	if _, ok := cmd.(unarchiveTopic); !ok && topic.IsArchived() {
		return errResp(409, "Topic is archived")
	}

	switch cmd.(type) {
	case openTopic:
		topic.ClosedAt = ""
	case closeTopic:
		topic.ClosedAt = nowISO()
	case archiveTopic:
		topic.ArchivedAt = nowISO()
	case unarchiveTopic:
		topic.ArchivedAt = ""
	}
	topic.UpdatedAt = nowISO()

	if err := db.Put(ctx, h.ddb, h.cfg.Tables.Topics, topic); err != nil {
		return errResp(500, "put failed")
	}
	return jsonResp(200, topic)
}

func (h *Topics) follow(ctx context.Context, user models.User, topic models.Topic, cmd followTopic) (events.APIGatewayV2HTTPResponse, error) {
	email := cmd.Email
	if email == "" {
		email = user.Email
	}
	if email == "" {
		return errResp(400, "Invalid fields: email")
	}
	if h.follower == nil {
		return errResp(500, "alerts not configured")
	}
	if _, err := h.follower.EnsureTopicAlerts(ctx, &topic, email); err != nil {
		return errResp(500, "subscription failed")
	}
	return jsonResp(200, map[string]bool{"followed": true})
}

func (h *Topics) attachmentURL(ctx context.Context, topic models.Topic, attachmentID string) (events.APIGatewayV2HTTPResponse, error) {
	if h.attachments == nil {
		return errResp(500, "attachments not configured")
	}
	url, err := h.attachments.DownloadURL(ctx, topic.TopicID, attachmentID)
	if err != nil {
		return errResp(500, "presign failed")
	}
	return jsonResp(200, map[string]string{"url": url})
}

func (h *Topics) remove(ctx context.Context, user models.User, topic models.Topic) (events.APIGatewayV2HTTPResponse, error) {
	if !user.IsAdministrator {
		return errResp(403, "Unauthorized")
	}
	if err := db.Delete(ctx, h.ddb, h.cfg.Tables.Topics, db.Key("topicId", topic.TopicID)); err != nil {
		return errResp(500, "delete failed")
	}
	return noContentResp()
}
