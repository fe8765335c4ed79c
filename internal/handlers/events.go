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

type Events struct {
	cfg config.Config
	ddb db.DynamoAPI
}

func NewEvents(cfg config.Config, ddb db.DynamoAPI) *Events {
	return &Events{cfg: cfg, ddb: ddb}
}

func (h *Events) Handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	user, err := authenticate(req)
	if err != nil {
		return errResp(401, "unauthorized")
	}

	eventID := req.PathParameters["eventId"]
	var event models.Event
	if eventID != "" {
		event, err = db.Get[models.Event](ctx, h.ddb, h.cfg.Tables.Events, db.Key("eventId", eventID))
		if err != nil {
			return errResp(404, "Event not found")
		}
	} else if !isCollectionMethod(req) {
		return errResp(404, "Event not found")
	}

	switch req.RequestContext.HTTP.Method {
	case "GET":
		if eventID == "" {
			all, err := db.ScanAll[models.Event](ctx, h.ddb, h.cfg.Tables.Events)
			if err != nil {
				return errResp(500, "scan failed")
			}
			return jsonResp(200, all)
		}
		return jsonResp(200, event)
	case "POST":
		if !user.IsAdministrator {
			return errResp(403, "Unauthorized")
		}
		var body models.Event
		if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
			return errResp(400, "invalid json body")
		}
		body.EventID = uuid.NewString()
		if fields := body.Validate(); len(fields) > 0 {
			return invalidFieldsResp(fields)
		}
		err := db.Put(ctx, h.ddb, h.cfg.Tables.Events, body, "eventId")
		if errors.Is(err, db.ErrConditionFailed) {
			return errResp(409, "Event already exists")
		}
		if err != nil {
			return errResp(500, "put failed")
		}
		return jsonResp(201, body)
	case "PUT":
		if !user.IsAdministrator {
			return errResp(403, "Unauthorized")
		}
		var changes models.Event
		if err := json.Unmarshal([]byte(req.Body), &changes); err != nil {
			return errResp(400, "invalid json body")
		}
		event.SafeLoad(changes)
		if fields := event.Validate(); len(fields) > 0 {
			return invalidFieldsResp(fields)
		}
		if err := db.Put(ctx, h.ddb, h.cfg.Tables.Events, event); err != nil {
			return errResp(500, "put failed")
		}
		return jsonResp(200, event)
	case "DELETE":
		if !user.IsAdministrator {
			return errResp(403, "Unauthorized")
		}
		if err := db.Delete(ctx, h.ddb, h.cfg.Tables.Events, db.Key("eventId", event.EventID)); err != nil {
			return errResp(500, "delete failed")
		}
		return noContentResp()
	default:
		return errResp(405, "method not allowed")
	}
}
