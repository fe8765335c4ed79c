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

type Categories struct {
	cfg config.Config
	ddb db.DynamoAPI
}

func NewCategories(cfg config.Config, ddb db.DynamoAPI) *Categories {
	return &Categories{cfg: cfg, ddb: ddb}
}

func (h *Categories) Handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	user, err := authenticate(req)
	if err != nil {
		return errResp(401, "unauthorized")
	}

	categoryID := req.PathParameters["categoryId"]
	var category models.Category
	if categoryID != "" {
		category, err = db.Get[models.Category](ctx, h.ddb, h.cfg.Tables.Categories, db.Key("categoryId", categoryID))
		if err != nil {
			return errResp(404, "Category not found")
		}
	} else if !isCollectionMethod(req) {
		return errResp(404, "Category not found")
	}

	switch req.RequestContext.HTTP.Method {
	case "GET":
		if categoryID == "" {
			categories, err := db.ScanAll[models.Category](ctx, h.ddb, h.cfg.Tables.Categories)
			if err != nil {
				return errResp(500, "scan failed")
			}
			return jsonResp(200, categories)
		}
		return jsonResp(200, category)
	case "POST":
		if !user.IsAdministrator {
			return errResp(403, "Unauthorized")
		}
		var body models.Category
		if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
			return errResp(400, "invalid json body")
		}
		body.CategoryID = uuid.NewString()
		if fields := body.Validate(); len(fields) > 0 {
			return invalidFieldsResp(fields)
		}
		err := db.Put(ctx, h.ddb, h.cfg.Tables.Categories, body, "categoryId")
		if errors.Is(err, db.ErrConditionFailed) {
			return errResp(409, "Category already exists")
		}
		if err != nil {
			return errResp(500, "put failed")
		}
		return jsonResp(201, body)
	case "PUT":
		if !user.IsAdministrator {
			return errResp(403, "Unauthorized")
		}
		var changes models.Category
		if err := json.Unmarshal([]byte(req.Body), &changes); err != nil {
			return errResp(400, "invalid json body")
		}
		category.SafeLoad(changes)
		if fields := category.Validate(); len(fields) > 0 {
			return invalidFieldsResp(fields)
		}
		if err := db.Put(ctx, h.ddb, h.cfg.Tables.Categories, category); err != nil {
			return errResp(500, "put failed")
		}
		return jsonResp(200, category)
	case "DELETE":
		if !user.IsAdministrator {
			return errResp(403, "Unauthorized")
		}
		if err := db.Delete(ctx, h.ddb, h.cfg.Tables.Categories, db.Key("categoryId", category.CategoryID)); err != nil {
			return errResp(500, "delete failed")
		}
		return noContentResp()
	default:
		return errResp(405, "method not allowed")
	}
}
