package maintenance

import (
	"context"
	"log/slog"

	"backend/internal/config"
	"backend/internal/db"
	"backend/internal/models"

	"github.com/aws/aws-lambda-go/events"
)

// CountersRepair is the scheduled job that walks every topic and
// rewrites numOfQuestions wherever a swallowed recomputation left it
// stale.
type CountersRepair struct {
	cfg config.Config
	ddb db.DynamoAPI
}

func NewCountersRepair(cfg config.Config, ddb db.DynamoAPI) *CountersRepair {
	return &CountersRepair{cfg: cfg, ddb: ddb}
}

// Handle is triggered by an EventBridge schedule.
func (r *CountersRepair) Handle(ctx context.Context, _ events.CloudWatchEvent) (map[string]any, error) {
	topics, err := db.ScanAll[models.Topic](ctx, r.ddb, r.cfg.Tables.Topics)
	if err != nil {
		return nil, err
	}

	checked := 0
	repaired := 0
	failed := 0

	for _, topic := range topics {
		checked++
		questions, err := db.QueryByKey[models.Question](ctx, r.ddb, r.cfg.Tables.Questions, "topicId", topic.TopicID, false)
		if err != nil {
			slog.Warn("counters repair: query failed", "topicId", topic.TopicID, "error", err)
			failed++
			continue
		}
		if len(questions) == topic.NumOfQuestions {
			continue
		}
		err = db.UpdateSet(ctx, r.ddb, r.cfg.Tables.Topics,
			db.Key("topicId", topic.TopicID), "numOfQuestions", len(questions))
		if err != nil {
			slog.Warn("counters repair: update failed", "topicId", topic.TopicID, "error", err)
			failed++
			continue
		}
		repaired++
	}

	slog.Info("counters repair done", "checked", checked, "repaired", repaired, "failed", failed)

	return map[string]any{
		"checked":  checked,
		"repaired": repaired,
		"failed":   failed,
	}, nil
}
