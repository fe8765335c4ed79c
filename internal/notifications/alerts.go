package notifications

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"

	"backend/internal/config"
	"backend/internal/db"
	"backend/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// SNSAPI is the slice of *sns.Client the alert subscriptions need.
type SNSAPI interface {
	CreateTopic(ctx context.Context, params *sns.CreateTopicInput, optFns ...func(*sns.Options)) (*sns.CreateTopicOutput, error)
	Subscribe(ctx context.Context, params *sns.SubscribeInput, optFns ...func(*sns.Options)) (*sns.SubscribeOutput, error)
}

var _ SNSAPI = (*sns.Client)(nil)

// TopicAlerts manages the per-topic SNS channels followers subscribe to
// by email.
type TopicAlerts struct {
	cfg config.Config
	ddb db.DynamoAPI
	sns SNSAPI
}

func NewTopicAlerts(cfg config.Config, ddb db.DynamoAPI, snsClient SNSAPI) *TopicAlerts {
	return &TopicAlerts{cfg: cfg, ddb: ddb, sns: snsClient}
}

func shortHashID(id string) string {
	h := sha1.Sum([]byte(id))
	// 8 bytes -> 16 hex chars, stable and short
	return hex.EncodeToString(h[:8])
}

// EnsureTopicAlerts ensures:
// - an SNS topic exists for the discussion topic
// - an email subscription exists for the follower (confirmed once)
// - the topic record stores the alertsTopicArn
//
// Returns the SNS topic ARN.
func (a *TopicAlerts) EnsureTopicAlerts(ctx context.Context, topic *models.Topic, email string) (string, error) {
	email = strings.TrimSpace(email)
	if topic.TopicID == "" || email == "" {
		return "", nil
	}

	arn := topic.AlertsTopicArn
	if arn == "" {
		// SNS topic names must be simple (no slashes, etc.)
		name := fmt.Sprintf("%s-topic-alerts-%s-%s", a.cfg.Project, a.cfg.Stage, shortHashID(topic.TopicID))
		ct, err := a.sns.CreateTopic(ctx, &sns.CreateTopicInput{
			Name: aws.String(name),
		})
		if err != nil {
			return "", err
		}
		arn = aws.ToString(ct.TopicArn)

		if err := db.UpdateSet(ctx, a.ddb, a.cfg.Tables.Topics,
			db.Key("topicId", topic.TopicID), "alertsTopicArn", arn); err != nil {
			return "", err
		}
		topic.AlertsTopicArn = arn
	}

	// Subscribe email (requires confirm link click once)
	_, err := a.sns.Subscribe(ctx, &sns.SubscribeInput{
		TopicArn: aws.String(arn),
		Protocol: aws.String("email"),
		Endpoint: aws.String(email),
	})
	if err != nil {
		return "", err
	}

	return arn, nil
}
