package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"backend/internal/config"
	"backend/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESAPI is the slice of *sesv2.Client the sender needs.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

var _ SESAPI = (*sesv2.Client)(nil)

type EmailSender struct {
	cfg config.Config
	ses SESAPI
}

func NewEmailSender(cfg config.Config, ses SESAPI) *EmailSender {
	return &EmailSender{cfg: cfg, ses: ses}
}

// NotifyNewQuestion emails every subject of the topic that has an email
// address. When the asker's address is blocklisted, no mail goes out at
// all. Sends are sequential and a failure aborts the remaining ones.
func (s *EmailSender) NotifyNewQuestion(ctx context.Context, topic models.Topic, question models.Question) error {
	if s.cfg.IsEmailBlocklisted(question.Creator.Email) {
		return nil
	}

	for _, subject := range topic.Subjects {
		if subject.Email == "" {
			continue
		}
		templateData, err := json.Marshal(map[string]string{
			"userName": subject.Name,
			"topic":    topic.Name,
			"question": question.Summary,
			"url":      s.cfg.QuestionBaseURL + topic.TopicID,
		})
		if err != nil {
			return err
		}

		_, err = s.ses.SendEmail(ctx, &sesv2.SendEmailInput{
			FromEmailAddress:            aws.String(fmt.Sprintf("%s <%s>", s.cfg.SES.SourceName, s.cfg.SES.Source)),
			FromEmailAddressIdentityArn: aws.String(s.cfg.SES.SourceArn),
			Destination: &sestypes.Destination{
				ToAddresses: []string{subject.Email},
			},
			Content: &sestypes.EmailContent{
				Template: &sestypes.Template{
					TemplateName: aws.String(s.cfg.SES.TemplateNewQuestion),
					TemplateData: aws.String(string(templateData)),
				},
			},
		})
		if err != nil {
			return fmt.Errorf("send to %s: %w", subject.Email, err)
		}
	}
	return nil
}
