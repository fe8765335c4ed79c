package config

import (
	"fmt"
	"os"
	"strings"
)

// Tables holds the physical DynamoDB table names injected at deploy time.
type Tables struct {
	Topics           string
	Questions        string
	QuestionsUpvotes string
	Answers          string
	Categories       string
	Events           string
}

// SES holds the identity used to send templated notification emails.
type SES struct {
	SourceName          string
	Source              string
	SourceArn           string
	Region              string
	TemplateNewQuestion string
}

// Config is built once in each cmd main and passed into handler
// constructors. Nothing in internal/ reads the environment directly.
type Config struct {
	Project string
	Stage   string

	Tables Tables
	SES    SES

	// Base URL for question deep links sent in notification emails.
	QuestionBaseURL string

	MediaBucket string

	// Addresses whose questions never trigger notifications.
	EmailBlocklist []string
}

// FromEnv reads the deployment-injected environment once.
func FromEnv() Config {
	stage := os.Getenv("STAGE")

	baseDomain := "esn-ga.link"
	prefix := "dev."
	if stage == "prod" {
		prefix = ""
	}

	return Config{
		Project: os.Getenv("PROJECT"),
		Stage:   stage,
		Tables: Tables{
			Topics:           os.Getenv("DDB_TABLE_topics"),
			Questions:        os.Getenv("DDB_TABLE_questions"),
			QuestionsUpvotes: os.Getenv("DDB_TABLE_questionsUpvotes"),
			Answers:          os.Getenv("DDB_TABLE_answers"),
			Categories:       os.Getenv("DDB_TABLE_categories"),
			Events:           os.Getenv("DDB_TABLE_events"),
		},
		SES: SES{
			SourceName:          "ESN General Assembly Q&A",
			Source:              os.Getenv("SES_SOURCE_ADDRESS"),
			SourceArn:           os.Getenv("SES_IDENTITY_ARN"),
			Region:              os.Getenv("SES_REGION"),
			TemplateNewQuestion: "notify-new-question",
		},
		QuestionBaseURL: fmt.Sprintf("https://%s%s/t/topics/", prefix, baseDomain),
		MediaBucket:     os.Getenv("MEDIA_BUCKET"),
	}
}

// BlocklistParameterName is the SSM parameter holding the comma-separated
// email blocklist for this stage.
func (c Config) BlocklistParameterName() string {
	return fmt.Sprintf("/%s/%s/email-blocklist", c.Project, c.Stage)
}

// IsEmailBlocklisted reports whether addr is on the loaded blocklist.
// Matching is case-insensitive; an empty address is never blocklisted.
func (c Config) IsEmailBlocklisted(addr string) bool {
	addr = strings.ToLower(strings.TrimSpace(addr))
	if addr == "" {
		return false
	}
	for _, b := range c.EmailBlocklist {
		if strings.ToLower(strings.TrimSpace(b)) == addr {
			return true
		}
	}
	return false
}
