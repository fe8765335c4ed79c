package models

// Topic is a discussion thread questions are asked under.
type Topic struct {
	TopicID     string `dynamodbav:"topicId" json:"topicId"`
	Name        string `dynamodbav:"name" json:"name" validate:"required"`
	Description string `dynamodbav:"description" json:"description,omitempty"`

	Category Category `dynamodbav:"category" json:"category" validate:"-"`
	Event    Event    `dynamodbav:"event" json:"event" validate:"-"`

	// Subjects to notify when a new question comes in.
	Subjects []Subject `dynamodbav:"subjects" json:"subjects"`

	// Empty means any authenticated user can ask.
	RolesAbleToAskQuestions []string `dynamodbav:"rolesAbleToAskQuestions" json:"rolesAbleToAskQuestions"`

	NumOfQuestions int `dynamodbav:"numOfQuestions" json:"numOfQuestions"`

	CreatedAt  string `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt  string `dynamodbav:"updatedAt" json:"updatedAt,omitempty"`
	ClosedAt   string `dynamodbav:"closedAt" json:"closedAt,omitempty"`
	ArchivedAt string `dynamodbav:"archivedAt" json:"archivedAt,omitempty"`

	// ARN of the SNS topic delivering follow alerts, set lazily.
	AlertsTopicArn string `dynamodbav:"alertsTopicArn" json:"-"`
}

func (t *Topic) Validate() []string {
	errs := fieldErrors(t)
	if t.Category.CategoryID == "" {
		errs = append(errs, "category")
	}
	if t.Event.EventID == "" {
		errs = append(errs, "event")
	}
	return errs
}

// IsClosed reports whether the topic no longer accepts new questions or
// answers, nor edits to unanswered questions.
func (t *Topic) IsClosed() bool {
	return t.ClosedAt != ""
}

func (t *Topic) IsArchived() bool {
	return t.ArchivedAt != ""
}

// CanUserAskQuestions checks the caller's role against the topic's
// allowed roles; administrators can always ask.
func (t *Topic) CanUserAskQuestions(u User) bool {
	if t.IsClosed() {
		return false
	}
	if u.IsAdministrator || len(t.RolesAbleToAskQuestions) == 0 {
		return true
	}
	return u.HasAnyRole(t.RolesAbleToAskQuestions)
}

// SafeLoad merges the client-editable fields of body onto t. Ids,
// counters, timestamps and status flags are never taken from the body.
func (t *Topic) SafeLoad(body Topic) {
	t.Name = body.Name
	t.Description = body.Description
	t.Category = body.Category
	t.Event = body.Event
	t.Subjects = body.Subjects
	t.RolesAbleToAskQuestions = body.RolesAbleToAskQuestions
}
