package models

import "sort"

// Question is a single query posed under a Topic.
type Question struct {
	TopicID    string `dynamodbav:"topicId" json:"topicId"`
	QuestionID string `dynamodbav:"questionId" json:"questionId"`

	Summary string `dynamodbav:"summary" json:"summary" validate:"required"`
	Text    string `dynamodbav:"text" json:"text,omitempty"`

	Creator Subject `dynamodbav:"creator" json:"creator"`

	NumOfUpvotes int `dynamodbav:"numOfUpvotes" json:"numOfUpvotes"`

	CreatedAt string `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt string `dynamodbav:"updatedAt" json:"updatedAt,omitempty"`
}

func (q *Question) Validate() []string {
	errs := fieldErrors(q)
	if q.Creator.UserID == "" {
		errs = append(errs, "creator")
	}
	return errs
}

// CanUserEdit allows the creator and administrators.
func (q *Question) CanUserEdit(u User) bool {
	return u.IsAdministrator || (q.Creator.UserID != "" && q.Creator.UserID == u.UserID)
}

// SafeLoad merges the client-editable fields of body onto q.
func (q *Question) SafeLoad(body Question) {
	q.Summary = body.Summary
	q.Text = body.Text
}

// lastTouched is the timestamp questions sort by in lists.
func (q *Question) lastTouched() string {
	if q.UpdatedAt != "" {
		return q.UpdatedAt
	}
	return q.CreatedAt
}

// SortQuestions orders most recently touched first.
func SortQuestions(questions []Question) {
	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].lastTouched() > questions[j].lastTouched()
	})
}

// Upvote marks that a user upvoted a question; its existence is the vote.
type Upvote struct {
	QuestionID string `dynamodbav:"questionId" json:"questionId"`
	UserID     string `dynamodbav:"userId" json:"userId"`
	CreatedAt  string `dynamodbav:"createdAt" json:"createdAt,omitempty"`
}
