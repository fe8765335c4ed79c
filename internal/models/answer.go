package models

import "sort"

// Answer is a response to a Question. The existence of any answer
// freezes the question from further edits or deletion.
type Answer struct {
	QuestionID string `dynamodbav:"questionId" json:"questionId"`
	AnswerID   string `dynamodbav:"answerId" json:"answerId"`

	Text string `dynamodbav:"text" json:"text" validate:"required"`

	Creator Subject `dynamodbav:"creator" json:"creator"`

	CreatedAt string `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt string `dynamodbav:"updatedAt" json:"updatedAt,omitempty"`
}

func (a *Answer) Validate() []string {
	errs := fieldErrors(a)
	if a.Creator.UserID == "" {
		errs = append(errs, "creator")
	}
	return errs
}

func (a *Answer) CanUserEdit(u User) bool {
	return u.IsAdministrator || (a.Creator.UserID != "" && a.Creator.UserID == u.UserID)
}

func (a *Answer) SafeLoad(body Answer) {
	a.Text = body.Text
}

// SortAnswers orders oldest first, the reading order of a thread.
func SortAnswers(answers []Answer) {
	sort.SliceStable(answers, func(i, j int) bool {
		return answers[i].CreatedAt < answers[j].CreatedAt
	})
}
