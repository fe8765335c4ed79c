package models

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionValidate(t *testing.T) {
	question := Question{
		Summary: "When is the budget vote?",
		Creator: Subject{UserID: "u1", Name: "Ada"},
	}
	assert.Empty(t, question.Validate())

	question.Summary = ""
	assert.Contains(t, question.Validate(), "summary")

	question.Summary = "ok"
	question.Creator = Subject{}
	assert.Contains(t, question.Validate(), "creator")
}

func TestQuestionCanUserEdit(t *testing.T) {
	question := Question{Creator: Subject{UserID: "u1"}}

	assert.True(t, question.CanUserEdit(User{UserID: "u1"}))
	assert.False(t, question.CanUserEdit(User{UserID: "u2"}))
	assert.True(t, question.CanUserEdit(User{UserID: "u2", IsAdministrator: true}))

	// a record without creator is only editable by administrators
	question.Creator = Subject{}
	assert.False(t, question.CanUserEdit(User{UserID: ""}))
}

func TestSortQuestions(t *testing.T) {
	questions := []Question{
		{QuestionID: "a", CreatedAt: "2026-01-01T00:00:00Z"},
		{QuestionID: "b", CreatedAt: "2026-01-02T00:00:00Z"},
		{QuestionID: "c", CreatedAt: "2026-01-01T12:00:00Z", UpdatedAt: "2026-01-03T00:00:00Z"},
	}
	SortQuestions(questions)

	// updatedAt wins over createdAt when present
	assert.Equal(t, "c", questions[0].QuestionID)
	assert.Equal(t, "b", questions[1].QuestionID)
	assert.Equal(t, "a", questions[2].QuestionID)
}

func TestQuestionStorageRoundTrip(t *testing.T) {
	question := Question{
		TopicID:      "t1",
		QuestionID:   "q1",
		Summary:      "When is the budget vote?",
		Text:         "The agenda is unclear about the order of plenaries.",
		Creator:      Subject{UserID: "u1", Name: "Ada", Email: "ada@example.org"},
		NumOfUpvotes: 3,
		CreatedAt:    "2026-01-01T00:00:00Z",
		UpdatedAt:    "2026-01-02T00:00:00Z",
	}

	av, err := attributevalue.MarshalMap(question)
	require.NoError(t, err)

	var restored Question
	require.NoError(t, attributevalue.UnmarshalMap(av, &restored))
	assert.Equal(t, question, restored)
}
