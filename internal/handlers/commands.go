package handlers

import (
	"encoding/json"
	"errors"
)

// Patch requests carry an action-discriminated body. Each action parses
// into its own command value and the controllers dispatch on the
// concrete type; an unknown action is rejected at parse time.

var errUnsupportedAction = errors.New("Unsupported action")

type actionEnvelope struct {
	Action string `json:"action"`
}

type questionCommand interface {
	isQuestionCommand()
}

type upvoteQuestion struct{}
type cancelQuestionUpvote struct{}
type checkQuestionUpvote struct{}

func (upvoteQuestion) isQuestionCommand()       {}
func (cancelQuestionUpvote) isQuestionCommand() {}
func (checkQuestionUpvote) isQuestionCommand()  {}

func parseQuestionCommand(body string) (questionCommand, error) {
	var env actionEnvelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		return nil, err
	}
	switch env.Action {
	case "UPVOTE":
		return upvoteQuestion{}, nil
	case "UPVOTE_CANCEL":
		return cancelQuestionUpvote{}, nil
	case "IS_UPVOTED":
		return checkQuestionUpvote{}, nil
	default:
		return nil, errUnsupportedAction
	}
}

type topicCommand interface {
	isTopicCommand()
}

type openTopic struct{}
type closeTopic struct{}
type archiveTopic struct{}
type unarchiveTopic struct{}
type followTopic struct {
	Email string `json:"email"`
}

func (openTopic) isTopicCommand()      {}
func (closeTopic) isTopicCommand()     {}
func (archiveTopic) isTopicCommand()   {}
func (unarchiveTopic) isTopicCommand() {}
func (followTopic) isTopicCommand()    {}

func parseTopicCommand(body string) (topicCommand, error) {
	var env actionEnvelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		return nil, err
	}
	switch env.Action {
	case "OPEN":
		return openTopic{}, nil
	case "CLOSE":
		return closeTopic{}, nil
	case "ARCHIVE":
		return archiveTopic{}, nil
	case "UNARCHIVE":
		return unarchiveTopic{}, nil
	case "FOLLOW":
		var cmd followTopic
		if err := json.Unmarshal([]byte(body), &cmd); err != nil {
			return nil, err
		}
		return cmd, nil
	default:
		return nil, errUnsupportedAction
	}
}
