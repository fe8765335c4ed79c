package models

import "slices"

// User is the caller identity resolved by the API authorizer.
type User struct {
	UserID          string   `dynamodbav:"userId" json:"userId"`
	Name            string   `dynamodbav:"name" json:"name"`
	Email           string   `dynamodbav:"email" json:"email"`
	Roles           []string `dynamodbav:"roles" json:"roles"`
	IsAdministrator bool     `dynamodbav:"isAdministrator" json:"isAdministrator"`
}

func (u User) HasAnyRole(roles []string) bool {
	for _, r := range u.Roles {
		if slices.Contains(roles, r) {
			return true
		}
	}
	return false
}

// Subject is a notification target, usually derived from a User.
type Subject struct {
	UserID string `dynamodbav:"userId" json:"userId"`
	Name   string `dynamodbav:"name" json:"name"`
	Email  string `dynamodbav:"email" json:"email,omitempty"`
}

func SubjectFromUser(u User) Subject {
	return Subject{UserID: u.UserID, Name: u.Name, Email: u.Email}
}
