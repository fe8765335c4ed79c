package models

// Event is an assembly/conference edition topics belong to.
type Event struct {
	EventID  string `dynamodbav:"eventId" json:"eventId"`
	Name     string `dynamodbav:"name" json:"name" validate:"required"`
	Archived bool   `dynamodbav:"archived" json:"archived"`
}

func (e *Event) Validate() []string {
	return fieldErrors(e)
}

func (e *Event) SafeLoad(body Event) {
	e.Name = body.Name
	e.Archived = body.Archived
}
