package models

// Category groups topics by theme.
type Category struct {
	CategoryID string `dynamodbav:"categoryId" json:"categoryId"`
	Name       string `dynamodbav:"name" json:"name" validate:"required"`
	Color      string `dynamodbav:"color" json:"color,omitempty"`
	Archived   bool   `dynamodbav:"archived" json:"archived"`
}

func (c *Category) Validate() []string {
	return fieldErrors(c)
}

// SafeLoad merges the client-editable fields of body onto c.
func (c *Category) SafeLoad(body Category) {
	c.Name = body.Name
	c.Color = body.Color
	c.Archived = body.Archived
}
