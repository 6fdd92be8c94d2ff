package message

// Embed is a structured rich message body.
type Embed struct {
	Title       string
	URL         string
	Description string
	// Color is an RGB color packed into an integer.
	Color     int
	Author    *Author
	Thumbnail string
	Fields    []Field
}

// Author is the attribution line of an embed.
type Author struct {
	Name string
	URL  string
	Icon string
}

// Field is a named section of an embed.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// AddField appends a field to the embed.
func (e *Embed) AddField(name, value string, inline bool) {
	e.Fields = append(e.Fields, Field{Name: name, Value: value, Inline: inline})
}
