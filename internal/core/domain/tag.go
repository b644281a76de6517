package domain

// Tag is a free-form label attached to transactions, many-to-many via
// Transaction.TagIDs. Tags carry no ordering semantics.
type Tag struct {
	ID    string `json:"id"`
	Code  string `json:"code"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// DefaultTags returns the seed tags installed when a pulled snapshot carries
// none.
func DefaultTags() []Tag {
	return []Tag{
		{ID: "tag_1", Code: "IMP", Name: "Impuestos", Color: "#f44336"},
		{ID: "tag_2", Code: "DOC", Name: "Documentos", Color: "#3f51b5"},
		{ID: "tag_3", Code: "NOT", Name: "Notaría", Color: "#673ab7"},
	}
}
