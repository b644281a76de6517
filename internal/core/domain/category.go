package domain

import (
	"encoding/json"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// PlaceholderCategoryID is the synthetic id reported for transactions whose
// categoryId no longer resolves.
const PlaceholderCategoryID = "unknown"

// Category groups transactions for forms and reports. Debt is an optional
// ceiling amount being paid down: it only ever decreases, and only when a new
// expense transaction is recorded against the category. It is not a balance.
type Category struct {
	ID            string          `json:"id"`   // Primary Key (UUID or seed id)
	Code          string          `json:"code"` // Short display code, derived from Name when absent
	Name          string          `json:"name"`
	Color         string          `json:"color"`         // CSS hex color, presentation passthrough
	Icon          string          `json:"icon"`          // Symbolic key into the external icon registry, never validated here
	IsFixed       bool            `json:"isFixed"`       // Built-in categories are protected from removal
	Debt          decimal.Decimal `json:"debt"`          // Non-negative, monotonically non-increasing
	ShowInExpense bool            `json:"showInExpense"` // Offered on expense forms; absent on the wire means shown
	ShowInIncome  bool            `json:"showInIncome"`  // Offered on income forms; absent on the wire means shown
}

// UnmarshalJSON decodes a category, resolving absent visibility keys to
// shown. Documents written by older clients omit the keys entirely; only an
// explicit false hides a category from a form.
func (c *Category) UnmarshalJSON(data []byte) error {
	type category Category
	aux := struct {
		*category
		ShowInExpense *bool `json:"showInExpense"`
		ShowInIncome  *bool `json:"showInIncome"`
	}{category: (*category)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.ShowInExpense = aux.ShowInExpense == nil || *aux.ShowInExpense
	c.ShowInIncome = aux.ShowInIncome == nil || *aux.ShowInIncome
	return nil
}

// PlaceholderCategory is the stand-in used at read and aggregation time for
// dangling category references. Name and color match the historical UI.
func PlaceholderCategory() Category {
	return Category{
		ID:    PlaceholderCategoryID,
		Code:  "DESC",
		Name:  "Desconocido",
		Color: "#ccc",
		Icon:  "category",
	}
}

// DeriveCode builds a short display code from a category or tag name: the
// first four letters or digits, upper-cased. Empty names yield an empty code.
func DeriveCode(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
			if b.Len() >= 4 {
				break
			}
		}
	}
	return b.String()
}

// DefaultCategories returns the seed categories installed when a pulled
// snapshot carries none. Ids are fixed so re-seeding stays idempotent.
func DefaultCategories() []Category {
	return []Category{
		{ID: "cat_0", Code: "INGR", Name: "Ingresos", Color: "#4caf50", Icon: "trending_up", IsFixed: true, ShowInExpense: true, ShowInIncome: true},
		{ID: "cat_1", Code: "PROJ", Name: "Proyecto y Documentación", Color: "#795548", Icon: "description", ShowInExpense: true, ShowInIncome: true},
		{ID: "cat_2", Code: "TERR", Name: "Terreno", Color: "#4caf50", Icon: "landscape", ShowInExpense: true, ShowInIncome: true},
		{ID: "cat_3", Code: "CONS", Name: "Construcción", Color: "#ff9800", Icon: "construction", ShowInExpense: true, ShowInIncome: true},
		{ID: "cat_4", Code: "MUDA", Name: "Mudanza", Color: "#9c27b0", Icon: "local_shipping", ShowInExpense: true, ShowInIncome: true},
		{ID: "cat_5", Code: "SEGU", Name: "Seguridad", Color: "#607d8b", Icon: "security", ShowInExpense: true, ShowInIncome: true},
		{ID: "cat_6", Code: "TECN", Name: "Tecnología", Color: "#2196f3", Icon: "devices", ShowInExpense: true, ShowInIncome: true},
		{ID: "cat_7", Code: "MUEB", Name: "Muebles", Color: "#ff5722", Icon: "chair", ShowInExpense: true, ShowInIncome: true},
		{ID: "cat_8", Code: "UTIL", Name: "Utensilios y herramientas", Color: "#ffeb3b", Icon: "handyman", ShowInExpense: true, ShowInIncome: true},
		{ID: "cat_other", Code: "OTRO", Name: "Otros", Color: "#9e9e9e", Icon: "category", ShowInExpense: true, ShowInIncome: true},
	}
}
