package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/hucha-app/hucha/internal/core/domain"
)

func TestDeriveCode(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple name", "Terreno", "TERR"},
		{"short name", "Luz", "LUZ"},
		{"empty name", "", ""},
		{"spaces and punctuation skipped", "A b-c.d!e", "ABCD"},
		{"digits kept", "4x4 parking", "4X4P"},
		{"already uppercase", "IVA", "IVA"},
		{"accented letters kept", "Construcción", "CONS"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, domain.DeriveCode(tc.input))
		})
	}
}

func TestPlaceholderCategory(t *testing.T) {
	p := domain.PlaceholderCategory()
	assert.Equal(t, domain.PlaceholderCategoryID, p.ID)
	assert.Equal(t, "Desconocido", p.Name)
	assert.Equal(t, "#ccc", p.Color)
	assert.False(t, p.IsFixed)
}

func TestCategoryUnmarshalJSON_AbsentVisibilityMeansShown(t *testing.T) {
	var c domain.Category
	err := json.Unmarshal([]byte(`{"id":"c1","name":"Terreno"}`), &c)
	assert.NoError(t, err)
	assert.True(t, c.ShowInExpense)
	assert.True(t, c.ShowInIncome)

	var hidden domain.Category
	err = json.Unmarshal([]byte(`{"id":"c2","name":"Luz","showInExpense":false,"showInIncome":true}`), &hidden)
	assert.NoError(t, err)
	assert.False(t, hidden.ShowInExpense)
	assert.True(t, hidden.ShowInIncome)
}

func TestCategoryJSON_ExplicitFalseSurvivesRoundTrip(t *testing.T) {
	in := domain.Category{ID: "c1", Name: "Terreno", ShowInExpense: true, ShowInIncome: false}

	raw, err := json.Marshal(in)
	assert.NoError(t, err)

	var out domain.Category
	assert.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)
}

func TestDefaultCategories_StableIDs(t *testing.T) {
	first := domain.DefaultCategories()
	second := domain.DefaultCategories()

	assert.Equal(t, first, second)
	assert.Equal(t, "cat_0", first[0].ID)
	assert.True(t, first[0].IsFixed)

	seen := map[string]bool{}
	for _, c := range first {
		assert.False(t, seen[c.ID], "duplicate seed id %s", c.ID)
		seen[c.ID] = true
		assert.True(t, c.ShowInExpense, "seed %s hidden from expense form", c.ID)
		assert.True(t, c.ShowInIncome, "seed %s hidden from income form", c.ID)
	}
}

func TestSnapshotClone_IsDeep(t *testing.T) {
	original := domain.Snapshot{
		Transactions: []domain.Transaction{
			{ID: "t1", Date: "2024-01-01", Amount: decimal.NewFromInt(-5), TagIDs: []string{"tag_1"}},
		},
		Categories: []domain.Category{{ID: "c1", Name: "Terreno"}},
		Tags:       []domain.Tag{{ID: "tag_1", Name: "Impuestos"}},
		Settings:   domain.DefaultSettings(),
		Todos:      []domain.Todo{{ID: "td1", Text: "llamar notario"}},
	}

	clone := original.Clone()
	clone.Transactions[0].TagIDs[0] = "mutated"
	clone.Transactions[0].Description = "mutated"
	clone.Categories[0].Name = "mutated"

	assert.Equal(t, "tag_1", original.Transactions[0].TagIDs[0])
	assert.Empty(t, original.Transactions[0].Description)
	assert.Equal(t, "Terreno", original.Categories[0].Name)
}

func TestChangeSet(t *testing.T) {
	assert.False(t, domain.ChangeSet{}.Any())
	assert.True(t, domain.ChangeSet{Settings: true}.Any())

	merged := domain.ChangeSet{Transactions: true}.Merge(domain.ChangeSet{Categories: true})
	assert.True(t, merged.Transactions)
	assert.True(t, merged.Categories)
	assert.False(t, merged.Tags)
}
