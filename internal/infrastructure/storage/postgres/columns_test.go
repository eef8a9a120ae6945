package postgres

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"shoppos/internal/core/entity"
	"shoppos/internal/core/id"
)

type mockProduct struct {
	entity.Base
	entity.Activatable
	Name         string          `db:"name"`
	Price        decimal.Decimal `db:"price"`
	Note         string          `db:"-"`
	CategoryName *string         `db:"category_name"`
	untagged     int
}

func TestExtractDBColumns_Embedded(t *testing.T) {
	cols := ExtractDBColumns[*mockProduct]()

	assert.Equal(t, []string{"id", "created_at", "updated_at", "is_active", "name", "price", "category_name"}, cols)
	assert.Equal(t, cols, ExtractDBColumns[mockProduct]())
}

func TestStructToMap(t *testing.T) {
	p := &mockProduct{
		Base:        entity.NewBase(),
		Activatable: entity.Activatable{IsActive: true},
		Name:        "Tea 250g",
		Price:       decimal.RequireFromString("120.50"),
		Note:        "ignored",
		untagged:    1,
	}

	m := StructToMap(p)

	assert.Equal(t, p.ID, m["id"])
	assert.Equal(t, true, m["is_active"])
	assert.Equal(t, "Tea 250g", m["name"])
	assert.Equal(t, p.Price, m["price"])
	assert.NotContains(t, m, "Note")
	assert.Len(t, m, 7)
	assert.IsType(t, id.ID{}, m["id"])
}

func TestStructToMap_NonStruct(t *testing.T) {
	var nilProduct *mockProduct
	assert.Nil(t, StructToMap(nilProduct))
	assert.Nil(t, StructToMap(42))
}
