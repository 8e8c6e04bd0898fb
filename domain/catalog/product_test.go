package catalog

import (
	"errors"
	"strings"
	"testing"

	"github.com/SChris-dev/EcoShop-API/domain/shared"

	"github.com/stretchr/testify/assert"
)

func TestProductValidate(t *testing.T) {
	valid := Product{Name: "Bamboo Toothbrush", Price: shared.MustMoney("5.99"), Stock: 100}
	assert.NoError(t, valid.Validate())

	cases := map[string]Product{
		"name":  {Name: "  ", Price: shared.MustMoney("1"), Stock: 1},
		"long":  {Name: strings.Repeat("a", 256), Price: shared.MustMoney("1")},
		"price": {Name: "x", Price: shared.MustMoney("-0.01")},
		"stock": {Name: "x", Price: shared.MustMoney("1"), Stock: -1},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			err := p.Validate()
			assert.True(t, errors.Is(err, ErrInvalidProduct))
		})
	}

	var fe shared.FieldError
	err := Product{Name: "x", Stock: -1}.Validate()
	if assert.ErrorAs(t, err, &fe) {
		assert.Equal(t, "stock", fe.FieldName())
	}
}

func TestHasSufficientStock(t *testing.T) {
	p := Product{Stock: 3}
	assert.True(t, HasSufficientStock(p, 3))
	assert.False(t, HasSufficientStock(p, 4))
	assert.False(t, HasSufficientStock(p, 0))
}
