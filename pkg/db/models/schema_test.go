package models

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestCartModelsParse(t *testing.T) {
	for _, model := range []any{&Merchant{}, &MenuItem{}, &CartSession{}, &CartLine{}} {
		_, err := schema.Parse(model, &sync.Map{}, schema.NamingStrategy{})
		require.NoError(t, err)
	}
}

func TestCartLineCustomizationColumnType(t *testing.T) {
	parsed, err := schema.Parse(&CartLine{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	field := parsed.LookUpField("customization")
	require.NotNil(t, field)
	require.Equal(t, schema.DataType("jsonb"), field.DataType)
}
