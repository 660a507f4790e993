// internal/models/schema_test.go
package models

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestSchemasParse(t *testing.T) {
	cache := &sync.Map{}

	for _, model := range []interface{}{
		&User{},
		&Property{},
		&StatusHistoryEntry{},
		&RealtorStats{},
		&AuditLog{},
	} {
		_, err := schema.Parse(model, cache, schema.NamingStrategy{})
		assert.NoError(t, err, "%T", model)
	}
}

func TestCustomColumnTypes(t *testing.T) {
	cache := &sync.Map{}

	property, err := schema.Parse(&Property{}, cache, schema.NamingStrategy{})
	require.NoError(t, err)
	images := property.LookUpField("Images")
	require.NotNil(t, images)
	assert.Equal(t, schema.DataType("text"), images.DataType)

	audit, err := schema.Parse(&AuditLog{}, cache, schema.NamingStrategy{})
	require.NoError(t, err)
	for _, name := range []string{"OldValues", "NewValues"} {
		field := audit.LookUpField(name)
		require.NotNil(t, field, name)
		assert.Equal(t, schema.DataType("json"), field.DataType, name)
	}
}
