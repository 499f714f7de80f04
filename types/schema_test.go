/*
 * Copyright 2026 romakot321.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type testEntity struct {
	bun.BaseModel `bun:"table:test_entities"`

	ID        int64  `bun:"id,pk,autoincrement"`
	Name      string `bun:"name,notnull"`
	Age       int    `bun:"age"`
	LastLogin string `bun:"last_login"`
}

type testCreateSchema struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

type testUpdateSchema struct {
	Name      *string `json:"name"`
	Age       *int    `json:"age"`
	LastLogin *string // no tag, column from snake_case
}

func TestSchemaFields(t *testing.T) {
	fields, err := SchemaFields(testCreateSchema{Name: "test", Age: 42})
	require.NoError(t, err)
	assert.Equal(t, []SchemaField{{"name", "test"}, {"age", 42}}, fields)
}

func TestSchemaFieldsSkipsNilPointers(t *testing.T) {
	name := "updated"
	fields, err := SchemaFields(&testUpdateSchema{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, []SchemaField{{"name", "updated"}}, fields)
}

func TestSchemaFieldsSnakeCaseFallback(t *testing.T) {
	login := "yesterday"
	fields, err := SchemaFields(testUpdateSchema{LastLogin: &login})
	require.NoError(t, err)
	assert.Equal(t, []SchemaField{{"last_login", "yesterday"}}, fields)
}

func TestSchemaFieldsRejectsNonStruct(t *testing.T) {
	_, err := SchemaFields(42)
	assert.Error(t, err)
}

func TestSchemaFieldsNil(t *testing.T) {
	fields, err := SchemaFields(nil)
	require.NoError(t, err)
	assert.Empty(t, fields)

	var schema *testUpdateSchema
	fields, err = SchemaFields(schema)
	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestApplyFields(t *testing.T) {
	entity := testEntity{Name: "old", Age: 1}
	modified, err := ApplyFields(&entity, []SchemaField{{"name", "new"}, {"age", 2}})
	require.NoError(t, err)
	assert.True(t, modified)
	assert.Equal(t, "new", entity.Name)
	assert.Equal(t, 2, entity.Age)
}

func TestApplyFieldsReportsUnmodified(t *testing.T) {
	entity := testEntity{Name: "same"}
	modified, err := ApplyFields(&entity, []SchemaField{{"name", "same"}})
	require.NoError(t, err)
	assert.False(t, modified)
}

func TestApplyFieldsUnknownColumn(t *testing.T) {
	entity := testEntity{}
	_, err := ApplyFields(&entity, []SchemaField{{"nope", 1}})
	assert.Error(t, err)
}

func TestApplyFieldsRequiresPointer(t *testing.T) {
	_, err := ApplyFields(testEntity{}, nil)
	assert.Error(t, err)
}

func TestToSnake(t *testing.T) {
	assert.Equal(t, "last_login", toSnake("LastLogin"))
	assert.Equal(t, "name", toSnake("Name"))
	assert.Equal(t, "a_b_c", toSnake("ABC"))
}
