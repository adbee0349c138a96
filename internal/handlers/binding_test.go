package handlers

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type TestStruct struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

func testContextWithBody(body string) *gin.Context {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c
}

func TestBindNestedOrFlat(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		key         string
		body        string
		expected    TestStruct
		expectError bool
	}{
		{
			name:     "Nested Structure",
			key:      "contract",
			body:     `{"contract": {"name": "Alice", "age": 30}}`,
			expected: TestStruct{Name: "Alice", Age: 30},
		},
		{
			name:     "Flat Structure",
			key:      "contract",
			body:     `{"name": "Bob", "age": 25}`,
			expected: TestStruct{Name: "Bob", Age: 25},
		},
		{
			name:     "Missing Key Falls Back to Flat",
			key:      "contract",
			body:     `{"other": "value", "name": "Charlie", "age": 40}`,
			expected: TestStruct{Name: "Charlie", Age: 40},
		},
		{
			name:        "Invalid Field Type",
			key:         "contract",
			body:        `{"name": "Eve", "age": "invalid"}`,
			expectError: true,
		},
		{
			name:        "Nested but Invalid Content",
			key:         "contract",
			body:        `{"contract": {"name": "Frank", "age": "invalid"}}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testContextWithBody(tt.body)

			var result TestStruct
			err := BindNestedOrFlat(c, tt.key, &result)

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestBodyKeysDistinguishesNullFromAbsent(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// end_date explicitly null
	c := testContextWithBody(`{"contract": {"end_date": null, "due_day": 10}}`)
	keys, err := BodyKeys(c, "contract")
	require.NoError(t, err)
	assert.True(t, keys["end_date"])
	assert.True(t, keys["due_day"])

	// end_date absent
	c = testContextWithBody(`{"contract": {"due_day": 10}}`)
	keys, err = BodyKeys(c, "contract")
	require.NoError(t, err)
	assert.False(t, keys["end_date"])

	// flat payload
	c = testContextWithBody(`{"end_date": "2025-06-30"}`)
	keys, err = BodyKeys(c, "contract")
	require.NoError(t, err)
	assert.True(t, keys["end_date"])
}

func TestBodyKeysLeavesBodyReadable(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c := testContextWithBody(`{"contract": {"name": "Alice", "age": 30}}`)

	_, err := BodyKeys(c, "contract")
	require.NoError(t, err)

	var result TestStruct
	require.NoError(t, BindNestedOrFlat(c, "contract", &result))
	assert.Equal(t, TestStruct{Name: "Alice", Age: 30}, result)
}
