package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestRegisteredDocHasPaths(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths       map[string]map[string]json.RawMessage `json:"paths"`
		Definitions map[string]json.RawMessage            `json:"definitions"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	assert.Equal(t, "Tieba API", doc.Info.Title)
	assert.GreaterOrEqual(t, len(doc.Paths), 50)
	assert.Contains(t, doc.Paths["/api/v1/admin/counters/recompute"], "post")
	assert.Contains(t, doc.Paths["/api/v1/boards/{board_id}/members/{user_id}"], "delete")
	assert.Contains(t, doc.Definitions, "model.User")
}
