package codec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greeting struct {
	Name string `json:"name"`
}

func TestJSONStrictRoundTrip(t *testing.T) {
	b, err := JSONStrict.Marshal(greeting{Name: "<a&b>"})
	require.NoError(t, err)
	assert.Equal(t, `{"name":"<a&b>"}`, string(b))

	var g greeting
	require.NoError(t, Decode(JSONStrict, strings.NewReader(`{"name":"x"}`), &g))
	assert.Equal(t, "x", g.Name)
}

func TestJSONStrictRejects(t *testing.T) {
	var g greeting
	assert.Error(t, JSONStrict.Unmarshal([]byte(`{"name":"x","extra":1}`), &g))
	assert.Error(t, JSONStrict.Unmarshal([]byte(`{"name":"x"} {}`), &g))
}
