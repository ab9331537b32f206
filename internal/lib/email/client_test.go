package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_Welcome(t *testing.T) {
	html, err := Render(TemplateWelcome, map[string]string{
		"UserFirstName": "Aliya",
		"Username":      "aliya",
	})
	require.NoError(t, err)
	assert.Contains(t, html, "Aliya")
	assert.Contains(t, html, "aliya")
}

func TestRender_EscapesInput(t *testing.T) {
	html, err := Render(TemplateWelcome, map[string]string{"UserFirstName": "<script>x</script>"})
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, err := Render(Template("missing"), nil)
	assert.Error(t, err)
}
