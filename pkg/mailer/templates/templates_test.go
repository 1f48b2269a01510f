package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elysian/registration-service/config"
)

func TestRenderWelcome(t *testing.T) {
	cfg := &config.Config{AppName: "Elysian", CompanyName: "Elysian Ltd", SupportURL: "https://help.example.com"}
	data := NewWelcomeData(cfg, WithTime(time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC)))
	data["Name"] = "Ada"
	data["Email"] = "ada@x.com"
	data["WelcomeMessage"] = "Glad you're here <3"

	subject, text, html, err := Render(Welcome, data)
	require.NoError(t, err)
	assert.Equal(t, "Welcome to Elysian, Ada!", subject)
	assert.Contains(t, text, "Glad you're here <3")
	assert.Contains(t, text, "https://help.example.com")
	assert.Contains(t, html, "ada@x.com")
	assert.Contains(t, html, "Glad you&#39;re here &lt;3")
	assert.Equal(t, "02 January 2024, 03:04", data["Time"])
}

func TestRenderWelcome_Defaults(t *testing.T) {
	subject, text, _, err := Render(Welcome, map[string]any{"Email": "a@x.com"})
	require.NoError(t, err)
	assert.Equal(t, "Welcome to our service, there!", subject)
	assert.Contains(t, text, "Welcome to our service!")
	assert.Contains(t, text, "The team")
	assert.NotContains(t, text, "Questions?")
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, _, _, err := Render("missing", nil)
	assert.Error(t, err)
}

func TestDefaultFn(t *testing.T) {
	assert.Equal(t, "x", defaultFn("x", ""))
	assert.Equal(t, "x", defaultFn("x", nil))
	assert.Equal(t, "x", defaultFn("x", 0))
	assert.Equal(t, 3, defaultFn("x", 3))
	assert.Equal(t, "v", defaultFn("x", "v"))
}
