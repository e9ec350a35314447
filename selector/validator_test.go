package selector

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hairizuanbinnoorazman/ui-testgen/contextclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "single call",
			text: `driver.findElement(By.cssSelector("#email")).sendKeys("a");`,
			want: []string{"#email"},
		},
		{
			name: "escaped quotes are decoded",
			text: `driver.findElement(By.cssSelector("[data-testid=\"login\"]")).click();`,
			want: []string{`[data-testid="login"]`},
		},
		{
			name: "escaped single quotes are decoded",
			text: `driver.findElement(By.cssSelector("[name=\'email\']")).sendKeys("a");`,
			want: []string{`[name='email']`},
		},
		{
			name: "duplicates collapse and output is sorted",
			text: `By.cssSelector("#b") By.cssSelector("#a") By.cssSelector("#b")`,
			want: []string{"#a", "#b"},
		},
		{
			name: "whitespace inside the call",
			text: `By.cssSelector( "#spaced" )`,
			want: []string{"#spaced"},
		},
		{
			name: "other locator forms are ignored",
			text: `By.id("email"); By.xpath("//button"); String s = "[data-testid=\"x\"]";`,
			want: []string{},
		},
		{
			name: "empty text",
			text: "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Extract(tt.text))
		})
	}
}

func TestValidateAgainst(t *testing.T) {
	t.Parallel()

	t.Run("used outside allowed fails", func(t *testing.T) {
		report := ValidateAgainst(`By.cssSelector("a"); By.cssSelector("b");`, []string{"a", "c"})

		assert.Equal(t, StatusFail, report.Status)
		assert.False(t, report.Passed())
		assert.Equal(t, []string{"b"}, report.InvalidSelectors)
		assert.Equal(t, []string{"a", "b"}, report.UsedSelectors)
		assert.Equal(t, []string{"a", "c"}, report.AllowedSelectors)
	})

	t.Run("used subset of allowed passes", func(t *testing.T) {
		report := ValidateAgainst(`By.cssSelector("a")`, []string{"a", "c"})

		assert.Equal(t, StatusPass, report.Status)
		assert.True(t, report.Passed())
		assert.Empty(t, report.InvalidSelectors)
		assert.NotNil(t, report.InvalidSelectors)
	})

	t.Run("no selectors used passes", func(t *testing.T) {
		report := ValidateAgainst("// Step skipped — selector not available", []string{"a"})
		assert.Equal(t, StatusPass, report.Status)
		assert.Empty(t, report.UsedSelectors)
	})
}

func TestValidateAcceptsEscapedSingleQuotes(t *testing.T) {
	t.Parallel()

	report := ValidateAgainst(`driver.findElement(By.cssSelector("[name=\'email\']")).click();`, []string{`[name='email']`})
	assert.Equal(t, StatusPass, report.Status)
	assert.Empty(t, report.InvalidSelectors)
	assert.Equal(t, []string{`[name='email']`}, report.UsedSelectors)
}

func TestValidateUsesUIContextValues(t *testing.T) {
	t.Parallel()

	ui := &contextclient.UIContext{Elements: map[string]string{
		"data-testid:login": `[data-testid="login"]`,
		"id:email":          "#email",
	}}

	report := Validate(`By.cssSelector("[data-testid=\"login\"]") By.cssSelector("data-testid:login")`, ui)

	assert.Equal(t, StatusFail, report.Status)
	assert.Equal(t, []string{"data-testid:login"}, report.InvalidSelectors)
	assert.Equal(t, []string{"#email", `[data-testid="login"]`}, report.AllowedSelectors)
}

func TestValidateIsIdempotent(t *testing.T) {
	t.Parallel()

	ui := &contextclient.UIContext{Elements: map[string]string{
		"id:a": "#a", "id:b": "#b", "id:c": "#c",
	}}
	text := `By.cssSelector("#c") By.cssSelector("#z") By.cssSelector("#a")`

	first := Validate(text, ui)
	second := Validate(text, ui)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("reports differ (-first +second):\n%s", diff)
	}

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
	assert.JSONEq(t, `{"allowedSelectors":["#a","#b","#c"],"usedSelectors":["#a","#c","#z"],"invalidSelectors":["#z"],"status":"FAIL"}`, string(a))
}
