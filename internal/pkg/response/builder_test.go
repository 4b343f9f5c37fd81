package response

import (
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func TestBuilderComposition(t *testing.T) {
	out := New().
		Header("Drive Items").
		KeyValue("Count", 2).
		Item("a.txt (1.0 KB)").
		Item("[folder] %s", "Reports").
		Blank().
		Line("done in %dms", 42).
		Build()

	wants := []string{
		"═══ Drive Items ═══\n",
		"• Count: 2\n",
		"  → a.txt (1.0 KB)\n",
		"  → [folder] Reports\n",
		"done in 42ms\n",
	}
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestBuilderRaw(t *testing.T) {
	out := New().Raw("verbatim, no newline").Build()
	if out != "verbatim, no newline" {
		t.Errorf("Raw() output = %q", out)
	}
}

func TestTextResult(t *testing.T) {
	result := New().Header("Context").TextResult()

	if len(result.Content) != 1 {
		t.Fatalf("len(Content) = %d, want 1", len(result.Content))
	}
	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("Content[0] is %T, want *mcp.TextContent", result.Content[0])
	}
	if !strings.Contains(text.Text, "Context") {
		t.Errorf("text = %q, want header", text.Text)
	}
	if result.IsError {
		t.Error("TextResult should not be an error result")
	}
}
