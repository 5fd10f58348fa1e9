package draft

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"oaresponse/internal/domain/models"
)

func TestHTMLToMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "Claims 1-3 are novel over A < B.", "Claims 1-3 are novel over A < B."},
		{"markdown untouched", "## Arguments\n- **Claim 1**", "## Arguments\n- **Claim 1**"},
		{"bold paragraph", "<p>The <strong>combination</strong> fails.</p>", "The **combination** fails."},
		{"script dropped", "<p>ok</p><script>alert(1)</script>", "ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, htmlToMarkdown(tt.in))
		})
	}
}

func TestCleanMarkup(t *testing.T) {
	content := &models.DraftContent{
		Outline:    "<h2>Summary</h2>",
		Arguments:  []models.Argument{{Target: "103", Text: "<em>Teaching away</em>"}},
		Amendments: []models.Amendment{{Claim: "1", Proposed: "wherein X", Rationale: "<p>supported by the original figures</p>"}},
	}
	cleanMarkup(content)

	assert.Equal(t, "## Summary", content.Outline)
	assert.Equal(t, "_Teaching away_", content.Arguments[0].Text)
	assert.Equal(t, "wherein X", content.Amendments[0].Proposed)
	assert.Equal(t, "supported by the original figures", content.Amendments[0].Rationale)
	assert.Equal(t, "103", content.Arguments[0].Target)
}
