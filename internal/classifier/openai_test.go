package classifier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimstack/claimgraph/internal/model"
)

func TestNewOpenAIClient_RequiresAPIKey(t *testing.T) {
	_, err := NewOpenAIClient(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestParseJudgment(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantErr   string
		check     func(t *testing.T, j *Judgment)
	}{
		{
			name: "complete judgment",
			content: `{
				"relationship_type": "CAUSAL",
				"direction": "A_to_B",
				"confidence": 0.85,
				"explanation": "A directly causes B",
				"semantic_markers": ["causes", "leads to"],
				"strength": "strong"
			}`,
			check: func(t *testing.T, j *Judgment) {
				assert.Equal(t, "CAUSAL", j.RelationshipType)
				assert.Equal(t, DirectionAToB, j.Direction)
				assert.Equal(t, 0.85, j.Confidence)
				assert.Equal(t, []string{"causes", "leads to"}, j.SemanticMarkers)
				assert.Equal(t, "strong", j.Strength)
			},
		},
		{
			name:    "missing direction defaults to A_to_B",
			content: `{"relationship_type": "EVIDENTIAL", "confidence": 0.5}`,
			check: func(t *testing.T, j *Judgment) {
				assert.Equal(t, DirectionAToB, j.Direction)
			},
		},
		{
			name:    "bidirectional direction",
			content: `{"relationship_type": "CONTRADICTORY", "direction": "bidirectional", "confidence": 0.9}`,
			check: func(t *testing.T, j *Judgment) {
				assert.Equal(t, DirectionBidirectional, j.Direction)
			},
		},
		{
			name:    "not json at all",
			content: `I could not determine the relationship.`,
			wantErr: "malformed judgment JSON",
		},
		{
			name:    "missing relationship type",
			content: `{"direction": "A_to_B", "confidence": 0.7}`,
			wantErr: "missing relationship_type",
		},
		{
			name:    "garbage direction",
			content: `{"relationship_type": "CAUSAL", "direction": "sideways"}`,
			wantErr: "unknown direction",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			judgment, err := parseJudgment(tt.content)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, judgment)
			} else {
				require.NoError(t, err)
				require.NotNil(t, judgment)
				tt.check(t, judgment)
			}
		})
	}
}

func TestParseExtraction(t *testing.T) {
	content := `{
		"claims": [
			{"text": "X causes Y", "type": "causal", "confidence": 0.9, "evidence_type": "empirical"},
			{"text": "Z rose by 40%", "type": "statistical", "confidence": 0.8, "evidence_type": "empirical"}
		]
	}`

	claims, err := parseExtraction(content)
	require.NoError(t, err)
	require.Len(t, claims, 2)
	assert.Equal(t, "X causes Y", claims[0].Text)
	assert.Equal(t, "causal", claims[0].Type)
	assert.Equal(t, 0.8, claims[1].Confidence)

	_, err = parseExtraction("not json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed extraction JSON")
}

func TestBuildRelationshipPrompt_TruncatesLongClaims(t *testing.T) {
	a := ClaimInput{
		ID:   "a",
		Text: strings.Repeat("x", 2000),
		Type: model.ClaimTypeFactual,
	}
	b := ClaimInput{ID: "b", Text: "short claim", Type: model.ClaimTypeCausal}

	prompt := buildRelationshipPrompt(a, b)

	assert.NotContains(t, prompt, strings.Repeat("x", maxClaimChars+1))
	assert.Contains(t, prompt, strings.Repeat("x", maxClaimChars))
	assert.Contains(t, prompt, "short claim")
	assert.Contains(t, prompt, "factual")
}

func TestBuildExtractionPrompt_DefaultsSourceLLM(t *testing.T) {
	prompt := buildExtractionPrompt("some document text", "report.pdf", "")

	assert.Contains(t, prompt, "report.pdf")
	assert.Contains(t, prompt, "Source LLM: unknown")
}
