package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FlakM/czujka-librus/internal/config"
	"github.com/FlakM/czujka-librus/internal/domain"
)

func TestBuildPromptAnnouncements(t *testing.T) {
	t.Parallel()

	prompt := buildPrompt(domain.StreamAnnouncements, []domain.Record{
		domain.Announcement{Title: "Trip", Date: "2024-01-05", Content: "meet at 8", Author: "A. Kowalska"},
		domain.Announcement{Title: "PTA", Date: "2024-01-06"},
	})

	assert.Contains(t, prompt, "announcements")
	assert.Contains(t, prompt, "1st grade")
	assert.Contains(t, prompt, "other classes",
		"announcement batches carry the cross-class caveat")
	assert.Contains(t, prompt, "1. ", "items are numbered from one")
	assert.Contains(t, prompt, "2. ")
	assert.Contains(t, prompt, "Trip")
	assert.Contains(t, prompt, `"keyPoints"`)
}

func TestBuildPromptStreamGuidance(t *testing.T) {
	t.Parallel()

	grades := buildPrompt(domain.StreamGrades, []domain.Record{
		domain.Grade{ID: 1, Subject: "math", Value: "5"},
	})
	assert.Contains(t, grades, "every new grade")
	assert.NotContains(t, grades, "other classes")

	homework := buildPrompt(domain.StreamHomework, []domain.Record{
		domain.Homework{ID: 1, Subject: "math", Title: "worksheet"},
	})
	assert.Contains(t, homework, "Deadlines")
}

func TestParseResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    domain.ClassificationResult
		wantErr bool
	}{
		{
			name:    "plain json",
			content: `{"urgency": "URGENT", "summary": "sign the form", "keyPoints": ["form due **2024-01-12**"]}`,
			want: domain.ClassificationResult{
				Urgency:   domain.Urgent,
				Summary:   "sign the form",
				KeyPoints: []string{"form due **2024-01-12**"},
			},
		},
		{
			name: "fenced json",
			content: "```json\n" +
				`{"urgency": "NOT_URGENT", "summary": "nothing pressing", "keyPoints": ["picnic"]}` +
				"\n```",
			want: domain.ClassificationResult{
				Urgency:   domain.NotUrgent,
				Summary:   "nothing pressing",
				KeyPoints: []string{"picnic"},
			},
		},
		{
			name:    "unknown urgency falls back to normal",
			content: `{"urgency": "CRITICAL", "summary": "s", "keyPoints": ["p"]}`,
			want: domain.ClassificationResult{
				Urgency:   domain.Normal,
				Summary:   "s",
				KeyPoints: []string{"p"},
			},
		},
		{
			name:    "not json",
			content: "I could not produce a summary.",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseResult(tc.content)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClassifyRejectsEmptyBatch(t *testing.T) {
	t.Parallel()

	classifier := NewOpenAIClassifier(config.OpenAIConfig{APIKey: "test", Model: "gpt-4o-mini"})
	_, err := classifier.Classify(context.Background(), domain.StreamGrades, nil)
	require.Error(t, err)
}
