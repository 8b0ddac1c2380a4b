package catalog

import (
	"testing"

	"reminer-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"mixed terminators", "Great app. Love it! Needs work?", []string{"Great app.", "Love it!", "Needs work?"}},
		{"no terminator", "Works fine", []string{"Works fine"}},
		{"repeated terminators stay attached", "Wow!!! Really?", []string{"Wow!!!", "Really?"}},
		{"trailing text after last stop", "Crashes. Every time", []string{"Crashes.", "Every time"}},
		{"punctuation only", "... !!", []string{}},
		{"empty", "", []string{}},
		{"whitespace is trimmed", "  Fast.   Clean.  ", []string{"Fast.", "Clean."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSentences(tt.text))
		})
	}
}

func sampleRecord() *domain.UserRecord {
	return &domain.UserRecord{
		UserID: "u1",
		Apps: []domain.AppRecord{
			{ID: "a1", AppName: "Notes", Reviews: []domain.ReviewRecord{{ID: "r1"}, {ID: "r2"}}},
			{ID: "a2", AppName: "Maps", Reviews: []domain.ReviewRecord{{ID: "r3"}, {ID: "r2"}}},
		},
	}
}

func TestFindHelpers(t *testing.T) {
	rec := sampleRecord()

	idx, ok := FindAppIndex(rec, "a2")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = FindAppIndex(rec, "nope")
	assert.False(t, ok)

	t.Run("review lookup stops at the first match in storage order", func(t *testing.T) {
		loc, ok := FindReviewLocation(rec, "r2")
		require.True(t, ok)
		assert.Equal(t, Location{AppIndex: 0, ReviewIndex: 1}, loc)
	})

	t.Run("review in a later app", func(t *testing.T) {
		loc, ok := FindReviewLocation(rec, "r3")
		require.True(t, ok)
		assert.Equal(t, Location{AppIndex: 1, ReviewIndex: 0}, loc)
	})

	_, ok = FindReviewLocation(rec, "missing")
	assert.False(t, ok)
	_, ok = FindReviewLocation(nil, "r1")
	assert.False(t, ok)
}

func TestWithoutHelpers(t *testing.T) {
	rec := sampleRecord()

	t.Run("missing id leaves the list unchanged", func(t *testing.T) {
		out, removed := WithoutReview(rec.Apps[0].Reviews, "zzz")
		assert.False(t, removed)
		assert.Equal(t, rec.Apps[0].Reviews, out)
	})

	t.Run("removes the match and does not touch the input", func(t *testing.T) {
		out, removed := WithoutApp(rec.Apps, "a1")
		assert.True(t, removed)
		require.Len(t, out, 1)
		assert.Equal(t, "a2", out[0].ID)
		assert.Len(t, rec.Apps, 2)
	})

	t.Run("only the first duplicate is removed", func(t *testing.T) {
		reviews := []domain.ReviewRecord{{ID: "r1", Review: "first"}, {ID: "r2"}, {ID: "r1", Review: "second"}}
		out, removed := WithoutReview(reviews, "r1")
		assert.True(t, removed)
		require.Len(t, out, 2)
		assert.Equal(t, "r2", out[0].ID)
		assert.Equal(t, "second", out[1].Review)

		apps := []domain.AppRecord{{ID: "a1", AppName: "first"}, {ID: "a1", AppName: "second"}}
		left, removed := WithoutApp(apps, "a1")
		assert.True(t, removed)
		require.Len(t, left, 1)
		assert.Equal(t, "second", left[0].AppName)
	})
}

func TestNewReview(t *testing.T) {
	r := NewReview("r9", ReviewFields{Review: "Great app. Love it! Needs work?", Score: 4, Date: "2024-01-02"})

	assert.Equal(t, "r9", r.ID)
	assert.False(t, r.Analyzed)
	assert.Empty(t, r.Features)
	require.Len(t, r.Sentiments, 3)
	for _, s := range r.Sentiments {
		assert.Equal(t, domain.NotRelevant, s.Sentiment)
	}
	assert.Equal(t, "Love it!", r.Sentiments[1].Sentence)
}

func TestMergeReviewKeepsAnalysis(t *testing.T) {
	existing := domain.ReviewRecord{
		ID:         "r1",
		Review:     "Old text.",
		Score:      2,
		Analyzed:   true,
		Features:   []string{"sync"},
		Sentiments: []domain.SentimentEntry{{Sentence: "Old text.", Sentiment: "anger"}},
	}

	merged := MergeReview(existing, ReviewFields{ID: "ignored", Review: "New text.", Score: 5, Date: "2024-05-01"})

	assert.Equal(t, "r1", merged.ID)
	assert.Equal(t, "New text.", merged.Review)
	assert.Equal(t, domain.Score(5), merged.Score)
	assert.True(t, merged.Analyzed)
	assert.Equal(t, existing.Features, merged.Features)
	assert.Equal(t, existing.Sentiments, merged.Sentiments)
}

func TestApplyAppFieldsKeepsIdentity(t *testing.T) {
	app := domain.AppRecord{ID: "a1", AppName: "Old", Reviews: []domain.ReviewRecord{{ID: "r1"}}}
	out := ApplyAppFields(app, AppFields{AppName: "New", Version: "2.0"})

	assert.Equal(t, "a1", out.ID)
	assert.Equal(t, "New", out.AppName)
	assert.Equal(t, "2.0", out.Version)
	assert.Equal(t, app.Reviews, out.Reviews)
}

func TestSentences(t *testing.T) {
	r := domain.ReviewRecord{
		Review: "A. B.",
		Sentiments: []domain.SentimentEntry{
			{Sentence: "A.", Sentiment: "joy"},
			{Sentence: "A.", Sentiment: "surprise"},
			{Sentence: "B.", Sentiment: domain.NotRelevant},
		},
	}
	assert.Equal(t, []string{"A.", "B."}, Sentences(r))

	r.Sentiments = nil
	assert.Equal(t, []string{"A.", "B."}, Sentences(r))

	t.Run("repeated sentences apart from each other are kept", func(t *testing.T) {
		r := domain.ReviewRecord{Sentiments: []domain.SentimentEntry{
			{Sentence: "Great.", Sentiment: "joy"},
			{Sentence: "Slow.", Sentiment: "anger"},
			{Sentence: "Great.", Sentiment: "joy"},
		}}
		assert.Equal(t, []string{"Great.", "Slow.", "Great."}, Sentences(r))
	})
}
