// Package catalog holds the nested catalog model (pure functions over a
// user's apps and reviews) and the service that persists changes to it.
package catalog

import (
	"reminer-backend/internal/domain"
)

// Location is the position of a review inside a UserRecord.
type Location struct {
	AppIndex    int
	ReviewIndex int
}

// AppFields are the caller editable attributes of an app.
type AppFields struct {
	AppName     string `json:"app_name" validate:"required,max=256"`
	Description string `json:"description" validate:"max=4096"`
	Summary     string `json:"summary" validate:"max=4096"`
	ReleaseDate string `json:"release_date"`
	Version     string `json:"version" validate:"max=64"`
}

// ReviewFields are the caller editable attributes of a review. ID is only
// honoured on create.
type ReviewFields struct {
	ID     string       `json:"review_id"`
	Review string       `json:"review" validate:"required"`
	Score  domain.Score `json:"score"`
	Date   string       `json:"date"`
}

// FindAppIndex returns the index of the first app with appID.
func FindAppIndex(rec *domain.UserRecord, appID string) (int, bool) {
	if rec == nil {
		return -1, false
	}
	for i := range rec.Apps {
		if rec.Apps[i].ID == appID {
			return i, true
		}
	}
	return -1, false
}

// FindReviewLocation scans apps in order, then each app's reviews in order,
// and stops at the first review with reviewID.
func FindReviewLocation(rec *domain.UserRecord, reviewID string) (Location, bool) {
	if rec == nil {
		return Location{}, false
	}
	for i := range rec.Apps {
		for j := range rec.Apps[i].Reviews {
			if rec.Apps[i].Reviews[j].ID == reviewID {
				return Location{AppIndex: i, ReviewIndex: j}, true
			}
		}
	}
	return Location{}, false
}

// HasReviewID reports whether app already holds a review with id.
func HasReviewID(app domain.AppRecord, id string) bool {
	for _, r := range app.Reviews {
		if r.ID == id {
			return true
		}
	}
	return false
}

// NewApp builds an app with a fresh id and no reviews.
func NewApp(id string, f AppFields) domain.AppRecord {
	return domain.AppRecord{
		ID:          id,
		AppName:     f.AppName,
		Description: f.Description,
		Summary:     f.Summary,
		ReleaseDate: f.ReleaseDate,
		Version:     f.Version,
		Reviews:     []domain.ReviewRecord{},
	}
}

// ApplyAppFields overwrites the editable attributes of app. The id and the
// reviews are kept.
func ApplyAppFields(app domain.AppRecord, f AppFields) domain.AppRecord {
	out := app.Clone()
	out.AppName = f.AppName
	out.Description = f.Description
	out.Summary = f.Summary
	out.ReleaseDate = f.ReleaseDate
	out.Version = f.Version
	if out.Reviews == nil {
		out.Reviews = []domain.ReviewRecord{}
	}
	return out
}

// WithoutApp returns a new list without the first app with appID and
// whether it was present.
func WithoutApp(apps []domain.AppRecord, appID string) ([]domain.AppRecord, bool) {
	out := make([]domain.AppRecord, 0, len(apps))
	removed := false
	for _, app := range apps {
		if !removed && app.ID == appID {
			removed = true
			continue
		}
		out = append(out, app)
	}
	return out, removed
}

// WithoutReview returns a new list without the first review with reviewID
// and whether it was present.
func WithoutReview(reviews []domain.ReviewRecord, reviewID string) ([]domain.ReviewRecord, bool) {
	out := make([]domain.ReviewRecord, 0, len(reviews))
	removed := false
	for _, r := range reviews {
		if !removed && r.ID == reviewID {
			removed = true
			continue
		}
		out = append(out, r)
	}
	return out, removed
}

// NewReview builds an unanalyzed review with one placeholder sentiment per
// sentence of its text.
func NewReview(id string, f ReviewFields) domain.ReviewRecord {
	sentences := SplitSentences(f.Review)
	sentiments := make([]domain.SentimentEntry, 0, len(sentences))
	for _, s := range sentences {
		sentiments = append(sentiments, domain.SentimentEntry{Sentence: s, Sentiment: domain.NotRelevant})
	}
	return domain.ReviewRecord{
		ID:         id,
		Review:     f.Review,
		Score:      f.Score,
		Date:       f.Date,
		Analyzed:   false,
		Features:   []string{},
		Sentiments: sentiments,
	}
}

// MergeReview overwrites the text, score and date of existing. Analysis
// output (features, sentiments, analyzed) is carried forward unchanged.
func MergeReview(existing domain.ReviewRecord, f ReviewFields) domain.ReviewRecord {
	out := existing.Clone()
	out.Review = f.Review
	out.Score = f.Score
	out.Date = f.Date
	return out
}

// ApplyAnalysis returns review with its analysis output replaced and marked
// analyzed.
func ApplyAnalysis(review domain.ReviewRecord, features []string, sentiments []domain.SentimentEntry) domain.ReviewRecord {
	out := review.Clone()
	out.Features = append([]string{}, features...)
	out.Sentiments = append([]domain.SentimentEntry{}, sentiments...)
	out.Analyzed = true
	return out
}

// Sentences returns the sentences recorded on a review, falling back to
// splitting its text when none are recorded. Adjacent entries for the same
// sentence are the fan-out of one earlier analysis and yield one sentence.
func Sentences(review domain.ReviewRecord) []string {
	var out []string
	for _, s := range review.Sentiments {
		if s.Sentence == "" || (len(out) > 0 && out[len(out)-1] == s.Sentence) {
			continue
		}
		out = append(out, s.Sentence)
	}
	if len(out) == 0 {
		return SplitSentences(review.Review)
	}
	return out
}
