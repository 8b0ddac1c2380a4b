package domain

// NotRelevant is the sentiment recorded for a sentence with no detected emotion.
const NotRelevant = "Not relevant"

// UserRecord is the single stored row per user. Everything else is nested inside it.
type UserRecord struct {
	UserID     string      `json:"user_id" dynamodbav:"user_id"`
	Email      string      `json:"email" dynamodbav:"email"`
	Name       string      `json:"name" dynamodbav:"name"`
	FamilyName string      `json:"family_name" dynamodbav:"family_name"`
	Apps       []AppRecord `json:"apps" dynamodbav:"apps"`
	// Version is the optimistic concurrency token. Rows written before it
	// existed load as 0.
	Version int64 `json:"-" dynamodbav:"record_version,omitempty"`
}

// AppRecord is an app registered by a user.
type AppRecord struct {
	ID          string         `json:"id" dynamodbav:"id"`
	AppName     string         `json:"app_name" dynamodbav:"app_name"`
	Description string         `json:"description" dynamodbav:"description"`
	Summary     string         `json:"summary" dynamodbav:"summary"`
	ReleaseDate string         `json:"release_date" dynamodbav:"release_date"`
	Version     string         `json:"version" dynamodbav:"version"`
	Reviews     []ReviewRecord `json:"reviews" dynamodbav:"reviews"`
}

// ReviewRecord is a user review of an app plus its analysis output.
type ReviewRecord struct {
	ID         string           `json:"id" dynamodbav:"id"`
	Review     string           `json:"review" dynamodbav:"review"`
	Score      Score            `json:"score" dynamodbav:"score"`
	Date       string           `json:"date" dynamodbav:"date"`
	Analyzed   bool             `json:"analyzed" dynamodbav:"analyzed"`
	Features   []string         `json:"features" dynamodbav:"features"`
	Sentiments []SentimentEntry `json:"sentiments" dynamodbav:"sentiments"`
}

// SentimentEntry pairs a sentence of a review with one detected emotion.
type SentimentEntry struct {
	Sentence  string `json:"sentence" dynamodbav:"sentence"`
	Sentiment string `json:"sentiment" dynamodbav:"sentiment"`
}

// Clone returns a deep copy of the record.
func (u *UserRecord) Clone() *UserRecord {
	if u == nil {
		return nil
	}
	out := *u
	if u.Apps != nil {
		out.Apps = make([]AppRecord, len(u.Apps))
		for i, app := range u.Apps {
			out.Apps[i] = app.Clone()
		}
	}
	return &out
}

// Clone returns a deep copy of the app.
func (a AppRecord) Clone() AppRecord {
	out := a
	if a.Reviews != nil {
		out.Reviews = make([]ReviewRecord, len(a.Reviews))
		for i, r := range a.Reviews {
			out.Reviews[i] = r.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the review.
func (r ReviewRecord) Clone() ReviewRecord {
	out := r
	if r.Features != nil {
		out.Features = append([]string(nil), r.Features...)
	}
	if r.Sentiments != nil {
		out.Sentiments = append([]SentimentEntry(nil), r.Sentiments...)
	}
	return out
}
