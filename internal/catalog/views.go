package catalog

import "reminer-backend/internal/domain"

// ReviewView is a review as returned by the API, tagged with its owning app.
type ReviewView struct {
	AppID      string                  `json:"app_id"`
	AppName    string                  `json:"app_name"`
	ID         string                  `json:"id"`
	Review     string                  `json:"review"`
	Score      domain.Score            `json:"score"`
	Date       string                  `json:"date"`
	Analyzed   bool                    `json:"analyzed"`
	Features   []string                `json:"features"`
	Sentiments []domain.SentimentEntry `json:"sentiments"`
}

// AppView is an app as returned by the API. Reviews are summarised by count.
type AppView struct {
	ID          string `json:"id"`
	AppName     string `json:"app_name"`
	Description string `json:"description"`
	Summary     string `json:"summary"`
	ReleaseDate string `json:"release_date"`
	Version     string `json:"version"`
	ReviewSize  int    `json:"review_size"`
}

// AppName is the id/name pair used to populate app pickers.
type AppName struct {
	ID      string `json:"id"`
	AppName string `json:"app_name"`
}

func toReviewView(app domain.AppRecord, r domain.ReviewRecord) ReviewView {
	features := r.Features
	if features == nil {
		features = []string{}
	}
	sentiments := r.Sentiments
	if sentiments == nil {
		sentiments = []domain.SentimentEntry{}
	}
	return ReviewView{
		AppID:      app.ID,
		AppName:    app.AppName,
		ID:         r.ID,
		Review:     r.Review,
		Score:      r.Score,
		Date:       r.Date,
		Analyzed:   r.Analyzed,
		Features:   features,
		Sentiments: sentiments,
	}
}

func toAppView(app domain.AppRecord) AppView {
	return AppView{
		ID:          app.ID,
		AppName:     app.AppName,
		Description: app.Description,
		Summary:     app.Summary,
		ReleaseDate: app.ReleaseDate,
		Version:     app.Version,
		ReviewSize:  len(app.Reviews),
	}
}

// FlattenReviews lists every review of every app in storage order.
func FlattenReviews(rec *domain.UserRecord) []ReviewView {
	out := []ReviewView{}
	if rec == nil {
		return out
	}
	for _, app := range rec.Apps {
		for _, r := range app.Reviews {
			out = append(out, toReviewView(app, r))
		}
	}
	return out
}

// AppViews lists every app of rec in storage order.
func AppViews(rec *domain.UserRecord) []AppView {
	out := make([]AppView, 0, len(rec.Apps))
	for _, app := range rec.Apps {
		out = append(out, toAppView(app))
	}
	return out
}
