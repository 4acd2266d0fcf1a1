// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package recommend

import (
	"context"
	"time"
)

// ReadingStatus is the shelf a user has placed a book on.
type ReadingStatus string

const (
	// StatusWantToRead marks a book the user intends to read.
	StatusWantToRead ReadingStatus = "want_to_read"
	// StatusReading marks a book the user is currently reading.
	StatusReading ReadingStatus = "reading"
	// StatusRead marks a finished book.
	StatusRead ReadingStatus = "read"
)

// Weight returns the engagement weight of the status.
// Unknown statuses get a small non-zero weight so malformed rows still count.
func (s ReadingStatus) Weight() float64 {
	switch s {
	case StatusRead:
		return 1.0
	case StatusReading:
		return 0.6
	case StatusWantToRead:
		return 0.3
	default:
		return 0.1
	}
}

// Valid reports whether s is one of the known statuses.
func (s ReadingStatus) Valid() bool {
	switch s {
	case StatusRead, StatusReading, StatusWantToRead:
		return true
	default:
		return false
	}
}

// BookFormat is a purchasable edition format.
type BookFormat string

const (
	FormatPaper     BookFormat = "paper"
	FormatEbook     BookFormat = "ebook"
	FormatAudiobook BookFormat = "audiobook"
)

// AllFormats lists every format in canonical order.
var AllFormats = []BookFormat{FormatPaper, FormatEbook, FormatAudiobook}

// Valid reports whether f is a known format.
func (f BookFormat) Valid() bool {
	switch f {
	case FormatPaper, FormatEbook, FormatAudiobook:
		return true
	default:
		return false
	}
}

// Ref is an identifier with its display name (author or category).
type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LibraryEntry is one user-book record from the user's library.
type LibraryEntry struct {
	// BookID identifies the catalog book.
	BookID string `json:"book_id"`

	// Status is the reading status.
	Status ReadingStatus `json:"status"`

	// Rating is the user's 1-5 star rating. Zero means unrated.
	Rating int `json:"rating,omitempty"`

	// RatedAt is when the rating was given.
	RatedAt *time.Time `json:"rated_at,omitempty"`

	// FinishedAt is when the book was marked as read.
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// AddedAt is when the book was added to the library.
	AddedAt time.Time `json:"added_at"`

	// UpdatedAt is the last modification of the record.
	UpdatedAt time.Time `json:"updated_at"`

	// Categories are the book's categories.
	Categories []Ref `json:"categories"`

	// Authors are the book's authors.
	Authors []Ref `json:"authors"`

	// Formats lists the formats the book is published in.
	Formats []BookFormat `json:"formats"`
}

// IsRated reports whether the entry carries a usable 1-5 rating.
func (e *LibraryEntry) IsRated() bool {
	return e.Rating >= 1 && e.Rating <= 5
}

// PurchaseFormatCount is the number of purchases a user made in one format.
type PurchaseFormatCount struct {
	Format BookFormat `json:"format"`
	Count  int        `json:"count"`
}

// AffinityKind tags an affinity entry.
type AffinityKind string

const (
	KindCategory AffinityKind = "category"
	KindAuthor   AffinityKind = "author"
	KindFormat   AffinityKind = "format"
)

// ScoredEntity is implemented by every affinity entry.
type ScoredEntity interface {
	Kind() AffinityKind
	Key() string
	Value() float64
}

// AffinityScore is the normalized preference for one category or author.
type AffinityScore struct {
	// ID is the category or author identifier.
	ID string `json:"id"`

	// Name is the display name.
	Name string `json:"name"`

	// Score is normalized to [0,1]; the strongest entry is exactly 1.
	Score float64 `json:"score"`

	// SampleCount is the number of library records that contributed.
	SampleCount int `json:"sample_count"`

	// AverageRating is the mean rating of contributing rated records.
	// Nil when none of them are rated.
	AverageRating *float64 `json:"average_rating,omitempty"`
}

// CategoryAffinity is a user's preference for a category.
type CategoryAffinity struct {
	AffinityScore
}

func (a CategoryAffinity) Kind() AffinityKind { return KindCategory }
func (a CategoryAffinity) Key() string        { return a.ID }
func (a CategoryAffinity) Value() float64     { return a.Score }

// AuthorAffinity is a user's preference for an author.
type AuthorAffinity struct {
	AffinityScore

	// BooksRead counts the author's books on the user's read shelf.
	BooksRead int `json:"books_read"`
}

func (a AuthorAffinity) Kind() AffinityKind { return KindAuthor }
func (a AuthorAffinity) Key() string        { return a.ID }
func (a AuthorAffinity) Value() float64     { return a.Score }

// FormatAffinity is a user's preference for a format.
// Total is FromBookshelf + 2*FromPurchases; Score is Total divided by the
// largest Total across formats.
type FormatAffinity struct {
	Format        BookFormat `json:"format"`
	Score         float64    `json:"score"`
	FromBookshelf int        `json:"from_bookshelf"`
	FromPurchases int        `json:"from_purchases"`
	Total         int        `json:"total"`
}

func (a FormatAffinity) Kind() AffinityKind { return KindFormat }
func (a FormatAffinity) Key() string        { return string(a.Format) }
func (a FormatAffinity) Value() float64     { return a.Score }

// RatingStats summarizes the user's ratings.
type RatingStats struct {
	Count   int     `json:"count"`
	Average float64 `json:"average"`

	// Distribution holds the number of ratings per star; index 0 is 1 star.
	Distribution [5]int `json:"distribution"`
}

// RecentActivity counts activity inside the recent-activity window.
type RecentActivity struct {
	Added    int `json:"added"`
	Rated    int `json:"rated"`
	Finished int `json:"finished"`
}

// ReadingStats summarizes a user's library.
type ReadingStats struct {
	TotalBooks int            `json:"total_books"`
	WantToRead int            `json:"want_to_read"`
	Reading    int            `json:"reading"`
	Read       int            `json:"read"`
	Ratings    RatingStats    `json:"ratings"`
	Recent     RecentActivity `json:"recent"`
}

// NegativeSignal is a category or author the user repeatedly rates low.
type NegativeSignal struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// Count is the number of low-rated records mentioning the id.
	Count int `json:"count"`

	// Score is Count divided by the total number of low-rated records.
	Score float64 `json:"score"`
}

// NegativeSignals groups negative signals by kind.
type NegativeSignals struct {
	Categories []NegativeSignal `json:"categories"`
	Authors    []NegativeSignal `json:"authors"`
}

// DataQuality describes how much the engine can trust a user's preferences.
type DataQuality struct {
	HasEnoughData  bool       `json:"has_enough_data"`
	Confidence     float64    `json:"confidence"`
	LastRatingAt   *time.Time `json:"last_rating_at,omitempty"`
	LastActivityAt *time.Time `json:"last_activity_at,omitempty"`
}

// UserPreferences is the derived preference view for one user.
// It is recomputed on demand and never persisted.
type UserPreferences struct {
	UserID          string             `json:"user_id"`
	CalculatedAt    time.Time          `json:"calculated_at"`
	Categories      []CategoryAffinity `json:"categories"`
	Authors         []AuthorAffinity   `json:"authors"`
	Formats         []FormatAffinity   `json:"formats"`
	Stats           ReadingStats       `json:"stats"`
	NegativeSignals NegativeSignals    `json:"negative_signals"`
	DataQuality     DataQuality        `json:"data_quality"`
}

// Book is the catalog read model used for scoring. Scoring never mutates it.
type Book struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Authors       []Ref        `json:"authors"`
	Categories    []Ref        `json:"categories"`
	Formats       []BookFormat `json:"formats"`
	AvgRating     float64      `json:"avg_rating"`
	RatingsCount  int          `json:"ratings_count"`
	HasOffers     bool         `json:"has_offers"`
	PublishedYear int          `json:"published_year,omitempty"`
	CoverURL      string       `json:"cover_url,omitempty"`
}

// OffersFormat reports whether the book is published in format f.
func (b *Book) OffersFormat(f BookFormat) bool {
	for _, bf := range b.Formats {
		if bf == f {
			return true
		}
	}
	return false
}

// ScoreBreakdown exposes the individual scoring terms for debugging.
type ScoreBreakdown struct {
	CategoryScore     float64    `json:"category_score"`
	AuthorScore       float64    `json:"author_score"`
	FormatScore       float64    `json:"format_score"`
	PopularityScore   float64    `json:"popularity_score"`
	OfferBoost        float64    `json:"offer_boost"`
	RawScore          float64    `json:"raw_score"`
	MatchedCategories []string   `json:"matched_categories"`
	MatchedAuthors    []string   `json:"matched_authors"`
	MatchedFormat     BookFormat `json:"matched_format,omitempty"`
}

// Recommendation is a scored catalog book.
type Recommendation struct {
	Book    Book            `json:"book"`
	Score   float64         `json:"score"`
	Reasons []string        `json:"reasons"`
	Debug   *ScoreBreakdown `json:"debug,omitempty"`
}

// Query holds the caller-controlled recommendation parameters.
type Query struct {
	// Limit is the requested number of results (1-50). Zero uses the default.
	Limit int `json:"limit"`

	// Debug attaches score breakdowns to each recommendation.
	Debug bool `json:"debug"`

	// Format restricts the candidate pool to books offered in the format.
	Format BookFormat `json:"format,omitempty"`

	// CategoryID restricts the candidate pool to a category.
	CategoryID string `json:"category_id,omitempty"`

	// RequestID is propagated into the response metadata.
	RequestID string `json:"-"`
}

// ResponseMeta describes how a recommendation list was produced.
type ResponseMeta struct {
	Confidence           float64   `json:"confidence"`
	FallbackUsed         bool      `json:"fallback_used"`
	CandidatesConsidered int       `json:"candidates_considered"`
	Excluded             int       `json:"excluded"`
	AlgorithmVersion     string    `json:"algorithm_version"`
	RequestID            string    `json:"request_id,omitempty"`
	LatencyMS            int64     `json:"latency_ms"`
	CacheHit             bool      `json:"cache_hit"`
	GeneratedAt          time.Time `json:"generated_at"`
}

// RecommendationResponse is the result of GetRecommendations.
type RecommendationResponse struct {
	Items []Recommendation `json:"items"`
	Meta  ResponseMeta     `json:"meta"`
}

// CandidateFilter narrows the candidate pool.
type CandidateFilter struct {
	Format     BookFormat
	CategoryID string
}

// CandidateSet is the output of candidate selection.
type CandidateSet struct {
	Candidates []Book
	Excluded   int
}

// LibraryReader reads a user's library.
type LibraryReader interface {
	// GetUserLibrary returns every library record of the user.
	GetUserLibrary(ctx context.Context, userID string) ([]LibraryEntry, error)

	// GetReadBookIDs returns the ids of books on the user's read shelf.
	GetReadBookIDs(ctx context.Context, userID string) ([]string, error)

	// GetLibraryVersion returns an opaque token that changes whenever the
	// user's library or purchases change.
	GetLibraryVersion(ctx context.Context, userID string) (string, error)
}

// PurchaseReader reads purchase history aggregates.
type PurchaseReader interface {
	GetPurchaseFormatCounts(ctx context.Context, userID string) ([]PurchaseFormatCount, error)
}

// CatalogReader reads the book catalog.
type CatalogReader interface {
	// GetCandidatePool returns at most limit books in popularity order.
	GetCandidatePool(ctx context.Context, filter CandidateFilter, limit int) ([]Book, error)

	// GetPopularBooks returns at most limit books ordered by ratings count
	// then average rating, both descending.
	GetPopularBooks(ctx context.Context, limit int) ([]Book, error)

	// GetBooks returns the books with the given ids. Unknown ids are omitted.
	GetBooks(ctx context.Context, ids []string) ([]Book, error)
}

// DataProvider combines every read API the engine consumes.
type DataProvider interface {
	LibraryReader
	PurchaseReader
	CatalogReader
}

// OfferResolver refreshes offer availability on catalog books.
type OfferResolver interface {
	Annotate(ctx context.Context, books []Book) error
}
