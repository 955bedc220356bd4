package models

import (
	"time"
)

type User struct {
	ID        uint      `gorm:"primaryKey"`
	Username  string    `gorm:"type:varchar(50);uniqueIndex;not null"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	IsActive  bool      `gorm:"default:true;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	// Per-category visibility flags. New accounts are fully visible to
	// their friends until they opt out.
	MoviesPrivate     bool `gorm:"default:false;not null"`
	TVShowsPrivate    bool `gorm:"default:false;not null"`
	AnimePrivate      bool `gorm:"default:false;not null"`
	VideoGamesPrivate bool `gorm:"default:false;not null"`
	MusicPrivate      bool `gorm:"default:false;not null"`
	BooksPrivate      bool `gorm:"default:false;not null"`
	StatisticsPrivate bool `gorm:"default:false;not null"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

// PrivacyCategory identifies one shareable slice of a user's collection.
type PrivacyCategory string

const (
	CategoryMovies     PrivacyCategory = "movies"
	CategoryTVShows    PrivacyCategory = "tv_shows"
	CategoryAnime      PrivacyCategory = "anime"
	CategoryVideoGames PrivacyCategory = "video_games"
	CategoryMusic      PrivacyCategory = "music"
	CategoryBooks      PrivacyCategory = "books"
	CategoryStatistics PrivacyCategory = "statistics"
)

// PrivacyCategories lists every known category in a stable order.
var PrivacyCategories = []PrivacyCategory{
	CategoryMovies,
	CategoryTVShows,
	CategoryAnime,
	CategoryVideoGames,
	CategoryMusic,
	CategoryBooks,
	CategoryStatistics,
}

// ValidCategory reports whether c names a known category.
func ValidCategory(c PrivacyCategory) bool {
	for _, known := range PrivacyCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Private returns the user's visibility flag for the given category.
// Unknown categories are treated as private.
func (u *User) Private(c PrivacyCategory) bool {
	switch c {
	case CategoryMovies:
		return u.MoviesPrivate
	case CategoryTVShows:
		return u.TVShowsPrivate
	case CategoryAnime:
		return u.AnimePrivate
	case CategoryVideoGames:
		return u.VideoGamesPrivate
	case CategoryMusic:
		return u.MusicPrivate
	case CategoryBooks:
		return u.BooksPrivate
	case CategoryStatistics:
		return u.StatisticsPrivate
	}
	return true
}

// PrivacySettings carries a partial privacy update. Nil fields are left
// untouched so callers can flip a single flag.
type PrivacySettings struct {
	MoviesPrivate     *bool `json:"movies_private"`
	TVShowsPrivate    *bool `json:"tv_shows_private"`
	AnimePrivate      *bool `json:"anime_private"`
	VideoGamesPrivate *bool `json:"video_games_private"`
	MusicPrivate      *bool `json:"music_private"`
	BooksPrivate      *bool `json:"books_private"`
	StatisticsPrivate *bool `json:"statistics_private"`
}

// Apply copies the set fields onto the user.
func (p PrivacySettings) Apply(u *User) {
	if p.MoviesPrivate != nil {
		u.MoviesPrivate = *p.MoviesPrivate
	}
	if p.TVShowsPrivate != nil {
		u.TVShowsPrivate = *p.TVShowsPrivate
	}
	if p.AnimePrivate != nil {
		u.AnimePrivate = *p.AnimePrivate
	}
	if p.VideoGamesPrivate != nil {
		u.VideoGamesPrivate = *p.VideoGamesPrivate
	}
	if p.MusicPrivate != nil {
		u.MusicPrivate = *p.MusicPrivate
	}
	if p.BooksPrivate != nil {
		u.BooksPrivate = *p.BooksPrivate
	}
	if p.StatisticsPrivate != nil {
		u.StatisticsPrivate = *p.StatisticsPrivate
	}
}
