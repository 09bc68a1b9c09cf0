// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package tmdb

import (
	"sort"
	"strconv"
	"strings"
)

// SearchResult is one entry of a /search/movie page.
type SearchResult struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	ReleaseDate   string  `json:"release_date"`
	Overview      string  `json:"overview"`
	Popularity    float64 `json:"popularity"`
	VoteAverage   float64 `json:"vote_average"`
	VoteCount     int     `json:"vote_count"`
}

// ReleaseYear returns the year of ReleaseDate, or 0 when it is missing.
func (r *SearchResult) ReleaseYear() int {
	return yearOf(r.ReleaseDate)
}

type searchPage struct {
	Page         int            `json:"page"`
	Results      []SearchResult `json:"results"`
	TotalResults int            `json:"total_results"`
	TotalPages   int            `json:"total_pages"`
}

// Named is the {id, name} shape used for genres, companies and keywords.
type Named struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Country is a production country.
type Country struct {
	ISO31661 string `json:"iso_3166_1"`
	Name     string `json:"name"`
}

// CastMember is one credited actor.
type CastMember struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	Character          string  `json:"character"`
	KnownForDepartment string  `json:"known_for_department"`
	Popularity         float64 `json:"popularity"`
	Order              int     `json:"order"`
}

// CrewMember is one credited crew member.
type CrewMember struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Job        string `json:"job"`
	Department string `json:"department"`
}

// Credits is the appended credits block.
type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// Keywords is the appended keywords block.
type Keywords struct {
	Keywords []Named `json:"keywords"`
}

// MovieDetails is the /movie/{id} response. Credits and Keywords are nil
// unless they were requested.
type MovieDetails struct {
	ID                  int64     `json:"id"`
	Title               string    `json:"title"`
	OriginalTitle       string    `json:"original_title"`
	OriginalLanguage    string    `json:"original_language"`
	Overview            string    `json:"overview"`
	ReleaseDate         string    `json:"release_date"`
	Runtime             int       `json:"runtime"`
	Popularity          float64   `json:"popularity"`
	VoteAverage         float64   `json:"vote_average"`
	VoteCount           int       `json:"vote_count"`
	Genres              []Named   `json:"genres"`
	ProductionCompanies []Named   `json:"production_companies"`
	ProductionCountries []Country `json:"production_countries"`
	Credits             *Credits  `json:"credits,omitempty"`
	Keywords            *Keywords `json:"keywords,omitempty"`
}

// ReleaseYear returns the year of ReleaseDate, or 0 when it is missing.
func (d *MovieDetails) ReleaseYear() int {
	return yearOf(d.ReleaseDate)
}

// Director returns the first crew member whose job is "Director".
func (d *MovieDetails) Director() string {
	if d.Credits == nil {
		return ""
	}
	for _, c := range d.Credits.Crew {
		if c.Job == "Director" {
			return c.Name
		}
	}
	return ""
}

// TopActors returns up to n cast members known for acting, most popular
// first. Equal popularity keeps billing order.
func (d *MovieDetails) TopActors(n int) []string {
	if d.Credits == nil || n <= 0 {
		return nil
	}
	actors := make([]CastMember, 0, len(d.Credits.Cast))
	for _, c := range d.Credits.Cast {
		if c.KnownForDepartment == "Acting" {
			actors = append(actors, c)
		}
	}
	sort.SliceStable(actors, func(i, j int) bool {
		return actors[i].Popularity > actors[j].Popularity
	})
	if len(actors) > n {
		actors = actors[:n]
	}
	names := make([]string, len(actors))
	for i, a := range actors {
		names[i] = a.Name
	}
	return names
}

// GenreNames returns genre names in response order.
func (d *MovieDetails) GenreNames() []string {
	return names(d.Genres)
}

// KeywordList joins keyword names with ", ".
func (d *MovieDetails) KeywordList() string {
	if d.Keywords == nil {
		return ""
	}
	return strings.Join(names(d.Keywords.Keywords), ", ")
}

// CompanyList joins production company names with ", ".
func (d *MovieDetails) CompanyList() string {
	return strings.Join(names(d.ProductionCompanies), ", ")
}

// CountryList joins production country names with ", ".
func (d *MovieDetails) CountryList() string {
	out := make([]string, len(d.ProductionCountries))
	for i, c := range d.ProductionCountries {
		out[i] = c.Name
	}
	return strings.Join(out, ", ")
}

func names(in []Named) []string {
	out := make([]string, len(in))
	for i, n := range in {
		out[i] = n.Name
	}
	return out
}

func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return y
}
