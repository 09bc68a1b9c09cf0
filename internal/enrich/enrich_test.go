// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package enrich

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/dataset"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/tmdb"
)

type fakeAPI struct {
	mu          sync.Mutex
	search      map[string][]tmdb.SearchResult
	details     map[int64]*tmdb.MovieDetails
	searchErr   map[string]error
	validateErr error
	searches    []string
}

func (f *fakeAPI) SearchMovie(_ context.Context, title, locale string, year int) ([]tmdb.SearchResult, error) {
	f.mu.Lock()
	f.searches = append(f.searches, fmt.Sprintf("%s|%s|%d", title, locale, year))
	f.mu.Unlock()
	if err := f.searchErr[title]; err != nil {
		return nil, err
	}
	return f.search[title], nil
}

func (f *fakeAPI) MovieDetails(_ context.Context, id int64, _ string, withCredits, withKeywords bool) (*tmdb.MovieDetails, error) {
	if !withCredits || !withKeywords {
		return nil, errors.New("credits and keywords must be requested")
	}
	d, ok := f.details[id]
	if !ok {
		return nil, tmdb.ErrNotFound
	}
	return d, nil
}

func (f *fakeAPI) ValidateKey(context.Context) error {
	return f.validateErr
}

func heatDetails() *tmdb.MovieDetails {
	return &tmdb.MovieDetails{
		ID:               949,
		Title:            "盗火线",
		OriginalTitle:    "Heat",
		OriginalLanguage: "en",
		Overview:         "A group of professional bank robbers.",
		Runtime:          170,
		Popularity:       40.5,
		VoteAverage:      7.9,
		VoteCount:        6000,
		Genres:           []tmdb.Named{{ID: 28, Name: "动作"}},
		ProductionCompanies: []tmdb.Named{
			{ID: 1, Name: "Regency"}, {ID: 2, Name: "Forward Pass"},
		},
		ProductionCountries: []tmdb.Country{{ISO31661: "US", Name: "United States of America"}},
		Credits: &tmdb.Credits{
			Cast: []tmdb.CastMember{
				{Name: "Al Pacino", KnownForDepartment: "Acting", Popularity: 30},
				{Name: "Robert De Niro", KnownForDepartment: "Acting", Popularity: 35},
				{Name: "Dante Spinotti", KnownForDepartment: "Camera", Popularity: 90},
			},
			Crew: []tmdb.CrewMember{
				{Name: "Art Linson", Job: "Producer"},
				{Name: "Michael Mann", Job: "Director"},
			},
		},
		Keywords: &tmdb.Keywords{Keywords: []tmdb.Named{{Name: "heist"}, {Name: "los angeles"}}},
	}
}

func newFake() *fakeAPI {
	return &fakeAPI{
		search: map[string][]tmdb.SearchResult{
			"Heat": {
				{ID: 1, Title: "Heat", ReleaseDate: "1986-01-01"},
				{ID: 949, Title: "Heat", ReleaseDate: "1995-12-15"},
				{ID: 2, Title: "Heat", ReleaseDate: ""},
			},
			"Ghost Movie": {{ID: 404, Title: "Ghost Movie", ReleaseDate: "1990-01-01"}},
		},
		details:   map[int64]*tmdb.MovieDetails{949: heatDetails()},
		searchErr: map[string]error{},
	}
}

func testCatalog() []recommend.CatalogEntry {
	return []recommend.CatalogEntry{
		{ItemID: "6", TitleYear: "Heat (1995)", Genres: []string{"Action", "Crime", "Thriller"}},
		{ItemID: "7", TitleYear: "Nothing Like It (2001)"},
		{ItemID: "8", TitleYear: "Broken (1999)"},
		{ItemID: "9", TitleYear: "Ghost Movie (1990)"},
	}
}

func TestSplitTitleYear(t *testing.T) {
	tests := []struct {
		in        string
		wantTitle string
		wantYear  int
	}{
		{"Heat (1995)", "Heat", 1995},
		{"City of Lost Children, The (Cité des enfants perdus, La) (1995)", "City of Lost Children, The (Cité des enfants perdus, La)", 1995},
		{"  Untitled  ", "Untitled", 0},
		{"Year Zero (19)", "Year Zero (19)", 0},
	}
	for _, tt := range tests {
		title, year := SplitTitleYear(tt.in)
		if title != tt.wantTitle || year != tt.wantYear {
			t.Errorf("SplitTitleYear(%q) = %q, %d; want %q, %d", tt.in, title, year, tt.wantTitle, tt.wantYear)
		}
	}
}

func TestClosestYear(t *testing.T) {
	results := []tmdb.SearchResult{
		{ID: 1, ReleaseDate: "1990-05-01"},
		{ID: 2, ReleaseDate: "1996-05-01"},
		{ID: 3, ReleaseDate: "1994-05-01"},
	}
	tests := []struct {
		name   string
		year   int
		wantID int64
	}{
		{"nearest", 1995, 2},
		{"exact", 1990, 1},
		{"unknown year takes first", 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := closestYear(results, tt.year)
			if !ok || got.ID != tt.wantID {
				t.Errorf("closestYear(%d) = %d, %v; want %d", tt.year, got.ID, ok, tt.wantID)
			}
		})
	}
	if _, ok := closestYear(nil, 1995); ok {
		t.Error("empty results should not match")
	}
}

func TestEnrich(t *testing.T) {
	api := newFake()
	api.searchErr["Broken"] = fmt.Errorf("%w: boom", recommend.ErrExternalService)

	e := New(api, Options{Workers: 2, Locale: "zh-CN"}, zerolog.Nop())
	records, summary, err := e.Enrich(context.Background(), testCatalog())
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}

	want := Summary{Total: 4, Enriched: 1, NotFound: 2, Failed: 1}
	summary.Duration = 0
	if summary != want {
		t.Errorf("summary = %+v, want %+v", summary, want)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}

	rec := records[0]
	m := rec.Movie
	if m.ItemID != "6" || m.TMDBID != 949 || m.Title != "Heat" || m.Year != "1995" {
		t.Errorf("identity = %q %d %q %q", m.ItemID, m.TMDBID, m.Title, m.Year)
	}
	if m.Director != "Michael Mann" {
		t.Errorf("director = %q", m.Director)
	}
	if !reflect.DeepEqual(m.TopActors, []string{"Robert De Niro", "Al Pacino"}) {
		t.Errorf("top actors = %q", m.TopActors)
	}
	if !reflect.DeepEqual(m.Genres, []string{"Action", "Crime", "Thriller"}) {
		t.Errorf("catalog genres should be kept, got %q", m.Genres)
	}
	if m.Keywords != "heist, los angeles" || m.ProductionCompanies != "Regency, Forward Pass" {
		t.Errorf("joins = %q / %q", m.Keywords, m.ProductionCompanies)
	}
	if rec.OriginalTitle != "Heat" || rec.OriginalLanguage != "en" {
		t.Errorf("original = %q %q", rec.OriginalTitle, rec.OriginalLanguage)
	}

	found := false
	for _, s := range api.searches {
		if s == "Heat|zh-CN|1995" {
			found = true
		}
	}
	if !found {
		t.Errorf("searches = %q, want Heat|zh-CN|1995", api.searches)
	}
}

func TestEnrich_InvalidKeyStops(t *testing.T) {
	api := newFake()
	api.searchErr["Heat"] = tmdb.ErrInvalidAPIKey

	e := New(api, Options{Workers: 1}, zerolog.Nop())
	_, _, err := e.Enrich(context.Background(), testCatalog())
	if !errors.Is(err, tmdb.ErrInvalidAPIKey) {
		t.Errorf("err = %v, want ErrInvalidAPIKey", err)
	}
}

func TestEnrich_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := New(newFake(), Options{}, zerolog.Nop())
	if _, _, err := e.Enrich(ctx, testCatalog()); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestWrite(t *testing.T) {
	rec := buildRecord(recommend.CatalogEntry{ItemID: "6"}, "Heat", 1995, 949, heatDetails())

	var buf bytes.Buffer
	if err := Write(&buf, []Record{*rec}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if lines[0] != strings.Join(dataset.EnrichedColumns, ",") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "6,949,Heat,Heat,1995,动作,") {
		t.Errorf("row = %q", lines[1])
	}
	if !strings.HasSuffix(lines[1], ",7.9,6000,40.5,170,en") {
		t.Errorf("row = %q", lines[1])
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "movies.dat")
	output := filepath.Join(dir, "enriched.csv")
	if err := os.WriteFile(input, []byte("6::Heat (1995)::Action|Crime\n7::Nothing Like It (2001)::Drama\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	e := New(newFake(), Options{Workers: 2}, zerolog.Nop())
	summary, err := e.Run(context.Background(), input, output)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Enriched != 1 || summary.NotFound != 1 {
		t.Errorf("summary = %+v", summary)
	}

	movies, err := dataset.LoadMovies(context.Background(), output)
	if err != nil {
		t.Fatalf("LoadMovies: %v", err)
	}
	if len(movies) != 1 {
		t.Fatalf("movies = %d, want 1", len(movies))
	}
	m := movies[0]
	if m.ItemID != "6" || m.TMDBID != 949 || m.Director != "Michael Mann" {
		t.Errorf("movie = %+v", m)
	}
	if !reflect.DeepEqual(m.Genres, []string{"Action", "Crime"}) {
		t.Errorf("genres = %q", m.Genres)
	}
	if !reflect.DeepEqual(m.TopActors, []string{"Robert De Niro", "Al Pacino"}) {
		t.Errorf("top actors = %q", m.TopActors)
	}
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "movies.dat")
	if err := os.WriteFile(input, []byte("7::Nothing Like It (2001)::Drama\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Run("invalid key", func(t *testing.T) {
		api := newFake()
		api.validateErr = tmdb.ErrInvalidAPIKey
		_, err := New(api, Options{}, zerolog.Nop()).Run(context.Background(), input, filepath.Join(dir, "out.csv"))
		if !errors.Is(err, tmdb.ErrInvalidAPIKey) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("nothing enriched", func(t *testing.T) {
		out := filepath.Join(dir, "empty.csv")
		_, err := New(newFake(), Options{}, zerolog.Nop()).Run(context.Background(), input, out)
		if err == nil {
			t.Fatal("expected error")
		}
		if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
			t.Errorf("output should not exist, stat err = %v", statErr)
		}
	})
}
