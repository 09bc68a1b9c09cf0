// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/config"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

const moviesCSV = `item_id,tmdb_id,title,year,genres,overview,keywords,director,top_actors,vote_average,vote_count,popularity,runtime
1.0,949,Heat,1995.0,"['Action', 'Crime']",A heist.,heist,Michael Mann,"Al Pacino|Robert De Niro|Val Kilmer|Jon Voight|Tom Sizemore|Ashley Judd",7.9,6000,40.5,170
2,862,Toy Story,1995,Animation|Comedy,,,John Lasseter,Tom Hanks,,,,81
`

func TestParseList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"pipe", "Action|Crime", []string{"Action", "Crime"}},
		{"comma", "Action, Crime", []string{"Action", "Crime"}},
		{"literal", "['Action', \"Crime\"]", []string{"Action", "Crime"}},
		{"empty literal", "[]", []string{}},
		{"blank", "  ", nil},
		{"drops empties", "a||b|", []string{"a", "b"}},
		{"single", "Drama", []string{"Drama"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseList(tt.raw)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseList(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestWholeNumber(t *testing.T) {
	tests := map[string]string{
		"1995.0": "1995",
		"1995":   "1995",
		"7.5":    "7.5",
		"abc.0":  "abc.0",
		"":       "",
	}
	for in, want := range tests {
		if got := wholeNumber(in); got != want {
			t.Errorf("wholeNumber(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadMovies(t *testing.T) {
	path := writeFile(t, "movies.csv", moviesCSV)

	movies, err := LoadMovies(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadMovies: %v", err)
	}
	if len(movies) != 2 {
		t.Fatalf("len = %d, want 2", len(movies))
	}

	heat := movies[0]
	if heat.ItemID != "1" || heat.Year != "1995" || heat.TMDBID != 949 {
		t.Errorf("heat ids = %q %q %d", heat.ItemID, heat.Year, heat.TMDBID)
	}
	if !reflect.DeepEqual(heat.Genres, []string{"Action", "Crime"}) {
		t.Errorf("genres = %q", heat.Genres)
	}
	if len(heat.TopActors) != recommend.MaxTopActors {
		t.Errorf("top actors = %d, want %d", len(heat.TopActors), recommend.MaxTopActors)
	}
	if !heat.VoteCount.Valid || heat.VoteCount.Float64 != 6000 {
		t.Errorf("vote count = %+v", heat.VoteCount)
	}

	toy := movies[1]
	if toy.VoteAverage.Valid || toy.Popularity.Valid {
		t.Errorf("missing numerics should be invalid: %+v %+v", toy.VoteAverage, toy.Popularity)
	}
	if !toy.Runtime.Valid || toy.Runtime.Float64 != 81 {
		t.Errorf("runtime = %+v", toy.Runtime)
	}
}

func TestLoadMovies_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing title column", "item_id,year\n1,1995\n"},
		{"missing id column", "title,year\nHeat,1995\n"},
		{"empty id", "item_id,title\n,Heat\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "movies.csv", tt.content)
			_, err := LoadMovies(context.Background(), path)
			if !errors.Is(err, recommend.ErrConfiguration) {
				t.Errorf("err = %v, want ErrConfiguration", err)
			}
		})
	}

	if _, err := LoadMovies(context.Background(), filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadMovies_FeatureColumns(t *testing.T) {
	bare := writeFile(t, "bare.csv", "item_id,title\n1,Heat\n2,Toy Story\n")
	full := writeFile(t, "movies.csv", moviesCSV)

	tests := []struct {
		name    string
		path    string
		columns []string
		wantErr bool
	}{
		{"bare table without features", bare, nil, false},
		{"bare table with default features", bare, recommend.DefaultConfig().FeatureColumns(), true},
		{"missing numeric column", bare, []string{recommend.FeatureRuntime}, true},
		{"declared columns present", full, []string{recommend.FeatureGenres, recommend.FeatureDirector, recommend.FeatureRuntime}, false},
		{"one declared column absent", full, []string{recommend.FeatureGenres, recommend.FeatureProductionCompanies}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			movies, err := LoadMovies(context.Background(), tt.path, tt.columns...)
			if tt.wantErr {
				if !errors.Is(err, recommend.ErrConfiguration) {
					t.Errorf("err = %v (movies=%d), want ErrConfiguration", err, len(movies))
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadMovies: %v", err)
			}
			if len(movies) != 2 {
				t.Errorf("len = %d, want 2", len(movies))
			}
		})
	}
}

func TestLoadCatalogDat_Latin1(t *testing.T) {
	path := writeFile(t, "movies.dat", "1::Am\xe9lie (2001)::Comedy|Romance\r\n\n2::Heat (1995)::Action\n")

	catalog, err := LoadCatalogDat(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadCatalogDat: %v", err)
	}
	want := []recommend.CatalogEntry{
		{ItemID: "1", TitleYear: "Amélie (2001)", Genres: []string{"Comedy", "Romance"}},
		{ItemID: "2", TitleYear: "Heat (1995)", Genres: []string{"Action"}},
	}
	if !reflect.DeepEqual(catalog, want) {
		t.Errorf("catalog = %+v, want %+v", catalog, want)
	}
}

func TestLoadRatingsDat(t *testing.T) {
	path := writeFile(t, "ratings.dat", "1::1193::5::978300760\n1::661::3::978302109\n")

	got, err := LoadRatingsDat(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadRatingsDat: %v", err)
	}
	want := []recommend.Rating{
		{UserID: "1", ItemID: "1193", Value: 5, Timestamp: 978300760},
		{UserID: "1", ItemID: "661", Value: 3, Timestamp: 978302109},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ratings = %+v, want %+v", got, want)
	}
}

func TestLoadRatingsDat_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"too few fields", "1::1193::5\n"},
		{"bad rating", "1::1193::five::0\n"},
		{"bad timestamp", "1::1193::5::yesterday\n"},
		{"missing user", "::1193::5::0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "ratings.dat", tt.content)
			if _, err := LoadRatingsDat(context.Background(), path); !errors.Is(err, recommend.ErrConfiguration) {
				t.Errorf("err = %v, want ErrConfiguration", err)
			}
		})
	}
}

func TestLoadRatingsCSV(t *testing.T) {
	path := writeFile(t, "ratings.csv", "userId,movieId,rating\n7,1,4.5\n7,2.0,3\n")

	got, err := LoadRatingsCSV(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadRatingsCSV: %v", err)
	}
	want := []recommend.Rating{
		{UserID: "7", ItemID: "1", Value: 4.5},
		{UserID: "7", ItemID: "2", Value: 3},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ratings = %+v, want %+v", got, want)
	}

	bad := writeFile(t, "bad.csv", "user_id,item_id\n1,2\n")
	if _, err := LoadRatingsCSV(context.Background(), bad); !errors.Is(err, recommend.ErrConfiguration) {
		t.Errorf("missing rating column: err = %v", err)
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path, format, want string
		wantErr            bool
	}{
		{"r.dat", FormatAuto, FormatDat, false},
		{"r.CSV", "", FormatCSV, false},
		{"r.txt", FormatCSV, FormatCSV, false},
		{"r.txt", FormatAuto, "", true},
		{"r.dat", "parquet", "", true},
	}
	for _, tt := range tests {
		got, err := DetectFormat(tt.path, tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("DetectFormat(%q, %q) err = %v", tt.path, tt.format, err)
			continue
		}
		if got != tt.want {
			t.Errorf("DetectFormat(%q, %q) = %q, want %q", tt.path, tt.format, got, tt.want)
		}
	}
}

func TestLoadCatalog_CSV(t *testing.T) {
	path := writeFile(t, "catalog.csv", "movie_id,title_year,genres\n1,Heat (1995),Action|Crime\n")

	got, err := LoadCatalog(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if len(got) != 1 || got[0].TitleYear != "Heat (1995)" || len(got[0].Genres) != 2 {
		t.Errorf("catalog = %+v", got)
	}
}

func TestCatalogFromMovies(t *testing.T) {
	got := CatalogFromMovies([]recommend.Movie{
		{ItemID: "1", Title: "Heat", Year: "1995"},
		{ItemID: "2", Title: "Untitled"},
	})
	if got[0].TitleYear != "Heat (1995)" || got[1].TitleYear != "Untitled" {
		t.Errorf("catalog = %+v", got)
	}
}

func TestSource_Load(t *testing.T) {
	movies := writeFile(t, "movies.csv", moviesCSV)
	ratings := writeFile(t, "ratings.dat", "1::1::5::0\n2::2::4::0\n")

	t.Run("derived catalog", func(t *testing.T) {
		src := NewSource(config.DatasetConfig{
			MoviesPath: movies, RatingsPath: ratings, RatingsFormat: FormatAuto,
		}, nil, zerolog.Nop())
		in, err := src.Load(context.Background())
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(in.Movies) != 2 || len(in.Ratings) != 2 || len(in.Catalog) != 2 {
			t.Fatalf("sizes = %d %d %d", len(in.Movies), len(in.Ratings), len(in.Catalog))
		}
		if in.Catalog[0].TitleYear != "Heat (1995)" {
			t.Errorf("catalog[0] = %+v", in.Catalog[0])
		}
	})

	t.Run("explicit catalog", func(t *testing.T) {
		catalog := writeFile(t, "movies.dat", "1::Heat (1995)::Action\n")
		src := NewSource(config.DatasetConfig{
			MoviesPath: movies, RatingsPath: ratings, CatalogPath: catalog,
		}, nil, zerolog.Nop())
		in, err := src.Load(context.Background())
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(in.Catalog) != 1 {
			t.Errorf("catalog = %+v", in.Catalog)
		}
	})

	t.Run("declared feature column absent", func(t *testing.T) {
		src := NewSource(config.DatasetConfig{
			MoviesPath: movies, RatingsPath: ratings,
		}, recommend.DefaultConfig().FeatureColumns(), zerolog.Nop())
		if _, err := src.Load(context.Background()); !errors.Is(err, recommend.ErrConfiguration) {
			t.Errorf("err = %v, want ErrConfiguration", err)
		}
	})

	t.Run("missing paths", func(t *testing.T) {
		src := NewSource(config.DatasetConfig{MoviesPath: movies}, nil, zerolog.Nop())
		if _, err := src.Load(context.Background()); !errors.Is(err, recommend.ErrConfiguration) {
			t.Errorf("err = %v, want ErrConfiguration", err)
		}
	})

	t.Run("ratings failure", func(t *testing.T) {
		src := NewSource(config.DatasetConfig{
			MoviesPath: movies, RatingsPath: filepath.Join(t.TempDir(), "gone.dat"),
		}, nil, zerolog.Nop())
		if _, err := src.Load(context.Background()); err == nil {
			t.Error("expected error")
		}
	})
}
