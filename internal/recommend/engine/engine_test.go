// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package engine

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/recommend"
)

func nf(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}

func fptr(v float64) *float64 {
	return &v
}

func testMovies() []recommend.Movie {
	return []recommend.Movie{
		{
			ItemID: "1", TMDBID: 949, Title: "Heat", Year: "1995",
			Genres: []string{"Action", "Crime", "Thriller"}, Director: "Michael Mann",
			TopActors: []string{"Al Pacino", "Robert De Niro"},
			Keywords:  "heist, los angeles",
			Overview:  "Professional bank robbers plan one final score",
			VoteAverage: nf(7.9), VoteCount: nf(6000), Popularity: nf(30), Runtime: nf(170),
		},
		{
			ItemID: "2", TMDBID: 1538, Title: "Collateral", Year: "2004",
			Genres: []string{"Action", "Crime", "Thriller"}, Director: "Michael Mann",
			TopActors: []string{"Tom Cruise", "Jamie Foxx"},
			Keywords:  "hitman, los angeles",
			Overview:  "Cab driver forced to chauffeur contract killer",
			VoteAverage: nf(7.5), VoteCount: nf(5000), Popularity: nf(25), Runtime: nf(120),
		},
		{
			ItemID: "3", TMDBID: 8195, Title: "Ronin", Year: "1998",
			Genres: []string{"Action", "Crime", "Thriller"}, Director: "John Frankenheimer",
			TopActors: []string{"Robert De Niro", "Jean Reno"},
			Keywords:  "heist, paris",
			Overview:  "Mercenaries hunt mysterious briefcase across France",
			VoteAverage: nf(7.2), VoteCount: nf(800), Popularity: nf(15), Runtime: nf(122),
		},
		{
			ItemID: "4", TMDBID: 862, Title: "Toy Story", Year: "1995",
			Genres: []string{"Animation", "Comedy", "Family"}, Director: "John Lasseter",
			TopActors: []string{"Tom Hanks", "Tim Allen"},
			Keywords:  "toy, friendship",
			Overview:  "Cowboy doll feels threatened by spaceman figure",
			VoteAverage: nf(8.0), VoteCount: nf(15000), Popularity: nf(80), Runtime: nf(81),
		},
		{
			ItemID: "5", TMDBID: 863, Title: "Toy Story 2", Year: "1999",
			Genres: []string{"Animation", "Comedy", "Family"}, Director: "John Lasseter",
			TopActors: []string{"Tom Hanks", "Tim Allen"},
			Keywords:  "toy, sequel",
			Overview:  "Collector steals cowboy doll and rescue mission begins",
			VoteAverage: nf(7.6), VoteCount: nf(9000), Popularity: nf(60), Runtime: nf(92),
		},
		{
			ItemID: "6", TMDBID: 9008, Title: "The Insider", Year: "1999",
			Genres: []string{"Drama", "Thriller"}, Director: "Michael Mann",
			TopActors: []string{"Al Pacino", "Russell Crowe"},
			Keywords:  "tobacco, journalism",
			Overview:  "Industry whistleblower confronts network television",
			VoteAverage: nf(7.8), VoteCount: nf(1200), Popularity: nf(12), Runtime: nf(157),
		},
	}
}

// testCatalog uses a different id for Ronin so that its neighbors must be
// mapped onto the movie table by title.
func testCatalog() []recommend.CatalogEntry {
	return []recommend.CatalogEntry{
		{ItemID: "1", TitleYear: "Heat (1995)"},
		{ItemID: "2", TitleYear: "Collateral (2004)"},
		{ItemID: "30", TitleYear: "Ronin (1998)"},
		{ItemID: "4", TitleYear: "Toy Story (1995)"},
		{ItemID: "5", TitleYear: "Toy Story 2 (1999)"},
		{ItemID: "6", TitleYear: "Insider, The (1999)"},
		{ItemID: "9", TitleYear: "Obscure Film (1990)"},
	}
}

func testRatings() []recommend.Rating {
	r := func(user, item string, v float64) recommend.Rating {
		return recommend.Rating{UserID: user, ItemID: item, Value: v}
	}
	return []recommend.Rating{
		r("u1", "1", 5), r("u1", "2", 4), r("u1", "30", 4), r("u1", "6", 4), r("u1", "9", 3),
		r("u2", "1", 4), r("u2", "2", 5), r("u2", "30", 3),
		r("u3", "1", 5), r("u3", "30", 4), r("u3", "6", 5),
		r("u4", "4", 5), r("u4", "5", 4),
		r("u5", "4", 4), r("u5", "5", 5), r("u5", "1", 1),
		r("u6", "5", 3), r("u6", "6", 2),
	}
}

func testInput() Input {
	return Input{Movies: testMovies(), Ratings: testRatings(), Catalog: testCatalog()}
}

func testConfig() *recommend.Config {
	cfg := recommend.DefaultConfig()
	cfg.MinRatingCount = 2
	return cfg
}

func staticSource() Source {
	return SourceFunc(func(context.Context) (Input, error) {
		return testInput(), nil
	})
}

func newTestEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	e, err := New(testConfig(), staticSource(), Deps{}, opts, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

func buildTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := newTestEngine(t, Options{ResultCacheSize: 16})
	if _, err := e.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	return e
}

func titlesOf(items []recommend.ContentRecommendation) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}

func TestBuild_Info(t *testing.T) {
	snap, err := Build(context.Background(), testInput(), testConfig(), Deps{}, 7, zerolog.Nop())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	info := snap.Info()
	if info.Version != 7 || info.Movies != 6 || info.Ratings != 18 {
		t.Errorf("Info() = %+v", info)
	}
	if info.MatrixItems != 6 {
		t.Errorf("MatrixItems = %d, want 6 (item 9 below min count)", info.MatrixItems)
	}
	if info.MatrixUsers != 6 || info.CatalogTitles != 7 {
		t.Errorf("Info() = %+v", info)
	}
}

func TestBuild_Errors(t *testing.T) {
	_, err := Build(context.Background(), Input{}, testConfig(), Deps{}, 1, zerolog.Nop())
	if !errors.Is(err, recommend.ErrConfiguration) {
		t.Errorf("Build(empty) error = %v, want ErrConfiguration", err)
	}

	bad := testConfig()
	bad.TextWeights[0].Weight = 0.9
	_, err = Build(context.Background(), testInput(), bad, Deps{}, 1, zerolog.Nop())
	if !errors.Is(err, recommend.ErrConfiguration) {
		t.Errorf("Build(bad weights) error = %v, want ErrConfiguration", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Build(ctx, testInput(), testConfig(), Deps{}, 1, zerolog.Nop()); err == nil {
		t.Error("Build(cancelled) error = nil")
	}
}

func TestEngine_NotReady(t *testing.T) {
	e := newTestEngine(t, Options{})
	if e.Ready() {
		t.Error("Ready() = true before first build")
	}
	_, err := e.Content(context.Background(), ContentQuery{Query: "Heat"})
	if !errors.Is(err, recommend.ErrUntrainedModel) {
		t.Errorf("Content() error = %v, want ErrUntrainedModel", err)
	}
	if _, _, err := e.MovieDetails("1"); !errors.Is(err, recommend.ErrUntrainedModel) {
		t.Errorf("MovieDetails() error = %v, want ErrUntrainedModel", err)
	}
}

func TestEngine_Content(t *testing.T) {
	e := buildTestEngine(t)
	ctx := context.Background()

	got, err := e.Content(ctx, ContentQuery{Query: "Heat", N: 10})
	if err != nil {
		t.Fatalf("Content() error = %v", err)
	}
	if !got.Resolution.Found() || got.Resolution.Title != "Heat" {
		t.Fatalf("Resolution = %+v", got.Resolution)
	}
	if len(got.Items) != 5 {
		t.Fatalf("len(Items) = %d, want every other movie", len(got.Items))
	}
	for i, it := range got.Items {
		if it.Title == "Heat" {
			t.Error("query movie returned as its own recommendation")
		}
		if i > 0 && got.Items[i-1].SimilarityScore < it.SimilarityScore {
			t.Errorf("not sorted at %d: %v", i, titlesOf(got.Items))
		}
		if it.SimilarityScore < 0 || it.SimilarityScore > 1+1e-9 {
			t.Errorf("%s score %v outside [0, 1]", it.Title, it.SimilarityScore)
		}
	}
	tail := map[string]bool{got.Items[3].Title: true, got.Items[4].Title: true}
	if !tail["Toy Story"] || !tail["Toy Story 2"] {
		t.Errorf("order = %v, want the animated films last", titlesOf(got.Items))
	}
}

func TestEngine_ContentDefaultsAndCap(t *testing.T) {
	e := buildTestEngine(t)

	got, err := e.Content(context.Background(), ContentQuery{Query: "Toy Story", N: 2})
	if err != nil {
		t.Fatalf("Content() error = %v", err)
	}
	if len(got.Items) != 2 || got.Items[0].Title != "Toy Story 2" {
		t.Errorf("Content(n=2) = %v, want Toy Story 2 first", titlesOf(got.Items))
	}

	got, _ = e.Content(context.Background(), ContentQuery{Query: "Collateral"})
	if len(got.Items) != recommend.DefaultConfig().DefaultN {
		t.Errorf("Content(n=0) returned %d items, want default", len(got.Items))
	}
}

func TestEngine_ContentFilter(t *testing.T) {
	e := buildTestEngine(t)

	got, err := e.Content(context.Background(), ContentQuery{
		Query:  "Heat",
		N:      10,
		Filter: recommend.Filter{MinVotes: fptr(1000)},
	})
	if err != nil {
		t.Fatalf("Content() error = %v", err)
	}
	if len(got.Items) != 4 {
		t.Errorf("len(Items) = %d, want 4 (Ronin has too few votes)", len(got.Items))
	}
	for _, it := range got.Items {
		if it.VoteCount < 1000 {
			t.Errorf("%s has %v votes, below filter", it.Title, it.VoteCount)
		}
	}

	got, _ = e.Content(context.Background(), ContentQuery{
		Query:  "Heat",
		N:      10,
		Filter: recommend.Filter{MinRating: fptr(9.5)},
	})
	if len(got.Items) != 0 {
		t.Errorf("Content(min_rating=9.5) = %v, want empty", titlesOf(got.Items))
	}
}

func TestEngine_ContentUnresolved(t *testing.T) {
	e := buildTestEngine(t)

	got, err := e.Content(context.Background(), ContentQuery{Query: "qqqqqqqqqq"})
	if err != nil {
		t.Fatalf("Content() error = %v", err)
	}
	if got.Resolution.Found() || len(got.Items) != 0 {
		t.Errorf("Content(unknown) = %+v, want empty not-found result", got)
	}
}

func TestEngine_CollaborativeByID(t *testing.T) {
	e := buildTestEngine(t)
	ctx := context.Background()

	got, err := e.Collaborative(ctx, CollaborativeQuery{ItemID: "1", N: 3})
	if err != nil {
		t.Fatalf("Collaborative() error = %v", err)
	}
	ids := make([]string, len(got.Items))
	for i, it := range got.Items {
		ids[i] = it.ItemID
	}
	if len(ids) != 3 || ids[0] != "30" || ids[1] != "6" || ids[2] != "2" {
		t.Fatalf("neighbors = %v, want [30 6 2]", ids)
	}

	want := 52 / math.Sqrt(67*41)
	if math.Abs(got.Items[0].Similarity-want) > 1e-9 {
		t.Errorf("similarity = %v, want %v", got.Items[0].Similarity, want)
	}
	if got.Items[0].Title != "Ronin (1998)" || got.Items[0].RatingCount != 3 {
		t.Errorf("Items[0] = %+v", got.Items[0])
	}
	if math.Abs(got.Items[0].MeanRating-11.0/3.0) > 1e-12 {
		t.Errorf("MeanRating = %v, want 11/3", got.Items[0].MeanRating)
	}
}

func TestEngine_CollaborativeMinRating(t *testing.T) {
	e := buildTestEngine(t)

	got, err := e.Collaborative(context.Background(), CollaborativeQuery{ItemID: "1", N: 5, MinMeanRating: fptr(4)})
	if err != nil {
		t.Fatalf("Collaborative() error = %v", err)
	}
	if len(got.Items) != 3 {
		t.Fatalf("len(Items) = %d, want 3", len(got.Items))
	}
	for i, it := range got.Items {
		if it.MeanRating < 4 {
			t.Errorf("%s mean %v below filter", it.ItemID, it.MeanRating)
		}
		if i > 0 && got.Items[i-1].Similarity < it.Similarity {
			t.Errorf("not sorted by similarity at %d", i)
		}
	}
	if got.Items[0].ItemID != "2" {
		t.Errorf("Items[0] = %s, want 2", got.Items[0].ItemID)
	}
}

func TestEngine_CollaborativeEdgeCases(t *testing.T) {
	e := buildTestEngine(t)
	ctx := context.Background()

	got, err := e.Collaborative(ctx, CollaborativeQuery{ItemID: "9"})
	if err != nil {
		t.Fatalf("Collaborative(below min count) error = %v", err)
	}
	if len(got.Items) != 0 || got.ItemID != "9" || !got.Known {
		t.Errorf("Collaborative(9) = %+v, want known item with empty list", got)
	}

	unknown, err := e.Collaborative(ctx, CollaborativeQuery{ItemID: "404"})
	if err != nil {
		t.Fatalf("Collaborative(never rated) error = %v", err)
	}
	if unknown.Known || unknown.ItemID != "" || unknown.Items == nil || len(unknown.Items) != 0 {
		t.Errorf("Collaborative(404) = %+v, want unknown item with empty list", unknown)
	}

	byTitle, err := e.Collaborative(ctx, CollaborativeQuery{Title: "heat"})
	if err != nil {
		t.Fatalf("Collaborative(title) error = %v", err)
	}
	if byTitle.Match == nil || byTitle.ItemID != "1" || !byTitle.Known || len(byTitle.Items) == 0 {
		t.Errorf("Collaborative(title) = %+v", byTitle)
	}

	none, err := e.Collaborative(ctx, CollaborativeQuery{Title: "qqqqqqqq"})
	if err != nil || none.Match != nil || none.Known || len(none.Items) != 0 {
		t.Errorf("Collaborative(no match) = %+v, %v", none, err)
	}
}

func TestEngine_Hybrid(t *testing.T) {
	e := buildTestEngine(t)

	got, err := e.Hybrid(context.Background(), HybridQuery{
		Query:  "Heat",
		N:      3,
		Filter: &recommend.Filter{},
	})
	if err != nil {
		t.Fatalf("Hybrid() error = %v", err)
	}
	if got.ContentWeight != 0.3 {
		t.Errorf("ContentWeight = %v, want engine default 0.3", got.ContentWeight)
	}
	if got.CFMatch == nil || got.CFMatch.ItemID != "1" {
		t.Fatalf("CFMatch = %+v", got.CFMatch)
	}
	if len(got.Items) != 3 {
		t.Fatalf("len(Items) = %d, want 3", len(got.Items))
	}

	wantCF := map[string]float64{
		"Ronin":       52 / math.Sqrt(67*41),
		"The Insider": 45 / math.Sqrt(67*45),
		"Collateral":  40 / math.Sqrt(67*41),
	}
	for i, it := range got.Items {
		want, ok := wantCF[it.Title]
		if !ok {
			t.Errorf("unexpected item %q in top 3", it.Title)
			continue
		}
		if math.Abs(it.CFScore-want) > 1e-9 {
			t.Errorf("%s CFScore = %v, want %v", it.Title, it.CFScore, want)
		}
		if math.Abs(it.CombinedScore-(0.3*it.ContentScore+0.7*it.CFScore)) > 1e-12 {
			t.Errorf("%s combined score mismatch", it.Title)
		}
		if i > 0 && got.Items[i-1].CombinedScore < it.CombinedScore {
			t.Errorf("not sorted at %d", i)
		}
	}
}

func TestEngine_HybridCollaborativeOnlyDetails(t *testing.T) {
	e := buildTestEngine(t)

	// No movie reaches the vote threshold, so every item comes from the
	// collaborative side alone.
	got, err := e.Hybrid(context.Background(), HybridQuery{
		Query:  "Heat",
		N:      5,
		Filter: &recommend.Filter{MinVotes: fptr(1e9)},
	})
	if err != nil {
		t.Fatalf("Hybrid() error = %v", err)
	}
	if len(got.Items) < 3 {
		t.Fatalf("len(Items) = %d, want at least 3", len(got.Items))
	}

	type details struct {
		itemID   string
		tmdbID   int64
		year     string
		director string
	}
	want := map[string]details{
		"Collateral":  {"2", 1538, "2004", "Michael Mann"},
		"Ronin":       {"3", 8195, "1998", "John Frankenheimer"},
		"Toy Story":   {"4", 862, "1995", "John Lasseter"},
		"Toy Story 2": {"5", 863, "1999", "John Lasseter"},
		"The Insider": {"6", 9008, "1999", "Michael Mann"},
	}
	seen := make(map[string]bool)
	for _, it := range got.Items {
		w, ok := want[it.Title]
		if !ok {
			t.Errorf("unexpected item %+v", it)
			continue
		}
		if seen[it.ItemID] {
			t.Errorf("item id %s returned twice", it.ItemID)
		}
		seen[it.ItemID] = true
		if it.ItemID != w.itemID || it.TMDBID != w.tmdbID || it.Year != w.year || it.Director != w.director {
			t.Errorf("%s = item %s tmdb %d year %s director %q, want %+v",
				it.Title, it.ItemID, it.TMDBID, it.Year, it.Director, w)
		}
		if it.ContentScore != 0 || it.CFScore <= 0 {
			t.Errorf("%s scores = content %v cf %v, want cf only", it.Title, it.ContentScore, it.CFScore)
		}
	}
	if !seen["3"] {
		t.Errorf("Ronin missing from %+v", got.Items)
	}
}

func TestEngine_HybridWeightExtremes(t *testing.T) {
	e := buildTestEngine(t)
	ctx := context.Background()
	noFilter := &recommend.Filter{}

	content, err := e.Content(ctx, ContentQuery{Query: "Heat", N: 3})
	if err != nil {
		t.Fatalf("Content() error = %v", err)
	}
	hybrid, err := e.Hybrid(ctx, HybridQuery{Query: "Heat", N: 3, ContentWeight: fptr(1), Filter: noFilter})
	if err != nil {
		t.Fatalf("Hybrid(w=1) error = %v", err)
	}
	for i := range content.Items {
		if hybrid.Items[i].Title != content.Items[i].Title {
			t.Errorf("w=1 rank %d = %q, want content order %q", i, hybrid.Items[i].Title, content.Items[i].Title)
		}
	}

	hybrid, err = e.Hybrid(ctx, HybridQuery{Query: "Heat", N: 3, ContentWeight: fptr(0), Filter: noFilter})
	if err != nil {
		t.Fatalf("Hybrid(w=0) error = %v", err)
	}
	if hybrid.Items[0].Title != "Ronin" || hybrid.Items[0].CombinedScore != hybrid.Items[0].CFScore {
		t.Errorf("w=0 top = %+v, want Ronin scored by cf alone", hybrid.Items[0])
	}

	if _, err := e.Hybrid(ctx, HybridQuery{Query: "Heat", ContentWeight: fptr(1.5)}); !errors.Is(err, recommend.ErrInvalidWeight) {
		t.Errorf("Hybrid(w=1.5) error = %v, want ErrInvalidWeight", err)
	}
}

func TestEngine_HybridUnresolved(t *testing.T) {
	e := buildTestEngine(t)

	got, err := e.Hybrid(context.Background(), HybridQuery{Query: "qqqqqqqqqq"})
	if err != nil {
		t.Fatalf("Hybrid() error = %v", err)
	}
	if got.Resolution.Found() || got.CFMatch != nil || len(got.Items) != 0 {
		t.Errorf("Hybrid(unknown) = %+v", got)
	}
}

func TestEngine_AdjustWeights(t *testing.T) {
	e := buildTestEngine(t)

	if err := e.AdjustWeights(-0.1); !errors.Is(err, recommend.ErrInvalidWeight) {
		t.Errorf("AdjustWeights(-0.1) error = %v", err)
	}
	if e.ContentWeight() != 0.3 {
		t.Errorf("weight changed by rejected update: %v", e.ContentWeight())
	}

	if err := e.AdjustWeights(0.6); err != nil {
		t.Fatalf("AdjustWeights(0.6) error = %v", err)
	}
	if e.Config().ContentWeight != 0.6 {
		t.Errorf("Config().ContentWeight = %v", e.Config().ContentWeight)
	}
	got, err := e.Hybrid(context.Background(), HybridQuery{Query: "Heat", Filter: &recommend.Filter{}})
	if err != nil {
		t.Fatalf("Hybrid() error = %v", err)
	}
	if got.ContentWeight != 0.6 {
		t.Errorf("Hybrid ContentWeight = %v, want 0.6", got.ContentWeight)
	}
}

func TestEngine_MovieDetailsAndSearch(t *testing.T) {
	e := buildTestEngine(t)

	st, found, err := e.MovieDetails("9")
	if err != nil {
		t.Fatalf("MovieDetails() error = %v", err)
	}
	if !found || st.IncludedInModel || st.NumberOfRatings != 1 || st.AverageRating != 3 {
		t.Errorf("MovieDetails(9) = %+v, %v", st, found)
	}
	st, found, _ = e.MovieDetails("1")
	if !found || !st.IncludedInModel || st.NumberOfRatings != 4 || st.AverageRating != 3.75 {
		t.Errorf("MovieDetails(1) = %+v, %v", st, found)
	}
	st, found, err = e.MovieDetails("404")
	if err != nil || found || st != (recommend.ItemStats{}) {
		t.Errorf("MovieDetails(404) = %+v, %v, %v, want absent without error", st, found, err)
	}

	matches, err := e.SearchTitles("toy story", 0)
	if err != nil {
		t.Fatalf("SearchTitles() error = %v", err)
	}
	if len(matches) != 2 || matches[0].ItemID != "4" || matches[1].ItemID != "5" {
		t.Errorf("SearchTitles() = %+v", matches)
	}
}

func TestEngine_ResultCache(t *testing.T) {
	e := buildTestEngine(t)
	ctx := context.Background()
	q := ContentQuery{Query: "Heat", N: 3}

	first, err := e.Content(ctx, q)
	if err != nil {
		t.Fatalf("Content() error = %v", err)
	}
	if first.Cached {
		t.Error("first query served from cache")
	}
	second, _ := e.Content(ctx, q)
	if !second.Cached || second.SnapshotVersion != 1 {
		t.Errorf("second query = cached %v version %d", second.Cached, second.SnapshotVersion)
	}

	if _, err := e.Rebuild(ctx); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	third, _ := e.Content(ctx, q)
	if third.Cached || third.SnapshotVersion != 2 {
		t.Errorf("after rebuild = cached %v version %d", third.Cached, third.SnapshotVersion)
	}

	miss, _ := e.Content(ctx, ContentQuery{Query: "qqqqqqqq"})
	again, _ := e.Content(ctx, ContentQuery{Query: "qqqqqqqq"})
	if miss.Cached || again.Cached {
		t.Error("unresolved query was cached")
	}
}

func TestEngine_RebuildExclusive(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	src := SourceFunc(func(context.Context) (Input, error) {
		close(entered)
		<-release
		return testInput(), nil
	})
	e, err := New(testConfig(), src, Deps{}, Options{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := e.Rebuild(context.Background())
		done <- err
	}()

	<-entered
	if _, err := e.Rebuild(context.Background()); !errors.Is(err, ErrRebuildInProgress) {
		t.Errorf("concurrent Rebuild() error = %v, want ErrRebuildInProgress", err)
	}
	close(release)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("first Rebuild() error = %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("first Rebuild() did not finish")
	}
	if !e.Ready() {
		t.Error("Ready() = false after rebuild")
	}
}

func TestEngine_RebuildFailureKeepsSnapshot(t *testing.T) {
	var calls atomic.Int32
	src := SourceFunc(func(context.Context) (Input, error) {
		if calls.Add(1) > 1 {
			return Input{}, errors.New("disk gone")
		}
		return testInput(), nil
	})
	e, err := New(testConfig(), src, Deps{}, Options{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := e.Rebuild(context.Background()); err != nil {
		t.Fatalf("first Rebuild() error = %v", err)
	}
	if _, err := e.Rebuild(context.Background()); err == nil {
		t.Fatal("second Rebuild() error = nil")
	}

	snap, err := e.Snapshot()
	if err != nil || snap.Version() != 1 {
		t.Errorf("Snapshot() = version %v, %v; want previous snapshot", snap, err)
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(testConfig(), nil, Deps{}, Options{}, zerolog.Nop()); !errors.Is(err, recommend.ErrConfiguration) {
		t.Errorf("New(nil source) error = %v", err)
	}
	bad := testConfig()
	bad.ContentWeight = 2
	if _, err := New(bad, staticSource(), Deps{}, Options{}, zerolog.Nop()); !errors.Is(err, recommend.ErrInvalidWeight) {
		t.Errorf("New(bad weight) error = %v", err)
	}
}
