package search

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/actuallystonmai/streaming-catalog/internal/domain"
	"github.com/actuallystonmai/streaming-catalog/internal/ranking"
)

type fakeProvider struct {
	movies    []domain.Record
	shows     []domain.Record
	movieErr  error
	showErr   error
	blockShow bool

	calls     atomic.Int32
	lastQuery atomic.Value
	lastPage  atomic.Int32
}

func (f *fakeProvider) SearchMovies(ctx context.Context, query string, page int) ([]domain.Record, error) {
	f.calls.Add(1)
	f.lastQuery.Store(query)
	f.lastPage.Store(int32(page))
	if f.movieErr != nil {
		return nil, f.movieErr
	}
	return f.movies, nil
}

func (f *fakeProvider) SearchTVShows(ctx context.Context, query string, page int) ([]domain.Record, error) {
	f.calls.Add(1)
	if f.blockShow {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.showErr != nil {
		return nil, f.showErr
	}
	return f.shows, nil
}

func movie(id int64, popularity, rating float64) domain.Record {
	return domain.Record{Kind: domain.KindMovie, ID: id, Popularity: popularity, VoteAverage: rating}
}

func show(id int64, popularity, rating float64) domain.Record {
	return domain.Record{Kind: domain.KindShow, ID: id, Popularity: popularity, VoteAverage: rating}
}

func TestSearchRejectsShortQueries(t *testing.T) {
	provider := &fakeProvider{}
	agg := NewAggregator(provider, provider)

	for _, q := range []string{"", " ", "a", " a", "a  ", "\t\n", "é"} {
		for _, kind := range []domain.SearchType{domain.SearchMovies, domain.SearchShows, domain.SearchAll} {
			_, err := agg.Search(context.Background(), q, kind, 1)
			if !errors.Is(err, domain.ErrInvalidQuery) {
				t.Errorf("query %q kind %s: expected ErrInvalidQuery, got %v", q, kind, err)
			}
		}
	}

	if n := provider.calls.Load(); n != 0 {
		t.Errorf("expected no provider calls, got %d", n)
	}
}

func TestSearchAcceptsTwoCharacters(t *testing.T) {
	provider := &fakeProvider{movies: []domain.Record{movie(1, 1, 1)}}
	agg := NewAggregator(provider, provider)

	results, err := agg.Search(context.Background(), " ok ", domain.SearchMovies, 1)
	if err != nil {
		t.Fatalf("expected query to be accepted, got %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected 1 result, got %d", len(results))
	}
	if q := provider.lastQuery.Load(); q != "ok" {
		t.Errorf("expected trimmed query, got %q", q)
	}
}

func TestSearchMoviesReturnsProviderOrder(t *testing.T) {
	// Deliberately not in score order.
	provider := &fakeProvider{movies: []domain.Record{movie(3, 1, 1), movie(1, 90, 9), movie(2, 50, 5)}}
	agg := NewAggregator(provider, provider)

	results, err := agg.Search(context.Background(), "batman", domain.SearchMovies, 2)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if len(results) != len(provider.movies) {
		t.Fatalf("expected %d results, got %d", len(provider.movies), len(results))
	}
	for i := range results {
		if results[i].ID != provider.movies[i].ID {
			t.Errorf("position %d: expected id %d, got %d", i, provider.movies[i].ID, results[i].ID)
		}
	}
	if p := provider.lastPage.Load(); p != 2 {
		t.Errorf("expected page 2 forwarded, got %d", p)
	}
	if n := provider.calls.Load(); n != 1 {
		t.Errorf("expected 1 provider call, got %d", n)
	}
}

func TestSearchShowsOnlyCallsShowProvider(t *testing.T) {
	provider := &fakeProvider{
		movieErr: errors.New("should not be called"),
		shows:    []domain.Record{show(10, 1, 1)},
	}
	agg := NewAggregator(provider, provider)

	results, err := agg.Search(context.Background(), "office", domain.SearchShows, 1)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 1 || results[0].Kind != domain.KindShow {
		t.Errorf("unexpected results %+v", results)
	}
}

func TestSearchAllMergesAndRanks(t *testing.T) {
	provider := &fakeProvider{
		movies: []domain.Record{movie(1, 10, 5), movie(2, 100, 9), movie(7, 3, 3)},
		shows:  []domain.Record{show(7, 60, 7), show(8, 0, 0)},
	}
	agg := NewAggregator(provider, provider)

	results, err := agg.Search(context.Background(), "star", domain.SearchAll, 1)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if len(results) != len(provider.movies)+len(provider.shows) {
		t.Fatalf("expected %d results, got %d", len(provider.movies)+len(provider.shows), len(results))
	}
	for i := 1; i < len(results); i++ {
		if ranking.Score(results[i-1]) < ranking.Score(results[i]) {
			t.Errorf("results not sorted at %d", i)
		}
	}

	// id 7 exists as both a movie and a show; both must survive.
	seen := map[domain.RecordKey]bool{}
	for _, r := range results {
		seen[r.Key()] = true
	}
	if !seen[domain.RecordKey{Kind: domain.KindMovie, ID: 7}] || !seen[domain.RecordKey{Kind: domain.KindShow, ID: 7}] {
		t.Error("expected movie 7 and show 7 in results")
	}
}

func TestSearchAllBatmanExample(t *testing.T) {
	provider := &fakeProvider{
		movies: []domain.Record{movie(268, 50, 8.0)},
		shows:  []domain.Record{show(2098, 80, 6.0)},
	}
	agg := NewAggregator(provider, provider)

	results, err := agg.Search(context.Background(), "batman", domain.SearchAll, 1)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Kind != domain.KindShow || results[1].Kind != domain.KindMovie {
		t.Errorf("expected show then movie, got %s then %s", results[0].Kind, results[1].Kind)
	}
}

func TestSearchAllDoesNotDeduplicate(t *testing.T) {
	dup := movie(5, 10, 5)
	provider := &fakeProvider{movies: []domain.Record{dup, dup}, shows: []domain.Record{}}
	agg := NewAggregator(provider, provider)

	results, err := agg.Search(context.Background(), "dup", domain.SearchAll, 1)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected duplicates kept, got %d results", len(results))
	}
}

func TestSearchAllFailsWhenEitherProviderFails(t *testing.T) {
	upstream := errors.New("connection reset")

	cases := map[string]*fakeProvider{
		"movie fails": {movieErr: upstream, shows: []domain.Record{show(1, 1, 1)}},
		"show fails":  {showErr: upstream, movies: []domain.Record{movie(1, 1, 1)}},
		"both fail":   {movieErr: upstream, showErr: upstream},
	}

	for name, provider := range cases {
		agg := NewAggregator(provider, provider)
		results, err := agg.Search(context.Background(), "batman", domain.SearchAll, 1)
		if !errors.Is(err, domain.ErrProviderUnavailable) {
			t.Errorf("%s: expected ErrProviderUnavailable, got %v", name, err)
		}
		if results != nil {
			t.Errorf("%s: expected no partial results, got %v", name, results)
		}
	}
}

func TestSearchSingleProviderFailure(t *testing.T) {
	provider := &fakeProvider{movieErr: domain.ErrProviderUnavailable}
	agg := NewAggregator(provider, provider)

	_, err := agg.Search(context.Background(), "batman", domain.SearchMovies, 1)
	if !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Errorf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestSearchAllCancelsSlowProviderOnFailure(t *testing.T) {
	provider := &fakeProvider{movieErr: errors.New("boom"), blockShow: true}
	agg := NewAggregator(provider, provider)

	done := make(chan error, 1)
	go func() {
		_, err := agg.Search(context.Background(), "batman", domain.SearchAll, 1)
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, domain.ErrProviderUnavailable) {
			t.Errorf("expected ErrProviderUnavailable, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("search did not return after movie provider failed")
	}
}

func TestValidateQuery(t *testing.T) {
	q, err := ValidateQuery("  the office  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q != "the office" {
		t.Errorf("expected trimmed query, got %q", q)
	}
}
