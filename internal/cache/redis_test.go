package cache

import (
	"testing"

	"github.com/actuallystonmai/streaming-catalog/internal/domain"
)

func TestKeys(t *testing.T) {
	cases := map[string]string{
		HomeKey():                              "catalog:home",
		GenreKey(domain.KindShow, 18, 2):       "catalog:genre:show:18:page:2",
		DetailsKey(domain.KindMovie, 550):      "catalog:details:movie:550",
		StreamKey(domain.KindShow, 1399, 3, 9): "catalog:stream:show:1399:s3e9",
		StreamKey(domain.KindMovie, 550, 0, 0): "catalog:stream:movie:550:s0e0",
	}
	for got, want := range cases {
		if got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
	}
}

func TestKindsDoNotCollide(t *testing.T) {
	if DetailsKey(domain.KindMovie, 7) == DetailsKey(domain.KindShow, 7) {
		t.Error("movie and show with the same id must not share a cache key")
	}
}

func TestNamespace(t *testing.T) {
	cases := map[string]string{
		HomeKey():                            "home",
		DetailsKey(domain.KindMovie, 1):      "details",
		StreamKey(domain.KindMovie, 1, 0, 0): "stream",
	}
	for key, want := range cases {
		if got := namespace(key); got != want {
			t.Errorf("namespace(%s): expected %s, got %s", key, want, got)
		}
	}
}
