package corpus

import (
	"context"
	"math"
	"testing"
)

func TestRawCacheRoundTrip(t *testing.T) {
	cache, err := openRawCache(t.TempDir())
	if err != nil {
		t.Fatalf("openRawCache failed: %v", err)
	}
	defer cache.Close()

	tracks := []Track{
		{
			ID: "t1", Name: "Complete", Artists: "A", Album: "B", Genre: "pop",
			Popularity: 73, Explicit: true,
			Danceability: 0.7, Energy: 0.8, Valence: 0.9, Acousticness: 0.1,
			Instrumentalness: 0.0, Speechiness: 0.04, Liveness: 0.12,
			Tempo: 128, Loudness: -5.2,
			Key: 7, Mode: 1, TimeSignature: 4, DurationMS: 201000,
		},
		{
			ID: "t2", Name: "Partial", Artists: "C", Album: "D", Genre: "rock",
			Danceability: math.NaN(), Energy: 0.5, Valence: math.NaN(),
			Key: -1, Mode: 0, TimeSignature: 4, DurationMS: 180000,
		},
	}

	ctx := context.Background()
	if err := cache.Replace(ctx, "fp123", tracks, 2); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	meta, ok, err := cache.Meta(ctx)
	if err != nil {
		t.Fatalf("Meta failed: %v", err)
	}
	if !ok {
		t.Fatal("Meta should exist after Replace")
	}
	if meta.Fingerprint != "fp123" {
		t.Errorf("fingerprint = %q, want fp123", meta.Fingerprint)
	}
	if meta.TrackCount != 2 || meta.IndexCount != 2 {
		t.Errorf("counts = %d/%d, want 2/2", meta.TrackCount, meta.IndexCount)
	}

	restored, err := cache.Restore(ctx)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if len(restored) != 2 {
		t.Fatalf("restored %d rows, want 2", len(restored))
	}

	if restored[0] != tracks[0] {
		t.Errorf("complete row changed in round trip:\n got %+v\nwant %+v", restored[0], tracks[0])
	}
	if !math.IsNaN(restored[1].Danceability) || !math.IsNaN(restored[1].Valence) {
		t.Error("NaN descriptors must survive the round trip as NaN")
	}
	if restored[1].Key != -1 {
		t.Errorf("missing key sentinel = %d, want -1", restored[1].Key)
	}
}

func TestRawCacheMetaAbsentBeforeFirstWrite(t *testing.T) {
	cache, err := openRawCache(t.TempDir())
	if err != nil {
		t.Fatalf("openRawCache failed: %v", err)
	}
	defer cache.Close()

	_, ok, err := cache.Meta(context.Background())
	if err != nil {
		t.Fatalf("Meta failed: %v", err)
	}
	if ok {
		t.Error("fresh cache should have no meta row")
	}
}
