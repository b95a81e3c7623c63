package diskcache_test

import (
	"path/filepath"
	"testing"

	"github.com/calvinalkan/diskcache/pkg/diskcache"
)

func Test_RecordPath_Shards_By_First_Two_Digest_Byte_Pairs(t *testing.T) {
	t.Parallel()

	// md5("42") = a1d0c6e83f027327d8461063f4ac58a6
	got := diskcache.RecordPath("/cache", diskcache.Key{Segment: "users", ID: "42"})
	want := filepath.Join("/cache", "users", "a1", "d0", "a1d0c6e83f027327d8461063f4ac58a6.record")

	if got != want {
		t.Fatalf("RecordPath=%q, want=%q", got, want)
	}
}

func Test_RecordPath_Resolves_Empty_ID_To_Usable_Path(t *testing.T) {
	t.Parallel()

	// md5("") = d41d8cd98f00b204e9800998ecf8427e
	got := diskcache.RecordPath("/cache", diskcache.Key{Segment: "s", ID: ""})
	want := filepath.Join("/cache", "s", "d4", "1d", "d41d8cd98f00b204e9800998ecf8427e.record")

	if got != want {
		t.Fatalf("RecordPath=%q, want=%q", got, want)
	}

	if !diskcache.IsRecordName(filepath.Base(got)) {
		t.Fatalf("IsRecordName(%q)=false", filepath.Base(got))
	}
}

func Test_RecordPath_Is_Deterministic(t *testing.T) {
	t.Parallel()

	key := diskcache.Key{Segment: "seg", ID: "some id"}

	first := diskcache.RecordPath("/root", key)
	for range 10 {
		if got := diskcache.RecordPath("/root", key); got != first {
			t.Fatalf("RecordPath=%q, want=%q", got, first)
		}
	}
}

func Test_IsRecordName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want bool
	}{
		{name: "a1d0c6e83f027327d8461063f4ac58a6.record", want: true},
		{name: "00000000000000000000000000000000.record", want: true},
		{name: "A1D0C6E83F027327D8461063F4AC58A6.record", want: false},
		{name: "a1d0c6e83f027327d8461063f4ac58a.record", want: false},
		{name: "a1d0c6e83f027327d8461063f4ac58a6a.record", want: false},
		{name: "g1d0c6e83f027327d8461063f4ac58a6.record", want: false},
		{name: "a1d0c6e83f027327d8461063f4ac58a6.json", want: false},
		{name: "a1d0c6e83f027327d8461063f4ac58a6.record123456", want: false},
		{name: ".diskcache.lock", want: false},
		{name: "notes.txt", want: false},
		{name: "", want: false},
	}

	for _, tt := range tests {
		if got := diskcache.IsRecordName(tt.name); got != tt.want {
			t.Errorf("IsRecordName(%q)=%v, want=%v", tt.name, got, tt.want)
		}
	}
}

func Test_RecordPath_Joins_Segment_As_Is_When_It_Has_Separators(t *testing.T) {
	t.Parallel()

	const digest = "a1d0c6e83f027327d8461063f4ac58a6"

	tests := []struct {
		segment string
		want    string
	}{
		{segment: "a/b", want: filepath.Join("/cache", "a", "b", "a1", "d0", digest+".record")},
		{segment: "../x", want: filepath.Join("/x", "a1", "d0", digest+".record")},
	}

	for _, tt := range tests {
		if err := diskcache.ValidateSegmentName(tt.segment); err != nil {
			t.Fatalf("ValidateSegmentName(%q)=%v, want nil", tt.segment, err)
		}

		got := diskcache.RecordPath("/cache", diskcache.Key{Segment: tt.segment, ID: "42"})
		if got != tt.want {
			t.Errorf("RecordPath(%q)=%q, want=%q", tt.segment, got, tt.want)
		}
	}
}
