package diskcache

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func Test_EncodeEnvelope_Roundtrips_Through_DecodeEnvelope(t *testing.T) {
	t.Parallel()

	key := Key{Segment: "users", ID: "42"}
	item := map[string]any{"name": "ada", "tags": []any{"a", "b"}}

	data, err := encodeEnvelope(key, item, 1_700_000_000_000, 60_000)
	if err != nil {
		t.Fatalf("encodeEnvelope: %v", err)
	}

	env, err := decodeEnvelope(data)
	if err != nil {
		t.Fatalf("decodeEnvelope: %v", err)
	}

	want := envelope{
		Key:    key,
		Item:   json.RawMessage(`{"name":"ada","tags":["a","b"]}`),
		Stored: 1_700_000_000_000,
		TTL:    60_000,
	}

	if diff := cmp.Diff(want, env); diff != "" {
		t.Fatalf("envelope mismatch (-want +got):\n%s", diff)
	}
}

func Test_EncodeEnvelope_Returns_ErrSerialization_When_Item_Is_Not_Encodable(t *testing.T) {
	t.Parallel()

	cyclic := map[string]any{}
	cyclic["self"] = cyclic

	tests := []struct {
		name string
		item any
	}{
		{name: "channel", item: make(chan int)},
		{name: "func", item: func() {}},
		{name: "cycle", item: cyclic},
		{name: "nan", item: math.NaN()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data, err := encodeEnvelope(Key{Segment: "s", ID: "x"}, tt.item, 0, 1)
			if !errors.Is(err, ErrSerialization) {
				t.Fatalf("err=%v, want %v", err, ErrSerialization)
			}

			if data != nil {
				t.Fatalf("data=%q, want nil", data)
			}
		})
	}
}

func Test_DecodeEnvelope_Reports_Unparseable_When_Bytes_Are_Not_JSON(t *testing.T) {
	t.Parallel()

	for _, data := range []string{"", "garbage", `{"key":`, "\x00\x01\x02", `{"key":{}} trailing`} {
		_, err := decodeEnvelope([]byte(data))

		if !errors.Is(err, ErrCorrupt) {
			t.Fatalf("decode(%q) err=%v, want %v", data, err, ErrCorrupt)
		}

		if !errors.Is(err, errUnparseable) {
			t.Fatalf("decode(%q) err=%v, want %v", data, err, errUnparseable)
		}
	}
}

func Test_DecodeEnvelope_Reports_Schema_Mismatch_When_JSON_Has_Wrong_Shape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{name: "array", data: `[1,2,3]`},
		{name: "null", data: `null`},
		{name: "empty object", data: `{}`},
		{name: "missing segment", data: `{"key":{"id":"x"},"item":1,"stored":1,"ttl":1}`},
		{name: "missing id", data: `{"key":{"segment":"s"},"item":1,"stored":1,"ttl":1}`},
		{name: "missing item", data: `{"key":{"segment":"s","id":"x"},"stored":1,"ttl":1}`},
		{name: "missing stored", data: `{"key":{"segment":"s","id":"x"},"item":1,"ttl":1}`},
		{name: "missing ttl", data: `{"key":{"segment":"s","id":"x"},"item":1,"stored":1}`},
		{name: "fractional ttl", data: `{"key":{"segment":"s","id":"x"},"item":1,"stored":1,"ttl":1.5}`},
		{name: "string stored", data: `{"key":{"segment":"s","id":"x"},"item":1,"stored":"1","ttl":1}`},
		{name: "numeric id", data: `{"key":{"segment":"s","id":7},"item":1,"stored":1,"ttl":1}`},
		{name: "negative stored", data: `{"key":{"segment":"s","id":"x"},"item":1,"stored":-1,"ttl":0}`},
		{name: "negative stored huge ttl", data: `{"key":{"segment":"s","id":"x"},"item":1,"stored":-1,"ttl":9223372036854775807}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := decodeEnvelope([]byte(tt.data))

			if !errors.Is(err, ErrCorrupt) {
				t.Fatalf("err=%v, want %v", err, ErrCorrupt)
			}

			if !errors.Is(err, errSchema) {
				t.Fatalf("err=%v, want %v", err, errSchema)
			}
		})
	}
}

func Test_DecodeEnvelope_Accepts_Null_Item(t *testing.T) {
	t.Parallel()

	env, err := decodeEnvelope([]byte(`{"key":{"segment":"s","id":""},"item":null,"stored":5,"ttl":10}`))
	if err != nil {
		t.Fatalf("decodeEnvelope: %v", err)
	}

	if got, want := string(env.Item), "null"; got != want {
		t.Fatalf("item=%q, want=%q", got, want)
	}
}

func Test_Envelope_Live_Until_Stored_Plus_TTL(t *testing.T) {
	t.Parallel()

	env := envelope{Stored: 1000, TTL: 500}

	tests := []struct {
		nowMs int64
		live  bool
		left  time.Duration
	}{
		{nowMs: 1000, live: true, left: 500 * time.Millisecond},
		{nowMs: 1499, live: true, left: time.Millisecond},
		{nowMs: 1500, live: false, left: 0},
		{nowMs: 9999, live: false, left: 0},
	}

	for _, tt := range tests {
		now := time.UnixMilli(tt.nowMs)

		if got := env.live(now); got != tt.live {
			t.Errorf("live(%d)=%v, want=%v", tt.nowMs, got, tt.live)
		}

		if got := env.remaining(now); got != tt.left {
			t.Errorf("remaining(%d)=%v, want=%v", tt.nowMs, got, tt.left)
		}
	}
}

func Test_Envelope_Never_Expires_When_Expiry_Overflows(t *testing.T) {
	t.Parallel()

	env := envelope{Stored: 1000, TTL: math.MaxInt64}

	if !env.live(time.UnixMilli(math.MaxInt64 / 2)) {
		t.Fatal("live=false, want true")
	}
}

func Test_Envelope_Expires_When_Stored_Is_Not_Positive(t *testing.T) {
	t.Parallel()

	tests := []envelope{
		{Stored: 0, TTL: 0},
		{Stored: -1, TTL: 0},
		{Stored: -1000, TTL: 500},
	}

	now := time.UnixMilli(1)

	for _, env := range tests {
		if env.live(now) {
			t.Errorf("live(%+v)=true, want false", env)
		}

		if got := env.remaining(now); got != 0 {
			t.Errorf("remaining(%+v)=%v, want=0", env, got)
		}
	}
}
