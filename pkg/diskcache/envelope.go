package diskcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

// envelope is the persisted form of an entry.
//
// On disk it is a JSON object:
//
//	{"key":{"segment":"users","id":"42"},"item":{...},"stored":1700000000000,"ttl":60000}
//
// stored is the creation time and ttl the lifetime, both integer
// milliseconds. The record expires at stored+ttl.
type envelope struct {
	Key    Key             `json:"key"`
	Item   json.RawMessage `json:"item"`
	Stored int64           `json:"stored"`
	TTL    int64           `json:"ttl"`
}

// live reports whether the envelope is unexpired at now.
func (e envelope) live(now time.Time) bool {
	if e.overflows() {
		return true
	}

	return now.UnixMilli() < e.Stored+e.TTL
}

// overflows reports whether stored+ttl is past the end of int64. Such
// lifetimes never expire. Decoded envelopes never have a negative stored.
func (e envelope) overflows() bool {
	return e.Stored > 0 && e.TTL > math.MaxInt64-e.Stored
}

// remaining returns the lifetime left at now, or zero once expired.
func (e envelope) remaining(now time.Time) time.Duration {
	if !e.live(now) {
		return 0
	}

	if e.overflows() {
		return time.Duration(math.MaxInt64)
	}

	ms := e.Stored + e.TTL - now.UnixMilli()
	if ms > math.MaxInt64/int64(time.Millisecond) {
		return time.Duration(math.MaxInt64)
	}

	return time.Duration(ms) * time.Millisecond
}

// encodeEnvelope serializes item into a record for key.
//
// Items encoding/json cannot marshal (channels, funcs, cycles, NaN)
// fail with [ErrSerialization] before anything is written.
func encodeEnvelope(key Key, item any, stored, ttl int64) ([]byte, error) {
	raw, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
	}

	data, err := json.Marshal(envelope{Key: key, Item: raw, Stored: stored, TTL: ttl})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
	}

	return data, nil
}

// wireEnvelope mirrors envelope with pointer fields so missing members can
// be told apart from zero values.
type wireEnvelope struct {
	Key *struct {
		Segment *string `json:"segment"`
		ID      *string `json:"id"`
	} `json:"key"`
	Item   json.RawMessage `json:"item"`
	Stored *int64          `json:"stored"`
	TTL    *int64          `json:"ttl"`
}

// Decode failure causes, wrapped together with [ErrCorrupt].
var (
	errUnparseable = errors.New("not parseable")
	errSchema      = errors.New("schema mismatch")
)

// decodeEnvelope parses a record. Bytes that are not JSON fail with
// errUnparseable; JSON that does not have the envelope shape fails with
// errSchema. Both wrap [ErrCorrupt].
func decodeEnvelope(data []byte) (envelope, error) {
	var wire wireEnvelope

	err := json.Unmarshal(data, &wire)
	if err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) || !json.Valid(data) {
			return envelope{}, fmt.Errorf("%w: %w: %w", ErrCorrupt, errUnparseable, err)
		}

		return envelope{}, fmt.Errorf("%w: %w: %w", ErrCorrupt, errSchema, err)
	}

	switch {
	case wire.Key == nil:
		return envelope{}, schemaError("missing key")
	case wire.Key.Segment == nil:
		return envelope{}, schemaError("missing key.segment")
	case wire.Key.ID == nil:
		return envelope{}, schemaError("missing key.id")
	case len(wire.Item) == 0:
		return envelope{}, schemaError("missing item")
	case wire.Stored == nil:
		return envelope{}, schemaError("missing stored")
	case wire.TTL == nil:
		return envelope{}, schemaError("missing ttl")
	case *wire.Stored < 0:
		return envelope{}, schemaError("negative stored")
	}

	return envelope{
		Key:    Key{Segment: *wire.Key.Segment, ID: *wire.Key.ID},
		Item:   wire.Item,
		Stored: *wire.Stored,
		TTL:    *wire.TTL,
	}, nil
}

func schemaError(msg string) error {
	return fmt.Errorf("%w: %w: %s", ErrCorrupt, errSchema, msg)
}
