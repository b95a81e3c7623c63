package diskcache_test

import (
	"errors"
	"testing"

	"github.com/calvinalkan/diskcache/pkg/diskcache"
)

func Test_ValidateSegmentName_Returns_Error_When_Name_Is_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		segment string
	}{
		{name: "empty", segment: ""},
		{name: "nul only", segment: "\x00"},
		{name: "nul inside", segment: "user\x00s"},
		{name: "nul at end", segment: "users\x00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := diskcache.ValidateSegmentName(tt.segment)
			if !errors.Is(err, diskcache.ErrValidation) {
				t.Fatalf("ValidateSegmentName(%q)=%v, want %v", tt.segment, err, diskcache.ErrValidation)
			}
		})
	}
}

func Test_ValidateSegmentName_Returns_Nil_When_Name_Is_Valid(t *testing.T) {
	t.Parallel()

	for _, segment := range []string{"valid-name", "a", "!policy", "with space", "ünïcode"} {
		err := diskcache.ValidateSegmentName(segment)
		if err != nil {
			t.Fatalf("ValidateSegmentName(%q)=%v, want nil", segment, err)
		}
	}
}
