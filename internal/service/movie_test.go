package service

import (
	"testing"

	"movierank/internal/biz"

	"github.com/go-kratos/kratos/v2/errors"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    uint
		wantErr *errors.Error
	}{
		{name: "small", raw: "7", want: 7},
		{name: "above uint32", raw: "4294967296", want: 4294967296},
		{name: "zero", raw: "0", wantErr: biz.ErrInvalidInput},
		{name: "not a number", raw: "abc", wantErr: biz.ErrInvalidInput},
		{name: "above int64", raw: "9223372036854775808", wantErr: biz.ErrMovieNotFound},
		{name: "above uint64", raw: "99999999999999999999999", wantErr: biz.ErrMovieNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseID(tt.raw)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("parseID(%q) error = %v, want %v", tt.raw, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseID(%q) error = %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("parseID(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}
