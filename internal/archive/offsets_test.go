package archive

import (
	"reflect"
	"testing"
)

func TestOffsetSequence(t *testing.T) {
	tests := []struct {
		name string
		max  int
		want []int
	}{
		{
			name: "window of two",
			max:  2,
			want: []int{0, 1, -1, 2, -2},
		},
		{
			name: "default-sized window",
			max:  7,
			want: []int{0, 1, -1, 2, -2, 3, -3, 4, -4, 5, -5, 6, -6, 7, -7},
		},
		{
			name: "zero window is target only",
			max:  0,
			want: []int{0},
		},
		{
			name: "negative treated as zero",
			max:  -3,
			want: []int{0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OffsetSequence(tt.max)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("OffsetSequence(%d) = %v, want %v", tt.max, got, tt.want)
			}
		})
	}
}
