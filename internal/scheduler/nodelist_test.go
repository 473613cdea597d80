package scheduler

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExpandNodeList(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  []string
	}{
		{
			name:  "comma list",
			token: "udc-an38-[1,9,13,17,25,29,33]",
			want: []string{"udc-an38-1", "udc-an38-9", "udc-an38-13", "udc-an38-17",
				"udc-an38-25", "udc-an38-29", "udc-an38-33"},
		},
		{
			name:  "range",
			token: "udc-an38-[1-3]",
			want:  []string{"udc-an38-1", "udc-an38-2", "udc-an38-3"},
		},
		{
			name:  "mixed singles and ranges",
			token: "udc-ba25-[2,5-7,10]",
			want:  []string{"udc-ba25-2", "udc-ba25-5", "udc-ba25-6", "udc-ba25-7", "udc-ba25-10"},
		},
		{
			name:  "no brackets passes through",
			token: "plain-node-07",
			want:  []string{"plain-node-07"},
		},
		{
			name:  "single keeps zero padding",
			token: "gpu[07]",
			want:  []string{"gpu07"},
		},
		{
			name:  "range drops zero padding",
			token: "gpu[08-10]",
			want:  []string{"gpu8", "gpu9", "gpu10"},
		},
		{
			name:  "reversed range is empty",
			token: "node[5-3]",
			want:  nil,
		},
		{
			name:  "multiple groups",
			token: "udc-an38-[1-2],udc-aw29-[4,6]",
			want:  []string{"udc-an38-1", "udc-an38-2", "udc-aw29-4", "udc-aw29-6"},
		},
		{
			name:  "malformed group passes through when nothing matched",
			token: "node[a-b]",
			want:  []string{"node[a-b]"},
		},
		{
			name:  "malformed group dropped when another matched",
			token: "node[a-b],gpu[1-2]",
			want:  []string{"gpu1", "gpu2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpandNodeList(tt.token)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ExpandNodeList(%q) mismatch (-want +got):\n%s", tt.token, diff)
			}
		})
	}
}

func TestSortNodeNames(t *testing.T) {
	names := []string{"gpu-10", "gpu-2", "cpu-1", "gpu-1", "login", "gpu-2b"}
	SortNodeNames(names)
	want := []string{"cpu-1", "gpu-1", "gpu-2", "gpu-2b", "gpu-10", "login"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("SortNodeNames mismatch (-want +got):\n%s", diff)
	}
}
