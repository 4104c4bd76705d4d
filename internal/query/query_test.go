package query

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestViews(t *testing.T) {
	tests := []struct {
		name string
		got  Query
		want Query
	}{
		{
			name: "active excludes archived only",
			got:  Active(),
			want: Query{Archived: No},
		},
		{
			name: "archived requires explicit flag",
			got:  Archived(),
			want: Query{Archived: Yes},
		},
		{
			name: "favourites are active and favourited",
			got:  Favourites(),
			want: Query{Archived: No, Favourite: Yes},
		},
		{
			name: "by category is active plus category",
			got:  ByCategory("go"),
			want: Query{Archived: No, Category: "go"},
		},
		{
			name: "unseen spans archived posts too",
			got:  Unseen(),
			want: Query{Seen: No},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.got); diff != "" {
				t.Errorf("query mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
