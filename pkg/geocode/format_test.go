package geocode

import "testing"

func TestFormatAddress(t *testing.T) {
	tests := []struct {
		name       string
		components []string
		want       string
	}{
		{
			name:       "all parts present",
			components: []string{"Ikeja", "Lagos", "Nigeria"},
			want:       "Ikeja, Lagos, Nigeria",
		},
		{
			name:       "adjacent duplicates collapse",
			components: []string{"Lagos", "Lagos", "Nigeria"},
			want:       "Lagos, Nigeria",
		},
		{
			name:       "unknown parts skipped",
			components: []string{UnknownComponent, "Lagos", "Nigeria"},
			want:       "Lagos, Nigeria",
		},
		{
			name:       "duplicate after skipped unknown collapses",
			components: []string{"Lagos", UnknownComponent, "Lagos", "Nigeria"},
			want:       "Lagos, Nigeria",
		},
		{
			name:       "case-insensitive duplicate",
			components: []string{"lagos", "Lagos", "Nigeria"},
			want:       "lagos, Nigeria",
		},
		{
			name:       "everything unknown",
			components: []string{UnknownComponent, UnknownComponent},
			want:       "",
		},
		{
			name:       "blank parts skipped",
			components: []string{"", "  ", "Nigeria"},
			want:       "Nigeria",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatAddress(tt.components...); got != tt.want {
				t.Fatalf("FormatAddress(%v) = %q, want %q", tt.components, got, tt.want)
			}
		})
	}
}
