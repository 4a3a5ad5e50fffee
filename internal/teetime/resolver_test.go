package teetime

import (
	"testing"

	"teemail/internal/booking"
)

func TestResolvePriority(t *testing.T) {
	cases := []struct {
		name string
		b    booking.Booking
		want string
	}{
		{
			name: "tee_time column wins",
			b: booking.Booking{
				TeeTime: "8:00 AM",
				Rounds:  []booking.Round{{Time: "10:35 AM"}},
				Note:    "Tee Time: 3:45 PM",
			},
			want: "8:00 AM",
		},
		{
			name: "sentinel column falls through to rounds",
			b: booking.Booking{
				TeeTime: "Not Specified",
				Rounds:  []booking.Round{{Time: "10:35 AM"}},
				Note:    "Tee Time: 3:45 PM",
			},
			want: "10:35 AM",
		},
		{
			name: "TBD treated as unset",
			b:    booking.Booking{TeeTime: "TBD", Note: "Tee Time: 3:45 PM"},
			want: "3:45 PM",
		},
		{
			name: "structured beats note",
			b: booking.Booking{
				SelectedTeeTimesRaw: `{"time": "10:35 AM"}`,
				Note:                "Tee Time: 3:45 PM",
			},
			want: "10:35 AM",
		},
		{
			name: "json list",
			b:    booking.Booking{SelectedTeeTimesRaw: `[{"time": "9:15 AM"}, {"time": "2:00 PM"}]`},
			want: "9:15 AM",
		},
		{
			name: "legacy stringified map",
			b:    booking.Booking{SelectedTeeTimesRaw: "map[course:Blue time:10:35 AM]"},
			want: "10:35 AM",
		},
		{
			name: "bare time string",
			b:    booking.Booking{SelectedTeeTimesRaw: "10:35 AM"},
			want: "10:35 AM",
		},
		{
			name: "note only",
			b:    booking.Booking{Note: "Guest prefers morning. Tee Time: 7:50 AM"},
			want: "7:50 AM",
		},
		{
			name: "nothing anywhere",
			b:    booking.Booking{Note: "no time mentioned"},
			want: Unspecified,
		},
		{
			name: "empty booking",
			b:    booking.Booking{},
			want: Unspecified,
		},
		{
			name: "malformed json yields sentinel",
			b:    booking.Booking{SelectedTeeTimesRaw: `{"time": `},
			want: Unspecified,
		},
	}

	for _, tc := range cases {
		if got := Resolve(tc.b); got != tc.want {
			t.Fatalf("%s: Resolve = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestFromNote(t *testing.T) {
	cases := []struct {
		note string
		want string
	}{
		{"Tee Time: 3:45 PM", "3:45 PM"},
		{"tee time: 3:45 pm", "3:45 PM"}, // case-insensitive, normalized
		{"Time: 12:20 pm", "12:20 PM"},
		{"Arrival Time: 11:00 AM", "11:00 AM"}, // bare Time: label still matches
		{"Tee Time: 9:05 AM and Time: 1:00 PM", "9:05 AM"}, // explicit label wins
		{"no labels here", ""},
		{"", ""},
		{"Time: soonish", ""},
	}
	for _, tc := range cases {
		if got := FromNote(tc.note); got != tc.want {
			t.Fatalf("FromNote(%q) = %q, want %q", tc.note, got, tc.want)
		}
	}
}
