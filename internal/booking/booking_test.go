package booking

import "testing"

func TestParseJourneyEvent(t *testing.T) {
	cases := []struct {
		in   string
		want JourneyEvent
	}{
		{"pre_arrival", EventPreArrival},
		{"pre-arrival", EventPreArrival},
		{"post_play", EventPostPlay},
		{"post-play", EventPostPlay},
	}
	for _, tc := range cases {
		got, err := ParseJourneyEvent(tc.in)
		if err != nil {
			t.Fatalf("ParseJourneyEvent(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseJourneyEvent(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}

	for _, in := range []string{"", "both", "prearrival", "PRE_ARRIVAL"} {
		if _, err := ParseJourneyEvent(in); err == nil {
			t.Fatalf("ParseJourneyEvent(%q): expected error", in)
		}
	}
}

func TestSentAt(t *testing.T) {
	b := Booking{}
	if b.SentAt(EventPreArrival) != nil || b.SentAt(EventPostPlay) != nil {
		t.Fatalf("fresh booking must have no sent markers")
	}
}
