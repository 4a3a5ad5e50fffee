package booking

import "testing"

func TestParseRounds(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want int
	}{
		{"json list", `[{"time":"10:35 AM"},{"time":"1:10 PM"}]`, 2},
		{"json object", `{"time":"10:35 AM"}`, 1},
		{"legacy map text", "map[course:Blue time:10:35 AM]", 0},
		{"bare time", "10:35 AM", 0},
		{"empty", "", 0},
		{"broken json", `[{"time":`, 0},
	}
	for _, tc := range cases {
		got := parseRounds(tc.raw)
		if len(got) != tc.want {
			t.Fatalf("%s: parsed %d rounds, want %d", tc.name, len(got), tc.want)
		}
	}

	rounds := parseRounds(`[{"time":"10:35 AM","players":4,"costPerPlayer":"150"}]`)
	if len(rounds) != 1 || rounds[0].Time != "10:35 AM" || rounds[0].Players != 4 {
		t.Fatalf("rounds = %+v", rounds)
	}
}
