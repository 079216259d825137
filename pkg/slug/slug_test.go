package slug

import "testing"

func TestMake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Tab", "my-tab"},
		{"One", "one"},
		{"  padded  title ", "padded-title"},
		{"snake_case_title", "snake-case-title"},
		{"Already-slugged--twice", "already-slugged-twice"},
		{"Crème Brûlée", "creme-brulee"},
		{"Tab #3: Results!", "tab-3-results"},
		{"user@example", "user-at-example"},
		{"", ""},
		{"!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Make(tt.in); got != tt.want {
				t.Errorf("Make(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMakeIdempotent(t *testing.T) {
	for _, in := range []string{"My Tab", "Crème Brûlée", "a_b c-d"} {
		once := Make(in)
		if twice := Make(once); twice != once {
			t.Errorf("Make not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
