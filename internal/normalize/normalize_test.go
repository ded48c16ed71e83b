package normalize

import "testing"

func TestFullName(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercase", in: "Иванов Иван Иванович", want: "иванов иван иванович"},
		{name: "collapse spaces", in: "  Иванов \t Иван\n\nИванович  ", want: "иванов иван иванович"},
		{name: "empty", in: "", want: ""},
		{name: "blank", in: "   ", want: ""},
		{name: "decomposed yo", in: "Семе\u0308нов", want: "сем\u0451нов"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FullName(tc.in); got != tc.want {
				t.Fatalf("FullName(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("иванов иван иванович"); got != "Иванов Иван Иванович" {
		t.Fatalf("unexpected display name: %q", got)
	}
	if got := DisplayName("o'neil mcdonald"); got != "O'neil Mcdonald" {
		t.Fatalf("unexpected display name: %q", got)
	}
	if got := DisplayName(""); got != "" {
		t.Fatalf("expected empty display name, got %q", got)
	}
}

func TestDisplayNameRoundTrip(t *testing.T) {
	in := "Иванов Иван Иванович"
	if got := DisplayName(FullName(in)); got != in {
		t.Fatalf("round trip = %q, want %q", got, in)
	}
}

func TestLooksLikeEmail(t *testing.T) {
	cases := map[string]bool{
		"name@example.com":     true,
		"  name@example.com  ": true,
		"a.b+c@mail.co.uk":     true,
		"name@example":         false,
		"name example.com":     false,
		"a@b@c.com":            false,
		"Иванов Иван":          false,
		"":                     false,
	}
	for in, want := range cases {
		if got := LooksLikeEmail(in); got != want {
			t.Errorf("LooksLikeEmail(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestTooShort(t *testing.T) {
	if !TooShort(FullName(" Ив ")) {
		t.Fatal("expected two-letter name to be too short")
	}
	if TooShort("ива") {
		t.Fatal("expected three-letter name to pass")
	}
}
