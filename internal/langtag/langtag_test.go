package langtag

import "testing"

func TestParse(t *testing.T) {
	cases := []struct {
		in      string
		want    Lang
		wantErr bool
	}{
		{"en", English, false},
		{"vi", Vietnamese, false},
		{"", "", true},
		{"EN", "", true},
		{"fr", "", true},
	}
	for _, c := range cases {
		got, err := Parse(c.in)
		if c.wantErr {
			if err == nil { t.Fatalf("Parse(%q): expected error, got %q", c.in, got) }
			continue
		}
		if err != nil { t.Fatalf("Parse(%q): %v", c.in, err) }
		if got != c.want { t.Fatalf("Parse(%q) = %q, want %q", c.in, got, c.want) }
	}
}

func TestPrefix(t *testing.T) {
	if p := English.Prefix(); p != "en: " {
		t.Fatalf("English prefix = %q", p)
	}
	if p := Vietnamese.Prefix(); p != "vi: " {
		t.Fatalf("Vietnamese prefix = %q", p)
	}
}

func TestOpposite(t *testing.T) {
	if English.Opposite() != Vietnamese { t.Fatalf("en opposite = %q", English.Opposite()) }
	if Vietnamese.Opposite() != English { t.Fatalf("vi opposite = %q", Vietnamese.Opposite()) }
}

func TestStripPrefix_RoundTrip(t *testing.T) {
	// decode(encode(lang) + text) must return the bare text for both languages.
	for _, l := range Supported() {
		if got := StripPrefix(l.Prefix() + "Hello there"); got != "Hello there" {
			t.Fatalf("round trip %q: got %q", l, got)
		}
	}
}

func TestStripPrefix(t *testing.T) {
	cases := []struct{ in, want string }{
		{"en: Hello", "Hello"},
		{"vi: Xin chào", "Xin chào"},
		{"en:  padded  ", "padded"},
		{"vi: ", ""},
		{"no prefix here", "no prefix here"},
		{"fr: bonjour", "fr: bonjour"},
		{"en:missing space", "en:missing space"},
		{"  en: not leading", "  en: not leading"},
		{"", ""},
	}
	for _, c := range cases {
		if got := StripPrefix(c.in); got != c.want {
			t.Fatalf("StripPrefix(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	if n := English.DisplayName(); n != "English" { t.Fatalf("en display = %q", n) }
	if n := Vietnamese.DisplayName(); n != "Vietnamese" { t.Fatalf("vi display = %q", n) }
}
