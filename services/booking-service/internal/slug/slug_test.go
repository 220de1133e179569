package slug

import "testing"

func TestGenerate(t *testing.T) {
	tests := map[string]string{
		"Klivia Azevedo":        "klivia-azevedo",
		"Klívia Azevedo":        "klivia-azevedo",
		"  Ângela   Conceição ": "angela-conceicao",
		"Nails & Co. -- Studio": "nails-co-studio",
		"Zoë 2":                 "zoe-2",
		"":                      "",
	}
	for in, want := range tests {
		if got := Generate(in); got != want {
			t.Fatalf("Generate(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValid(t *testing.T) {
	for _, s := range []string{"ana", "ana-nails", "a1-b2"} {
		if !Valid(s) {
			t.Fatalf("expected %q to be valid", s)
		}
	}
	for _, s := range []string{"", "-ana", "ana-", "ana--nails", "Ana", "ana nails"} {
		if Valid(s) {
			t.Fatalf("expected %q to be invalid", s)
		}
	}
}

func TestFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{"/ana-nails", "ana-nails", true},
		{"/ana-nails/", "ana-nails", true},
		{"//ana-nails", "ana-nails", true},
		{"/", "", false},
		{"/ana/book", "", false},
		{"/Ana", "", false},
	}
	for _, tt := range tests {
		got, ok := FromPath(tt.path)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("FromPath(%q) = %q, %v", tt.path, got, ok)
		}
	}
}

func TestPersonalLink(t *testing.T) {
	if got := PersonalLink("https://nailbook.app/", "ana"); got != "https://nailbook.app/ana" {
		t.Fatalf("unexpected link %q", got)
	}
}
