package extract

import "testing"

func TestParseModelJSON(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, false},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`, false},
		{"fenced no language", "```\n{\"a\":1}\n```", `{"a":1}`, false},
		{"surrounding prose", `Here is the result: {"a":1} Hope that helps.`, `{"a":1}`, false},
		{"array", `[1,2]`, `[1,2]`, false},
		{"empty", "", "", true},
		{"no json at all", "sorry, I cannot do that", "", true},
		{"truncated object", `{"a":`, "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseModelJSON(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %s", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tc.want {
				t.Errorf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestStripCodeFences(t *testing.T) {
	if got := stripCodeFences("no fences here"); got != "" {
		t.Errorf("expected empty for unfenced input, got %q", got)
	}
	if got := stripCodeFences("```json\n{}\n```"); got != "{}" {
		t.Errorf("got %q", got)
	}
	// Missing trailing fence still recovers the body.
	if got := stripCodeFences("```json\n{}"); got != "{}" {
		t.Errorf("got %q", got)
	}
}
