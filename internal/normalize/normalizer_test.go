package normalize

import (
	"strings"
	"testing"
)

func newTestNormalizer() *Normalizer {
	return New(DefaultConfig(), nil)
}

func TestNormalize_Empty(t *testing.T) {
	n := newTestNormalizer()
	if got := n.Normalize(""); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}

func TestNormalize_MajorityVote(t *testing.T) {
	n := newTestNormalizer()

	// "faturası" appears three times, the OCR misread "faturasi" once. The
	// misread joins the majority spelling.
	got := n.Normalize("faturası faturasi faturası faturası")
	want := "faturası faturası faturası faturası"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNormalize_TieGoesToFirstSeen(t *testing.T) {
	n := newTestNormalizer()

	got := n.Normalize("topllam toplam topllam toplam")
	want := "topllam topllam topllam topllam"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNormalize_DissimilarWordsUntouched(t *testing.T) {
	n := newTestNormalizer()

	in := "toplam kdv tutar"
	if got := n.Normalize(in); got != in {
		t.Errorf("got %q, want input unchanged", got)
	}
}

func TestNormalize_PreservesWordCountAndOrder(t *testing.T) {
	n := newTestNormalizer()

	in := "genel toplam 1.250,00 kdv 225,00 genell toplam"
	got := n.Normalize(in)

	inWords := strings.Fields(in)
	gotWords := strings.Fields(got)
	if len(gotWords) != len(inWords) {
		t.Fatalf("word count changed: %d -> %d", len(inWords), len(gotWords))
	}
	// Dissimilar words stay in place even when neighbors get rewritten.
	if gotWords[3] != "kdv" || gotWords[4] != "225,00" {
		t.Errorf("unrelated words moved or changed: %v", gotWords)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	n := newTestNormalizer()

	inputs := []string{
		"faturası faturasi faturası faturası",
		"genel toplam genell toplam toplam",
		"ürün orün ürün",
		"a\nbc\nsayın yetkili\nx\ntoplam 100,00",
	}
	for _, in := range inputs {
		once := n.Normalize(in)
		twice := n.Normalize(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestNormalize_UnicodeComposition(t *testing.T) {
	n := newTestNormalizer()

	// Decomposed u + combining diaeresis composes to the single rune form.
	decomposed := "ürün"
	composed := "ürün"
	if got := n.Normalize(decomposed); got != composed {
		t.Errorf("got %q, want %q", got, composed)
	}
}

func TestNormalize_CapSkipsVoting(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxDistinctWords = 3
	n := New(cfg, nil)

	in := "alpha beta gamma delta epsilon"
	if got := n.Normalize(in); got != in {
		t.Errorf("expected voting skipped above cap, got %q", got)
	}
}

func TestMergeBrokenLines(t *testing.T) {
	n := newTestNormalizer()

	t.Run("short fragment joins next line", func(t *testing.T) {
		got := n.mergeBrokenLines([]string{"Ü", "rün listesi"})
		want := []string{"Ü rün listesi"}
		if len(got) != 1 || got[0] != want[0] {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("consecutive fragments accumulate", func(t *testing.T) {
		got := n.mergeBrokenLines([]string{"A", "B", "toplam tutar"})
		if len(got) != 1 || got[0] != "AB toplam tutar" {
			t.Errorf("got %v", got)
		}
	})

	t.Run("trailing fragment survives alone", func(t *testing.T) {
		got := n.mergeBrokenLines([]string{"fatura detay", "TL"})
		if len(got) != 2 || got[1] != "TL" {
			t.Errorf("got %v", got)
		}
	})

	t.Run("substantial lines pass through", func(t *testing.T) {
		in := []string{"sayın yetkili", "genel toplam"}
		got := n.mergeBrokenLines(in)
		if len(got) != 2 || got[0] != in[0] || got[1] != in[1] {
			t.Errorf("got %v", got)
		}
	})
}
