package story

import "testing"

func Test_FormatTitle(t *testing.T) {
	cases := []struct {
		filename string
		want     string
	}{
		{"boardgame_vol_1.yaml", "Boardgame VOL Tập 1"},
		{"boardgame_vol_1_edit.yaml", "Boardgame VOL Tập 1"},
		{"noucome_v_2.5.yml", "Noucome V Tập 2.5"},
		{"junna_SERIES_extra.yaml", "Junna Series Extra"},
		{"genben_1.2.3.yaml", "Genben 1.2.3"},
		{"twin__story.yaml", "Twin  Story"},
		{"kore_wa_zombie", "Kore Wa Zombie"},
		{"chunni_3.yaml", "Chunni Tập 3"},
		{"VOL.yaml", "VOL"},
		{"daraku_ñandu.yaml", "Daraku Ñandu"},
		{"", ""},
	}
	for _, tc := range cases {
		t.Run(tc.filename, func(t *testing.T) {
			if got := FormatTitle(tc.filename); got != tc.want {
				t.Errorf("FormatTitle(%q) = %q, want %q", tc.filename, got, tc.want)
			}
		})
	}
}

func Test_FormatTitle_Deterministic(t *testing.T) {
	const name = "noucome_vol_4_edit.yaml"
	first := FormatTitle(name)
	for i := 0; i < 10; i++ {
		if got := FormatTitle(name); got != first {
			t.Fatalf("run %d: got %q, want %q", i, got, first)
		}
	}
}

func Test_Formatter_CustomLabel(t *testing.T) {
	f := Formatter{VolumeLabel: "Volume", VolumeAbbrevs: []string{"bk"}}
	if got, want := f.Format("saga_bk_7.yaml"), "Saga BK Volume 7"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	// "vol" is not an abbreviation for this formatter.
	if got, want := f.Format("saga_vol_7.yaml"), "Saga Vol Volume 7"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func Test_ID(t *testing.T) {
	cases := map[string]string{
		"boardgame_vol_1_edit.yaml": "boardgame_vol_1",
		"junna.yml":                 "junna",
		"plain":                     "plain",
	}
	for in, want := range cases {
		if got := ID(in); got != want {
			t.Errorf("ID(%q) = %q, want %q", in, got, want)
		}
	}
}

func Test_Story_Degraded(t *testing.T) {
	n := 3
	if (Story{Chapters: &n}).Degraded() {
		t.Error("story with chapters reported as degraded")
	}
	if !(Story{}).Degraded() {
		t.Error("story without chapters not reported as degraded")
	}
}
