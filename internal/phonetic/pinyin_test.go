package phonetic

import (
	"testing"

	"github.com/MrSnakeDoc/summon/internal/domain"
)

func contains(readings []string, want string) bool {
	for _, r := range readings {
		if r == want {
			return true
		}
	}
	return false
}

func TestPinyinReadings(t *testing.T) {
	p := NewPinyin()

	tests := []struct {
		text     string
		full     string
		initials string
	}{
		{text: "记事本", full: "jishiben", initials: "jsb"},
		{text: "计算器", full: "jisuanqi", initials: "jsq"},
		{text: "QQ音乐", full: "qqyinyue", initials: "qqyy"},
		{text: "网易云音乐", full: "wangyiyunyinyue", initials: "wyyyy"},
		{text: "酷狗音乐", full: "kugouyinyue", initials: "kgyy"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := p.Full(tt.text); !contains(got, tt.full) {
				t.Errorf("Full(%q) = %v, want it to contain %q", tt.text, got, tt.full)
			}
			if got := p.Initials(tt.text); !contains(got, tt.initials) {
				t.Errorf("Initials(%q) = %v, want it to contain %q", tt.text, got, tt.initials)
			}
			// memoized path returns the same value
			if got := p.Full(tt.text); !contains(got, tt.full) {
				t.Errorf("memoized Full(%q) = %v, want it to contain %q", tt.text, got, tt.full)
			}
		})
	}

	if got := p.Full(""); len(got) != 0 {
		t.Errorf("Full(\"\") = %v, want none", got)
	}
}

func TestPinyinDefaultReadingFirst(t *testing.T) {
	got := NewPinyin().Full("记事本")
	if len(got) == 0 || got[0] != "jishiben" {
		t.Errorf("Full(记事本) = %v, want jishiben first", got)
	}
}

func TestExpandCapsReadings(t *testing.T) {
	readings := []string{""}
	for i := 0; i < 8; i++ {
		readings = expand(readings, []string{"a", "b", "c"})
	}

	if len(readings) != MaxReadings {
		t.Fatalf("expand() kept %d readings, want %d", len(readings), MaxReadings)
	}
	if readings[0] != "aaaaaaaa" {
		t.Errorf("expand() first reading = %q, want the default combination", readings[0])
	}
}

func TestPinyinWithMatcher(t *testing.T) {
	m := domain.NewMatcher(NewPinyin())

	tests := []struct {
		query  string
		target string
		want   int
	}{
		{query: "jsb", target: "记事本", want: domain.ScoreInitialsPrefixMatch},
		{query: "jishiben", target: "记事本", want: domain.ScorePhoneticPrefixMatch},
		{query: "qqyinyue", target: "QQ音乐", want: domain.ScorePhoneticPrefixMatch},
		{query: "yinyue", target: "网易云音乐", want: domain.ScorePhoneticSubstringMatch},
		{query: "notepad", target: "Notepad", want: domain.ScoreExactMatch},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := m.ScoreName(tt.query, tt.target); got != tt.want {
				t.Errorf("ScoreName(%s, %s) = %d, want %d", tt.query, tt.target, got, tt.want)
			}
		})
	}
}
