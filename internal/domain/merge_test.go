package domain

import (
	"testing"
	"time"
)

func TestMergeCaseInsensitiveKeepsFirst(t *testing.T) {
	first := &ProgramCandidate{DisplayName: "Notepad", ExecutablePath: `C:\Windows\notepad.exe`, Source: SourcePath}
	second := &ProgramCandidate{DisplayName: "Editor", ExecutablePath: `c:\windows\NOTEPAD.EXE`, Source: SourceRegistry}

	merged := Merge([]*ProgramCandidate{first}, []*ProgramCandidate{second})

	if len(merged) != 1 {
		t.Fatalf("Merge() kept %d candidates, want 1", len(merged))
	}
	if merged[0] != first {
		t.Errorf("Merge() kept %q from %s, want the first one", merged[0].DisplayName, merged[0].Source)
	}
}

func TestMergeWithinIncoming(t *testing.T) {
	a := &ProgramCandidate{DisplayName: "a", ExecutablePath: "/bin/A"}
	b := &ProgramCandidate{DisplayName: "b", ExecutablePath: "/bin/a"}
	c := &ProgramCandidate{DisplayName: "c", ExecutablePath: "/bin/c"}

	merged := Merge(nil, []*ProgramCandidate{a, b, c})

	if len(merged) != 2 {
		t.Fatalf("Merge() kept %d candidates, want 2", len(merged))
	}
	if merged[0] != a || merged[1] != c {
		t.Errorf("Merge() order = [%s %s], want [a c]", merged[0].DisplayName, merged[1].DisplayName)
	}
}

func TestMergeDropsEmptyPaths(t *testing.T) {
	merged := Merge(nil, []*ProgramCandidate{
		{DisplayName: "ghost"},
		nil,
		{DisplayName: "real", ExecutablePath: "/bin/real"},
	})

	if len(merged) != 1 || merged[0].DisplayName != "real" {
		t.Errorf("Merge() = %v, want only 'real'", names(merged))
	}
}

func TestAllNames(t *testing.T) {
	c := &ProgramCandidate{
		DisplayName:    "notepad",
		ExecutablePath: `C:\Windows\notepad.exe`,
		Aliases:        []string{"记事本", "notepad", ""},
	}

	got := c.AllNames()
	want := []string{"notepad", "记事本", "notepad.exe"}

	if len(got) != len(want) {
		t.Fatalf("AllNames() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AllNames()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAppIdentifier(t *testing.T) {
	app := &ProgramCandidate{ExecutablePath: `shell:AppsFolder\Microsoft.WindowsCalculator_8wekyb3d8bbwe!App`}
	if !app.IsAppIdentifier() {
		t.Error("IsAppIdentifier() = false for AppsFolder path")
	}
	if got := app.AllNames(); len(got) == 0 || got[len(got)-1] != "Microsoft.WindowsCalculator_8wekyb3d8bbwe!App" {
		t.Errorf("AllNames() = %v, want app id as file name", got)
	}

	exe := &ProgramCandidate{ExecutablePath: "/usr/bin/vim"}
	if exe.IsAppIdentifier() {
		t.Error("IsAppIdentifier() = true for plain path")
	}
}

func TestIndexStateAdvance(t *testing.T) {
	tests := []struct {
		name    string
		from    IndexState
		to      IndexState
		want    IndexState
		changed bool
	}{
		{name: "not to quick", from: NotIndexed, to: QuickIndexed, want: QuickIndexed, changed: true},
		{name: "quick to full", from: QuickIndexed, to: FullIndexed, want: FullIndexed, changed: true},
		{name: "not to full", from: NotIndexed, to: FullIndexed, want: FullIndexed, changed: true},
		{name: "same state", from: QuickIndexed, to: QuickIndexed, want: QuickIndexed, changed: false},
		{name: "backwards", from: FullIndexed, to: QuickIndexed, want: FullIndexed, changed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := tt.from.Advance(tt.to)
			if got != tt.want || changed != tt.changed {
				t.Errorf("Advance() = (%v, %v), want (%v, %v)", got, changed, tt.want, tt.changed)
			}
		})
	}
}

func TestCacheRecordValid(t *testing.T) {
	now := time.Now()
	candidates := []*ProgramCandidate{{DisplayName: "x", ExecutablePath: "/x"}}

	fresh := &CacheRecord{Timestamp: now.Add(-1 * time.Hour), Candidates: candidates}
	stale := &CacheRecord{Timestamp: now.Add(-13 * time.Hour), Candidates: candidates}
	empty := &CacheRecord{Timestamp: now}

	if !fresh.Valid(now, CacheTTL) {
		t.Error("1h old snapshot should be valid")
	}
	if stale.Valid(now, CacheTTL) {
		t.Error("13h old snapshot should be rejected")
	}
	if empty.Valid(now, CacheTTL) {
		t.Error("empty snapshot should be rejected")
	}
	if fresh.State() != QuickIndexed {
		t.Errorf("State() = %v, want quick_indexed", fresh.State())
	}
}
