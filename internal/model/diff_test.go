package model

import "testing"

func stub(id, fp string) StubReportLine {
	return StubReportLine{Identifier: id, Fingerprint: fp}
}

func ids(lines []StubReportLine) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Identifier
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TestCompareScanReports tests stub diffing between two scans.
func TestCompareScanReports(t *testing.T) {
	t.Parallel()

	t.Run("classifies new, resolved, changed and unchanged", func(t *testing.T) {
		t.Parallel()

		prev := &ScanReport{Stubs: []StubReportLine{
			stub("glow", "1"), stub("blur", "2"), stub("fog", "3"),
		}}
		cur := &ScanReport{Stubs: []StubReportLine{
			stub("glow", "1"), stub("fog", "33"), stub("rain", "4"),
		}}

		d := CompareScanReports(prev, cur)

		if !equalStrings(ids(d.New), []string{"rain"}) {
			t.Errorf("unexpected new %v", ids(d.New))
		}
		if !equalStrings(ids(d.Resolved), []string{"blur"}) {
			t.Errorf("unexpected resolved %v", ids(d.Resolved))
		}
		if !equalStrings(ids(d.Changed), []string{"fog"}) {
			t.Errorf("unexpected changed %v", ids(d.Changed))
		}
		if !equalStrings(ids(d.Unchanged), []string{"glow"}) {
			t.Errorf("unexpected unchanged %v", ids(d.Unchanged))
		}
		if !d.HasChanges() {
			t.Error("expected changes")
		}
	})

	t.Run("duplicate identifiers match in order", func(t *testing.T) {
		t.Parallel()

		prev := &ScanReport{Stubs: []StubReportLine{
			stub("dup", "1"), stub("dup", "2"), stub("dup", "3"),
		}}
		cur := &ScanReport{Stubs: []StubReportLine{
			stub("dup", "1"),
		}}

		d := CompareScanReports(prev, cur)
		if len(d.Unchanged) != 1 || len(d.Resolved) != 2 {
			t.Fatalf("expected 1 unchanged and 2 resolved, got %d and %d", len(d.Unchanged), len(d.Resolved))
		}
		if d.Resolved[0].Fingerprint != "2" || d.Resolved[1].Fingerprint != "3" {
			t.Errorf("unexpected resolved lines %v", d.Resolved)
		}
	})

	t.Run("nil previous treats everything as new", func(t *testing.T) {
		t.Parallel()

		d := CompareScanReports(nil, &ScanReport{Stubs: []StubReportLine{stub("a", "1")}})
		if len(d.New) != 1 || len(d.Resolved) != 0 {
			t.Errorf("unexpected diff %+v", d)
		}
	})

	t.Run("identical scans have no changes", func(t *testing.T) {
		t.Parallel()

		r := &ScanReport{Stubs: []StubReportLine{stub("a", "1")}}
		if CompareScanReports(r, r).HasChanges() {
			t.Error("expected no changes")
		}
	})
}
