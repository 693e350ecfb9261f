package diag

import (
	"testing"

	"tml/internal/source"
)

func span(file source.FileID, start, end uint32) source.Span {
	return source.Span{File: file, Start: start, End: end}
}

func TestBagCapStopsAdds(t *testing.T) {
	b := NewBag(2)
	for i := 0; i < 3; i++ {
		b.Add(NewError(TypeMismatch, span(0, uint32(i), uint32(i)+1), "boom"))
	}
	if b.Len() != 2 {
		t.Fatalf("Len = %d, want cap of 2", b.Len())
	}
	if b.Add(NewError(TypeMismatch, span(0, 9, 10), "late")) {
		t.Error("Add past the cap must report false")
	}
}

func TestBagSeverityQueries(t *testing.T) {
	b := NewBag(8)
	b.Add(New(SevInfo, UnknownCode, span(0, 0, 1), "fyi"))
	if b.HasWarnings() || b.HasErrors() {
		t.Fatal("info-only bag must report neither warnings nor errors")
	}
	b.Add(New(SevWarning, UnknownCode, span(0, 1, 2), "careful"))
	if !b.HasWarnings() || b.HasErrors() {
		t.Fatal("warning bag must report warnings but not errors")
	}
	b.Add(NewError(TypeMismatch, span(0, 2, 3), "bad"))
	if !b.HasErrors() {
		t.Fatal("error bag must report errors")
	}
}

func TestBagSortIsPositional(t *testing.T) {
	b := NewBag(8)
	b.Add(NewError(TypeMismatch, span(1, 5, 6), "second file"))
	b.Add(New(SevWarning, UnknownCode, span(0, 10, 12), "later offset"))
	b.Add(NewError(UnresolvedName, span(0, 2, 4), "early offset"))
	b.Sort()

	items := b.Items()
	if items[0].Code != UnresolvedName {
		t.Errorf("first after sort = %v, want the earliest span", items[0].Code)
	}
	if items[2].Primary.File != 1 {
		t.Errorf("last after sort in file %d, want file 1", items[2].Primary.File)
	}
}

func TestBagSortPrefersSeverityOnTies(t *testing.T) {
	b := NewBag(4)
	b.Add(New(SevWarning, UnknownCode, span(0, 0, 1), "w"))
	b.Add(NewError(TypeMismatch, span(0, 0, 1), "e"))
	b.Sort()
	if b.Items()[0].Severity != SevError {
		t.Fatal("equal spans must order the error first")
	}
}

func TestBagDedup(t *testing.T) {
	b := NewBag(8)
	d := NewError(TypeMismatch, span(0, 0, 1), "dup")
	b.Add(d)
	b.Add(d)
	b.Add(NewError(TypeMismatch, span(0, 1, 2), "other span"))
	b.Dedup()
	if b.Len() != 2 {
		t.Fatalf("Len after Dedup = %d, want 2", b.Len())
	}
}

func TestMergeGrowsCap(t *testing.T) {
	a := NewBag(1)
	a.Add(NewError(TypeMismatch, span(0, 0, 1), "a"))
	other := NewBag(2)
	other.Add(NewError(UnresolvedName, span(0, 1, 2), "b"))
	other.Add(New(SevWarning, UnknownCode, span(0, 2, 3), "c"))

	a.Merge(other)
	if a.Len() != 3 {
		t.Fatalf("Len after Merge = %d, want 3", a.Len())
	}
	if a.Cap() < 3 {
		t.Errorf("Cap = %d, want at least 3 after growth", a.Cap())
	}
}

func TestCodeRendering(t *testing.T) {
	if got := TypeMismatch.String(); got != "T001" {
		t.Errorf("TypeMismatch renders %q, want T001", got)
	}
	if got := OverrideSigMismatch.String(); got != "T065" {
		t.Errorf("OverrideSigMismatch renders %q, want T065", got)
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(4)
	b := ReportError(BagReporter{Bag: bag}, BaseClassNotFound, span(0, 0, 4), "base `Missing` not found").
		WithNote(span(0, 0, 4), "declared here")
	b.Emit()
	b.Emit()
	if bag.Len() != 1 {
		t.Fatalf("Len = %d, want a single emission", bag.Len())
	}
	d := bag.Items()[0]
	if len(d.Notes) != 1 || d.Code != BaseClassNotFound {
		t.Errorf("unexpected diagnostic %+v", d)
	}
}

func TestNopReporterDiscards(t *testing.T) {
	ReportWarning(NopReporter{}, UnknownCode, span(0, 0, 1), "nowhere").Emit()
}
