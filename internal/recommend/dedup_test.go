package recommend

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/mock"
)

func TestDeduperUniqueTitles(t *testing.T) {
	d := NewDeduper(nil, testLogger())
	candidates := candidatesFromTitles("Dune", "  dune ", "DUNE", "Hyperion", "hyperion", "Ubik")

	got := d.Apply(context.Background(), "item-1", candidates, nil, 10)

	want := []string{"Dune", "Hyperion", "Ubik"}
	if !reflect.DeepEqual(titlesOf(got), want) {
		t.Errorf("got %v, want %v", titlesOf(got), want)
	}

	seen := map[string]bool{}
	for _, c := range got {
		key := normalizeTitle(c.Title)
		if seen[key] {
			t.Errorf("duplicate normalized title %q", key)
		}
		seen[key] = true
	}
}

func TestDeduperHonorsExclusions(t *testing.T) {
	d := NewDeduper(nil, testLogger())
	candidates := candidatesFromTitles("Known One", "Fresh A", "Known Two", "Fresh B")
	exclude := map[string]bool{"known one": true, "known two": true}

	got := d.Apply(context.Background(), "item-1", candidates, exclude, 2)

	want := []string{"Fresh A", "Fresh B"}
	if !reflect.DeepEqual(titlesOf(got), want) {
		t.Errorf("got %v, want %v", titlesOf(got), want)
	}
}

func TestDeduperRelaxesWhenUnderfilled(t *testing.T) {
	d := NewDeduper(nil, testLogger())
	candidates := candidatesFromTitles("Known One", "Known Two", "Fresh A")
	exclude := map[string]bool{"known one": true, "known two": true}

	got := d.Apply(context.Background(), "item-1", candidates, exclude, 3)

	// The strict pass finds only one candidate, so the relaxed pass readmits
	// the excluded titles in candidate order.
	want := []string{"Known One", "Known Two", "Fresh A"}
	if !reflect.DeepEqual(titlesOf(got), want) {
		t.Errorf("got %v, want %v", titlesOf(got), want)
	}
}

func TestDeduperFullyExcludedPoolStillReturns(t *testing.T) {
	d := NewDeduper(nil, testLogger())
	candidates := candidatesFromTitles("A", "B", "C")
	exclude := map[string]bool{"a": true, "b": true, "c": true}

	got := d.Apply(context.Background(), "item-1", candidates, exclude, 3)

	if !reflect.DeepEqual(titlesOf(got), []string{"A", "B", "C"}) {
		t.Errorf("got %v, want the relaxed pass to admit the excluded pool", titlesOf(got))
	}
}

func TestDeduperCapsAtN(t *testing.T) {
	d := NewDeduper(nil, testLogger())
	candidates := candidatesFromTitles("a", "b", "c", "d", "e", "f")

	got := d.Apply(context.Background(), "item-1", candidates, nil, 4)

	if len(got) != 4 {
		t.Errorf("len = %d, want 4", len(got))
	}
}

func TestDeduperRecordsServedList(t *testing.T) {
	history := new(MockHistory)
	served := candidatesFromTitles("A", "B")
	history.On("SetLastServed", mock.Anything, "item-1", served).Return(nil).Once()

	d := NewDeduper(history, testLogger())
	got := d.Apply(context.Background(), "item-1", candidatesFromTitles("A", "B"), nil, 5)

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	history.AssertExpectations(t)
}

func TestDeduperRotatesHistoryWhenNothingSurvives(t *testing.T) {
	prev := candidatesFromTitles("A", "B", "C")
	rotated := candidatesFromTitles("B", "C", "A")

	history := new(MockHistory)
	history.On("LastServed", mock.Anything, "item-1").Return(prev, nil).Once()
	history.On("SetLastServed", mock.Anything, "item-1", rotated).Return(nil).Once()

	d := NewDeduper(history, testLogger())
	got := d.Apply(context.Background(), "item-1", nil, nil, 5)

	if !reflect.DeepEqual(titlesOf(got), []string{"B", "C", "A"}) {
		t.Errorf("got %v, want rotated previous list", titlesOf(got))
	}
	history.AssertExpectations(t)
}

func TestDeduperRotationTruncatesButPersistsFullList(t *testing.T) {
	prev := candidatesFromTitles("A", "B", "C", "D")
	rotated := candidatesFromTitles("B", "C", "D", "A")

	history := new(MockHistory)
	history.On("LastServed", mock.Anything, "item-1").Return(prev, nil).Once()
	history.On("SetLastServed", mock.Anything, "item-1", rotated).Return(nil).Once()

	d := NewDeduper(history, testLogger())
	got := d.Apply(context.Background(), "item-1", nil, nil, 2)

	if !reflect.DeepEqual(titlesOf(got), []string{"B", "C"}) {
		t.Errorf("got %v, want first two of the rotated list", titlesOf(got))
	}
	history.AssertExpectations(t)
}

func TestDeduperConsecutiveRotations(t *testing.T) {
	history := new(MockHistory)
	history.On("LastServed", mock.Anything, "item-1").Return(candidatesFromTitles("A", "B", "C"), nil).Once()
	history.On("SetLastServed", mock.Anything, "item-1", candidatesFromTitles("B", "C", "A")).Return(nil).Once()
	history.On("LastServed", mock.Anything, "item-1").Return(candidatesFromTitles("B", "C", "A"), nil).Once()
	history.On("SetLastServed", mock.Anything, "item-1", candidatesFromTitles("C", "A", "B")).Return(nil).Once()

	d := NewDeduper(history, testLogger())

	first := d.Apply(context.Background(), "item-1", nil, nil, 3)
	second := d.Apply(context.Background(), "item-1", nil, nil, 3)

	if !reflect.DeepEqual(titlesOf(first), []string{"B", "C", "A"}) {
		t.Errorf("first rotation = %v", titlesOf(first))
	}
	if !reflect.DeepEqual(titlesOf(second), []string{"C", "A", "B"}) {
		t.Errorf("second rotation = %v", titlesOf(second))
	}
	history.AssertExpectations(t)
}

func TestDeduperNoHistoryNoCandidates(t *testing.T) {
	d := NewDeduper(nil, testLogger())
	got := d.Apply(context.Background(), "item-1", nil, nil, 5)
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestDeduperAbsorbsHistoryFailures(t *testing.T) {
	history := new(MockHistory)
	history.On("LastServed", mock.Anything, "item-1").Return(nil, errors.New("redis down"))
	history.On("SetLastServed", mock.Anything, "item-1", mock.Anything).Return(errors.New("redis down"))

	d := NewDeduper(history, testLogger())

	if got := d.Apply(context.Background(), "item-1", nil, nil, 5); len(got) != 0 {
		t.Errorf("read failure: got %v, want empty", titlesOf(got))
	}

	got := d.Apply(context.Background(), "item-1", candidatesFromTitles("A"), nil, 5)
	if !reflect.DeepEqual(titlesOf(got), []string{"A"}) {
		t.Errorf("write failure should not affect the result, got %v", titlesOf(got))
	}
}
