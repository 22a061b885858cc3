package llm

import (
	"context"
	"reflect"
	"strings"
	"testing"
)

func TestExtractSummary(t *testing.T) {
	content := `A sweeping space opera about empire and memory.

- Science Fiction
- Politics
* Memory`

	summary, tags, err := extractSummary(content)
	if err != nil {
		t.Fatalf("extractSummary: %v", err)
	}
	if summary != "A sweeping space opera about empire and memory." {
		t.Errorf("summary = %q", summary)
	}
	want := []string{"science fiction", "politics", "memory"}
	if !reflect.DeepEqual(tags, want) {
		t.Errorf("tags = %v, want %v", tags, want)
	}
}

func TestExtractSummaryTagCap(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("Summary line.\n")
	for i := 0; i < 20; i++ {
		sb.WriteString("- tag\n")
	}
	_, tags, err := extractSummary(sb.String())
	if err != nil {
		t.Fatalf("extractSummary: %v", err)
	}
	if len(tags) != maxTags {
		t.Errorf("len(tags) = %d, want %d", len(tags), maxTags)
	}
}

func TestStubSummarize(t *testing.T) {
	c := NewStubClient()
	summary, tags, err := c.Summarize(context.Background(), "The   Dispossessed. An anarchist physicist leaves his moon.")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if !strings.HasPrefix(summary, "The Dispossessed. An anarchist physicist") {
		t.Errorf("summary = %q", summary)
	}
	if len(tags) == 0 || len(tags) > stubTagLimit {
		t.Errorf("tags = %v", tags)
	}
	for _, tag := range tags {
		if tag != strings.ToLower(tag) {
			t.Errorf("tag %q not lower-cased", tag)
		}
		if strings.ContainsAny(tag, ".,;:!?") {
			t.Errorf("tag %q not trimmed of punctuation", tag)
		}
	}
}

func TestStubSummarizeTruncates(t *testing.T) {
	c := NewStubClient()
	long := strings.Repeat("word ", 200)
	summary, _, err := c.Summarize(context.Background(), long)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if len(summary) > stubSummaryLimit {
		t.Errorf("summary length = %d, want <= %d", len(summary), stubSummaryLimit)
	}
}
