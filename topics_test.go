package scitech

import "testing"

func TestFallbackTopicsReturnsCopy(t *testing.T) {
	topics := FallbackTopics()
	if len(topics) != 4 {
		t.Fatalf("want 4 fallback topics, got %d", len(topics))
	}
	topics[0].Title = "changed"
	if FallbackTopics()[0].Title == "changed" {
		t.Fatalf("FallbackTopics must return a copy")
	}
	if checked := CheckTopics(FallbackTopics()); len(checked) != len(topics) || checked[0].ID != "states-of-matter" {
		t.Fatalf("fallback topics must already be clean: %+v", checked)
	}
}

func TestFilterTopics(t *testing.T) {
	topics := []Topic{
		{ID: "a", Title: "Solar System", Description: "planets"},
		{ID: "b", Title: "מעגלים חשמליים", Description: "סוללה ונורה"},
		{ID: "c", Title: "Cells", Description: "The SOLAR powered cell"},
	}

	if got := FilterTopics(topics, "  "); len(got) != 3 {
		t.Fatalf("empty term must keep everything, got %d", len(got))
	}
	got := FilterTopics(topics, "solar")
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Fatalf("case-insensitive match on title or description failed: %+v", got)
	}
	if got := FilterTopics(topics, "נורה"); len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("hebrew match failed: %+v", got)
	}
	if got := FilterTopics(topics, "volcano"); len(got) != 0 {
		t.Fatalf("expected no match, got %+v", got)
	}
}

func TestFindTopic(t *testing.T) {
	topic, ok := FindTopic(FallbackTopics(), "solar-system")
	if !ok || topic.Title != "מערכת השמש" {
		t.Fatalf("FindTopic: ok=%v topic=%+v", ok, topic)
	}
	if _, ok := FindTopic(FallbackTopics(), "missing"); ok {
		t.Fatalf("expected missing topic")
	}
}
