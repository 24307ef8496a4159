package pagination

import (
	"net/url"
	"testing"
)

func TestFromQueryDefaults(t *testing.T) {
	p := FromQuery(url.Values{})
	if p.Page != 1 || p.Limit != DefaultLimit {
		t.Fatalf("unexpected defaults page=%d limit=%d", p.Page, p.Limit)
	}
}

func TestFromQueryClampsLimit(t *testing.T) {
	values := url.Values{}
	values.Set("page", "3")
	values.Set("limit", "500")
	p := FromQuery(values)
	if p.Page != 3 {
		t.Fatalf("expected page 3, got %d", p.Page)
	}
	if p.Limit != MaxLimit {
		t.Fatalf("expected clamped limit %d, got %d", MaxLimit, p.Limit)
	}
}

func TestOffset(t *testing.T) {
	p := Params{Page: 3, Limit: 10}
	if got := p.Offset(); got != 20 {
		t.Fatalf("expected offset 20, got %d", got)
	}
	zero := Params{}
	if got := zero.Offset(); got != 0 {
		t.Fatalf("expected offset 0 for empty params, got %d", got)
	}
}

func TestNewMeta(t *testing.T) {
	meta := NewMeta(Params{Page: 2, Limit: 10}, 35)
	if meta.TotalPages != 4 {
		t.Fatalf("expected 4 pages, got %d", meta.TotalPages)
	}
	if meta.Total != 35 || meta.Page != 2 || meta.Limit != 10 {
		t.Fatalf("unexpected meta %+v", meta)
	}

	empty := NewMeta(Params{}, 0)
	if empty.TotalPages != 1 {
		t.Fatalf("expected 1 page for empty set, got %d", empty.TotalPages)
	}
}
