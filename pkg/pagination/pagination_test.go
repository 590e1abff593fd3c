package pagination

import "testing"

func TestValidateClamps(t *testing.T) {
	p := &PaginationParams{Page: 0, PerPage: 500}
	p.Validate()
	if p.Page != 1 || p.PerPage != 100 {
		t.Fatalf("expected page 1 / per_page 100, got %d / %d", p.Page, p.PerPage)
	}
	if p.Offset() != 0 {
		t.Fatalf("expected offset 0, got %d", p.Offset())
	}
}

func TestNewPagination(t *testing.T) {
	pg := NewPagination(2, 15, 31)
	if pg.TotalPages != 3 || !pg.HasNext || !pg.HasPrev {
		t.Fatalf("unexpected pagination %+v", pg)
	}
	last := NewPagination(3, 15, 31)
	if last.HasNext {
		t.Fatalf("last page must not have next")
	}
}
