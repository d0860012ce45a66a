package pagination

import "testing"

func TestBuildPageInfoTenByThree(t *testing.T) {
	cases := []struct {
		page    int
		hasNext bool
		hasPrev bool
	}{
		{page: 1, hasNext: true, hasPrev: false},
		{page: 2, hasNext: true, hasPrev: true},
		{page: 3, hasNext: true, hasPrev: true},
		{page: 4, hasNext: false, hasPrev: true},
	}

	for _, tc := range cases {
		info := BuildPageInfo(Pagination{Page: tc.page, Limit: 3}, 10)
		if info.TotalPages != 4 {
			t.Fatalf("page %d: expected 4 total pages, got %d", tc.page, info.TotalPages)
		}
		if info.HasNext != tc.hasNext {
			t.Fatalf("page %d: expected hasNext %v, got %v", tc.page, tc.hasNext, info.HasNext)
		}
		if info.HasPrev != tc.hasPrev {
			t.Fatalf("page %d: expected hasPrev %v, got %v", tc.page, tc.hasPrev, info.HasPrev)
		}
	}
}

func TestBuildPageInfoEmpty(t *testing.T) {
	info := BuildPageInfo(Pagination{Page: 1, Limit: 20}, 0)
	if info.TotalPages != 0 || info.HasNext || info.HasPrev {
		t.Fatalf("unexpected page info for empty result: %+v", info)
	}
}

func TestNormalize(t *testing.T) {
	p := Pagination{Page: 0, Limit: 1000}.Normalize()
	if p.Page != 1 || p.Limit != MaxLimit {
		t.Fatalf("unexpected normalized pagination: %+v", p)
	}
	if got := (Pagination{Page: 3, Limit: 20}).Offset(); got != 40 {
		t.Fatalf("expected offset 40, got %d", got)
	}
}

func TestNormalizeDefaults(t *testing.T) {
	p := Pagination{}.Normalize()
	if p.Page != 1 || p.Limit != 20 {
		t.Fatalf("expected page 1 limit 20, got %+v", p)
	}
}
