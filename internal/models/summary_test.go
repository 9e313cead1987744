package models

import "testing"

func TestSummaryCounters(t *testing.T) {
	s := &Summary{
		Results: []TenantResult{
			{Tenant: "a", Status: StatusSuccess},
			{Tenant: "b", Status: StatusError, Error: "search failed"},
			{Tenant: "c", Status: StatusSuccess},
			{Tenant: "d", Status: StatusNoData},
		},
	}

	if got := s.CountByStatus(StatusSuccess); got != 2 {
		t.Fatalf("CountByStatus(success) = %d, want 2", got)
	}
	if got := s.CountByStatus(StatusError); got != 1 {
		t.Fatalf("CountByStatus(error) = %d, want 1", got)
	}
	if got := s.CountByStatus(StatusNoData); got != 1 {
		t.Fatalf("CountByStatus(no_data) = %d, want 1", got)
	}
	if !s.Succeeded() {
		t.Fatalf("summary with a success tenant must report Succeeded")
	}

	empty := &Summary{Results: []TenantResult{{Tenant: "x", Status: StatusError}}}
	if empty.Succeeded() {
		t.Fatalf("summary without success tenants must not report Succeeded")
	}
}
