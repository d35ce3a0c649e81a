package accesscore

import (
	"testing"

	"github.com/finovant/accesscore/policy"
)

func TestDeriveRoleFromAddress(t *testing.T) {
	keywords := defaultConfig().Bootstrap.RoleKeywords

	cases := []struct {
		address string
		want    policy.Role
	}{
		{"alice@firm.com", policy.RoleUser},
		{"ops-admin@firm.com", policy.RoleAdmin},
		{"ADMIN@firm.com", policy.RoleAdmin},
		{"lead.accountant@firm.com", policy.RoleAccountant},
		{"consultant-7@firm.com", policy.RoleAccountant},
		// The keyword must appear in the local part; a matching domain
		// alone does not escalate.
		{"alice@adminsoft.com", policy.RoleUser},
		{"", policy.RoleUser},
	}
	for _, tc := range cases {
		if got := DeriveRoleFromAddress(tc.address, keywords, policy.RoleUser); got != tc.want {
			t.Errorf("DeriveRoleFromAddress(%q) = %q, want %q", tc.address, got, tc.want)
		}
	}
}

func TestDeriveRoleKeywordOrderWins(t *testing.T) {
	keywords := []RoleKeyword{
		{Keyword: "admin", Role: policy.RoleAdmin},
		{Keyword: "accountant", Role: policy.RoleAccountant},
	}
	// Both keywords match; the first listed wins.
	if got := DeriveRoleFromAddress("admin.accountant@firm.com", keywords, policy.RoleUser); got != policy.RoleAdmin {
		t.Errorf("got %q, want admin from the first matching keyword", got)
	}
}

func TestDisplayNameFromAddress(t *testing.T) {
	cases := []struct {
		address string
		want    string
	}{
		{"jane.doe@firm.com", "Jane Doe"},
		{"jane_doe@firm.com", "Jane Doe"},
		{"jane-doe+test@firm.com", "Jane Doe Test"},
		{"ALICE@firm.com", "Alice"},
		{"bob", "Bob"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := DisplayNameFromAddress(tc.address); got != tc.want {
			t.Errorf("DisplayNameFromAddress(%q) = %q, want %q", tc.address, got, tc.want)
		}
	}
}
