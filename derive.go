package accesscore

import (
	"strings"

	"github.com/finovant/accesscore/policy"
)

// RoleKeyword maps an address substring to a role for the fallback
// derivation path. Keywords are checked in slice order; the first match
// wins, so more privileged keywords should come first.
type RoleKeyword struct {
	Keyword string
	Role    policy.Role
}

// DeriveRoleFromAddress infers a platform role from a sign-in address by
// substring match against the address's local part, falling back to the
// given default. It exists so the naming-convention inference, a fallback
// used only when the record store cannot answer, stays an isolated pure
// function rather than leaking into the state machine. Treat it as a
// design smell to be replaced, not a source of truth.
func DeriveRoleFromAddress(address string, keywords []RoleKeyword, fallback policy.Role) policy.Role {
	local := strings.ToLower(localPart(address))
	for _, kw := range keywords {
		if kw.Keyword == "" {
			continue
		}
		if strings.Contains(local, strings.ToLower(kw.Keyword)) {
			return kw.Role
		}
	}
	return fallback
}

// DisplayNameFromAddress derives a human-readable display name from the
// address's local part: separators become spaces and each word is
// capitalized ("jane.doe@firm.com" → "Jane Doe").
func DisplayNameFromAddress(address string) string {
	local := localPart(address)
	if local == "" {
		return ""
	}

	words := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

func localPart(address string) string {
	address = strings.TrimSpace(address)
	if at := strings.IndexByte(address, '@'); at >= 0 {
		return address[:at]
	}
	return address
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
