package policy

// Role is a platform-wide role held by exactly one user. It is immutable
// once a session is established; changing it is an administrative action
// that invalidates the cached session.
//
// The canonical enumeration is user/accountant/admin. The legacy schema
// used "client" where application code used "user", and some paths added
// "consultant"; [ParseRole] folds both aliases into the canonical values
// so records written by either vocabulary still resolve.
type Role string

const (
	// RoleUser is the standard non-privileged role.
	RoleUser Role = "user"
	// RoleAccountant is the practitioner role with broad read/write access
	// to client financial data.
	RoleAccountant Role = "accountant"
	// RoleAdmin is the platform administrator role. It bypasses all
	// permission tables.
	RoleAdmin Role = "admin"
)

// ParseRole resolves a stored role string to its canonical [Role].
// Legacy aliases: "client" → user, "consultant" → accountant.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser, RoleAccountant, RoleAdmin:
		return Role(s), true
	}
	switch s {
	case "client":
		return RoleUser, true
	case "consultant":
		return RoleAccountant, true
	}
	return "", false
}

// Valid reports whether r is one of the canonical roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAccountant || r == RoleAdmin
}

// BusinessRole is a role scoped to exactly one (user, business) pair.
// Only the business-role for the currently selected business is consulted.
type BusinessRole string

const (
	// BusinessOwner is an exported business-role constant.
	BusinessOwner BusinessRole = "owner"
	// BusinessManager is an exported business-role constant.
	BusinessManager BusinessRole = "manager"
	// BusinessEmployee is an exported business-role constant.
	BusinessEmployee BusinessRole = "employee"
	// BusinessViewer is an exported business-role constant.
	BusinessViewer BusinessRole = "viewer"
)

// Valid reports whether b is a known business-role.
func (b BusinessRole) Valid() bool {
	switch b {
	case BusinessOwner, BusinessManager, BusinessEmployee, BusinessViewer:
		return true
	}
	return false
}

// Resource identifies a protected collection.
type Resource string

const (
	// ResourceFinancialData is an exported resource constant.
	ResourceFinancialData Resource = "financial_data"
	// ResourceTransactions is an exported resource constant.
	ResourceTransactions Resource = "transactions"
	// ResourceReports is an exported resource constant.
	ResourceReports Resource = "reports"
	// ResourceDocuments is an exported resource constant.
	ResourceDocuments Resource = "documents"
	// ResourceMeetings is an exported resource constant.
	ResourceMeetings Resource = "meetings"
	// ResourceBilling is an exported resource constant.
	ResourceBilling Resource = "billing"
	// ResourceClients is an exported resource constant.
	ResourceClients Resource = "clients"
	// ResourceBusinesses is an exported resource constant.
	ResourceBusinesses Resource = "businesses"
	// ResourceUsers is an exported resource constant.
	ResourceUsers Resource = "users"
	// ResourceSystem is an exported resource constant.
	ResourceSystem Resource = "system"
	// ResourceAnalytics is an exported resource constant.
	ResourceAnalytics Resource = "analytics"
	// ResourceAny is the wildcard resource. A table entry keyed by it
	// applies to every resource.
	ResourceAny Resource = "*"
)

// Action is a CRUD verb, plus a wildcard.
type Action string

const (
	// ActionCreate is an exported action constant.
	ActionCreate Action = "create"
	// ActionRead is an exported action constant.
	ActionRead Action = "read"
	// ActionUpdate is an exported action constant.
	ActionUpdate Action = "update"
	// ActionDelete is an exported action constant.
	ActionDelete Action = "delete"
	// ActionAny is the wildcard action. A table entry containing it grants
	// every action on that resource.
	ActionAny Action = "*"
)

// Actions lists the concrete (non-wildcard) actions in evaluation order.
// AllowedActions results follow this order.
func Actions() []Action {
	return []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}
}

// Tier is a subscription tier. Tiers are totally ordered and each tier's
// feature set is a strict superset of the tier below it.
type Tier string

const (
	// TierFree is an exported tier constant.
	TierFree Tier = "free"
	// TierBasic is an exported tier constant.
	TierBasic Tier = "basic"
	// TierPremium is an exported tier constant.
	TierPremium Tier = "premium"
	// TierEnterprise is an exported tier constant.
	TierEnterprise Tier = "enterprise"
)

// Tiers lists all tiers in ascending rank order.
func Tiers() []Tier {
	return []Tier{TierFree, TierBasic, TierPremium, TierEnterprise}
}

// Rank returns the tier's position in the ordering, or -1 for an unknown
// tier.
func (t Tier) Rank() int {
	switch t {
	case TierFree:
		return 0
	case TierBasic:
		return 1
	case TierPremium:
		return 2
	case TierEnterprise:
		return 3
	}
	return -1
}

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	return t.Rank() >= 0
}
