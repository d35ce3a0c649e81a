package policy

// Table maps roles (or business-roles) to the actions they may perform on
// each resource. A [ResourceAny] key applies the listed actions to every
// resource; an [ActionAny] entry grants every action on that resource.
type Table[R ~string] map[R]map[Resource][]Action

// DefaultRoles returns the built-in platform role table. Callers may pass
// their own table through the engine configuration; this one matches the
// product's stock role design.
func DefaultRoles() Table[Role] {
	return Table[Role]{
		RoleAdmin: {
			ResourceAny: {ActionAny},
		},
		RoleAccountant: {
			ResourceFinancialData: {ActionCreate, ActionRead, ActionUpdate, ActionDelete},
			ResourceTransactions:  {ActionCreate, ActionRead, ActionUpdate, ActionDelete},
			ResourceReports:       {ActionCreate, ActionRead, ActionUpdate, ActionDelete},
			ResourceDocuments:     {ActionCreate, ActionRead, ActionUpdate},
			ResourceClients:       {ActionCreate, ActionRead, ActionUpdate},
			ResourceMeetings:      {ActionCreate, ActionRead, ActionUpdate},
			ResourceAnalytics:     {ActionRead},
			ResourceBilling:       {ActionRead},
		},
		RoleUser: {
			ResourceFinancialData: {ActionCreate, ActionRead, ActionUpdate},
			ResourceTransactions:  {ActionCreate, ActionRead, ActionUpdate},
			ResourceDocuments:     {ActionCreate, ActionRead},
			ResourceReports:       {ActionRead},
			ResourceMeetings:      {ActionCreate, ActionRead},
			ResourceBilling:       {ActionRead, ActionUpdate},
			ResourceBusinesses:    {ActionCreate, ActionRead, ActionUpdate},
		},
	}
}

// DefaultBusinessRoles returns the built-in per-business role table,
// consulted only for resources scoped to a business the user belongs to.
func DefaultBusinessRoles() Table[BusinessRole] {
	return Table[BusinessRole]{
		BusinessOwner: {
			ResourceAny: {ActionAny},
		},
		BusinessManager: {
			ResourceFinancialData: {ActionCreate, ActionRead, ActionUpdate},
			ResourceTransactions:  {ActionCreate, ActionRead, ActionUpdate, ActionDelete},
			ResourceReports:       {ActionCreate, ActionRead, ActionUpdate, ActionDelete},
			ResourceDocuments:     {ActionCreate, ActionRead, ActionUpdate, ActionDelete},
			ResourceMeetings:      {ActionCreate, ActionRead, ActionUpdate, ActionDelete},
			ResourceClients:       {ActionCreate, ActionRead, ActionUpdate},
			ResourceAnalytics:     {ActionRead},
		},
		BusinessEmployee: {
			ResourceFinancialData: {ActionRead},
			ResourceTransactions:  {ActionCreate, ActionRead},
			ResourceDocuments:     {ActionCreate, ActionRead},
			ResourceReports:       {ActionRead},
			ResourceMeetings:      {ActionRead},
		},
		BusinessViewer: {
			ResourceFinancialData: {ActionRead},
			ResourceTransactions:  {ActionRead},
			ResourceReports:       {ActionRead},
			ResourceDocuments:     {ActionRead},
			ResourceAnalytics:     {ActionRead},
		},
	}
}

// DefaultFeatureTiers returns the stock feature list per tier. Each tier
// repeats everything below it; [NewGate] rejects any table where that
// superset chain is broken.
func DefaultFeatureTiers() map[Tier][]string {
	free := []string{
		"dashboard",
		"transactions_basic",
		"documents_basic",
	}
	basic := append(append([]string{}, free...),
		"reports_standard",
		"meetings",
		"export_csv",
	)
	premium := append(append([]string{}, basic...),
		"analytics",
		"reports_custom",
		"ai_assistant",
		"priority_support",
	)
	enterprise := append(append([]string{}, premium...),
		"multi_business",
		"audit_log",
		"sso",
		"dedicated_support",
	)

	return map[Tier][]string{
		TierFree:       free,
		TierBasic:      basic,
		TierPremium:    premium,
		TierEnterprise: enterprise,
	}
}
