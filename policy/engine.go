package policy

import (
	"errors"
	"sort"
)

// Context is the request-scoped input to a permission evaluation. It is
// constructed fresh per evaluation from the current session, never mutated,
// and never persisted.
type Context struct {
	// SubjectID is the caller's external identity subject id.
	SubjectID string
	// Role is the caller's platform role.
	Role Role
	// BusinessRole is the caller's role in the currently selected business,
	// empty when no business is selected.
	BusinessRole BusinessRole
	// IsOwner reports whether the caller owns the business the evaluated
	// resource belongs to.
	IsOwner bool
	// ActiveBusinessID is the currently selected business, empty when none.
	ActiveBusinessID string
	// Tier is the caller's subscription tier.
	Tier Tier
	// BusinessIDs is the set of businesses the caller belongs to.
	BusinessIDs []string
}

type actionSet map[Action]struct{}

// Engine evaluates (resource, action) requests against frozen role and
// business-role tables. Construct with [NewEngine]; safe for concurrent use.
type Engine struct {
	roles         map[Role]map[Resource]actionSet
	businessRoles map[BusinessRole]map[Resource]actionSet
}

// NewEngine builds an [Engine] from the given tables. Nil tables fall back
// to the defaults. Table keys are validated so a typoed role or resource is
// caught at construction rather than silently denying forever.
func NewEngine(roles Table[Role], businessRoles Table[BusinessRole]) (*Engine, error) {
	if roles == nil {
		roles = DefaultRoles()
	}
	if businessRoles == nil {
		businessRoles = DefaultBusinessRoles()
	}

	compiledRoles, err := compile(roles, Role.Valid)
	if err != nil {
		return nil, err
	}
	compiledBusiness, err := compile(businessRoles, BusinessRole.Valid)
	if err != nil {
		return nil, err
	}

	return &Engine{
		roles:         compiledRoles,
		businessRoles: compiledBusiness,
	}, nil
}

func compile[R ~string](table Table[R], valid func(R) bool) (map[R]map[Resource]actionSet, error) {
	out := make(map[R]map[Resource]actionSet, len(table))
	for role, grants := range table {
		if !valid(role) {
			return nil, errors.New("policy: unknown role in table: " + string(role))
		}
		compiled := make(map[Resource]actionSet, len(grants))
		for res, actions := range grants {
			if !knownResource(res) {
				return nil, errors.New("policy: unknown resource in table: " + string(res))
			}
			set := make(actionSet, len(actions))
			for _, a := range actions {
				if !knownAction(a) {
					return nil, errors.New("policy: unknown action in table: " + string(a))
				}
				set[a] = struct{}{}
			}
			compiled[res] = set
		}
		out[role] = compiled
	}
	return out, nil
}

func knownResource(r Resource) bool {
	switch r {
	case ResourceFinancialData, ResourceTransactions, ResourceReports,
		ResourceDocuments, ResourceMeetings, ResourceBilling, ResourceClients,
		ResourceBusinesses, ResourceUsers, ResourceSystem, ResourceAnalytics,
		ResourceAny:
		return true
	}
	return false
}

func knownAction(a Action) bool {
	switch a {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionAny:
		return true
	}
	return false
}

// Allowed reports whether the context may perform action on resource.
// ownerID and businessID are optional facts about the specific resource
// instance; pass "" when unknown. Checks run in precedence order and
// short-circuit at the first grant:
//
//  1. admin bypass
//  2. ownership (ownerID matches the caller and IsOwner is set)
//  3. business-role grant (businessID is one of the caller's businesses
//     and a business-role is present)
//  4. global role grant (exact entry, action wildcard, or wildcard resource)
//
// Anything else is a deny. Unknown vocabulary never grants and never panics.
func (e *Engine) Allowed(ctx Context, resource Resource, action Action, ownerID, businessID string) bool {
	if ctx.Role == RoleAdmin {
		return true
	}

	if ownerID != "" && ownerID == ctx.SubjectID && ctx.IsOwner {
		return true
	}

	if businessID != "" && ctx.BusinessRole != "" && containsID(ctx.BusinessIDs, businessID) {
		if grants(e.businessRoles[ctx.BusinessRole], resource, action) {
			return true
		}
	}

	return grants(e.roles[ctx.Role], resource, action)
}

// AllowedActions returns the set of actions the role may perform on
// resource under the role-only evaluation. Ownership and business-role
// facts are ignored, since affordance hints are computed before a specific
// resource instance is known. The result is consistent with [Engine.Allowed]
// called with empty facts.
func (e *Engine) AllowedActions(role Role, resource Resource) []Action {
	var out []Action
	for _, a := range Actions() {
		if e.Allowed(Context{Role: role}, resource, a, "", "") {
			out = append(out, a)
		}
	}
	return out
}

// grants checks one compiled table. A nil table (unknown role) misses
// every lookup.
func grants(table map[Resource]actionSet, resource Resource, action Action) bool {
	if set, ok := table[resource]; ok {
		if _, ok := set[action]; ok && action != ActionAny {
			return true
		}
		if _, ok := set[ActionAny]; ok {
			return true
		}
	}
	if set, ok := table[ResourceAny]; ok {
		if _, ok := set[action]; ok && action != ActionAny {
			return true
		}
		if _, ok := set[ActionAny]; ok {
			return true
		}
	}
	return false
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Roles returns the roles present in the compiled role table, sorted.
// Used by configuration validation.
func (e *Engine) Roles() []Role {
	out := make([]Role, 0, len(e.roles))
	for r := range e.roles {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
