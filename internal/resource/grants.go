package resource

import "fmt"

// GrantSpec declares a privilege grant: Priv on a securable object to a
// role. All grants to one role share a single identifier and serialize as a
// list, so any number of declarations converge under that identifier.
type GrantSpec struct {
	Priv   string
	OnType string
	On     string
	To     string
}

// NewGrant builds a privilege-grant resource.
func NewGrant(spec GrantSpec) (*Resource, error) {
	if spec.Priv == "" || spec.On == "" || spec.To == "" {
		return nil, fmt.Errorf("grant requires priv, on, and to")
	}
	attrs := map[string]any{
		"priv": spec.Priv,
		"on":   spec.On,
		"to":   spec.To,
	}
	setAttr(attrs, "on_type", spec.OnType)
	return newResource(KindGrant, spec.To, attrs), nil
}

// RoleGrantSpec declares a role membership grant. Exactly one of ToUser and
// ToRole must be set.
type RoleGrantSpec struct {
	Role   string
	ToUser string
	ToRole string
}

// NewRoleGrant builds a role-grant resource. Grants of one role collapse
// under one identifier as a list.
func NewRoleGrant(spec RoleGrantSpec) (*Resource, error) {
	if spec.Role == "" {
		return nil, fmt.Errorf("role grant requires a role")
	}
	if (spec.ToUser == "") == (spec.ToRole == "") {
		return nil, fmt.Errorf("role grant %s: exactly one of to_user and to_role must be set", spec.Role)
	}
	attrs := map[string]any{"role": spec.Role}
	setAttr(attrs, "to_user", spec.ToUser)
	setAttr(attrs, "to_role", spec.ToRole)
	return newResource(KindRoleGrant, spec.Role, attrs), nil
}
