package resource

import (
	"fmt"

	"frostform/internal/ident"
)

// defaultOwner is the owning role assigned to most objects when the caller
// doesn't specify one.
const defaultOwner = "SYSADMIN"

// securityOwner owns roles and users by default.
const securityOwner = "USERADMIN"

// AccountSpec declares the account-defining resource. At most one may be
// staged per blueprint.
type AccountSpec struct {
	Name    string
	Edition string
	Comment string
}

// NewAccount builds the account resource.
func NewAccount(spec AccountSpec) *Resource {
	attrs := map[string]any{"name": spec.Name}
	setAttr(attrs, "edition", spec.Edition)
	setAttr(attrs, "comment", spec.Comment)
	return newResource(KindAccount, spec.Name, attrs)
}

// DatabaseSpec declares a database.
type DatabaseSpec struct {
	Name                       string
	Transient                  bool
	DataRetentionTimeInDays    *int
	MaxDataExtensionTimeInDays *int
	DefaultDDLCollation        string
	Comment                    string
	Owner                      string
	Tags                       map[string]string
}

// NewDatabase builds a database resource. Creating a database implicitly
// creates its PUBLIC schema; the implicit schema is staged as a dependency
// but never planned standalone.
func NewDatabase(spec DatabaseSpec) *Resource {
	attrs := map[string]any{
		"name":                           spec.Name,
		"transient":                      spec.Transient,
		"data_retention_time_in_days":    intOr(spec.DataRetentionTimeInDays, 1),
		"max_data_extension_time_in_days": intOr(spec.MaxDataExtensionTimeInDays, 14),
		"owner":                          stringOr(spec.Owner, defaultOwner),
	}
	setAttr(attrs, "default_ddl_collation", spec.DefaultDDLCollation)
	setAttr(attrs, "comment", spec.Comment)
	setAttr(attrs, "tags", spec.Tags)
	db := newResource(KindDatabase, spec.Name, attrs)

	public := NewSchema(SchemaSpec{Name: "PUBLIC"})
	public.implicit = true
	public.SetDatabase(db.name)
	db.Requires(public)
	return db
}

// SchemaSpec declares a schema. Database is the ancestor database name; when
// empty the blueprint default is resolved in.
type SchemaSpec struct {
	Name                       string
	Database                   string
	Transient                  bool
	ManagedAccess              bool
	DataRetentionTimeInDays    *int
	MaxDataExtensionTimeInDays *int
	Comment                    string
	Owner                      string
	Tags                       map[string]string
}

// NewSchema builds a schema resource.
func NewSchema(spec SchemaSpec) *Resource {
	attrs := map[string]any{
		"name":                           spec.Name,
		"transient":                      spec.Transient,
		"managed_access":                 spec.ManagedAccess,
		"data_retention_time_in_days":    intOr(spec.DataRetentionTimeInDays, 1),
		"max_data_extension_time_in_days": intOr(spec.MaxDataExtensionTimeInDays, 14),
		"owner":                          stringOr(spec.Owner, defaultOwner),
	}
	setAttr(attrs, "comment", spec.Comment)
	setAttr(attrs, "tags", spec.Tags)
	s := newResource(KindSchema, spec.Name, attrs)
	s.database = ident.NewResourceName(spec.Database)
	return s
}

// Column declares one table column.
type Column struct {
	Name     string `yaml:"name"`
	DataType string `yaml:"data_type"`
	Comment  string `yaml:"comment,omitempty"`
}

// TableSpec declares a table.
type TableSpec struct {
	Name      string
	Database  string
	Schema    string
	Columns   []Column
	Transient bool
	ClusterBy []string
	Comment   string
	Owner     string
	Tags      map[string]string
}

// NewTable builds a table resource. A table needs at least one column.
func NewTable(spec TableSpec) (*Resource, error) {
	if len(spec.Columns) == 0 {
		return nil, fmt.Errorf("table %s: at least one column is required", spec.Name)
	}
	cols := make([]map[string]any, 0, len(spec.Columns))
	for _, c := range spec.Columns {
		col := map[string]any{"name": c.Name, "data_type": c.DataType}
		setAttr(col, "comment", c.Comment)
		cols = append(cols, col)
	}
	attrs := map[string]any{
		"name":      spec.Name,
		"columns":   cols,
		"transient": spec.Transient,
		"owner":     stringOr(spec.Owner, defaultOwner),
	}
	setAttr(attrs, "cluster_by", spec.ClusterBy)
	setAttr(attrs, "comment", spec.Comment)
	setAttr(attrs, "tags", spec.Tags)
	t := newResource(KindTable, spec.Name, attrs)
	t.database = ident.NewResourceName(spec.Database)
	t.schema = ident.NewResourceName(spec.Schema)
	return t, nil
}

// ViewSpec declares a view. AsSelect is the defining query text.
type ViewSpec struct {
	Name     string
	Database string
	Schema   string
	AsSelect string
	Secure   bool
	Comment  string
	Owner    string
}

// NewView builds a view resource.
func NewView(spec ViewSpec) (*Resource, error) {
	if spec.AsSelect == "" {
		return nil, fmt.Errorf("view %s: defining query is required", spec.Name)
	}
	attrs := map[string]any{
		"name":   spec.Name,
		"as_":    spec.AsSelect,
		"secure": spec.Secure,
		"owner":  stringOr(spec.Owner, defaultOwner),
	}
	setAttr(attrs, "comment", spec.Comment)
	v := newResource(KindView, spec.Name, attrs)
	v.database = ident.NewResourceName(spec.Database)
	v.schema = ident.NewResourceName(spec.Schema)
	return v, nil
}

// WarehouseSpec declares a virtual warehouse.
type WarehouseSpec struct {
	Name               string
	WarehouseSize      string
	AutoSuspend        *int
	AutoResume         *bool
	InitiallySuspended bool
	Comment            string
	Owner              string
}

// NewWarehouse builds a warehouse resource.
func NewWarehouse(spec WarehouseSpec) *Resource {
	attrs := map[string]any{
		"name":           spec.Name,
		"warehouse_size": stringOr(spec.WarehouseSize, "XSMALL"),
		"auto_suspend":   intOr(spec.AutoSuspend, 600),
		"auto_resume":    boolOr(spec.AutoResume, true),
		"owner":          stringOr(spec.Owner, defaultOwner),
	}
	if spec.InitiallySuspended {
		attrs["initially_suspended"] = true
	}
	setAttr(attrs, "comment", spec.Comment)
	return newResource(KindWarehouse, spec.Name, attrs)
}

// RoleSpec declares a role.
type RoleSpec struct {
	Name    string
	Comment string
	Owner   string
	Tags    map[string]string
}

// NewRole builds a role resource.
func NewRole(spec RoleSpec) *Resource {
	attrs := map[string]any{
		"name":  spec.Name,
		"owner": stringOr(spec.Owner, securityOwner),
	}
	setAttr(attrs, "comment", spec.Comment)
	setAttr(attrs, "tags", spec.Tags)
	return newResource(KindRole, spec.Name, attrs)
}

// UserSpec declares a user.
type UserSpec struct {
	Name             string
	LoginName        string
	DisplayName      string
	Disabled         bool
	DefaultWarehouse string
	DefaultRole      string
	Comment          string
	Owner            string
}

// NewUser builds a user resource.
func NewUser(spec UserSpec) *Resource {
	attrs := map[string]any{
		"name":     spec.Name,
		"disabled": spec.Disabled,
		"owner":    stringOr(spec.Owner, securityOwner),
	}
	setAttr(attrs, "login_name", spec.LoginName)
	setAttr(attrs, "display_name", spec.DisplayName)
	setAttr(attrs, "default_warehouse", spec.DefaultWarehouse)
	setAttr(attrs, "default_role", spec.DefaultRole)
	setAttr(attrs, "comment", spec.Comment)
	return newResource(KindUser, spec.Name, attrs)
}

// TagSpec declares an object tag.
type TagSpec struct {
	Name          string
	Database      string
	Schema        string
	AllowedValues []string
	Comment       string
	Owner         string
}

// NewTag builds a tag resource.
func NewTag(spec TagSpec) *Resource {
	attrs := map[string]any{
		"name":  spec.Name,
		"owner": stringOr(spec.Owner, defaultOwner),
	}
	setAttr(attrs, "allowed_values", spec.AllowedValues)
	setAttr(attrs, "comment", spec.Comment)
	t := newResource(KindTag, spec.Name, attrs)
	t.database = ident.NewResourceName(spec.Database)
	t.schema = ident.NewResourceName(spec.Schema)
	return t
}

func stringOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func intOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
