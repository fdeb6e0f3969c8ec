// Package config loads a declarative project document from YAML and builds
// the resource graph it describes.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"frostform/internal/blueprint"
	"frostform/internal/resource"
)

// Document header values every project file must carry.
const (
	SupportedAPIVersion = "frostform/v1"
	KindNameProject     = "Project"
)

// Project is the root document of a declarative configuration file.
type Project struct {
	APIVersion string `yaml:"apiVersion"`
	Kind       string `yaml:"kind"`
	Name       string `yaml:"name"`

	Organization string `yaml:"organization,omitempty"`
	Account      string `yaml:"account,omitempty"`
	Database     string `yaml:"database,omitempty"`
	Schema       string `yaml:"schema,omitempty"`

	Databases  []DatabaseDoc  `yaml:"databases,omitempty"`
	Warehouses []WarehouseDoc `yaml:"warehouses,omitempty"`
	Roles      []RoleDoc      `yaml:"roles,omitempty"`
	Users      []UserDoc      `yaml:"users,omitempty"`
	Grants     []GrantDoc     `yaml:"grants,omitempty"`
	RoleGrants []RoleGrantDoc `yaml:"role_grants,omitempty"`
	Alerts     []AlertDoc     `yaml:"alerts,omitempty"`
	Tasks      []TaskDoc      `yaml:"tasks,omitempty"`
}

// DatabaseDoc declares a database and, nested, its schemas.
type DatabaseDoc struct {
	Name                    string            `yaml:"name"`
	Transient               bool              `yaml:"transient,omitempty"`
	DataRetentionTimeInDays *int              `yaml:"data_retention_time_in_days,omitempty"`
	Comment                 string            `yaml:"comment,omitempty"`
	Owner                   string            `yaml:"owner,omitempty"`
	Tags                    map[string]string `yaml:"tags,omitempty"`
	Schemas                 []SchemaDoc       `yaml:"schemas,omitempty"`
}

// SchemaDoc declares a schema and its nested objects.
type SchemaDoc struct {
	Name          string     `yaml:"name"`
	Transient     bool       `yaml:"transient,omitempty"`
	ManagedAccess bool       `yaml:"managed_access,omitempty"`
	Comment       string     `yaml:"comment,omitempty"`
	Owner         string     `yaml:"owner,omitempty"`
	Tables        []TableDoc `yaml:"tables,omitempty"`
	Views         []ViewDoc  `yaml:"views,omitempty"`
}

// TableDoc declares a table.
type TableDoc struct {
	Name      string            `yaml:"name"`
	Columns   []resource.Column `yaml:"columns"`
	Transient bool              `yaml:"transient,omitempty"`
	ClusterBy []string          `yaml:"cluster_by,omitempty"`
	Comment   string            `yaml:"comment,omitempty"`
	Owner     string            `yaml:"owner,omitempty"`
}

// ViewDoc declares a view.
type ViewDoc struct {
	Name     string `yaml:"name"`
	AsSelect string `yaml:"as_select"`
	Secure   bool   `yaml:"secure,omitempty"`
	Comment  string `yaml:"comment,omitempty"`
	Owner    string `yaml:"owner,omitempty"`
}

// WarehouseDoc declares a virtual warehouse.
type WarehouseDoc struct {
	Name               string `yaml:"name"`
	WarehouseSize      string `yaml:"warehouse_size,omitempty"`
	AutoSuspend        *int   `yaml:"auto_suspend,omitempty"`
	AutoResume         *bool  `yaml:"auto_resume,omitempty"`
	InitiallySuspended bool   `yaml:"initially_suspended,omitempty"`
	Comment            string `yaml:"comment,omitempty"`
	Owner              string `yaml:"owner,omitempty"`
}

// RoleDoc declares a role.
type RoleDoc struct {
	Name    string `yaml:"name"`
	Comment string `yaml:"comment,omitempty"`
	Owner   string `yaml:"owner,omitempty"`
}

// UserDoc declares a user.
type UserDoc struct {
	Name             string `yaml:"name"`
	LoginName        string `yaml:"login_name,omitempty"`
	DisplayName      string `yaml:"display_name,omitempty"`
	Disabled         bool   `yaml:"disabled,omitempty"`
	DefaultWarehouse string `yaml:"default_warehouse,omitempty"`
	DefaultRole      string `yaml:"default_role,omitempty"`
	Comment          string `yaml:"comment,omitempty"`
}

// GrantDoc declares a privilege grant.
type GrantDoc struct {
	Priv   string `yaml:"priv"`
	OnType string `yaml:"on_type,omitempty"`
	On     string `yaml:"on"`
	To     string `yaml:"to"`
}

// RoleGrantDoc declares a role membership grant.
type RoleGrantDoc struct {
	Role   string `yaml:"role"`
	ToUser string `yaml:"to_user,omitempty"`
	ToRole string `yaml:"to_role,omitempty"`
}

// AlertDoc declares an alert. Warehouse names a warehouse declared in the
// same document.
type AlertDoc struct {
	Name      string `yaml:"name"`
	Warehouse string `yaml:"warehouse"`
	Schedule  string `yaml:"schedule,omitempty"`
	Condition string `yaml:"condition"`
	Then      string `yaml:"then"`
	Comment   string `yaml:"comment,omitempty"`
	Database  string `yaml:"database,omitempty"`
	Schema    string `yaml:"schema,omitempty"`
}

// TaskDoc declares a scheduled task. Warehouse is optional.
type TaskDoc struct {
	Name      string `yaml:"name"`
	Warehouse string `yaml:"warehouse,omitempty"`
	Schedule  string `yaml:"schedule,omitempty"`
	AsSQL     string `yaml:"as_sql"`
	Comment   string `yaml:"comment,omitempty"`
	Database  string `yaml:"database,omitempty"`
	Schema    string `yaml:"schema,omitempty"`
}

// Load reads, strictly decodes, and validates a project file.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse decodes a project document. Unknown fields are rejected; path is
// used in error messages only.
func Parse(path string, data []byte) (*Project, error) {
	var project Project
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&project); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if project.APIVersion != SupportedAPIVersion {
		return nil, fmt.Errorf("%s: unsupported apiVersion %q (expected %q)", path, project.APIVersion, SupportedAPIVersion)
	}
	if project.Kind != KindNameProject {
		return nil, fmt.Errorf("%s: unexpected kind %q (expected %q)", path, project.Kind, KindNameProject)
	}
	if project.Name == "" {
		return nil, fmt.Errorf("%s: project name is required", path)
	}
	return &project, nil
}

// Build constructs the resource graph the project declares and stages it
// into a blueprint. Alerts and tasks resolve their warehouse by name against
// the warehouses declared in the same document.
func (p *Project) Build() (*blueprint.Blueprint, error) {
	bp := blueprint.New(p.Name, blueprint.Context{
		Organization: p.Organization,
		Account:      p.Account,
		Database:     p.Database,
		Schema:       p.Schema,
	})

	warehouses := make(map[string]*resource.Resource, len(p.Warehouses))
	for _, doc := range p.Warehouses {
		wh := resource.NewWarehouse(resource.WarehouseSpec{
			Name:               doc.Name,
			WarehouseSize:      doc.WarehouseSize,
			AutoSuspend:        doc.AutoSuspend,
			AutoResume:         doc.AutoResume,
			InitiallySuspended: doc.InitiallySuspended,
			Comment:            doc.Comment,
			Owner:              doc.Owner,
		})
		warehouses[doc.Name] = wh
		if err := bp.Add(wh); err != nil {
			return nil, err
		}
	}

	for _, doc := range p.Databases {
		db := resource.NewDatabase(resource.DatabaseSpec{
			Name:                    doc.Name,
			Transient:               doc.Transient,
			DataRetentionTimeInDays: doc.DataRetentionTimeInDays,
			Comment:                 doc.Comment,
			Owner:                   doc.Owner,
			Tags:                    doc.Tags,
		})
		if err := bp.Add(db); err != nil {
			return nil, err
		}
		for _, schemaDoc := range doc.Schemas {
			if err := buildSchema(bp, db, doc.Name, schemaDoc); err != nil {
				return nil, err
			}
		}
	}

	for _, doc := range p.Roles {
		role := resource.NewRole(resource.RoleSpec{
			Name:    doc.Name,
			Comment: doc.Comment,
			Owner:   doc.Owner,
		})
		if err := bp.Add(role); err != nil {
			return nil, err
		}
	}

	for _, doc := range p.Users {
		user := resource.NewUser(resource.UserSpec{
			Name:             doc.Name,
			LoginName:        doc.LoginName,
			DisplayName:      doc.DisplayName,
			Disabled:         doc.Disabled,
			DefaultWarehouse: doc.DefaultWarehouse,
			DefaultRole:      doc.DefaultRole,
			Comment:          doc.Comment,
		})
		if err := bp.Add(user); err != nil {
			return nil, err
		}
	}

	for _, doc := range p.Grants {
		grant, err := resource.NewGrant(resource.GrantSpec{
			Priv:   doc.Priv,
			OnType: doc.OnType,
			On:     doc.On,
			To:     doc.To,
		})
		if err != nil {
			return nil, err
		}
		if err := bp.Add(grant); err != nil {
			return nil, err
		}
	}

	for _, doc := range p.RoleGrants {
		rg, err := resource.NewRoleGrant(resource.RoleGrantSpec{
			Role:   doc.Role,
			ToUser: doc.ToUser,
			ToRole: doc.ToRole,
		})
		if err != nil {
			return nil, err
		}
		if err := bp.Add(rg); err != nil {
			return nil, err
		}
	}

	for _, doc := range p.Alerts {
		wh, ok := warehouses[doc.Warehouse]
		if !ok {
			return nil, fmt.Errorf("alert %s: warehouse %q is not declared", doc.Name, doc.Warehouse)
		}
		alert, err := resource.NewAlert(resource.AlertSpec{
			Name:      doc.Name,
			Warehouse: wh,
			Schedule:  doc.Schedule,
			Condition: doc.Condition,
			Then:      doc.Then,
			Comment:   doc.Comment,
			Database:  doc.Database,
			Schema:    doc.Schema,
		})
		if err != nil {
			return nil, err
		}
		if err := bp.Add(alert); err != nil {
			return nil, err
		}
	}

	for _, doc := range p.Tasks {
		var wh *resource.Resource
		if doc.Warehouse != "" {
			var ok bool
			if wh, ok = warehouses[doc.Warehouse]; !ok {
				return nil, fmt.Errorf("task %s: warehouse %q is not declared", doc.Name, doc.Warehouse)
			}
		}
		task, err := resource.NewTask(resource.TaskSpec{
			Name:      doc.Name,
			Warehouse: wh,
			Schedule:  doc.Schedule,
			AsSQL:     doc.AsSQL,
			Comment:   doc.Comment,
			Database:  doc.Database,
			Schema:    doc.Schema,
		})
		if err != nil {
			return nil, err
		}
		if err := bp.Add(task); err != nil {
			return nil, err
		}
	}

	return bp, nil
}

func buildSchema(bp *blueprint.Blueprint, db *resource.Resource, dbName string, doc SchemaDoc) error {
	schema := resource.NewSchema(resource.SchemaSpec{
		Name:          doc.Name,
		Database:      dbName,
		Transient:     doc.Transient,
		ManagedAccess: doc.ManagedAccess,
		Comment:       doc.Comment,
		Owner:         doc.Owner,
	})
	schema.Requires(db)
	if err := bp.Add(schema); err != nil {
		return err
	}

	for _, tableDoc := range doc.Tables {
		table, err := resource.NewTable(resource.TableSpec{
			Name:      tableDoc.Name,
			Database:  dbName,
			Schema:    doc.Name,
			Columns:   tableDoc.Columns,
			Transient: tableDoc.Transient,
			ClusterBy: tableDoc.ClusterBy,
			Comment:   tableDoc.Comment,
			Owner:     tableDoc.Owner,
		})
		if err != nil {
			return err
		}
		table.Requires(schema)
		if err := bp.Add(table); err != nil {
			return err
		}
	}

	for _, viewDoc := range doc.Views {
		view, err := resource.NewView(resource.ViewSpec{
			Name:     viewDoc.Name,
			Database: dbName,
			Schema:   doc.Name,
			AsSelect: viewDoc.AsSelect,
			Secure:   viewDoc.Secure,
			Comment:  viewDoc.Comment,
			Owner:    viewDoc.Owner,
		})
		if err != nil {
			return err
		}
		view.Requires(schema)
		if err := bp.Add(view); err != nil {
			return err
		}
	}
	return nil
}
