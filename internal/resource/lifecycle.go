package resource

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"frostform/internal/ddl"
	"frostform/internal/ident"
)

// ErrMissingLifecycleHandler is returned when a kind lacks the lifecycle
// handler an action requires. It signals a catalog defect, not user error.
var ErrMissingLifecycleHandler = errors.New("missing lifecycle handler")

// renderFunc renders one DDL statement for a resource path and its
// attribute data.
type renderFunc func(fqn ident.FQN, data map[string]any) (string, error)

// handler is the per-kind dispatch record: scope kind, list serialization,
// lifecycle renderers, and the set of fields the kind can alter or fetch.
type handler struct {
	scope     ScopeKind
	list      bool
	create    renderFunc
	update    renderFunc
	remove    renderFunc
	fetchable map[string]bool
}

// handlers is the lifecycle dispatch table, populated once and never
// mutated afterward.
var handlers = map[Kind]handler{
	KindAccount: {
		scope:     ScopeOrganization,
		create:    createAccount,
		update:    alterSet("ACCOUNT"),
		remove:    dropStatement("ACCOUNT"),
		fetchable: fields("comment"),
	},
	KindDatabase: {
		scope:  ScopeAccount,
		create: createDatabase,
		update: alterSet("DATABASE"),
		remove: dropStatement("DATABASE"),
		fetchable: fields("comment", "data_retention_time_in_days",
			"max_data_extension_time_in_days", "default_ddl_collation", "owner"),
	},
	KindSchema: {
		scope:  ScopeDatabase,
		create: createSchema,
		update: alterSet("SCHEMA"),
		remove: dropStatement("SCHEMA"),
		fetchable: fields("comment", "data_retention_time_in_days",
			"max_data_extension_time_in_days", "managed_access", "owner"),
	},
	KindTable: {
		scope:     ScopeSchema,
		create:    createTable,
		update:    alterSet("TABLE"),
		remove:    dropStatement("TABLE"),
		fetchable: fields("comment", "cluster_by", "owner"),
	},
	KindView: {
		scope:     ScopeSchema,
		create:    createView,
		update:    alterSet("VIEW"),
		remove:    dropStatement("VIEW"),
		fetchable: fields("comment", "secure", "owner"),
	},
	KindWarehouse: {
		scope:  ScopeAccount,
		create: createWarehouse,
		update: alterSet("WAREHOUSE"),
		remove: dropStatement("WAREHOUSE"),
		fetchable: fields("warehouse_size", "auto_suspend", "auto_resume",
			"comment", "owner"),
	},
	KindRole: {
		scope:     ScopeAccount,
		create:    createRole,
		update:    alterSet("ROLE"),
		remove:    dropStatement("ROLE"),
		fetchable: fields("comment", "owner"),
	},
	KindUser: {
		scope:  ScopeAccount,
		create: createUser,
		update: alterSet("USER"),
		remove: dropStatement("USER"),
		fetchable: fields("login_name", "display_name", "disabled",
			"default_warehouse", "default_role", "comment", "owner"),
	},
	KindGrant: {
		scope:  ScopeAccount,
		list:   true,
		create: createGrant,
		remove: removeGrant,
	},
	KindRoleGrant: {
		scope:  ScopeAccount,
		list:   true,
		create: createRoleGrant,
		remove: removeRoleGrant,
	},
	KindAlert: {
		scope:     ScopeSchema,
		create:    createAlert,
		update:    alterSet("ALERT"),
		remove:    dropStatement("ALERT"),
		fetchable: fields("warehouse", "schedule", "condition", "then", "comment", "owner"),
	},
	KindSecret: {
		scope:  ScopeSchema,
		create: createSecret,
		update: alterSet("SECRET"),
		remove: dropStatement("SECRET"),
		// password and secret_string are write-only and never planned.
		fetchable: fields("username", "comment", "owner"),
	},
	KindStream: {
		scope:  ScopeSchema,
		create: createStream,
		update: alterSet("STREAM"),
		remove: dropStatement("STREAM"),
		// append_only and show_initial_rows trigger replacement, not ALTER.
		fetchable: fields("comment", "owner"),
	},
	KindTag: {
		scope:     ScopeSchema,
		create:    createTag,
		update:    alterSet("TAG"),
		remove:    dropStatement("TAG"),
		fetchable: fields("comment", "allowed_values", "owner"),
	},
	KindTask: {
		scope:     ScopeSchema,
		create:    createTask,
		update:    alterSet("TASK"),
		remove:    dropStatement("TASK"),
		fetchable: fields("warehouse", "schedule", "as_", "comment", "owner"),
	},
}

func fields(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// ScopeOf returns the scope kind for a resource kind tag.
func ScopeOf(k Kind) ScopeKind {
	return handlers[k].scope
}

// SerializesAsList reports whether the kind collapses multiple instances
// under one identifier as a list.
func SerializesAsList(k Kind) bool {
	return handlers[k].list
}

// RenderCreate renders the create-lifecycle DDL for a kind.
func RenderCreate(k Kind, fqn ident.FQN, data map[string]any) (string, error) {
	h, ok := handlers[k]
	if !ok || h.create == nil {
		return "", fmt.Errorf("%w: %s has no create handler", ErrMissingLifecycleHandler, k)
	}
	return h.create(fqn, data)
}

// RenderUpdate renders the update-lifecycle DDL for a kind.
func RenderUpdate(k Kind, fqn ident.FQN, data map[string]any) (string, error) {
	h, ok := handlers[k]
	if !ok || h.update == nil {
		return "", fmt.Errorf("%w: %s has no update handler", ErrMissingLifecycleHandler, k)
	}
	return h.update(fqn, data)
}

// RenderDelete renders the delete-lifecycle DDL for a kind.
func RenderDelete(k Kind, fqn ident.FQN, data map[string]any) (string, error) {
	h, ok := handlers[k]
	if !ok || h.remove == nil {
		return "", fmt.Errorf("%w: %s has no delete handler", ErrMissingLifecycleHandler, k)
	}
	return h.remove(fqn, data)
}

// FetchableFields narrows a changed-data payload to the fields the kind can
// alter or fetch. Fields outside the set are dropped from the plan. List
// kinds keep their item payloads whole.
func FetchableFields(k Kind, data map[string]any) map[string]any {
	h := handlers[k]
	if h.fetchable == nil {
		return data
	}
	out := make(map[string]any, len(data))
	for key, v := range data {
		if h.fetchable[key] {
			out[key] = v
		}
	}
	return out
}

// --- attribute accessors ---

func attrString(data map[string]any, key string) string {
	v, _ := data[key].(string)
	return v
}

func attrBool(data map[string]any, key string) bool {
	v, _ := data[key].(bool)
	return v
}

func attrInt(data map[string]any, key string) (int, bool) {
	switch v := data[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func attrTags(data map[string]any) map[string]string {
	switch v := data["tags"].(type) {
	case map[string]string:
		return v
	case map[string]any:
		out := make(map[string]string, len(v))
		for k, item := range v {
			out[k], _ = item.(string)
		}
		return out
	default:
		return nil
	}
}

func attrStrings(data map[string]any, key string) []string {
	switch v := data[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, _ := item.(string)
			out = append(out, s)
		}
		return out
	default:
		return nil
	}
}

func eqIntAttr(data map[string]any, keyword, key string) string {
	if n, ok := attrInt(data, key); ok {
		return ddl.EqInt(keyword, n)
	}
	return ""
}

// --- lifecycle renderers ---

func createAccount(fqn ident.FQN, data map[string]any) (string, error) {
	return ddl.Tidy(
		"CREATE ACCOUNT", fqn.String(),
		ddl.EqString("EDITION", attrString(data, "edition")),
		ddl.EqString("COMMENT", attrString(data, "comment")),
	), nil
}

func createDatabase(fqn ident.FQN, data map[string]any) (string, error) {
	return ddl.Tidy(
		"CREATE",
		ddl.Flag("TRANSIENT", attrBool(data, "transient")),
		"DATABASE", fqn.String(),
		eqIntAttr(data, "DATA_RETENTION_TIME_IN_DAYS", "data_retention_time_in_days"),
		eqIntAttr(data, "MAX_DATA_EXTENSION_TIME_IN_DAYS", "max_data_extension_time_in_days"),
		ddl.EqString("DEFAULT_DDL_COLLATION", attrString(data, "default_ddl_collation")),
		ddl.EqString("COMMENT", attrString(data, "comment")),
		ddl.Tags(attrTags(data)),
	), nil
}

func createSchema(fqn ident.FQN, data map[string]any) (string, error) {
	return ddl.Tidy(
		"CREATE",
		ddl.Flag("TRANSIENT", attrBool(data, "transient")),
		"SCHEMA", fqn.String(),
		ddl.Flag("WITH MANAGED ACCESS", attrBool(data, "managed_access")),
		eqIntAttr(data, "DATA_RETENTION_TIME_IN_DAYS", "data_retention_time_in_days"),
		eqIntAttr(data, "MAX_DATA_EXTENSION_TIME_IN_DAYS", "max_data_extension_time_in_days"),
		ddl.EqString("COMMENT", attrString(data, "comment")),
		ddl.Tags(attrTags(data)),
	), nil
}

func createTable(fqn ident.FQN, data map[string]any) (string, error) {
	cols, err := columnDefs(data)
	if err != nil {
		return "", fmt.Errorf("table %s: %w", fqn, err)
	}
	clusterBy := ""
	if keys := attrStrings(data, "cluster_by"); len(keys) > 0 {
		clusterBy = fmt.Sprintf("CLUSTER BY (%s)", strings.Join(keys, ", "))
	}
	return ddl.Tidy(
		"CREATE",
		ddl.Flag("TRANSIENT", attrBool(data, "transient")),
		"TABLE", fqn.String(),
		"("+strings.Join(cols, ", ")+")",
		clusterBy,
		ddl.EqString("COMMENT", attrString(data, "comment")),
		ddl.Tags(attrTags(data)),
	), nil
}

func columnDefs(data map[string]any) ([]string, error) {
	raw, ok := data["columns"]
	if !ok {
		return nil, fmt.Errorf("columns are required")
	}
	var items []map[string]any
	switch v := raw.(type) {
	case []map[string]any:
		items = v
	case []any:
		for _, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("malformed column definition")
			}
			items = append(items, m)
		}
	default:
		return nil, fmt.Errorf("malformed column definitions")
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("columns are required")
	}
	defs := make([]string, 0, len(items))
	for _, col := range items {
		name := attrString(col, "name")
		if err := ddl.ValidateIdentifier(name); err != nil {
			return nil, fmt.Errorf("column name %q: %w", name, err)
		}
		defs = append(defs, ddl.Tidy(
			ident.NewResourceName(name).String(),
			attrString(col, "data_type"),
			ddl.EqString("COMMENT", attrString(col, "comment")),
		))
	}
	return defs, nil
}

func createView(fqn ident.FQN, data map[string]any) (string, error) {
	query := attrString(data, "as_")
	if query == "" {
		return "", fmt.Errorf("view %s: defining query is required", fqn)
	}
	return ddl.Tidy(
		"CREATE",
		ddl.Flag("SECURE", attrBool(data, "secure")),
		"VIEW", fqn.String(),
		ddl.EqString("COMMENT", attrString(data, "comment")),
		"AS", query,
	), nil
}

func createWarehouse(fqn ident.FQN, data map[string]any) (string, error) {
	return ddl.Tidy(
		"CREATE WAREHOUSE", fqn.String(),
		ddl.EqString("WAREHOUSE_SIZE", attrString(data, "warehouse_size")),
		eqIntAttr(data, "AUTO_SUSPEND", "auto_suspend"),
		ddl.EqBool("AUTO_RESUME", attrBool(data, "auto_resume")),
		ddl.Flag("INITIALLY_SUSPENDED = TRUE", attrBool(data, "initially_suspended")),
		ddl.EqString("COMMENT", attrString(data, "comment")),
	), nil
}

func createRole(fqn ident.FQN, data map[string]any) (string, error) {
	return ddl.Tidy(
		"CREATE ROLE", fqn.String(),
		ddl.EqString("COMMENT", attrString(data, "comment")),
		ddl.Tags(attrTags(data)),
	), nil
}

func createUser(fqn ident.FQN, data map[string]any) (string, error) {
	return ddl.Tidy(
		"CREATE USER", fqn.String(),
		ddl.EqString("LOGIN_NAME", attrString(data, "login_name")),
		ddl.EqString("DISPLAY_NAME", attrString(data, "display_name")),
		ddl.EqBool("DISABLED", attrBool(data, "disabled")),
		ddl.EqRaw("DEFAULT_WAREHOUSE", attrString(data, "default_warehouse")),
		ddl.EqRaw("DEFAULT_ROLE", attrString(data, "default_role")),
		ddl.EqString("COMMENT", attrString(data, "comment")),
	), nil
}

func createGrant(_ ident.FQN, data map[string]any) (string, error) {
	priv := attrString(data, "priv")
	on := attrString(data, "on")
	to := attrString(data, "to")
	if priv == "" || on == "" || to == "" {
		return "", fmt.Errorf("grant payload requires priv, on, and to")
	}
	return ddl.Tidy(
		"GRANT", priv,
		"ON", attrString(data, "on_type"), on,
		"TO ROLE", to,
	), nil
}

func removeGrant(_ ident.FQN, data map[string]any) (string, error) {
	priv := attrString(data, "priv")
	on := attrString(data, "on")
	to := attrString(data, "to")
	if priv == "" || on == "" || to == "" {
		return "", fmt.Errorf("grant payload requires priv, on, and to")
	}
	return ddl.Tidy(
		"REVOKE", priv,
		"ON", attrString(data, "on_type"), on,
		"FROM ROLE", to,
	), nil
}

func createRoleGrant(_ ident.FQN, data map[string]any) (string, error) {
	role := attrString(data, "role")
	if role == "" {
		return "", fmt.Errorf("role grant payload requires a role")
	}
	if user := attrString(data, "to_user"); user != "" {
		return ddl.Tidy("GRANT ROLE", role, "TO USER", user), nil
	}
	if toRole := attrString(data, "to_role"); toRole != "" {
		return ddl.Tidy("GRANT ROLE", role, "TO ROLE", toRole), nil
	}
	return "", fmt.Errorf("role grant payload requires to_user or to_role")
}

func removeRoleGrant(_ ident.FQN, data map[string]any) (string, error) {
	role := attrString(data, "role")
	if role == "" {
		return "", fmt.Errorf("role grant payload requires a role")
	}
	if user := attrString(data, "to_user"); user != "" {
		return ddl.Tidy("REVOKE ROLE", role, "FROM USER", user), nil
	}
	if toRole := attrString(data, "to_role"); toRole != "" {
		return ddl.Tidy("REVOKE ROLE", role, "FROM ROLE", toRole), nil
	}
	return "", fmt.Errorf("role grant payload requires to_user or to_role")
}

func createAlert(fqn ident.FQN, data map[string]any) (string, error) {
	condition := attrString(data, "condition")
	then := attrString(data, "then")
	if condition == "" || then == "" {
		return "", fmt.Errorf("alert %s: condition and then are required", fqn)
	}
	return ddl.Tidy(
		"CREATE ALERT", fqn.String(),
		ddl.EqRaw("WAREHOUSE", attrString(data, "warehouse")),
		ddl.EqString("SCHEDULE", attrString(data, "schedule")),
		ddl.EqString("COMMENT", attrString(data, "comment")),
		"IF (EXISTS (", condition, "))",
		"THEN", then,
	), nil
}

func createSecret(fqn ident.FQN, data map[string]any) (string, error) {
	variant, err := ResolveSecretVariant(data)
	if err != nil {
		return "", fmt.Errorf("secret %s: %w", fqn, err)
	}
	switch variant {
	case SecretTypePassword:
		return ddl.Tidy(
			"CREATE SECRET", fqn.String(),
			"TYPE = PASSWORD",
			ddl.EqString("USERNAME", attrString(data, "username")),
			ddl.EqString("PASSWORD", attrString(data, "password")),
			ddl.EqString("COMMENT", attrString(data, "comment")),
		), nil
	default:
		return ddl.Tidy(
			"CREATE SECRET", fqn.String(),
			"TYPE = GENERIC_STRING",
			ddl.EqString("SECRET_STRING", attrString(data, "secret_string")),
			ddl.EqString("COMMENT", attrString(data, "comment")),
		), nil
	}
}

func createStream(fqn ident.FQN, data map[string]any) (string, error) {
	variant := ResolveStreamVariant(data)
	sourceKey := "on_" + strings.ToLower(string(variant))
	source := attrString(data, sourceKey)
	if source == "" {
		return "", fmt.Errorf("stream %s: source object is required", fqn)
	}
	parts := []string{
		"CREATE STREAM", fqn.String(),
		ddl.Flag("COPY GRANTS", attrBool(data, "copy_grants")),
		"ON", string(variant), source,
	}
	if v, ok := data["append_only"].(bool); ok {
		parts = append(parts, ddl.EqBool("APPEND_ONLY", v))
	}
	if v, ok := data["show_initial_rows"].(bool); ok {
		parts = append(parts, ddl.EqBool("SHOW_INITIAL_ROWS", v))
	}
	parts = append(parts, ddl.EqString("COMMENT", attrString(data, "comment")))
	return ddl.Tidy(parts...), nil
}

func createTag(fqn ident.FQN, data map[string]any) (string, error) {
	allowed := ""
	if values := attrStrings(data, "allowed_values"); len(values) > 0 {
		quoted := make([]string, 0, len(values))
		for _, v := range values {
			quoted = append(quoted, ddl.QuoteLiteral(v))
		}
		allowed = fmt.Sprintf("ALLOWED_VALUES (%s)", strings.Join(quoted, ", "))
	}
	return ddl.Tidy(
		"CREATE TAG", fqn.String(),
		allowed,
		ddl.EqString("COMMENT", attrString(data, "comment")),
	), nil
}

func createTask(fqn ident.FQN, data map[string]any) (string, error) {
	body := attrString(data, "as_")
	if body == "" {
		return "", fmt.Errorf("task %s: task body is required", fqn)
	}
	return ddl.Tidy(
		"CREATE TASK", fqn.String(),
		ddl.EqRaw("WAREHOUSE", attrString(data, "warehouse")),
		ddl.EqString("SCHEDULE", attrString(data, "schedule")),
		ddl.EqString("COMMENT", attrString(data, "comment")),
		"AS", body,
	), nil
}

// alterSet renders ALTER <keyword> <fqn> SET k = v, ... from a sparse
// changed-data payload. Keys render in sorted order so statements are
// deterministic; a nil value renders as NULL.
func alterSet(keyword string) renderFunc {
	return func(fqn ident.FQN, data map[string]any) (string, error) {
		if len(data) == 0 {
			return "", fmt.Errorf("alter %s %s: empty change payload", keyword, fqn)
		}
		keys := make([]string, 0, len(data))
		for k := range data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		assignments := make([]string, 0, len(keys))
		for _, k := range keys {
			assignments = append(assignments, fmt.Sprintf("%s = %s", strings.ToUpper(k), sqlValue(data[k])))
		}
		return ddl.Tidy(
			"ALTER", keyword, fqn.String(),
			"SET", strings.Join(assignments, ", "),
		), nil
	}
}

// sqlValue renders an attribute value as a SQL expression.
func sqlValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return ddl.QuoteLiteral(val)
	case bool:
		return strings.ToUpper(fmt.Sprintf("%t", val))
	case int:
		return fmt.Sprintf("%d", val)
	case int64:
		return fmt.Sprintf("%d", val)
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case []string:
		quoted := make([]string, 0, len(val))
		for _, s := range val {
			quoted = append(quoted, ddl.QuoteLiteral(s))
		}
		return "(" + strings.Join(quoted, ", ") + ")"
	case []any:
		rendered := make([]string, 0, len(val))
		for _, item := range val {
			rendered = append(rendered, sqlValue(item))
		}
		return "(" + strings.Join(rendered, ", ") + ")"
	default:
		return ddl.QuoteLiteral(fmt.Sprintf("%v", val))
	}
}

// dropStatement renders DROP <keyword> <fqn>.
func dropStatement(keyword string) renderFunc {
	return func(fqn ident.FQN, _ map[string]any) (string, error) {
		return ddl.Tidy("DROP", keyword, fqn.String()), nil
	}
}
