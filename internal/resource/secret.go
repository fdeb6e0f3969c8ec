package resource

import (
	"errors"
	"fmt"
	"strings"

	"frostform/internal/ident"
)

// SecretType discriminates the concrete secret variant.
type SecretType string

// Secret variants.
const (
	SecretTypePassword      SecretType = "PASSWORD"
	SecretTypeGenericString SecretType = "GENERIC_STRING"
)

// ErrUnknownSecretType is returned when a secret type tag does not match a
// known variant.
var ErrUnknownSecretType = errors.New("unknown secret type")

// ParseSecretType normalizes (trim, upper-case) a raw secret type tag and
// matches it against the known variants.
func ParseSecretType(raw string) (SecretType, error) {
	switch SecretType(strings.ToUpper(strings.TrimSpace(raw))) {
	case SecretTypePassword:
		return SecretTypePassword, nil
	case SecretTypeGenericString:
		return SecretTypeGenericString, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSecretType, raw)
	}
}

// ResolveSecretVariant decides the concrete variant for a secret payload.
// The secret_type discriminant wins when present; otherwise the set optional
// fields decide. Payloads carrying neither are rejected rather than guessed.
func ResolveSecretVariant(data map[string]any) (SecretType, error) {
	if raw, ok := data["secret_type"].(string); ok && raw != "" {
		return ParseSecretType(raw)
	}
	_, hasPassword := data["password"]
	_, hasUsername := data["username"]
	_, hasString := data["secret_string"]
	switch {
	case (hasPassword || hasUsername) && !hasString:
		return SecretTypePassword, nil
	case hasString && !hasPassword && !hasUsername:
		return SecretTypeGenericString, nil
	default:
		return "", fmt.Errorf("%w: cannot resolve variant from fields", ErrUnknownSecretType)
	}
}

// SecretSpec declares a secret. Type may be left empty when the set fields
// identify the variant.
type SecretSpec struct {
	Name         string
	Type         string
	Username     string
	Password     string
	SecretString string
	Comment      string
	Owner        string
	Database     string
	Schema       string
}

// NewSecret builds a secret resource of the variant the spec resolves to.
// Password and secret-string values are never fetchable and are dropped from
// change plans.
func NewSecret(spec SecretSpec) (*Resource, error) {
	probe := map[string]any{}
	setAttr(probe, "secret_type", spec.Type)
	setAttr(probe, "username", spec.Username)
	setAttr(probe, "password", spec.Password)
	setAttr(probe, "secret_string", spec.SecretString)
	variant, err := ResolveSecretVariant(probe)
	if err != nil {
		return nil, fmt.Errorf("secret %s: %w", spec.Name, err)
	}

	attrs := map[string]any{
		"name":        spec.Name,
		"secret_type": string(variant),
		"owner":       stringOr(spec.Owner, defaultOwner),
	}
	switch variant {
	case SecretTypePassword:
		setAttr(attrs, "username", spec.Username)
		setAttr(attrs, "password", spec.Password)
	case SecretTypeGenericString:
		setAttr(attrs, "secret_string", spec.SecretString)
	}
	setAttr(attrs, "comment", spec.Comment)
	s := newResource(KindSecret, spec.Name, attrs)
	s.database = ident.NewResourceName(spec.Database)
	s.schema = ident.NewResourceName(spec.Schema)
	return s, nil
}
