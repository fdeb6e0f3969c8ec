package resource

import (
	"errors"
	"fmt"
	"strings"

	"frostform/internal/ident"
)

// StreamType discriminates the concrete stream variant by source object.
type StreamType string

// Stream variants.
const (
	StreamTypeTable StreamType = "TABLE"
	StreamTypeView  StreamType = "VIEW"
	StreamTypeStage StreamType = "STAGE"
)

// ErrUnknownStreamType is returned when a stream type tag does not match a
// known variant.
var ErrUnknownStreamType = errors.New("unknown stream type")

// ParseStreamType normalizes (trim, upper-case) a raw stream type tag and
// matches it against the known variants.
func ParseStreamType(raw string) (StreamType, error) {
	switch StreamType(strings.ToUpper(strings.TrimSpace(raw))) {
	case StreamTypeTable:
		return StreamTypeTable, nil
	case StreamTypeView:
		return StreamTypeView, nil
	case StreamTypeStage:
		return StreamTypeStage, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStreamType, raw)
	}
}

// ResolveStreamVariant decides the concrete variant from the on_table,
// on_view, or on_stage discriminant field. A partial change payload may
// carry none of them; such payloads fall back to the table-stream variant.
// The fallback can misclassify a view or stage stream during small updates —
// it is a deliberate, documented ambiguity, not an inference to extend.
func ResolveStreamVariant(data map[string]any) StreamType {
	if _, ok := data["on_table"]; ok {
		return StreamTypeTable
	}
	if _, ok := data["on_view"]; ok {
		return StreamTypeView
	}
	if _, ok := data["on_stage"]; ok {
		return StreamTypeStage
	}
	return StreamTypeTable
}

// StreamSpec declares a change-data-capture stream. Exactly one of OnTable,
// OnView, and OnStage must be set; it becomes both the variant discriminant
// and an explicit dependency edge.
type StreamSpec struct {
	Name            string
	OnTable         *Resource
	OnView          *Resource
	OnStage         *Resource
	AppendOnly      *bool
	ShowInitialRows *bool
	CopyGrants      bool
	Comment         string
	Owner           string
	Database        string
	Schema          string
}

// NewStream builds a stream resource of the variant the spec's source
// object selects.
func NewStream(spec StreamSpec) (*Resource, error) {
	var source *Resource
	var sourceKey string
	for key, r := range map[string]*Resource{
		"on_table": spec.OnTable,
		"on_view":  spec.OnView,
		"on_stage": spec.OnStage,
	} {
		if r == nil {
			continue
		}
		if source != nil {
			return nil, fmt.Errorf("stream %s: exactly one source object must be set", spec.Name)
		}
		source, sourceKey = r, key
	}
	if source == nil {
		return nil, fmt.Errorf("stream %s: exactly one source object must be set", spec.Name)
	}

	attrs := map[string]any{
		"name":    spec.Name,
		sourceKey: source.FQN().String(),
		"owner":   stringOr(spec.Owner, defaultOwner),
	}
	if spec.AppendOnly != nil {
		attrs["append_only"] = *spec.AppendOnly
	}
	if spec.ShowInitialRows != nil {
		attrs["show_initial_rows"] = *spec.ShowInitialRows
	}
	if spec.CopyGrants {
		attrs["copy_grants"] = true
	}
	setAttr(attrs, "comment", spec.Comment)
	s := newResource(KindStream, spec.Name, attrs)
	s.database = ident.NewResourceName(spec.Database)
	s.schema = ident.NewResourceName(spec.Schema)
	s.Requires(source)
	return s, nil
}
