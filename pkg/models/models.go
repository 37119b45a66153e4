package models

import (
	"fmt"
	"strings"
)

// FieldSpec describes one input column. FieldID is the stable key used by the
// engine; DisplayName belongs to the presentation layer and is passed through.
type FieldSpec struct {
	FieldID     string `json:"field_id" yaml:"field_id" validate:"required"`
	DisplayName string `json:"display_name,omitempty" yaml:"display_name"`
}

// LayoutAlgorithm names a node placement strategy
type LayoutAlgorithm string

const (
	LayoutSpring      LayoutAlgorithm = "spring"
	LayoutCircular    LayoutAlgorithm = "circular"
	LayoutKamadaKawai LayoutAlgorithm = "kamada_kawai"
	LayoutMDS         LayoutAlgorithm = "mds"
)

// SupportedLayouts lists every algorithm the layout engine accepts, in the
// order they are advertised to clients.
func SupportedLayouts() []LayoutAlgorithm {
	return []LayoutAlgorithm{LayoutSpring, LayoutCircular, LayoutKamadaKawai, LayoutMDS}
}

// IsValid reports whether the algorithm is one of SupportedLayouts
func (a LayoutAlgorithm) IsValid() bool {
	for _, known := range SupportedLayouts() {
		if a == known {
			return true
		}
	}
	return false
}

// CommunityMethod names a community detection algorithm
type CommunityMethod string

const (
	CommunityGreedy  CommunityMethod = "greedy"
	CommunityLouvain CommunityMethod = "louvain"
)

// SupportedCommunityMethods lists the accepted community detection methods
func SupportedCommunityMethods() []CommunityMethod {
	return []CommunityMethod{CommunityGreedy, CommunityLouvain}
}

// IsValid reports whether the method is one of SupportedCommunityMethods
func (m CommunityMethod) IsValid() bool {
	for _, known := range SupportedCommunityMethods() {
		if m == known {
			return true
		}
	}
	return false
}

// VisualizationConfig selects the layout algorithm and its numeric parameters.
// Nil pointers mean "use the configured default". Cosmetic options (colors,
// fonts, legends) never reach the engine.
type VisualizationConfig struct {
	Layout     LayoutAlgorithm `json:"layout,omitempty" yaml:"layout" validate:"omitempty,layout"`
	Spacing    *float64        `json:"spacing,omitempty" yaml:"spacing" validate:"omitempty,gte=0"`
	Iterations *int            `json:"iterations,omitempty" yaml:"iterations" validate:"omitempty,gte=0,lte=100000"`
	Seed       *int64          `json:"seed,omitempty" yaml:"seed"`
	TimeoutMS  int64           `json:"timeout_ms,omitempty" yaml:"timeout_ms" validate:"gte=0"`
}

// AnalysisRequest is the complete input of one analysis. Field values arrive
// either already split (Values) or as raw pasted text (Text), keyed by FieldID.
type AnalysisRequest struct {
	Fields        []FieldSpec         `json:"fields" yaml:"fields" validate:"required,min=1,dive"`
	Values        map[string][]string `json:"values,omitempty" yaml:"values"`
	Text          map[string]string   `json:"text,omitempty" yaml:"text"`
	Visualization VisualizationConfig `json:"visualization" yaml:"visualization"`
	TopK          int                 `json:"top_k,omitempty" yaml:"top_k" validate:"gte=0"`
	Community     CommunityMethod     `json:"community,omitempty" yaml:"community" validate:"omitempty,community"`
	FoldCase      bool                `json:"fold_case,omitempty" yaml:"fold_case"`
	// AlignedRows marks Values as row-aligned columns: position i of every
	// field is record i and blank entries are absent cells, not gaps to close.
	AlignedRows bool `json:"aligned_rows,omitempty" yaml:"aligned_rows"`
}

// FieldIDs returns the field ids in request order
func (r *AnalysisRequest) FieldIDs() []string {
	ids := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		ids[i] = f.FieldID
	}
	return ids
}

// ValidationError represents structured validation errors
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func (ve ValidationError) Error() string {
	if ve.Value != "" {
		return fmt.Sprintf("validation error in field '%s': %s (value: %s)", ve.Field, ve.Message, ve.Value)
	}
	return fmt.Sprintf("validation error in field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors. It is the
// configuration error of the engine: returned before any graph work starts.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}
	return fmt.Sprintf("%d validation errors: %s (and %d more)", len(ve), ve[0].Error(), len(ve)-1)
}

// Fields lists the offending parameter names
func (ve ValidationErrors) Fields() []string {
	names := make([]string, len(ve))
	for i, e := range ve {
		names[i] = e.Field
	}
	return names
}

// AsMap flattens the errors for API responses
func (ve ValidationErrors) AsMap() map[string]string {
	out := make(map[string]string, len(ve))
	for _, e := range ve {
		if prev, ok := out[e.Field]; ok {
			out[e.Field] = strings.Join([]string{prev, e.Message}, "; ")
			continue
		}
		out[e.Field] = e.Message
	}
	return out
}
