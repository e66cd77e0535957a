package valueobjects

import "strings"

// RelationType defines the type of relationship between two nodes.
// The set is closed: anything the inference collaborator returns is
// parsed against it and unknown values fall back to RelationRelated.
type RelationType string

const (
	RelationRelated       RelationType = "related"
	RelationDependsOn     RelationType = "depends_on"
	RelationContains      RelationType = "contains"
	RelationContrastsWith RelationType = "contrasts_with"
	RelationExampleOf     RelationType = "example_of"
	RelationExtends       RelationType = "extends"
	RelationImplements    RelationType = "implements"
)

// relationAliases maps normalized external spellings to relation types.
// The collaborator is free-form text generation, so it produces both
// snake_case and hyphenated variants.
var relationAliases = map[string]RelationType{
	"related":        RelationRelated,
	"depends_on":     RelationDependsOn,
	"depends-on":     RelationDependsOn,
	"dependson":      RelationDependsOn,
	"contains":       RelationContains,
	"contrasts_with": RelationContrastsWith,
	"contrasts-with": RelationContrastsWith,
	"contrastswith":  RelationContrastsWith,
	"example_of":     RelationExampleOf,
	"example-of":     RelationExampleOf,
	"exampleof":      RelationExampleOf,
	"extends":        RelationExtends,
	"implements":     RelationImplements,
}

// ParseRelationType parses a relationship-type string case-insensitively,
// defaulting to RelationRelated for unrecognized values.
func ParseRelationType(s string) RelationType {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if rel, ok := relationAliases[normalized]; ok {
		return rel
	}
	return RelationRelated
}

// String returns the string representation
func (r RelationType) String() string {
	return string(r)
}

// IsValid reports whether the value is one of the closed set
func (r RelationType) IsValid() bool {
	switch r {
	case RelationRelated, RelationDependsOn, RelationContains,
		RelationContrastsWith, RelationExampleOf, RelationExtends, RelationImplements:
		return true
	}
	return false
}
