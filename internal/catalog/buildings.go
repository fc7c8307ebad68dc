package catalog

import (
	"fmt"
	"strings"
)

// BuildingAlias maps a file-name fragment to the canonical building name used
// in the remote store.
type BuildingAlias struct {
	Key  string `mapstructure:"key" yaml:"key" json:"key"`
	Name string `mapstructure:"name" yaml:"name" json:"name"`
}

// DefaultBuildings are the aliases for the 2025 inspection batch
var DefaultBuildings = []BuildingAlias{
	{Key: "Cardston Temple", Name: "Cardston Temple"},
	{Key: "Waterton", Name: "Waterton Chapel"},
	{Key: "Magrath SC", Name: "Magrath Stake Center"},
	{Key: "Raymond Tay", Name: "Raymond Taylor Street"},
	{Key: "Fort Macleod SC", Name: "Fort Macleod Stake Center"},
	{Key: "Champion", Name: "Champion"},
	{Key: "Claresholm", Name: "Claresholm"},
	{Key: "Park Lake", Name: "Park Lake"},
	{Key: "Cardston ESC", Name: "Cardston East Stake"},
	{Key: "Cardston S.Hill", Name: "Cardston Spring Hill"},
	{Key: "Raymond Kni", Name: "Raymond Knights"},
	{Key: "spring coulee", Name: "Spring Coulee"},
	{Key: "Alpine stables Waterton", Name: "Alpine Stables Waterton"},
	{Key: "Cardston west st", Name: "Cardston West Stake"},
	{Key: "Hill spring", Name: "Hill Spring"},
	{Key: "Leavitt", Name: "Leavitt"},
	{Key: "Magrath GP", Name: "Magrath Grandview Park"},
	{Key: "Raymond seminary", Name: "Raymond Seminary"},
	{Key: "Raymond stake center", Name: "Raymond Stake Center"},
	{Key: "Seminary  cardston", Name: "Seminary Cardston"},
	{Key: "Seminary magrath", Name: "Seminary Magrath"},
	{Key: "waterton opps bld", Name: "Waterton Operations Building"},
}

// BuildingTable resolves report file names to canonical building names
type BuildingTable struct {
	aliases []BuildingAlias
	lowered []string
}

// NewBuildingTable validates aliases and prepares them for matching
func NewBuildingTable(aliases []BuildingAlias) (*BuildingTable, error) {
	if len(aliases) == 0 {
		return nil, fmt.Errorf("building table needs at least one alias")
	}
	t := &BuildingTable{
		aliases: make([]BuildingAlias, 0, len(aliases)),
		lowered: make([]string, 0, len(aliases)),
	}
	seen := make(map[string]bool, len(aliases))
	for _, a := range aliases {
		if a.Key == "" || strings.TrimSpace(a.Name) == "" {
			return nil, fmt.Errorf("building alias %q: key and name are required", a.Key)
		}
		lk := strings.ToLower(a.Key)
		if seen[lk] {
			return nil, fmt.Errorf("duplicate building key %q", a.Key)
		}
		seen[lk] = true
		t.aliases = append(t.aliases, a)
		t.lowered = append(t.lowered, lk)
	}
	return t, nil
}

// DefaultBuildingTable returns the table for DefaultBuildings
func DefaultBuildingTable() *BuildingTable {
	t, err := NewBuildingTable(DefaultBuildings)
	if err != nil {
		panic(err)
	}
	return t
}

// Resolve finds the building whose key occurs in fileName, ignoring case.
// When several keys occur the longest one wins; ties keep table order.
func (t *BuildingTable) Resolve(fileName string) (string, bool) {
	name := strings.ToLower(fileName)
	best := -1
	for i, key := range t.lowered {
		if !strings.Contains(name, key) {
			continue
		}
		if best < 0 || len(key) > len(t.lowered[best]) {
			best = i
		}
	}
	if best < 0 {
		return "", false
	}
	return t.aliases[best].Name, true
}

// Aliases returns a copy of the table entries
func (t *BuildingTable) Aliases() []BuildingAlias {
	out := make([]BuildingAlias, len(t.aliases))
	copy(out, t.aliases)
	return out
}
