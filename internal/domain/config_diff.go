package domain

import "reflect"

// ConfigDiff summarizes changes between two loaded configurations.
type ConfigDiff struct {
	AuthChanged bool
	// RestartSections lists changed sections that only take effect on restart.
	RestartSections []string
}

// IsEmpty reports whether the diff contains any changes.
func (d ConfigDiff) IsEmpty() bool {
	return !d.AuthChanged && len(d.RestartSections) == 0
}

// DiffConfigs computes a diff between two configurations. Sections are
// reported in file order.
func DiffConfigs(prev Config, next Config) ConfigDiff {
	diff := ConfigDiff{
		AuthChanged: !reflect.DeepEqual(prev.Auth, next.Auth),
	}
	sections := []struct {
		name    string
		changed bool
	}{
		{"server", prev.Server != next.Server},
		{"generator", prev.Generator != next.Generator},
		{"comments", prev.Comments != next.Comments},
		{"host", prev.Host != next.Host},
		{"observability", prev.Observability != next.Observability},
		{"logging", prev.Logging != next.Logging},
		{"tools", prev.Tools != next.Tools},
	}
	for _, s := range sections {
		if s.changed {
			diff.RestartSections = append(diff.RestartSections, s.name)
		}
	}
	return diff
}
