// Package bindings groups resolver path mappings by the user that owns them.
package bindings

import (
	"strings"

	"pkt.systems/unitsctl/internal/rpc"
	"pkt.systems/unitsctl/nestjson"
)

// NotAvailable is the unit id shown when no user is selected.
const NotAvailable = "N/A"

// Binding is a path mapping with its account info decoded.
type Binding struct {
	Path          string         `json:"path"`
	DriverName    string         `json:"driverName"`
	DriverVersion string         `json:"driverVersion"`
	AccountInfo   nestjson.Value `json:"accountInfo"`
}

// UserGroup holds the bindings shown under one user.
type UserGroup struct {
	Username string    `json:"username"`
	Bindings []Binding `json:"bindings"`
}

// Joined pairs a mapping with the loaded driver it refers to.
type Joined struct {
	Mapping rpc.PathMapping  `json:"mapping"`
	Driver  rpc.DriverDetail `json:"driver"`
}

// Username returns the user segment of a /<root>/<user>/... path.
func Username(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) < 3 {
		return ""
	}
	return parts[2]
}

// ParseAccountInfo decodes account info text. Text that is not JSON yields
// a placeholder account so callers can still render a row.
func ParseAccountInfo(info string) nestjson.Value {
	if v, ok := nestjson.TryParse(info); ok {
		return v
	}
	return nestjson.Object(
		nestjson.Member{Key: "error", Value: nestjson.String(nestjson.InvalidJSON)},
		nestjson.Member{Key: "name", Value: nestjson.String("Unknown")},
		nestjson.Member{Key: "amount", Value: nestjson.Number("0")},
	)
}

// UnitID returns user@domain, or N/A without a user.
func UnitID(user, domain string) string {
	if user == "" {
		return NotAvailable
	}
	return user + "@" + domain
}

// Group collects the mappings that belong to user. A mapping belongs to
// user when its driver name ends with its own path username, compared
// without case, or when its path username is user. Everything else is left
// out, as are mappings whose path has no user segment.
func Group(user string, mappings []rpc.PathMapping) []UserGroup {
	groups := []UserGroup{{Username: user, Bindings: []Binding{}}}
	index := map[string]int{user: 0}
	for _, m := range mappings {
		owner := Username(m.Path)
		if owner == "" {
			continue
		}
		b := Binding{
			Path:          m.Path,
			DriverName:    m.DriverName,
			DriverVersion: m.DriverVersion,
			AccountInfo:   ParseAccountInfo(m.AccountInfo),
		}
		if strings.HasSuffix(strings.ToLower(m.DriverName), strings.ToLower(owner)) {
			groups[0].Bindings = append(groups[0].Bindings, b)
			continue
		}
		if i, ok := index[owner]; ok {
			groups[i].Bindings = append(groups[i].Bindings, b)
		}
	}
	return groups
}

// Users lists the distinct path usernames in order of first appearance.
func Users(mappings []rpc.PathMapping) []string {
	seen := make(map[string]struct{}, len(mappings))
	var users []string
	for _, m := range mappings {
		u := Username(m.Path)
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		users = append(users, u)
	}
	return users
}

// JoinDrivers matches each mapping to a loaded driver by name@version. The
// second result lists mappings whose driver is not loaded.
func JoinDrivers(mappings []rpc.PathMapping, drivers []rpc.DriverDetail) ([]Joined, []rpc.PathMapping) {
	loaded := make(map[string]rpc.DriverDetail, len(drivers))
	for _, d := range drivers {
		loaded[d.Ref()] = d
	}
	var joined []Joined
	var orphans []rpc.PathMapping
	for _, m := range mappings {
		ref := rpc.DriverDetail{Name: m.DriverName, Version: m.DriverVersion}.Ref()
		if d, ok := loaded[ref]; ok {
			joined = append(joined, Joined{Mapping: m, Driver: d})
			continue
		}
		orphans = append(orphans, m)
	}
	return joined, orphans
}
