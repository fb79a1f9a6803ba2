package picker

import (
	"github.com/hpungsan/easypass/internal/autotype"
	"github.com/hpungsan/easypass/internal/credential"
)

// Leaves are the actions offered under every credential, in menu order.
var Leaves = []autotype.Action{
	autotype.ActionOneClick,
	autotype.ActionUsername,
	autotype.ActionPassword,
}

// Item is one credential entry in the menu.
type Item struct {
	ID       int64
	Name     string
	Username string
	Secret   string
	Leaves   []autotype.Action
}

// GroupEntry is one top-level menu entry.
type GroupEntry struct {
	Name  string
	Items []Item
}

// BuildMenu groups creds by group name. Groups appear in the order they are
// first seen and items keep fetch order within their group.
func BuildMenu(creds []credential.Credential) []GroupEntry {
	var groups []GroupEntry
	index := make(map[string]int)

	for _, c := range creds {
		i, ok := index[c.Group]
		if !ok {
			i = len(groups)
			index[c.Group] = i
			groups = append(groups, GroupEntry{Name: c.Group})
		}
		groups[i].Items = append(groups[i].Items, Item{
			ID:       c.ID,
			Name:     c.Name,
			Username: c.Username,
			Secret:   c.Secret,
			Leaves:   Leaves,
		})
	}
	return groups
}
