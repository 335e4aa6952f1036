package controllers

// Static field-visibility configuration for the admin surface. The columns
// each view lists, searches and accepts on edit are enumerated explicitly
// per entity and actor class; nothing is derived from the models at
// runtime.

// EntityFields enumerates the admin-facing columns of one entity.
type EntityFields struct {
	List     []string
	Search   []string
	Editable []string
}

// adminFields applies to actors holding the admin role.
var adminFields = map[string]EntityFields{
	"users": {
		List:     []string{"id", "name", "email", "active", "roles"},
		Search:   []string{"name", "email"},
		Editable: []string{"email", "password", "active"},
	},
	"roles": {
		List:     []string{"id", "name", "description"},
		Search:   nil,
		Editable: []string{"name", "description"},
	},
	"todos": {
		List:     []string{"id", "text", "complete", "user_id", "created_at", "done_at"},
		Search:   []string{"text"},
		Editable: []string{"text", "complete"},
	},
}

// ownerFields applies to ordinary authenticated actors, who only ever see
// the row-scoped todo view.
var ownerFields = map[string]EntityFields{
	"todos": {
		List:     []string{"id", "text", "complete", "created_at", "done_at"},
		Search:   []string{"text"},
		Editable: []string{"complete"},
	},
}

// fieldsFor returns the column configuration for an entity as seen by the
// given actor class.
func fieldsFor(entity string, isAdmin bool) EntityFields {
	if isAdmin {
		return adminFields[entity]
	}
	return ownerFields[entity]
}

func fieldAllowed(cfg EntityFields, name string) bool {
	for _, f := range cfg.Editable {
		if f == name {
			return true
		}
	}
	return false
}
