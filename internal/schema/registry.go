package schema

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry keys. Each is the SQL table name and the input file stem.
const (
	Clients           = "clients"
	Collaborators     = "collaborators"
	Projects          = "projects"
	Tasks             = "tasks"
	CollaboratorRates = "collaborator_rates"
	TimesheetEntries  = "timesheet_entries"
	Invoices          = "invoices"
)

// ImportOrder is the fixed processing sequence. A table never appears
// before a table it references by foreign key.
var ImportOrder = []string{
	Clients,
	Collaborators,
	Projects,
	Tasks,
	CollaboratorRates,
	TimesheetEntries,
	Invoices,
}

var (
	registry   = make(map[string]Table)
	registryMu sync.RWMutex
)

// Register adds a table definition to the registry, deriving database
// column names and resolving transform chains.
// Panics on duplicate names or empty column lists.
func Register(t Table) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if t.Name == "" {
		panic("schema: table name is empty")
	}
	if len(t.Columns) == 0 {
		panic(fmt.Sprintf("schema: table %s has no columns", t.Name))
	}
	if _, exists := registry[t.Name]; exists {
		panic(fmt.Sprintf("schema: table already registered: %s", t.Name))
	}

	cols := make([]ColumnSpec, len(t.Columns))
	copy(cols, t.Columns)
	for i := range cols {
		if cols[i].DBColumn == "" {
			cols[i].DBColumn = toDBColumn(cols[i].Name)
		}
		cols[i].Chain = resolveChain(cols[i])
	}
	t.Columns = cols

	registry[t.Name] = t
}

// Get returns a table definition by name.
func Get(name string) (Table, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	t, ok := registry[name]
	return t, ok
}

// All returns every registered table, ImportOrder first, any stragglers
// after that sorted by name.
func All() []Table {
	registryMu.RLock()
	defer registryMu.RUnlock()

	pos := make(map[string]int, len(ImportOrder))
	for i, name := range ImportOrder {
		pos[name] = i
	}

	result := make([]Table, 0, len(registry))
	for _, t := range registry {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool {
		pi, iOrdered := pos[result[i].Name]
		pj, jOrdered := pos[result[j].Name]
		switch {
		case iOrdered && jOrdered:
			return pi < pj
		case iOrdered:
			return true
		case jOrdered:
			return false
		default:
			return result[i].Name < result[j].Name
		}
	})
	return result
}

// Count returns the number of registered tables.
func Count() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// HeadersFor returns the canonical header list for a table.
func HeadersFor(name string) ([]string, bool) {
	t, ok := Get(name)
	if !ok {
		return nil, false
	}
	return t.Headers(), true
}

// TransformFor returns the explicit transform kind for a table column,
// TransformIdentity when the table or column is unknown or unmapped.
// Column matching is case-insensitive.
func TransformFor(name, column string) TransformKind {
	t, ok := Get(name)
	if !ok {
		return TransformIdentity
	}
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, column) {
			return c.Transform.Kind
		}
	}
	return TransformIdentity
}
