package schema

import (
	"testing"
)

// ============================================================================
// toDBColumn Tests
// ============================================================================

func TestToDBColumn(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain word", input: "Name", want: "name"},
		{name: "two words", input: "LegalName", want: "legal_name"},
		{name: "bare acronym", input: "ID", want: "id"},
		{name: "trailing acronym", input: "TaxID", want: "tax_id"},
		{name: "trailing acronym two words", input: "CollaboratorID", want: "collaborator_id"},
		{name: "three words", input: "StdExpenseValue", want: "std_expense_value"},
		{name: "three words with due", input: "PaymentDueDate", want: "payment_due_date"},
		{name: "already lowercase", input: "notes", want: "notes"},
		{name: "single letter", input: "X", want: "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := toDBColumn(tt.input)
			if got != tt.want {
				t.Errorf("toDBColumn(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ============================================================================
// Name-pattern Tests
// ============================================================================

func TestIsMonetaryColumn(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{name: "CommissionRate", want: true},
		{name: "DailyRate", want: true},
		{name: "TravelExpenses", want: true},
		{name: "StdExpenseValue", want: true},
		{name: "DayValue", want: true},
		{name: "OtherCosts", want: true},
		{name: "BilledExpenses", want: true},
		{name: "PaidAmount", want: true},
		{name: "BilledTotal", want: false},
		{name: "PlannedDays", want: false},
		{name: "Lodging", want: false},
		{name: "Name", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isMonetaryColumn(tt.name); got != tt.want {
				t.Errorf("isMonetaryColumn(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestIsDateColumn(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{name: "Date", want: true},
		{name: "OpenDate", want: true},
		{name: "OrderDate", want: true},
		{name: "PaymentDueDate", want: true},
		{name: "PaymentDate", want: true},
		{name: "EffectiveFrom", want: true},
		{name: "Days", want: false},
		{name: "Location", want: false},
		{name: "PaymentTerms", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isDateColumn(tt.name); got != tt.want {
				t.Errorf("isDateColumn(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

// ============================================================================
// Registry Tests
// ============================================================================

func TestRegistryContainsImportOrder(t *testing.T) {
	if got := Count(); got != len(ImportOrder) {
		t.Fatalf("Count() = %d, want %d", got, len(ImportOrder))
	}

	for _, name := range ImportOrder {
		tab, ok := Get(name)
		if !ok {
			t.Errorf("table %q not registered", name)
			continue
		}
		if len(tab.Columns) == 0 {
			t.Errorf("table %q has no columns", name)
			continue
		}
		if tab.PrimaryKey().Name != "ID" {
			t.Errorf("table %q primary key = %q, want ID", name, tab.PrimaryKey().Name)
		}
		if tab.PrimaryKey().DBColumn != "id" {
			t.Errorf("table %q primary key db column = %q, want id", name, tab.PrimaryKey().DBColumn)
		}
	}
}

func TestAllReturnsImportOrder(t *testing.T) {
	all := All()
	if len(all) != len(ImportOrder) {
		t.Fatalf("All() returned %d tables, want %d", len(all), len(ImportOrder))
	}
	for i, tab := range all {
		if tab.Name != ImportOrder[i] {
			t.Errorf("All()[%d] = %q, want %q", i, tab.Name, ImportOrder[i])
		}
	}
}

func TestHeadersFor(t *testing.T) {
	headers, ok := HeadersFor(Clients)
	if !ok {
		t.Fatal("HeadersFor(clients) not found")
	}
	want := []string{"ID", "Name", "LegalName", "Address", "City", "PostalCode", "Province", "TaxID"}
	if len(headers) != len(want) {
		t.Fatalf("clients headers = %v, want %v", headers, want)
	}
	for i := range want {
		if headers[i] != want[i] {
			t.Errorf("clients header[%d] = %q, want %q", i, headers[i], want[i])
		}
	}

	if _, ok := HeadersFor("UNKNOWN_TABLE"); ok {
		t.Error("HeadersFor(UNKNOWN_TABLE) = ok, want not found")
	}
}

func TestTransformFor(t *testing.T) {
	tests := []struct {
		table  string
		column string
		want   TransformKind
	}{
		{table: Collaborators, column: "SecretField", want: TransformSecretHash},
		{table: Collaborators, column: "secretfield", want: TransformSecretHash},
		{table: Collaborators, column: "Role", want: TransformEnumDefault},
		{table: Projects, column: "Status", want: TransformEnumDefault},
		{table: Projects, column: "OpenDate", want: TransformDateNullify},
		{table: Invoices, column: "PaymentDate", want: TransformDateNullify},
		{table: Clients, column: "Name", want: TransformIdentity},
		{table: Clients, column: "NoSuchColumn", want: TransformIdentity},
		{table: "UNKNOWN_TABLE", column: "ID", want: TransformIdentity},
	}

	for _, tt := range tests {
		t.Run(tt.table+"/"+tt.column, func(t *testing.T) {
			if got := TransformFor(tt.table, tt.column); got != tt.want {
				t.Errorf("TransformFor(%q, %q) = %v, want %v", tt.table, tt.column, got, tt.want)
			}
		})
	}
}

func TestResolvedChains(t *testing.T) {
	tests := []struct {
		table  string
		column string
		want   []TransformKind
	}{
		{table: Collaborators, column: "SecretField", want: []TransformKind{TransformSecretHash}},
		{table: Projects, column: "CommissionRate", want: []TransformKind{TransformMonetaryCoerce}},
		{table: Invoices, column: "Date", want: []TransformKind{TransformDateNullify, TransformDateNormalize}},
		{table: Invoices, column: "PaidAmount", want: []TransformKind{TransformMonetaryCoerce}},
		{table: CollaboratorRates, column: "EffectiveFrom", want: []TransformKind{TransformDateNullify, TransformDateNormalize}},
		{table: Clients, column: "Name", want: nil},
		{table: Tasks, column: "Status", want: []TransformKind{TransformEnumDefault}},
	}

	for _, tt := range tests {
		t.Run(tt.table+"/"+tt.column, func(t *testing.T) {
			tab, ok := Get(tt.table)
			if !ok {
				t.Fatalf("table %q not registered", tt.table)
			}
			col, ok := tab.Column(tt.column)
			if !ok {
				t.Fatalf("column %q not found in %q", tt.column, tt.table)
			}
			if len(col.Chain) != len(tt.want) {
				t.Fatalf("chain for %s.%s = %v, want %v", tt.table, tt.column, col.Chain, tt.want)
			}
			for i, want := range tt.want {
				if col.Chain[i].Kind != want {
					t.Errorf("chain[%d] for %s.%s = %v, want %v", i, tt.table, tt.column, col.Chain[i].Kind, want)
				}
			}
		})
	}
}

func TestDBColumnOverrides(t *testing.T) {
	ts, _ := Get(TimesheetEntries)
	if col, ok := ts.Column("Date"); !ok || col.DBColumn != "entry_date" {
		t.Errorf("timesheet_entries Date db column = %q, want entry_date", col.DBColumn)
	}

	inv, _ := Get(Invoices)
	if col, ok := inv.Column("Date"); !ok || col.DBColumn != "invoice_date" {
		t.Errorf("invoices Date db column = %q, want invoice_date", col.DBColumn)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Register with duplicate name did not panic")
		}
	}()
	Register(Table{Name: Clients, Columns: []ColumnSpec{{Name: "ID"}}})
}

func TestRegisterEmptyColumnsPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Register with no columns did not panic")
		}
	}()
	Register(Table{Name: "no_columns"})
}
