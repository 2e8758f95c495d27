package schema

// The seven DB-VP tables. Column order matches the canonical file layout;
// the first column is always the primary key.

func init() {
	Register(Table{
		Name:  Clients,
		Label: "Clients",
		Columns: []ColumnSpec{
			{Name: "ID"},
			{Name: "Name"},
			{Name: "LegalName"},
			{Name: "Address"},
			{Name: "City"},
			{Name: "PostalCode"},
			{Name: "Province"},
			{Name: "TaxID"},
		},
	})

	Register(Table{
		Name:  Collaborators,
		Label: "Collaborators",
		Columns: []ColumnSpec{
			{Name: "ID"},
			{Name: "Name"},
			{Name: "Email"},
			{Name: "SecretField", Transform: Transform{Kind: TransformSecretHash}},
			{Name: "Role", Transform: Transform{Kind: TransformEnumDefault, Default: "Collaborator"}},
			{Name: "TaxID"},
		},
	})

	Register(Table{
		Name:  Projects,
		Label: "Projects",
		Columns: []ColumnSpec{
			{Name: "ID"},
			{Name: "Name"},
			{Name: "Description"},
			{Name: "Type"},
			{Name: "ClientID"},
			{Name: "CommissionRate"},
			{Name: "CollaboratorID"},
			{Name: "OpenDate", Transform: Transform{Kind: TransformDateNullify}},
			{Name: "Status", Transform: Transform{Kind: TransformEnumDefault, Default: "Open"}},
		},
	})

	Register(Table{
		Name:  Tasks,
		Label: "Tasks",
		Columns: []ColumnSpec{
			{Name: "ID"},
			{Name: "Name"},
			{Name: "Description"},
			{Name: "ProjectID"},
			{Name: "CollaboratorID"},
			{Name: "Type"},
			{Name: "OpenDate", Transform: Transform{Kind: TransformDateNullify}},
			{Name: "Status", Transform: Transform{Kind: TransformEnumDefault, Default: "Open"}},
			{Name: "PlannedDays"},
			{Name: "ExpensesIncluded"},
			{Name: "StdExpenseValue"},
			{Name: "DayValue"},
		},
	})

	Register(Table{
		Name:  CollaboratorRates,
		Label: "Collaborator Rates",
		Columns: []ColumnSpec{
			{Name: "ID"},
			{Name: "CollaboratorID"},
			{Name: "ProjectID"},
			{Name: "DailyRate"},
			{Name: "ExpensesIncluded"},
			{Name: "EffectiveFrom", Transform: Transform{Kind: TransformDateNullify}},
		},
	})

	Register(Table{
		Name:  TimesheetEntries,
		Label: "Timesheet Entries",
		Columns: []ColumnSpec{
			{Name: "ID"},
			{Name: "Date", DBColumn: "entry_date", Transform: Transform{Kind: TransformDateNullify}},
			{Name: "CollaboratorID"},
			{Name: "TaskID"},
			{Name: "Type"},
			{Name: "Location"},
			{Name: "Days"},
			{Name: "TravelExpenses"},
			{Name: "Lodging"},
			{Name: "OtherCosts"},
			{Name: "Notes"},
		},
	})

	Register(Table{
		Name:  Invoices,
		Label: "Invoices",
		Columns: []ColumnSpec{
			{Name: "ID"},
			{Name: "Date", DBColumn: "invoice_date", Transform: Transform{Kind: TransformDateNullify}},
			{Name: "ClientID"},
			{Name: "Type"},
			{Name: "Number"},
			{Name: "ProjectID"},
			{Name: "BilledDays"},
			{Name: "BilledExpenses"},
			{Name: "BilledTotal"},
			{Name: "Notes"},
			{Name: "OrderReference"},
			{Name: "OrderDate", Transform: Transform{Kind: TransformDateNullify}},
			{Name: "PaymentTerms"},
			{Name: "PaymentDueDate", Transform: Transform{Kind: TransformDateNullify}},
			{Name: "PaymentDate", Transform: Transform{Kind: TransformDateNullify}},
			{Name: "PaidAmount"},
		},
	})
}
