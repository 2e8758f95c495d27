// Package sample generates realistic CSV input files for every registered
// table. The files exercise the import pipeline end to end: cross-table IDs
// line up, dates come out as DD/MM/YYYY to exercise normalization, and
// secrets are plaintext so the hashing transform has work to do.
// Generation only writes files, never the database.
package sample

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/giotroni/DB-VP/internal/schema"
)

// DefaultRows is the per-table row count when none is requested.
const DefaultRows = 25

var (
	cities = []string{
		"Milano", "Roma", "Torino", "Bologna", "Firenze", "Napoli",
		"Genova", "Verona", "Padova", "Brescia",
	}
	provinces    = []string{"MI", "RM", "TO", "BO", "FI", "NA", "GE", "VR", "PD", "BS"}
	projectTypes = []string{"Consulting", "Development", "Audit", "Training"}
	taskTypes    = []string{"Analysis", "Delivery", "Review", "Support"}
	entryTypes   = []string{"OnSite", "Remote", "Travel"}
	invoiceTypes = []string{"Standard", "CreditNote"}
	roles        = []string{"Partner", "Senior", "Collaborator", ""}
	statuses     = []string{"Open", "Closed", ""}
	paymentTerms = []string{"30 gg DF", "60 gg DFFM", "90 gg DF"}
)

// Generator writes sample CSV files into a directory.
type Generator struct {
	rng  *rand.Rand
	rows int
}

// New creates a Generator producing rows rows per table.
// A non-positive rows selects DefaultRows.
func New(rows int, seed int64) *Generator {
	if rows <= 0 {
		rows = DefaultRows
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gofakeit.Seed(seed)
	return &Generator{rng: rand.New(rand.NewSource(seed)), rows: rows}
}

// WriteAll generates one <table>.csv per registered table, in import order
// so the generated foreign keys always point at rows that exist.
func (g *Generator) WriteAll(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create sample dir: %w", err)
	}

	for _, name := range schema.ImportOrder {
		t, ok := schema.Get(name)
		if !ok {
			continue
		}
		if err := g.writeTable(dir, t); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) writeTable(dir string, t schema.Table) error {
	path := filepath.Join(dir, t.Name+".csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Headers()); err != nil {
		return fmt.Errorf("write header of %s: %w", path, err)
	}
	for i := 1; i <= g.rows; i++ {
		if err := w.Write(g.row(t.Name, i)); err != nil {
			return fmt.Errorf("write row of %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

// row produces one record matching the table's canonical header order.
func (g *Generator) row(table string, n int) []string {
	switch table {
	case schema.Clients:
		name := gofakeit.Company()
		return []string{
			id("CLI", n), name, name + " SRL",
			fmt.Sprintf("Via %s %d", gofakeit.LastName(), g.rng.Intn(120)+1),
			g.pick(cities), fmt.Sprintf("%05d", g.rng.Intn(99999)),
			g.pick(provinces), g.digits(11),
		}
	case schema.Collaborators:
		return []string{
			id("COL", n), gofakeit.Name(), gofakeit.Email(),
			gofakeit.Password(true, true, true, false, false, 12),
			g.pick(roles), g.digits(11),
		}
	case schema.Projects:
		return []string{
			id("PRJ", n), gofakeit.BuzzWord() + " " + gofakeit.NounAbstract(),
			gofakeit.Sentence(6), g.pick(projectTypes),
			g.ref("CLI", n), g.money(0, 15),
			g.ref("COL", n), g.date(), g.pick(statuses),
		}
	case schema.Tasks:
		return []string{
			id("TSK", n), gofakeit.Verb() + " " + gofakeit.NounConcrete(),
			gofakeit.Sentence(5), g.ref("PRJ", n), g.ref("COL", n),
			g.pick(taskTypes), g.date(), g.pick(statuses),
			fmt.Sprintf("%d", g.rng.Intn(40)+1), g.yesNo(),
			g.money(0, 200), g.money(300, 900),
		}
	case schema.CollaboratorRates:
		return []string{
			id("RAT", n), g.ref("COL", n), g.ref("PRJ", n),
			g.money(250, 1200), g.yesNo(), g.date(),
		}
	case schema.TimesheetEntries:
		return []string{
			id("TSE", n), g.date(), g.ref("COL", n), g.ref("TSK", n),
			g.pick(entryTypes), g.pick(cities),
			fmt.Sprintf("%.1f", float64(g.rng.Intn(4)+1)*0.5),
			g.money(0, 150), g.money(0, 120), g.money(0, 60),
			gofakeit.Sentence(4),
		}
	case schema.Invoices:
		return []string{
			id("INV", n), g.date(), g.ref("CLI", n), g.pick(invoiceTypes),
			fmt.Sprintf("%d/%04d", time.Now().Year(), n),
			g.ref("PRJ", n),
			fmt.Sprintf("%d", g.rng.Intn(20)+1), g.money(0, 500),
			g.money(1000, 20000), gofakeit.Sentence(3),
			fmt.Sprintf("ORD-%04d", g.rng.Intn(9999)), g.date(),
			g.pick(paymentTerms), g.date(), g.maybeDate(), g.money(0, 20000),
		}
	default:
		return nil
	}
}

// id formats a per-table sequential identifier, CLI0001-style.
func id(prefix string, n int) string {
	return fmt.Sprintf("%s%04d", prefix, n)
}

// ref points at an already-generated row of a parent table. Rows are
// written in import order, so any ordinal up to n exists.
func (g *Generator) ref(prefix string, n int) string {
	return id(prefix, g.rng.Intn(n)+1)
}

// date renders DD/MM/YYYY on purpose: the importer must normalize it.
func (g *Generator) date() string {
	d := gofakeit.DateRange(
		time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
	)
	return d.Format("02/01/2006")
}

// maybeDate returns an empty, zero-sentinel or real date, so nullification
// paths get exercised.
func (g *Generator) maybeDate() string {
	switch g.rng.Intn(3) {
	case 0:
		return ""
	case 1:
		return "0000-00-00"
	default:
		return g.date()
	}
}

func (g *Generator) money(lo, hi float64) string {
	return fmt.Sprintf("%.2f", gofakeit.Price(lo, hi))
}

func (g *Generator) yesNo() string {
	if g.rng.Intn(2) == 0 {
		return "0"
	}
	return "1"
}

func (g *Generator) pick(options []string) string {
	return options[g.rng.Intn(len(options))]
}

func (g *Generator) digits(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('0' + g.rng.Intn(10))
	}
	return string(b)
}
