package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/sjperalta/bailbooks-api/internal/advisor"
	"github.com/sjperalta/bailbooks-api/internal/config"
	"github.com/sjperalta/bailbooks-api/internal/engine"
	"github.com/sjperalta/bailbooks-api/internal/models"
	"github.com/sjperalta/bailbooks-api/internal/repository"
)

var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func strPtr(s string) *string {
	return &s
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

// Mock CaseRepository
type mockCaseRepository struct {
	repository.CaseRepository
	mu     sync.Mutex
	cases  map[uint]*models.BondCase
	nextID uint
}

func newMockCaseRepository() *mockCaseRepository {
	return &mockCaseRepository{cases: make(map[uint]*models.BondCase)}
}

func (m *mockCaseRepository) FindByID(ctx context.Context, id uint) (*models.BondCase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cases[id]
	if !ok {
		return nil, fmt.Errorf("case %d: %w", id, engine.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (m *mockCaseRepository) Create(ctx context.Context, c *models.BondCase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c.ID = m.nextID
	if c.CreatedAt.IsZero() {
		c.CreatedAt = testNow
	}
	cp := *c
	m.cases[c.ID] = &cp
	return nil
}

func (m *mockCaseRepository) Update(ctx context.Context, c *models.BondCase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cases[c.ID]; !ok {
		return fmt.Errorf("case %d: %w", c.ID, engine.ErrNotFound)
	}
	cp := *c
	m.cases[c.ID] = &cp
	return nil
}

func (m *mockCaseRepository) FindAll(ctx context.Context) ([]models.BondCase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.BondCase, 0, len(m.cases))
	for _, c := range m.cases {
		out = append(out, *c)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (m *mockCaseRepository) FindCreatedBetween(ctx context.Context, start, end time.Time) ([]models.BondCase, error) {
	all, _ := m.FindAll(ctx)
	var out []models.BondCase
	for _, c := range all {
		if engine.InRange(c.CreatedAt, start, end) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Mock InstallmentRepository with the same compare-and-swap rules as the gorm one
type mockInstallmentRepository struct {
	repository.InstallmentRepository
	mu               sync.Mutex
	items            map[uint]*models.Installment
	nextID           uint
	cases            *mockCaseRepository
	beforeTransition func(id uint)
}

func newMockInstallmentRepository(cases *mockCaseRepository) *mockInstallmentRepository {
	return &mockInstallmentRepository{items: make(map[uint]*models.Installment), cases: cases}
}

func (m *mockInstallmentRepository) FindByID(ctx context.Context, id uint) (*models.Installment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("installment %d: %w", id, engine.ErrNotFound)
	}
	cp := *inst
	return &cp, nil
}

func (m *mockInstallmentRepository) FindByCase(ctx context.Context, caseID uint) ([]models.Installment, error) {
	return m.filter(func(i *models.Installment) bool { return i.CaseID == caseID }), nil
}

func (m *mockInstallmentRepository) Create(ctx context.Context, inst *models.Installment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.create(inst)
	return nil
}

func (m *mockInstallmentRepository) create(inst *models.Installment) {
	m.nextID++
	inst.ID = m.nextID
	inst.CreatedAt = testNow.Add(time.Duration(m.nextID) * time.Second)
	cp := *inst
	m.items[inst.ID] = &cp
}

func (m *mockInstallmentRepository) Transition(ctx context.Context, inst *models.Installment, from string) error {
	if m.beforeTransition != nil {
		m.beforeTransition(inst.ID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.items[inst.ID]
	if !ok {
		return fmt.Errorf("installment %d: %w", inst.ID, engine.ErrNotFound)
	}
	if stored.Status != from {
		return fmt.Errorf("installment %d is %s: %w", inst.ID, stored.Status, engine.ErrInvalidTransition)
	}
	cp := *inst
	m.items[inst.ID] = &cp
	return nil
}

func (m *mockInstallmentRepository) CancelPendingByCase(ctx context.Context, caseID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancelPending(caseID), nil
}

func (m *mockInstallmentRepository) cancelPending(caseID uint) int64 {
	var n int64
	for _, inst := range m.items {
		if inst.CaseID == caseID && inst.Status == models.InstallmentStatusPending {
			inst.Status = models.InstallmentStatusCancelled
			n++
		}
	}
	return n
}

func (m *mockInstallmentRepository) ReplacePlan(ctx context.Context, plan *repository.PlanReplacement) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := m.cancelPending(plan.CaseID)
	for i := range plan.Installments {
		m.create(&plan.Installments[i])
	}
	if m.cases != nil {
		m.cases.mu.Lock()
		if c, ok := m.cases.cases[plan.CaseID]; ok {
			c.PaymentAmount = &plan.PaymentAmount
			c.PaymentFrequency = &plan.PaymentFrequency
		}
		m.cases.mu.Unlock()
	}
	return n, nil
}

func (m *mockInstallmentRepository) FindPendingDueBy(ctx context.Context, date time.Time) ([]models.Installment, error) {
	return m.filter(func(i *models.Installment) bool {
		return i.Status == models.InstallmentStatusPending && i.DueDate != nil && !i.DueDate.After(engine.DateOf(date))
	}), nil
}

func (m *mockInstallmentRepository) FindPaidBetween(ctx context.Context, start, end time.Time) ([]models.Installment, error) {
	return m.filter(func(i *models.Installment) bool {
		return i.Status == models.InstallmentStatusPaid && i.PaidAt != nil && engine.InRange(*i.PaidAt, start, end)
	}), nil
}

func (m *mockInstallmentRepository) FindAll(ctx context.Context) ([]models.Installment, error) {
	return m.filter(func(*models.Installment) bool { return true }), nil
}

func (m *mockInstallmentRepository) filter(keep func(*models.Installment) bool) []models.Installment {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Installment{}
	for _, inst := range m.items {
		if keep(inst) {
			out = append(out, *inst)
		}
	}
	engine.SortInstallments(out)
	return out
}

// Mock ExpenseRepository
type mockExpenseRepository struct {
	repository.ExpenseRepository
	expenses []models.Expense
}

func (m *mockExpenseRepository) Create(ctx context.Context, e *models.Expense) error {
	e.ID = uint(len(m.expenses) + 1)
	m.expenses = append(m.expenses, *e)
	return nil
}

func (m *mockExpenseRepository) FindBetween(ctx context.Context, start, end time.Time) ([]models.Expense, error) {
	var out []models.Expense
	for _, e := range m.expenses {
		if engine.InRange(e.IncurredOn, start, end) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Mock DepositRepository
type mockDepositRepository struct {
	repository.DepositRepository
	deposits []models.Deposit
}

func (m *mockDepositRepository) Create(ctx context.Context, d *models.Deposit) error {
	d.ID = uint(len(m.deposits) + 1)
	m.deposits = append(m.deposits, *d)
	return nil
}

func (m *mockDepositRepository) FindBetween(ctx context.Context, start, end time.Time) ([]models.Deposit, error) {
	var out []models.Deposit
	for _, d := range m.deposits {
		if engine.InRange(d.ReceivedOn, start, end) {
			out = append(out, d)
		}
	}
	return out, nil
}

// Mock AuditRepository
type mockAuditRepository struct {
	repository.AuditRepository
	entries []models.AuditLog
}

func (m *mockAuditRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	m.entries = append(m.entries, *entry)
	return nil
}

type fakeAdvisor struct {
	rec   *advisor.Recommendation
	err   error
	calls int
	last  advisor.Request
}

func (f *fakeAdvisor) Recommend(ctx context.Context, req advisor.Request) (*advisor.Recommendation, error) {
	f.calls++
	f.last = req
	return f.rec, f.err
}

type fakeArchive struct {
	saved []string
}

func (f *fakeArchive) Save(data []byte, filename, subDir string) (string, error) {
	f.saved = append(f.saved, subDir+"/"+filename)
	return subDir + "/" + filename, nil
}

// testEnv wires every service over in-memory repositories.
type testEnv struct {
	cases    *mockCaseRepository
	insts    *mockInstallmentRepository
	expenses *mockExpenseRepository
	deposits *mockDepositRepository
	audit    *mockAuditRepository
	archive  *fakeArchive
	settings engine.Settings

	caseSvc   *CaseService
	planSvc   *PlanService
	ledgerSvc *LedgerService
	booksSvc  *BooksService
	reportSvc *ReportService
	exportSvc *ExportService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		cases:    newMockCaseRepository(),
		expenses: &mockExpenseRepository{},
		deposits: &mockDepositRepository{},
		audit:    &mockAuditRepository{},
		archive:  &fakeArchive{},
		settings: engine.DefaultSettings(),
	}
	env.insts = newMockInstallmentRepository(env.cases)
	clock := func() time.Time { return testNow }

	auditSvc := NewAuditService(env.audit)
	env.caseSvc = NewCaseService(env.cases, env.insts, auditSvc, env.settings)
	env.caseSvc.clock = clock
	env.planSvc = NewPlanService(env.cases, env.insts, auditSvc, env.settings)
	env.ledgerSvc = NewLedgerService(env.cases, env.insts, auditSvc)
	env.ledgerSvc.clock = clock
	env.booksSvc = NewBooksService(env.expenses, env.deposits, env.cases, auditSvc)
	env.reportSvc = NewReportService(env.cases, env.insts, env.expenses, env.deposits, env.settings)
	env.reportSvc.clock = clock

	env.exportSvc = NewExportService(env.cases, env.insts, env.reportSvc, config.DefaultOrgSettings(), env.archive, nil)
	env.exportSvc.clock = clock
	return env
}

func (env *testEnv) openCase(t *testing.T, bond string) *models.BondCase {
	c, err := env.caseSvc.Create(context.Background(), CaseInput{
		DefendantName: strPtr("Jordan Reyes"),
		BondAmount:    decPtr(bond),
	}, SystemActor)
	require.NoError(t, err)
	return c
}
