// Package metrics computes the per-row financial aggregates shown on crop and
// ledger listings. Aggregation is pushed down to the database as correlated
// subqueries (one statement per listing), so a row's displayed totals and any
// filter on them always come from the same snapshot.
//
// Queries passed in must already be ownership-scoped; the subqueries correlate
// on the parent primary key only and can never widen the parent set.
package metrics

import (
	"errors"

	"khet-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sign tags attached to net figures for downstream rendering.
const (
	TagPositive = "positive"
	TagNegative = "negative"
)

// Profit filter kinds for crop listings.
const (
	FilterProfitable = "profitable"
	FilterLoss       = "loss"
	FilterBalanced   = "balanced"
)

// Balance filter kinds for ledger listings.
const (
	FilterDebt   = "debt"
	FilterCredit = "credit"
)

// ErrUnknownFilter is returned for a filter kind outside the supported set.
var ErrUnknownFilter = errors.New("unknown balance filter")

// The SQL below is shared between SELECT columns and filter predicates so the
// displayed value and the filter can never disagree within one request.
const (
	cropExpenseExpr = "COALESCE((SELECT SUM(amount) FROM expenses WHERE expenses.crop_id = crops.crop_id), 0)"
	cropOutputExpr  = "COALESCE((SELECT SUM(total_mann * rate_per_mann) FROM outputs WHERE outputs.crop_id = crops.crop_id), 0)"

	ledgerDebitExpr  = "COALESCE((SELECT SUM(amount) FROM ledger_entries WHERE ledger_entries.ledger_id = ledgers.ledger_id AND entry_type = 'debit'), 0)"
	ledgerCreditExpr = "COALESCE((SELECT SUM(amount) FROM ledger_entries WHERE ledger_entries.ledger_id = ledgers.ledger_id AND entry_type = 'credit'), 0)"
)

// CropRow is a crop with its rolled-up financials. Per-acre figures are nil
// when total_acres is zero (the ratio is undefined, not a fault).
type CropRow struct {
	models.Crop
	TotalExpense     float64  `gorm:"->" json:"total_expense"`
	TotalOutput      float64  `gorm:"->" json:"total_output"`
	NetProfit        float64  `gorm:"-" json:"net_profit"`
	ExpensePerAcre   *float64 `gorm:"-" json:"expense_per_acre"`
	OutputPerAcre    *float64 `gorm:"-" json:"output_per_acre"`
	NetProfitPerAcre *float64 `gorm:"-" json:"net_profit_per_acre"`
	ProfitTag        string   `gorm:"-" json:"profit_tag"`
}

func (r *CropRow) derive() {
	r.NetProfit = r.TotalOutput - r.TotalExpense
	r.ProfitTag = TagPositive
	if r.NetProfit < 0 {
		r.ProfitTag = TagNegative
	}
	if r.TotalAcres != 0 {
		e := r.TotalExpense / r.TotalAcres
		o := r.TotalOutput / r.TotalAcres
		n := r.NetProfit / r.TotalAcres
		r.ExpensePerAcre, r.OutputPerAcre, r.NetProfitPerAcre = &e, &o, &n
	}
}

// CropRows runs q (an already-scoped query on the crops model) with the
// aggregate columns attached and derives the computed fields.
func CropRows(q *gorm.DB) ([]CropRow, error) {
	var rows []CropRow
	err := q.
		Select("crops.*, " + cropExpenseExpr + " AS total_expense, " + cropOutputExpr + " AS total_output").
		Order("crops.date_sowing DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].derive()
	}
	return rows, nil
}

// CropRowByID returns one crop with metrics, or gorm.ErrRecordNotFound when
// the id is absent from the scoped set.
func CropRowByID(q *gorm.DB, id uuid.UUID) (*CropRow, error) {
	rows, err := CropRows(q.Where("crops.crop_id = ?", id))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

// CropProfitFilter narrows q by the relation of total output to total
// expense, using the same subqueries the listing displays.
func CropProfitFilter(q *gorm.DB, kind string) (*gorm.DB, error) {
	switch kind {
	case FilterProfitable:
		return q.Where(cropOutputExpr + " > " + cropExpenseExpr), nil
	case FilterLoss:
		return q.Where(cropOutputExpr + " < " + cropExpenseExpr), nil
	case FilterBalanced:
		return q.Where(cropOutputExpr + " = " + cropExpenseExpr), nil
	}
	return nil, ErrUnknownFilter
}

// LedgerRow is a ledger with its rolled-up debit/credit totals.
type LedgerRow struct {
	models.Ledger
	TotalDebit  float64 `gorm:"->" json:"total_debit"`
	TotalCredit float64 `gorm:"->" json:"total_credit"`
	NetBalance  float64 `gorm:"-" json:"net_balance"`
	BalanceTag  string  `gorm:"-" json:"balance_tag"`
}

func (r *LedgerRow) derive() {
	r.NetBalance = r.TotalCredit - r.TotalDebit
	r.BalanceTag = TagPositive
	if r.NetBalance < 0 {
		r.BalanceTag = TagNegative
	}
}

// LedgerRows runs q (an already-scoped query on the ledgers model) with the
// debit/credit aggregates attached.
func LedgerRows(q *gorm.DB) ([]LedgerRow, error) {
	var rows []LedgerRow
	err := q.
		Select("ledgers.*, " + ledgerDebitExpr + " AS total_debit, " + ledgerCreditExpr + " AS total_credit").
		Order("ledgers.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].derive()
	}
	return rows, nil
}

// LedgerRowByID returns one ledger with metrics, or gorm.ErrRecordNotFound
// when the id is absent from the scoped set.
func LedgerRowByID(q *gorm.DB, id uuid.UUID) (*LedgerRow, error) {
	rows, err := LedgerRows(q.Where("ledgers.ledger_id = ?", id))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

// LedgerBalanceFilter narrows q by the relation of total debit to total
// credit.
func LedgerBalanceFilter(q *gorm.DB, kind string) (*gorm.DB, error) {
	switch kind {
	case FilterDebt:
		return q.Where(ledgerDebitExpr + " > " + ledgerCreditExpr), nil
	case FilterCredit:
		return q.Where(ledgerDebitExpr + " < " + ledgerCreditExpr), nil
	case FilterBalanced:
		return q.Where(ledgerDebitExpr + " = " + ledgerCreditExpr), nil
	}
	return nil, ErrUnknownFilter
}
