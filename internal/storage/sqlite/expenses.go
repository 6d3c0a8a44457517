package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/praneelbora/expensease/internal/models"
	"github.com/praneelbora/expensease/internal/money"
	"github.com/praneelbora/expensease/internal/storage"
)

// CreateExpense persists an expense with its items and split rows.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	// Generate IDs if not set
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.TypeOf == "" {
		expense.TypeOf = models.TypeExpense
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, description, amount, currency, category, type_of, group_id, date, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.Description, expense.Amount.Amount, expense.Amount.Currency,
		expense.Category, expense.TypeOf, nullable(expense.GroupID),
		expense.Date.Unix(), expense.CreatedBy, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i := range expense.Items {
		item := &expense.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO line_items (id, expense_id, name, amount) VALUES (?, ?, ?, ?)",
			item.ID, expense.ID, item.Name, item.Amount.Amount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert line item: %w", err)
		}

		// Consumer order matters for the remainder rule; persist it.
		for pos, consumer := range item.Consumers {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO line_item_consumers (item_id, consumer_id, position) VALUES (?, ?, ?)",
				item.ID, consumer, pos,
			)
			if err != nil {
				return fmt.Errorf("failed to insert item consumer: %w", err)
			}
		}
	}

	for pos, split := range expense.Splits {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO expense_splits (expense_id, friend_id, owing, paying, owe_amount, pay_amount, payment_method_id, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			expense.ID, split.FriendID, boolToInt(split.Owing), boolToInt(split.Paying),
			split.OweAmount.Amount, split.PayAmount.Amount, split.PaymentMethodID, pos,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetExpense retrieves an expense by ID, including items and splits.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense := &models.Expense{}
	var groupID sql.NullString
	var amount int64
	var currency string
	var date int64

	err := s.db.QueryRowContext(ctx,
		`SELECT id, description, amount, currency, category, type_of, group_id, date, created_by, created_at
		 FROM expenses WHERE id = ?`,
		expenseID,
	).Scan(&expense.ID, &expense.Description, &amount, &currency, &expense.Category,
		&expense.TypeOf, &groupID, &date, &expense.CreatedBy, &expense.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	expense.Amount = money.New(amount, currency)
	expense.GroupID = groupID.String
	expense.Date = time.Unix(date, 0).UTC()

	if err := s.loadItems(ctx, expense, currency); err != nil {
		return nil, err
	}
	if err := s.loadSplits(ctx, expense, currency); err != nil {
		return nil, err
	}

	return expense, nil
}

// ListExpensesByUser returns expenses the user created or appears in, newest
// first.
func (s *SQLiteStore) ListExpensesByUser(ctx context.Context, userID string) ([]models.Expense, error) {
	return s.listExpenses(ctx,
		`SELECT id FROM expenses
		 WHERE created_by = ?
		    OR id IN (SELECT expense_id FROM expense_splits WHERE friend_id = ?)
		 ORDER BY date DESC, created_at DESC`,
		userID, userID,
	)
}

// ListExpensesByGroup returns a group's expenses, newest first.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error) {
	return s.listExpenses(ctx,
		"SELECT id FROM expenses WHERE group_id = ? ORDER BY date DESC, created_at DESC",
		groupID,
	)
}

func (s *SQLiteStore) listExpenses(ctx context.Context, query string, args ...any) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan expense id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	expenses := make([]models.Expense, 0, len(ids))
	for _, id := range ids {
		e, err := s.GetExpense(ctx, id)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, *e)
	}
	return expenses, nil
}

func (s *SQLiteStore) loadItems(ctx context.Context, expense *models.Expense, currency string) error {
	itemRows, err := s.db.QueryContext(ctx,
		"SELECT id, name, amount FROM line_items WHERE expense_id = ?",
		expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get line items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item models.LineItem
		var amount int64
		if err := itemRows.Scan(&item.ID, &item.Name, &amount); err != nil {
			return fmt.Errorf("failed to scan line item: %w", err)
		}
		item.Amount = money.New(amount, currency)

		consumerRows, err := s.db.QueryContext(ctx,
			"SELECT consumer_id FROM line_item_consumers WHERE item_id = ? ORDER BY position",
			item.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to get item consumers: %w", err)
		}

		for consumerRows.Next() {
			var consumer string
			if err := consumerRows.Scan(&consumer); err != nil {
				consumerRows.Close()
				return fmt.Errorf("failed to scan item consumer: %w", err)
			}
			item.Consumers = append(item.Consumers, consumer)
		}
		if err := consumerRows.Err(); err != nil {
			consumerRows.Close()
			return fmt.Errorf("failed to iterate item consumers: %w", err)
		}
		consumerRows.Close()

		expense.Items = append(expense.Items, item)
	}
	return itemRows.Err()
}

func (s *SQLiteStore) loadSplits(ctx context.Context, expense *models.Expense, currency string) error {
	splitRows, err := s.db.QueryContext(ctx,
		`SELECT friend_id, owing, paying, owe_amount, pay_amount, payment_method_id
		 FROM expense_splits WHERE expense_id = ? ORDER BY position`,
		expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get expense splits: %w", err)
	}
	defer splitRows.Close()

	for splitRows.Next() {
		var split models.SplitRow
		var owing, paying int
		var oweAmount, payAmount int64
		if err := splitRows.Scan(&split.FriendID, &owing, &paying, &oweAmount, &payAmount, &split.PaymentMethodID); err != nil {
			return fmt.Errorf("failed to scan expense split: %w", err)
		}
		split.Owing = owing != 0
		split.Paying = paying != 0
		split.OweAmount = money.New(oweAmount, currency)
		split.PayAmount = money.New(payAmount, currency)
		expense.Splits = append(expense.Splits, split)
	}
	return splitRows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
