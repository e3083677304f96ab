package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/KurtDeGreeff/habitat/pkg/db"
	"github.com/KurtDeGreeff/habitat/pkg/idgen"
)

// ErrNotFound is returned when no account exists for the given name.
var ErrNotFound = errors.New("account not found")

// Repo persists accounts keyed by their GitHub login.
type Repo struct {
	db    db.SQLExecutor
	idgen idgen.Generator
}

func NewRepo(executor db.SQLExecutor, generator idgen.Generator) *Repo {
	return &Repo{db: executor, idgen: generator}
}

// FindByName looks an account up by its GitHub login.
func (r *Repo) FindByName(ctx context.Context, name string) (Account, error) {
	var acct Account
	var email sql.NullString
	query := "SELECT id, name, email FROM accounts WHERE name = $1"
	err := r.db.QueryRowContext(ctx, query, name).Scan(&acct.ID, &acct.Name, &email)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	if err != nil {
		return Account{}, fmt.Errorf("failed to find account: %w", err)
	}
	acct.Email = email.String
	return acct, nil
}

// FindOrCreate makes authentication idempotent across logins: the first
// login inserts, every later one resolves to the same record. The insert
// races concurrent first logins for the same name; ON CONFLICT lets the
// loser fall through to the winner's committed row instead of surfacing a
// unique violation.
func (r *Repo) FindOrCreate(ctx context.Context, acct Account) (Account, error) {
	acct.ID = r.idgen.GenerateID()
	insert := "INSERT INTO accounts (id, name, email) VALUES ($1, $2, $3) ON CONFLICT (name) DO NOTHING"
	res, err := r.db.ExecContext(ctx, insert, acct.ID, acct.Name, nullable(acct.Email))
	if err != nil {
		return Account{}, fmt.Errorf("failed to create account: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return Account{}, fmt.Errorf("failed to create account: %w", err)
	}
	if inserted == 1 {
		return acct, nil
	}

	// Existing account: refresh the email when this login resolved one,
	// then return the stored record.
	if acct.Email != "" {
		update := "UPDATE accounts SET email = $1 WHERE name = $2 AND email IS DISTINCT FROM $1"
		if _, err := r.db.ExecContext(ctx, update, acct.Email, acct.Name); err != nil {
			return Account{}, fmt.Errorf("failed to update account email: %w", err)
		}
	}
	return r.FindByName(ctx, acct.Name)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
