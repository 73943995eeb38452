package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createIdentityTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE identities (
		id TEXT PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		cpf TEXT UNIQUE NOT NULL,
		date_of_birth DATETIME,
		monthly_income TEXT NOT NULL DEFAULT '0',
		document_front_ref TEXT,
		document_back_ref TEXT,
		selfie_ref TEXT,
		kyc_status TEXT NOT NULL DEFAULT 'PENDING',
		risk_tier TEXT NOT NULL DEFAULT 'UNSCORED',
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}

func createLoanTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE loans (
		id TEXT PRIMARY KEY,
		borrower_id TEXT NOT NULL,
		investor_id TEXT,
		principal TEXT NOT NULL,
		interest_rate TEXT NOT NULL,
		term_months INTEGER NOT NULL,
		total_repayment TEXT NOT NULL,
		installment TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}
