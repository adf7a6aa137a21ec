package govdb

import (
	"database/sql"
	"fmt"
	"math/big"
	"sync"

	_ "github.com/lib/pq"
)

// DB keeps the last version of each proposal the proxy has served.
type DB struct {
	chainID *big.Int
	mu      sync.Mutex
	db      *sql.DB

	ProposalsDB *ProposalDB

	testing bool
}

func NewDB(chainID *big.Int, connStr string) (*DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	gdb := &DB{
		chainID: chainID,
		db:      db,
	}
	gdb.ProposalsDB = &ProposalDB{p: gdb}

	if err = gdb.ProposalsDB.ensureExists(); err != nil {
		db.Close()
		return nil, err
	}

	return gdb, nil
}

func (gdb *DB) SetTesting() {
	gdb.testing = true
}

func (gdb *DB) Close() error {
	gdb.mu.Lock()
	defer gdb.mu.Unlock()

	if gdb.db == nil {
		return nil
	}

	if gdb.testing {
		gdb.ProposalsDB.drop()
	}

	err := gdb.db.Close()
	gdb.db = nil

	return err
}

func (gdb *DB) proposalsTableName() string {
	return fmt.Sprintf("t_proposals_%s", gdb.chainID.String())
}

func (gdb *DB) checkTableExists(tname string) (bool, error) {
	var exists bool
	err := gdb.db.QueryRow(`
    SELECT EXISTS (
        SELECT 1
        FROM information_schema.tables
        WHERE table_schema = 'public'
        AND table_name = $1
    );
    `, tname).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}
