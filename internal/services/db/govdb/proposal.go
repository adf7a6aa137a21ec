package govdb

import (
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/oceanguard/govclient/pkg/governance"
)

var ErrNotFound = errors.New("proposal snapshot not found")

type ProposalDB struct {
	p *DB
}

// Snapshot is a stored proposal and the time it was last read from the node.
type Snapshot struct {
	Governance common.Address
	Proposal   *governance.RawProposal
	UpdatedAt  time.Time
}

func (pdb *ProposalDB) Create() error {
	_, err := pdb.p.db.Exec(fmt.Sprintf(`
	CREATE TABLE %s(
		governance varchar(42) NOT NULL,
		proposal_id bigint NOT NULL,
		creator varchar(42) NOT NULL,
		title text NOT NULL,
		description text NOT NULL,
		category smallint NOT NULL,
		status smallint NOT NULL,
		start_time bigint NOT NULL,
		end_time bigint NOT NULL,
		for_votes numeric(78, 0) NOT NULL,
		against_votes numeric(78, 0) NOT NULL,
		abstain_votes numeric(78, 0) NOT NULL,
		executed boolean NOT NULL,
		target_contract varchar(42) NOT NULL,
		updated_at timestamp NOT NULL,
		UNIQUE (governance, proposal_id)
	);
	`, pdb.p.proposalsTableName()))

	return err
}

func (pdb *ProposalDB) createIndexes() error {
	tname := pdb.p.proposalsTableName()

	_, err := pdb.p.db.Exec(fmt.Sprintf(`
	CREATE INDEX IF NOT EXISTS idx_%s_status ON %s (governance, status);
	`, tname, tname))

	return err
}

func (pdb *ProposalDB) drop() error {
	_, err := pdb.p.db.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %s;`, pdb.p.proposalsTableName()))
	return err
}

func (pdb *ProposalDB) ensureExists() error {
	exists, err := pdb.p.checkTableExists(pdb.p.proposalsTableName())
	if err != nil {
		return err
	}

	if exists {
		return nil
	}

	if err = pdb.Create(); err != nil {
		return err
	}

	return pdb.createIndexes()
}

// Upsert stores p, replacing the mutable columns of an earlier snapshot.
func (pdb *ProposalDB) Upsert(gov common.Address, p *governance.RawProposal) error {
	_, err := pdb.p.db.Exec(fmt.Sprintf(`
	INSERT INTO %s (governance, proposal_id, creator, title, description, category, status, start_time, end_time, for_votes, against_votes, abstain_votes, executed, target_contract, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	ON CONFLICT (governance, proposal_id) DO UPDATE SET
		status = EXCLUDED.status,
		for_votes = EXCLUDED.for_votes,
		against_votes = EXCLUDED.against_votes,
		abstain_votes = EXCLUDED.abstain_votes,
		executed = EXCLUDED.executed,
		updated_at = EXCLUDED.updated_at
	`, pdb.p.proposalsTableName()),
		gov.Hex(),
		bigString(p.ID),
		p.Creator.Hex(),
		p.Title,
		p.Description,
		p.Category,
		p.Status,
		bigString(p.StartTime),
		bigString(p.EndTime),
		bigString(p.ForVotes),
		bigString(p.AgainstVotes),
		bigString(p.AbstainVotes),
		p.Executed,
		p.TargetContract.Hex(),
		time.Now().UTC(),
	)

	return err
}

const proposalColumns = `governance, proposal_id, creator, title, description, category, status, start_time, end_time, for_votes, against_votes, abstain_votes, executed, target_contract, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*Snapshot, error) {
	var (
		gov, id, creator, target string
		start, end               string
		forV, againstV, abstainV string
		category, status         uint8
		s                        = &Snapshot{Proposal: &governance.RawProposal{}}
	)

	err := row.Scan(&gov, &id, &creator, &s.Proposal.Title, &s.Proposal.Description, &category, &status, &start, &end, &forV, &againstV, &abstainV, &s.Proposal.Executed, &target, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}

	s.Governance = common.HexToAddress(gov)
	s.Proposal.Creator = common.HexToAddress(creator)
	s.Proposal.TargetContract = common.HexToAddress(target)
	s.Proposal.Category = category
	s.Proposal.Status = status

	for _, f := range []struct {
		dst **big.Int
		src string
	}{
		{&s.Proposal.ID, id},
		{&s.Proposal.StartTime, start},
		{&s.Proposal.EndTime, end},
		{&s.Proposal.ForVotes, forV},
		{&s.Proposal.AgainstVotes, againstV},
		{&s.Proposal.AbstainVotes, abstainV},
	} {
		v, ok := new(big.Int).SetString(f.src, 10)
		if !ok {
			return nil, fmt.Errorf("invalid numeric column: %q", f.src)
		}
		*f.dst = v
	}

	return s, nil
}

func (pdb *ProposalDB) Get(gov common.Address, id *big.Int) (*Snapshot, error) {
	row := pdb.p.db.QueryRow(fmt.Sprintf(`
	SELECT %s FROM %s WHERE governance = $1 AND proposal_id = $2
	`, proposalColumns, pdb.p.proposalsTableName()), gov.Hex(), bigString(id))

	s, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	return s, err
}

// List returns stored snapshots, most recent proposal first.
func (pdb *ProposalDB) List(gov common.Address, limit, offset int) ([]*Snapshot, error) {
	rows, err := pdb.p.db.Query(fmt.Sprintf(`
	SELECT %s FROM %s WHERE governance = $1 ORDER BY proposal_id DESC LIMIT $2 OFFSET $3
	`, proposalColumns, pdb.p.proposalsTableName()), gov.Hex(), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshots := []*Snapshot{}
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}

	return snapshots, rows.Err()
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
