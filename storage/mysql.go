package storage

import (
	"database/sql"
	"math/big"

	_ "github.com/go-sql-driver/mysql"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/btcrunes/runeindexer/internal/er"
	"github.com/btcrunes/runeindexer/runes"
)

var errSchema = ErrType.Code("errSchema")

// Schema is the DDL for the three tables the processor writes to (spec §6).
// The fourth table, `etching`, is the external workflow table and is
// read-only to the core; it is not created here.
const Schema = `
CREATE TABLE IF NOT EXISTS rune_entry (
	rune_id VARCHAR(64) PRIMARY KEY,
	block BIGINT UNSIGNED NOT NULL,
	burned DECIMAL(39,0) NOT NULL,
	divisibility TINYINT UNSIGNED NOT NULL,
	etching VARCHAR(64) NOT NULL,
	mints DECIMAL(39,0) NOT NULL,
	number BIGINT UNSIGNED NOT NULL,
	premine DECIMAL(39,0) NOT NULL,
	spaced_rune VARCHAR(128) NOT NULL,
	rune_numeric VARCHAR(40) NOT NULL,
	timestamp BIGINT UNSIGNED NOT NULL,
	symbol VARCHAR(8),
	turbo BOOLEAN NOT NULL,
	amount DECIMAL(39,0),
	cap DECIMAL(39,0),
	height_start BIGINT UNSIGNED,
	height_end BIGINT UNSIGNED,
	offset_start BIGINT UNSIGNED,
	offset_end BIGINT UNSIGNED,
	UNIQUE KEY uniq_rune (rune_numeric),
	UNIQUE KEY uniq_number (number)
);

CREATE TABLE IF NOT EXISTS rune_balance (
	id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
	block BIGINT UNSIGNED NOT NULL,
	rune_id VARCHAR(64) NOT NULL,
	amount DECIMAL(39,0) NOT NULL,
	address VARCHAR(128) NOT NULL,
	script_hex TEXT NOT NULL,
	out_point VARCHAR(80) NOT NULL,
	spent BOOLEAN NOT NULL DEFAULT FALSE,
	KEY idx_outpoint (out_point),
	UNIQUE KEY uniq_balance (out_point, rune_id)
);

CREATE TABLE IF NOT EXISTS rune_event (
	id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
	block BIGINT UNSIGNED NOT NULL,
	event_type TINYINT UNSIGNED NOT NULL,
	tx_id VARCHAR(64) NOT NULL,
	rune_id VARCHAR(64) NOT NULL,
	amount DECIMAL(39,0),
	address VARCHAR(128) NOT NULL DEFAULT '',
	script_hex TEXT,
	vout INT UNSIGNED NOT NULL DEFAULT 0,
	rune_stone_json TEXT,
	timestamp BIGINT UNSIGNED NOT NULL
);
`

// MySQLStore implements Store over database/sql with the go-sql-driver/mysql
// driver, the backend the reference implementation targets (original_source
// dao/*.rs use diesel::MysqlConnection).
type MySQLStore struct {
	db *sql.DB
}

// OpenMySQL opens and pings dsn, returning a ready Store.
func OpenMySQL(dsn string) (*MySQLStore, er.R) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, er.E(err)
	}
	if err := db.Ping(); err != nil {
		return nil, er.E(err)
	}
	log.Infof("connected to mysql storage backend")
	return &MySQLStore{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *MySQLStore) Close() er.R {
	return er.E(s.db.Close())
}

func (s *MySQLStore) LoadEntry(id runes.Id) (*runes.Entry, er.R) {
	row := s.db.QueryRow(`SELECT `+entryColumns+` FROM rune_entry WHERE rune_id = ?`, id.String())
	return scanEntry(row, id)
}

func (s *MySQLStore) LoadEntryByRune(r runes.Rune) (*runes.Entry, er.R) {
	row := s.db.QueryRow(`SELECT rune_id, `+entryColumns+` FROM rune_entry WHERE rune_numeric = ?`, r.Value().String())
	var idStr string
	return scanEntryRowWithId(row, []interface{}{&idStr})
}

// entryColumns lists the rune_entry columns in the fixed order every SELECT
// in this file uses.
const entryColumns = `block, burned, divisibility, etching, mints, number, premine,
	spaced_rune, rune_numeric, timestamp, symbol, turbo, amount, cap,
	height_start, height_end, offset_start, offset_end`

func scanEntry(row *sql.Row, id runes.Id) (*runes.Entry, er.R) {
	e, errr := scanEntryRow(row)
	if e != nil {
		e.Id = id
	}
	return e, errr
}

func scanEntryRow(row *sql.Row) (*runes.Entry, er.R) {
	var (
		block, mintsS, burnedS, premineS                        string
		divisibility                                             uint8
		etchingS, spacedRuneS, runeNumericS                      string
		number, timestamp                                        uint64
		symbol                                                   sql.NullString
		turbo                                                    bool
		amount, cap                                               sql.NullString
		heightStart, heightEnd, offsetStart, offsetEnd            sql.NullInt64
	)
	err := row.Scan(&block, &burnedS, &divisibility, &etchingS, &mintsS, &number, &premineS,
		&spacedRuneS, &runeNumericS, &timestamp, &symbol, &turbo, &amount, &cap,
		&heightStart, &heightEnd, &offsetStart, &offsetEnd)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, er.E(err)
	}
	return buildEntry(block, burnedS, divisibility, etchingS, mintsS, number, premineS,
		spacedRuneS, runeNumericS, timestamp, symbol, turbo, amount, cap,
		heightStart, heightEnd, offsetStart, offsetEnd)
}

// scanEntryRowWithId scans a row whose first column is the rune_id string,
// followed by the standard entry columns (used by LoadEntryByRune).
func scanEntryRowWithId(row *sql.Row, idCol []interface{}) (*runes.Entry, er.R) {
	var (
		block, mintsS, burnedS, premineS                        string
		divisibility                                             uint8
		etchingS, spacedRuneS, runeNumericS                      string
		number, timestamp                                        uint64
		symbol                                                   sql.NullString
		turbo                                                    bool
		amount, cap                                               sql.NullString
		heightStart, heightEnd, offsetStart, offsetEnd            sql.NullInt64
	)
	dest := append(idCol, &block, &burnedS, &divisibility, &etchingS, &mintsS, &number, &premineS,
		&spacedRuneS, &runeNumericS, &timestamp, &symbol, &turbo, &amount, &cap,
		&heightStart, &heightEnd, &offsetStart, &offsetEnd)
	err := row.Scan(dest...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, er.E(err)
	}
	idStr := *(idCol[0].(*string))
	e, errr := buildEntry(block, burnedS, divisibility, etchingS, mintsS, number, premineS,
		spacedRuneS, runeNumericS, timestamp, symbol, turbo, amount, cap,
		heightStart, heightEnd, offsetStart, offsetEnd)
	if e == nil || errr != nil {
		return e, errr
	}
	e.Id = parseId(idStr)
	return e, nil
}

func buildEntry(block, burnedS string, divisibility uint8, etchingS, mintsS string, number uint64, premineS string,
	spacedRuneS, runeNumericS string, timestamp uint64, symbol sql.NullString, turbo bool,
	amount, cap sql.NullString, heightStart, heightEnd, offsetStart, offsetEnd sql.NullInt64) (*runes.Entry, er.R) {

	blockN, ok := new(big.Int).SetString(block, 10)
	if !ok {
		return nil, errSchema.New("block", nil)
	}
	hash, errr := chainhash.NewHashFromStr(etchingS)
	if errr != nil {
		return nil, er.E(errr)
	}
	runeNumeric, ok := new(big.Int).SetString(runeNumericS, 10)
	if !ok {
		return nil, errSchema.New("rune_numeric", nil)
	}
	burned, ok := new(big.Int).SetString(burnedS, 10)
	if !ok {
		return nil, errSchema.New("burned", nil)
	}
	mints, ok := new(big.Int).SetString(mintsS, 10)
	if !ok {
		return nil, errSchema.New("mints", nil)
	}
	premine, ok := new(big.Int).SetString(premineS, 10)
	if !ok {
		return nil, errSchema.New("premine", nil)
	}

	e := &runes.Entry{
		Block:        blockN.Uint64(),
		Etching:      *hash,
		Number:       number,
		SpacedRune:   runes.SpacedRune{Rune: runes.NewRune(runeNumeric)},
		Divisibility: divisibility,
		Turbo:        turbo,
		Premine:      premine,
		Mints:        mints,
		Burned:       burned,
		Timestamp:    timestamp,
	}
	// spaced_rune holds the rendered name with a '•' after every letter whose
	// spacer bit is set; the bitmap is re-derived from it here.
	letters := 0
	for _, c := range spacedRuneS {
		if c == '•' {
			if letters > 0 {
				e.SpacedRune.Spacers |= 1 << uint(letters-1)
			}
			continue
		}
		letters++
	}

	if symbol.Valid && len(symbol.String) > 0 {
		r := []rune(symbol.String)[0]
		e.Symbol = &r
	}

	if amount.Valid {
		terms := &runes.Terms{}
		a, ok := new(big.Int).SetString(amount.String, 10)
		if !ok {
			return nil, errSchema.New("amount", nil)
		}
		terms.Amount = a
		if cap.Valid {
			c, ok := new(big.Int).SetString(cap.String, 10)
			if !ok {
				return nil, errSchema.New("cap", nil)
			}
			terms.Cap = c
		}
		if heightStart.Valid {
			v := uint64(heightStart.Int64)
			terms.HeightStart = &v
		}
		if heightEnd.Valid {
			v := uint64(heightEnd.Int64)
			terms.HeightEnd = &v
		}
		if offsetStart.Valid {
			v := uint64(offsetStart.Int64)
			terms.OffsetStart = &v
		}
		if offsetEnd.Valid {
			v := uint64(offsetEnd.Int64)
			terms.OffsetEnd = &v
		}
		e.Terms = terms
	}

	return e, nil
}

func parseId(s string) runes.Id {
	var block uint64
	var tx uint32
	// format "<block>:<tx>", written by runes.Id.String.
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			bb, _ := new(big.Int).SetString(s[:i], 10)
			tt, _ := new(big.Int).SetString(s[i+1:], 10)
			if bb != nil {
				block = bb.Uint64()
			}
			if tt != nil {
				tx = uint32(tt.Uint64())
			}
			break
		}
	}
	return runes.Id{Block: block, Tx: tx}
}

func (s *MySQLStore) LoadBalancesByOutpoint(outpoint wire.OutPoint) ([]runes.Balance, er.R) {
	rows, err := s.db.Query(`SELECT rune_id, amount, address, script_hex, spent, block FROM rune_balance WHERE out_point = ?`, outpoint.String())
	if err != nil {
		return nil, er.E(err)
	}
	defer rows.Close()

	var out []runes.Balance
	for rows.Next() {
		var ruleIdS, amountS, address, scriptHex string
		var spent bool
		var block uint64
		if err := rows.Scan(&ruleIdS, &amountS, &address, &scriptHex, &spent, &block); err != nil {
			return nil, er.E(err)
		}
		amount, ok := new(big.Int).SetString(amountS, 10)
		if !ok {
			return nil, errSchema.New("amount", nil)
		}
		out = append(out, runes.Balance{
			Outpoint:  outpoint,
			RuneId:    parseId(ruleIdS),
			Amount:    amount,
			Spent:     spent,
			Address:   address,
			ScriptHex: scriptHex,
			Block:     block,
		})
	}
	return out, er.E(rows.Err())
}

func (s *MySQLStore) MaxRuneNumber() (*uint64, er.R) {
	row := s.db.QueryRow(`SELECT MAX(number) FROM rune_entry`)
	var n sql.NullInt64
	if err := row.Scan(&n); err != nil {
		return nil, er.E(err)
	}
	if !n.Valid {
		return nil, nil
	}
	v := uint64(n.Int64)
	return &v, nil
}

func (s *MySQLStore) Begin() (Batch, er.R) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, er.E(err)
	}
	return &mysqlBatch{tx: tx}, nil
}

type mysqlBatch struct {
	tx *sql.Tx
}

func (b *mysqlBatch) MarkOutpointSpent(outpoint wire.OutPoint) er.R {
	_, err := b.tx.Exec(`UPDATE rune_balance SET spent = TRUE WHERE out_point = ?`, outpoint.String())
	return er.E(err)
}

func (b *mysqlBatch) StoreEntry(id runes.Id, e *runes.Entry) er.R {
	var symbol interface{}
	if e.Symbol != nil {
		symbol = string(*e.Symbol)
	}
	var amount, capv interface{}
	var heightStart, heightEnd, offsetStart, offsetEnd interface{}
	if e.Terms != nil {
		if e.Terms.Amount != nil {
			amount = e.Terms.Amount.String()
		}
		if e.Terms.Cap != nil {
			capv = e.Terms.Cap.String()
		}
		if e.Terms.HeightStart != nil {
			heightStart = *e.Terms.HeightStart
		}
		if e.Terms.HeightEnd != nil {
			heightEnd = *e.Terms.HeightEnd
		}
		if e.Terms.OffsetStart != nil {
			offsetStart = *e.Terms.OffsetStart
		}
		if e.Terms.OffsetEnd != nil {
			offsetEnd = *e.Terms.OffsetEnd
		}
	}

	_, err := b.tx.Exec(`INSERT INTO rune_entry
		(rune_id, block, burned, divisibility, etching, mints, number, premine,
		 spaced_rune, rune_numeric, timestamp, symbol, turbo, amount, cap,
		 height_start, height_end, offset_start, offset_end)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id.String(), e.Block, e.Burned.String(), e.Divisibility, e.Etching.String(), e.Mints.String(), e.Number, e.Premine.String(),
		e.SpacedRune.String(), e.SpacedRune.Rune.Value().String(), e.Timestamp, symbol, e.Turbo, amount, capv,
		heightStart, heightEnd, offsetStart, offsetEnd)
	return er.E(err)
}

func (b *mysqlBatch) UpdateMints(id runes.Id, mints *big.Int) er.R {
	_, err := b.tx.Exec(`UPDATE rune_entry SET mints = ? WHERE rune_id = ?`, mints.String(), id.String())
	return er.E(err)
}

func (b *mysqlBatch) UpdateBurned(id runes.Id, burned *big.Int) er.R {
	_, err := b.tx.Exec(`UPDATE rune_entry SET burned = ? WHERE rune_id = ?`, burned.String(), id.String())
	return er.E(err)
}

func (b *mysqlBatch) StoreBalances(balances []runes.Balance) er.R {
	for _, bal := range balances {
		_, err := b.tx.Exec(`INSERT INTO rune_balance (block, rune_id, amount, address, script_hex, out_point, spent)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			bal.Block, bal.RuneId.String(), bal.Amount.String(), bal.Address, bal.ScriptHex, bal.Outpoint.String(), bal.Spent)
		if err != nil {
			return er.E(err)
		}
	}
	return nil
}

func (b *mysqlBatch) StoreEvents(events []runes.Event, rawRunestoneJSON string) er.R {
	for _, ev := range events {
		var amount interface{}
		if ev.Amount != nil {
			amount = ev.Amount.String()
		}
		var vout uint32
		if ev.Type == runes.EventTransferred {
			vout = ev.Outpoint.Index
		}
		_, err := b.tx.Exec(`INSERT INTO rune_event
			(block, event_type, tx_id, rune_id, amount, vout, rune_stone_json, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			ev.BlockHeight, int(ev.Type), ev.Txid.String(), ev.RuneId.String(), amount, vout, rawRunestoneJSON, ev.Timestamp)
		if err != nil {
			return er.E(err)
		}
	}
	return nil
}

func (b *mysqlBatch) Commit() er.R {
	return er.E(b.tx.Commit())
}

func (b *mysqlBatch) Rollback() er.R {
	return er.E(b.tx.Rollback())
}
