package journal

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	sweep_id TEXT NOT NULL DEFAULT '',
	created DATETIME NOT NULL,
	deal TEXT NOT NULL,
	as_of DATETIME NOT NULL,
	frequency TEXT NOT NULL,
	cdr REAL NOT NULL,
	cpr REAL NOT NULL,
	recovery_rate REAL NOT NULL,
	was REAL NOT NULL,
	reinvestment_spread REAL NOT NULL,
	call_date DATETIME,
	price REAL NOT NULL,
	liquidation TEXT NOT NULL,
	day_count TEXT NOT NULL DEFAULT '',
	par REAL NOT NULL DEFAULT 0,
	rated_debt REAL NOT NULL DEFAULT 0,
	loan_spread REAL NOT NULL DEFAULT 0,
	termination TEXT NOT NULL,
	termination_period INTEGER NOT NULL,
	termination_date DATETIME,
	irr REAL,
	irr_error TEXT NOT NULL DEFAULT '',
	error TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS collateral (
	run_id TEXT NOT NULL,
	period INTEGER NOT NULL,
	date DATETIME NOT NULL,
	opening REAL NOT NULL,
	scheduled REAL NOT NULL,
	prepaid REAL NOT NULL,
	defaulted REAL NOT NULL,
	recovered REAL NOT NULL,
	interest REAL NOT NULL,
	reinvested REAL NOT NULL,
	liquidation REAL NOT NULL,
	ending REAL NOT NULL,
	spread REAL NOT NULL DEFAULT 0,
	rated_debt REAL NOT NULL DEFAULT 0,
	equity_par_nav REAL NOT NULL DEFAULT 0,
	PRIMARY KEY (run_id, period)
);

CREATE TABLE IF NOT EXISTS tranches (
	run_id TEXT NOT NULL,
	period INTEGER NOT NULL,
	date DATETIME NOT NULL,
	rank INTEGER NOT NULL,
	name TEXT NOT NULL,
	opening REAL NOT NULL,
	accrued REAL NOT NULL,
	interest_paid REAL NOT NULL,
	deferred REAL NOT NULL,
	principal_paid REAL NOT NULL,
	residual REAL NOT NULL,
	closing REAL NOT NULL,
	PRIMARY KEY (run_id, period, rank)
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created);
CREATE INDEX IF NOT EXISTS idx_runs_sweep ON runs(sweep_id);
`
