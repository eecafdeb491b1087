package journal

// Schema is applied on every open. An output value is NULL inside the
// warm-up prefix.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	created_at DATETIME NOT NULL,
	source TEXT NOT NULL,
	bars INTEGER NOT NULL,
	indicators TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS outputs (
	run_id TEXT NOT NULL REFERENCES runs(run_id),
	indicator TEXT NOT NULL,
	series TEXT NOT NULL,
	idx INTEGER NOT NULL,
	value REAL,
	PRIMARY KEY (run_id, indicator, series, idx)
);

CREATE INDEX IF NOT EXISTS idx_outputs_run ON outputs(run_id, indicator);
`
