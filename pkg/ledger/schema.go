package ledger

// Schema version 1. The image dedup key is the tag string; changing the key
// (e.g. to the source URL) requires a new table version with a backfill,
// since mixing keys in one table silently breaks dedup.
const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;

-- Image ledger: one row per successfully downloaded image.
CREATE TABLE IF NOT EXISTS images (
    image_id INTEGER PRIMARY KEY AUTOINCREMENT,
    query TEXT NOT NULL,
    filename TEXT NOT NULL,
    url TEXT NOT NULL,
    tags TEXT NOT NULL UNIQUE,
    media_type TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_images_query ON images(query);

-- Publish ledger: one row per successfully published (site, article).
CREATE TABLE IF NOT EXISTS posts (
    post_id INTEGER PRIMARY KEY AUTOINCREMENT,
    site TEXT NOT NULL,
    article TEXT NOT NULL,
    posted INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(site, article)
);

CREATE INDEX IF NOT EXISTS idx_posts_site ON posts(site);

-- Run bookkeeping: totals per pipeline invocation.
CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    finished_at TIMESTAMP,
    generated INTEGER NOT NULL DEFAULT 0,
    published INTEGER NOT NULL DEFAULT 0,
    skipped INTEGER NOT NULL DEFAULT 0,
    failed INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);
`
