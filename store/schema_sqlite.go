package store

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS farms (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    plant       TEXT NOT NULL DEFAULT '',
    branch      TEXT NOT NULL DEFAULT '',
    house       TEXT NOT NULL DEFAULT '',
    name        TEXT NOT NULL DEFAULT '',
    lat         REAL,
    lng         REAL,
    created_at  TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);

CREATE TABLE IF NOT EXISTS factories (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    site        TEXT NOT NULL UNIQUE,
    name        TEXT NOT NULL DEFAULT '',
    lat         REAL,
    lng         REAL,
    created_at  TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);

CREATE TABLE IF NOT EXISTS trucks (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    plate       TEXT NOT NULL UNIQUE,
    created_at  TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);

CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'driver',
    created_at    TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);

CREATE TABLE IF NOT EXISTS driver_trucks (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    driver_id  INTEGER NOT NULL REFERENCES users(id),
    truck_id   INTEGER NOT NULL REFERENCES trucks(id),
    status     TEXT NOT NULL DEFAULT 'active'
);
CREATE INDEX IF NOT EXISTS idx_driver_trucks ON driver_trucks(driver_id, status);

CREATE TABLE IF NOT EXISTS user_farms (
    id       INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id  INTEGER NOT NULL REFERENCES users(id),
    farm_id  INTEGER NOT NULL REFERENCES farms(id),
    status   TEXT NOT NULL DEFAULT 'active'
);
CREATE INDEX IF NOT EXISTS idx_user_farms ON user_farms(user_id, status);

CREATE TABLE IF NOT EXISTS user_sites (
    id       INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id  INTEGER NOT NULL REFERENCES users(id),
    site     TEXT NOT NULL,
    status   TEXT NOT NULL DEFAULT 'active'
);
CREATE INDEX IF NOT EXISTS idx_user_sites ON user_sites(user_id, status);

CREATE TABLE IF NOT EXISTS delivery_plans (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    plan_uid      TEXT NOT NULL UNIQUE,
    delivery_date TEXT NOT NULL,
    delivery_time TEXT NOT NULL DEFAULT '',
    farm_id       INTEGER REFERENCES farms(id),
    farm_name     TEXT NOT NULL DEFAULT '',
    factory_site  TEXT NOT NULL DEFAULT '',
    plate         TEXT NOT NULL DEFAULT '',
    quantity      INTEGER NOT NULL DEFAULT 0,
    created_at    TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    updated_at    TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);
CREATE INDEX IF NOT EXISTS idx_plans_date ON delivery_plans(delivery_date);
CREATE INDEX IF NOT EXISTS idx_plans_site ON delivery_plans(factory_site, delivery_date);
CREATE INDEX IF NOT EXISTS idx_plans_plate ON delivery_plans(plate, delivery_date);

CREATE TABLE IF NOT EXISTS trip_sessions (
    id                     INTEGER PRIMARY KEY AUTOINCREMENT,
    session_uuid           TEXT NOT NULL UNIQUE,
    plan_id                INTEGER NOT NULL REFERENCES delivery_plans(id),
    driver_id              INTEGER NOT NULL REFERENCES users(id),
    truck_id               INTEGER NOT NULL REFERENCES trucks(id),
    arrived_origin_at      TEXT,
    departed_origin_at     TEXT,
    arrived_destination_at TEXT,
    completed              INTEGER NOT NULL DEFAULT 0,
    created_at             TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_active
    ON trip_sessions(plan_id, driver_id) WHERE arrived_destination_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_sessions_plan ON trip_sessions(plan_id, created_at DESC);

CREATE TABLE IF NOT EXISTS position_samples (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id  INTEGER NOT NULL REFERENCES trip_sessions(id),
    lat         REAL NOT NULL,
    lng         REAL NOT NULL,
    heading     REAL,
    speed_kmh   REAL,
    recorded_at TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);
CREATE INDEX IF NOT EXISTS idx_samples_session ON position_samples(session_id, recorded_at DESC);

CREATE TABLE IF NOT EXISTS factory_receipts (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    plan_id      INTEGER NOT NULL UNIQUE REFERENCES delivery_plans(id),
    factory_id   INTEGER REFERENCES factories(id),
    confirmed_by INTEGER REFERENCES users(id),
    pig_count    INTEGER NOT NULL DEFAULT 0,
    received_at  TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);

CREATE TABLE IF NOT EXISTS outbox (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    topic       TEXT NOT NULL,
    payload     BLOB NOT NULL,
    msg_type    TEXT NOT NULL DEFAULT '',
    station_id  TEXT NOT NULL DEFAULT '',
    retries     INTEGER NOT NULL DEFAULT 0,
    created_at  TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    sent_at     TEXT
);
CREATE INDEX IF NOT EXISTS idx_outbox_pending ON outbox(sent_at) WHERE sent_at IS NULL;
`
